package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
)

type QuizHandler struct {
	service service.QuizService
}

func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// Put handles PUT /v1/users/{userId}/quiz
// @Summary Save schedule survey
// @Description Store the user's schedule survey answers, replacing earlier answers. Unknown options fall back to defaults when scoring.
// @Tags quiz
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.SaveQuizRequest true "Survey answers"
// @Success 200 {object} domain.QuizResponses
// @Failure 400 {object} problem.Problem "Invalid request body"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/quiz [put]
func (h *QuizHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req domain.SaveQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	quiz, err := h.service.Save(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to save quiz").Write(w)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// Get handles GET /v1/users/{userId}/quiz
// @Summary Get schedule survey
// @Tags quiz
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.QuizResponses
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User or survey not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/quiz [get]
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	quiz, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User or quiz not found").Write(w)
			return
		}
		problem.InternalError("Failed to load quiz").Write(w)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
