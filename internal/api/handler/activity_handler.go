package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"github.com/go-chi/chi/v5"
)

type ActivityHandler struct {
	service service.ActivityService
}

func NewActivityHandler(service service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// Create handles POST /v1/users/{userId}/activities/{activity}/records
// @Summary Ingest an activity record
// @Description Store one raw game or drill outcome. The payload is kept verbatim and read by path when scoring.
// @Tags activities
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param activity path string true "Activity name" example(memory_match)
// @Param request body domain.CreateActivityRecordRequest true "Activity record"
// @Success 201 {object} domain.ActivityRecordResponse
// @Failure 400 {object} problem.Problem "Invalid body or unknown activity"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/activities/{activity}/records [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	activity := chi.URLParam(r, "activity")

	var req domain.CreateActivityRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := h.service.Ingest(r.Context(), userID, activity, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrUnknownActivity):
			problem.BadRequest("Unknown activity: " + activity).Write(w)
		case errors.Is(err, domain.ErrInvalidInput):
			problem.BadRequest("Payload must be a JSON object").Write(w)
		default:
			problem.InternalError("Failed to store activity record").Write(w)
		}
		return
	}

	writeJSON(w, http.StatusCreated, record.ToResponse())
}
