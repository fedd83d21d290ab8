package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/blaisecz/cognitive-sync/internal/api/validation"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /v1/users/{userId}/profile
// @Summary Get cognitive profile
// @Description Return the latest computed profile: domain scores, trends, percentiles, peak performance, contributions and data quality.
// @Tags profiles
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.UnifiedProfile
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User not found or profile not computed yet"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeProfileError(w, err, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// GetSync handles GET /v1/users/{userId}/sync
// @Summary Get circadian sync score
// @Description Return the latest sync result: alignment of the school and study schedule with the learning phase, social jetlag and a 24h readiness timeline.
// @Tags profiles
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.SyncResult
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User not found or profile not computed yet"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/sync [get]
func (h *ProfileHandler) GetSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetSync(r.Context(), userID)
	if err != nil {
		writeProfileError(w, err, "Failed to load sync score")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Recompute handles POST /v1/users/{userId}/profile/recompute
// @Summary Recompute profile and sync score
// @Description Rebuild the user's profile and sync score from current data and store them.
// @Tags profiles
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.RecomputeResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 409 {object} problem.Problem "A recompute for this user is already running"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/profile/recompute [post]
func (h *ProfileHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Recompute(r.Context(), userID, metrics.TriggerOnDemand)
	if err != nil {
		writeProfileError(w, err, "Failed to recompute profile")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Leaderboard handles GET /v1/leaderboard/{domain}
// @Summary Domain leaderboard
// @Description Rank users by their current score in one cognitive domain.
// @Tags profiles
// @Produce json
// @Param domain path string true "Cognitive domain" Enums(memory, attention, processing_speed, executive_function, reasoning)
// @Param limit query integer false "Number of entries (1-100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} domain.LeaderboardResponse
// @Failure 400 {object} problem.Problem "Unknown domain"
// @Failure 422 {object} problem.Problem "Invalid domain or limit"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /leaderboard/{domain} [get]
func (h *ProfileHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	d := domain.CognitiveDomain(chi.URLParam(r, "domain"))

	q := &queryParams{r: r}
	q.errors = validation.Var("domain", string(d), "cognitive_domain")
	limit := q.intRange("limit", service.DefaultLeaderboardLimit, 1, service.MaxLeaderboardLimit,
		fmt.Sprintf("must be an integer between 1 and %d", service.MaxLeaderboardLimit))
	if !q.check(w) {
		return
	}

	resp, err := h.service.Leaderboard(r.Context(), d, limit)
	if err != nil {
		writeProfileError(w, err, "Failed to load leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeProfileError(w http.ResponseWriter, err error, fallback string) {
	var recomputeErr *domain.RecomputeError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		problem.NotFound("User not found").Write(w)
	case errors.Is(err, domain.ErrProfileNotComputed):
		problem.NotFound("Profile has not been computed yet").Write(w)
	case errors.Is(err, domain.ErrRecomputeInProgress):
		problem.RecomputeInProgress("A recompute for this user is already running").Write(w)
	case errors.Is(err, domain.ErrUnknownDomain):
		problem.BadRequest("Unknown cognitive domain").Write(w)
	case errors.As(err, &recomputeErr):
		problem.InternalError(fallback + ": " + recomputeErr.Reason()).Write(w)
	default:
		problem.InternalError(fallback).Write(w)
	}
}
