package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/pagination"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
)

type SleepLogHandler struct {
	service service.SleepLogService
}

func NewSleepLogHandler(service service.SleepLogService) *SleepLogHandler {
	return &SleepLogHandler{service: service}
}

// Create handles POST /v1/users/{userId}/sleep-logs
// @Summary Record sleep
// @Description Log a sleep session. Use client_request_id for safe retries (idempotency). Returns 200 if duplicate request, 201 if new.
// @Tags sleep-logs
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param request body domain.CreateSleepLogRequest true "Sleep session data"
// @Success 201 {object} domain.SleepLogResponse "New sleep log created"
// @Success 200 {object} domain.SleepLogResponse "Existing log returned (idempotent duplicate)"
// @Failure 400 {object} problem.Problem "Invalid request body or parameters"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 409 {object} problem.Problem "Sleep period overlaps with existing log"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/sleep-logs [post]
func (h *SleepLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req domain.CreateSleepLogRequest
	if !decodeBody(w, r, &req) {
		return
	}

	log, isExisting, err := h.service.Create(r.Context(), userID, &req)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		problem.NotFound("User not found").Write(w)
	case errors.Is(err, domain.ErrOverlappingSleep):
		problem.Conflict("Overlapping sleep period detected").Write(w)
	case err != nil:
		problem.InternalError("Failed to create sleep log").Write(w)
	case isExisting:
		// Idempotent replay of an earlier client_request_id.
		writeJSON(w, http.StatusOK, log.ToResponse())
	default:
		writeJSON(w, http.StatusCreated, log.ToResponse())
	}
}

// List handles GET /v1/users/{userId}/sleep-logs
// @Summary List sleep logs
// @Description Fetch paginated sleep history. Filter by date range. Results sorted by start_at descending (newest first).
// @Tags sleep-logs
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param from query string false "Start of date range (RFC3339, UTC recommended for consistent filtering)" format(date-time) example(2024-01-01T00:00:00Z)
// @Param to query string false "End of date range (RFC3339, UTC recommended for consistent filtering)" format(date-time) example(2024-01-31T23:59:59Z)
// @Param limit query integer false "Results per page (1-100)" default(20) minimum(1) maximum(100)
// @Param cursor query string false "Cursor from previous response's next_cursor"
// @Success 200 {object} domain.SleepLogListResponse "Sleep logs with pagination"
// @Failure 400 {object} problem.Problem "Invalid query parameters"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/sleep-logs [get]
func (h *SleepLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	filter, q := parseListFilter(r)
	if !q.check(w) {
		return
	}

	response, err := h.service.List(r.Context(), userID, filter)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		problem.NotFound("User not found").Write(w)
	case err != nil:
		problem.InternalError("Failed to list sleep logs").Write(w)
	default:
		writeJSON(w, http.StatusOK, response)
	}
}

// parseListFilter reads from, to, limit and cursor. Limits above the maximum
// are clamped later; the cursor is decoded here so a bad one is a 422.
func parseListFilter(r *http.Request) (domain.SleepLogFilter, *queryParams) {
	q := &queryParams{r: r}
	filter := domain.SleepLogFilter{
		From:  q.time("from"),
		To:    q.time("to"),
		Limit: q.intRange("limit", 0, 1, math.MaxInt32, "must be a positive integer"),
	}

	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		if _, err := pagination.DecodeCursor(cursor); err != nil {
			q.fail("cursor", "must be a cursor returned by a previous page")
		} else {
			filter.Cursor = cursor
		}
	}
	return filter, q
}
