package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/llm"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"go.opentelemetry.io/otel/trace"
)

// InsightsHandler handles the coaching insights endpoint.
type InsightsHandler struct {
	insightsService service.InsightsService
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insightsService service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// GetInsights handles GET /v1/users/{userId}/insights
// @Summary Get LLM-powered coaching insights
// @Description Summarize the stored profile and sync score into observations and study guidance.
// @Tags insights
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.InsightsResponse
// @Failure 404 {object} problem.Problem "User not found or profile not computed yet"
// @Failure 500 {object} problem.Problem "Server error"
// @Failure 502 {object} problem.Problem "LLM request failed"
// @Failure 503 {object} problem.Problem "LLM service unavailable"
// @Router /users/{userId}/insights [get]
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.insightsService.Generate(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrProfileNotComputed):
			problem.NotFound("Profile has not been computed yet").Write(w)
		case errors.Is(err, llm.ErrOpenAIUnavailable):
			problem.ServiceUnavailable("OpenAI service is not configured").Write(w)
		case errors.Is(err, llm.ErrOpenAIRequest), errors.Is(err, llm.ErrOpenAIResponse):
			problem.BadGateway("Failed to generate insights from LLM").Write(w)
		default:
			problem.InternalError("Failed to generate insights").Write(w)
		}
		return
	}

	// The service reports the Langfuse trace when it recorded one.
	if sc := trace.SpanContextFromContext(r.Context()); result.TraceID == "" && sc.IsValid() {
		result.TraceID = sc.TraceID().String()
	}

	writeJSON(w, http.StatusOK, result)
}
