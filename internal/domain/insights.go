package domain

import (
	"time"

	"github.com/google/uuid"
)

// InsightsContext is the data handed to the LLM.
type InsightsContext struct {
	Profile UnifiedProfile `json:"profile"`
	Sync    *SyncResult    `json:"sync,omitempty"`
}

// LLMInsightsOutput is the structured output expected from the LLM.
type LLMInsightsOutput struct {
	// 2-3 sentence overview of the profile
	Summary string `json:"summary" example:"Memory and reasoning are your strongest areas this month."`
	// Patterns in the scores, trends and schedule
	Observations []string `json:"observations"`
	// Concrete, non-medical study and schedule suggestions
	Guidance []string `json:"guidance"`
}

// InsightsResponse is the response body for the insights endpoint.
// @Description Coaching insights generated from the latest profile and sync score.
type InsightsResponse struct {
	UserID     uuid.UUID         `json:"user_id"`
	ComputedAt time.Time         `json:"computed_at"`
	SyncScore  *int              `json:"sync_score,omitempty" example:"74"`
	Chronotype *ChronotypeType   `json:"chronotype,omitempty" example:"bear"`
	Insights   LLMInsightsOutput `json:"insights"`
	// Trace ID of the request that generated the insights
	TraceID string `json:"trace_id,omitempty"`
}
