package service

import (
	"context"
	"errors"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/langfuse"
	"github.com/blaisecz/cognitive-sync/internal/llm"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InsightsService generates coaching insights from the stored profile.
type InsightsService interface {
	// Generate creates insights for a user. The profile must have been
	// computed at least once.
	Generate(ctx context.Context, userID uuid.UUID) (*domain.InsightsResponse, error)
}

type insightsService struct {
	profiles  ProfileService
	llmClient llm.InsightsLLM
	langfuse  langfuse.Client
	log       *logger.Logger
}

// NewInsightsService creates a new InsightsService. Generations are recorded
// in Langfuse when lf is enabled; a nil lf or log disables that side.
func NewInsightsService(profiles ProfileService, llmClient llm.InsightsLLM, lf langfuse.Client, log *logger.Logger) InsightsService {
	if lf == nil {
		lf = langfuse.NewClient(langfuse.Config{})
	}
	if log == nil {
		log = logger.Nop()
	}
	return &insightsService{
		profiles:  profiles,
		llmClient: llmClient,
		langfuse:  lf,
		log:       log,
	}
}

func (s *insightsService) Generate(ctx context.Context, userID uuid.UUID) (*domain.InsightsResponse, error) {
	ctx, span := otel.Tracer("cognitive-sync/insights").Start(ctx, "InsightsService.Generate",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The sync result is optional context; a profile alone is enough.
	syncResult, err := s.profiles.GetSync(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotComputed) {
		return nil, err
	}

	insightsCtx := &domain.InsightsContext{
		Profile: *p,
		Sync:    syncResult,
	}
	output, err := s.llmClient.GenerateInsights(ctx, insightsCtx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &domain.InsightsResponse{
		UserID:     userID,
		ComputedAt: p.ComputedAt,
		Insights:   *output,
	}
	if syncResult != nil {
		score := syncResult.SyncScore
		chronotype := syncResult.Chronotype.Type
		resp.SyncScore = &score
		resp.Chronotype = &chronotype
	}
	resp.TraceID = s.record(ctx, userID, insightsCtx, output)
	return resp, nil
}

// record stores the generation in Langfuse, using the active span's trace ID
// so both systems line up. Failures are logged and never fail the request.
func (s *insightsService) record(ctx context.Context, userID uuid.UUID, in *domain.InsightsContext, out *domain.LLMInsightsOutput) string {
	if !s.langfuse.IsEnabled() {
		return ""
	}

	var traceID string
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		traceID = sc.TraceID().String()
	}

	tags := []string{"insights"}
	if in.Sync != nil {
		tags = append(tags, string(in.Sync.Chronotype.Type))
	}

	traceID, err := s.langfuse.CreateTrace(ctx, langfuse.TraceInput{
		ID:     traceID,
		UserID: userID.String(),
		Name:   "cognitive-insights",
		Input:  in,
		Output: out,
		Tags:   tags,
		Metadata: map[string]any{
			"data_reliability": in.Profile.DataQuality.Reliability,
		},
	})
	if err != nil {
		s.log.Warn("langfuse trace failed", "user_id", userID, "error", err)
		return traceID
	}

	if in.Sync != nil {
		err := s.langfuse.CreateScore(ctx, langfuse.ScoreInput{
			TraceID: traceID,
			Name:    "sync_score",
			Value:   float64(in.Sync.SyncScore),
			Comment: string(in.Sync.Chronotype.Type),
		})
		if err != nil {
			s.log.Warn("langfuse score failed", "user_id", userID, "error", err)
		}
	}
	return traceID
}
