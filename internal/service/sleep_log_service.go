package service

import (
	"context"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/blaisecz/cognitive-sync/pkg/pagination"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var sleepTracer = otel.Tracer("cognitive-sync/sleep")

// SleepLogService records sleep sessions. CORE sessions feed the sleep
// metrics of the sync score.
type SleepLogService interface {
	// Create stores a session. The bool is true when an earlier session with
	// the same client request id is returned instead.
	Create(ctx context.Context, userID uuid.UUID, req *domain.CreateSleepLogRequest) (*domain.SleepLog, bool, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error)
}

type sleepLogService struct {
	repo     repository.SleepLogRepository
	userRepo repository.UserRepository
}

func NewSleepLogService(repo repository.SleepLogRepository, userRepo repository.UserRepository) SleepLogService {
	return &sleepLogService{
		repo:     repo,
		userRepo: userRepo,
	}
}

func (s *sleepLogService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateSleepLogRequest) (*domain.SleepLog, bool, error) {
	ctx, span := sleepTracer.Start(ctx, "SleepLogService.Create",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("sleep.type", string(req.Type)),
		),
	)
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if id := req.ClientRequestID; id != nil && *id != "" {
		existing, err := s.repo.GetByClientRequestID(ctx, userID, *id)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			span.SetAttributes(attribute.Bool("sleep.replayed", true))
			return existing, true, nil
		}
	}

	log := &domain.SleepLog{
		UserID:          userID,
		StartAt:         req.StartAt.UTC(),
		EndAt:           req.EndAt.UTC(),
		Quality:         req.Quality,
		Type:            req.Type,
		LocalTimezone:   localTimezone(user, req.LocalTimezone),
		WakingEvents:    req.WakingEvents,
		ClientRequestID: req.ClientRequestID,
	}

	overlap, err := s.repo.HasOverlap(ctx, userID, log.StartAt, log.EndAt, log.Type)
	if err != nil {
		return nil, false, err
	}
	if overlap {
		return nil, false, domain.ErrOverlappingSleep
	}

	if err := s.repo.Create(ctx, log); err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	return log, false, nil
}

// localTimezone picks the request's zone, then the person's, then UTC.
func localTimezone(user *domain.User, requested *string) string {
	switch {
	case requested != nil && *requested != "":
		return *requested
	case user.Timezone != "":
		return user.Timezone
	default:
		return "UTC"
	}
}

func (s *sleepLogService) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
	ctx, span := sleepTracer.Start(ctx, "SleepLogService.List",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	logs, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	logs, page := paginate(logs, pagination.NormalizeLimit(filter.Limit))
	resp := &domain.SleepLogListResponse{
		Data:       make([]domain.SleepLogResponse, len(logs)),
		Pagination: page,
	}
	for i := range logs {
		resp.Data[i] = logs[i].ToResponse()
	}
	return resp, nil
}

// paginate trims a limit+1 result to limit rows and builds the cursor that
// continues after the last kept row.
func paginate(logs []domain.SleepLog, limit int) ([]domain.SleepLog, domain.PaginationResponse) {
	if len(logs) <= limit {
		return logs, domain.PaginationResponse{}
	}

	logs = logs[:limit]
	last := logs[len(logs)-1]
	next := &pagination.Cursor{ID: last.ID, StartAt: last.StartAt}
	return logs, domain.PaginationResponse{HasMore: true, NextCursor: next.Encode()}
}
