package service

import (
	"context"
	"fmt"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/profile"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
)

// ActivityService ingests raw activity telemetry.
type ActivityService interface {
	// Ingest stores one record of a mapped activity. Payloads are stored
	// verbatim and must be JSON objects.
	Ingest(ctx context.Context, userID uuid.UUID, activity string, req *domain.CreateActivityRecordRequest) (*domain.ActivityRecord, error)
}

type activityService struct {
	repo     repository.ActivityRecordRepository
	userRepo repository.UserRepository
	mapping  profile.DomainMapping
	now      func() time.Time
}

func NewActivityService(repo repository.ActivityRecordRepository, userRepo repository.UserRepository, mapping profile.DomainMapping) ActivityService {
	return &activityService{
		repo:     repo,
		userRepo: userRepo,
		mapping:  mapping,
		now:      time.Now,
	}
}

func (s *activityService) Ingest(ctx context.Context, userID uuid.UUID, activity string, req *domain.CreateActivityRecordRequest) (*domain.ActivityRecord, error) {
	if !s.mapping.HasActivity(activity) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownActivity, activity)
	}
	if !gjson.ValidBytes(req.Payload) || !gjson.ParseBytes(req.Payload).IsObject() {
		return nil, fmt.Errorf("%w: payload must be a JSON object", domain.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	createdAt := s.now().UTC()
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.UTC()
	}

	record := &domain.ActivityRecord{
		UserID:    userID,
		Activity:  activity,
		Payload:   datatypes.JSON(req.Payload),
		CreatedAt: &createdAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
