package repository

import (
	"context"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRecordRepository interface {
	Create(ctx context.Context, record *domain.ActivityRecord) error
	// ListByActivity returns one activity's records created at or after
	// since. Records without a store timestamp are always included; their
	// time lives in the payload.
	ListByActivity(ctx context.Context, userID uuid.UUID, activity string, since time.Time) ([]domain.ActivityRecord, error)
}

type activityRecordRepository struct {
	db *gorm.DB
}

func NewActivityRecordRepository(db *gorm.DB) ActivityRecordRepository {
	return &activityRecordRepository{db: db}
}

func (r *activityRecordRepository) Create(ctx context.Context, record *domain.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *activityRecordRepository) ListByActivity(ctx context.Context, userID uuid.UUID, activity string, since time.Time) ([]domain.ActivityRecord, error) {
	var records []domain.ActivityRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND activity = ?", userID, activity).
		Where("created_at >= ? OR created_at IS NULL", since).
		Order("created_at DESC NULLS LAST").
		Find(&records).Error
	return records, err
}
