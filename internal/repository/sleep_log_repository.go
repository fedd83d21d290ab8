package repository

import (
	"context"
	"errors"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SleepLogRepository stores sleep sessions. Only CORE sessions feed the
// sync score, so the range query filters on type.
type SleepLogRepository interface {
	Create(ctx context.Context, log *domain.SleepLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SleepLog, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) ([]domain.SleepLog, error)
	HasOverlap(ctx context.Context, userID uuid.UUID, startAt, endAt time.Time, sleepType domain.SleepType) (bool, error)
	GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.SleepLog, error)
	ListByEndRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.SleepLog, error)
}

type sleepLogRepository struct {
	db *gorm.DB
}

func NewSleepLogRepository(db *gorm.DB) SleepLogRepository {
	return &sleepLogRepository{db: db}
}

func (r *sleepLogRepository) Create(ctx context.Context, log *domain.SleepLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *sleepLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SleepLog, error) {
	var log domain.SleepLog
	if err := r.db.WithContext(ctx).Take(&log, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &log, nil
}

// List returns up to limit+1 rows, newest first, so the caller can tell
// whether another page exists.
func (r *sleepLogRepository) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) ([]domain.SleepLog, error) {
	var logs []domain.SleepLog
	err := r.db.WithContext(ctx).
		Scopes(
			ownedBy(userID),
			startedWithin(filter.From, filter.To),
			afterCursor(filter.Cursor),
		).
		Order("start_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(filter.Limit) + 1).
		Find(&logs).Error
	return logs, err
}

// HasOverlap reports whether [startAt, endAt) intersects an existing CORE
// sleep. Naps may overlap each other but never a CORE session, so the
// check is the same for both types.
func (r *sleepLogRepository) HasOverlap(ctx context.Context, userID uuid.UUID, startAt, endAt time.Time, _ domain.SleepType) (bool, error) {
	var found int64
	err := r.db.WithContext(ctx).
		Model(&domain.SleepLog{}).
		Scopes(ownedBy(userID), coreOnly).
		Where("start_at < ? AND end_at > ?", endAt, startAt).
		Limit(1).
		Count(&found).Error
	return found > 0, err
}

// GetByClientRequestID returns nil, nil when the request id is unused.
func (r *sleepLogRepository) GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.SleepLog, error) {
	var log domain.SleepLog
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("client_request_id = ?", clientRequestID).
		Take(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByEndRange returns CORE sleeps that ended within [from, to], oldest first.
func (r *sleepLogRepository) ListByEndRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.SleepLog, error) {
	var logs []domain.SleepLog
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID), coreOnly).
		Where("end_at BETWEEN ? AND ?", from, to).
		Order("end_at ASC").
		Find(&logs).Error
	return logs, err
}
