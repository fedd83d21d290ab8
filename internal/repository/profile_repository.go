package repository

import (
	"context"
	"fmt"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	// Save overwrites the user's snapshot and domain rows in one transaction.
	Save(ctx context.Context, snapshot *domain.ProfileSnapshot, scores []domain.DomainScoreSnapshot) error
	Get(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error)
	// Population returns every other user's non-zero current score per domain.
	Population(ctx context.Context, exclude uuid.UUID) (map[domain.CognitiveDomain][]float64, error)
	// DomainScores returns every non-zero current score of one domain.
	DomainScores(ctx context.Context, d domain.CognitiveDomain) ([]float64, error)
	TopByDomain(ctx context.Context, d domain.CognitiveDomain, limit int) ([]domain.DomainScoreSnapshot, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Save(ctx context.Context, snapshot *domain.ProfileSnapshot, scores []domain.DomainScoreSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"profile", "sync", "computed_at"}),
		}).Create(snapshot).Error
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		if err := tx.Where("user_id = ?", snapshot.UserID).Delete(&domain.DomainScoreSnapshot{}).Error; err != nil {
			return fmt.Errorf("clear domain scores: %w", err)
		}
		if len(scores) == 0 {
			return nil
		}
		if err := tx.Create(&scores).Error; err != nil {
			return fmt.Errorf("insert domain scores: %w", err)
		}
		return nil
	})
}

func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	var snapshot domain.ProfileSnapshot
	err := r.db.WithContext(ctx).First(&snapshot, "user_id = ?", userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &snapshot, nil
}

func (r *profileRepository) Population(ctx context.Context, exclude uuid.UUID) (map[domain.CognitiveDomain][]float64, error) {
	var rows []domain.DomainScoreSnapshot
	err := r.db.WithContext(ctx).
		Select("domain", "current").
		Where("user_id <> ? AND current > 0", exclude).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	population := make(map[domain.CognitiveDomain][]float64)
	for _, row := range rows {
		population[row.Domain] = append(population[row.Domain], float64(row.Current))
	}
	return population, nil
}

func (r *profileRepository) DomainScores(ctx context.Context, d domain.CognitiveDomain) ([]float64, error) {
	var scores []float64
	err := r.db.WithContext(ctx).
		Model(&domain.DomainScoreSnapshot{}).
		Where("domain = ? AND current > 0", d).
		Pluck("current", &scores).Error
	return scores, err
}

func (r *profileRepository) TopByDomain(ctx context.Context, d domain.CognitiveDomain, limit int) ([]domain.DomainScoreSnapshot, error) {
	var rows []domain.DomainScoreSnapshot
	err := r.db.WithContext(ctx).
		Where("domain = ? AND current > 0", d).
		Order("current DESC").
		Order("confidence DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
