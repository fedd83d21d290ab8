package repository

import (
	"context"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository interface {
	// Upsert replaces the user's answers.
	Upsert(ctx context.Context, quiz *domain.QuizResponses) error
	Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Upsert(ctx context.Context, quiz *domain.QuizResponses) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(quiz).Error
}

func (r *quizRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error) {
	var quiz domain.QuizResponses
	err := r.db.WithContext(ctx).First(&quiz, "user_id = ?", userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}
