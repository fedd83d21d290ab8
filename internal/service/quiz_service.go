package service

import (
	"context"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/google/uuid"
)

// QuizService stores schedule survey answers.
type QuizService interface {
	Save(ctx context.Context, userID uuid.UUID, req *domain.SaveQuizRequest) (*domain.QuizResponses, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error)
}

type quizService struct {
	repo     repository.QuizRepository
	userRepo repository.UserRepository
}

func NewQuizService(repo repository.QuizRepository, userRepo repository.UserRepository) QuizService {
	return &quizService{
		repo:     repo,
		userRepo: userRepo,
	}
}

func (s *quizService) Save(ctx context.Context, userID uuid.UUID, req *domain.SaveQuizRequest) (*domain.QuizResponses, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	quiz := req.ToModel(userID)
	if err := s.repo.Upsert(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, userID)
}
