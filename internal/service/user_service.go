package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var userTracer = otel.Tracer("cognitive-sync/users")

// UserService registers people. A person's timezone anchors every local
// clock reading: sleep entries, activity hours and the daily timeline.
type UserService interface {
	Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	tz := strings.TrimSpace(req.Timezone)
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return nil, fmt.Errorf("%w: timezone %q", domain.ErrInvalidInput, req.Timezone)
	}

	user := &domain.User{ID: uuid.New(), Timezone: tz}

	ctx, span := userTracer.Start(ctx, "UserService.Create",
		trace.WithAttributes(
			attribute.String("user.id", user.ID.String()),
			attribute.String("user.timezone", tz),
		),
	)
	defer span.End()

	if err := s.repo.Create(ctx, user); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.GetByID",
		trace.WithAttributes(attribute.String("user.id", id.String())),
	)
	defer span.End()

	return s.repo.GetByID(ctx, id)
}
