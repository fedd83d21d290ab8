package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantField  string
	}{
		{name: "valid request", body: `{"timezone": "Europe/Budapest"}`, wantStatus: http.StatusCreated},
		{name: "invalid JSON", body: `{invalid}`, wantStatus: http.StatusBadRequest},
		{name: "missing timezone", body: `{}`, wantStatus: http.StatusUnprocessableEntity, wantField: "timezone"},
		{name: "unknown timezone", body: `{"timezone": "Mars/Olympus"}`, wantStatus: http.StatusUnprocessableEntity, wantField: "timezone"},
		{name: "store failure", body: `{"timezone": "UTC"}`, err: assert.AnError, wantStatus: http.StatusInternalServerError},
		{name: "rejected by service", body: `{"timezone": "UTC"}`, err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{
				createFunc: func(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.User{ID: uuid.New(), Timezone: req.Timezone}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			NewUserHandler(svc).Create(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantField != "" {
				var p problem.Problem
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
				require.NotEmpty(t, p.Errors)
				assert.Equal(t, tt.wantField, p.Errors[0].Field)
			}
			if tt.wantStatus == http.StatusCreated {
				var got domain.UserResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, "Europe/Budapest", got.Timezone)
			}
		})
	}
}

func TestUserHandler_GetByID(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		userID     string
		err        error
		wantStatus int
	}{
		{name: "existing user", userID: userID.String(), wantStatus: http.StatusOK},
		{name: "invalid UUID", userID: "invalid-uuid", wantStatus: http.StatusBadRequest},
		{name: "user not found", userID: userID.String(), err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "store failure", userID: userID.String(), err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.User{ID: id, Timezone: "Asia/Tokyo"}, nil
				},
			}

			req := withURLParams(httptest.NewRequest(http.MethodGet, "/v1/users/"+tt.userID, nil), map[string]string{"userId": tt.userID})
			rec := httptest.NewRecorder()
			NewUserHandler(svc).GetByID(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
				return
			}
			var got domain.UserResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, userID, got.ID)
		})
	}
}
