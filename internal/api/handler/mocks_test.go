package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	createFunc  func(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *MockUserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &domain.User{ID: uuid.New(), Timezone: req.Timezone}, nil
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// MockSleepLogService is a mock implementation of SleepLogService
type MockSleepLogService struct {
	createFunc func(ctx context.Context, userID uuid.UUID, req *domain.CreateSleepLogRequest) (*domain.SleepLog, bool, error)
	listFunc   func(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error)
}

func (m *MockSleepLogService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateSleepLogRequest) (*domain.SleepLog, bool, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &domain.SleepLog{
		ID:            uuid.New(),
		UserID:        userID,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Quality:       req.Quality,
		Type:          req.Type,
		WakingEvents:  req.WakingEvents,
		LocalTimezone: "UTC",
		CreatedAt:     time.Now(),
	}, false, nil
}

func (m *MockSleepLogService) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return &domain.SleepLogListResponse{
		Data:       []domain.SleepLogResponse{},
		Pagination: domain.PaginationResponse{HasMore: false},
	}, nil
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	recomputeFunc   func(ctx context.Context, userID uuid.UUID, trigger string) (*domain.RecomputeResponse, error)
	getFunc         func(ctx context.Context, userID uuid.UUID) (*domain.UnifiedProfile, error)
	getSyncFunc     func(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error)
	leaderboardFunc func(ctx context.Context, d domain.CognitiveDomain, limit int) (*domain.LeaderboardResponse, error)

	lastTrigger string
	lastLimit   int
}

func (m *MockProfileService) Recompute(ctx context.Context, userID uuid.UUID, trigger string) (*domain.RecomputeResponse, error) {
	m.lastTrigger = trigger
	if m.recomputeFunc != nil {
		return m.recomputeFunc(ctx, userID, trigger)
	}
	return &domain.RecomputeResponse{Profile: domain.UnifiedProfile{UserID: userID}}, nil
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.UnifiedProfile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockProfileService) GetSync(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error) {
	if m.getSyncFunc != nil {
		return m.getSyncFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockProfileService) Leaderboard(ctx context.Context, d domain.CognitiveDomain, limit int) (*domain.LeaderboardResponse, error) {
	m.lastLimit = limit
	if m.leaderboardFunc != nil {
		return m.leaderboardFunc(ctx, d, limit)
	}
	return &domain.LeaderboardResponse{Domain: d, Entries: []domain.LeaderboardEntry{}}, nil
}

func (m *MockProfileService) RecomputeAll(ctx context.Context) (*domain.BatchReport, error) {
	return &domain.BatchReport{}, nil
}

// MockQuizService is a mock implementation of QuizService
type MockQuizService struct {
	saveFunc func(ctx context.Context, userID uuid.UUID, req *domain.SaveQuizRequest) (*domain.QuizResponses, error)
	getFunc  func(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error)
}

func (m *MockQuizService) Save(ctx context.Context, userID uuid.UUID, req *domain.SaveQuizRequest) (*domain.QuizResponses, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, userID, req)
	}
	return req.ToModel(userID), nil
}

func (m *MockQuizService) Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

// MockActivityService is a mock implementation of ActivityService
type MockActivityService struct {
	ingestFunc func(ctx context.Context, userID uuid.UUID, activity string, req *domain.CreateActivityRecordRequest) (*domain.ActivityRecord, error)
}

func (m *MockActivityService) Ingest(ctx context.Context, userID uuid.UUID, activity string, req *domain.CreateActivityRecordRequest) (*domain.ActivityRecord, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, userID, activity, req)
	}
	now := time.Now().UTC()
	return &domain.ActivityRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Activity:  activity,
		Payload:   []byte(req.Payload),
		CreatedAt: &now,
	}, nil
}

// MockInsightsService is a mock implementation of InsightsService
type MockInsightsService struct {
	generateFunc func(ctx context.Context, userID uuid.UUID) (*domain.InsightsResponse, error)
}

func (m *MockInsightsService) Generate(ctx context.Context, userID uuid.UUID) (*domain.InsightsResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID)
	}
	return &domain.InsightsResponse{
		UserID: userID,
		Insights: domain.LLMInsightsOutput{
			Summary:      "Memory is your strongest domain.",
			Observations: []string{"Scores are stable"},
			Guidance:     []string{"Keep morning sessions"},
		},
	}, nil
}

// withURLParams attaches chi URL params to a request.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
