package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/langfuse"
	"github.com/blaisecz/cognitive-sync/internal/lock"
	"github.com/google/uuid"
)

// MockSleepLogRepository is a mock implementation of SleepLogRepository
type MockSleepLogRepository struct {
	logs            map[uuid.UUID]*domain.SleepLog
	clientRequestID map[string]*domain.SleepLog
	listResult      []domain.SleepLog
	err             error
}

func NewMockSleepLogRepository() *MockSleepLogRepository {
	return &MockSleepLogRepository{
		logs:            make(map[uuid.UUID]*domain.SleepLog),
		clientRequestID: make(map[string]*domain.SleepLog),
	}
}

func (m *MockSleepLogRepository) Create(ctx context.Context, log *domain.SleepLog) error {
	if m.err != nil {
		return m.err
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	m.logs[log.ID] = log
	if log.ClientRequestID != nil {
		key := log.UserID.String() + ":" + *log.ClientRequestID
		m.clientRequestID[key] = log
	}
	return nil
}

func (m *MockSleepLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	log, ok := m.logs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return log, nil
}

func (m *MockSleepLogRepository) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) ([]domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.listResult != nil {
		result := make([]domain.SleepLog, len(m.listResult))
		copy(result, m.listResult)
		return result, nil
	}
	var result []domain.SleepLog
	for _, log := range m.logs {
		if log.UserID == userID {
			result = append(result, *log)
		}
	}
	return result, nil
}

func (m *MockSleepLogRepository) HasOverlap(ctx context.Context, userID uuid.UUID, startAt, endAt time.Time, sleepType domain.SleepType) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, log := range m.logs {
		if log.UserID != userID || log.Type != domain.SleepTypeCore {
			continue
		}
		if startAt.Before(log.EndAt) && endAt.After(log.StartAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSleepLogRepository) GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	key := userID.String() + ":" + clientRequestID
	log, ok := m.clientRequestID[key]
	if !ok {
		return nil, nil
	}
	return log, nil
}

func (m *MockSleepLogRepository) ListByEndRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.SleepLog
	for _, log := range m.logs {
		if log.UserID == userID && log.Type == domain.SleepTypeCore && !log.EndAt.Before(from) && !log.EndAt.After(to) {
			result = append(result, *log)
		}
	}
	return result, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users   map[uuid.UUID]*domain.User
	err     error
	listErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]uuid.UUID, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (m *MockUserRepository) SetError(err error) {
	m.err = err
}

// MockActivityRecordRepository is a mock implementation of ActivityRecordRepository
type MockActivityRecordRepository struct {
	mu      sync.Mutex
	records []domain.ActivityRecord
	// failing lists activities whose fetch returns an error
	failing map[string]error
	err     error
}

func NewMockActivityRecordRepository() *MockActivityRecordRepository {
	return &MockActivityRecordRepository{failing: make(map[string]error)}
}

func (m *MockActivityRecordRepository) Create(ctx context.Context, record *domain.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *MockActivityRecordRepository) ListByActivity(ctx context.Context, userID uuid.UUID, activity string, since time.Time) ([]domain.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failing[activity]; ok {
		return nil, err
	}
	var result []domain.ActivityRecord
	for _, r := range m.records {
		if r.UserID != userID || r.Activity != activity {
			continue
		}
		if r.CreatedAt != nil && r.CreatedAt.Before(since) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	quizzes map[uuid.UUID]*domain.QuizResponses
	err     error
}

func NewMockQuizRepository() *MockQuizRepository {
	return &MockQuizRepository{quizzes: make(map[uuid.UUID]*domain.QuizResponses)}
}

func (m *MockQuizRepository) Upsert(ctx context.Context, quiz *domain.QuizResponses) error {
	if m.err != nil {
		return m.err
	}
	m.quizzes[quiz.UserID] = quiz
	return nil
}

func (m *MockQuizRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.QuizResponses, error) {
	if m.err != nil {
		return nil, m.err
	}
	quiz, ok := m.quizzes[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return quiz, nil
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	snapshots map[uuid.UUID]*domain.ProfileSnapshot
	scores    map[uuid.UUID][]domain.DomainScoreSnapshot
	saves     int
	err       error
	saveErr   error
	popErr    error
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		snapshots: make(map[uuid.UUID]*domain.ProfileSnapshot),
		scores:    make(map[uuid.UUID][]domain.DomainScoreSnapshot),
	}
}

func (m *MockProfileRepository) Save(ctx context.Context, snapshot *domain.ProfileSnapshot, scores []domain.DomainScoreSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshots[snapshot.UserID] = snapshot
	m.scores[snapshot.UserID] = scores
	return nil
}

func (m *MockProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	snapshot, ok := m.snapshots[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snapshot, nil
}

func (m *MockProfileRepository) Population(ctx context.Context, exclude uuid.UUID) (map[domain.CognitiveDomain][]float64, error) {
	if m.popErr != nil {
		return nil, m.popErr
	}
	population := make(map[domain.CognitiveDomain][]float64)
	for userID, rows := range m.scores {
		if userID == exclude {
			continue
		}
		for _, row := range rows {
			if row.Current > 0 {
				population[row.Domain] = append(population[row.Domain], float64(row.Current))
			}
		}
	}
	return population, nil
}

func (m *MockProfileRepository) DomainScores(ctx context.Context, d domain.CognitiveDomain) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	var scores []float64
	for _, rows := range m.scores {
		for _, row := range rows {
			if row.Domain == d && row.Current > 0 {
				scores = append(scores, float64(row.Current))
			}
		}
	}
	return scores, nil
}

func (m *MockProfileRepository) TopByDomain(ctx context.Context, d domain.CognitiveDomain, limit int) ([]domain.DomainScoreSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	var rows []domain.DomainScoreSnapshot
	for _, userRows := range m.scores {
		for _, row := range userRows {
			if row.Domain == d && row.Current > 0 {
				rows = append(rows, row)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Current != rows[j].Current {
			return rows[i].Current > rows[j].Current
		}
		return rows[i].UserID.String() < rows[j].UserID.String()
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// setScore stores a single-domain score row for leaderboard tests.
func (m *MockProfileRepository) setScore(userID uuid.UUID, d domain.CognitiveDomain, current int) {
	m.scores[userID] = append(m.scores[userID], domain.DomainScoreSnapshot{
		UserID:     userID,
		Domain:     d,
		Current:    current,
		Confidence: 0.5,
	})
}

// MockLocker rejects every key listed in held.
type MockLocker struct {
	held map[string]bool
	err  error
}

func (m *MockLocker) TryLock(ctx context.Context, key string) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.held[key] {
		return nil, lock.ErrLocked
	}
	return func() {}, nil
}

// MockInsightsLLM is a mock implementation of llm.InsightsLLM
type MockInsightsLLM struct {
	output   *domain.LLMInsightsOutput
	err      error
	received *domain.InsightsContext
}

func (m *MockInsightsLLM) GenerateInsights(ctx context.Context, insightsCtx *domain.InsightsContext) (*domain.LLMInsightsOutput, error) {
	m.received = insightsCtx
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

// MockLangfuseClient is a mock implementation of langfuse.Client
type MockLangfuseClient struct {
	traces   []langfuse.TraceInput
	scores   []langfuse.ScoreInput
	traceErr error
}

func (m *MockLangfuseClient) IsEnabled() bool { return true }

func (m *MockLangfuseClient) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	m.traces = append(m.traces, in)
	id := in.ID
	if id == "" {
		id = "trace-1"
	}
	return id, m.traceErr
}

func (m *MockLangfuseClient) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	m.scores = append(m.scores, in)
	return nil
}

var errMockStore = errors.New("mock store failure")

// Helper functions
func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}


func timePtr(t time.Time) *time.Time {
	return &t
}
