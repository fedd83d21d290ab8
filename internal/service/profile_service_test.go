package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/profile"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var serviceNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type profileFixture struct {
	users      *MockUserRepository
	activities *MockActivityRecordRepository
	quizzes    *MockQuizRepository
	sleepLogs  *MockSleepLogRepository
	profiles   *MockProfileRepository
	locker     *MockLocker
	metrics    *metrics.Manager
	svc        ProfileService
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()

	f := &profileFixture{
		users:      NewMockUserRepository(),
		activities: NewMockActivityRecordRepository(),
		quizzes:    NewMockQuizRepository(),
		sleepLogs:  NewMockSleepLogRepository(),
		profiles:   NewMockProfileRepository(),
		locker:     &MockLocker{held: make(map[string]bool)},
		metrics:    metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry())),
	}
	f.svc = NewProfileService(ProfileDeps{
		Users:      f.users,
		Activities: f.activities,
		Quizzes:    f.quizzes,
		SleepLogs:  f.sleepLogs,
		Profiles:   f.profiles,
		Locker:     f.locker,
		Builder:    profile.NewBuilder(profile.DefaultDomainMapping(), profile.DefaultPeakPolicy()),
		Calculator: circadian.NewCalculator(circadian.DefaultSurveyTables()),
		Metrics:    f.metrics,
		Now:        func() time.Time { return serviceNow },
	})
	return f
}

func (f *profileFixture) addUser() uuid.UUID {
	id := uuid.New()
	f.users.users[id] = &domain.User{ID: id, Timezone: "UTC"}
	return id
}

func (f *profileFixture) addRecords(userID uuid.UUID, activity string, n int, payload string) {
	for i := 0; i < n; i++ {
		at := serviceNow.Add(-time.Duration(i) * 5 * time.Hour)
		f.activities.records = append(f.activities.records, domain.ActivityRecord{
			ID:        uuid.New(),
			UserID:    userID,
			Activity:  activity,
			Payload:   datatypes.JSON(payload),
			CreatedAt: &at,
		})
	}
}

// metricValue reads one counter or gauge sample from the manager's registry.
func metricValue(t *testing.T, m *metrics.Manager, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	samples:
		for _, sample := range mf.GetMetric() {
			for _, lp := range sample.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue samples
				}
			}
			if sample.GetCounter() != nil {
				return sample.GetCounter().GetValue()
			}
			return sample.GetGauge().GetValue()
		}
	}
	return 0
}

func TestProfileService_Recompute_NoData(t *testing.T) {
	f := newProfileFixture(t)
	userID := f.addUser()

	resp, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
	require.NoError(t, err)

	assert.Equal(t, userID, resp.Profile.UserID)
	assert.Equal(t, serviceNow, resp.Profile.ComputedAt)
	for _, d := range domain.CognitiveDomains {
		assert.Equal(t, 0, resp.Profile.Domains[d].Current, d)
		assert.Equal(t, profile.NeutralPercentile, resp.Profile.Percentiles[d], d)
	}
	assert.GreaterOrEqual(t, resp.Sync.SyncScore, 0)
	assert.LessOrEqual(t, resp.Sync.SyncScore, 100)
	assert.Len(t, resp.Sync.LearningTimeline, circadian.TimelineBins)

	require.Contains(t, f.profiles.snapshots, userID)
	assert.Len(t, f.profiles.scores[userID], len(domain.CognitiveDomains))
	assert.Equal(t, 1.0, metricValue(t, f.metrics, "cogsync_recompute_total", map[string]string{"trigger": "on_demand", "outcome": "success"}))
}

func TestProfileService_Recompute_WithRecords(t *testing.T) {
	f := newProfileFixture(t)
	userID := f.addUser()
	other := f.addUser()
	f.addRecords(userID, "memory_match", 10, `{"accuracy": 80}`)
	f.addRecords(other, "memory_match", 10, `{"accuracy": 40}`)

	_, err := f.svc.Recompute(context.Background(), other, metrics.TriggerOnDemand)
	require.NoError(t, err)

	resp, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
	require.NoError(t, err)

	memory := resp.Profile.Domains[domain.DomainMemory]
	assert.Equal(t, 80, memory.Current)
	assert.Equal(t, 10, memory.SampleCount)
	assert.Equal(t, 100, resp.Profile.Percentiles[domain.DomainMemory])
	assert.Equal(t, 10, resp.Profile.CrossActivity.TotalSessions)

	var saved domain.DomainScoreSnapshot
	for _, row := range f.profiles.scores[userID] {
		if row.Domain == domain.DomainMemory {
			saved = row
		}
	}
	assert.Equal(t, 80, saved.Current)
	assert.Equal(t, memory.Confidence, saved.Confidence)
}

func TestProfileService_Recompute_UsesQuizAndPrior(t *testing.T) {
	f := newProfileFixture(t)
	userID := f.addUser()
	quiz := &domain.QuizResponses{UserID: userID, NaturalWake: "Before 8 AM", FocusTime: "Morning", TestTime: "Morning"}
	f.quizzes.quizzes[userID] = quiz
	f.addRecords(userID, "memory_match", 5, `{"accuracy": 90}`)

	first, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
	require.NoError(t, err)
	assert.Equal(t, circadian.DefaultSurveyTables().TheoreticalPhase(*quiz), first.Sync.AdaptiveComponents.TheoreticalPhase)

	// The new record is lower, so the personal best comes from the prior.
	f.activities.records = nil
	f.addRecords(userID, "memory_match", 5, `{"accuracy": 60}`)

	second, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
	require.NoError(t, err)

	assert.Equal(t, 60, second.Profile.Domains[domain.DomainMemory].Current)
	assert.Equal(t, 90, second.Profile.Domains[domain.DomainMemory].PersonalBest)
	assert.Equal(t, domain.TrajectoryDeclining, second.Profile.Trends[domain.DomainMemory].Trajectory)
	assert.Equal(t, 2, f.profiles.saves)
}

func TestProfileService_Recompute_Errors(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := newProfileFixture(t)

		_, err := f.svc.Recompute(context.Background(), uuid.New(), metrics.TriggerOnDemand)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("recompute already running", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.locker.held[userID.String()] = true

		_, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		assert.ErrorIs(t, err, domain.ErrRecomputeInProgress)
		assert.Equal(t, 0, f.profiles.saves)
		assert.Equal(t, 1.0, metricValue(t, f.metrics, "cogsync_recompute_lock_contentions_total", nil))
	})

	t.Run("save fails", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.profiles.saveErr = errMockStore

		_, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerBatch)
		assert.ErrorIs(t, err, errMockStore)
		assertStage(t, err, domain.StageStorage)
		assert.Equal(t, 1.0, metricValue(t, f.metrics, "cogsync_recompute_failures_total", map[string]string{"trigger": "batch"}))
	})

	t.Run("quiz store fails", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.quizzes.err = errMockStore

		_, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		assert.ErrorIs(t, err, errMockStore)
		assertStage(t, err, domain.StageFetch)
		assert.Equal(t, 0, f.profiles.saves)
	})

	t.Run("lock backend fails", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.locker.err = errMockStore

		_, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		assert.ErrorIs(t, err, errMockStore)
		assertStage(t, err, domain.StageLock)
	})
}

func assertStage(t *testing.T, err error, want domain.RecomputeStage) {
	t.Helper()
	var recomputeErr *domain.RecomputeError
	require.ErrorAs(t, err, &recomputeErr)
	assert.Equal(t, want, recomputeErr.Stage)
}

func TestProfileService_Recompute_DegradesGracefully(t *testing.T) {
	t.Run("failed collection is empty", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.addRecords(userID, "memory_match", 3, `{"accuracy": 70}`)
		f.addRecords(userID, "speed_sort", 3, `{"sessionOverview": {"averageReactionTime": 500}}`)
		f.activities.failing["speed_sort"] = errMockStore

		resp, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		require.NoError(t, err)
		assert.Equal(t, 70, resp.Profile.Domains[domain.DomainMemory].Current)
		assert.Equal(t, 0, resp.Profile.Domains[domain.DomainProcessingSpeed].Current)
	})

	t.Run("population unavailable", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.addRecords(userID, "memory_match", 3, `{"accuracy": 70}`)
		f.profiles.popErr = errMockStore

		resp, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		require.NoError(t, err)
		assert.Equal(t, profile.NeutralPercentile, resp.Profile.Percentiles[domain.DomainMemory])
	})

	t.Run("unreadable prior", func(t *testing.T) {
		f := newProfileFixture(t)
		userID := f.addUser()
		f.profiles.snapshots[userID] = &domain.ProfileSnapshot{UserID: userID, Profile: datatypes.JSON(`"garbage"`)}

		_, err := f.svc.Recompute(context.Background(), userID, metrics.TriggerOnDemand)
		assert.NoError(t, err)
	})
}

func TestProfileService_GetAndGetSync(t *testing.T) {
	f := newProfileFixture(t)
	userID := f.addUser()
	ctx := context.Background()

	_, err := f.svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrProfileNotComputed)
	_, err = f.svc.GetSync(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrProfileNotComputed)

	computed, err := f.svc.Recompute(ctx, userID, metrics.TriggerOnDemand)
	require.NoError(t, err)

	p, err := f.svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.True(t, serviceNow.Equal(p.ComputedAt))

	s, err := f.svc.GetSync(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, computed.Sync.SyncScore, s.SyncScore)
	assert.Equal(t, computed.Sync.Chronotype.Type, s.Chronotype.Type)
}

func TestProfileService_Leaderboard(t *testing.T) {
	f := newProfileFixture(t)
	top, mid, low := uuid.New(), uuid.New(), uuid.New()
	f.profiles.setScore(top, domain.DomainMemory, 90)
	f.profiles.setScore(mid, domain.DomainMemory, 70)
	f.profiles.setScore(low, domain.DomainMemory, 50)
	f.profiles.setScore(low, domain.DomainReasoning, 99)

	resp, err := f.svc.Leaderboard(context.Background(), domain.DomainMemory, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.DomainMemory, resp.Domain)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, domain.LeaderboardEntry{Rank: 1, UserID: top, Score: 90, Percentile: 100, Confidence: 0.5}, resp.Entries[0])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 2, UserID: mid, Score: 70, Percentile: 50, Confidence: 0.5}, resp.Entries[1])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 3, UserID: low, Score: 50, Percentile: 0, Confidence: 0.5}, resp.Entries[2])

	limited, err := f.svc.Leaderboard(context.Background(), domain.DomainMemory, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Entries, 1)

	_, err = f.svc.Leaderboard(context.Background(), "creativity", 10)
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestNormalizeLeaderboardLimit(t *testing.T) {
	assert.Equal(t, DefaultLeaderboardLimit, normalizeLeaderboardLimit(0))
	assert.Equal(t, DefaultLeaderboardLimit, normalizeLeaderboardLimit(-5))
	assert.Equal(t, 25, normalizeLeaderboardLimit(25))
	assert.Equal(t, MaxLeaderboardLimit, normalizeLeaderboardLimit(1000))
}

func TestProfileService_RecomputeAll(t *testing.T) {
	f := newProfileFixture(t)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := f.addUser()
		ids = append(ids, id)
		f.addRecords(id, "pattern_logic", 2, fmt.Sprintf(`{"accuracy": %d}`, 50+10*i))
	}
	f.locker.held[ids[1].String()] = true

	report, err := f.svc.RecomputeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []uuid.UUID{ids[1]}, report.FailedIDs)
	assert.Equal(t, serviceNow, report.StartedAt)
	assert.Equal(t, 2, f.profiles.saves)
	assert.Equal(t, 1.0, metricValue(t, f.metrics, "cogsync_batch_last_failed", nil))
}

func TestProfileService_RecomputeAll_ListFails(t *testing.T) {
	f := newProfileFixture(t)
	f.addUser()
	f.users.listErr = errMockStore

	report, err := f.svc.RecomputeAll(context.Background())
	assert.ErrorIs(t, err, errMockStore)
	assert.Nil(t, report)
	assert.Equal(t, 0, f.profiles.saves)
}

func TestProfileService_RecomputeAll_Cancelled(t *testing.T) {
	f := newProfileFixture(t)
	f.addUser()
	f.addUser()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
}

func TestWithoutOne(t *testing.T) {
	assert.Equal(t, []float64{70, 90}, withoutOne([]float64{90, 70, 90}, 90))
	assert.Equal(t, []float64{1, 2}, withoutOne([]float64{1, 2}, 5))
}
