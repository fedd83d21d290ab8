package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/lock"
	"github.com/blaisecz/cognitive-sync/internal/profile"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	DefaultRecordWindowDays = 90
	SleepWindowDays         = 30

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100

	// fetchConcurrency caps parallel collection reads per person.
	fetchConcurrency = 4
)

var profileTracer = otel.Tracer("cognitive-sync/profile")

// ProfileService recomputes, stores and serves cognitive profiles and sync
// scores.
type ProfileService interface {
	// Recompute rebuilds and persists one person's profile and sync result.
	// Concurrent recomputes of the same person fail with
	// domain.ErrRecomputeInProgress.
	Recompute(ctx context.Context, userID uuid.UUID, trigger string) (*domain.RecomputeResponse, error)
	// Get returns the stored profile.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UnifiedProfile, error)
	// GetSync returns the stored sync result.
	GetSync(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error)
	// Leaderboard ranks the top scores of one domain.
	Leaderboard(ctx context.Context, d domain.CognitiveDomain, limit int) (*domain.LeaderboardResponse, error)
	// RecomputeAll recomputes every user sequentially. Individual failures
	// are counted in the report; only failing to list users is an error.
	RecomputeAll(ctx context.Context) (*domain.BatchReport, error)
}

// ProfileDeps are the collaborators of the profile service. Metrics may be
// nil; Logger defaults to a no-op logger and Now to time.Now.
type ProfileDeps struct {
	Users      repository.UserRepository
	Activities repository.ActivityRecordRepository
	Quizzes    repository.QuizRepository
	SleepLogs  repository.SleepLogRepository
	Profiles   repository.ProfileRepository
	Locker     lock.Locker
	Builder    *profile.Builder
	Calculator *circadian.Calculator
	Metrics    *metrics.Manager
	Logger     *logger.Logger

	RecordWindowDays int
	Now              func() time.Time
}

type profileService struct {
	ProfileDeps
}

func NewProfileService(deps ProfileDeps) ProfileService {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RecordWindowDays <= 0 {
		deps.RecordWindowDays = DefaultRecordWindowDays
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocalLocker()
	}
	return &profileService{ProfileDeps: deps}
}

func (s *profileService) Recompute(ctx context.Context, userID uuid.UUID, trigger string) (resp *domain.RecomputeResponse, err error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Recompute",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("recompute.trigger", trigger),
		),
	)
	defer span.End()

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.TryLock(ctx, userID.String())
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			s.Metrics.RecordLockContention()
			return nil, domain.ErrRecomputeInProgress
		}
		return nil, recomputeErr(domain.StageLock, fmt.Errorf("lock user %s: %w", userID, err))
	}
	defer release()

	started := time.Now()
	defer func() {
		s.Metrics.RecordRecompute(trigger, time.Since(started), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	now := s.Now().UTC()
	loc := user.Location()

	records, err := s.fetchRecords(ctx, userID, now.AddDate(0, 0, -s.RecordWindowDays))
	if err != nil {
		return nil, recomputeErr(domain.StageFetch, err)
	}

	quiz, err := s.Quizzes.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, recomputeErr(domain.StageFetch, fmt.Errorf("load quiz: %w", err))
		}
	}

	logs, err := s.SleepLogs.ListByEndRange(ctx, userID, now.AddDate(0, 0, -SleepWindowDays), now)
	if err != nil {
		return nil, recomputeErr(domain.StageFetch, fmt.Errorf("load sleep logs: %w", err))
	}
	entries := make([]domain.SleepEntry, 0, len(logs))
	for i := range logs {
		entries = append(entries, logs[i].ToEntry())
	}

	prior, err := s.loadPrior(ctx, userID)
	if err != nil {
		return nil, recomputeErr(domain.StageFetch, err)
	}

	population, err := s.Profiles.Population(ctx, userID)
	if err != nil {
		s.Logger.Warn("population unavailable, using neutral percentiles", "user_id", userID, "error", err)
		population = nil
	}

	built := s.Builder.Build(profile.Input{
		UserID:     userID,
		Records:    records,
		Prior:      prior,
		Population: population,
		Location:   loc,
		Now:        now,
	})
	syncResult := s.Calculator.Compute(circadian.Input{
		Quiz:         quiz,
		Sleep:        entries,
		Cosinor:      built.Cosinor,
		Observations: s.Builder.Observations(records, loc),
		Now:          now,
	})

	if err := s.save(ctx, built, &syncResult); err != nil {
		return nil, recomputeErr(domain.StageStorage, err)
	}

	span.SetAttributes(
		attribute.Int("records.total", records.Total()),
		attribute.Int("sync.score", syncResult.SyncScore),
	)
	s.Logger.Debug("profile recomputed",
		"user_id", userID,
		"trigger", trigger,
		"records", records.Total(),
		"sync_score", syncResult.SyncScore,
	)

	return &domain.RecomputeResponse{Profile: *built, Sync: syncResult}, nil
}

func recomputeErr(stage domain.RecomputeStage, err error) error {
	return &domain.RecomputeError{Stage: stage, Err: err}
}

// fetchRecords reads every mapped activity in parallel. A failed collection
// is logged and scored as empty; only cancellation aborts the fetch.
func (s *profileService) fetchRecords(ctx context.Context, userID uuid.UUID, since time.Time) (profile.Records, error) {
	activities := s.Builder.Mapping().Activities()
	results := make([][]domain.ActivityRecord, len(activities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, activity := range activities {
		g.Go(func() error {
			recs, err := s.Activities.ListByActivity(gctx, userID, activity, since)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.Logger.Warn("activity fetch failed, treating as empty",
					"user_id", userID,
					"activity", activity,
					"error", err,
				)
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	records := make(profile.Records, len(activities))
	for i, activity := range activities {
		if len(results[i]) > 0 {
			records[activity] = results[i]
		}
	}
	return records, nil
}

// loadPrior returns the previous profile, or nil on the first run. A
// snapshot that no longer decodes is treated as absent.
func (s *profileService) loadPrior(ctx context.Context, userID uuid.UUID) (*domain.UnifiedProfile, error) {
	snapshot, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load prior profile: %w", err)
	}

	var prior domain.UnifiedProfile
	if err := json.Unmarshal(snapshot.Profile, &prior); err != nil {
		s.Logger.Warn("prior profile unreadable, recomputing from scratch", "user_id", userID, "error", err)
		return nil, nil
	}
	return &prior, nil
}

func (s *profileService) save(ctx context.Context, p *domain.UnifiedProfile, syncResult *domain.SyncResult) error {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	syncJSON, err := json.Marshal(syncResult)
	if err != nil {
		return fmt.Errorf("encode sync result: %w", err)
	}

	snapshot := &domain.ProfileSnapshot{
		UserID:     p.UserID,
		Profile:    datatypes.JSON(profileJSON),
		Sync:       datatypes.JSON(syncJSON),
		ComputedAt: p.ComputedAt,
	}
	rows := make([]domain.DomainScoreSnapshot, 0, len(domain.CognitiveDomains))
	for _, d := range domain.CognitiveDomains {
		score := p.Domains[d]
		rows = append(rows, domain.DomainScoreSnapshot{
			UserID:     p.UserID,
			Domain:     d,
			Current:    score.Current,
			Confidence: score.Confidence,
			ComputedAt: p.ComputedAt,
		})
	}

	if err := s.Profiles.Save(ctx, snapshot, rows); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *profileService) snapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	exists, err := s.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	snapshot, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileNotComputed
		}
		return nil, err
	}
	return snapshot, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.UnifiedProfile, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Get",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var p domain.UnifiedProfile
	if err := json.Unmarshal(snapshot.Profile, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (s *profileService) GetSync(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.GetSync",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Sync) == 0 || string(snapshot.Sync) == "null" {
		return nil, domain.ErrProfileNotComputed
	}

	var result domain.SyncResult
	if err := json.Unmarshal(snapshot.Sync, &result); err != nil {
		return nil, fmt.Errorf("decode sync result: %w", err)
	}
	return &result, nil
}

func (s *profileService) Leaderboard(ctx context.Context, d domain.CognitiveDomain, limit int) (*domain.LeaderboardResponse, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Leaderboard",
		trace.WithAttributes(attribute.String("domain", string(d))),
	)
	defer span.End()

	if !domain.IsCognitiveDomain(d) {
		return nil, domain.ErrUnknownDomain
	}
	limit = normalizeLeaderboardLimit(limit)

	rows, err := s.Profiles.TopByDomain(ctx, d, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	population, err := s.Profiles.DomainScores(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("load population: %w", err)
	}

	resp := &domain.LeaderboardResponse{
		Domain:  d,
		Entries: make([]domain.LeaderboardEntry, 0, len(rows)),
	}
	for i, row := range rows {
		score := float64(row.Current)
		resp.Entries = append(resp.Entries, domain.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     row.UserID,
			Score:      row.Current,
			Percentile: profile.Percentile(score, withoutOne(population, score)),
			Confidence: row.Confidence,
		})
	}
	return resp, nil
}

func (s *profileService) RecomputeAll(ctx context.Context) (*domain.BatchReport, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.RecomputeAll")
	defer span.End()

	report := &domain.BatchReport{StartedAt: s.Now().UTC()}
	started := time.Now()

	ids, err := s.Users.ListIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list users: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.Logger.Warn("batch recompute cancelled", "processed", report.Processed, "remaining", len(ids)-report.Processed)
			break
		}

		report.Processed++
		if _, err := s.Recompute(ctx, id, metrics.TriggerBatch); err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, id)
			s.Logger.Error("recompute failed", "user_id", id, "error", err)
			continue
		}
		report.Succeeded++
	}

	report.Duration = time.Since(started)
	s.Metrics.RecordBatch(report.Duration, report.Processed, report.Failed)
	span.SetAttributes(
		attribute.Int("batch.processed", report.Processed),
		attribute.Int("batch.failed", report.Failed),
	)
	s.Logger.Info("batch recompute finished",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.Duration.String(),
	)
	return report, nil
}

func normalizeLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// withoutOne removes a single occurrence of v so a ranked user is compared
// with everyone else.
func withoutOne(population []float64, v float64) []float64 {
	out := make([]float64, 0, len(population))
	removed := false
	for _, p := range population {
		if !removed && p == v {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out
}
