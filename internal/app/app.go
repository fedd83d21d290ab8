// Package app wires configuration into repositories, services and handlers.
// Both the API server and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/api"
	"github.com/blaisecz/cognitive-sync/internal/api/handler"
	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/config"
	"github.com/blaisecz/cognitive-sync/internal/langfuse"
	"github.com/blaisecz/cognitive-sync/internal/llm"
	"github.com/blaisecz/cognitive-sync/internal/lock"
	"github.com/blaisecz/cognitive-sync/internal/profile"
	"github.com/blaisecz/cognitive-sync/internal/repository"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	lockPrefix = "cogsync:recompute:"
	lockTTL    = 2 * time.Minute
)

// App holds the wired services. Close releases the connections it opened.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	DB      *gorm.DB
	Redis   *goredis.Client
	Metrics *metrics.Manager
	Scoring config.Scoring

	Users     service.UserService
	SleepLogs service.SleepLogService
	Quizzes   service.QuizService
	Activity  service.ActivityService
	Profiles  service.ProfileService
	Insights  service.InsightsService
	Langfuse  langfuse.Client
}

// New connects to the database (and redis when configured), migrates the
// schema and builds every service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	scoring, err := config.LoadScoring(cfg.ScoringConfigPath)
	if err != nil {
		return nil, err
	}

	db, err := config.NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	rdb, err := config.NewRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Redis:   rdb,
		Metrics: metrics.NewManager(),
		Scoring: scoring,
	}
	a.wire(ctx)
	return a, nil
}

func (a *App) wire(ctx context.Context) {
	cfg := a.Config

	userRepo := repository.NewUserRepository(a.DB)
	sleepLogRepo := repository.NewSleepLogRepository(a.DB)
	quizRepo := repository.NewQuizRepository(a.DB)
	activityRepo := repository.NewActivityRecordRepository(a.DB)
	profileRepo := repository.NewProfileRepository(a.DB)

	var locker lock.Locker
	if a.Redis != nil {
		locker = lock.NewRedisLocker(a.Redis, lockPrefix, lockTTL, a.Log.With("component", "lock"))
		a.Log.Info("recompute lock backed by redis")
	} else {
		locker = lock.NewLocalLocker()
		a.Log.Info("REDIS_URL not set, recompute lock is process-local")
	}

	a.Users = service.NewUserService(userRepo)
	a.SleepLogs = service.NewSleepLogService(sleepLogRepo, userRepo)
	a.Quizzes = service.NewQuizService(quizRepo, userRepo)
	a.Activity = service.NewActivityService(activityRepo, userRepo, a.Scoring.Domains)
	a.Profiles = service.NewProfileService(service.ProfileDeps{
		Users:            userRepo,
		Activities:       activityRepo,
		Quizzes:          quizRepo,
		SleepLogs:        sleepLogRepo,
		Profiles:         profileRepo,
		Locker:           locker,
		Builder:          profile.NewBuilder(a.Scoring.Domains, a.Scoring.Peak),
		Calculator:       circadian.NewCalculator(a.Scoring.Survey),
		Metrics:          a.Metrics,
		Logger:           a.Log.With("component", "profile"),
		RecordWindowDays: cfg.RecordWindowDays,
	})

	lfCfg := langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
		Logger:      a.Log.With("component", "langfuse"),
	}
	a.Langfuse = langfuse.NewClient(lfCfg)

	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIInsightsModel)
	if llmClient == nil {
		a.Log.Warn("OPENAI_API_KEY not set, insights endpoint will be unavailable")
	} else {
		prompt, err := langfuse.LoadPrompt(ctx, lfCfg, langfuse.PromptConfig{
			Name:      cfg.LangfusePromptName,
			Label:     cfg.LangfusePromptLabel,
			CachePath: cfg.PromptCachePath,
		}, llm.DefaultSystemPrompt)
		if err != nil {
			a.Log.Warn("insights prompt unavailable, using built-in", "error", err)
		}
		llmClient.WithSystemPrompt(prompt)
	}

	a.Insights = service.NewInsightsService(a.Profiles, llmClient, a.Langfuse, a.Log.With("component", "insights"))
}

// Router builds the HTTP handler tree.
func (a *App) Router() *api.Router {
	return api.NewRouter(api.Handlers{
		Users:     handler.NewUserHandler(a.Users),
		SleepLogs: handler.NewSleepLogHandler(a.SleepLogs),
		Quiz:      handler.NewQuizHandler(a.Quizzes),
		Activity:  handler.NewActivityHandler(a.Activity),
		Profile:   handler.NewProfileHandler(a.Profiles),
		Insights:  handler.NewInsightsHandler(a.Insights),
	}, a.Log, a.Metrics)
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
