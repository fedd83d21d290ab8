// Cognitive Sync API
//
// Cognitive profiles from activity telemetry and circadian sync scores.
//
//	@title			Cognitive Sync API
//	@version		1.0
//	@description	Aggregates activity telemetry into cognitive domain profiles and scores how well a schedule fits the body clock.
//
//	@BasePath	/v1
//
//	@tag.name			users
//	@tag.description	User management endpoints
//
//	@tag.name			sleep-logs
//	@tag.description	Sleep session tracking endpoints
//
//	@tag.name			quiz
//	@tag.description	Schedule survey answers
//
//	@tag.name			activities
//	@tag.description	Activity telemetry ingestion
//
//	@tag.name			profiles
//	@tag.description	Cognitive profiles, sync scores and leaderboards
//
//	@tag.name			insights
//	@tag.description	LLM coaching insights
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/app"
	"github.com/blaisecz/cognitive-sync/internal/config"
	"github.com/blaisecz/cognitive-sync/internal/scheduler"
	"github.com/blaisecz/cognitive-sync/internal/seed"
	"github.com/blaisecz/cognitive-sync/internal/telemetry"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// starter builds the application; tests replace it.
type starter func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app.App, error)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log, app.New)
	stop()

	if err != nil {
		log.Error("exiting", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run serves until ctx is cancelled. Every started resource is released
// before it returns, including on startup errors.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger, start starter) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	a, err := start(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	if cfg.Seed {
		log.Info("seeding database with sample data (SEED=true)")
		if err := seed.Run(a.DB, log); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	go scheduler.NewRecomputer(a.Profiles, cfg.RecomputeInterval, log.With("component", "scheduler")).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router().Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}
