// Package scheduler runs the periodic full-population profile recompute.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = time.Hour

// BatchRunner is satisfied by service.ProfileService.
type BatchRunner interface {
	RecomputeAll(ctx context.Context) (*domain.BatchReport, error)
}

// Recomputer triggers RecomputeAll on a fixed interval. Runs never overlap:
// a tick that fires during a long batch is dropped.
type Recomputer struct {
	runner   BatchRunner
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	last    *domain.BatchReport
}

func NewRecomputer(runner BatchRunner, interval time.Duration, log *logger.Logger) *Recomputer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recomputer{runner: runner, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. The first batch starts one interval
// after Run is called.
func (r *Recomputer) Run(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.log.Info("recompute scheduler started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("recompute scheduler stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single batch and remembers its report.
func (r *Recomputer) RunOnce(ctx context.Context) *domain.BatchReport {
	report, err := r.runner.RecomputeAll(ctx)
	if err != nil {
		r.log.Error("scheduled recompute failed", "error", err)
		return nil
	}

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()
	return report
}

// LastReport returns the report of the most recent successful batch.
func (r *Recomputer) LastReport() *domain.BatchReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
