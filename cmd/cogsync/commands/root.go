// Package commands holds the cogsync cobra commands.
package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/blaisecz/cognitive-sync/internal/app"
	"github.com/blaisecz/cognitive-sync/internal/config"
	"github.com/blaisecz/cognitive-sync/internal/seed"
	"github.com/blaisecz/cognitive-sync/internal/service"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/spf13/cobra"
)

// Backend is what the commands need from a wired application.
type Backend struct {
	Profiles service.ProfileService
	Seed     func() error
	Close    func() error
}

// Opener builds a Backend from configuration.
type Opener func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error)

// OpenApp connects to the configured database and redis.
func OpenApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Profiles: a.Profiles,
		Seed:     func() error { return seed.Run(a.DB, log) },
		Close:    a.Close,
	}, nil
}

type rootOptions struct {
	open     Opener
	logLevel string
}

// NewRootCommand builds the command tree. open is called lazily by commands
// that need storage.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "cogsync",
		Short:         "Cognitive Sync maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(newRecomputeCommand(opts))
	root.AddCommand(newSeedCommand(opts))
	root.AddCommand(newLangfuseCommand(opts))
	return root
}

func (o *rootOptions) config() (*config.Config, *logger.Logger, error) {
	cfg := config.Load()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withBackend opens a backend, runs fn and closes it.
func (o *rootOptions) withBackend(ctx context.Context, fn func(b *Backend, log *logger.Logger) error) error {
	cfg, log, err := o.config()
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := o.open(ctx, cfg, log)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(b, log)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
