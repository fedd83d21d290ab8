package commands

import (
	"errors"
	"fmt"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/spf13/cobra"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var recompute bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users, survey answers, sleep logs and activity records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withBackend(cmd.Context(), func(b *Backend, log *logger.Logger) error {
				if b.Seed == nil {
					return errors.New("seeding is not supported by this backend")
				}
				if err := b.Seed(); err != nil {
					return err
				}
				if !recompute {
					return nil
				}
				report, err := b.Profiles.RecomputeAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("recompute after seed: %w", err)
				}
				log.Info("seeded profiles computed", "succeeded", report.Succeeded, "failed", report.Failed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&recompute, "recompute", true, "recompute every profile after seeding")
	return cmd
}
