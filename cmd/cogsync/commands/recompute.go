package commands

import (
	"fmt"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRecomputeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute cognitive profiles and sync scores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Recompute every user sequentially",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withBackend(cmd.Context(), func(b *Backend, _ *logger.Logger) error {
				report, err := b.Profiles.RecomputeAll(cmd.Context())
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if report.Failed > 0 {
					return fmt.Errorf("%d of %d recomputes failed", report.Failed, report.Processed)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "user <userId>",
		Short: "Recompute one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", args[0], err)
			}
			return opts.withBackend(cmd.Context(), func(b *Backend, _ *logger.Logger) error {
				resp, err := b.Profiles.Recompute(cmd.Context(), userID, metrics.TriggerOnDemand)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	})

	return cmd
}
