package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/langfuse"
	"github.com/spf13/cobra"
)

func newLangfuseCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langfuse",
		Short: "Langfuse integration checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Send a test trace and score to Langfuse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.config()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Base URL:    %s\n", cfg.LangfuseBaseURL)
			fmt.Fprintf(out, "Public Key:  %s\n", maskKey(cfg.LangfusePublicKey))
			fmt.Fprintf(out, "Secret Key:  %s\n", maskKey(cfg.LangfuseSecretKey))
			fmt.Fprintf(out, "Environment: %s\n", cfg.LangfuseEnv)

			client := langfuse.NewClient(langfuse.Config{
				BaseURL:     cfg.LangfuseBaseURL,
				PublicKey:   cfg.LangfusePublicKey,
				SecretKey:   cfg.LangfuseSecretKey,
				Environment: cfg.LangfuseEnv,
				Logger:      log,
			})
			if !client.IsEnabled() {
				return errors.New("langfuse is disabled; set LANGFUSE_BASE_URL, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			traceID, err := client.CreateTrace(ctx, langfuse.TraceInput{
				Name:   "cogsync-ping",
				Input:  map[string]any{"time": time.Now().UTC().Format(time.RFC3339)},
				Output: map[string]any{"status": "ok"},
				Tags:   []string{"ping"},
			})
			if err != nil {
				return err
			}
			if err := client.CreateScore(ctx, langfuse.ScoreInput{TraceID: traceID, Name: "ping", Value: 1}); err != nil {
				return err
			}

			fmt.Fprintf(out, "Trace:       %s\n", traceID)
			return nil
		},
	})
	return cmd
}

func maskKey(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return "(empty)"
		}
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
