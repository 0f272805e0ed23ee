package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"segue/internal/identity"
	"segue/internal/providers"
	"segue/internal/submit"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var imdbID string
	var season int
	var episode int
	var startMs int64
	var endMs int64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a marked intro segment to IntroDB",
		Long: `Submit a user-marked segment to the IntroDB community database.
Marker bounds are validated locally before any network call; the
segment must run between 5 and 180 seconds.

Example:
  segue submit --imdb tt22248376 --season 1 --episode 5 --start 30000 --end 120000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			client, err := providers.NewIntroDB(cfg.IntroDB.URL, cfg.IntroDB.APIKey, seconds(cfg.IntroDB.TimeoutSeconds))
			if err != nil {
				return fmt.Errorf("create introdb client: %w", err)
			}

			id := identity.Identity{
				ImdbID:  strings.TrimSpace(imdbID),
				Season:  season,
				Episode: episode,
			}
			marker := submit.Marker{StartMs: startMs, EndMs: endMs}

			runCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			submitter := submit.NewSubmitter(client, logger)
			result := submitter.Submit(runCtx, marker, id, cfg.IntroDB.APIKey)

			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			message := result.Message
			if result.Success {
				if isTerminal(out) {
					message = ansiGreen + message + ansiReset
				}
				fmt.Fprintln(out, message)
				return nil
			}
			if isTerminal(out) {
				message = ansiRed + message + ansiReset
			}
			fmt.Fprintln(out, message)
			return fmt.Errorf("submission failed")
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of plain text")
	cmd.Flags().StringVar(&imdbID, "imdb", "", "IMDB ID of the show")
	cmd.Flags().IntVar(&season, "season", 0, "Season number")
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode number")
	cmd.Flags().Int64Var(&startMs, "start", 0, "Segment start in milliseconds")
	cmd.Flags().Int64Var(&endMs, "end", 0, "Segment end in milliseconds")
	_ = cmd.MarkFlagRequired("imdb")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("episode")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
