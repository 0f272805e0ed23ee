package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"segue/internal/skipcache"
	"segue/internal/title"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "identify <title>",
		Short: "Resolve a filename to its external IDs",
		Long: `Normalize a filename and resolve its IMDB ID via Cinemeta, plus the
MyAnimeList ID via Jikan when the filename uses anime naming.

Examples:
  segue identify "Show.Name.S02E05.1080p.WEB-DL.mkv"
  segue identify "[SubGroup] Anime Title - 12 [720p].mkv" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			raw := strings.TrimSpace(args[0])
			if raw == "" {
				return fmt.Errorf("title is required")
			}
			parsed := title.Normalize(raw)

			runCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			var store *skipcache.Store
			if !noCache {
				store, err = ctx.openCache(cfg)
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
				}
			}

			id, fromCache, err := ctx.resolveIdentity(runCtx, cfg, logger, store, raw, parsed)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, id)
			}

			rows := [][]string{{
				id.ShowName,
				fmt.Sprintf("%d", id.Season),
				fmt.Sprintf("%d", id.Episode),
				yearCell(id.Year),
				idCell(id.ImdbID),
				malCell(id.MalID),
				yesNo(fromCache),
			}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Show", "Season", "Episode", "Year", "IMDB", "MAL", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the persistent cache")
	return cmd
}

func idCell(id string) string {
	if id == "" {
		return "-"
	}
	return id
}

func malCell(id int) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}
