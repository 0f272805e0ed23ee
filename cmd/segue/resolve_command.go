package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"segue/internal/config"
	"segue/internal/identity"
	"segue/internal/logging"
	"segue/internal/segments"
	"segue/internal/skipcache"
	"segue/internal/title"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noCache bool
	var imdbID string
	var malID int
	var season int
	var episode int

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve skip segments for an episode through the provider tiers",
		Long: `Resolve skip segments by walking the provider tiers in fallback order:
AnimeSkip, SkipDB, IntroHater, AniSkip, IntroDB. The first tier that
returns segments wins. Identity is resolved from the filename unless
--imdb or --mal overrides it.

Examples:
  segue resolve "Show.Name.S02E05.1080p.WEB-DL.mkv"
  segue resolve "whatever.mkv" --imdb tt22248376 --season 1 --episode 5
  segue resolve "[SubGroup] Anime Title - 12.mkv" --json`,
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
			if season > 0 {
				parsed.Season = season
			}
			if episode > 0 {
				parsed.Episode = episode
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
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

			var id identity.Identity
			if imdbID != "" || malID > 0 {
				id = identity.Identity{
					RawTitle: raw,
					ShowName: parsed.ShowName,
					Season:   parsed.Season,
					Episode:  parsed.Episode,
					Year:     parsed.Year,
					ImdbID:   strings.TrimSpace(imdbID),
					MalID:    malID,
				}
			} else {
				id, _, err = ctx.resolveIdentity(runCtx, cfg, logger, store, raw, parsed)
				if err != nil {
					return err
				}
			}

			set, fromCache, err := resolveSegments(runCtx, ctx, cfg, logger, store, id)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Identity identity.Identity `json:"identity"`
					Set      segments.Set      `json:"set"`
					Cached   bool              `json:"cached"`
				}{id, set, fromCache})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s S%02dE%02d", id.ShowName, id.Season, id.Episode)
			if id.ImdbID != "" {
				fmt.Fprintf(out, "  [%s]", id.ImdbID)
			}
			if id.MalID > 0 {
				fmt.Fprintf(out, "  [mal %d]", id.MalID)
			}
			fmt.Fprintln(out)

			if set.Empty() {
				fmt.Fprintln(out, "No skip segments found")
				return nil
			}

			rows := make([][]string, 0, len(set.Segments))
			for i, seg := range set.Segments {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					formatSeconds(seg.StartSec),
					formatSeconds(seg.EndSec),
					fmt.Sprintf("%.1fs", seg.EndSec-seg.StartSec),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Length"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Source: %s", set.Source)
			if fromCache {
				fmt.Fprint(out, " (cached)")
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the persistent cache")
	cmd.Flags().StringVar(&imdbID, "imdb", "", "IMDB ID override (skips identity resolution)")
	cmd.Flags().IntVar(&malID, "mal", 0, "MyAnimeList ID override")
	cmd.Flags().IntVar(&season, "season", 0, "Season override")
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode override")
	return cmd
}

func resolveSegments(runCtx context.Context, ctx *commandContext, cfg *config.Config, logger *slog.Logger, store *skipcache.Store, id identity.Identity) (segments.Set, bool, error) {
	if store != nil {
		if set, ok, err := store.GetSegments(runCtx, id.CacheKey()); err == nil && ok {
			return set, true, nil
		}
	}

	resolver, err := ctx.skipResolver(cfg, logger)
	if err != nil {
		return segments.Set{}, false, err
	}
	set := resolver.Resolve(runCtx, id)
	resolver.Wait()

	if store != nil && !set.Empty() {
		if err := store.PutSegments(runCtx, id.CacheKey(), set); err != nil {
			logger.Warn("segment cache write failed", logging.Error(err))
		}
	}
	return set, false, nil
}

func formatSeconds(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	minutes := int(d.Minutes())
	remainder := sec - float64(minutes)*60
	return fmt.Sprintf("%d:%05.2f", minutes, remainder)
}
