package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"segue/internal/skipcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the persistent skip cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

// withCache opens the configured store for the duration of one command.
func withCache(ctx *commandContext, fn func(*cobra.Command, context.Context, *skipcache.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		store, err := ctx.openCache(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("cache is disabled in configuration")
		}
		defer store.Close()
		return fn(cmd, cmd.Context(), store)
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache row counts",
	}
	cmd.RunE = withCache(ctx, func(c *cobra.Command, runCtx context.Context, store *skipcache.Store) error {
		stats, err := store.Stats(runCtx)
		if err != nil {
			return fmt.Errorf("read cache stats: %w", err)
		}
		if jsonOutput {
			return writeJSON(c, stats)
		}
		rows := [][]string{
			{"Identities", fmt.Sprintf("%d", stats.Identities)},
			{"Segment sets", fmt.Sprintf("%d", stats.SegmentSets)},
		}
		fmt.Fprintln(c.OutOrStdout(), renderTable(
			[]string{"Table", "Rows"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
		fmt.Fprintf(c.OutOrStdout(), "Database: %s\n", store.Path())
		return nil
	})
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired cache rows",
	}
	cmd.RunE = withCache(ctx, func(c *cobra.Command, runCtx context.Context, store *skipcache.Store) error {
		removed, err := store.Prune(runCtx)
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "Pruned %d expired rows\n", removed)
		return nil
	})
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cache rows",
	}
	cmd.RunE = withCache(ctx, func(c *cobra.Command, runCtx context.Context, store *skipcache.Store) error {
		if !force {
			return fmt.Errorf("refusing to clear the cache without --force")
		}
		if err := store.Clear(runCtx); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(c.OutOrStdout(), "Cache cleared")
		return nil
	})
	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion of all cached rows")
	return cmd
}
