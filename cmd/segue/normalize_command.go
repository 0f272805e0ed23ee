package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"segue/internal/title"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "normalize <title>",
		Short: "Parse a raw filename into show, season, episode, and year",
		Long: `Parse a release-style filename without any network access.

Examples:
  segue normalize "Show.Name.S02E05.1080p.WEB-DL.mkv"
  segue normalize "[SubGroup] Anime Title - 12 [720p].mkv" --json`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if raw == "" {
				return fmt.Errorf("title is required")
			}
			result := title.Normalize(raw)

			if jsonOutput {
				return writeJSON(cmd, result)
			}

			rows := [][]string{{
				result.ShowName,
				fmt.Sprintf("%d", result.Season),
				fmt.Sprintf("%d", result.Episode),
				yearCell(result.Year),
				yesNo(result.Anime),
			}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Show", "Season", "Episode", "Year", "Anime"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func yearCell(year int) string {
	if year == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", year)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
