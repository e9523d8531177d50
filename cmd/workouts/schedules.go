// ABOUTME: CLI command for listing cached schedules.
// ABOUTME: Refreshes the cache from the server when the last sync is stale.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schedulesCmd = &cobra.Command{
	Use:     "schedules",
	Aliases: []string{"ls", "list"},
	Short:   "List workout schedules",
	Long: `List every cached workout schedule in week order.

If the last full sync is older than the refresh interval the cache is
refreshed from the server first. A failed refresh is logged and the cached
schedules are shown anyway. An empty cache always triggers a sync.

EXAMPLES:

  workouts schedules          # List schedules
  workouts ls                 # Same, shorter`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schedules, err := repo.GetSchedules(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		if len(schedules) == 0 {
			fmt.Println("No schedules found.")
			return nil
		}

		faint := color.New(color.Faint)
		bold := color.New(color.Bold)
		fmt.Printf("%s  %s  %s\n",
			bold.Sprint(padRight("SCHEDULE", 24)),
			bold.Sprint(padRight("WORKOUTS", 8)),
			bold.Sprint("EXERCISES"))
		for _, s := range schedules {
			fmt.Printf("%s  %s  %s\n",
				padRight(truncate(s.Name, 24), 24),
				padRight(fmt.Sprint(len(s.Workouts)), 8),
				faint.Sprint(s.ExerciseCount()))
		}

		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	rootCmd.AddCommand(schedulesCmd)
}
