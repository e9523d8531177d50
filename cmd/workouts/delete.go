// ABOUTME: CLI command for deleting a cached schedule.
// ABOUTME: Removes one week from the local cache only.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <week>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a cached schedule",
	Long: `Delete one schedule from the local cache by name.

The server copy is not touched. The next 'workouts show' for this week
fetches it again; the next full sync restores it.

EXAMPLES:

  workouts delete "Week 1"
  workouts rm "Week 1"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		// First, get the schedule to show what we're deleting
		schedule, err := db.GetScheduleByName(name)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("schedule not found: %s", name)
		}
		if err != nil {
			return fmt.Errorf("failed to read schedule: %w", err)
		}

		if err := db.DeleteSchedule(name); err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}

		color.Yellow("✗ Deleted %s", schedule.Name)
		fmt.Printf("  %s %d workouts, %d exercises\n",
			color.New(color.Faint).Sprint(shortID(schedule.ID)),
			len(schedule.Workouts), schedule.ExerciseCount())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
