// ABOUTME: CLI command for printing one schedule.
// ABOUTME: Serves the cached week or fetches it from the server on a miss.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/workouts/internal/models"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:     "show <week>",
	Aliases: []string{"get"},
	Short:   "Show a schedule",
	Long: `Show one schedule's workouts, grouped the way the plan groups them
(primary, secondary, cardio, core, then any others).

A cached schedule is returned as-is, even when the cache is stale. A week
that isn't cached is fetched from the server and stored.

EXAMPLES:

  workouts show "Week 1"          # Print Week 1
  workouts show "Week 1" --json   # Print Week 1 as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, err := repo.GetSchedule(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get schedule %q: %w", args[0], err)
		}

		if showJSON {
			data, err := json.MarshalIndent(schedule, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode schedule: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printSchedule(schedule)
		return nil
	},
}

func printSchedule(s *models.Schedule) {
	faint := color.New(color.Faint)
	color.New(color.Bold).Printf("%s", s.Name)
	fmt.Printf(" %s\n", faint.Sprint(shortID(s.ID)))

	if len(s.Workouts) == 0 {
		fmt.Println("  No workouts.")
		return
	}

	for _, w := range s.Workouts {
		fmt.Println()
		color.Cyan("Day %s", w.Name)
		for _, group := range models.OrderedGroupKeys(w) {
			fmt.Printf("  %s\n", color.New(color.Bold).Sprint(group))
			for _, e := range w.Exercises[group] {
				fmt.Printf("    %s %s", padRight(truncate(e.Name, 28), 28), prescription(e))
				if e.Notes != nil && *e.Notes != "" {
					fmt.Printf("  %s", faint.Sprint(*e.Notes))
				}
				fmt.Println()
			}
		}
	}
}

func prescription(e models.Exercise) string {
	parts := []string{fmt.Sprintf("%d sets", e.Sets)}
	if e.Reps != nil {
		parts[0] = fmt.Sprintf("%dx%d", e.Sets, *e.Reps)
	}
	if e.Weight != nil && *e.Weight != "" {
		parts = append(parts, "@ "+*e.Weight)
	}
	return strings.Join(parts, " ")
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(showCmd)
}
