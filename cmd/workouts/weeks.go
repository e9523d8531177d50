// ABOUTME: CLI command for listing week names known to the server.
// ABOUTME: Always asks the server; the local cache is not consulted.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List week names on the server",
	Long: `List the schedule names the server knows about, without downloading
the schedules themselves.

EXAMPLES:

  workouts weeks`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := client.FetchWeekNames(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch week names: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No weeks on the server.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weeksCmd)
}
