// ABOUTME: CLI commands for syncing with the schedule server.
// ABOUTME: Supports sync, status, and clear of the local cache.
package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearYes bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Replace the local cache with the server's schedules",
	Long: `Fetch every schedule from the server and replace the local cache.

Schedules that no longer exist on the server are removed. A schedule that
can't be stored is skipped and reported; the others are kept. If the fetch
itself fails nothing local changes.

Concurrent syncs from the MCP server and the CLI share one fetch.

EXAMPLES:

  workouts sync              # Sync now
  workouts sync -v           # Sync with debug logging`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := repo.SyncSchedulesWithRemote(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if len(res.Failed) == 0 {
			color.Green("✓ Synced %d/%d schedules", res.Succeeded, res.Total)
			return nil
		}

		color.Yellow("⚠ Synced %d/%d schedules", res.Succeeded, res.Total)
		for _, name := range res.Failed {
			fmt.Printf("  %s %s\n", color.RedString("✗"), name)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show when schedules were last synced, whether the cache is stale,
and what the cache holds.

EXAMPLES:

  workouts status`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := repo.Status()
		if err != nil {
			return fmt.Errorf("failed to read sync status: %w", err)
		}
		counts, err := db.Counts()
		if err != nil {
			return fmt.Errorf("failed to count schedules: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("Server:     %s\n", cfg.Server.BaseURL)
		fmt.Printf("Database:   %s\n", faint.Sprint(db.Path()))
		if st.HasSynced {
			fmt.Printf("Last sync:  %s\n", st.LastSync.Local().Format(time.RFC1123))
		} else {
			fmt.Printf("Last sync:  %s\n", faint.Sprint("never"))
		}
		fmt.Printf("Interval:   %s\n", st.RefreshInterval)
		if st.Stale {
			fmt.Printf("State:      %s\n", color.YellowString("stale"))
		} else {
			fmt.Printf("State:      %s (refresh after %s)\n",
				color.GreenString("fresh"), st.NextRefresh.Local().Format(time.RFC1123))
		}
		fmt.Printf("Cached:     %d schedules, %d workouts, %d exercises\n",
			counts.Schedules, counts.Workouts, counts.Exercises)

		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the local cache and sync marker",
	Long: `Delete every cached schedule and forget the last sync time.

The next 'workouts schedules' will fetch everything from the server again.
The server is not touched.

EXAMPLES:

  workouts clear             # Asks for confirmation
  workouts clear --yes       # No prompt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			fmt.Fprint(cmd.OutOrStdout(), "Delete all cached schedules? [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := repo.Reset(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		color.Yellow("✗ Cleared local cache")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCmd)
}
