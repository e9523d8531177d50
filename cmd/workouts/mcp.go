// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the schedule repository.
package main

import (
	"github.com/harperreed/workouts/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr or log.file.

CONFIGURATION:

  {
    "mcpServers": {
      "workouts": {
        "command": "workouts",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_schedules   List schedules (refreshes when stale)
  get_schedule     Get one schedule by name
  sync_schedules   Replace the cache from the server
  sync_status      Last sync time and cache counts

AVAILABLE RESOURCES:

  workouts://schedules   All cached schedules (never syncs)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, db)
		if err != nil {
			return err
		}

		// main cancels the context on SIGINT/SIGTERM
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
