// ABOUTME: Root Cobra command for workouts CLI.
// ABOUTME: Builds config, logger, cache, sync state, remote client and repository per run.
package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/workouts/internal/config"
	"github.com/harperreed/workouts/internal/logging"
	"github.com/harperreed/workouts/internal/remote"
	"github.com/harperreed/workouts/internal/repository"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/harperreed/workouts/internal/syncstate"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
	db     *storage.DB
	state  *syncstate.BadgerStore
	client *remote.Client
	repo   *repository.Repository
)

var rootCmd = &cobra.Command{
	Use:   "workouts",
	Short: "Local-first workout schedule cache",
	Long: `Workouts keeps a local copy of your training schedules and syncs it
from the schedule API.

HOW IT WORKS:

  Schedules are read from a local SQLite cache. Listing schedules refreshes
  the whole cache from the server when the last full sync is older than the
  refresh interval (72h by default). Looking up one week serves the cache
  when it has that week and fetches it otherwise.

QUICK START:

  $ workouts sync                  # Pull every schedule from the server
  $ workouts schedules             # List cached schedules
  $ workouts show "Week 1"         # Print one week's workouts
  $ workouts status                # When did we last sync?

CONFIGURATION:

  Settings are read from ~/.config/workouts/config.yaml and WORKOUTS_*
  environment variables, for example:

  server:
    base_url: https://example.com/api
  auth:
    token_file: ~/.config/workouts/token
  sync:
    refresh_interval: 72h

  $ WORKOUTS_AUTH_TOKEN=... workouts sync

MCP INTEGRATION:

  Run 'workouts mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "workouts": { "command": "workouts", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  The cache lives at ~/.local/share/workouts/workouts.db and the last-sync
  marker under ~/.local/share/workouts/state. Use --db to point at another
  data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

func setup() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}

	opts := logging.Options{Level: cfg.Log.Level, File: config.ExpandPath(cfg.Log.File)}
	if verbose {
		opts.Level = "debug"
	}
	logger, err = logging.New(opts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	db, err = storage.OpenWithLogger(cfg.DBPath(), logger.WithPrefix("storage"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	state, err = syncstate.OpenBadger(cfg.StateDir())
	if err != nil {
		return fmt.Errorf("failed to open sync state: %w", err)
	}

	client = remote.New(cfg.Server.BaseURL, cfg.TokenSource(),
		remote.WithTimeout(cfg.Server.Timeout),
		remote.WithLogger(logger.WithPrefix("remote")),
	)

	repo = repository.New(db, client, state,
		repository.WithLogger(logger.WithPrefix("sync")),
		repository.WithRefreshInterval(cfg.Sync.RefreshInterval),
		repository.WithSyncTimeout(cfg.Sync.Timeout),
	)
	return nil
}

// closeAll releases whatever setup opened. Safe to call more than once.
func closeAll() error {
	var errs []error
	if state != nil {
		errs = append(errs, state.Close())
		state = nil
	}
	if db != nil {
		errs = append(errs, db.Close())
		db = nil
	}
	client = nil
	repo = nil
	return errors.Join(errs...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/workouts/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "db", "", "data directory (overrides storage.data_dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
