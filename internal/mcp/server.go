// ABOUTME: MCP server setup for the workout schedule repository.
// ABOUTME: Wraps the MCP server with the sync-aware repository and the local cache.
package mcp

import (
	"context"

	"github.com/harperreed/workouts/internal/models"
	"github.com/harperreed/workouts/internal/repository"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Schedules is the read and sync surface the tools call.
type Schedules interface {
	GetSchedule(ctx context.Context, name string) (*models.Schedule, error)
	GetSchedules(ctx context.Context) ([]*models.Schedule, error)
	SyncSchedulesWithRemote(ctx context.Context) (*repository.SyncResult, error)
	Status() (*repository.Status, error)
}

// Server wraps the MCP server with repository access.
type Server struct {
	mcpServer *mcp.Server
	repo      Schedules
	cache     storage.Repository
}

// NewServer creates a new MCP server. Tools go through repo so reads obey
// the staleness policy; resources read cache directly and never sync.
func NewServer(repo Schedules, cache storage.Repository) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "workouts",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		cache:     cache,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
