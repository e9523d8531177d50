// ABOUTME: MCP tool implementations for workout schedules.
// ABOUTME: Provides list, get, sync and status operations backed by the repository.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/workouts/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_schedules",
		Description: "List cached workout schedules, syncing from the server first if the cache is stale or empty",
	}, s.handleListSchedules)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_schedule",
		Description: "Get one schedule (training week) by name with all workouts and exercises",
	}, s.handleGetSchedule)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_schedules",
		Description: "Replace the local cache with the server's current schedules",
	}, s.handleSyncSchedules)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show when schedules were last synced and whether the cache is stale",
	}, s.handleSyncStatus)
}

// Tool input/output types

type emptyInput struct{}

type scheduleSummary struct {
	Name      string `json:"name"`
	Workouts  int    `json:"workouts"`
	Exercises int    `json:"exercises"`
}

type listSchedulesOutput struct {
	Count     int               `json:"count"`
	Schedules []scheduleSummary `json:"schedules"`
}

type getScheduleInput struct {
	Name string `json:"name" jsonschema:"Schedule name, e.g. Week 1"`
}

type syncOutput struct {
	Succeeded int      `json:"succeeded"`
	Total     int      `json:"total"`
	Failed    []string `json:"failed"`
	Message   string   `json:"message"`
}

type statusOutput struct {
	LastSync        string `json:"last_sync,omitempty"`
	Stale           bool   `json:"stale"`
	RefreshInterval string `json:"refresh_interval"`
	NextRefresh     string `json:"next_refresh,omitempty"`
	Schedules       int    `json:"schedules"`
	Exercises       int    `json:"exercises"`
}

// Tool handlers

func (s *Server) handleListSchedules(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, listSchedulesOutput, error) {
	schedules, err := s.repo.GetSchedules(ctx)
	if err != nil {
		return nil, listSchedulesOutput{}, fmt.Errorf("failed to list schedules: %w", err)
	}

	out := listSchedulesOutput{
		Count:     len(schedules),
		Schedules: make([]scheduleSummary, 0, len(schedules)),
	}
	for _, sched := range schedules {
		out.Schedules = append(out.Schedules, summarize(sched))
	}
	return nil, out, nil
}

func (s *Server) handleGetSchedule(ctx context.Context, req *mcp.CallToolRequest, input getScheduleInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return nil, nil, fmt.Errorf("name is required")
	}

	sched, err := s.repo.GetSchedule(ctx, input.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule not available: %w", err)
	}
	return nil, sched, nil
}

func (s *Server) handleSyncSchedules(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, syncOutput, error) {
	res, err := s.repo.SyncSchedulesWithRemote(ctx)
	if err != nil {
		return nil, syncOutput{}, fmt.Errorf("sync failed: %w", err)
	}

	return nil, syncOutput{
		Succeeded: res.Succeeded,
		Total:     res.Total,
		Failed:    res.Failed,
		Message:   fmt.Sprintf("Synced %d/%d schedules", res.Succeeded, res.Total),
	}, nil
}

func (s *Server) handleSyncStatus(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, statusOutput, error) {
	st, err := s.repo.Status()
	if err != nil {
		return nil, statusOutput{}, fmt.Errorf("failed to read status: %w", err)
	}
	counts, err := s.cache.Counts()
	if err != nil {
		return nil, statusOutput{}, fmt.Errorf("failed to count schedules: %w", err)
	}

	out := statusOutput{
		Stale:           st.Stale,
		RefreshInterval: st.RefreshInterval.String(),
		Schedules:       counts.Schedules,
		Exercises:       counts.Exercises,
	}
	if st.HasSynced {
		out.LastSync = st.LastSync.Format(time.RFC3339)
		out.NextRefresh = st.NextRefresh.Format(time.RFC3339)
	}
	return nil, out, nil
}

func summarize(s *models.Schedule) scheduleSummary {
	return scheduleSummary{
		Name:      s.Name,
		Workouts:  len(s.Workouts),
		Exercises: s.ExerciseCount(),
	}
}
