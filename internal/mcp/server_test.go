// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and the cached schedules resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/workouts/internal/logging"
	"github.com/harperreed/workouts/internal/models"
	"github.com/harperreed/workouts/internal/repository"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/harperreed/workouts/internal/syncstate"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubRemote struct {
	schedules []*models.Schedule
	err       error
	calls     int
}

func (r *stubRemote) FetchSchedules(ctx context.Context) ([]*models.Schedule, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *stubRemote) FetchSchedule(ctx context.Context, week string) (*models.Schedule, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.schedules {
		if s.Name == week {
			return s.Clone(), nil
		}
	}
	return nil, fmt.Errorf("week %q not found", week)
}

// setupTestServer creates a server over a temp database and a stub remote.
func setupTestServer(t *testing.T, remote *stubRemote) (*Server, *storage.DB) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "workouts-mcp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := storage.OpenWithLogger(filepath.Join(tmpDir, "workouts.db"), logging.Discard())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db, remote, syncstate.NewMemoryStore(), repository.WithLogger(logging.Discard()))
	server, err := NewServer(repo, db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func weekOne() *models.Schedule {
	w := models.NewWorkout("1").
		AddExercise(models.GroupPrimary, models.NewExercise("Push-ups", 3).WithReps(15)).
		AddExercise(models.GroupCore, models.NewExercise("Plank", 2))
	return models.NewSchedule("Week 1").AddWorkout(w)
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t, &stubRemote{})

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
	if server.cache == nil {
		t.Error("Expected non-nil cache")
	}
}

func TestHandleListSchedules(t *testing.T) {
	remote := &stubRemote{schedules: []*models.Schedule{models.NewSchedule("Week 10"), weekOne()}}
	server, _ := setupTestServer(t, remote)

	_, output, err := server.handleListSchedules(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Count != 2 {
		t.Fatalf("Count = %d, want 2", output.Count)
	}
	first := output.Schedules[0]
	if first.Name != "Week 1" || first.Workouts != 1 || first.Exercises != 2 {
		t.Errorf("unexpected first summary: %+v", first)
	}
	if remote.calls != 1 {
		t.Errorf("expected one remote fetch, got %d", remote.calls)
	}
}

func TestHandleListSchedulesOffline(t *testing.T) {
	server, _ := setupTestServer(t, &stubRemote{err: errors.New("offline")})

	_, _, err := server.handleListSchedules(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	if err == nil {
		t.Error("Expected error when cache is empty and remote is down")
	}
}

func TestHandleGetSchedule(t *testing.T) {
	server, db := setupTestServer(t, &stubRemote{schedules: []*models.Schedule{weekOne()}})

	_, output, err := server.handleGetSchedule(context.Background(), &mcp.CallToolRequest{}, getScheduleInput{Name: "Week 1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sched, ok := output.(*models.Schedule)
	if !ok {
		t.Fatalf("Expected *models.Schedule, got %T", output)
	}
	if sched.Workouts[0].Exercises["primary"][0].Name != "Push-ups" {
		t.Errorf("unexpected schedule: %+v", sched)
	}

	if _, err := db.GetScheduleByName("Week 1"); err != nil {
		t.Errorf("fetched schedule should be cached: %v", err)
	}
}

func TestHandleGetScheduleErrors(t *testing.T) {
	server, _ := setupTestServer(t, &stubRemote{})
	ctx := context.Background()

	if _, _, err := server.handleGetSchedule(ctx, &mcp.CallToolRequest{}, getScheduleInput{}); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, _, err := server.handleGetSchedule(ctx, &mcp.CallToolRequest{}, getScheduleInput{Name: "Week 9"}); err == nil {
		t.Error("Expected error for unknown schedule")
	}
}

func TestHandleSyncSchedules(t *testing.T) {
	broken := models.NewSchedule("Week 2").AddWorkout(models.NewWorkout(""))
	server, _ := setupTestServer(t, &stubRemote{schedules: []*models.Schedule{weekOne(), broken}})

	_, output, err := server.handleSyncSchedules(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Succeeded != 1 || output.Total != 2 {
		t.Errorf("got %d/%d, want 1/2", output.Succeeded, output.Total)
	}
	if len(output.Failed) != 1 || output.Failed[0] != "Week 2" {
		t.Errorf("Failed = %v", output.Failed)
	}
	if output.Message != "Synced 1/2 schedules" {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestHandleSyncStatus(t *testing.T) {
	server, _ := setupTestServer(t, &stubRemote{schedules: []*models.Schedule{weekOne()}})
	ctx := context.Background()

	_, before, err := server.handleSyncStatus(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !before.Stale || before.LastSync != "" {
		t.Errorf("expected stale status before sync, got %+v", before)
	}

	if _, _, err := server.handleSyncSchedules(ctx, &mcp.CallToolRequest{}, emptyInput{}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	_, after, err := server.handleSyncStatus(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if after.Stale || after.LastSync == "" {
		t.Errorf("expected fresh status after sync, got %+v", after)
	}
	if after.Schedules != 1 || after.Exercises != 2 {
		t.Errorf("unexpected counts: %+v", after)
	}
	if after.RefreshInterval != "72h0m0s" {
		t.Errorf("RefreshInterval = %q", after.RefreshInterval)
	}
}

func TestHandleSchedulesResource(t *testing.T) {
	remote := &stubRemote{}
	server, db := setupTestServer(t, remote)
	if err := db.CreateSchedule(weekOne()); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	result, err := server.handleSchedulesResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "workouts://schedules" {
		t.Errorf("URI = %q", content.URI)
	}

	var parsed struct {
		Count     int                `json:"count"`
		Schedules []*models.Schedule `json:"schedules"`
	}
	if err := json.Unmarshal([]byte(content.Text), &parsed); err != nil {
		t.Fatalf("Failed to parse resource JSON: %v", err)
	}
	if parsed.Count != 1 || !strings.EqualFold(parsed.Schedules[0].Name, "week 1") {
		t.Errorf("unexpected resource payload: %s", content.Text)
	}
	if remote.calls != 0 {
		t.Errorf("resource read must not contact the remote, got %d calls", remote.calls)
	}
}
