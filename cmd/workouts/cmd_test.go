// ABOUTME: Tests for CLI commands and helpers.
// ABOUTME: Runs commands against a temp data directory and the fake schedule server.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/workouts/internal/logging"
	"github.com/harperreed/workouts/internal/models"
	"github.com/harperreed/workouts/internal/remote/fakeserver"
	"github.com/harperreed/workouts/internal/storage"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string no truncation", input: "Week 1", maxLen: 10, want: "Week 1"},
		{name: "exact length", input: "Week 1", maxLen: 6, want: "Week 1"},
		{name: "needs truncation", input: "Deload week before the meet", maxLen: 10, want: "Deload ..."},
		{name: "empty string", input: "", maxLen: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q, want %q", got, "ab   ")
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not cut, got %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("w1"); got != "w1" {
		t.Errorf("shortID(w1) = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q, want 01234567", got)
	}
}

func TestPrescription(t *testing.T) {
	e := models.NewExercise("Squats", 4).WithReps(8).WithWeight("60kg")
	if got := prescription(e); got != "4x8 @ 60kg" {
		t.Errorf("prescription = %q", got)
	}
	if got := prescription(models.NewExercise("Plank", 3)); got != "3 sets" {
		t.Errorf("prescription without reps = %q", got)
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "workouts" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "workouts")
	}
	for _, name := range []string{"config", "db", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent --%s flag", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	expected := []string{"schedules", "show", "sync", "weeks", "delete", "clear", "status", "export", "mcp"}

	cmdNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdNames[cmd.Name()] = true
	}
	for _, name := range expected {
		if !cmdNames[name] {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}

func TestCommandAliases(t *testing.T) {
	tests := map[string][]string{
		"schedules": {"ls", "list"},
		"delete":    {"del", "rm"},
		"sync":      {"s"},
	}
	for name, aliases := range tests {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Fatalf("Find(%s): %v", name, err)
		}
		for _, alias := range aliases {
			found := false
			for _, a := range cmd.Aliases {
				if a == alias {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected alias %q for %s", alias, name)
			}
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := []string{"json", "yaml", "markdown"}
	if len(exportCmd.ValidArgs) != len(want) {
		t.Fatalf("ValidArgs = %v, want %v", exportCmd.ValidArgs, want)
	}
	for i, v := range want {
		if exportCmd.ValidArgs[i] != v {
			t.Errorf("ValidArgs[%d] = %q, want %q", i, exportCmd.ValidArgs[i], v)
		}
	}
	if exportCmd.Flags().Lookup("output") == nil {
		t.Error("Expected --output flag on export command")
	}
}

func TestShowAndDeleteRequireOneArg(t *testing.T) {
	if err := showCmd.Args(showCmd, nil); err == nil {
		t.Error("show should require a week name")
	}
	if err := deleteCmd.Args(deleteCmd, []string{"a", "b"}); err == nil {
		t.Error("delete should reject two arguments")
	}
}

func pushUpsWeek(name string) *models.Schedule {
	s := models.NewSchedule(name)
	s.AddWorkout(models.NewWorkout("1").
		AddExercise("primary", models.NewExercise("Push-ups", 3).WithReps(15).WithWeight("Bodyweight")))
	return s
}

// setupTestCLI points the CLI at a temp config and data directory and a
// fake server holding Week 1 and Week 2.
func setupTestCLI(t *testing.T) (*fakeserver.Server, string) {
	t.Helper()

	srv := fakeserver.New("secret")
	srv.SetSchedules(pushUpsWeek("Week 1"), pushUpsWeek("Week 2"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("WORKOUTS_STORAGE_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("WORKOUTS_SERVER_BASE_URL", srv.BaseURL())
	t.Setenv("WORKOUTS_AUTH_TOKEN", "secret")
	t.Setenv("WORKOUTS_LOG_LEVEL", "error")

	// Reset global flags
	configPath = ""
	dataDir = ""
	verbose = false
	showJSON = false
	clearYes = false
	exportOutput = ""

	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	t.Cleanup(func() {
		_ = closeAll()
		srv.Close()
	})

	return srv, filepath.Join(dir, "data")
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// openCache opens the CLI's database after a command has released it.
func openCache(t *testing.T, data string) *storage.DB {
	t.Helper()
	store, err := storage.OpenWithLogger(filepath.Join(data, "workouts.db"), logging.Discard())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSchedulesCmdSyncsEmptyCache(t *testing.T) {
	srv, data := setupTestCLI(t)

	if err := run(t, "schedules"); err != nil {
		t.Fatalf("schedules command failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteSchedules); got != 1 {
		t.Errorf("Expected 1 fetch, got %d", got)
	}

	// A fresh sync means the second listing stays local
	if err := run(t, "ls"); err != nil {
		t.Fatalf("ls command failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteSchedules); got != 1 {
		t.Errorf("Expected cached listing, got %d fetches", got)
	}

	counts, err := openCache(t, data).Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Schedules != 2 {
		t.Errorf("Expected 2 cached schedules, got %d", counts.Schedules)
	}
}

func TestSyncCmd(t *testing.T) {
	srv, data := setupTestCLI(t)

	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteSchedules); got != 1 {
		t.Errorf("Expected 1 fetch, got %d", got)
	}

	got, err := openCache(t, data).GetScheduleByName("Week 1")
	if err != nil {
		t.Fatalf("GetScheduleByName failed: %v", err)
	}
	ex := got.Workouts[0].Exercises["primary"][0]
	if ex.Name != "Push-ups" || ex.Sets != 3 || ex.Reps == nil || *ex.Reps != 15 {
		t.Errorf("Unexpected exercise: %+v", ex)
	}
}

func TestSyncCmdServerError(t *testing.T) {
	srv, _ := setupTestCLI(t)
	srv.FailWith(fakeserver.RouteSchedules, 500)

	if err := run(t, "sync"); err == nil {
		t.Error("Expected sync to fail on server error")
	}
}

func TestSyncCmdWrongToken(t *testing.T) {
	_, _ = setupTestCLI(t)
	t.Setenv("WORKOUTS_AUTH_TOKEN", "wrong")

	if err := run(t, "sync"); err == nil {
		t.Error("Expected sync to fail with a rejected token")
	}
}

func TestShowCmdFetchesMiss(t *testing.T) {
	srv, _ := setupTestCLI(t)

	if err := run(t, "show", "Week 2"); err != nil {
		t.Fatalf("show command failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteWorkouts); got != 1 {
		t.Errorf("Expected 1 single-week fetch, got %d", got)
	}

	if err := run(t, "show", "Week 2", "--json"); err != nil {
		t.Fatalf("show --json failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteWorkouts); got != 1 {
		t.Errorf("Expected cache hit on second show, got %d fetches", got)
	}
}

func TestShowCmdUnknownWeek(t *testing.T) {
	_, _ = setupTestCLI(t)

	if err := run(t, "show", "Week 99"); err == nil {
		t.Error("Expected error for unknown week")
	}
}

func TestWeeksCmd(t *testing.T) {
	srv, _ := setupTestCLI(t)

	if err := run(t, "weeks"); err != nil {
		t.Fatalf("weeks command failed: %v", err)
	}
	if got := srv.Calls(fakeserver.RouteWeekNames); got != 1 {
		t.Errorf("Expected 1 weekNames call, got %d", got)
	}
}

func TestDeleteCmd(t *testing.T) {
	_, data := setupTestCLI(t)

	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}
	if err := run(t, "rm", "Week 1"); err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	list, err := openCache(t, data).ListSchedules()
	if err != nil {
		t.Fatalf("ListSchedules failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Week 2" {
		t.Errorf("Expected only Week 2 left, got %d schedules", len(list))
	}
}

func TestDeleteCmdNotFound(t *testing.T) {
	_, _ = setupTestCLI(t)

	err := run(t, "delete", "Week 7")
	if err == nil {
		t.Fatal("Expected error deleting a missing schedule")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestClearCmd(t *testing.T) {
	_, data := setupTestCLI(t)

	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}

	if err := run(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear --yes failed: %v", err)
	}

	counts, err := openCache(t, data).Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Schedules != 0 || counts.Exercises != 0 {
		t.Errorf("Expected empty cache, got %+v", counts)
	}
}

func TestClearCmdDeclined(t *testing.T) {
	_, data := setupTestCLI(t)

	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}
	rootCmd.SetIn(strings.NewReader("n\n"))
	if err := run(t, "clear"); err != nil {
		t.Fatalf("clear command failed: %v", err)
	}

	counts, err := openCache(t, data).Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Schedules != 2 {
		t.Errorf("Expected cache kept, got %d schedules", counts.Schedules)
	}
}

func TestStatusCmd(t *testing.T) {
	_, _ = setupTestCLI(t)

	if err := run(t, "status"); err != nil {
		t.Fatalf("status before sync failed: %v", err)
	}
	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}
	if err := run(t, "status"); err != nil {
		t.Fatalf("status after sync failed: %v", err)
	}
}

func TestExportToFile(t *testing.T) {
	_, _ = setupTestCLI(t)

	if err := run(t, "sync"); err != nil {
		t.Fatalf("sync command failed: %v", err)
	}

	for _, format := range []string{"json", "yaml", "markdown"} {
		out := filepath.Join(t.TempDir(), "export."+format)
		if err := run(t, "export", format, "--output", out); err != nil {
			t.Fatalf("export %s failed: %v", format, err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("Expected export file: %v", err)
		}
		if !strings.Contains(string(data), "Push-ups") {
			t.Errorf("%s export missing exercise name", format)
		}
	}
}

func TestExportInvalidFormat(t *testing.T) {
	_, _ = setupTestCLI(t)

	if err := run(t, "export", "invalid"); err == nil {
		t.Error("Expected error for invalid export format")
	}
}

func TestDataDirFlagOverridesConfig(t *testing.T) {
	_, _ = setupTestCLI(t)
	other := filepath.Join(t.TempDir(), "elsewhere")

	if err := run(t, "sync", "--db", other); err != nil {
		t.Fatalf("sync --db failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(other, "workouts.db")); err != nil {
		t.Errorf("Expected database under --db directory: %v", err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	_, _ = setupTestCLI(t)
	t.Setenv("WORKOUTS_SERVER_BASE_URL", "ftp://nope")

	if err := run(t, "status"); err == nil {
		t.Error("Expected error for invalid server URL")
	}
}
