// ABOUTME: Repository interface for the on-device schedule cache.
// ABOUTME: Defines the store/fetch/clear contract the sync orchestrator relies on.
package storage

import (
	"github.com/harperreed/workouts/internal/models"
)

// Repository defines the storage interface for cached schedules.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Schedule operations
	CreateSchedule(s *models.Schedule) error
	GetScheduleByName(name string) (*models.Schedule, error)
	ListSchedules() ([]*models.Schedule, error)
	DeleteSchedule(name string) error

	// Bulk operations
	ReplaceSchedules(schedules []*models.Schedule) (*ReplaceSummary, error)
	ClearAll() error
	Counts() (*Counts, error)

	// Export
	GetAllData() (*ExportData, error)

	// Lifecycle
	Close() error
}

// Compile-time check that DB implements Repository.
var _ Repository = (*DB)(nil)

// ReplaceSummary reports the outcome of a replace-all. Both counts are of
// distinct schedule names: Stored is how many names are in the store after
// the replace, Total how many the input carried. Entries without a name
// each count once toward Total.
type ReplaceSummary struct {
	Stored   int
	Total    int
	Failures []ScheduleFailure
}

// ScheduleFailure records one schedule that could not be stored.
type ScheduleFailure struct {
	ID   string
	Name string
	Err  error
}

// Counts holds row counts per table.
type Counts struct {
	Schedules      int
	Workouts       int
	ExerciseGroups int
	Exercises      int
}
