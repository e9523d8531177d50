// ABOUTME: Schedule CRUD and replace-all operations for SQLite storage.
// ABOUTME: Maps the nested Schedule aggregate onto four normalized tables.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/workouts/internal/models"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scheduleRow struct {
	rowID      string
	identifier sql.NullString
	name       sql.NullString
}

// CreateSchedule stores a schedule with all of its workouts, groups and
// exercises. An existing schedule with the same name is replaced.
func (d *DB) CreateSchedule(s *models.Schedule) error {
	if s == nil {
		return fmt.Errorf("create schedule: %w: nil schedule", models.ErrInvalidSchedule)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	err := d.withTx(func(tx *sql.Tx) error {
		if _, err := deleteScheduleByName(tx, s.Name); err != nil {
			return err
		}
		return insertSchedule(tx, s)
	})
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// GetScheduleByName retrieves a fully populated schedule by name.
func (d *DB) GetScheduleByName(name string) (*models.Schedule, error) {
	var s *models.Schedule
	err := d.readSnapshot(func(tx *sql.Tx) error {
		var r scheduleRow
		err := tx.QueryRow(`
			SELECT id, identifier, name
			FROM schedules
			WHERE name = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT 1
		`, name).Scan(&r.rowID, &r.identifier, &r.name)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		s, err = loadSchedule(tx, r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get schedule %q: %w", name, err)
	}
	return s, nil
}

// ListSchedules retrieves every stored schedule sorted naturally by name.
// Schedules with missing required columns are logged and skipped.
func (d *DB) ListSchedules() ([]*models.Schedule, error) {
	schedules := []*models.Schedule{}
	err := d.readSnapshot(func(tx *sql.Tx) error {
		rows, err := tx.Query("SELECT id, identifier, name FROM schedules ORDER BY rowid")
		if err != nil {
			return err
		}
		var refs []scheduleRow
		for rows.Next() {
			var r scheduleRow
			if err := rows.Scan(&r.rowID, &r.identifier, &r.name); err != nil {
				_ = rows.Close()
				return fmt.Errorf("scan schedule: %w", err)
			}
			refs = append(refs, r)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		if err := rows.Close(); err != nil {
			return err
		}

		for _, r := range refs {
			s, err := loadSchedule(tx, r)
			if errors.Is(err, ErrMalformedRow) {
				d.logger.Warn("skipping malformed schedule", "row", r.rowID, "err", err)
				continue
			}
			if err != nil {
				return err
			}
			schedules = append(schedules, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		return models.NaturalLess(schedules[i].Name, schedules[j].Name)
	})
	return schedules, nil
}

// DeleteSchedule removes a schedule and everything beneath it.
func (d *DB) DeleteSchedule(name string) error {
	err := d.withTx(func(tx *sql.Tx) error {
		n, err := deleteScheduleByName(tx, name)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete schedule %q: %w", name, err)
	}
	return nil
}

// ClearAll removes every row from all schedule tables in one transaction.
func (d *DB) ClearAll() error {
	if err := d.withTx(clearAll); err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}

// ReplaceSchedules clears the store and inserts the given schedules in a
// single transaction. Each schedule is written under its own savepoint, so
// one that fails is rolled back and reported while the rest are kept.
// A name that appears more than once is stored once, last entry wins.
// Concurrent readers see either the previous set or the new one.
func (d *DB) ReplaceSchedules(schedules []*models.Schedule) (*ReplaceSummary, error) {
	summary := &ReplaceSummary{}

	err := d.withTx(func(tx *sql.Tx) error {
		summary.Total = 0
		summary.Failures = nil
		seen := make(map[string]bool, len(schedules))
		stored := make(map[string]bool, len(schedules))

		if err := clearAll(tx); err != nil {
			return err
		}
		for _, s := range schedules {
			switch {
			case s == nil || s.Name == "":
				summary.Total++
			case seen[s.Name]:
				d.logger.Warn("duplicate schedule name, later entry replaces earlier", "name", s.Name)
			default:
				seen[s.Name] = true
				summary.Total++
			}

			if err := insertIsolated(tx, s); err != nil {
				f := ScheduleFailure{Err: err}
				if s != nil {
					f.ID, f.Name = s.ID, s.Name
				}
				summary.Failures = append(summary.Failures, f)
				d.logger.Warn("failed to store schedule", "name", f.Name, "id", f.ID, "err", err)
				continue
			}
			stored[s.Name] = true
		}
		summary.Stored = len(stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace schedules: %w", err)
	}

	d.logger.Info("stored schedules", "stored", summary.Stored, "total", summary.Total)
	return summary, nil
}

// Counts returns the number of rows in each schedule table.
func (d *DB) Counts() (*Counts, error) {
	c := &Counts{}
	targets := []struct {
		table string
		dest  *int
	}{
		{"schedules", &c.Schedules},
		{"workouts", &c.Workouts},
		{"exercise_groups", &c.ExerciseGroups},
		{"exercises", &c.Exercises},
	}
	for _, t := range targets {
		if err := d.db.QueryRow("SELECT COUNT(*) FROM " + t.table).Scan(t.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// readSnapshot runs fn inside a transaction that is always rolled back,
// giving multi-statement reads a consistent view of the database.
func (d *DB) readSnapshot(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

func insertIsolated(tx *sql.Tx, s *models.Schedule) error {
	if s == nil {
		return fmt.Errorf("%w: nil schedule", models.ErrInvalidSchedule)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if _, err := tx.Exec("SAVEPOINT schedule_write"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	_, err := deleteScheduleByName(tx, s.Name)
	if err == nil {
		err = insertSchedule(tx, s)
	}
	if err != nil {
		_, _ = tx.Exec("ROLLBACK TO schedule_write")
		_, _ = tx.Exec("RELEASE schedule_write")
		return err
	}
	if _, err := tx.Exec("RELEASE schedule_write"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func insertSchedule(tx *sql.Tx, s *models.Schedule) error {
	scheduleRowID := uuid.NewString()
	_, err := tx.Exec(
		"INSERT INTO schedules (id, identifier, name, created_at) VALUES (?, ?, ?, ?)",
		scheduleRowID, s.ID, s.Name, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}

	for wi, w := range s.Workouts {
		workoutRowID := uuid.NewString()
		_, err := tx.Exec(
			"INSERT INTO workouts (id, schedule_id, identifier, name, position) VALUES (?, ?, ?, ?, ?)",
			workoutRowID, scheduleRowID, w.ID, w.Name, wi,
		)
		if err != nil {
			return fmt.Errorf("insert workout %q: %w", w.Name, err)
		}

		for gi, key := range w.GroupKeys() {
			groupRowID := uuid.NewString()
			_, err := tx.Exec(
				"INSERT INTO exercise_groups (id, workout_id, group_key, position) VALUES (?, ?, ?, ?)",
				groupRowID, workoutRowID, key, gi,
			)
			if err != nil {
				return fmt.Errorf("insert group %q: %w", key, err)
			}

			for ei, e := range w.Exercises[key] {
				_, err := tx.Exec(`
					INSERT INTO exercises (id, group_id, identifier, name, sets, reps, weight, notes, position)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, uuid.NewString(), groupRowID, e.ID, e.Name, e.Sets, e.Reps, e.Weight, e.Notes, ei)
				if err != nil {
					return fmt.Errorf("insert exercise %q: %w", e.Name, err)
				}
			}
		}
	}
	return nil
}

// deleteScheduleByName removes matching schedules and their descendants,
// returning how many schedule rows were deleted.
func deleteScheduleByName(tx *sql.Tx, name string) (int64, error) {
	children := []string{
		`DELETE FROM exercises WHERE group_id IN (
			SELECT g.id FROM exercise_groups g
			JOIN workouts w ON g.workout_id = w.id
			JOIN schedules s ON w.schedule_id = s.id
			WHERE s.name = ?)`,
		`DELETE FROM exercise_groups WHERE workout_id IN (
			SELECT w.id FROM workouts w
			JOIN schedules s ON w.schedule_id = s.id
			WHERE s.name = ?)`,
		`DELETE FROM workouts WHERE schedule_id IN (SELECT id FROM schedules WHERE name = ?)`,
	}
	for _, q := range children {
		if _, err := tx.Exec(q, name); err != nil {
			return 0, fmt.Errorf("delete schedule children: %w", err)
		}
	}

	result, err := tx.Exec("DELETE FROM schedules WHERE name = ?", name)
	if err != nil {
		return 0, fmt.Errorf("delete schedule: %w", err)
	}
	return result.RowsAffected()
}

func clearAll(tx *sql.Tx) error {
	for _, table := range []string{"exercises", "exercise_groups", "workouts", "schedules"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// loadSchedule assembles one schedule from its workout, group and exercise
// rows. Workouts come back in stored position order.
//
//nolint:gocognit // single pass over a flattened join.
func loadSchedule(q queryer, r scheduleRow) (*models.Schedule, error) {
	if !r.name.Valid {
		return nil, fmt.Errorf("%w: schedule %s has no name", ErrMalformedRow, r.rowID)
	}
	if !r.identifier.Valid {
		return nil, fmt.Errorf("%w: schedule %q has no identifier", ErrMalformedRow, r.name.String)
	}

	rows, err := q.Query(`
		SELECT w.id, w.identifier, w.name,
			g.id, g.group_key,
			e.id, e.identifier, e.name, e.sets, e.reps, e.weight, e.notes
		FROM workouts w
		LEFT JOIN exercise_groups g ON g.workout_id = w.id
		LEFT JOIN exercises e ON e.group_id = g.id
		WHERE w.schedule_id = ?
		ORDER BY w.position, w.rowid, g.position, g.rowid, e.position, e.rowid
	`, r.rowID)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	s := &models.Schedule{
		ID:       r.identifier.String,
		Name:     r.name.String,
		Workouts: []models.Workout{},
	}
	lastWorkout := ""

	for rows.Next() {
		var (
			workoutRowID             string
			workoutID, workoutName   sql.NullString
			groupRowID, groupKey     sql.NullString
			exerciseRowID            sql.NullString
			exerciseID, exerciseName sql.NullString
			sets, reps               sql.NullInt64
			weight, notes            sql.NullString
		)
		if err := rows.Scan(
			&workoutRowID, &workoutID, &workoutName,
			&groupRowID, &groupKey,
			&exerciseRowID, &exerciseID, &exerciseName, &sets, &reps, &weight, &notes,
		); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}

		if workoutRowID != lastWorkout {
			if !workoutID.Valid || !workoutName.Valid {
				return nil, fmt.Errorf("%w: workout %s in %q is missing identifier or name", ErrMalformedRow, workoutRowID, s.Name)
			}
			s.Workouts = append(s.Workouts, models.Workout{
				ID:        workoutID.String,
				Name:      workoutName.String,
				Exercises: map[string][]models.Exercise{},
			})
			lastWorkout = workoutRowID
		}
		w := &s.Workouts[len(s.Workouts)-1]

		if !groupRowID.Valid {
			continue
		}
		if !groupKey.Valid {
			return nil, fmt.Errorf("%w: group %s in %q has no key", ErrMalformedRow, groupRowID.String, w.Name)
		}
		if _, ok := w.Exercises[groupKey.String]; !ok {
			w.Exercises[groupKey.String] = []models.Exercise{}
		}

		if !exerciseRowID.Valid {
			continue
		}
		if !exerciseID.Valid || !exerciseName.Valid {
			return nil, fmt.Errorf("%w: exercise %s in %q is missing identifier or name", ErrMalformedRow, exerciseRowID.String, w.Name)
		}
		e := models.Exercise{
			ID:   exerciseID.String,
			Name: exerciseName.String,
			Sets: int(sets.Int64),
		}
		if reps.Valid {
			n := int(reps.Int64)
			e.Reps = &n
		}
		if weight.Valid {
			e.Weight = &weight.String
		}
		if notes.Valid {
			e.Notes = &notes.String
		}
		w.Exercises[groupKey.String] = append(w.Exercises[groupKey.String], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}

	return s, nil
}
