// ABOUTME: SQLite schema definition as ordered migrations.
// ABOUTME: Defines schedules, workouts, exercise_groups and exercises tables.
package storage

// migrations is the list of all schema migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schedule_tables",
		SQL: `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		identifier TEXT,
		name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		identifier TEXT,
		name TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS exercise_groups (
		id TEXT PRIMARY KEY,
		workout_id TEXT NOT NULL,
		group_key TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		identifier TEXT,
		name TEXT,
		sets INTEGER NOT NULL DEFAULT 0,
		reps INTEGER,
		weight TEXT,
		notes TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (group_id) REFERENCES exercise_groups(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_name ON schedules(name);
	CREATE INDEX IF NOT EXISTS idx_workouts_schedule ON workouts(schedule_id, position);
	CREATE INDEX IF NOT EXISTS idx_exercise_groups_workout ON exercise_groups(workout_id, position);
	CREATE INDEX IF NOT EXISTS idx_exercises_group ON exercises(group_id, position);
	`,
	},
}
