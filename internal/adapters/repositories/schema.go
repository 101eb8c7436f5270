package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema for the planning engine. Students, drivers
// and attendance are owned by the CRUD layer; the tables exist here so the
// engine can run self-contained in local and test deployments.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStudentsQuery := `
	CREATE TABLE IF NOT EXISTS students (
		student_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		lon DOUBLE PRECISION,
		lat DOUBLE PRECISION,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		bus_no TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'available',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createAttendanceQuery := `
	CREATE TABLE IF NOT EXISTS attendance (
		attendance_id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		date DATE NOT NULL,
		presence BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE (student_id, date)
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		trip_id UUID PRIMARY KEY,
		trip_date DATE NOT NULL,
		to_school BOOLEAN NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		driver_id UUID NOT NULL REFERENCES drivers(driver_id),
		route_order JSONB
	);
	`

	createTripStudentsQuery := `
	CREATE TABLE IF NOT EXISTS trip_students (
		trip_id UUID NOT NULL REFERENCES trips(trip_id) ON DELETE CASCADE,
		student_id UUID NOT NULL REFERENCES students(student_id),
		position INTEGER NOT NULL,
		PRIMARY KEY (trip_id, student_id)
	);
	`

	createIndexesQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_date_direction ON trips(trip_date, to_school);
	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);
	CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status);
	`

	statements := []string{
		createStudentsQuery,
		createDriversQuery,
		createAttendanceQuery,
		createTripsQuery,
		createTripStudentsQuery,
		createIndexesQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
