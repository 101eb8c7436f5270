package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type StudentSeed struct {
	StudentID string   `json:"student_id"`
	Name      string   `json:"name"`
	Lon       *float64 `json:"lon"`
	Lat       *float64 `json:"lat"`
	Active    *bool    `json:"active"`
	Presence  []string `json:"presence"`
}

type DriverSeed struct {
	DriverID string `json:"driver_id"`
	Name     string `json:"name"`
	BusNo    string `json:"bus_no"`
	Status   string `json:"status"`
	Active   *bool  `json:"active"`
}

type SeedFile struct {
	Students []StudentSeed `json:"students"`
	Drivers  []DriverSeed  `json:"drivers"`
}

// Populate the database with students, drivers and attendance from a JSON
// file. Existing rows with the same keys are overwritten, so seeding is
// idempotent for local runs.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	studentQuery := `
	INSERT INTO students (student_id, name, lon, lat, is_active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (student_id) DO UPDATE
	SET name = EXCLUDED.name, lon = EXCLUDED.lon, lat = EXCLUDED.lat, is_active = EXCLUDED.is_active;
	`

	attendanceQuery := `
	INSERT INTO attendance (attendance_id, student_id, date, presence)
	VALUES ($1, $2, $3, TRUE)
	ON CONFLICT (student_id, date) DO UPDATE SET presence = TRUE;
	`

	for i, s := range data.Students {
		id, err := uuid.Parse(s.StudentID)
		if err != nil {
			return fmt.Errorf("seed: student at index %d: invalid student_id %q", i, s.StudentID)
		}

		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("seed: student at index %d: name cannot be empty", i)
		}

		active := true
		if s.Active != nil {
			active = *s.Active
		}

		if _, err := tx.Exec(studentQuery, id, name, s.Lon, s.Lat, active); err != nil {
			return fmt.Errorf("seed: insert student %s: %w", id, err)
		}

		for _, day := range s.Presence {
			date, err := time.Parse("2006-01-02", day)
			if err != nil {
				return fmt.Errorf("seed: student %s: invalid presence date %q", id, day)
			}
			if _, err := tx.Exec(attendanceQuery, uuid.New(), id, date); err != nil {
				return fmt.Errorf("seed: mark student %s present on %s: %w", id, day, err)
			}
		}
	}

	driverQuery := `
	INSERT INTO drivers (driver_id, name, bus_no, status, is_active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (driver_id) DO UPDATE
	SET name = EXCLUDED.name, bus_no = EXCLUDED.bus_no, status = EXCLUDED.status, is_active = EXCLUDED.is_active;
	`

	for i, d := range data.Drivers {
		id, err := uuid.Parse(d.DriverID)
		if err != nil {
			return fmt.Errorf("seed: driver at index %d: invalid driver_id %q", i, d.DriverID)
		}

		status := d.Status
		if status == "" {
			status = "available"
		}

		active := true
		if d.Active != nil {
			active = *d.Active
		}

		if _, err := tx.Exec(driverQuery, id, d.Name, d.BusNo, status, active); err != nil {
			return fmt.Errorf("seed: insert driver %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
