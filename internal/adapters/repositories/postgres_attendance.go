package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the AttendanceRepository port.
type PostgresAttendanceRepository struct{ DB *sql.DB }

func NewPostgresAttendanceRepository(db *sql.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{DB: db}
}

// Return the IDs of students marked present on the date.
func (r *PostgresAttendanceRepository) PresentStudentIDs(ctx context.Context, date time.Time) (map[uuid.UUID]bool, error) {
	if r.DB == nil {
		return nil, errors.New("postgres attendance repository: DB is nil")
	}

	query := `
	SELECT student_id
	FROM attendance
	WHERE date = $1 AND presence;
	`
	rows, err := r.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("present students: query attendance table: %w", err)
	}
	defer rows.Close()

	present := make(map[uuid.UUID]bool, 64)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("present students: scan row: %w", err)
		}
		present[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("present students: row iteration: %w", err)
	}

	return present, nil
}
