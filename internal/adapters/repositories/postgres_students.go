package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Postgres-backed implementation of the StudentRepository port.
type PostgresStudentRepository struct{ DB *sql.DB }

func NewPostgresStudentRepository(db *sql.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{DB: db}
}

// Return all active students, with coordinates when set.
func (r *PostgresStudentRepository) ListActive(ctx context.Context) ([]*domain.Student, error) {
	if r.DB == nil {
		return nil, errors.New("postgres student repository: DB is nil")
	}

	query := `
	SELECT student_id, name, lon, lat
	FROM students
	WHERE is_active
	ORDER BY student_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active students: query students table: %w", err)
	}
	defer rows.Close()

	students := make([]*domain.Student, 0, 64)
	for rows.Next() {
		var id uuid.UUID
		var name string
		var lon, lat sql.NullFloat64
		if err := rows.Scan(&id, &name, &lon, &lat); err != nil {
			return nil, fmt.Errorf("list active students: scan row: %w", err)
		}

		s := &domain.Student{StudentID: id, Name: name, Active: true}
		if lon.Valid && lat.Valid {
			s.Coordinates = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active students: row iteration: %w", err)
	}

	return students, nil
}
