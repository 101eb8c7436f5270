package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Postgres-backed implementation of the DriverRepository port.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

// Return all available, active drivers. Ordered by name then ID so the
// allocation table is deterministic across runs.
func (r *PostgresDriverRepository) ListAvailable(ctx context.Context) ([]*domain.Driver, error) {
	if r.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT driver_id, name, bus_no, status
	FROM drivers
	WHERE is_active AND status = 'available'
	ORDER BY name, driver_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		var id uuid.UUID
		var name, busNo, status string
		if err := rows.Scan(&id, &name, &busNo, &status); err != nil {
			return nil, fmt.Errorf("list available drivers: scan row: %w", err)
		}
		drivers = append(drivers, &domain.Driver{
			DriverID: id,
			Name:     name,
			BusNo:    busNo,
			Status:   domain.DriverStatus(status),
			Active:   true,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list available drivers: row iteration: %w", err)
	}

	return drivers, nil
}
