package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Postgres-backed implementation of the TripRepository port.
type PostgresTripRepository struct{ DB *sql.DB }

func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{DB: db}
}

// regenerationLockKey derives the advisory-lock key for a (date, direction)
// regeneration. Two transactions on the same key serialize; distinct keys
// do not contend.
func regenerationLockKey(date time.Time, direction domain.Direction) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "trip-regeneration|%s|%s", date.Format("2006-01-02"), direction)
	return int64(h.Sum64())
}

// ReplaceForDate atomically swaps all trips for (date, direction) inside a
// single transaction. A transaction-scoped advisory lock on the key keeps
// concurrent regenerations from interleaving the delete and insert phases
// even across processes. Any failure rolls the whole swap back, leaving the
// previous trips intact.
func (r *PostgresTripRepository) ReplaceForDate(ctx context.Context, date time.Time, direction domain.Direction, trips []*domain.Trip) error {
	if r.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace trips: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1);`, regenerationLockKey(date, direction)); err != nil {
		return fmt.Errorf("replace trips: acquire advisory lock: %w", err)
	}

	deleteQuery := `
	DELETE FROM trips
	WHERE trip_date = $1 AND to_school = $2;
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, date, direction == domain.ToSchool); err != nil {
		return fmt.Errorf("replace trips: delete existing trips: %w", err)
	}

	insertTripQuery := `
	INSERT INTO trips (trip_id, trip_date, to_school, start_time, end_time, status, driver_id, route_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	insertMemberQuery := `
	INSERT INTO trip_students (trip_id, student_id, position)
	VALUES ($1, $2, $3);
	`

	for _, trip := range trips {
		var routeJSON any
		if trip.RouteOrder != nil {
			raw, err := json.Marshal(trip.RouteOrder)
			if err != nil {
				return fmt.Errorf("replace trips: marshal route order for trip %s: %w", trip.TripID, err)
			}
			routeJSON = raw
		}

		_, err := tx.ExecContext(ctx, insertTripQuery,
			trip.TripID, trip.Date, trip.Direction == domain.ToSchool,
			trip.TimeWindow.Start, trip.TimeWindow.End,
			string(trip.Status), trip.DriverID, routeJSON,
		)
		if err != nil {
			return fmt.Errorf("replace trips: insert trip %s: %w", trip.TripID, err)
		}

		for pos, s := range trip.Students {
			if _, err := tx.ExecContext(ctx, insertMemberQuery, trip.TripID, s.StudentID, pos); err != nil {
				return fmt.Errorf("replace trips: insert member %s of trip %s: %w", s.StudentID, trip.TripID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace trips: commit tx: %w", err)
	}

	return nil
}

// ListByDate returns all trips for a service date, both directions, with
// their members in stored order.
func (r *PostgresTripRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Trip, error) {
	if r.DB == nil {
		return nil, errors.New("postgres trip repository: DB is nil")
	}

	tripsQuery := `
	SELECT trip_id, trip_date, to_school, start_time, end_time, status, driver_id, route_order
	FROM trips
	WHERE trip_date = $1
	ORDER BY to_school DESC, trip_id;
	`
	rows, err := r.DB.QueryContext(ctx, tripsQuery, date)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	trips := make([]*domain.Trip, 0, 8)
	byID := make(map[uuid.UUID]*domain.Trip)
	for rows.Next() {
		var trip domain.Trip
		var toSchool bool
		var status string
		var routeRaw []byte
		if err := rows.Scan(&trip.TripID, &trip.Date, &toSchool,
			&trip.TimeWindow.Start, &trip.TimeWindow.End, &status, &trip.DriverID, &routeRaw); err != nil {
			return nil, fmt.Errorf("list trips: scan trip row: %w", err)
		}

		trip.Direction = domain.FromSchool
		if toSchool {
			trip.Direction = domain.ToSchool
		}
		trip.Status = domain.TripStatus(status)

		if len(routeRaw) > 0 {
			var route domain.RouteOrder
			if err := json.Unmarshal(routeRaw, &route); err != nil {
				return nil, fmt.Errorf("list trips: unmarshal route order for trip %s: %w", trip.TripID, err)
			}
			trip.RouteOrder = &route
		}

		t := trip
		trips = append(trips, &t)
		byID[t.TripID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	membersQuery := `
	SELECT ts.trip_id, s.student_id, s.name, s.lon, s.lat
	FROM trip_students ts
	JOIN students s ON s.student_id = ts.student_id
	JOIN trips t ON t.trip_id = ts.trip_id
	WHERE t.trip_date = $1
	ORDER BY ts.trip_id, ts.position;
	`
	memberRows, err := r.DB.QueryContext(ctx, membersQuery, date)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trip members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var tripID, studentID uuid.UUID
		var name string
		var lon, lat sql.NullFloat64
		if err := memberRows.Scan(&tripID, &studentID, &name, &lon, &lat); err != nil {
			return nil, fmt.Errorf("list trips: scan member row: %w", err)
		}

		trip, ok := byID[tripID]
		if !ok {
			continue
		}

		s := &domain.Student{StudentID: studentID, Name: name, Active: true}
		if lon.Valid && lat.Valid {
			s.Coordinates = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
		}
		trip.Students = append(trip.Students, s)
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: member row iteration: %w", err)
	}

	return trips, nil
}

// UpdateRouteOrder persists a computed route order on an existing trip.
func (r *PostgresTripRepository) UpdateRouteOrder(ctx context.Context, tripID uuid.UUID, route *domain.RouteOrder) error {
	if r.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}

	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("update route order: marshal route for trip %s: %w", tripID, err)
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE trips SET route_order = $2 WHERE trip_id = $1;`, tripID, raw)
	if err != nil {
		return fmt.Errorf("update route order: update trip %s: %w", tripID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update route order: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update route order: trip %s not found", tripID)
	}

	return nil
}
