package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// Planner runs the per-(date, direction) batch: gate eligible students,
// size the run, cluster, allocate drivers and atomically replace the trips
// for that key. It never mutates student, driver or attendance data.
type Planner struct {
	Students   ports.StudentRepository
	Drivers    ports.DriverRepository
	Attendance ports.AttendanceRepository
	Trips      ports.TripRepository
	Locker     ports.PlanLocker

	// Maximum students per trip under non-clamped planning.
	Capacity int
}

// PlanResult reports one completed planning run: the created trips plus
// the degradations the run tolerated.
type PlanResult struct {
	Trips            []*domain.Trip
	EligibleCount    int
	ExcludedStudents []*domain.Student
	Warnings         []Warning
}

// Plan regenerates all trips for (date, direction). The whole run holds the
// plan lock for its key so concurrent regenerations cannot interleave the
// delete-then-create sequence; distinct keys proceed in parallel.
func (p *Planner) Plan(ctx context.Context, date time.Time, direction domain.Direction, window domain.TimeWindow) (*PlanResult, error) {
	if date.IsZero() {
		return nil, errors.New("plan trips: date is required")
	}
	if p.Capacity <= 0 {
		return nil, fmt.Errorf("plan trips: %w", ErrInvalidCapacity)
	}

	release, err := p.Locker.Acquire(ctx, date, direction)
	if err != nil {
		return nil, fmt.Errorf("plan trips: acquire plan lock: %w", err)
	}
	defer release()

	logger := log.With().
		Str("date", date.Format("2006-01-02")).
		Str("direction", string(direction)).
		Logger()

	eligible, err := GateByAttendance(ctx, date, p.Students, p.Attendance)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}

	result := &PlanResult{
		EligibleCount:    len(eligible.Students),
		ExcludedStudents: eligible.MissingCoordinates,
	}

	if len(eligible.MissingCoordinates) > 0 {
		for _, s := range eligible.MissingCoordinates {
			logger.Warn().Str("student", s.StudentID.String()).Str("name", s.Name).
				Msg("Student marked present has no coordinates set")
		}
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarningMissingCoordinates,
			Message: fmt.Sprintf("%d present students excluded for missing coordinates", len(eligible.MissingCoordinates)),
		})
	}

	if len(eligible.Students) == 0 {
		logger.Info().Msg("No students eligible for planning")
		return result, nil
	}

	drivers, err := p.Drivers.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan trips: list available drivers: %w", err)
	}

	capacityPlan, err := PlanCapacity(len(eligible.Students), p.Capacity, len(drivers))
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}

	if capacityPlan.Clamped {
		logger.Warn().
			Int("available_drivers", len(drivers)).
			Int("cluster_count", capacityPlan.ClusterCount).
			Int("over_capacity", capacityPlan.OverCapacity).
			Msg("Cluster count clamped by driver availability")
		result.Warnings = append(result.Warnings, Warning{
			Kind: WarningResourceExhaustion,
			Message: fmt.Sprintf("reduced to %d trips for %d available drivers; %d students over capacity",
				capacityPlan.ClusterCount, len(drivers), capacityPlan.OverCapacity),
		})
	}

	coords := make([]domain.Coordinates, len(eligible.Students))
	for i, s := range eligible.Students {
		coords[i] = *s.Coordinates
	}

	clusters, err := ClusterCoordinates(coords, capacityPlan.ClusterCount)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}

	// A clamped run is allowed over-capacity groups (already warned);
	// otherwise every group must fit one trip.
	if !capacityPlan.Clamped {
		clusters, err = BoundClusterSizes(coords, clusters, p.Capacity)
		if err != nil {
			return nil, fmt.Errorf("plan trips: %w", err)
		}
	}

	allocation, err := AllocateDrivers(clusters, drivers)
	if err != nil {
		return nil, fmt.Errorf("plan trips: %w", err)
	}

	trips := make([]*domain.Trip, 0, len(clusters))
	for i, cluster := range clusters {
		if len(cluster.Members) == 0 {
			continue
		}

		members := make([]*domain.Student, 0, len(cluster.Members))
		for _, idx := range cluster.Members {
			members = append(members, eligible.Students[idx])
		}

		trips = append(trips, &domain.Trip{
			TripID:     uuid.New(),
			Date:       date,
			Direction:  direction,
			TimeWindow: window,
			Status:     domain.TripPending,
			DriverID:   allocation[i].DriverID,
			Students:   members,
		})

		logger.Debug().
			Int("students", len(members)).
			Str("driver", allocation[i].Name).
			Float64("centroid_lon", cluster.Centroid.Lon).
			Float64("centroid_lat", cluster.Centroid.Lat).
			Msg("Built trip from cluster")
	}

	if err := p.Trips.ReplaceForDate(ctx, date, direction, trips); err != nil {
		return nil, fmt.Errorf("plan trips: replace trips: %w", err)
	}

	result.Trips = trips
	logger.Info().Int("trips", len(trips)).Int("students", len(eligible.Students)).
		Msg("Created optimized trips")

	return result, nil
}
