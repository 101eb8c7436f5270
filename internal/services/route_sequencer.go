package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// RouteSequencer produces the ordered stop list and aggregate metrics for a
// trip. It asks the external optimization service for the visit order and
// degrades to a local straight-line estimate when the service is
// unreachable, times out, or returns an unusable shape. External failures
// never fail the caller's operation.
type RouteSequencer struct {
	Optimizer ports.RouteOptimizer
	Cache     ports.RouteCache
	Trips     ports.TripRepository

	School domain.Coordinates

	// Straight-line estimate parameters for the degraded path.
	FallbackSpeedKmh float64
	StopDwell        time.Duration
}

// OptimizeResult reports one sequencing batch over a service date.
type OptimizeResult struct {
	Sequenced int
	Degraded  int
}

// SequenceTrip returns a route order for the trip: cached if available,
// optimized if the external service cooperates, estimated otherwise.
func (rs *RouteSequencer) SequenceTrip(ctx context.Context, trip *domain.Trip) (*domain.RouteOrder, error) {
	if len(trip.Students) == 0 {
		return nil, fmt.Errorf("sequence trip %s: trip has no students", trip.TripID)
	}

	key := rs.cacheKey(trip)
	if rs.Cache != nil {
		cached, err := rs.Cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("trip", trip.TripID.String()).Msg("Route cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	route := rs.optimized(ctx, trip)
	if route == nil {
		route = rs.fallback(trip)
	}

	if rs.Cache != nil && !route.Degraded {
		if err := rs.Cache.Put(ctx, key, route); err != nil {
			log.Warn().Err(err).Str("trip", trip.TripID.String()).Msg("Route cache write failed")
		}
	}

	return route, nil
}

// OptimizeDate sequences and persists a route order for every trip of the
// service date, both directions. Persistence failures abort the batch;
// external-service failures only degrade the affected trip.
func (rs *RouteSequencer) OptimizeDate(ctx context.Context, date time.Time) (*OptimizeResult, error) {
	trips, err := rs.Trips.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("optimize date %s: list trips: %w", date.Format("2006-01-02"), err)
	}

	result := &OptimizeResult{}
	for _, trip := range trips {
		route, err := rs.SequenceTrip(ctx, trip)
		if err != nil {
			return nil, fmt.Errorf("optimize date %s: %w", date.Format("2006-01-02"), err)
		}

		if err := rs.Trips.UpdateRouteOrder(ctx, trip.TripID, route); err != nil {
			return nil, fmt.Errorf("optimize date %s: save route for trip %s: %w",
				date.Format("2006-01-02"), trip.TripID, err)
		}

		trip.RouteOrder = route
		result.Sequenced++
		if route.Degraded {
			result.Degraded++
		}

		log.Info().
			Str("trip", trip.TripID.String()).
			Float64("total_distance_km", route.TotalDistanceKm).
			Float64("estimated_duration_s", route.EstimatedDuration).
			Bool("degraded", route.Degraded).
			Msg("Sequenced trip route")
	}

	return result, nil
}

// optimized maps an external solution into a route order, or returns nil
// when the service failed or the solution violates the stop invariants.
func (rs *RouteSequencer) optimized(ctx context.Context, trip *domain.Trip) *domain.RouteOrder {
	solution, err := rs.Optimizer.Optimize(ctx, rs.School, trip.Students)
	if err != nil {
		log.Warn().Err(err).Str("trip", trip.TripID.String()).
			Msg("Route optimization failed, falling back to straight-line estimate")
		return nil
	}

	route := &domain.RouteOrder{
		Stops:             make([]domain.Stop, 0, len(trip.Students)+2),
		TotalDistanceKm:   solution.TotalDistanceKm,
		EstimatedDuration: solution.DurationSeconds,
	}

	route.Stops = append(route.Stops, domain.Stop{Kind: domain.StopSchool, Coordinates: rs.School.CoordsToList()})
	for _, idx := range solution.VisitOrder {
		if idx < 0 || idx >= len(trip.Students) {
			log.Warn().Int("index", idx).Str("trip", trip.TripID.String()).
				Msg("Optimizer returned out-of-range visit index, falling back")
			return nil
		}
		s := trip.Students[idx]
		id := s.StudentID
		route.Stops = append(route.Stops, domain.Stop{
			Kind:        domain.StopStudent,
			Coordinates: s.Coordinates.CoordsToList(),
			StudentName: s.Name,
			StudentID:   &id,
		})
	}
	route.Stops = append(route.Stops, domain.Stop{Kind: domain.StopSchool, Coordinates: rs.School.CoordsToList()})

	if err := route.Validate(trip); err != nil {
		log.Warn().Err(err).Str("trip", trip.TripID.String()).
			Msg("Optimizer solution failed validation, falling back")
		return nil
	}

	return route
}

// fallback builds a straight-line estimate over school -> students in input
// order -> school, marked degraded so operators can tell it apart from an
// optimized route.
func (rs *RouteSequencer) fallback(trip *domain.Trip) *domain.RouteOrder {
	speed := rs.FallbackSpeedKmh
	if speed <= 0 {
		speed = 30
	}

	route := &domain.RouteOrder{
		Stops:    make([]domain.Stop, 0, len(trip.Students)+2),
		Degraded: true,
	}

	route.Stops = append(route.Stops, domain.Stop{Kind: domain.StopSchool, Coordinates: rs.School.CoordsToList()})

	prev := rs.School
	total := 0.0
	for _, s := range trip.Students {
		total += prev.DistanceKm(*s.Coordinates)
		prev = *s.Coordinates

		id := s.StudentID
		route.Stops = append(route.Stops, domain.Stop{
			Kind:        domain.StopStudent,
			Coordinates: s.Coordinates.CoordsToList(),
			StudentName: s.Name,
			StudentID:   &id,
		})
	}
	total += prev.DistanceKm(rs.School)

	route.Stops = append(route.Stops, domain.Stop{Kind: domain.StopSchool, Coordinates: rs.School.CoordsToList()})
	route.TotalDistanceKm = total
	route.EstimatedDuration = total/speed*3600 + rs.StopDwell.Seconds()*float64(len(trip.Students))

	return route
}

// cacheKey encodes the trip's direction and membership so a changed member
// list never reuses a stale route.
func (rs *RouteSequencer) cacheKey(trip *domain.Trip) string {
	ids := make([]string, 0, len(trip.Students))
	for _, s := range trip.Students {
		ids = append(ids, s.StudentID.String())
	}
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(string(trip.Direction) + "|" + strings.Join(ids, ",")))
	return "route:" + hex.EncodeToString(sum[:16])
}
