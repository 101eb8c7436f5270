package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswinpradeepc/edurider-v2/internal/adapters/repositories"
	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

var schoolCoords = domain.Coordinates{Lon: 76.328898, Lat: 10.0482921}

type stubOptimizer struct {
	solution *ports.RouteSolution
	err      error
	calls    int
}

func (o *stubOptimizer) Optimize(ctx context.Context, school domain.Coordinates, students []*domain.Student) (*ports.RouteSolution, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	return o.solution, nil
}

type mapCache struct {
	entries map[string]*domain.RouteOrder
	getErr  error
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string]*domain.RouteOrder)} }

func (c *mapCache) Get(ctx context.Context, key string) (*domain.RouteOrder, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *mapCache) Put(ctx context.Context, key string, route *domain.RouteOrder) error {
	c.entries[key] = route
	return nil
}

func sequencerTrip(studentCount int) *domain.Trip {
	students := make([]*domain.Student, 0, studentCount)
	for i := 0; i < studentCount; i++ {
		students = append(students, &domain.Student{
			StudentID:   uuid.New(),
			Name:        "Student",
			Coordinates: &domain.Coordinates{Lon: 76.30 + float64(i)*0.01, Lat: 10.00 + float64(i)*0.01},
			Active:      true,
		})
	}
	return &domain.Trip{
		TripID:    uuid.New(),
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Direction: domain.ToSchool,
		Status:    domain.TripPending,
		DriverID:  uuid.New(),
		Students:  students,
	}
}

func TestSequenceTripUsesOptimizerSolution(t *testing.T) {
	trip := sequencerTrip(3)
	opt := &stubOptimizer{solution: &ports.RouteSolution{
		VisitOrder:      []int{2, 0, 1},
		TotalDistanceKm: 14.2,
		DurationSeconds: 2100,
	}}
	rs := &RouteSequencer{Optimizer: opt, School: schoolCoords}

	route, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err)
	require.NoError(t, route.Validate(trip))

	assert.False(t, route.Degraded)
	assert.Equal(t, 14.2, route.TotalDistanceKm)
	assert.Equal(t, float64(2100), route.EstimatedDuration)

	require.Len(t, route.Stops, 5)
	assert.Equal(t, domain.StopSchool, route.Stops[0].Kind)
	assert.Equal(t, domain.StopSchool, route.Stops[4].Kind)
	assert.Equal(t, trip.Students[2].StudentID, *route.Stops[1].StudentID)
	assert.Equal(t, trip.Students[0].StudentID, *route.Stops[2].StudentID)
	assert.Equal(t, trip.Students[1].StudentID, *route.Stops[3].StudentID)
}

func TestSequenceTripFallsBackWhenOptimizerFails(t *testing.T) {
	trip := sequencerTrip(4)
	opt := &stubOptimizer{err: errors.New("connection refused")}
	rs := &RouteSequencer{
		Optimizer:        opt,
		School:           schoolCoords,
		FallbackSpeedKmh: 30,
		StopDwell:        45 * time.Second,
	}

	route, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err, "optimizer failure must not fail the caller")
	require.NoError(t, route.Validate(trip))

	assert.True(t, route.Degraded)
	assert.Greater(t, route.TotalDistanceKm, 0.0)

	// Travel time at fallback speed plus dwell per student stop.
	wantDuration := route.TotalDistanceKm/30*3600 + 45*4
	assert.InDelta(t, wantDuration, route.EstimatedDuration, 1e-6)

	// Fallback keeps input order.
	for i, s := range trip.Students {
		assert.Equal(t, s.StudentID, *route.Stops[i+1].StudentID)
	}
}

func TestSequenceTripFallsBackOnInvalidSolution(t *testing.T) {
	trip := sequencerTrip(3)

	for name, solution := range map[string]*ports.RouteSolution{
		"out of range":     {VisitOrder: []int{0, 1, 7}},
		"missing student":  {VisitOrder: []int{0, 1}},
		"repeated student": {VisitOrder: []int{0, 1, 1}},
	} {
		rs := &RouteSequencer{Optimizer: &stubOptimizer{solution: solution}, School: schoolCoords}

		route, err := rs.SequenceTrip(context.Background(), trip)
		require.NoError(t, err, name)
		require.NoError(t, route.Validate(trip), name)
		assert.True(t, route.Degraded, name)
	}
}

func TestSequenceTripEmptyTrip(t *testing.T) {
	rs := &RouteSequencer{Optimizer: &stubOptimizer{}, School: schoolCoords}
	_, err := rs.SequenceTrip(context.Background(), sequencerTrip(0))
	require.Error(t, err)
}

func TestSequenceTripCachesOptimizedRoutes(t *testing.T) {
	trip := sequencerTrip(2)
	opt := &stubOptimizer{solution: &ports.RouteSolution{VisitOrder: []int{1, 0}, TotalDistanceKm: 8, DurationSeconds: 1200}}
	cache := newMapCache()
	rs := &RouteSequencer{Optimizer: opt, Cache: cache, School: schoolCoords}

	first, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err)
	require.Equal(t, 1, opt.calls)

	second, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 1, opt.calls, "second sequencing must hit the cache")
	assert.Equal(t, first, second)
}

func TestSequenceTripDoesNotCacheDegradedRoutes(t *testing.T) {
	trip := sequencerTrip(2)
	cache := newMapCache()
	rs := &RouteSequencer{
		Optimizer: &stubOptimizer{err: errors.New("timeout")},
		Cache:     cache,
		School:    schoolCoords,
	}

	route, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err)
	require.True(t, route.Degraded)
	assert.Empty(t, cache.entries)
}

func TestSequenceTripToleratesCacheFailure(t *testing.T) {
	trip := sequencerTrip(2)
	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	rs := &RouteSequencer{
		Optimizer: &stubOptimizer{solution: &ports.RouteSolution{VisitOrder: []int{0, 1}, TotalDistanceKm: 5, DurationSeconds: 900}},
		Cache:     cache,
		School:    schoolCoords,
	}

	route, err := rs.SequenceTrip(context.Background(), trip)
	require.NoError(t, err)
	assert.False(t, route.Degraded)
}

func TestOptimizeDatePersistsRoutes(t *testing.T) {
	trips := repositories.NewMemoryTripRepository()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	good := sequencerTrip(2)
	require.NoError(t, trips.ReplaceForDate(context.Background(), date, domain.ToSchool, []*domain.Trip{good}))

	rs := &RouteSequencer{
		Optimizer: &stubOptimizer{solution: &ports.RouteSolution{VisitOrder: []int{1, 0}, TotalDistanceKm: 8, DurationSeconds: 1200}},
		Trips:     trips,
		School:    schoolCoords,
	}

	result, err := rs.OptimizeDate(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sequenced)
	assert.Zero(t, result.Degraded)

	stored, err := trips.ListByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].RouteOrder)
	require.NoError(t, stored[0].RouteOrder.Validate(good))
}

func TestOptimizeDateCountsDegraded(t *testing.T) {
	trips := repositories.NewMemoryTripRepository()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, trips.ReplaceForDate(context.Background(), date, domain.ToSchool, []*domain.Trip{sequencerTrip(2), sequencerTrip(3)}))

	rs := &RouteSequencer{
		Optimizer: &stubOptimizer{err: errors.New("service unavailable")},
		Trips:     trips,
		School:    schoolCoords,
	}

	result, err := rs.OptimizeDate(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sequenced)
	assert.Equal(t, 2, result.Degraded)
}
