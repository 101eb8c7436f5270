package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction is whether a trip travels toward the school or away from it.
type Direction string

const (
	ToSchool   Direction = "to_school"
	FromSchool Direction = "from_school"
)

// ParseDirection validates a wire-format direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case ToSchool, FromSchool:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("parse direction: unknown direction %q", s)
	}
}

// TripStatus is the operational lifecycle state of a trip. Planning creates
// trips as pending; later transitions are owned outside the engine.
type TripStatus string

const (
	TripPending   TripStatus = "pending"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// TimeWindow is the scheduled start and end of a trip, as wall-clock
// times of day ("07:30:00").
type TimeWindow struct {
	Start string
	End   string
}

// DefaultTimeWindow returns the standard schedule for a direction.
func DefaultTimeWindow(direction Direction) TimeWindow {
	if direction == ToSchool {
		return TimeWindow{Start: "07:30:00", End: "08:30:00"}
	}
	return TimeWindow{Start: "15:30:00", End: "16:30:00"}
}

// Represents a planned bus run: one date, one direction, one driver and a
// capacity-bounded set of students. The RouteOrder is nil until the trip
// has been sequenced.
type Trip struct {
	TripID     uuid.UUID
	Date       time.Time
	Direction  Direction
	TimeWindow TimeWindow
	Status     TripStatus
	DriverID   uuid.UUID
	Students   []*Student
	RouteOrder *RouteOrder
}

// StopKind discriminates school and student stops in a route order.
type StopKind string

const (
	StopSchool  StopKind = "school"
	StopStudent StopKind = "student"
)

// A single stop in a sequenced route.
type Stop struct {
	Kind        StopKind   `json:"type"`
	Coordinates []float64  `json:"coordinates"`
	StudentName string     `json:"student_name,omitempty"`
	StudentID   *uuid.UUID `json:"student_id,omitempty"`
}

// RouteOrder is the persisted ordered stop sequence and aggregate metrics
// for a trip. Degraded marks routes computed by the local straight-line
// estimator instead of the external optimization service.
type RouteOrder struct {
	Stops             []Stop  `json:"stops"`
	TotalDistanceKm   float64 `json:"total_distance"`
	EstimatedDuration float64 `json:"estimated_duration"`
	Degraded          bool    `json:"degraded,omitempty"`
}

// Validate checks the structural invariants of a sequenced route against
// the trip's member list: the sequence starts and ends at the school and
// visits every member exactly once in between.
func (r *RouteOrder) Validate(trip *Trip) error {
	if len(r.Stops) != len(trip.Students)+2 {
		return fmt.Errorf("route order: expected %d stops, got %d", len(trip.Students)+2, len(r.Stops))
	}

	first := r.Stops[0]
	last := r.Stops[len(r.Stops)-1]
	if first.Kind != StopSchool || last.Kind != StopSchool {
		return errors.New("route order: sequence must start and end at the school")
	}

	seen := make(map[uuid.UUID]bool, len(trip.Students))
	for _, stop := range r.Stops[1 : len(r.Stops)-1] {
		if stop.Kind != StopStudent || stop.StudentID == nil {
			return errors.New("route order: interior stops must reference a student")
		}
		if seen[*stop.StudentID] {
			return fmt.Errorf("route order: student %s appears more than once", stop.StudentID)
		}
		seen[*stop.StudentID] = true
	}

	for _, s := range trip.Students {
		if !seen[s.StudentID] {
			return fmt.Errorf("route order: trip member %s missing from sequence", s.StudentID)
		}
	}

	if r.TotalDistanceKm < 0 {
		return errors.New("route order: total_distance must be >= 0")
	}
	if r.EstimatedDuration < 0 {
		return errors.New("route order: estimated_duration must be >= 0")
	}

	return nil
}
