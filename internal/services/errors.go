package services

import (
	"errors"
	"fmt"
)

// Fatal planning errors. Validation and persistence failures abort the
// current (date, direction) run; everything softer travels on the
// PlanReport as a warning instead.
var (
	// ErrNoAvailableDrivers: eligible students exist but no driver is
	// allocatable, so no trips can be created at all.
	ErrNoAvailableDrivers = errors.New("no available drivers for eligible students")

	// ErrInvalidCapacity: configured per-trip capacity is zero or negative.
	ErrInvalidCapacity = errors.New("trip capacity must be positive")
)

// WarningKind classifies non-fatal planning conditions.
type WarningKind string

const (
	// Eligible students excluded for missing coordinates.
	WarningMissingCoordinates WarningKind = "missing_coordinates"

	// Cluster count clamped below the ideal because too few drivers are
	// available; some trips exceed the configured capacity.
	WarningResourceExhaustion WarningKind = "resource_exhaustion"
)

// Warning is a reported, non-fatal planning condition.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
