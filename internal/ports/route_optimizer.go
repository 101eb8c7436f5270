package ports

import (
	"context"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// RouteSolution is the outcome of one external optimization request.
// VisitOrder holds indices into the submitted student slice, in the order
// the vehicle should visit them (school endpoints excluded).
type RouteSolution struct {
	VisitOrder      []int
	TotalDistanceKm float64
	DurationSeconds float64
}

// Port: a boundary for the external routing-optimization service.
// Implementations submit one vehicle starting and ending at the school with
// one service per student, and return the computed visit order. Any failure
// (rejection, timeout, unusable response shape) surfaces as an error; the
// caller decides whether to degrade to a local estimate.
type RouteOptimizer interface {
	Optimize(ctx context.Context, school domain.Coordinates, students []*domain.Student) (*RouteSolution, error)
}
