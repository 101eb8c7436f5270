package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Port: a boundary for persisting Trip entities.
type TripRepository interface {
	// Atomically replace every trip for (date, direction) with the given
	// set. Either all prior trips are removed and all new trips created, or
	// the previous trips remain intact. Implementations must not leave a
	// partially regenerated state behind on failure.
	ReplaceForDate(ctx context.Context, date time.Time, direction domain.Direction, trips []*domain.Trip) error

	// Return all trips for a service date, both directions, with members.
	ListByDate(ctx context.Context, date time.Time) ([]*domain.Trip, error)

	// Persist a computed route order on an existing trip.
	UpdateRouteOrder(ctx context.Context, tripID uuid.UUID, route *domain.RouteOrder) error
}
