package ports

import (
	"context"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Port: a boundary for reading Driver entities. The engine takes a
// read-only snapshot of availability at the start of a planning run and
// never mutates driver status.
type DriverRepository interface {
	// Return all allocatable (available and active) drivers in a stable order.
	ListAvailable(ctx context.Context) ([]*domain.Driver, error)
}
