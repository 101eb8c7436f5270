package ports

import (
	"context"
	"time"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Port: single-writer discipline for planning runs. Regenerating the same
// (date, direction) concurrently races on the delete-then-create sequence,
// so the planner holds this lock for the whole run. Distinct keys may be
// planned in parallel.
type PlanLocker interface {
	// Block until the (date, direction) key is held or ctx is done.
	// The returned function releases the lock.
	Acquire(ctx context.Context, date time.Time, direction domain.Direction) (release func(), err error)
}
