package ports

import (
	"context"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Port: a cache of computed route orders, checked before issuing external
// optimization calls. Keys encode the trip's membership so a changed member
// list never hits a stale entry. A nil result with nil error is a miss.
type RouteCache interface {
	Get(ctx context.Context, key string) (*domain.RouteOrder, error)
	Put(ctx context.Context, key string, route *domain.RouteOrder) error
}
