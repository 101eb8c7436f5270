package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/obs"
)

// Redis-backed implementation of the RouteCache port. Entries expire so a
// stale optimized route never outlives operational relevance; keys already
// encode trip membership, so only unchanged trips hit.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *domain.RouteOrder, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("route cache get %q: %w", key, err)
	}

	var route domain.RouteOrder
	if err := json.Unmarshal(raw, &route); err != nil {
		return nil, fmt.Errorf("route cache get %q: unmarshal: %w", key, err)
	}

	return &route, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route *domain.RouteOrder) error {
	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("route cache put %q: marshal: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("route cache put %q: %w", key, err)
	}

	return nil
}
