package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/adapters/cache"
	"github.com/aswinpradeepc/edurider-v2/internal/adapters/lock"
	"github.com/aswinpradeepc/edurider-v2/internal/adapters/optimizer"
	"github.com/aswinpradeepc/edurider-v2/internal/adapters/repositories"
	"github.com/aswinpradeepc/edurider-v2/internal/config"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
	"github.com/aswinpradeepc/edurider-v2/internal/services"
)

// Engine bundles the wired planning services shared by the HTTP server and
// the operational CLI.
type Engine struct {
	Planner   *services.Planner
	Sequencer *services.RouteSequencer
	Trips     ports.TripRepository
}

// Build wires concrete adapters behind the engine's ports from
// configuration. The routing provider, route cache and school location are
// all environment-selected.
func Build(db *sql.DB) (*Engine, error) {
	school, err := config.SchoolCoordinates()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	trips := repositories.NewPostgresTripRepository(db)

	routeOptimizer, err := buildOptimizer()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	sequencer := &services.RouteSequencer{
		Optimizer:        routeOptimizer,
		Cache:            buildRouteCache(),
		Trips:            trips,
		School:           school,
		FallbackSpeedKmh: float64(config.GetInt("EDURIDER_FALLBACK_SPEED_KMH", 30)),
		StopDwell:        config.GetDuration("EDURIDER_STOP_DWELL", 45*time.Second),
	}

	planner := &services.Planner{
		Students:   repositories.NewPostgresStudentRepository(db),
		Drivers:    repositories.NewPostgresDriverRepository(db),
		Attendance: repositories.NewPostgresAttendanceRepository(db),
		Trips:      trips,
		Locker:     lock.NewPostgresPlanLocker(db),
		Capacity:   config.TripCapacity(),
	}

	return &Engine{Planner: planner, Sequencer: sequencer, Trips: trips}, nil
}

func buildOptimizer() (ports.RouteOptimizer, error) {
	switch provider := config.Get("EDURIDER_ROUTING_PROVIDER", "job"); provider {
	case "job":
		return optimizer.NewJobClient(
			config.Get("EDURIDER_ROUTING_URL", "http://localhost:3000"),
			config.Get("EDURIDER_ROUTING_API_KEY", ""),
			config.GetDuration("EDURIDER_ROUTING_POLL_INTERVAL", 5*time.Second),
			config.GetInt("EDURIDER_ROUTING_MAX_POLLS", 24),
		)
	case "mapbox":
		return optimizer.NewMapboxClient(config.Get("MAPBOX_ACCESS_TOKEN", ""))
	default:
		return nil, fmt.Errorf("unknown routing provider %q", provider)
	}
}

// buildRouteCache returns the Redis route cache when configured, nil
// otherwise. The sequencer treats a nil cache as disabled.
func buildRouteCache() ports.RouteCache {
	addr := config.Get("EDURIDER_REDIS_ADDR", "")
	if addr == "" {
		log.Debug().Msg("Route cache disabled (EDURIDER_REDIS_ADDR not set)")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Get("EDURIDER_REDIS_PASSWORD", ""),
	})

	return cache.NewRedisRouteCache(client, config.GetDuration("EDURIDER_ROUTE_CACHE_TTL", 24*time.Hour))
}
