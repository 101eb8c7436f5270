package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Load reads a .env file when present; real environment variables win.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found (using environment variables)")
	}
}

// Get returns the environment variable or a fallback.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the environment variable parsed as int, or the fallback
// when unset or unparsable.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment variable")
		return fallback
	}
	return n
}

// GetDuration returns the environment variable parsed as a duration, or
// the fallback when unset or unparsable.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-duration environment variable")
		return fallback
	}
	return d
}

// SchoolCoordinates returns the configured school location, defaulting to
// the campus the system was built for.
func SchoolCoordinates() (domain.Coordinates, error) {
	school := domain.Coordinates{Lon: 76.328898, Lat: 10.0482921}

	lonStr := os.Getenv("EDURIDER_SCHOOL_LON")
	latStr := os.Getenv("EDURIDER_SCHOOL_LAT")
	if lonStr == "" && latStr == "" {
		return school, nil
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("school coordinates: parse EDURIDER_SCHOOL_LON %q: %w", lonStr, err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("school coordinates: parse EDURIDER_SCHOOL_LAT %q: %w", latStr, err)
	}

	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}

// TripCapacity is the maximum students per trip under non-clamped planning.
func TripCapacity() int {
	return GetInt("EDURIDER_TRIP_CAPACITY", 40)
}
