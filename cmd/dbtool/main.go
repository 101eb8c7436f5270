package main

import (
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/adapters/repositories"
	"github.com/aswinpradeepc/edurider-v2/internal/config"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/db"
)

func main() {
	config.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer conn.Close()

	log.Info().Msg("Initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("Schema initialization failed")
	}
	log.Info().Msg("Schema ready")

	seedPath := config.Get("SEED_PATH", "data/seeds/edurider.json")
	if _, err := os.Stat(seedPath); err != nil {
		log.Info().Str("path", seedPath).Msg("No seed file, skipping seed")
		return
	}

	log.Info().Str("path", seedPath).Msg("Seeding database")
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	log.Info().Msg("Seeding complete")
}
