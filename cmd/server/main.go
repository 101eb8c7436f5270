package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/api"
	"github.com/aswinpradeepc/edurider-v2/internal/app"
	"github.com/aswinpradeepc/edurider-v2/internal/config"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/db"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	config.Load()
	setupLogging()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer conn.Close()

	engine, err := app.Build(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build planning engine")
	}

	router := api.NewRouter(engine.Planner, engine.Sequencer, engine.Trips)

	port := config.Get("PORT", "8080")
	log.Info().Str("addr", ":"+port).Msg("Server listening")

	// Timeouts are tuned for route planning against a cold external
	// optimizer (job submit plus polling).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("Server stopped")
}

func setupLogging() {
	if os.Getenv("EDURIDER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("EDURIDER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}
}
