package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open a Postgres pool sized for the planning workload: short bursts of
// concurrent reads during a regeneration run, idle the rest of the day.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: verify connection: %w", err)
	}

	return db, nil
}
