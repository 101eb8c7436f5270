package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// PostgresPlanLocker serializes planning runs across processes using
// session-scoped Postgres advisory locks. The lock is held on a dedicated
// connection for the duration of the run and released explicitly.
type PostgresPlanLocker struct{ DB *sql.DB }

func NewPostgresPlanLocker(db *sql.DB) *PostgresPlanLocker {
	return &PostgresPlanLocker{DB: db}
}

func planLockKey(date time.Time, direction domain.Direction) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "plan-run|%s|%s", date.Format("2006-01-02"), direction)
	return int64(h.Sum64())
}

func (l *PostgresPlanLocker) Acquire(ctx context.Context, date time.Time, direction domain.Direction) (func(), error) {
	if l.DB == nil {
		return nil, errors.New("postgres plan locker: DB is nil")
	}

	// The advisory lock is tied to the session, so the same connection
	// must be held until release.
	conn, err := l.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan lock: checkout connection: %w", err)
	}

	key := planLockKey(date, direction)
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1);`, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("plan lock: acquire advisory lock: %w", err)
	}

	release := func() {
		if _, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1);`, key); err != nil {
			log.Error().Err(err).Int64("key", key).Msg("Failed to release plan advisory lock")
		}
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to return plan lock connection")
		}
	}

	return release, nil
}
