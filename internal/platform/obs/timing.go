package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs an operation's duration (and error, if any) when the returned
// function runs. Usage: defer obs.Time(ctx, "planner.Plan")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		evt := log.Info()
		if errp != nil && *errp != nil {
			evt = log.Error().Err(*errp)
		}
		evt.Str("req_id", reqID).Str("op", name).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Msg("Operation finished")
	}
}
