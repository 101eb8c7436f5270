package lock

import (
	"context"
	"sync"
	"time"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// MemoryPlanLocker serializes planning runs per (date, direction) key
// within one process. Each key gets its own mutex, so distinct keys plan
// in parallel.
type MemoryPlanLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryPlanLocker() *MemoryPlanLocker {
	return &MemoryPlanLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryPlanLocker) Acquire(ctx context.Context, date time.Time, direction domain.Direction) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := date.Format("2006-01-02") + "|" + string(direction)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
