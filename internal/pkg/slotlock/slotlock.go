// Package slotlock provides per-slot and per-tenant mutual exclusion for in-process storage.
package slotlock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per key and drops it when unused.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// WithSlotLock runs fn while holding the lock of the (date, hour) slot.
func (l *Locker) WithSlotLock(ctx context.Context, date time.Time, hour int, fn func(ctx context.Context) error) error {
	return l.with(ctx, fmt.Sprintf("slot:%s/%02d", date.Format("2006-01-02"), hour), fn)
}

// WithTenantLock runs fn while holding the lock of the tenant.
// Callers that also need a slot lock take it inside fn, never the other way around.
func (l *Locker) WithTenantLock(ctx context.Context, tenant string, fn func(ctx context.Context) error) error {
	return l.with(ctx, "tenant:"+tenant, fn)
}

func (l *Locker) with(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}()

	return fn(ctx)
}

// size reports the number of live keys.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
