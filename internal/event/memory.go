package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu     sync.RWMutex
	events []*Event // append order
	now    func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{now: time.Now}
}

func (m *memoryRepository) Append(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.NewString()
	e.Seq = int64(len(m.events) + 1)
	e.CreatedAt = m.now()
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

// newestFirst walks the log backwards; seq order equals created_at order here.
func (m *memoryRepository) newestFirst(keep func(*Event) bool) []*Event {
	var list []*Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if keep(m.events[i]) {
			cp := *m.events[i]
			list = append(list, &cp)
		}
	}
	return list
}

func (m *memoryRepository) List(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.newestFirst(func(*Event) bool { return true })
	total := len(all)
	if offset >= total {
		return []*Event{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memoryRepository) ListByDateRange(ctx context.Context, filter RangeFilter) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.newestFirst(filter.match), nil
}
