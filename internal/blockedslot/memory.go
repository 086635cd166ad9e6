package blockedslot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*BlockedSlot
}

// NewMemoryRepository returns an in-process registry with a unique (date, hour) constraint.
func NewMemoryRepository() Repository {
	return &memoryRepository{rows: make(map[string]*BlockedSlot)}
}

func (m *memoryRepository) Create(ctx context.Context, b *BlockedSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rows {
		if existing.Hour == b.Hour && existing.Date.Equal(b.Date) {
			return ErrAlreadyBlocked
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*BlockedSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryRepository) At(ctx context.Context, date time.Time, hour int) (*BlockedSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.rows {
		if b.Hour == hour && b.Date.Equal(date) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) List(ctx context.Context, filter Filter) ([]*BlockedSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*BlockedSlot
	for _, b := range m.rows {
		if filter.match(b) {
			cp := *b
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].Hour < list[j].Hour
	})
	return list, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
