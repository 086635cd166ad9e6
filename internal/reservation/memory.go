package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Reservation
	seq  int64
	now  func() time.Time
}

// NewMemoryRepository returns an in-process ledger. It enforces the same
// one-active-reservation-per-slot constraint as the database index.
func NewMemoryRepository() Repository {
	return &memoryRepository{rows: make(map[string]*Reservation), now: time.Now}
}

func clone(r *Reservation) *Reservation {
	cp := *r
	return &cp
}

func (m *memoryRepository) Create(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Status == StatusActive {
		for _, existing := range m.rows {
			if existing.IsActive() && existing.Hour == r.Hour && existing.Date.Equal(r.Date) {
				return ErrSlotTaken
			}
		}
	}

	m.seq++
	r.ID = uuid.NewString()
	r.Seq = m.seq
	r.CreatedAt = m.now()
	m.rows[r.ID] = clone(r)
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *memoryRepository) ActiveAt(ctx context.Context, date time.Time, hour int) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rows {
		if r.IsActive() && r.Hour == hour && r.Date.Equal(date) {
			return clone(r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) LatestActiveByTenant(ctx context.Context, tenantCode string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Reservation
	for _, r := range m.rows {
		if !r.IsActive() || r.TenantCode != tenantCode {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) || (r.Date.Equal(latest.Date) && r.Seq > latest.Seq) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return clone(latest), nil
}

func (m *memoryRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*Reservation
	for _, r := range m.rows {
		if filter.match(r) {
			list = append(list, clone(r))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.Seq < b.Seq
	})
	return list, nil
}

func (m *memoryRepository) Cancel(ctx context.Context, id string, cancelledBy *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	if !r.IsActive() {
		return ErrNotActive
	}
	r.Status = StatusCancelled
	r.CancelledBy = cancelledBy
	r.CancelledAt = &at
	return nil
}

func (m *memoryRepository) UpdateNote(ctx context.Context, id string, note *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	r.Note = note
	return nil
}

func (m *memoryRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	r.ReminderSentAt = &at
	return nil
}
