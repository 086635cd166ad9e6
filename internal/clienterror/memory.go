package clienterror

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	reports []*ClientError
	now     func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{now: time.Now}
}

func (m *memoryRepository) Append(ctx context.Context, e *ClientError) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.NewString()
	e.Seq = int64(len(m.reports) + 1)
	e.CreatedAt = m.now()
	cp := *e
	m.reports = append(m.reports, &cp)
	return nil
}

func (m *memoryRepository) List(ctx context.Context, limit int) ([]*ClientError, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*ClientError, 0, limit)
	for i := len(m.reports) - 1; i >= 0 && len(list) < limit; i-- {
		cp := *m.reports[i]
		list = append(list, &cp)
	}
	return list, nil
}
