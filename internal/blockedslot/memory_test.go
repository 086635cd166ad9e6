package blockedslot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	d := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	b := &BlockedSlot{Date: d, Hour: 14, Reason: "maintenance", CreatedBy: "ADMIN"}
	require.NoError(t, repo.Create(ctx, b))
	assert.NotEmpty(t, b.ID)

	assert.ErrorIs(t, repo.Create(ctx, &BlockedSlot{Date: d, Hour: 14}), ErrAlreadyBlocked)

	got, err := repo.At(ctx, d, 14)
	require.NoError(t, err)
	assert.Equal(t, "maintenance", got.Reason)

	_, err = repo.At(ctx, d, 15)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)

	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleted, not soft-deleted: the slot can be blocked again.
	require.NoError(t, repo.Create(ctx, &BlockedSlot{Date: d, Hour: 14, CreatedBy: "ADMIN"}))
}

func TestMemoryRepositoryListByRange(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, dd := range []int{9, 3, 5} {
		d := time.Date(2025, 1, dd, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Create(ctx, &BlockedSlot{Date: d, Hour: 14, CreatedBy: "ADMIN"}))
	}

	from := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	list, err := repo.List(ctx, Filter{From: &from})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Date.Day())
	assert.Equal(t, 9, list[1].Date.Day())
}
