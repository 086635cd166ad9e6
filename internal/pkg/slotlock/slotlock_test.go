package slotlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSlotLockSerializesSameSlot(t *testing.T) {
	l := New()
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithSlotLock(context.Background(), day, 14, func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside, "only one caller may hold a slot at a time")
	assert.Equal(t, 0, l.size(), "unused keys are released")
}

func TestWithSlotLockDifferentSlotsDoNotBlock(t *testing.T) {
	l := New()
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	done := make(chan struct{})
	err := l.WithSlotLock(context.Background(), day, 14, func(ctx context.Context) error {
		go func() {
			_ = l.WithSlotLock(context.Background(), day, 15, func(ctx context.Context) error { return nil })
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-time.After(time.Second):
			t.Fatal("lock on another slot blocked")
			return nil
		}
	})
	require.NoError(t, err)
}

func TestWithSlotLockCancelledContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := l.WithSlotLock(ctx, time.Now(), 14, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithTenantLockSerializesSameTenant(t *testing.T) {
	l := New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithTenantLock(context.Background(), "APARTAMENT 1", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				if n > atomic.LoadInt32(&maxInside) {
					atomic.StoreInt32(&maxInside, n)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.size())
}

func TestTenantAndSlotLocksNest(t *testing.T) {
	l := New()
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	called := false
	err := l.WithTenantLock(context.Background(), "APARTAMENT 1", func(ctx context.Context) error {
		return l.WithSlotLock(ctx, day, 14, func(ctx context.Context) error {
			called = true
			assert.Equal(t, 2, l.size())
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 0, l.size())
}
