package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotLockKey(t *testing.T) {
	d := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(2025010514), SlotLockKey(d, 14))
	assert.NotEqual(t, SlotLockKey(d, 14), SlotLockKey(d, 15))
	assert.NotEqual(t, SlotLockKey(d, 14), SlotLockKey(d.AddDate(0, 0, 1), 14))
}
