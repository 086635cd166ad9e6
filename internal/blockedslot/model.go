package blockedslot

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.Policy(http.StatusNotFound, "block_not_found", "blocked slot not found")
	// ErrAlreadyBlocked is returned when the storage layer refuses a second block for a slot.
	ErrAlreadyBlocked = apperror.Conflict("slot_occupied", "time slot already blocked")
)

// BlockedSlot is an administrative hold on a (date, hour) slot.
type BlockedSlot struct {
	ID        string
	Date      time.Time // civil date, midnight UTC
	Hour      int
	Reason    string
	CreatedBy string // admin identity
	CreatedAt time.Time
}

// Filter narrows a blocked slot listing by inclusive civil date bounds.
type Filter struct {
	From *time.Time
	To   *time.Time
}

func (f Filter) match(b *BlockedSlot) bool {
	if f.From != nil && b.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && b.Date.After(*f.To) {
		return false
	}
	return true
}
