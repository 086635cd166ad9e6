package reservation

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.Policy(http.StatusNotFound, "not_found", "reservation not found")
	// ErrSlotTaken is returned when the storage layer refuses a second active reservation for a slot.
	ErrSlotTaken = apperror.Conflict("slot_occupied", "time slot already booked")
	// ErrNotActive is returned by conditional updates on a reservation that is no longer active.
	ErrNotActive = apperror.Policy(http.StatusConflict, "already_cancelled", "reservation already cancelled")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Reservation is one booking of a (date, hour) slot by a tenant.
type Reservation struct {
	ID             string
	Seq            int64 // creation order
	TenantCode     string
	Date           time.Time // civil date, midnight UTC
	Hour           int
	Status         Status
	Note           *string
	CreatedBy      *string // admin identity when booked on the tenant's behalf
	CancelledBy    *string // admin identity when cancelled on the tenant's behalf
	CancelledAt    *time.Time
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Filter narrows a reservation listing. Zero values mean "any".
type Filter struct {
	TenantCode      string
	Status          Status
	From            *time.Time // inclusive civil date
	To              *time.Time // inclusive civil date
	ReminderPending bool       // only rows without a reminder mark
}

func (f Filter) match(r *Reservation) bool {
	if f.TenantCode != "" && r.TenantCode != f.TenantCode {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	if f.ReminderPending && r.ReminderSentAt != nil {
		return false
	}
	return true
}
