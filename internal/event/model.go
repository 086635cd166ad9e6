package event

import "time"

type Type string

const (
	TypeReservation  Type = "reservation"
	TypeAdminBooking Type = "admin-booking"
	TypeCancellation Type = "cancellation"
	TypeAdminCancel  Type = "admin-cancel"
	TypeBlock        Type = "block"
	TypeUnblock      Type = "unblock"
)

// Event is one append-only audit record of a state-changing action.
type Event struct {
	ID         string
	Seq        int64
	Type       Type
	TenantCode *string // nil for block and unblock
	Date       time.Time
	Hour       int
	AdminCode  *string
	Note       *string
	CreatedAt  time.Time
}

// RangeFilter bounds events by the civil date of the slot they concern.
type RangeFilter struct {
	From *time.Time
	To   *time.Time
}

func (f RangeFilter) match(e *Event) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}
