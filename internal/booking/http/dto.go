package http

import (
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/blockedslot"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
)

// SlotsQuery defines query parameters for the daily availability view.
type SlotsQuery struct {
	Date string `form:"date" binding:"required,civildate"`
}

// ReserveBody is the payload for a self-service booking.
type ReserveBody struct {
	Date string `json:"date" binding:"required,civildate"`
	Hour *int   `json:"hour" binding:"required,min=0,max=23"`
}

// AdminReserveBody is the payload for an administrator booking on a tenant's behalf.
type AdminReserveBody struct {
	Tenant string  `json:"tenant" binding:"required"`
	Date   string  `json:"date" binding:"required,civildate"`
	Hour   *int    `json:"hour" binding:"required,min=0,max=23"`
	Note   *string `json:"note" binding:"omitempty,max=500"`
}

type NoteBody struct {
	Note *string `json:"note" binding:"omitempty,max=500"`
}

type BlockBody struct {
	Date   string `json:"date" binding:"required,civildate"`
	Hour   *int   `json:"hour" binding:"required,min=0,max=23"`
	Reason string `json:"reason" binding:"max=200"`
}

type ReminderSentBody struct {
	SentAt *time.Time `json:"sent_at"`
}

// ListReservationsQuery filters the admin reservation listing. Without bounds it
// returns every active reservation.
type ListReservationsQuery struct {
	request.DateRangeParams
}

type ReservationResponse struct {
	ID             string     `json:"id"`
	Tenant         string     `json:"tenant"`
	Date           string     `json:"date"`
	Hour           int        `json:"hour"`
	Status         string     `json:"status"`
	Note           *string    `json:"note,omitempty"`
	CreatedBy      *string    `json:"created_by,omitempty"`
	CancelledBy    *string    `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:             r.ID,
		Tenant:         r.TenantCode,
		Date:           calendar.FormatDate(r.Date),
		Hour:           r.Hour,
		Status:         string(r.Status),
		Note:           r.Note,
		CreatedBy:      r.CreatedBy,
		CancelledBy:    r.CancelledBy,
		CancelledAt:    r.CancelledAt,
		ReminderSentAt: r.ReminderSentAt,
		CreatedAt:      r.CreatedAt,
	}
}

func newReservationResponses(list []*reservation.Reservation) []ReservationResponse {
	items := make([]ReservationResponse, len(list))
	for i, r := range list {
		items[i] = NewReservationResponse(r)
	}
	return items
}

type BlockedSlotResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBlockedSlotResponse(b *blockedslot.BlockedSlot) BlockedSlotResponse {
	return BlockedSlotResponse{
		ID:        b.ID,
		Date:      calendar.FormatDate(b.Date),
		Hour:      b.Hour,
		Reason:    b.Reason,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	}
}

type SlotResponse struct {
	Hour          int     `json:"hour"`
	Bookable      bool    `json:"bookable"`
	Info          string  `json:"info,omitempty"`
	State         string  `json:"state"`
	Mine          bool    `json:"mine"`
	Tenant        *string `json:"tenant,omitempty"`
	ReservationID *string `json:"reservation_id,omitempty"`
	BlockID       *string `json:"block_id,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// NewSlotResponse hides who holds a slot from tenants other than the holder.
func NewSlotResponse(v booking.SlotView, caller string, isAdmin bool) SlotResponse {
	resp := SlotResponse{
		Hour:     v.Hour,
		Bookable: v.Bookable,
		Info:     v.Info,
		State:    string(v.State),
	}
	mine := v.Tenant != nil && *v.Tenant == caller
	resp.Mine = mine
	if isAdmin || mine {
		resp.Tenant = v.Tenant
		resp.ReservationID = v.ReservationID
		resp.Note = v.Note
	}
	if isAdmin {
		resp.BlockID = v.BlockID
	}
	return resp
}

type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type ReminderRunResponse struct {
	Sent int `json:"sent"`
}
