package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/blockedslot"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
)

var (
	ErrInvalidInput    = apperror.Validation("invalid_input", "invalid input")
	ErrUnknownTenant   = apperror.Validation("unknown_tenant", "unknown tenant code")
	ErrHourNotBookable = apperror.Validation("hour_not_bookable", "hour is not a bookable slot")

	ErrSlotOccupied     = apperror.Policy(http.StatusConflict, "slot_occupied", "time slot is already taken")
	ErrOutsideHorizon   = apperror.Policy(http.StatusUnprocessableEntity, "outside_horizon", "date is outside the booking window")
	ErrSlotInPast       = apperror.Policy(http.StatusUnprocessableEntity, "slot_in_past", "time slot has already started")
	ErrRateLimited      = apperror.Policy(http.StatusUnprocessableEntity, "rate_limited", "reservations are too close together")
	ErrCancelTooLate    = apperror.Policy(http.StatusUnprocessableEntity, "cancel_too_late", "too late to cancel this reservation")
	ErrAlreadyCancelled = apperror.Policy(http.StatusConflict, "already_cancelled", "reservation already cancelled")
	ErrNotOwner         = apperror.Policy(http.StatusForbidden, "not_owner", "reservation belongs to another tenant")

	ErrNotFound      = reservation.ErrNotFound
	ErrBlockNotFound = blockedslot.ErrNotFound
)

// Config holds the tenant-facing rules of the facility.
type Config struct {
	Location       *time.Location // facility timezone; "today" is evaluated here
	Tenants        []string
	HorizonDays    int
	MinSpacingDays int
	CancelLeadTime time.Duration // self-service cancel requires strictly more time than this
	ReminderFrom   time.Duration // reminder window, inclusive at both ends
	ReminderTo     time.Duration
}

type SlotState string

const (
	SlotFree     SlotState = "free"
	SlotReserved SlotState = "reserved"
	SlotBlocked  SlotState = "blocked"
)

// SlotView is one row of the daily availability view.
type SlotView struct {
	Hour          int
	Bookable      bool
	Info          string
	State         SlotState
	Tenant        *string
	ReservationID *string
	BlockID       *string
	Note          *string // reservation note or block reason
}

type AdminReserveRequest struct {
	Tenant string
	Date   time.Time
	Hour   int
	Admin  string
	Note   *string
}

type BlockRequest struct {
	Date   time.Time
	Hour   int
	Reason string
	Admin  string
}
