package http

import (
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/request"
)

// ListEventsRequest selects either a page of the log or a date range.
// A range, when given, takes precedence over pagination.
type ListEventsRequest struct {
	request.ListParams
	request.DateRangeParams
}

func (r *ListEventsRequest) HasRange() bool {
	return r.From != "" || r.To != ""
}

type EventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Tenant    *string   `json:"tenant"`
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	Admin     *string   `json:"admin,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Tenant:    e.TenantCode,
		Date:      calendar.FormatDate(e.Date),
		Hour:      e.Hour,
		Admin:     e.AdminCode,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

func newEventResponses(list []*event.Event) []EventResponse {
	items := make([]EventResponse, len(list))
	for i, e := range list {
		items[i] = NewEventResponse(e)
	}
	return items
}
