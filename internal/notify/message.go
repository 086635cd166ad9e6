package notify

import (
	"encoding/json"
	"fmt"
)

type Type string

const (
	TypeNewReservation Type = "new_reservation"
	TypeCancellation   Type = "cancellation"
	TypeReminder       Type = "reminder"
	TypeAdminBooking   Type = "admin_booking"
	TypeAdminCancel    Type = "admin_cancel"
)

// Message is the outbound notification emitted after an audited action.
// Delivery to the tenant is handled outside this service.
type Message struct {
	Type        Type    `json:"type"`
	Tenant      string  `json:"tenant"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Hour        int     `json:"hour"`
	Note        *string `json:"note,omitempty"`
	ActingAdmin *string `json:"acting_admin,omitempty"`
}

// RoutingKey is the AMQP topic key for a message type, e.g. "notify.reminder".
func RoutingKey(t Type) string {
	return "notify." + string(t)
}

func decode(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("decode payload failed: %w", err)
	}
	return m, nil
}

// Render turns a message into a subject line and body for a Notifier.
func Render(m Message) (subject, body string) {
	slot := fmt.Sprintf("%s %02d:00", m.Date, m.Hour)
	switch m.Type {
	case TypeNewReservation:
		subject = "Reservation confirmed"
		body = fmt.Sprintf("%s booked the wellness area for %s.", m.Tenant, slot)
	case TypeAdminBooking:
		subject = "Reservation made by administrator"
		body = fmt.Sprintf("An administrator booked %s for %s.", slot, m.Tenant)
	case TypeCancellation:
		subject = "Reservation cancelled"
		body = fmt.Sprintf("%s cancelled the reservation for %s.", m.Tenant, slot)
	case TypeAdminCancel:
		subject = "Reservation cancelled by administrator"
		body = fmt.Sprintf("An administrator cancelled the reservation of %s for %s.", m.Tenant, slot)
	case TypeReminder:
		subject = "Reservation reminder"
		body = fmt.Sprintf("Reminder: %s has the wellness area booked for %s.", m.Tenant, slot)
	default:
		subject = string(m.Type)
		body = fmt.Sprintf("%s %s", m.Tenant, slot)
	}
	if m.ActingAdmin != nil {
		body += fmt.Sprintf(" Administrator: %s.", *m.ActingAdmin)
	}
	if m.Note != nil && *m.Note != "" {
		body += fmt.Sprintf(" Note: %s", *m.Note)
	}
	return subject, body
}
