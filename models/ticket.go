package models

import (
	"time"
)

// TicketPayload is the document embedded in a ticket's scannable code.
type TicketPayload struct {
	BookingID string `json:"bookingId"`
	EventID   string `json:"eventId"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// NewTicketPayload stamps a payload for the given booking.
func NewTicketPayload(bookingID, eventID string, issuedAt time.Time) TicketPayload {
	return TicketPayload{
		BookingID: bookingID,
		EventID:   eventID,
		Timestamp: issuedAt.UTC().Format(time.RFC3339),
	}
}
