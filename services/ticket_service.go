package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/models"
	"booking-portal/monitoring"

	"go.uber.org/zap"
)

// TicketService issues the scannable ticket payload and runs the
// check-in desk: decoding scans, toggling attendance, roster search.
type TicketService struct {
	gw  *gateway.Client
	log *zap.Logger
}

func NewTicketService(gw *gateway.Client, log *zap.Logger) *TicketService {
	return &TicketService{gw: gw, log: log}
}

// Ticket is an issued scannable ticket: the JSON payload plus its
// base64 form for embedding in a code image.
type Ticket struct {
	Payload string `json:"payload"`
	Code    string `json:"code"`
}

// Issue renders the ticket for a booking the user owns. The payload
// is the JSON document the check-in scanner decodes.
func (s *TicketService) Issue(ctx context.Context, token string, session *Session, bookingID string) (*Ticket, *models.Booking, error) {
	booking, err := s.gw.GetBooking(ctx, token, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("Issue: %w", err)
	}
	if booking.UserID != session.User.ID && !session.Admin() {
		return nil, nil, status.ErrForbidden
	}

	payload, err := json.Marshal(models.NewTicketPayload(booking.ID, booking.EventID, time.Now()))
	if err != nil {
		return nil, nil, fmt.Errorf("Issue: json.Marshal: %w", err)
	}
	return &Ticket{
		Payload: string(payload),
		Code:    base64.StdEncoding.EncodeToString(payload),
	}, booking, nil
}

// Decode parses a scanned payload, either the JSON document itself or
// its base64 form as embedded in the code image. A document missing
// any of the three fields, or carrying a malformed timestamp, is not
// a ticket.
func Decode(raw string) (*models.TicketPayload, error) {
	var payload models.TicketPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		decoded, b64Err := base64.StdEncoding.DecodeString(raw)
		if b64Err != nil || json.Unmarshal(decoded, &payload) != nil {
			return nil, status.ErrInvalidTicket
		}
	}
	if payload.BookingID == "" || payload.EventID == "" || payload.Timestamp == "" {
		return nil, status.ErrInvalidTicket
	}
	if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
		return nil, status.ErrInvalidTicket
	}
	return &payload, nil
}

// CheckIn resolves a scanned payload to its booking so the desk can
// confirm names against the roster.
func (s *TicketService) CheckIn(ctx context.Context, token, raw string) (*models.Booking, error) {
	payload, err := Decode(raw)
	if err != nil {
		monitoring.TrackCheckIn("invalid")
		return nil, err
	}

	booking, err := s.gw.GetBooking(ctx, token, payload.BookingID)
	if err != nil {
		monitoring.TrackCheckIn("not_found")
		return nil, fmt.Errorf("CheckIn: %w", err)
	}
	if booking.EventID != payload.EventID {
		monitoring.TrackCheckIn("mismatch")
		return nil, status.ErrInvalidTicket
	}

	monitoring.TrackCheckIn("ok")
	return booking, nil
}

// ToggleAttendance flips one attendee's attended flag. Marking
// attendance stamps the time; unmarking clears it.
func (s *TicketService) ToggleAttendance(ctx context.Context, token string, booking *models.Booking, attendeeIndex int) (*models.Booking, error) {
	if attendeeIndex < 0 || attendeeIndex >= len(booking.AttendeeInfo) {
		return nil, fmt.Errorf("ToggleAttendance: attendee index %d out of range", attendeeIndex)
	}

	attended := !booking.AttendeeInfo[attendeeIndex].Attended
	updated, err := s.gw.UpdateAttendance(ctx, token, booking.ID, attendeeIndex, attended)
	if err != nil {
		return nil, fmt.Errorf("ToggleAttendance: %w", err)
	}

	s.log.Info("attendance toggled",
		zap.String("booking_id", booking.ID),
		zap.Int("attendee", attendeeIndex),
		zap.Bool("attended", attended),
	)
	return updated, nil
}

// SearchRoster filters an event's bookings by a case-insensitive match
// on booking ID, attendee name, email or phone. An empty query returns
// everything.
func SearchRoster(bookings []models.Booking, query string) []models.Booking {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return bookings
	}

	var matched []models.Booking
	for _, booking := range bookings {
		if rosterMatch(&booking, query) {
			matched = append(matched, booking)
		}
	}
	return matched
}

func rosterMatch(booking *models.Booking, query string) bool {
	if strings.Contains(strings.ToLower(booking.ID), query) {
		return true
	}
	for _, attendee := range booking.AttendeeInfo {
		if strings.Contains(strings.ToLower(attendee.Name), query) ||
			strings.Contains(strings.ToLower(attendee.Email), query) ||
			strings.Contains(strings.ToLower(attendee.Phone), query) {
			return true
		}
	}
	return false
}
