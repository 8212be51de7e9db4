package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"booking-portal/models"
)

func (c *Client) ListBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doJSON(ctx, "bookings.list", http.MethodGet, "/bookings/", token, nil, &bookings); err != nil {
		return nil, fmt.Errorf("ListBookings: %w", err)
	}
	return bookings, nil
}

func (c *Client) UserBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doJSON(ctx, "bookings.user", http.MethodGet, "/bookings/user", token, nil, &bookings); err != nil {
		return nil, fmt.Errorf("UserBookings: %w", err)
	}
	return bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, token, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, "bookings.get", http.MethodGet, "/bookings/"+id, token, nil, &booking); err != nil {
		return nil, fmt.Errorf("GetBooking: %w", err)
	}
	return &booking, nil
}

type CreateBookingRequest struct {
	EventID      string                `json:"event_id"`
	Attendees    int                   `json:"attendees"`
	AttendeeInfo []models.AttendeeInfo `json:"attendee_info"`
}

func (c *Client) CreateBooking(ctx context.Context, token string, req *CreateBookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, "bookings.create", http.MethodPost, "/bookings/", token, req, &booking); err != nil {
		return nil, fmt.Errorf("CreateBooking: %w", err)
	}
	return &booking, nil
}

func (c *Client) CancelBooking(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, "bookings.cancel", http.MethodPost, "/bookings/"+id+"/cancel", token, nil, nil); err != nil {
		return fmt.Errorf("CancelBooking: %w", err)
	}
	return nil
}

// UpdateAttendance flips one attendee's attended flag. The platform
// stamps or clears attended_at from the given timestamp.
func (c *Client) UpdateAttendance(ctx context.Context, token, bookingID string, attendeeIndex int, attended bool) (*models.Booking, error) {
	body := map[string]any{
		"attendee_index": attendeeIndex,
		"attended":       attended,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	var booking models.Booking
	if err := c.doJSON(ctx, "bookings.attendance", http.MethodPost, "/bookings/"+bookingID+"/attendance", token, body, &booking); err != nil {
		return nil, fmt.Errorf("UpdateAttendance: %w", err)
	}
	return &booking, nil
}
