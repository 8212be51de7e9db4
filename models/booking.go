package models

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type AttendeeInfo struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Dietary    string     `json:"dietary_requirements,omitempty"`
	Attended   bool       `json:"attended,omitempty"`
	AttendedAt *time.Time `json:"attended_at,omitempty"`
}

type Booking struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	UserID        string         `json:"user_id"`
	Status        BookingStatus  `json:"status"` // pending, confirmed, cancelled
	CreatedAt     time.Time      `json:"created_at"`
	Attendees     int            `json:"attendees"`
	AttendeeInfo  []AttendeeInfo `json:"attendee_info"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"` // fpx, local-order
	TotalAmount   float64        `json:"total_amount,omitempty"`
}
