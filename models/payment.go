package models

import (
	"time"
)

type PaymentMethod string

const (
	PaymentFPX        PaymentMethod = "fpx"
	PaymentLocalOrder PaymentMethod = "local-order"
)

type PaymentOutcome string

const (
	PaymentPending   PaymentOutcome = "pending"
	PaymentCompleted PaymentOutcome = "completed"
	PaymentFailed    PaymentOutcome = "failed"
)

// PaymentState is the transient status record returned by the platform
// while an online-banking settlement is in flight. It only lives for
// the duration of the polling session.
type PaymentState struct {
	Status  PaymentOutcome `json:"status"` // pending, completed, failed
	EventID string         `json:"event_id"`
	Booking *Booking       `json:"booking,omitempty"`
	Event   *Event         `json:"event,omitempty"`
}

// PendingPayment is the persisted "payment in progress" marker. It
// survives restarts so an interrupted poll can be resumed.
type PendingPayment struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Token     string    `json:"token"`
	StartedAt time.Time `json:"started_at"`
}
