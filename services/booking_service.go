package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/models"
	"booking-portal/monitoring"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MinAttendees = 1

	taxRate = "0.10"
)

// ValidationErrors maps field names to messages. It blocks submission
// of the step it belongs to; nothing is partially submitted.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// WorkflowState is the booking-in-progress record threaded between
// steps. It lives in Redis for the duration of one checkout and is
// keyed by session, so a view reached without its predecessor's
// output simply finds nothing and redirects home.
type WorkflowState struct {
	EventID      string                `json:"event_id"`
	Attendees    int                   `json:"attendees"`
	AttendeeInfo []models.AttendeeInfo `json:"attendee_info,omitempty"`
}

// Confirmation is the terminal snapshot rendered after a successful
// payment.
type Confirmation struct {
	Booking *models.Booking `json:"booking"`
	Event   *models.Event   `json:"event"`
}

// OrderSummary is the checkout money math. Derived, never stored.
type OrderSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeOrderSummary derives subtotal, 10% tax and total for the
// given unit price and attendee count, rounded to 2 places.
func ComputeOrderSummary(price float64, attendees int) OrderSummary {
	subtotal := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(attendees))).Round(2)
	tax := subtotal.Mul(decimal.RequireFromString(taxRate)).Round(2)
	return OrderSummary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(2),
	}
}

type BookingService struct {
	Redis *redis.Client
	gw    *gateway.Client

	maxAttendees int
	ttl          time.Duration
	log          *zap.Logger
}

func NewBookingService(redisClient *redis.Client, gw *gateway.Client, maxAttendees int, ttl time.Duration, log *zap.Logger) *BookingService {
	return &BookingService{
		Redis:        redisClient,
		gw:           gw,
		maxAttendees: maxAttendees,
		ttl:          ttl,
		log:          log,
	}
}

func workflowKey(sessionID string) string {
	return fmt.Sprintf("workflow:booking:%s", sessionID)
}

func confirmationKey(sessionID string) string {
	return fmt.Sprintf("workflow:confirmation:%s", sessionID)
}

func inflightKey(sessionID string) string {
	return fmt.Sprintf("workflow:inflight:%s", sessionID)
}

// StartBooking is step 1: the user picks an event and an attendee
// count. Sold-out and cancelled events never enter the workflow.
func (s *BookingService) StartBooking(ctx context.Context, sessionID, eventID string, attendees int) (*models.Event, error) {
	event, err := s.gw.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("StartBooking: %w", err)
	}
	if event.Cancelled {
		return nil, status.ErrEventCancelled
	}
	if event.SoldOut() {
		return nil, status.ErrSoldOut
	}
	if attendees < MinAttendees || attendees > s.maxAttendees {
		return nil, ValidationErrors{
			"attendees": fmt.Sprintf("must be between %d and %d", MinAttendees, s.maxAttendees),
		}
	}

	state := &WorkflowState{EventID: eventID, Attendees: attendees}
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("StartBooking: %w", err)
	}

	monitoring.TrackBookingStep("event", "ok")
	return event, nil
}

// AttendeeCount is the entry check for step 2: it tells the view how
// many input groups to render, and fails when step 1 never happened.
func (s *BookingService) AttendeeCount(ctx context.Context, sessionID, eventID string) (int, error) {
	state, err := s.loadState(ctx, sessionID, eventID)
	if err != nil {
		return 0, err
	}
	return state.Attendees, nil
}

// SubmitAttendees is step 2: one record per attendee, all valid or
// nothing is stored.
func (s *BookingService) SubmitAttendees(ctx context.Context, sessionID, eventID string, info []models.AttendeeInfo) error {
	state, err := s.loadState(ctx, sessionID, eventID)
	if err != nil {
		return err
	}

	if len(info) != state.Attendees {
		return ValidationErrors{
			"attendees": fmt.Sprintf("expected %d attendee records, got %d", state.Attendees, len(info)),
		}
	}
	if errs := validateAttendees(info); len(errs) > 0 {
		monitoring.TrackBookingStep("attendees", "invalid")
		return errs
	}

	state.AttendeeInfo = info
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return fmt.Errorf("SubmitAttendees: %w", err)
	}

	monitoring.TrackBookingStep("attendees", "ok")
	return nil
}

// CheckoutView is everything step 3 renders: the reviewed attendee
// records and the derived order summary.
type CheckoutView struct {
	Event        *models.Event         `json:"event"`
	Attendees    int                   `json:"attendees"`
	AttendeeInfo []models.AttendeeInfo `json:"attendee_info"`
	Summary      OrderSummary          `json:"summary"`
}

// Checkout is step 3. It requires both the attendee count and the
// attendee records from the previous steps; reached directly it
// returns ErrMissingStep and the handler sends the user home.
func (s *BookingService) Checkout(ctx context.Context, sessionID, eventID string) (*CheckoutView, error) {
	state, err := s.loadState(ctx, sessionID, eventID)
	if err != nil {
		return nil, err
	}
	if len(state.AttendeeInfo) == 0 {
		return nil, status.ErrMissingStep
	}

	event, err := s.gw.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("Checkout: %w", err)
	}

	monitoring.TrackBookingStep("checkout", "ok")
	return &CheckoutView{
		Event:        event,
		Attendees:    state.Attendees,
		AttendeeInfo: state.AttendeeInfo,
		Summary:      ComputeOrderSummary(event.Price, state.Attendees),
	}, nil
}

// PaymentRequest packages the workflow state for the payment adapter.
func (s *BookingService) PaymentRequest(ctx context.Context, sessionID, eventID string) (*gateway.FPXPaymentRequest, error) {
	state, err := s.loadState(ctx, sessionID, eventID)
	if err != nil {
		return nil, err
	}
	if len(state.AttendeeInfo) == 0 {
		return nil, status.ErrMissingStep
	}
	return &gateway.FPXPaymentRequest{
		EventID:      state.EventID,
		Attendees:    state.Attendees,
		AttendeeInfo: state.AttendeeInfo,
	}, nil
}

// StoreConfirmation records the terminal booking+event snapshot for
// step 4 and retires the in-progress state.
func (s *BookingService) StoreConfirmation(ctx context.Context, sessionID string, booking *models.Booking, event *models.Event) error {
	raw, err := json.Marshal(&Confirmation{Booking: booking, Event: event})
	if err != nil {
		return fmt.Errorf("StoreConfirmation: json.Marshal: %w", err)
	}
	if err := s.Redis.Set(ctx, confirmationKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("StoreConfirmation: redis.Set: %w", err)
	}
	_ = s.Redis.Del(ctx, workflowKey(sessionID)).Err()

	monitoring.TrackBookingStep("confirmation", "ok")
	return nil
}

// Confirmation is step 4; without a stored snapshot the handler
// redirects home.
func (s *BookingService) Confirmation(ctx context.Context, sessionID string) (*Confirmation, error) {
	raw, err := s.Redis.Get(ctx, confirmationKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, status.ErrMissingStep
	}
	if err != nil {
		return nil, fmt.Errorf("Confirmation: redis.Get: %w", err)
	}

	var confirmation Confirmation
	if err := json.Unmarshal([]byte(raw), &confirmation); err != nil {
		return nil, fmt.Errorf("Confirmation: json.Unmarshal: %w", err)
	}
	if confirmation.Booking == nil || confirmation.Event == nil {
		return nil, status.ErrMissingStep
	}
	return &confirmation, nil
}

// AcquireSubmitLock makes submit actions single-flight per session so
// a double click cannot create two bookings.
func (s *BookingService) AcquireSubmitLock(ctx context.Context, sessionID string) (func(), error) {
	ok, err := s.Redis.SetNX(ctx, inflightKey(sessionID), "1", 30*time.Second).Result()
	if err != nil {
		return nil, fmt.Errorf("AcquireSubmitLock: redis.SetNX: %w", err)
	}
	if !ok {
		return nil, status.ErrSubmitInFlight
	}
	release := func() {
		_ = s.Redis.Del(context.Background(), inflightKey(sessionID)).Err()
	}
	return release, nil
}

// ClearWorkflow abandons any in-progress booking for the session.
func (s *BookingService) ClearWorkflow(ctx context.Context, sessionID string) {
	_ = s.Redis.Del(ctx, workflowKey(sessionID)).Err()
}

func (s *BookingService) saveState(ctx context.Context, sessionID string, state *WorkflowState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("saveState: json.Marshal: %w", err)
	}
	if err := s.Redis.Set(ctx, workflowKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("saveState: redis.Set: %w", err)
	}
	return nil
}

// loadState fetches the workflow record and checks it belongs to the
// event the view claims to be on. A record for another event is a
// stale leftover, not a predecessor, and counts as missing.
func (s *BookingService) loadState(ctx context.Context, sessionID, eventID string) (*WorkflowState, error) {
	raw, err := s.Redis.Get(ctx, workflowKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, status.ErrMissingStep
	}
	if err != nil {
		return nil, fmt.Errorf("loadState: redis.Get: %w", err)
	}

	var state WorkflowState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("loadState: json.Unmarshal: %w", err)
	}
	if state.EventID != eventID || state.Attendees < MinAttendees {
		return nil, status.ErrMissingStep
	}
	return &state, nil
}

func validateAttendees(info []models.AttendeeInfo) ValidationErrors {
	errs := ValidationErrors{}
	for i, attendee := range info {
		if len(strings.TrimSpace(attendee.Name)) < 2 {
			errs[fmt.Sprintf("attendees.%d.name", i)] = "name must be at least 2 characters"
		}
		if _, err := mail.ParseAddress(attendee.Email); err != nil {
			errs[fmt.Sprintf("attendees.%d.email", i)] = "invalid email address"
		}
	}
	return errs
}
