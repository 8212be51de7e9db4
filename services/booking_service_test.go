package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEventServer(t *testing.T, event *models.Event) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(event)
	}))
}

func newBookingService(t *testing.T, baseURL string) (*BookingService, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	gw := gateway.New(baseURL, 5*time.Second, zap.NewNop())
	return NewBookingService(db, gw, 10, 30*time.Minute, zap.NewNop()), mock
}

func TestComputeOrderSummary(t *testing.T) {
	summary := ComputeOrderSummary(100, 3)

	assert.Equal(t, "300", summary.Subtotal.String())
	assert.Equal(t, "30", summary.Tax.String())
	assert.Equal(t, "330", summary.Total.String())
}

func TestComputeOrderSummaryRounding(t *testing.T) {
	summary := ComputeOrderSummary(49.99, 3)

	assert.Equal(t, "149.97", summary.Subtotal.String())
	assert.Equal(t, "15", summary.Tax.String())
	assert.Equal(t, "164.97", summary.Total.String())
}

func TestStartBookingStoresWorkflowState(t *testing.T) {
	server := newEventServer(t, &models.Event{ID: "evt-1", Capacity: 20, BookedSeats: 5, Price: 50})
	defer server.Close()

	svc, mock := newBookingService(t, server.URL)

	state, err := json.Marshal(&WorkflowState{EventID: "evt-1", Attendees: 2})
	require.NoError(t, err)
	mock.ExpectSet("workflow:booking:sess-1", state, 30*time.Minute).SetVal("OK")

	event, err := svc.StartBooking(context.Background(), "sess-1", "evt-1", 2)

	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartBookingAttendeeBounds(t *testing.T) {
	server := newEventServer(t, &models.Event{ID: "evt-1", Capacity: 20, Price: 50})
	defer server.Close()

	svc, _ := newBookingService(t, server.URL)

	for _, attendees := range []int{0, -1, 11} {
		_, err := svc.StartBooking(context.Background(), "sess-1", "evt-1", attendees)

		var validation ValidationErrors
		require.ErrorAs(t, err, &validation, "attendees=%d", attendees)
		assert.Contains(t, validation, "attendees")
	}
}

func TestStartBookingSoldOut(t *testing.T) {
	server := newEventServer(t, &models.Event{ID: "evt-1", Capacity: 10, BookedSeats: 10})
	defer server.Close()

	svc, _ := newBookingService(t, server.URL)

	_, err := svc.StartBooking(context.Background(), "sess-1", "evt-1", 1)
	assert.ErrorIs(t, err, status.ErrSoldOut)
}

func TestStartBookingCancelledEvent(t *testing.T) {
	server := newEventServer(t, &models.Event{ID: "evt-1", Capacity: 10, Cancelled: true})
	defer server.Close()

	svc, _ := newBookingService(t, server.URL)

	_, err := svc.StartBooking(context.Background(), "sess-1", "evt-1", 1)
	assert.ErrorIs(t, err, status.ErrEventCancelled)
}

func TestSubmitAttendeesValidation(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	state, err := json.Marshal(&WorkflowState{EventID: "evt-1", Attendees: 2})
	require.NoError(t, err)
	mock.ExpectGet("workflow:booking:sess-1").SetVal(string(state))

	info := []models.AttendeeInfo{
		{Name: "A", Email: "not-an-email"},
		{Name: "Valid Name", Email: "valid@example.com"},
	}

	err = svc.SubmitAttendees(context.Background(), "sess-1", "evt-1", info)

	var validation ValidationErrors
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation, "attendees.0.name")
	assert.Contains(t, validation, "attendees.0.email")
	assert.NotContains(t, validation, "attendees.1.name")
}

func TestSubmitAttendeesCountMismatch(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	state, _ := json.Marshal(&WorkflowState{EventID: "evt-1", Attendees: 3})
	mock.ExpectGet("workflow:booking:sess-1").SetVal(string(state))

	err := svc.SubmitAttendees(context.Background(), "sess-1", "evt-1", []models.AttendeeInfo{
		{Name: "Only One", Email: "one@example.com"},
	})

	var validation ValidationErrors
	require.ErrorAs(t, err, &validation)
}

func TestCheckoutWithoutPriorSteps(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	mock.ExpectGet("workflow:booking:sess-1").RedisNil()

	_, err := svc.Checkout(context.Background(), "sess-1", "evt-1")
	assert.ErrorIs(t, err, status.ErrMissingStep)
}

func TestCheckoutWithoutAttendeeInfo(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	state, _ := json.Marshal(&WorkflowState{EventID: "evt-1", Attendees: 2})
	mock.ExpectGet("workflow:booking:sess-1").SetVal(string(state))

	_, err := svc.Checkout(context.Background(), "sess-1", "evt-1")
	assert.ErrorIs(t, err, status.ErrMissingStep)
}

func TestCheckoutStaleStateForOtherEvent(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	state, _ := json.Marshal(&WorkflowState{
		EventID:      "evt-other",
		Attendees:    2,
		AttendeeInfo: []models.AttendeeInfo{{Name: "Someone", Email: "s@example.com"}},
	})
	mock.ExpectGet("workflow:booking:sess-1").SetVal(string(state))

	_, err := svc.Checkout(context.Background(), "sess-1", "evt-1")
	assert.ErrorIs(t, err, status.ErrMissingStep)
}

func TestConfirmationWithoutSnapshot(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	mock.ExpectGet("workflow:confirmation:sess-1").RedisNil()

	_, err := svc.Confirmation(context.Background(), "sess-1")
	assert.ErrorIs(t, err, status.ErrMissingStep)
}

func TestAcquireSubmitLockSingleFlight(t *testing.T) {
	svc, mock := newBookingService(t, "http://127.0.0.1:0")

	mock.ExpectSetNX("workflow:inflight:sess-1", "1", 30*time.Second).SetVal(true)
	mock.ExpectSetNX("workflow:inflight:sess-1", "1", 30*time.Second).SetVal(false)

	release, err := svc.AcquireSubmitLock(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = svc.AcquireSubmitLock(context.Background(), "sess-1")
	assert.ErrorIs(t, err, status.ErrSubmitInFlight)
}

func TestOrderSummaryScalesWithAttendees(t *testing.T) {
	for attendees := 1; attendees <= 10; attendees++ {
		summary := ComputeOrderSummary(25, attendees)

		expected := fmt.Sprintf("%.1f", float64(25*attendees)*1.1)
		assert.Equal(t, expected, summary.Total.StringFixed(1), "attendees=%d", attendees)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{"title": "too short"}

	var err error = errs
	assert.True(t, errors.As(err, &ValidationErrors{}))
	assert.Contains(t, err.Error(), "title: too short")
}
