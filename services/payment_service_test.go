package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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

func newPaymentService(t *testing.T, baseURL string, pollInterval time.Duration) (*PaymentService, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	gw := gateway.New(baseURL, 2*time.Second, zap.NewNop())
	bookings := NewBookingService(db, gw, 10, 30*time.Minute, zap.NewNop())
	svc := NewPaymentService(context.Background(), db, gw, nil, bookings, pollInterval, 3, zap.NewNop())
	return svc, mock
}

func TestOutcomeWithoutPaymentInFlight(t *testing.T) {
	svc, mock := newPaymentService(t, "http://127.0.0.1:0", time.Second)

	mock.ExpectGet("payment:outcome:sess-1").RedisNil()
	mock.ExpectExists("payment:pending:sess-1").SetVal(0)

	_, err := svc.Outcome(context.Background(), "sess-1")
	assert.ErrorIs(t, err, status.ErrNotPaying)
}

func TestOutcomeStillPending(t *testing.T) {
	svc, mock := newPaymentService(t, "http://127.0.0.1:0", time.Second)

	mock.ExpectGet("payment:outcome:sess-1").RedisNil()
	mock.ExpectExists("payment:pending:sess-1").SetVal(1)

	record, err := svc.Outcome(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, record.Status)
}

func TestOutcomeConsumedOnRead(t *testing.T) {
	svc, mock := newPaymentService(t, "http://127.0.0.1:0", time.Second)

	stored, err := json.Marshal(&PaymentOutcomeRecord{Status: models.PaymentFailed, EventID: "evt-1"})
	require.NoError(t, err)
	mock.ExpectGet("payment:outcome:sess-1").SetVal(string(stored))
	mock.ExpectDel("payment:outcome:sess-1").SetVal(1)

	record, err := svc.Outcome(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, record.Status)
	assert.Equal(t, "evt-1", record.EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchAbandonsAfterConsecutiveErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, mock := newPaymentService(t, server.URL, 5*time.Millisecond)

	outcome, err := json.Marshal(&PaymentOutcomeRecord{
		Status:  models.PaymentFailed,
		EventID: "evt-1",
		Reason:  status.ErrPollExhausted.Error(),
	})
	require.NoError(t, err)
	mock.ExpectSet("payment:outcome:sess-1", outcome, 15*time.Minute).SetVal("OK")
	mock.ExpectDel("payment:pending:sess-1").SetVal(1)
	mock.ExpectSRem("payments:pending", "sess-1").SetVal(1)

	svc.watch(&models.PendingPayment{SessionID: "sess-1", EventID: "evt-1", Token: "tok"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchCompletedStoresConfirmation(t *testing.T) {
	state := &models.PaymentState{
		Status:  models.PaymentCompleted,
		EventID: "evt-1",
		Booking: &models.Booking{ID: "bk-1", EventID: "evt-1"},
		Event:   &models.Event{ID: "evt-1", Title: "Go Workshop"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	}))
	defer server.Close()

	svc, mock := newPaymentService(t, server.URL, 5*time.Millisecond)

	confirmation, err := json.Marshal(&Confirmation{Booking: state.Booking, Event: state.Event})
	require.NoError(t, err)
	mock.ExpectSet("workflow:confirmation:sess-1", confirmation, 30*time.Minute).SetVal("OK")
	mock.ExpectDel("workflow:booking:sess-1").SetVal(1)

	outcome, err := json.Marshal(&PaymentOutcomeRecord{Status: models.PaymentCompleted, EventID: "evt-1"})
	require.NoError(t, err)
	mock.ExpectSet("payment:outcome:sess-1", outcome, 15*time.Minute).SetVal("OK")
	mock.ExpectDel("payment:pending:sess-1").SetVal(1)
	mock.ExpectSRem("payments:pending", "sess-1").SetVal(1)

	svc.watch(&models.PendingPayment{SessionID: "sess-1", EventID: "evt-1", Token: "tok"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateLocalOrder(t *testing.T) {
	assert.Empty(t, validateLocalOrder("order.pdf", 1024))
	assert.Empty(t, validateLocalOrder("ORDER.DOCX", 1024))

	assert.Contains(t, validateLocalOrder("order.exe", 1024), "document")
	assert.Contains(t, validateLocalOrder("order.pdf", MaxLocalOrderSize+1), "document")
}

func TestUploadLocalOrderRejectsBadDocumentWithoutUpload(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	svc, _ := newPaymentService(t, server.URL, time.Second)

	session := &Session{ID: "sess-1", Token: "tok", User: models.User{ID: "u1"}}
	req := &gateway.FPXPaymentRequest{EventID: "evt-1", Attendees: 1}

	_, err := svc.UploadLocalOrder(context.Background(), session, req, "order.txt", 10, strings.NewReader("x"))

	var validation ValidationErrors
	require.ErrorAs(t, err, &validation)
	assert.Zero(t, requests)
}
