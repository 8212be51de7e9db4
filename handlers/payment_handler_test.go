package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"
	"booking-portal/services"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPaymentHandler(t *testing.T) (*PaymentHandler, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	gw := gateway.New("http://127.0.0.1:0", 2*time.Second, zap.NewNop())
	bookings := services.NewBookingService(db, gw, 10, 30*time.Minute, zap.NewNop())
	payments := services.NewPaymentService(context.Background(), db, gw, nil, bookings, time.Second, 3, zap.NewNop())
	return NewPaymentHandler(payments, bookings), mock
}

func TestFPXResponseDirectNavigationRedirectsHome(t *testing.T) {
	handler, mock := testPaymentHandler(t)

	mock.ExpectGet("payment:outcome:sess-1").RedisNil()
	mock.ExpectExists("payment:pending:sess-1").SetVal(0)

	c, rec := userContext(http.MethodGet, "/payments/fpx/response")

	require.NoError(t, handler.FPXResponse(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestFPXResponseCompletedRedirectsToConfirmation(t *testing.T) {
	handler, mock := testPaymentHandler(t)

	outcome, err := json.Marshal(&services.PaymentOutcomeRecord{
		Status:  models.PaymentCompleted,
		EventID: "evt-1",
	})
	require.NoError(t, err)
	mock.ExpectGet("payment:outcome:sess-1").SetVal(string(outcome))
	mock.ExpectDel("payment:outcome:sess-1").SetVal(1)

	c, rec := userContext(http.MethodGet, "/payments/fpx/response")

	require.NoError(t, handler.FPXResponse(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/confirmation", rec.Header().Get("Location"))
}

func TestFPXResponseFailedReturnsToCheckout(t *testing.T) {
	handler, mock := testPaymentHandler(t)

	outcome, err := json.Marshal(&services.PaymentOutcomeRecord{
		Status:  models.PaymentFailed,
		EventID: "evt-1",
	})
	require.NoError(t, err)
	mock.ExpectGet("payment:outcome:sess-1").SetVal(string(outcome))
	mock.ExpectDel("payment:outcome:sess-1").SetVal(1)

	c, rec := userContext(http.MethodGet, "/payments/fpx/response")

	require.NoError(t, handler.FPXResponse(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/checkout/evt-1", rec.Header().Get("Location"))
}

func TestFPXResponseStillPendingKeepsPolling(t *testing.T) {
	handler, mock := testPaymentHandler(t)

	mock.ExpectGet("payment:outcome:sess-1").RedisNil()
	mock.ExpectExists("payment:pending:sess-1").SetVal(1)

	c, rec := userContext(http.MethodGet, "/payments/fpx/response")

	require.NoError(t, handler.FPXResponse(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var reply map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, string(models.PaymentPending), reply["status"])
}

func TestCreateFPXWithoutWorkflowRedirectsHome(t *testing.T) {
	handler, mock := testPaymentHandler(t)

	mock.ExpectSetNX("workflow:inflight:sess-1", "1", 30*time.Second).SetVal(true)
	mock.ExpectGet("workflow:booking:sess-1").RedisNil()
	mock.ExpectDel("workflow:inflight:sess-1").SetVal(1)

	c, rec := userContext(http.MethodPost, "/payments/fpx/evt-1")

	require.NoError(t, handler.CreateFPX(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
