package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"
	"booking-portal/services"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBookingHandler(t *testing.T, baseURL string) (*BookingHandler, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	gw := gateway.New(baseURL, 2*time.Second, zap.NewNop())
	bookings := services.NewBookingService(db, gw, 10, 30*time.Minute, zap.NewNop())
	tickets := services.NewTicketService(gw, zap.NewNop())
	return NewBookingHandler(bookings, tickets, gw), mock
}

func userContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, &services.Session{
		ID:    "sess-1",
		Token: "token",
		User:  models.User{ID: "u1", Role: models.RoleUser},
	})
	return c, rec
}

func TestCheckoutDirectNavigationRedirectsHome(t *testing.T) {
	handler, mock := testBookingHandler(t, "http://127.0.0.1:0")

	mock.ExpectGet("workflow:booking:sess-1").RedisNil()

	c, rec := userContext(http.MethodGet, "/checkout/evt-1")

	require.NoError(t, handler.Checkout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestConfirmationDirectNavigationRedirectsHome(t *testing.T) {
	handler, mock := testBookingHandler(t, "http://127.0.0.1:0")

	mock.ExpectGet("workflow:confirmation:sess-1").RedisNil()

	c, rec := userContext(http.MethodGet, "/confirmation")

	require.NoError(t, handler.Confirmation(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestConfirmationRendersStoredSnapshot(t *testing.T) {
	handler, mock := testBookingHandler(t, "http://127.0.0.1:0")

	snapshot, err := json.Marshal(&services.Confirmation{
		Booking: &models.Booking{ID: "bk-1", EventID: "evt-1"},
		Event:   &models.Event{ID: "evt-1", Title: "Go Workshop"},
	})
	require.NoError(t, err)
	mock.ExpectGet("workflow:confirmation:sess-1").SetVal(string(snapshot))

	c, rec := userContext(http.MethodGet, "/confirmation")

	require.NoError(t, handler.Confirmation(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var reply services.Confirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "bk-1", reply.Booking.ID)
	assert.Equal(t, "Go Workshop", reply.Event.Title)
}
