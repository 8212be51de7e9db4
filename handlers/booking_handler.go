package handlers

import (
	"net/http"

	"booking-portal/internal/gateway"
	"booking-portal/models"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
)

type BookingHandler struct {
	bookings *services.BookingService
	tickets  *services.TicketService
	gw       *gateway.Client
}

func NewBookingHandler(bookings *services.BookingService, tickets *services.TicketService, gw *gateway.Client) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		tickets:  tickets,
		gw:       gw,
	}
}

type startBookingRequest struct {
	Attendees int `json:"attendees" form:"attendees"`
}

// StartBooking is workflow step 1: pick the event and the seat count.
func (h *BookingHandler) StartBooking(c echo.Context) error {
	var req startBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	event, err := h.bookings.StartBooking(c.Request().Context(), session.ID, c.PathParam("id"), req.Attendees)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event":     event,
		"attendees": req.Attendees,
		"next":      "/attendees/" + event.ID,
	})
}

// AttendeeForms is the step 2 view: one input group per attendee.
// Reached without step 1 it redirects home.
func (h *BookingHandler) AttendeeForms(c echo.Context) error {
	session := currentSession(c)
	count, err := h.bookings.AttendeeCount(c.Request().Context(), session.ID, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event_id":  c.PathParam("id"),
		"attendees": count,
	})
}

type submitAttendeesRequest struct {
	AttendeeInfo []models.AttendeeInfo `json:"attendee_info"`
}

// SubmitAttendees stores the per-attendee records and advances to
// checkout.
func (h *BookingHandler) SubmitAttendees(c echo.Context) error {
	var req submitAttendeesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	eventID := c.PathParam("id")
	if err := h.bookings.SubmitAttendees(c.Request().Context(), session.ID, eventID, req.AttendeeInfo); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"next": "/checkout/" + eventID})
}

// Checkout is the step 3 review view. Its guard is the service's
// prerequisite check: no attendee records means a redirect home.
func (h *BookingHandler) Checkout(c echo.Context) error {
	session := currentSession(c)
	view, err := h.bookings.Checkout(c.Request().Context(), session.ID, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Confirmation is the step 4 view, readable only after a completed
// payment stored the snapshot.
func (h *BookingHandler) Confirmation(c echo.Context) error {
	session := currentSession(c)
	confirmation, err := h.bookings.Confirmation(c.Request().Context(), session.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, confirmation)
}

// Profile lists the user's own bookings.
func (h *BookingHandler) Profile(c echo.Context) error {
	session := currentSession(c)
	bookings, err := h.gw.UserBookings(c.Request().Context(), session.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":     session.User,
		"bookings": bookings,
	})
}

// CancelBooking cancels one of the user's bookings.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	session := currentSession(c)
	if err := h.gw.CancelBooking(c.Request().Context(), session.Token, c.PathParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "booking cancelled"})
}

// Ticket renders the scannable ticket for one of the user's bookings.
func (h *BookingHandler) Ticket(c echo.Context) error {
	session := currentSession(c)
	ticket, booking, err := h.tickets.Issue(c.Request().Context(), session.Token, session, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"booking": booking,
		"ticket":  ticket,
	})
}
