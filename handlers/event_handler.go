package handlers

import (
	"net/http"
	"strconv"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"
	"booking-portal/services"
	"booking-portal/utils"

	"github.com/labstack/echo/v5"
)

type EventHandler struct {
	gw *gateway.Client
}

func NewEventHandler(gw *gateway.Client) *EventHandler {
	return &EventHandler{gw: gw}
}

// Home is the public landing view: upcoming events only, cancelled
// ones excluded.
func (h *EventHandler) Home(c echo.Context) error {
	events, err := h.gw.ListEvents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	upcoming := make([]models.Event, 0, len(events))
	for _, event := range events {
		if event.Cancelled || event.EndTime.Before(now) {
			continue
		}
		upcoming = append(upcoming, event)
	}

	return c.JSON(http.StatusOK, map[string]any{"events": upcoming})
}

func (h *EventHandler) EventDetail(c echo.Context) error {
	event, err := h.gw.GetEvent(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event":            event,
		"available_spaces": event.AvailableSpaces(),
		"sold_out":         event.SoldOut(),
	})
}

// Quotation renders a printable price quote for an event: a generated
// reference code plus the order summary for the requested seat count.
func (h *EventHandler) Quotation(c echo.Context) error {
	event, err := h.gw.GetEvent(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	attendees, err := strconv.Atoi(c.QueryParam("attendees"))
	if err != nil || attendees < 1 {
		attendees = 1
	}

	reference, err := utils.GenerateCode(4)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"reference": "QT-" + reference,
		"event":     event,
		"attendees": attendees,
		"summary":   services.ComputeOrderSummary(event.Price, attendees),
		"issued_at": time.Now().UTC().Format(time.RFC3339),
	})
}
