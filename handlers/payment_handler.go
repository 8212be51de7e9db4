package handlers

import (
	"net/http"

	"booking-portal/models"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
)

type PaymentHandler struct {
	payments *services.PaymentService
	bookings *services.BookingService
}

func NewPaymentHandler(payments *services.PaymentService, bookings *services.BookingService) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		bookings: bookings,
	}
}

// CreateFPX starts the online-banking flow. The reply body is the
// bank's HTML document, served verbatim for the browser to render.
// The submit lock makes a double click harmless.
func (h *PaymentHandler) CreateFPX(c echo.Context) error {
	session := currentSession(c)
	ctx := c.Request().Context()

	release, err := h.bookings.AcquireSubmitLock(ctx, session.ID)
	if err != nil {
		return respondError(c, err)
	}
	defer release()

	req, err := h.bookings.PaymentRequest(ctx, session.ID, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	html, err := h.payments.StartFPX(ctx, session, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.HTML(http.StatusOK, html)
}

// FPXResponse is where the bank sends the browser back. It reads the
// watcher's outcome: completed goes to the confirmation, failed back
// to checkout, still-pending keeps the view polling. Entered without
// a payment in flight, it redirects home.
func (h *PaymentHandler) FPXResponse(c echo.Context) error {
	session := currentSession(c)
	record, err := h.payments.Outcome(c.Request().Context(), session.ID)
	if err != nil {
		return respondError(c, err)
	}

	switch record.Status {
	case models.PaymentCompleted:
		return c.Redirect(http.StatusFound, "/confirmation")
	case models.PaymentFailed:
		if record.EventID != "" {
			return c.Redirect(http.StatusFound, "/checkout/"+record.EventID)
		}
		return c.Redirect(http.StatusFound, "/")
	default:
		return c.JSON(http.StatusOK, map[string]any{
			"status":      models.PaymentPending,
			"retry_after": 5,
		})
	}
}

// UploadLocalOrder is the document settlement path: the purchase
// order goes up with the workflow's booking details and the
// confirmation comes back synchronously.
func (h *PaymentHandler) UploadLocalOrder(c echo.Context) error {
	session := currentSession(c)
	ctx := c.Request().Context()

	release, err := h.bookings.AcquireSubmitLock(ctx, session.ID)
	if err != nil {
		return respondError(c, err)
	}
	defer release()

	req, err := h.bookings.PaymentRequest(ctx, session.ID, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	header, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a purchase order document is required"})
	}
	document, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read the uploaded document"})
	}
	defer document.Close()

	confirmation, err := h.payments.UploadLocalOrder(ctx, session, req, header.Filename, header.Size, document)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"confirmation": confirmation,
		"next":         "/confirmation",
	})
}
