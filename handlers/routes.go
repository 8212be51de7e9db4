package handlers

import (
	"net/http"

	"booking-portal/security"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"go.uber.org/zap"
)

// Router wires the portal's route surface onto an echo instance.
type Router struct {
	Auth     *AuthHandler
	Events   *EventHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Admin    *AdminHandler

	Sessions   *services.SessionService
	Limiter    *security.RateLimiter
	CookieName string
	Log        *zap.Logger
}

func (r *Router) Register(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(SessionMiddleware(r.Sessions, r.CookieName, r.Log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public views.
	e.GET("/", r.Events.Home)
	e.GET("/events/:id", r.Events.EventDetail)
	e.GET("/quotation/:id", r.Events.Quotation)

	e.POST("/login", r.Auth.Login, r.Limiter.AuthRateLimit())
	e.POST("/register", r.Auth.Register, r.Limiter.AuthRateLimit())
	e.POST("/logout", r.Auth.Logout)
	e.GET("/me", r.Auth.Me)

	// The booking workflow, step by step.
	booking := e.Group("", RequireAuth)
	booking.POST("/events/:id/book", r.Bookings.StartBooking)
	booking.GET("/attendees/:id", r.Bookings.AttendeeForms)
	booking.POST("/attendees/:id", r.Bookings.SubmitAttendees)
	booking.GET("/checkout/:id", r.Bookings.Checkout)
	booking.GET("/confirmation", r.Bookings.Confirmation)
	booking.GET("/profile", r.Bookings.Profile)
	booking.POST("/bookings/:id/cancel", r.Bookings.CancelBooking)
	booking.GET("/tickets/:id", r.Bookings.Ticket)

	booking.POST("/payments/fpx/:id", r.Payments.CreateFPX, r.Limiter.PaymentRateLimit())
	booking.GET("/payments/fpx/response", r.Payments.FPXResponse)
	booking.POST("/payments/local-order/:id", r.Payments.UploadLocalOrder, r.Limiter.PaymentRateLimit())

	// Admin surface.
	admin := e.Group("/admin", RequireAdmin)
	admin.GET("/dashboard", r.Admin.Dashboard)
	admin.GET("/analytics", r.Admin.Analytics)
	admin.GET("/events/past", r.Admin.PastEvents)

	admin.GET("/settings", r.Admin.Settings)
	admin.POST("/settings/locations", r.Admin.AddLocationPreset)
	admin.DELETE("/settings/locations/:id", r.Admin.DeleteLocationPreset)
	admin.POST("/settings/instructors", r.Admin.AddInstructorPreset)
	admin.DELETE("/settings/instructors/:id", r.Admin.DeleteInstructorPreset)

	admin.GET("/events/new", r.Admin.NewEventForm)
	admin.POST("/events", r.Admin.CreateEvent)
	admin.GET("/events/:id/edit", r.Admin.EditEventForm)
	admin.PUT("/events/:id", r.Admin.UpdateEvent)
	admin.POST("/events/:id/cancel", r.Admin.CancelEvent)
	admin.GET("/events/:id/roster", r.Admin.Roster)

	admin.GET("/templates", r.Admin.ListTemplates)
	admin.GET("/templates/:id", r.Admin.GetTemplate)
	admin.POST("/templates", r.Admin.SaveTemplate)
	admin.DELETE("/templates/:id", r.Admin.DeleteTemplate)

	admin.POST("/checkin", r.Admin.ScanTicket)
	admin.POST("/bookings/:id/attendance", r.Admin.ToggleAttendance)

	// Anything unmatched is a JSON 404.
	e.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	})
}
