package handlers

import (
	"net/http"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
)

type AdminHandler struct {
	authoring *services.AuthoringService
	tickets   *services.TicketService
	gw        *gateway.Client
}

func NewAdminHandler(authoring *services.AuthoringService, tickets *services.TicketService, gw *gateway.Client) *AdminHandler {
	return &AdminHandler{
		authoring: authoring,
		tickets:   tickets,
		gw:        gw,
	}
}

// Dashboard is the admin landing view: every event with its fill rate
// plus the most recent bookings.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	session := currentSession(c)
	ctx := c.Request().Context()

	events, err := h.gw.ListEvents(ctx)
	if err != nil {
		return respondError(c, err)
	}
	bookings, err := h.gw.ListBookings(ctx, session.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"events":   events,
		"bookings": bookings,
	})
}

func (h *AdminHandler) Analytics(c echo.Context) error {
	session := currentSession(c)
	ctx := c.Request().Context()

	events, err := h.gw.ListEvents(ctx)
	if err != nil {
		return respondError(c, err)
	}
	bookings, err := h.gw.ListBookings(ctx, session.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, services.ComputeAnalytics(events, bookings))
}

// PastEvents lists events whose schedule has ended, for record keeping
// and attendance review.
func (h *AdminHandler) PastEvents(c echo.Context) error {
	events, err := h.gw.ListEvents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	past := make([]models.Event, 0)
	for _, event := range events {
		if !event.EndTime.IsZero() && event.EndTime.Before(now) {
			past = append(past, event)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"events": past})
}

// Settings returns both preset lists for the settings view.
func (h *AdminHandler) Settings(c echo.Context) error {
	session := currentSession(c)
	ctx := c.Request().Context()

	locations, err := h.gw.ListLocationPresets(ctx, session.Token)
	if err != nil {
		return respondError(c, err)
	}
	instructors, err := h.gw.ListInstructorPresets(ctx, session.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"locations":   locations,
		"instructors": instructors,
	})
}

type locationPresetRequest struct {
	Name   string `json:"name" form:"name"`
	MapURL string `json:"map_url" form:"map_url"`
}

func (h *AdminHandler) AddLocationPreset(c echo.Context) error {
	var req locationPresetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	preset, err := h.gw.AddLocationPreset(c.Request().Context(), session.Token, req.Name, req.MapURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, preset)
}

func (h *AdminHandler) DeleteLocationPreset(c echo.Context) error {
	session := currentSession(c)
	if err := h.gw.DeleteLocationPreset(c.Request().Context(), session.Token, c.PathParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type instructorPresetRequest struct {
	Name       string `json:"name" form:"name"`
	ProfileURL string `json:"profile_url" form:"profile_url"`
}

func (h *AdminHandler) AddInstructorPreset(c echo.Context) error {
	var req instructorPresetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	preset, err := h.gw.AddInstructorPreset(c.Request().Context(), session.Token, req.Name, req.ProfileURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, preset)
}

func (h *AdminHandler) DeleteInstructorPreset(c echo.Context) error {
	session := currentSession(c)
	if err := h.gw.DeleteInstructorPreset(c.Request().Context(), session.Token, c.PathParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// NewEventForm opens a blank authoring draft with the preset lists
// attached, so the create view can render its selectors.
func (h *AdminHandler) NewEventForm(c echo.Context) error {
	session := currentSession(c)
	form, err := h.authoring.NewForm(c.Request().Context(), session.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

// EditEventForm opens the draft for an existing event.
func (h *AdminHandler) EditEventForm(c echo.Context) error {
	session := currentSession(c)
	form, err := h.authoring.LoadForm(c.Request().Context(), session.Token, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

func formView(form *services.EventForm) map[string]any {
	return map[string]any{
		"event":       form.Preview(),
		"locations":   form.Locations,
		"instructors": form.Instructors,
		"day_options": form.DayOptions(),
	}
}

type eventFormRequest struct {
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	ImageURL     string                    `json:"image_url"`
	Location     string                    `json:"location"`
	Price        float64                   `json:"price"`
	Capacity     int                       `json:"capacity"`
	StartTime    time.Time                 `json:"start_time"`
	EndTime      time.Time                 `json:"end_time"`
	Instructor   string                    `json:"instructor"`
	Category     models.Category           `json:"category"`
	Requirements []models.EventRequirement `json:"requirements"`
	Activities   []models.EventActivity    `json:"activities"`
}

func (h *AdminHandler) bindForm(c echo.Context, eventID string) (*services.EventForm, error) {
	var req eventFormRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}

	form := services.NewEventForm()
	form.ID = eventID
	form.Title = req.Title
	form.Description = req.Description
	form.ImageURL = req.ImageURL
	form.Location = req.Location
	form.Price = req.Price
	form.Capacity = req.Capacity
	form.StartTime = req.StartTime
	form.EndTime = req.EndTime
	form.Instructor = req.Instructor
	form.Category = req.Category
	form.Requirements = append(form.Requirements, req.Requirements...)
	form.Activities = append(form.Activities, req.Activities...)

	session := currentSession(c)
	instructors, err := h.gw.ListInstructorPresets(c.Request().Context(), session.Token)
	if err != nil {
		return nil, err
	}
	form.SyncInstructors(instructors)
	return form, nil
}

// CreateEvent publishes a new event from the submitted draft.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	form, err := h.bindForm(c, "")
	if err != nil {
		return respondError(c, err)
	}

	session := currentSession(c)
	event, err := h.authoring.Submit(c.Request().Context(), session.Token, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent republishes an existing event from the submitted draft.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	form, err := h.bindForm(c, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	session := currentSession(c)
	event, err := h.authoring.Submit(c.Request().Context(), session.Token, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

type cancelEventRequest struct {
	Reason string `json:"reason" form:"reason"`
}

func (h *AdminHandler) CancelEvent(c echo.Context) error {
	var req cancelEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	if err := h.authoring.CancelEvent(c.Request().Context(), session.Token, c.PathParam("id"), req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "event cancelled"})
}

func (h *AdminHandler) ListTemplates(c echo.Context) error {
	session := currentSession(c)
	templates, err := h.gw.ListTemplates(c.Request().Context(), session.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"templates": templates})
}

func (h *AdminHandler) GetTemplate(c echo.Context) error {
	session := currentSession(c)
	template, err := h.gw.GetTemplate(c.Request().Context(), session.Token, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

type saveTemplateRequest struct {
	Name string `json:"name"`
	eventFormRequest
}

// SaveTemplate snapshots the submitted draft under a name. The name
// check happens before the draft details are looked at.
func (h *AdminHandler) SaveTemplate(c echo.Context) error {
	var req saveTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	form := services.NewEventForm()
	form.Title = req.Title
	form.Description = req.Description
	form.ImageURL = req.ImageURL
	form.Location = req.Location
	form.Price = req.Price
	form.Capacity = req.Capacity
	form.Instructor = req.Instructor
	form.Category = req.Category
	form.Requirements = append(form.Requirements, req.Requirements...)
	form.Activities = append(form.Activities, req.Activities...)

	session := currentSession(c)
	template, err := h.authoring.SaveAsTemplate(c.Request().Context(), session.Token, req.Name, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, template)
}

func (h *AdminHandler) DeleteTemplate(c echo.Context) error {
	session := currentSession(c)
	if err := h.gw.DeleteTemplate(c.Request().Context(), session.Token, c.PathParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type scanRequest struct {
	Payload string `json:"payload" form:"payload"`
}

// ScanTicket resolves a scanned ticket payload to its booking for the
// check-in desk.
func (h *AdminHandler) ScanTicket(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	booking, err := h.tickets.CheckIn(c.Request().Context(), session.Token, req.Payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"booking": booking})
}

type attendanceRequest struct {
	AttendeeIndex int `json:"attendee_index" form:"attendee_index"`
}

// ToggleAttendance flips one attendee's attended flag on a booking.
func (h *AdminHandler) ToggleAttendance(c echo.Context) error {
	var req attendanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session := currentSession(c)
	ctx := c.Request().Context()

	booking, err := h.gw.GetBooking(ctx, session.Token, c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.tickets.ToggleAttendance(ctx, session.Token, booking, req.AttendeeIndex)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"booking": updated})
}

// Roster lists an event's bookings, filtered by the q query across
// booking ID, attendee name, email and phone.
func (h *AdminHandler) Roster(c echo.Context) error {
	session := currentSession(c)
	bookings, err := h.gw.ListBookings(c.Request().Context(), session.Token)
	if err != nil {
		return respondError(c, err)
	}

	eventID := c.PathParam("id")
	scoped := make([]models.Booking, 0)
	for _, booking := range bookings {
		if booking.EventID == eventID {
			scoped = append(scoped, booking)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"bookings": services.SearchRoster(scoped, c.QueryParam("q")),
	})
}
