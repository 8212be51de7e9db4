package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// ErrNoSchedule is returned when an activity is added before both
// schedule bounds are set; there are no days to attach it to yet.
var ErrNoSchedule = errors.New("set the event start and end before adding activities")

// EventForm is the authoring draft. It holds everything the create and
// edit views collect, plus the preset lists the selectors render from,
// and enforces the cross-field rules as fields change.
type EventForm struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Location    string
	Price       float64
	Capacity    int
	StartTime   time.Time
	EndTime     time.Time
	Instructor  string
	Category    models.Category

	Requirements []models.EventRequirement
	Activities   []models.EventActivity

	Locations   []models.LocationPreset
	Instructors []models.InstructorPreset
}

// NewEventForm starts a blank draft.
func NewEventForm() *EventForm {
	return &EventForm{
		Requirements: []models.EventRequirement{},
		Activities:   []models.EventActivity{},
	}
}

// FormFromEvent seeds the draft from an existing event for editing.
func FormFromEvent(event *models.Event) *EventForm {
	form := NewEventForm()
	form.ID = event.ID
	form.Title = event.Title
	form.Description = event.Description
	form.ImageURL = event.ImageURL
	form.Location = event.Location
	form.Price = event.Price
	form.Capacity = event.Capacity
	form.StartTime = event.StartTime
	form.EndTime = event.EndTime
	form.Instructor = event.Instructor
	form.Category = event.Category
	form.Requirements = append(form.Requirements, event.Requirements...)
	form.Activities = append(form.Activities, event.Activities...)
	return form
}

// SetCategory switches the delivery format. The location field means
// something different per category (venue vs meeting link), so a
// switch clears it rather than carrying a value of the wrong kind.
func (f *EventForm) SetCategory(category models.Category) {
	if category == f.Category {
		return
	}
	f.Category = category
	f.Location = ""
}

// SyncInstructors replaces the preset list and clears the selected
// instructor when its preset no longer exists. Admins can delete
// presets from settings while a draft is open.
func (f *EventForm) SyncInstructors(presets []models.InstructorPreset) {
	f.Instructors = presets
	if f.Instructor == "" {
		return
	}
	for _, preset := range presets {
		if preset.Name == f.Instructor {
			return
		}
	}
	f.Instructor = ""
}

// DayOptions enumerates the calendar days an activity can be placed
// on: every day from the schedule start through the end, inclusive.
// Empty until both bounds are set.
func (f *EventForm) DayOptions() []string {
	if f.StartTime.IsZero() || f.EndTime.IsZero() {
		return nil
	}

	first := dateOf(f.StartTime)
	last := dateOf(f.EndTime)

	var days []string
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(dayLayout))
	}
	return days
}

func dateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// AddActivity appends a blank agenda row placed on the first available
// day. It fails while the schedule bounds are unset.
func (f *EventForm) AddActivity() error {
	days := f.DayOptions()
	if len(days) == 0 {
		return ErrNoSchedule
	}
	f.Activities = append(f.Activities, models.EventActivity{Day: days[0]})
	return nil
}

func (f *EventForm) RemoveActivity(index int) {
	if index < 0 || index >= len(f.Activities) {
		return
	}
	f.Activities = append(f.Activities[:index], f.Activities[index+1:]...)
}

func (f *EventForm) AddRequirement() {
	f.Requirements = append(f.Requirements, models.EventRequirement{Type: models.RequirementRequired})
}

func (f *EventForm) RemoveRequirement(index int) {
	if index < 0 || index >= len(f.Requirements) {
		return
	}
	f.Requirements = append(f.Requirements[:index], f.Requirements[index+1:]...)
}

// ApplyTemplate overwrites the draft's detail fields with a saved
// snapshot. The schedule bounds are the one thing a template never
// carries, so they are preserved.
func (f *EventForm) ApplyTemplate(template *models.EventTemplate) {
	details := template.EventDetails
	f.Title = details.Title
	f.Description = details.Description
	f.ImageURL = details.ImageURL
	f.Location = details.Location
	f.Price = details.Price
	f.Capacity = details.Capacity
	f.Instructor = details.Instructor
	f.Category = details.Category
	f.Requirements = append([]models.EventRequirement{}, details.Requirements...)
	f.Activities = append([]models.EventActivity{}, details.Activities...)
}

// TemplateSnapshot captures the reusable detail fields for saving as a
// template. Activity times are normalized to zero-padded HH:MM so the
// snapshot round-trips cleanly.
func (f *EventForm) TemplateSnapshot() *models.TemplateDetails {
	activities := make([]models.EventActivity, len(f.Activities))
	for i, activity := range f.Activities {
		activity.StartTime = padTime(activity.StartTime)
		activity.EndTime = padTime(activity.EndTime)
		activities[i] = activity
	}

	return &models.TemplateDetails{
		Title:        f.Title,
		Description:  f.Description,
		ImageURL:     f.ImageURL,
		Location:     f.Location,
		Price:        f.Price,
		Capacity:     f.Capacity,
		Instructor:   f.Instructor,
		Category:     f.Category,
		Requirements: append([]models.EventRequirement{}, f.Requirements...),
		Activities:   activities,
	}
}

// padTime left-pads a clock value like "9:00" to "09:00". Values that
// are already five characters, or not of the H:MM shape, pass through.
func padTime(clock string) string {
	if len(clock) == 4 && strings.Count(clock, ":") == 1 {
		return "0" + clock
	}
	return clock
}

// Validate applies the publish rules. All failures are reported at
// once so the admin fixes the draft in one pass.
func (f *EventForm) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if len(strings.TrimSpace(f.Title)) < 3 {
		errs["title"] = "title must be at least 3 characters"
	}
	if len(strings.TrimSpace(f.Description)) < 10 {
		errs["description"] = "description must be at least 10 characters"
	}
	if f.Price <= 0 {
		errs["price"] = "price must be greater than zero"
	}
	if f.Capacity < 1 {
		errs["capacity"] = "capacity must be at least 1"
	}
	if strings.TrimSpace(f.Location) == "" {
		errs["location"] = "location is required"
	}
	if strings.TrimSpace(f.Instructor) == "" {
		errs["instructor"] = "instructor is required"
	}
	if !f.Category.Valid() {
		errs["category"] = "category is required"
	}
	if f.StartTime.IsZero() {
		errs["start_time"] = "start time is required"
	}
	if f.EndTime.IsZero() {
		errs["end_time"] = "end time is required"
	}
	if !f.StartTime.IsZero() && !f.EndTime.IsZero() && !f.EndTime.After(f.StartTime) {
		errs["end_time"] = "end time must be after the start time"
	}

	for i, req := range f.Requirements {
		if strings.TrimSpace(req.Description) == "" {
			errs[fmt.Sprintf("requirements.%d", i)] = "requirement description is required"
		}
	}
	for i, activity := range f.Activities {
		if strings.TrimSpace(activity.Title) == "" {
			errs[fmt.Sprintf("activities.%d.title", i)] = "activity title is required"
		}
		if activity.Day == "" || activity.StartTime == "" || activity.EndTime == "" {
			errs[fmt.Sprintf("activities.%d.schedule", i)] = "activity day and times are required"
		}
	}

	return errs
}

// Preview assembles the event exactly as publishing would, for the
// admin-facing preview pane.
func (f *EventForm) Preview() *models.Event {
	return &models.Event{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		ImageURL:     f.ImageURL,
		Location:     f.Location,
		Price:        f.Price,
		Capacity:     f.Capacity,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Instructor:   f.Instructor,
		Category:     f.Category,
		Requirements: f.Requirements,
		Activities:   f.Activities,
	}
}

// AuthoringService drives the admin event lifecycle: drafting,
// publishing, templates and cancellation.
type AuthoringService struct {
	gw  *gateway.Client
	log *zap.Logger
}

func NewAuthoringService(gw *gateway.Client, log *zap.Logger) *AuthoringService {
	return &AuthoringService{gw: gw, log: log}
}

// LoadForm opens an edit draft for an existing event with the current
// preset lists attached.
func (s *AuthoringService) LoadForm(ctx context.Context, token, eventID string) (*EventForm, error) {
	event, err := s.gw.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("LoadForm: %w", err)
	}
	form := FormFromEvent(event)
	if err := s.attachPresets(ctx, token, form); err != nil {
		return nil, fmt.Errorf("LoadForm: %w", err)
	}
	return form, nil
}

// NewForm opens a blank draft with the current preset lists attached.
func (s *AuthoringService) NewForm(ctx context.Context, token string) (*EventForm, error) {
	form := NewEventForm()
	if err := s.attachPresets(ctx, token, form); err != nil {
		return nil, fmt.Errorf("NewForm: %w", err)
	}
	return form, nil
}

func (s *AuthoringService) attachPresets(ctx context.Context, token string, form *EventForm) error {
	locations, err := s.gw.ListLocationPresets(ctx, token)
	if err != nil {
		return fmt.Errorf("attachPresets: %w", err)
	}
	instructors, err := s.gw.ListInstructorPresets(ctx, token)
	if err != nil {
		return fmt.Errorf("attachPresets: %w", err)
	}
	form.Locations = locations
	form.SyncInstructors(instructors)
	return nil
}

// Submit publishes the draft: create when it has no ID, update when it
// does. Validation failures block the call entirely.
func (s *AuthoringService) Submit(ctx context.Context, token string, form *EventForm) (*models.Event, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs
	}

	draft := form.Preview()
	var (
		event *models.Event
		err   error
	)
	if form.ID == "" {
		event, err = s.gw.CreateEvent(ctx, token, draft)
	} else {
		event, err = s.gw.UpdateEvent(ctx, token, form.ID, draft)
	}
	if err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	s.log.Info("event published",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title),
	)
	return event, nil
}

// SaveAsTemplate stores the draft's detail fields under a name. The
// name rule is checked before anything leaves the process.
func (s *AuthoringService) SaveAsTemplate(ctx context.Context, token, name string, form *EventForm) (*models.EventTemplate, error) {
	if len(strings.TrimSpace(name)) < 3 {
		return nil, ValidationErrors{"name": "template name must be at least 3 characters"}
	}

	template, err := s.gw.SaveTemplate(ctx, token, strings.TrimSpace(name), form.TemplateSnapshot())
	if err != nil {
		return nil, fmt.Errorf("SaveAsTemplate: %w", err)
	}
	return template, nil
}

// CancelEvent cancels a published event. The platform notifies booked
// attendees; the portal only enforces that a real reason is given.
func (s *AuthoringService) CancelEvent(ctx context.Context, token, eventID, reason string) error {
	if len(strings.TrimSpace(reason)) < 10 {
		return ValidationErrors{"reason": "cancellation reason must be at least 10 characters"}
	}
	if err := s.gw.CancelEvent(ctx, token, eventID, strings.TrimSpace(reason)); err != nil {
		return fmt.Errorf("CancelEvent: %w", err)
	}
	return nil
}
