package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDayOptionsEmptyUntilBothBoundsSet(t *testing.T) {
	form := NewEventForm()
	assert.Empty(t, form.DayOptions())

	form.StartTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	assert.Empty(t, form.DayOptions())

	form.EndTime = time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)
	assert.NotEmpty(t, form.DayOptions())
}

func TestDayOptionsSpansCalendarDaysInclusive(t *testing.T) {
	form := NewEventForm()
	form.StartTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2025-02-01", "2025-02-02"}, form.DayOptions())
}

func TestDayOptionsSingleDay(t *testing.T) {
	form := NewEventForm()
	form.StartTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2025-03-10"}, form.DayOptions())
}

func TestAddActivityRequiresScheduleBounds(t *testing.T) {
	form := NewEventForm()

	err := form.AddActivity()
	assert.ErrorIs(t, err, ErrNoSchedule)
	assert.Empty(t, form.Activities)

	form.StartTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 2, 1, 17, 0, 0, 0, time.UTC)

	require.NoError(t, form.AddActivity())
	require.Len(t, form.Activities, 1)
	assert.Equal(t, "2025-02-01", form.Activities[0].Day)
}

func TestSetCategorySwitchClearsLocation(t *testing.T) {
	form := NewEventForm()
	form.Category = models.CategoryInPerson
	form.Location = "Main Hall"

	form.SetCategory(models.CategoryOnlineLive)
	assert.Empty(t, form.Location)

	form.Location = "https://meet.example.com/room"
	form.SetCategory(models.CategoryOnlineLive)
	assert.Equal(t, "https://meet.example.com/room", form.Location, "same category keeps the location")
}

func TestSyncInstructorsClearsVanishedPreset(t *testing.T) {
	form := NewEventForm()
	form.Instructor = "Jordan Lee"

	form.SyncInstructors([]models.InstructorPreset{{ID: "p1", Name: "Jordan Lee"}})
	assert.Equal(t, "Jordan Lee", form.Instructor)

	form.SyncInstructors([]models.InstructorPreset{{ID: "p2", Name: "Someone Else"}})
	assert.Empty(t, form.Instructor)
}

func TestApplyTemplatePreservesScheduleBounds(t *testing.T) {
	form := NewEventForm()
	form.StartTime = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 4, 2, 17, 0, 0, 0, time.UTC)

	form.ApplyTemplate(&models.EventTemplate{
		Name: "Workshop base",
		EventDetails: models.TemplateDetails{
			Title:    "Intro Workshop",
			Price:    120,
			Capacity: 30,
			Category: models.CategoryInPerson,
		},
	})

	assert.Equal(t, "Intro Workshop", form.Title)
	assert.Equal(t, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), form.StartTime)
	assert.Equal(t, time.Date(2025, 4, 2, 17, 0, 0, 0, time.UTC), form.EndTime)
}

func TestTemplateSnapshotPadsActivityTimes(t *testing.T) {
	form := NewEventForm()
	form.Activities = []models.EventActivity{
		{Title: "Welcome", Day: "2025-02-01", StartTime: "9:00", EndTime: "9:45"},
		{Title: "Session", Day: "2025-02-01", StartTime: "10:00", EndTime: "12:00"},
	}

	snapshot := form.TemplateSnapshot()

	assert.Equal(t, "09:00", snapshot.Activities[0].StartTime)
	assert.Equal(t, "09:45", snapshot.Activities[0].EndTime)
	assert.Equal(t, "10:00", snapshot.Activities[1].StartTime)
	// Source form is untouched.
	assert.Equal(t, "9:00", form.Activities[0].StartTime)
}

func validForm() *EventForm {
	form := NewEventForm()
	form.Title = "Go Workshop"
	form.Description = "Two days of hands-on sessions."
	form.Location = "Main Hall"
	form.Price = 150
	form.Capacity = 25
	form.StartTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 2, 2, 17, 0, 0, 0, time.UTC)
	form.Instructor = "Jordan Lee"
	form.Category = models.CategoryInPerson
	return form
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	assert.Empty(t, validForm().Validate())
}

func TestValidateEndBeforeStartBlocks(t *testing.T) {
	form := validForm()
	form.StartTime = time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)
	form.EndTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	errs := form.Validate()
	assert.Contains(t, errs, "end_time")
}

func TestValidateFieldRules(t *testing.T) {
	form := validForm()
	form.Title = "Go"
	form.Description = "short"
	form.Price = 0
	form.Capacity = 0
	form.Location = ""
	form.Instructor = ""
	form.Category = "hybrid"

	errs := form.Validate()
	for _, field := range []string{"title", "description", "price", "capacity", "location", "instructor", "category"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateIncompleteActivityRow(t *testing.T) {
	form := validForm()
	form.Activities = []models.EventActivity{{Title: "Welcome", Day: "2025-02-01", StartTime: "09:00"}}

	errs := form.Validate()
	assert.Contains(t, errs, "activities.0.schedule")
}

func TestSaveAsTemplateShortNameNeverCallsPlatform(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewAuthoringService(gateway.New(server.URL, 5*time.Second, zap.NewNop()), zap.NewNop())

	_, err := svc.SaveAsTemplate(context.Background(), "token", "ab", validForm())

	var validation ValidationErrors
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation, "name")
	assert.Zero(t, calls.Load(), "no request should leave the process")
}

func TestCancelEventRequiresRealReason(t *testing.T) {
	svc := NewAuthoringService(gateway.New("http://127.0.0.1:0", time.Second, zap.NewNop()), zap.NewNop())

	err := svc.CancelEvent(context.Background(), "token", "evt-1", "too short")

	var validation ValidationErrors
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation, "reason")
}
