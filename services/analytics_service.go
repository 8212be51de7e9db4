package services

import (
	"sort"

	"booking-portal/models"

	"github.com/shopspring/decimal"
)

// RevenuePoint is one month's confirmed revenue.
type RevenuePoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
}

// EventAttendance is the seats-sold figure for one event.
type EventAttendance struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Attendees int    `json:"attendees"`
	Capacity  int    `json:"capacity"`
}

// Analytics is the admin dashboard's aggregate view, derived entirely
// from the platform's event and booking lists.
type Analytics struct {
	TotalRevenue       decimal.Decimal            `json:"total_revenue"`
	TotalBookings      int                        `json:"total_bookings"`
	RevenueByMonth     []RevenuePoint             `json:"revenue_by_month"`
	AttendeesByEvent   []EventAttendance          `json:"attendees_by_event"`
	EventsByCategory   map[models.Category]int    `json:"events_by_category"`
	EventsByInstructor map[string]int             `json:"events_by_instructor"`
	BookingsByStatus   map[models.BookingStatus]int `json:"bookings_by_status"`
}

// ComputeAnalytics folds the raw lists into dashboard aggregates.
// Cancelled bookings contribute to status counts only; revenue counts
// confirmed bookings.
func ComputeAnalytics(events []models.Event, bookings []models.Booking) *Analytics {
	analytics := &Analytics{
		TotalRevenue:       decimal.Zero,
		TotalBookings:      len(bookings),
		EventsByCategory:   map[models.Category]int{},
		EventsByInstructor: map[string]int{},
		BookingsByStatus:   map[models.BookingStatus]int{},
	}

	eventsByID := make(map[string]*models.Event, len(events))
	for i := range events {
		event := &events[i]
		eventsByID[event.ID] = event
		analytics.EventsByCategory[event.Category]++
		if event.Instructor != "" {
			analytics.EventsByInstructor[event.Instructor]++
		}
	}

	attendance := map[string]int{}
	revenueByMonth := map[string]decimal.Decimal{}

	for _, booking := range bookings {
		analytics.BookingsByStatus[booking.Status]++
		if booking.Status != models.BookingConfirmed {
			continue
		}

		attendance[booking.EventID] += booking.Attendees

		amount := bookingRevenue(&booking, eventsByID[booking.EventID])
		analytics.TotalRevenue = analytics.TotalRevenue.Add(amount)

		month := booking.CreatedAt.UTC().Format("2006-01")
		revenueByMonth[month] = revenueByMonth[month].Add(amount)
	}

	for month, revenue := range revenueByMonth {
		analytics.RevenueByMonth = append(analytics.RevenueByMonth, RevenuePoint{Month: month, Revenue: revenue})
	}
	sort.Slice(analytics.RevenueByMonth, func(i, j int) bool {
		return analytics.RevenueByMonth[i].Month < analytics.RevenueByMonth[j].Month
	})

	for _, event := range events {
		analytics.AttendeesByEvent = append(analytics.AttendeesByEvent, EventAttendance{
			EventID:   event.ID,
			Title:     event.Title,
			Attendees: attendance[event.ID],
			Capacity:  event.Capacity,
		})
	}
	sort.Slice(analytics.AttendeesByEvent, func(i, j int) bool {
		return analytics.AttendeesByEvent[i].Attendees > analytics.AttendeesByEvent[j].Attendees
	})

	return analytics
}

// bookingRevenue prefers the booking's recorded total; older records
// without one fall back to price times seats.
func bookingRevenue(booking *models.Booking, event *models.Event) decimal.Decimal {
	if booking.TotalAmount > 0 {
		return decimal.NewFromFloat(booking.TotalAmount).Round(2)
	}
	if event == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(event.Price).
		Mul(decimal.NewFromInt(int64(booking.Attendees))).
		Round(2)
}
