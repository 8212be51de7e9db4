package models

import (
	"time"
)

// Category is the closed set of event delivery formats.
type Category string

const (
	CategoryInPerson   Category = "in-person"
	CategoryOnlineLive Category = "online-live"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInPerson, CategoryOnlineLive:
		return true
	}
	return false
}

type RequirementType string

const (
	RequirementRequired    RequirementType = "required"
	RequirementRecommended RequirementType = "recommended"
)

type EventRequirement struct {
	Description string          `json:"description"`
	Type        RequirementType `json:"type"` // required, recommended
}

type EventActivity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Day         string `json:"day"`        // calendar day, YYYY-MM-DD
	StartTime   string `json:"start_time"` // time of day, zero-padded HH:MM
	EndTime     string `json:"end_time"`
}

type Event struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	ImageURL           string             `json:"image_url,omitempty"`
	Location           string             `json:"location"` // venue name or meeting link, by category
	Price              float64            `json:"price"`
	Capacity           int                `json:"capacity"`
	BookedSeats        int                `json:"booked_seats"`
	StartTime          time.Time          `json:"start_time"`
	EndTime            time.Time          `json:"end_time"`
	Instructor         string             `json:"instructor"`
	Category           Category           `json:"category"`
	Requirements       []EventRequirement `json:"requirements,omitempty"`
	Activities         []EventActivity    `json:"activities,omitempty"`
	Cancelled          bool               `json:"cancelled,omitempty"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
}

// AvailableSpaces is the number of seats still bookable.
func (e *Event) AvailableSpaces() int {
	return e.Capacity - e.BookedSeats
}

// SoldOut reports whether the event can no longer be booked.
func (e *Event) SoldOut() bool {
	return e.AvailableSpaces() <= 0
}

type LocationPreset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MapURL string `json:"map_url,omitempty"`
}

type InstructorPreset struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// TemplateDetails is the snapshot of an event's authoring fields,
// excluding the schedule bounds.
type TemplateDetails struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	ImageURL     string             `json:"image_url,omitempty"`
	Location     string             `json:"location"`
	Price        float64            `json:"price"`
	Capacity     int                `json:"capacity"`
	Instructor   string             `json:"instructor"`
	Category     Category           `json:"category"`
	Requirements []EventRequirement `json:"requirements"`
	Activities   []EventActivity    `json:"activities"`
}

type EventTemplate struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	EventDetails TemplateDetails `json:"event_details"`
	CreatedAt    time.Time       `json:"created_at"`
}
