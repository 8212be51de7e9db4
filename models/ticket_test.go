package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketPayloadFieldNames(t *testing.T) {
	issuedAt := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	raw, err := json.Marshal(NewTicketPayload("bk-1", "evt-1", issuedAt))
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "bk-1", decoded["bookingId"])
	assert.Equal(t, "evt-1", decoded["eventId"])
	assert.Equal(t, "2025-02-01T09:30:00Z", decoded["timestamp"])
}

func TestEventAvailability(t *testing.T) {
	event := &Event{Capacity: 10, BookedSeats: 7}
	assert.Equal(t, 3, event.AvailableSpaces())
	assert.False(t, event.SoldOut())

	event.BookedSeats = 10
	assert.True(t, event.SoldOut())
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryInPerson.Valid())
	assert.True(t, CategoryOnlineLive.Valid())
	assert.False(t, Category("hybrid").Valid())
	assert.False(t, Category("").Valid())
}
