package ical_test

import (
	"strings"
	"testing"
	"time"

	"nlcal/src-server/ical"
	"nlcal/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectRoundTrip(t *testing.T) {
	event := teamSync()
	event.Description = "Lunch, then; review"
	event.Recurrence = &model.RecurrenceRule{
		Freq:  model.FreqWeekly,
		Count: intPtr(8),
		Until: "2026-03-01",
		ByDay: []model.Weekday{model.Friday, model.Monday},
	}
	doc, err := fixedCompiler().Compile(event)
	require.NoError(t, err)

	got, err := ical.Inspect(strings.NewReader(doc.String()))
	require.NoError(t, err)

	assert.Equal(t, doc.UID, got.UID)
	assert.Equal(t, time.Date(2025, 11, 24, 20, 4, 5, 0, time.UTC), got.DTStamp)
	assert.Equal(t, event, got.Event)
}

func TestInspectSingle(t *testing.T) {
	doc, err := fixedCompiler().Compile(teamSync())
	require.NoError(t, err)

	got, err := ical.Inspect(strings.NewReader(doc.String()))
	require.NoError(t, err)
	assert.Nil(t, got.Event.Recurrence)
	assert.Equal(t, "America/New_York", got.Event.Timezone)
	assert.Equal(t, "2025-11-28T19:30:00", got.Event.EndDatetime)
}

func TestInspectRejectsEmptyCalendar(t *testing.T) {
	_, err := ical.Inspect(strings.NewReader("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:x\r\nEND:VCALENDAR\r\n"))
	assert.Error(t, err)
}
