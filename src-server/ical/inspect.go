package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"nlcal/src-server/model"

	ics "github.com/arran4/golang-ical"
)

// Inspection is a compiled document read back from disk.
type Inspection struct {
	UID     string
	DTStamp time.Time
	Event   model.ParsedEvent
}

// Inspect reads a single-event calendar file, such as one written by
// Compiler, back into a ParsedEvent.
func Inspect(r io.Reader) (Inspection, error) {
	var out Inspection

	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return out, fmt.Errorf("Inspect: %w", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		return out, fmt.Errorf("Inspect: expected exactly one VEVENT, got %d", len(events))
	}
	ve := events[0]

	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty("DTSTAMP"); p != nil {
		if stamp, err := time.Parse(utcDatetimeLayout, p.Value); err == nil {
			out.DTStamp = stamp
		}
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		out.Event.Title = UnescapeText(p.Value)
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		out.Event.Description = UnescapeText(p.Value)
	}

	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("Inspect: DTSTART is missing")
	}
	if out.Event.StartDatetime, err = localDatetimeFromIcal(dtStart.Value); err != nil {
		return out, fmt.Errorf("Inspect: DTSTART: %w", err)
	}
	if tzs, ok := dtStart.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		out.Event.Timezone = tzs[0]
	}
	if dtEnd := ve.GetProperty(ics.ComponentPropertyDtEnd); dtEnd != nil {
		if out.Event.EndDatetime, err = localDatetimeFromIcal(dtEnd.Value); err != nil {
			return out, fmt.Errorf("Inspect: DTEND: %w", err)
		}
	}

	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		rule, err := DecodeRRule(p.Value)
		if err != nil {
			return out, fmt.Errorf("Inspect: %w", err)
		}
		out.Event.Recurrence = &rule
	}

	return out, nil
}

// YYYYMMDDTHHMMSS -> YYYY-MM-DDTHH:MM:SS
func localDatetimeFromIcal(value string) (string, error) {
	t, err := time.Parse(localDatetimeLayout, strings.TrimSuffix(strings.TrimSpace(value), "Z"))
	if err != nil {
		return "", err
	}
	return model.FormatLocalDatetime(t), nil
}
