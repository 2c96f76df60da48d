package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// Used when the oracle doesn't say which zone the event is in.
	DefaultTimezone = "America/New_York"
	// Used when the oracle doesn't give an end time.
	DefaultDuration = 30 * time.Minute

	// Placeholders for a missing title, for the SUMMARY line and the filename.
	UntitledSummary  = "Untitled event"
	UntitledFilename = "event"
)

// ParsedEvent is the structured event produced from a free-form request.
//
// Datetimes are kept as naive local ISO-8601 strings (YYYY-MM-DDTHH:MM:SS);
// they are only interpreted when the event is compiled, in Timezone.
type ParsedEvent struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Timezone      string          `json:"timezone"`
	StartDatetime string          `json:"start_datetime"`
	EndDatetime   string          `json:"end_datetime"`
	Recurrence    *RecurrenceRule `json:"recurrence"`
}

// RecurrenceRule is the small closed set of recurrences an event can have.
//
// Count and Until may both be set; nothing here reconciles them.
type RecurrenceRule struct {
	Freq  Freq      `json:"freq"`
	Count *int      `json:"count"`
	Until string    `json:"until,omitempty"` // YYYY-MM-DD
	ByDay []Weekday `json:"by_day"`
}

// The wire shape of the oracle's answer. Pointers tell "absent" apart
// from "zero".
type parsedEventWire struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Timezone      *string             `json:"timezone"`
	StartDatetime *string             `json:"start_datetime"`
	EndDatetime   *string             `json:"end_datetime"`
	Recurrence    *recurrenceRuleWire `json:"recurrence"`
}

type recurrenceRuleWire struct {
	Freq  *string      `json:"freq"`
	Count *json.Number `json:"count"`
	Until *string      `json:"until"`
	ByDay []string     `json:"by_day"`
}

// ParseEvent strictly parses a raw oracle response into a ParsedEvent.
//
// The whole body must be one JSON object; nothing is stripped or repaired.
// Any failure is a *SchemaViolationError carrying the raw text verbatim.
func ParseEvent(raw string) (ParsedEvent, error) {
	violation := func(format string, args ...any) (ParsedEvent, error) {
		return ParsedEvent{}, &SchemaViolationError{
			Reason: fmt.Sprintf(format, args...),
			Raw:    raw,
		}
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return violation("response is not a JSON object")
	}
	var wire parsedEventWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return violation("invalid JSON: %s", err)
	}

	var event ParsedEvent
	if wire.StartDatetime == nil || strings.TrimSpace(*wire.StartDatetime) == "" {
		return violation("missing required field start_datetime")
	}
	event.StartDatetime = strings.TrimSpace(*wire.StartDatetime)
	if wire.EndDatetime != nil {
		event.EndDatetime = strings.TrimSpace(*wire.EndDatetime)
	}
	if wire.Title != nil {
		event.Title = strings.TrimSpace(*wire.Title)
	}
	if wire.Description != nil {
		event.Description = strings.TrimSpace(*wire.Description)
	}
	if wire.Timezone != nil {
		event.Timezone = strings.TrimSpace(*wire.Timezone)
	}

	if wire.Recurrence != nil {
		rule, reason := wire.Recurrence.toRule()
		if reason != "" {
			return violation("recurrence: %s", reason)
		}
		event.Recurrence = &rule
	}

	return event, nil
}

func (w *recurrenceRuleWire) toRule() (RecurrenceRule, string) {
	var rule RecurrenceRule
	if w.Freq == nil || strings.TrimSpace(*w.Freq) == "" {
		return rule, "missing required field freq"
	}
	freq, err := ParseFreq(*w.Freq)
	if err != nil {
		return rule, err.Error()
	}
	rule.Freq = freq

	if w.Count != nil {
		f, err := w.Count.Float64()
		if err != nil || f != math.Trunc(f) || f > math.MaxInt32 {
			return rule, fmt.Sprintf("count must be an integer, got %s", w.Count.String())
		}
		if f <= 0 {
			return rule, fmt.Sprintf("count must be positive, got %s", w.Count.String())
		}
		count := int(f)
		rule.Count = &count
	}
	if w.Until != nil {
		rule.Until = strings.TrimSpace(*w.Until)
	}

	rule.ByDay = make([]Weekday, 0, len(w.ByDay))
	for _, token := range w.ByDay {
		day, err := ParseWeekday(token)
		if err != nil {
			return rule, err.Error()
		}
		rule.ByDay = append(rule.ByDay, day)
	}
	return rule, ""
}

// ApplyDefaults fills the fields the instruction template tells the oracle
// to default, in case the oracle left them out: the timezone and a
// 30-minute end time. An end time that is present is never touched, even
// when it's not after the start.
func (e *ParsedEvent) ApplyDefaults() {
	if e.Timezone == "" {
		e.Timezone = DefaultTimezone
	}
	if e.EndDatetime == "" {
		start, err := ParseLocalDatetime(e.StartDatetime)
		if err != nil {
			// left empty; compiling reports the bad start_datetime
			return
		}
		e.EndDatetime = FormatLocalDatetime(start.Add(DefaultDuration))
	}
}

// StartDate returns the YYYY-MM-DD part of StartDatetime.
func (e *ParsedEvent) StartDate() string {
	date, _, _ := strings.Cut(e.StartDatetime, "T")
	return date
}
