// The `ical` package compiles a ParsedEvent into an iCalendar document and
// reads such documents back.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Output is one VCALENDAR holding one VEVENT, CRLF terminated, no line
//   folding.
// - DTSTART/DTEND are floating local times with a TZID parameter; the
//   importing application does the zone interpretation. Only DTSTAMP and
//   UNTIL are UTC.
//
// # Example usage:
//
//	doc, _ := ical.NewCompiler().Compile(event)
//	_ = os.WriteFile(ical.Filename(event), doc.Bytes(), 0644)
package ical

import (
	"strings"
	"time"

	"nlcal/src-server/model"

	"github.com/google/uuid"
)

const (
	ProdID = "-//NLP Calendar Helper//EN"

	crlf = "\r\n"
)

// Compiler renders ParsedEvents. The two non-deterministic inputs of a
// render, the UID and the DTSTAMP clock, are injectable.
type Compiler struct {
	NewUID func() string
	Now    func() time.Time
}

// Initialize a Compiler using random UUIDs and the system clock.
func NewCompiler() *Compiler {
	return &Compiler{
		NewUID: uuid.NewString,
		Now:    time.Now,
	}
}

// Document is one compiled calendar file.
type Document struct {
	UID     string
	DTStamp time.Time
	RRule   string // empty for a single occurrence

	content string
}

func (d Document) String() string {
	return d.content
}

func (d Document) Bytes() []byte {
	return []byte(d.content)
}

// Compile renders event into an iCalendar document. It does no I/O; the
// only inputs besides event are the generated UID and timestamp.
func (c *Compiler) Compile(event model.ParsedEvent) (Document, error) {
	tzid := event.Timezone
	if tzid == "" {
		tzid = model.DefaultTimezone
	}
	if err := validateTZID(tzid); err != nil {
		return Document{}, newRenderError("timezone", tzid, err)
	}

	start, err := model.ParseLocalDatetime(event.StartDatetime)
	if err != nil {
		return Document{}, newRenderError("start_datetime", event.StartDatetime, err)
	}
	end, err := model.ParseLocalDatetime(event.EndDatetime)
	if err != nil {
		return Document{}, newRenderError("end_datetime", event.EndDatetime, err)
	}
	if !end.After(start) {
		return Document{}, newRenderError("end_datetime", event.EndDatetime, errEndNotAfterStart)
	}

	var rrule string
	if event.Recurrence != nil {
		if rrule, err = EncodeRRule(*event.Recurrence); err != nil {
			return Document{}, err
		}
	}

	summary := event.Title
	if summary == "" {
		summary = model.UntitledSummary
	}

	newUID, now := c.NewUID, c.Now
	if newUID == nil {
		newUID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	doc := Document{
		UID:     newUID(),
		DTStamp: now().UTC(),
		RRule:   rrule,
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProdID,
		"BEGIN:VEVENT",
		"UID:" + doc.UID,
		"DTSTAMP:" + TimeToUTCDatetime(doc.DTStamp),
		"DTSTART;TZID=" + tzid + ":" + TimeToLocalDatetime(start),
		"DTEND;TZID=" + tzid + ":" + TimeToLocalDatetime(end),
		"SUMMARY:" + EscapeText(summary),
	}
	if event.Description != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeText(event.Description))
	}
	if rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	lines = append(lines,
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	)
	doc.content = strings.Join(lines, crlf)

	return doc, nil
}
