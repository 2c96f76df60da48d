package ical

import (
	"fmt"
	"time"

	"nlcal/src-server/model"

	"github.com/xyedo/rrule"
)

// How far ahead open-ended rules (no COUNT, no UNTIL) are expanded.
const openEndedHorizonYears = 5

// Occurrences returns up to limit start times of event, in its own
// timezone. A non-recurring event has exactly one. A non-positive limit
// returns every occurrence (open-ended rules stop after the horizon).
func Occurrences(event model.ParsedEvent, limit int) ([]time.Time, error) {
	tzid := event.Timezone
	if tzid == "" {
		tzid = model.DefaultTimezone
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, newRenderError("timezone", tzid, err)
	}
	wall, err := model.ParseLocalDatetime(event.StartDatetime)
	if err != nil {
		return nil, newRenderError("start_datetime", event.StartDatetime, err)
	}
	start := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)

	if event.Recurrence == nil {
		return []time.Time{start}, nil
	}

	value, err := EncodeRRule(*event.Recurrence)
	if err != nil {
		return nil, err
	}
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, fmt.Errorf("Occurrences: parse %q: %w", value, err)
	}
	opt.Dtstart = start
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("Occurrences: build %q: %w", value, err)
	}

	var dates []time.Time
	switch {
	case event.Recurrence.Count != nil || event.Recurrence.Until != "":
		dates = rule.All()
	default:
		dates = rule.Between(start, start.AddDate(openEndedHorizonYears, 0, 0), true)
	}

	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	for i := range dates {
		dates[i] = dates[i].In(loc)
	}
	return dates, nil
}
