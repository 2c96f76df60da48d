package model

import (
	"fmt"
	"strings"
	"time"
)

type Freq string

const (
	FreqDaily   Freq = "DAILY"
	FreqWeekly  Freq = "WEEKLY"
	FreqMonthly Freq = "MONTHLY"
	FreqYearly  Freq = "YEARLY"
)

func ParseFreq(s string) (Freq, error) {
	switch freq := Freq(strings.ToUpper(strings.TrimSpace(s))); freq {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return freq, nil
	default:
		return "", fmt.Errorf("unknown freq %q", s)
	}
}

func (f Freq) Valid() bool {
	_, err := ParseFreq(string(f))
	return err == nil
}

// Weekday is a two-letter iCalendar day token.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

var weekdayTokens = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

func ParseWeekday(s string) (Weekday, error) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := weekdayTokens[day]; !ok {
		return "", fmt.Errorf("unknown by_day token %q", s)
	}
	return day, nil
}

func (d Weekday) Valid() bool {
	_, ok := weekdayTokens[d]
	return ok
}

// Time returns the matching time.Weekday; ok is false for unknown tokens.
func (d Weekday) Time() (time.Weekday, bool) {
	wd, ok := weekdayTokens[d]
	return wd, ok
}

// WeekdayFromTime is the inverse of Weekday.Time.
func WeekdayFromTime(wd time.Weekday) Weekday {
	for token, w := range weekdayTokens {
		if w == wd {
			return token
		}
	}
	return ""
}

// FirstNaturalOccurrence returns the first date on or after anchor whose
// weekday is one of days, keeping anchor's clock time. With no days (or
// only unknown tokens) anchor is returned unchanged.
func FirstNaturalOccurrence(anchor time.Time, days []Weekday) time.Time {
	wanted := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		if wd, ok := day.Time(); ok {
			wanted[wd] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return anchor
	}
	for offset := 0; offset < 7; offset++ {
		candidate := anchor.AddDate(0, 0, offset)
		if _, ok := wanted[candidate.Weekday()]; ok {
			return candidate
		}
	}
	return anchor
}
