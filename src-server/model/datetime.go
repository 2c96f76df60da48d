package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	LocalDatetimeLayout = "2006-01-02T15:04:05"
	DateLayout          = "2006-01-02"
)

// Other naive forms an oracle sometimes produces instead of the canonical one.
var lenientLocalLayouts = []string{
	LocalDatetimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLocalDatetime parses a naive ISO-8601 datetime. The result is in UTC
// but only its wall clock is meaningful; values with an offset or a "Z"
// suffix are rejected.
func ParseLocalDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("ParseLocalDatetime: empty value")
	}
	for _, layout := range lenientLocalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("ParseLocalDatetime: %q is not a YYYY-MM-DDTHH:MM:SS local datetime", s)
}

func FormatLocalDatetime(t time.Time) string {
	return t.Format(LocalDatetimeLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}
