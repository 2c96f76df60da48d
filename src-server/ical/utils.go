package ical

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	localDatetimeLayout = "20060102T150405"
	utcDatetimeLayout   = "20060102T150405Z"
)

var (
	textEscaper = strings.NewReplacer(
		`\`, `\\`,
		"\r\n", `\n`,
		"\n", `\n`,
		",", `\,`,
		";", `\;`,
	)
	textUnescaper = strings.NewReplacer(
		`\\`, `\`,
		`\n`, "\n",
		`\N`, "\n",
		`\,`, ",",
		`\;`, ";",
	)
)

// Escape a free-text value (SUMMARY, DESCRIPTION, ...) so commas,
// semicolons, backslashes and newlines don't break the content line.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// Reverse of EscapeText.
func UnescapeText(s string) string {
	return textUnescaper.Replace(s)
}

// Format a wall-clock time as a floating local datetime: YYYYMMDDTHHMMSS.
// No zone conversion happens; the TZID parameter carries the zone.
func TimeToLocalDatetime(t time.Time) string {
	return t.Format(localDatetimeLayout)
}

// Format an instant as a UTC datetime: YYYYMMDDTHHMMSSZ
func TimeToUTCDatetime(t time.Time) string {
	return t.UTC().Format(utcDatetimeLayout)
}

// Convert a calendar date into the UNTIL instant of that day: 23:59:59Z.
func DateToUntil(date time.Time) string {
	return date.Format("20060102") + "T235959Z"
}

var errBadTZID = errors.New("timezone must be a non-empty identifier without ; : , \" or control characters")

func validateTZID(tzid string) error {
	if strings.TrimSpace(tzid) == "" {
		return errBadTZID
	}
	for _, r := range tzid {
		if unicode.IsControl(r) || strings.ContainsRune(`;:,"`, r) {
			return errBadTZID
		}
	}
	return nil
}
