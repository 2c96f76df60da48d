package ical

import (
	"strings"
	"unicode"

	"nlcal/src-server/model"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const FileExtension = ".ics"

// SanitizeTitle keeps letters, digits, spaces, underscores and hyphens,
// then turns spaces into underscores.
func SanitizeTitle(title string) string {
	keep := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '_' || r == '-'
	}
	cleaned, _, err := transform.String(
		transform.Chain(norm.NFC, runes.Remove(runes.Predicate(func(r rune) bool { return !keep(r) }))),
		title,
	)
	if err != nil {
		cleaned = strings.Map(func(r rune) rune {
			if keep(r) {
				return r
			}
			return -1
		}, title)
	}
	return strings.ReplaceAll(cleaned, " ", "_")
}

// Filename derives the output file name: <start date>_<sanitized title>.ics
func Filename(event model.ParsedEvent) string {
	date := event.StartDate()
	if start, err := model.ParseLocalDatetime(event.StartDatetime); err == nil {
		date = start.Format(model.DateLayout)
	} else {
		date = SanitizeTitle(date)
	}

	title := event.Title
	if title == "" {
		title = model.UntitledFilename
	}
	return date + "_" + SanitizeTitle(title) + FileExtension
}
