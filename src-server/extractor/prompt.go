package extractor

import (
	"strconv"
	"strings"
	"time"

	"nlcal/src-server/model"
)

// How the reference date is spelled out to the oracle, e.g.
// "Monday, November 24, 2025".
const ReferenceDateLayout = "Monday, January 02, 2006"

// Marker the offline oracle looks for to recover the reference date.
const referenceDateMarker = "Today's date is "

const systemPromptTemplate = `
You are a calendar event parser. Today's date is {{today}}.

Given a natural language instruction, extract a single event and return JSON with this exact schema:

{
  "title": "short title string",
  "description": "optional description string",
  "timezone": "IANA timezone string, e.g. {{timezone}}",
  "start_datetime": "YYYY-MM-DDTHH:MM:SS",
  "end_datetime": "YYYY-MM-DDTHH:MM:SS",
  "recurrence": null OR {
    "freq": "DAILY|WEEKLY|MONTHLY|YEARLY",
    "count": integer or null,
    "until": "YYYY-MM-DD" or null,
    "by_day": ["MO","TU","WE","TH","FR","SA","SU"] or []
  }
}

Rules:
- Assume timezone {{timezone}} if not specified.
- If end time is missing, default to {{duration}} minutes after start.
- If user mentions "for N weeks" with a weekly pattern, use freq=WEEKLY and count=N occurrences.
- Use the first natural occurrence that matches the pattern. For example, for "every Friday at 7 PM for 8 weeks starting from the week of Mon Nov 24 2025", start on the first Friday on or after that Monday.
- Return JSON only, with no comments or extra text.
`

// SystemPrompt renders the fixed instruction turn for a reference date.
func SystemPrompt(referenceDate time.Time) string {
	return strings.NewReplacer(
		"{{today}}", referenceDate.Format(ReferenceDateLayout),
		"{{timezone}}", model.DefaultTimezone,
		"{{duration}}", strconv.Itoa(int(model.DefaultDuration.Minutes())),
	).Replace(systemPromptTemplate)
}

// ReferenceDateFromPrompt recovers the reference date embedded by
// SystemPrompt.
func ReferenceDateFromPrompt(prompt string) (time.Time, bool) {
	_, rest, ok := strings.Cut(prompt, referenceDateMarker)
	if !ok {
		return time.Time{}, false
	}
	dateStr, _, ok := strings.Cut(rest, ".")
	if !ok {
		return time.Time{}, false
	}
	date, err := time.Parse(ReferenceDateLayout, dateStr)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
