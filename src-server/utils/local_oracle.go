package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nlcal/src-server/extractor"
	"nlcal/src-server/model"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const weekdayPattern = `(?:mon|tues|wednes|thurs|fri|satur|sun)days?`

var (
	everyWeekdaysRe = regexp.MustCompile(`(?i)\b(?:every|each)\s+(` + weekdayPattern + `(?:\s*(?:,\s*and|,|and|&)\s*` + weekdayPattern + `)*)\b`)
	pluralWeekdaysRe = regexp.MustCompile(`(?i)\b(?:on\s+)?((?:mon|tues|wednes|thurs|fri|satur|sun)days(?:\s*(?:,\s*and|,|and|&)\s*` + weekdayPattern + `)*)\b`)
	weekdayWordRe    = regexp.MustCompile(`(?i)(mon|tues|wednes|thurs|fri|satur|sun)day`)
	everyWorkdayRe   = regexp.MustCompile(`(?i)\b(?:every|each)\s+(?:weekday|work\s*day)s?\b`)
	dailyRe          = regexp.MustCompile(`(?i)\b(?:daily|every\s*day|each\s+day)\b`)
	weeklyRe         = regexp.MustCompile(`(?i)\b(?:weekly|every\s+week|each\s+week)\b`)
	monthlyRe        = regexp.MustCompile(`(?i)\b(?:monthly|every\s+month|each\s+month)\b`)
	yearlyRe         = regexp.MustCompile(`(?i)\b(?:yearly|annually|every\s+year|each\s+year)\b`)
	countRe          = regexp.MustCompile(`(?i)\bfor\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+(?:weeks?|days?|months?|years?|times|occurrences)\b`)
	durationRe       = regexp.MustCompile(`(?i)\bfor\s+(\d+|an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+(minutes?|mins?|hours?|hrs?)\b`)
	untilRe          = regexp.MustCompile(`(?i)\b(?:until|till|through)\s+`)
	startingRe       = regexp.MustCompile(`(?i)\bstarting(?:\s+(?:from|on))?(?:\s+the\s+week\s+of)?\s+`)
	windowEndRe      = regexp.MustCompile(`(?i)[,;]|\s(?:at|from|for|starting|until|till|every|each)\b`)
	clockOnlyRe      = regexp.MustCompile(`(?i)^\d{1,2}(?::\d{2})?\s*(?:am|pm)?$`)
)

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// Words left dangling at the edges of a title once date phrases are cut out.
var titleFillers = map[string]bool{
	"at": true, "on": true, "from": true, "for": true, "every": true, "each": true,
	"the": true, "of": true, "starting": true, "and": true, "to": true, "in": true,
	"by": true, "with": true, "this": true, "next": true, "please": true,
}

// NewWhenParser returns a when parser with the English and common rules.
func NewWhenParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// LocalOracle answers extraction prompts without a network round trip. It
// recognises a fixed vocabulary of date and recurrence phrases and emits the
// same JSON an LLM would, so its answers go through the same strict parser.
type LocalOracle struct {
	when *when.Parser
	now  func() time.Time
}

func NewLocalOracle(w *when.Parser) *LocalOracle {
	if w == nil {
		w = NewWhenParser()
	}
	return &LocalOracle{when: w, now: time.Now}
}

func (o *LocalOracle) Complete(ctx context.Context, systemPrompt string, userText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("(*LocalOracle).Complete: %w", err)
	}

	reference, ok := extractor.ReferenceDateFromPrompt(systemPrompt)
	if !ok {
		now := o.now()
		reference = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		slog.Debug("no reference date in prompt, using today", "reference", reference)
	}

	event, err := o.parse(userText, reference)
	if err != nil {
		return "", fmt.Errorf("(*LocalOracle).Complete: %w", err)
	}
	answer, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("(*LocalOracle).Complete: %w", err)
	}
	return string(answer), nil
}

// phrase is the working copy of the request. Recognised spans are blanked
// out with spaces so indices into the original stay valid.
type phrase struct {
	text []byte
}

func (p *phrase) String() string {
	return string(p.text)
}

func (p *phrase) blank(start, end int) {
	for i := start; i < end && i < len(p.text); i++ {
		p.text[i] = ' '
	}
}

// cut finds re in the phrase, blanks the whole match and returns the
// submatch indices.
func (p *phrase) cut(re *regexp.Regexp) []int {
	loc := re.FindSubmatchIndex(p.text)
	if loc == nil {
		return nil
	}
	p.blank(loc[0], loc[1])
	return loc
}

func (o *LocalOracle) parse(text string, reference time.Time) (model.ParsedEvent, error) {
	p := &phrase{text: []byte(text)}
	event := model.ParsedEvent{Timezone: model.DefaultTimezone}

	var recurrence *model.RecurrenceRule
	switch {
	case everyWorkdayRe.Match(p.text):
		p.cut(everyWorkdayRe)
		recurrence = &model.RecurrenceRule{
			Freq:  model.FreqWeekly,
			ByDay: []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday},
		}
	case everyWeekdaysRe.Match(p.text):
		loc := p.cut(everyWeekdaysRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqWeekly, ByDay: weekdaysIn(text[loc[2]:loc[3]])}
	case pluralWeekdaysRe.Match(p.text):
		loc := p.cut(pluralWeekdaysRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqWeekly, ByDay: weekdaysIn(text[loc[2]:loc[3]])}
	case dailyRe.Match(p.text):
		p.cut(dailyRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqDaily}
	case weeklyRe.Match(p.text):
		p.cut(weeklyRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqWeekly}
	case monthlyRe.Match(p.text):
		p.cut(monthlyRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqMonthly}
	case yearlyRe.Match(p.text):
		p.cut(yearlyRe)
		recurrence = &model.RecurrenceRule{Freq: model.FreqYearly}
	}

	duration := model.DefaultDuration
	if loc := p.cut(durationRe); loc != nil {
		n := parseNumber(text[loc[2]:loc[3]])
		unit := strings.ToLower(text[loc[4]:loc[5]])
		if strings.HasPrefix(unit, "h") {
			duration = time.Duration(n) * time.Hour
		} else {
			duration = time.Duration(n) * time.Minute
		}
	}

	if loc := p.cut(countRe); loc != nil && recurrence != nil {
		count := parseNumber(text[loc[2]:loc[3]])
		recurrence.Count = &count
	}

	// "until" is either an end date for the recurrence or an end clock for
	// the event itself.
	var endClock *time.Time
	if loc := untilRe.FindIndex(p.text); loc != nil {
		result, err := o.parseWindow(p.text[loc[1]:], reference)
		if err != nil {
			return model.ParsedEvent{}, fmt.Errorf("parse: %w", err)
		}
		if result != nil {
			end := loc[1] + result.Index + len(result.Text)
			switch {
			case clockOnlyRe.MatchString(strings.TrimSpace(result.Text)):
				t := result.Time
				endClock = &t
				p.blank(loc[0], end)
			case recurrence != nil:
				recurrence.Until = result.Time.Format(model.DateLayout)
				p.blank(loc[0], end)
			}
		}
	}

	var anchor *time.Time
	if loc := startingRe.FindIndex(p.text); loc != nil {
		result, err := o.parseWindow(p.text[loc[1]:], reference)
		if err != nil {
			return model.ParsedEvent{}, fmt.Errorf("parse: %w", err)
		}
		if result != nil {
			t := result.Time
			anchor = &t
			p.blank(loc[0], loc[1]+result.Index+len(result.Text))
		}
	}

	result, err := o.when.Parse(p.String(), reference)
	if err != nil {
		return model.ParsedEvent{}, fmt.Errorf("parse: %w", err)
	}

	var start time.Time
	switch {
	case result != nil:
		start = result.Time
		p.blank(result.Index, result.Index+len(result.Text))
		if anchor != nil {
			start = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		}
	case anchor != nil:
		start = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 9, 0, 0, 0, anchor.Location())
	case recurrence != nil:
		start = reference.Add(9 * time.Hour)
	default:
		// Nothing date-like: leave start_datetime out and let the parser
		// reject the answer.
		event.Title = cleanTitle(p.String())
		return event, nil
	}

	if recurrence != nil {
		if recurrence.Freq == model.FreqWeekly && len(recurrence.ByDay) == 0 {
			recurrence.ByDay = []model.Weekday{model.WeekdayFromTime(start.Weekday())}
		}
		if len(recurrence.ByDay) > 0 {
			day := model.FirstNaturalOccurrence(start, recurrence.ByDay)
			start = time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		}
	}

	end := start.Add(duration)
	if endClock != nil {
		candidate := time.Date(start.Year(), start.Month(), start.Day(), endClock.Hour(), endClock.Minute(), 0, 0, start.Location())
		if candidate.After(start) {
			end = candidate
		}
	}

	event.Title = cleanTitle(p.String())
	event.StartDatetime = model.FormatLocalDatetime(start)
	event.EndDatetime = model.FormatLocalDatetime(end)
	event.Recurrence = recurrence
	return event, nil
}

// parseWindow reads the date right after a keyword, stopping at the next
// clause. It only accepts a match that starts the window.
func (o *LocalOracle) parseWindow(rest []byte, reference time.Time) (*when.Result, error) {
	window := rest
	if loc := windowEndRe.FindIndex(rest); loc != nil {
		window = rest[:loc[0]]
	}
	result, err := o.when.Parse(string(window), reference)
	if err != nil || result == nil {
		return nil, err
	}
	if strings.TrimSpace(string(window[:result.Index])) != "" {
		return nil, nil
	}
	return result, nil
}

func weekdaysIn(s string) []model.Weekday {
	seen := make(map[model.Weekday]bool)
	days := make([]model.Weekday, 0, 2)
	for _, m := range weekdayWordRe.FindAllStringSubmatch(s, -1) {
		day, err := model.ParseWeekday(strings.ToUpper(m[1][:2]))
		if err != nil || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	return days
}

func parseNumber(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return numberWords[strings.ToLower(s)]
}

func cleanTitle(s string) string {
	words := strings.Fields(s)
	trim := func(w string) string {
		return strings.ToLower(strings.Trim(w, ",.;:!?-"))
	}
	for len(words) > 0 && (titleFillers[trim(words[0])] || trim(words[0]) == "") {
		words = words[1:]
	}
	for len(words) > 0 && (titleFillers[trim(words[len(words)-1])] || trim(words[len(words)-1]) == "") {
		words = words[:len(words)-1]
	}
	return CleanupString(strings.Join(words, " "))
}
