package ical

import (
	"fmt"
	"strconv"
	"strings"

	"nlcal/src-server/model"
)

// EncodeRRule renders a recurrence rule as the value of an RRULE line.
//
// FREQ always comes first, then COUNT, UNTIL and BYDAY when present, in
// that order. COUNT and UNTIL are both emitted when both are set. BYDAY
// keeps the input order.
func EncodeRRule(rule model.RecurrenceRule) (string, error) {
	if !rule.Freq.Valid() {
		return "", newRenderError("recurrence.freq", string(rule.Freq), nil)
	}
	parts := []string{"FREQ=" + string(rule.Freq)}

	if rule.Count != nil {
		if *rule.Count <= 0 {
			return "", newRenderError("recurrence.count", strconv.Itoa(*rule.Count), fmt.Errorf("count must be positive"))
		}
		parts = append(parts, "COUNT="+strconv.Itoa(*rule.Count))
	}

	if rule.Until != "" {
		until, err := model.ParseDate(rule.Until)
		if err != nil {
			return "", newRenderError("recurrence.until", rule.Until, err)
		}
		parts = append(parts, "UNTIL="+DateToUntil(until))
	}

	if len(rule.ByDay) > 0 {
		days := make([]string, len(rule.ByDay))
		for i, day := range rule.ByDay {
			if !day.Valid() {
				return "", newRenderError("recurrence.by_day", string(day), nil)
			}
			days[i] = string(day)
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}

	return strings.Join(parts, ";"), nil
}

// DecodeRRule parses an RRULE value produced by EncodeRRule back into a
// rule. Parts this tool never writes are ignored.
func DecodeRRule(value string) (model.RecurrenceRule, error) {
	var rule model.RecurrenceRule
	rule.ByDay = make([]model.Weekday, 0)
	for _, part := range strings.Split(strings.TrimSpace(value), ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return rule, fmt.Errorf("DecodeRRule: malformed part %q", part)
		}
		switch strings.ToUpper(key) {
		case "FREQ":
			freq, err := model.ParseFreq(val)
			if err != nil {
				return rule, fmt.Errorf("DecodeRRule: %w", err)
			}
			rule.Freq = freq
		case "COUNT":
			count, err := strconv.Atoi(val)
			if err != nil || count <= 0 {
				return rule, fmt.Errorf("DecodeRRule: invalid COUNT %q", val)
			}
			rule.Count = &count
		case "UNTIL":
			if len(val) < 8 {
				return rule, fmt.Errorf("DecodeRRule: invalid UNTIL %q", val)
			}
			date, err := model.ParseDate(val[0:4] + "-" + val[4:6] + "-" + val[6:8])
			if err != nil {
				return rule, fmt.Errorf("DecodeRRule: invalid UNTIL %q", val)
			}
			rule.Until = date.Format(model.DateLayout)
		case "BYDAY":
			for _, token := range strings.Split(val, ",") {
				day, err := model.ParseWeekday(token)
				if err != nil {
					return rule, fmt.Errorf("DecodeRRule: %w", err)
				}
				rule.ByDay = append(rule.ByDay, day)
			}
		}
	}
	if rule.Freq == "" {
		return rule, fmt.Errorf("DecodeRRule: FREQ is missing in %q", value)
	}
	return rule, nil
}
