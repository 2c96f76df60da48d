package ical_test

import (
	"testing"

	"nlcal/src-server/ical"
	"nlcal/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRRule(t *testing.T) {
	cases := []struct {
		name string
		rule model.RecurrenceRule
		want string
	}{
		{"freq only", model.RecurrenceRule{Freq: model.FreqYearly}, "FREQ=YEARLY"},
		{"count", model.RecurrenceRule{Freq: model.FreqDaily, Count: intPtr(10)}, "FREQ=DAILY;COUNT=10"},
		{"count and until both kept", model.RecurrenceRule{
			Freq:  model.FreqWeekly,
			Count: intPtr(4),
			Until: "2025-12-31",
			ByDay: []model.Weekday{model.Tuesday},
		}, "FREQ=WEEKLY;COUNT=4;UNTIL=20251231T235959Z;BYDAY=TU"},
		{"by_day order preserved", model.RecurrenceRule{
			Freq:  model.FreqWeekly,
			ByDay: []model.Weekday{model.Friday, model.Monday, model.Wednesday},
		}, "FREQ=WEEKLY;BYDAY=FR,MO,WE"},
		{"empty by_day omitted", model.RecurrenceRule{Freq: model.FreqMonthly, ByDay: []model.Weekday{}}, "FREQ=MONTHLY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ical.EncodeRRule(tc.rule)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRRule(t *testing.T) {
	rule, err := ical.DecodeRRule("FREQ=WEEKLY;COUNT=4;UNTIL=20251231T235959Z;BYDAY=TU,TH")
	require.NoError(t, err)
	assert.Equal(t, model.FreqWeekly, rule.Freq)
	require.NotNil(t, rule.Count)
	assert.Equal(t, 4, *rule.Count)
	assert.Equal(t, "2025-12-31", rule.Until)
	assert.Equal(t, []model.Weekday{model.Tuesday, model.Thursday}, rule.ByDay)

	for _, bad := range []string{"COUNT=3", "FREQ=HOURLY", "FREQ=DAILY;COUNT=x", "FREQ=DAILY;BYDAY=XX", "FREQ"} {
		_, err := ical.DecodeRRule(bad)
		assert.Error(t, err, bad)
	}
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `Lunch\, then\; review`, ical.EscapeText("Lunch, then; review"))
	assert.Equal(t, `a\\b\nc`, ical.EscapeText("a\\b\nc"))
	assert.Equal(t, `line\nnext`, ical.EscapeText("line\r\nnext"))
	for _, s := range []string{"Lunch, then; review", `C:\temp, ok`, "two\nlines"} {
		assert.Equal(t, s, ical.UnescapeText(ical.EscapeText(s)))
	}
}
