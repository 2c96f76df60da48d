package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nlcal/src-server/extractor"
	"nlcal/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, November 24, 2025
var referenceDate = time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)

func stubOracle(answer string, gotSystem, gotUser *string) extractor.OracleFunc {
	return func(ctx context.Context, systemPrompt, userText string) (string, error) {
		if gotSystem != nil {
			*gotSystem = systemPrompt
		}
		if gotUser != nil {
			*gotUser = userText
		}
		return answer, nil
	}
}

func TestExtract(t *testing.T) {
	var system, user string
	oracle := stubOracle(`{
  "title": "Game night",
  "timezone": "America/New_York",
  "start_datetime": "2025-11-28T19:00:00",
  "end_datetime": "2025-11-28T22:00:00",
  "recurrence": {"freq": "WEEKLY", "count": 8, "until": null, "by_day": ["FR"]}
}`, &system, &user)

	event, err := extractor.Extract(context.Background(), oracle,
		"  every Friday at 7pm for 8 weeks starting the week of Nov 24  ", referenceDate)
	require.NoError(t, err)

	assert.Equal(t, "every Friday at 7pm for 8 weeks starting the week of Nov 24", user)
	assert.Contains(t, system, "Today's date is Monday, November 24, 2025.")
	assert.Contains(t, system, "Assume timezone America/New_York if not specified.")
	assert.Contains(t, system, "default to 30 minutes after start")
	assert.Contains(t, system, "first natural occurrence")

	assert.Equal(t, "Game night", event.Title)
	assert.Equal(t, "2025-11-28T22:00:00", event.EndDatetime)
	require.NotNil(t, event.Recurrence)
	assert.Equal(t, []model.Weekday{model.Friday}, event.Recurrence.ByDay)
}

func TestExtractDefaultsEndAndTimezone(t *testing.T) {
	oracle := stubOracle(`{"title":"Call mom","start_datetime":"2025-11-25T18:00:00","recurrence":null}`, nil, nil)
	event, err := extractor.Extract(context.Background(), oracle, "call mom tomorrow at 6pm", referenceDate)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-25T18:30:00", event.EndDatetime)
	assert.Equal(t, model.DefaultTimezone, event.Timezone)
}

func TestExtractSchemaViolationKeepsRaw(t *testing.T) {
	raw := "```json\n{\"title\": \"Team sync\"}\n```"
	_, err := extractor.Extract(context.Background(), stubOracle(raw, nil, nil), "team sync friday", referenceDate)
	require.Error(t, err)

	var violation *model.SchemaViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, raw, violation.Raw)
	assert.True(t, strings.Contains(err.Error(), raw))
}

func TestExtractPropagatesOracleErrors(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	oracle := extractor.OracleFunc(func(ctx context.Context, systemPrompt, userText string) (string, error) {
		calls++
		return "", boom
	})
	_, err := extractor.Extract(context.Background(), oracle, "lunch tomorrow", referenceDate)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "no retries")
}

func TestExtractEmptyRequest(t *testing.T) {
	called := false
	oracle := extractor.OracleFunc(func(ctx context.Context, systemPrompt, userText string) (string, error) {
		called = true
		return "", nil
	})
	_, err := extractor.Extract(context.Background(), oracle, "   ", referenceDate)
	require.ErrorIs(t, err, extractor.ErrEmptyRequest)
	assert.False(t, called)
}

func TestReferenceDateFromPrompt(t *testing.T) {
	got, ok := extractor.ReferenceDateFromPrompt(extractor.SystemPrompt(referenceDate))
	require.True(t, ok)
	assert.Equal(t, referenceDate, got)

	_, ok = extractor.ReferenceDateFromPrompt("no date here")
	assert.False(t, ok)
}
