package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NLCAL_DATABASE", "")
	t.Setenv("NLCAL_ORACLE", "")

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"nlcal"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestScheduleActionNoText(t *testing.T) {
	tests := map[string]struct {
		stdin string
		args  []string
	}{
		"empty stdin":      {stdin: ""},
		"blank stdin":      {stdin: "  \n\t\n"},
		"blank argument":   {args: []string{"   "}},
		"blank with flags": {args: []string{"--offline", "--no-open", " "}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, stderr, err := runApp(t, tt.stdin, tt.args...)
			require.ErrorIs(t, err, errNoText)
			assert.Contains(t, stderr, "No text provided")
		})
	}
}

func TestScheduleActionPromptsOnStdin(t *testing.T) {
	_, stderr, err := runApp(t, "")
	require.ErrorIs(t, err, errNoText)
	assert.Contains(t, stderr, "Enter event description (end with Ctrl+D):")
}

func TestScheduleActionOffline(t *testing.T) {
	dir := t.TempDir()
	sentence := []string{"Team", "sync", "every", "Friday", "at", "7pm", "for", "8", "weeks"}

	t.Run("arguments", func(t *testing.T) {
		args := append([]string{"--offline", "--no-open", "--date", "2025-11-24", "--out", dir}, sentence...)
		stdout, stderr, err := runApp(t, "", args...)
		require.NoError(t, err)

		path := filepath.Join(dir, "2025-11-28_Team_sync.ics")
		assert.Contains(t, stderr, "Parsing event with")
		assert.Contains(t, stdout, "ICS file written to "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "RRULE:FREQ=WEEKLY;COUNT=8;BYDAY=FR\r\n")
		assert.Contains(t, string(data), "DTSTART;TZID=America/New_York:20251128T190000\r\n")
	})

	t.Run("stdin", func(t *testing.T) {
		out := t.TempDir()
		stdout, _, err := runApp(t, strings.Join(sentence, " ")+"\n",
			"--offline", "--no-open", "--date", "2025-11-24", "--out", out, "--preview", "2")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(out, "2025-11-28_Team_sync.ics"))
		assert.Contains(t, stdout, "Next occurrences:")
		assert.Contains(t, stdout, "2025-12-05 19:00")
	})
}

func TestReferenceDateFlag(t *testing.T) {
	_, _, err := runApp(t, "", "--date", "24/11/2025", "lunch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")
}
