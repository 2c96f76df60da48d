package ical_test

import (
	"testing"

	"nlcal/src-server/ical"
	"nlcal/src-server/model"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		start, title, want string
	}{
		{"2025-11-28T19:00:00", "Team Sync!", "2025-11-28_Team_Sync.ics"},
		{"2025-11-28T19:00:00", "Lunch w/ Ana & Bob", "2025-11-28_Lunch_w_Ana__Bob.ics"},
		{"2025-11-28T19:00:00", "pre-launch_review", "2025-11-28_pre-launch_review.ics"},
		{"2025-11-28T19:00:00", "Café déjà vu", "2025-11-28_Café_déjà_vu.ics"},
		{"2025-11-28T19:00:00", "", "2025-11-28_event.ics"},
		{"2025-11-28T19:00:00", "!!!", "2025-11-28_.ics"},
		{"../../etc/passwdT00:00:00", "x", "etcpasswd_x.ics"},
	}
	for _, tc := range cases {
		event := model.ParsedEvent{StartDatetime: tc.start, Title: tc.title}
		assert.Equal(t, tc.want, ical.Filename(event), tc.title)
	}
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Team_Sync", ical.SanitizeTitle("Team Sync!"))
	assert.Equal(t, "a_b-c", ical.SanitizeTitle("a_b-c"))
	assert.Equal(t, "", ical.SanitizeTitle("/.:"))
}
