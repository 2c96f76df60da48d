package utils_test

import (
	"testing"

	"nlcal/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{goos: "darwin", name: "open", args: []string{"a.ics"}},
		{goos: "linux", name: "xdg-open", args: []string{"a.ics"}},
		{goos: "windows", name: "rundll32", args: []string{"url.dll,FileProtocolHandler", "a.ics"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := utils.OpenCommand(tt.goos, "a.ics")
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}

	_, _, err := utils.OpenCommand("plan9", "a.ics")
	assert.Error(t, err)
}
