package utils_test

import (
	"testing"

	"nlcal/src-server/utils"

	"github.com/stretchr/testify/assert"
)

func TestCleanupString(t *testing.T) {
	for in, want := range map[string]string{
		"  team   sync. ":   "Team sync",
		"iPhone launch":     "IPhone launch",
		"éclair day": "Éclair day",
		"":                  "",
	} {
		assert.Equal(t, want, utils.CleanupString(in), in)
	}
}
