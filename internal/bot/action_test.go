package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackRoundTrip(t *testing.T) {
	for _, a := range []Action{ActionStartSession, ActionStopSession, ActionTodayStats, ActionSetBirthdayPrompt, ActionBack} {
		data := a.CallbackData()
		assert.NotEmpty(t, data, a.String())

		got, ok := ParseCallback(data)
		assert.True(t, ok, data)
		assert.Equal(t, a, got)
	}
}

func TestParseCallback_Unknown(t *testing.T) {
	_, ok := ParseCallback("delete_everything")
	assert.False(t, ok)
	assert.Empty(t, ActionBirthdayText.CallbackData())
	assert.Equal(t, "unknown", ActionUnknown.String())
}
