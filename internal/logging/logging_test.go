package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	log := New("nonsense", &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = New("debug", &buf)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestCronLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New("info", &buf), "notifier")

	CronLogger{Log: log}.Error(errors.New("boom"), "job panicked", "entry", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "notifier", line["component"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "job panicked", line["message"])
	assert.EqualValues(t, 3, line["entry"])
}

func TestCronLogger_InfoIsDebug(t *testing.T) {
	var buf bytes.Buffer
	CronLogger{Log: New("info", &buf)}.Info("wake", "now", "x")
	assert.Empty(t, buf.String())
}
