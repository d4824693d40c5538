package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "59m", FormatMinutes(59))
	assert.Equal(t, "1h 0m", FormatMinutes(60))
	assert.Equal(t, "4h 5m", FormatMinutes(245))
}

func TestDurationMinutesBetween(t *testing.T) {
	start := time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 47, DurationMinutesBetween(start, start.Add(47*time.Minute+59*time.Second)))
	assert.Equal(t, 0, DurationMinutesBetween(start, start.Add(-time.Minute)))
}
