package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"15.03.1990", time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"  01.01.2000 ", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"29.02.2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"2024-03-15",
		"15/03/1990",
		"5.3.1990",
		"15.03.90",
		"32.01.1990",
		"00.01.1990",
		"15.13.1990",
		"29.02.2023",
		"31.04.1990",
		"15.03.1990 extra",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			assert.ErrorIs(t, err, ErrDateFormat)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "16.03.2024", FormatDate(time.Date(2024, 3, 16, 23, 59, 0, 0, time.UTC)))
}
