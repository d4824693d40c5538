package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is the user-facing date format (DD.MM.YYYY).
const DisplayLayout = "02.01.2006"

// ErrDateFormat is returned for any input that is not a real DD.MM.YYYY date.
var ErrDateFormat = errors.New("invalid date format, use DD.MM.YYYY (for example 15.03.1990)")

var dateRegex = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// ParseDate parses a DD.MM.YYYY date and returns it as midnight UTC.
// Impossible dates such as 31.02.1990 are rejected.
func ParseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)

	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, ErrDateFormat
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month must be between 01 and 12", ErrDateFormat)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day must be between 01 and 31", ErrDateFormat)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("%w: %s does not exist", ErrDateFormat, input)
	}

	return date, nil
}

// FormatDate formats a date for display
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}
