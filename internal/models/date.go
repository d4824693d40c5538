package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the layout of calendar-date columns (birthday, rollup date).
const DateLayout = "2006-01-02"

// DateKey returns the calendar date of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a stored calendar date. The result is midnight UTC.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

// CivilDate truncates t to its calendar date and returns it as midnight UTC,
// so that day arithmetic is not affected by DST shifts.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// Date is a calendar date kept in a DATE column. Its Go value is the
// "2006-01-02" key, so lookups compare plain strings.
type Date string

// Scan accepts what the drivers return for DATE columns: time.Time from
// postgres and most sqlite reads, text otherwise.
func (d *Date) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(x.Format(DateLayout))
	case string:
		return d.scanText(x)
	case []byte:
		return d.scanText(string(x))
	default:
		return fmt.Errorf("cannot scan %T into Date", v)
	}
	return nil
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	*d = Date(s)
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}
