package models

import (
	"fmt"
	"time"
)

// Session represents one contiguous deep-work interval for a user.
// EndTime and DurationMinutes stay nil while the session is open.
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID          int64      `gorm:"not null;index" json:"user_id"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
}

// TableName keeps the table name used by earlier deployments of the bot.
func (Session) TableName() string {
	return "deepwork_sessions"
}

// IsOpen reports whether the session has not been stopped yet.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// Minutes returns the frozen duration, or 0 for an open session.
func (s *Session) Minutes() int {
	if s.DurationMinutes == nil {
		return 0
	}
	return *s.DurationMinutes
}

// DurationMinutesBetween returns whole minutes from start to end, truncated.
// A negative interval (clock moved backwards) counts as zero.
func DurationMinutesBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// FormatMinutes renders a minute count as "47m" or "2h 5m".
func FormatMinutes(m int) string {
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}
