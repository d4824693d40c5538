package models

import "time"

// DailyRollup is the per-user, per-day aggregate of closed sessions.
// Sessions are attributed to the day they were closed on.
type DailyRollup struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       int64  `gorm:"not null;uniqueIndex:idx_daily_stats_user_date" json:"user_id"`
	Date         Date   `gorm:"type:date;not null;uniqueIndex:idx_daily_stats_user_date" json:"date"`
	TotalMinutes int    `gorm:"not null;default:0" json:"total_minutes"`
	SessionCount int    `gorm:"not null;default:0" json:"session_count"`
}

func (DailyRollup) TableName() string {
	return "daily_stats"
}

// Hours and RemainderMinutes split TotalMinutes for "Xh Ym" display.
func (r DailyRollup) Hours() int {
	return r.TotalMinutes / 60
}

func (r DailyRollup) RemainderMinutes() int {
	return r.TotalMinutes % 60
}
