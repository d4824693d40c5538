package models

import "time"

// Birthday stores a user's birthdate. One row per user, last write wins.
type Birthday struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Birthday  Date      `gorm:"type:date;not null" json:"birthday"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Birthday) TableName() string {
	return "user_birthday"
}
