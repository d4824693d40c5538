package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/deepwork/internal/models"
)

// SetBirthday stores the user's birthdate, overwriting any previous value.
func (s *Store) SetBirthday(ctx context.Context, userID int64, birthday time.Time) error {
	db, cancel := s.op(ctx)
	defer cancel()

	row := models.Birthday{
		UserID:   userID,
		Birthday: models.Date(models.DateKey(birthday)),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"birthday", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set birthday: %w", err)
	}
	return nil
}

// GetBirthday returns the stored birthdate as midnight UTC. The bool is false
// when the user never set one.
func (s *Store) GetBirthday(ctx context.Context, userID int64) (time.Time, bool, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var row models.Birthday
	if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get birthday: %w", err)
	}
	birthday, err := models.ParseDateKey(string(row.Birthday))
	if err != nil {
		return time.Time{}, false, err
	}
	return birthday, true, nil
}
