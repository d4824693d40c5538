package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/deepwork/internal/models"
)

// IncrementDailyRollup adds one closed session of the given length to the
// user's rollup for date, creating the row on first use. Callers apply it in
// the same transaction as the matching CloseSession.
func (s *Store) IncrementDailyRollup(ctx context.Context, userID int64, date string, minutes int) error {
	db, cancel := s.op(ctx)
	defer cancel()

	rollup := models.DailyRollup{
		UserID:       userID,
		Date:         models.Date(date),
		TotalMinutes: minutes,
		SessionCount: 1,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_minutes": gorm.Expr("daily_stats.total_minutes + excluded.total_minutes"),
			"session_count": gorm.Expr("daily_stats.session_count + 1"),
			"updated_at":    gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&rollup).Error
	if err != nil {
		return fmt.Errorf("increment daily rollup: %w", err)
	}
	return nil
}

// GetDailyRollup returns the rollup for (user, date); zero totals if absent.
func (s *Store) GetDailyRollup(ctx context.Context, userID int64, date string) (models.DailyRollup, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var rollup models.DailyRollup
	err := db.Where("user_id = ? AND date = ?", userID, date).First(&rollup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DailyRollup{UserID: userID, Date: models.Date(date)}, nil
		}
		return models.DailyRollup{UserID: userID, Date: models.Date(date)}, fmt.Errorf("get daily rollup: %w", err)
	}
	return rollup, nil
}
