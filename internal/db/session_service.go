package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/deepwork/internal/models"
)

// CreateSession inserts a new open session. It does not check for an existing
// open session itself; the ledger does, and the partial unique index rejects
// a second open row with ErrOpenSessionExists.
func (s *Store) CreateSession(ctx context.Context, userID int64, start time.Time) (*models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	session := models.Session{
		UserID:    userID,
		StartTime: start.UTC(),
	}
	if err := db.Create(&session).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrOpenSessionExists
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// CloseSession sets the end time and frozen duration of an open session.
// Closing a missing session returns ErrNotFound; closing an already closed one
// returns ErrAlreadyClosed and changes nothing.
func (s *Store) CloseSession(ctx context.Context, sessionID uint, end time.Time) (*models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var session models.Session
	if err := db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session #%d: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("load session #%d: %w", sessionID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("session #%d: %w", sessionID, ErrAlreadyClosed)
	}

	end = end.UTC()
	minutes := models.DurationMinutesBetween(session.StartTime, end)

	res := db.Model(&models.Session{}).
		Where("id = ? AND end_time IS NULL", sessionID).
		Updates(map[string]any{
			"end_time":         end,
			"duration_minutes": minutes,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("close session #%d: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with another close.
		return nil, fmt.Errorf("session #%d: %w", sessionID, ErrAlreadyClosed)
	}

	session.EndTime = &end
	session.DurationMinutes = &minutes
	return &session, nil
}

// GetSession returns a session by ID
func (s *Store) GetSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var session models.Session
	if err := db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session #%d: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

// FindOpenSession returns the user's open session, most recent start first.
// No open session is not an error: it returns nil, nil.
func (s *Store) FindOpenSession(ctx context.Context, userID int64) (*models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var session models.Session
	err := db.Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return &session, nil
}

// ListOpenSessions returns every open session across all users.
func (s *Store) ListOpenSessions(ctx context.Context) ([]models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var sessions []models.Session
	if err := db.Where("end_time IS NULL").Order("start_time ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	return sessions, nil
}

// ListSessions returns all sessions of a user ordered by start time.
func (s *Store) ListSessions(ctx context.Context, userID int64) ([]models.Session, error) {
	db, cancel := s.op(ctx)
	defer cancel()

	var sessions []models.Session
	if err := db.Where("user_id = ?", userID).Order("start_time ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
