package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/deepwork/internal/models"
)

// Repo is the set of store operations. Both the root Store and a
// transaction-bound Store satisfy it.
type Repo interface {
	CreateSession(ctx context.Context, userID int64, start time.Time) (*models.Session, error)
	CloseSession(ctx context.Context, sessionID uint, end time.Time) (*models.Session, error)
	GetSession(ctx context.Context, sessionID uint) (*models.Session, error)
	FindOpenSession(ctx context.Context, userID int64) (*models.Session, error)
	ListOpenSessions(ctx context.Context) ([]models.Session, error)
	ListSessions(ctx context.Context, userID int64) ([]models.Session, error)

	IncrementDailyRollup(ctx context.Context, userID int64, date string, minutes int) error
	GetDailyRollup(ctx context.Context, userID int64, date string) (models.DailyRollup, error)

	SetBirthday(ctx context.Context, userID int64, birthday time.Time) error
	GetBirthday(ctx context.Context, userID int64) (time.Time, bool, error)
}

// UnitOfWork runs fn inside one transaction. fn receives a Repo bound to the
// transaction; returning an error rolls every write back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error
}

var (
	_ Repo       = (*Store)(nil)
	_ UnitOfWork = (*Store)(nil)
)

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, timeout: s.timeout})
	})
}
