package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/deepwork/internal/config"
	"github.com/balkashynov/deepwork/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyClosed     = errors.New("session already closed")
	ErrOpenSessionExists = errors.New("user already has an open session")
)

const defaultTimeout = 5 * time.Second

// Store is the persistent store for sessions, daily rollups and birthdays.
// A Store obtained inside WithinTx is bound to that transaction.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects to the configured backend and runs migrations.
func Open(cfg config.DBConfig, debug bool) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite, "":
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logMode := logger.Silent // Quiet by default
	if debug {
		logMode = logger.Info
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver != config.DriverPostgres {
		// SQLite allows a single writer; serialising on one connection turns
		// lock contention into queueing bounded by the operation deadline.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &Store{db: gdb, timeout: timeout}

	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// migrate creates/updates the database schema. Safe to run on every start.
func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&models.Birthday{},
		&models.Session{},
		&models.DailyRollup{},
	); err != nil {
		return err
	}
	// At most one open session per user, enforced by the database as well.
	return s.db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_deepwork_sessions_open " +
			"ON deepwork_sessions (user_id) WHERE end_time IS NULL",
	).Error
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// op scopes a single store operation to the configured deadline.
func (s *Store) op(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
