package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/deepwork/internal/db"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/parser"
)

// Stats is a user's aggregate for one calendar day.
type Stats struct {
	Date         time.Time
	TotalMinutes int
	Hours        int
	Minutes      int
	SessionCount int
}

func statsFromRollup(date time.Time, r models.DailyRollup) Stats {
	return Stats{
		Date:         date,
		TotalMinutes: r.TotalMinutes,
		Hours:        r.Hours(),
		Minutes:      r.RemainderMinutes(),
		SessionCount: r.SessionCount,
	}
}

// Ledger owns the start/stop protocol. It is the only writer of sessions and
// daily rollups. Operations for one user are serialised; different users run
// in parallel.
type Ledger struct {
	repo  db.Repo
	uow   db.UnitOfWork
	log   zerolog.Logger
	now   func() time.Time
	loc   *time.Location
	locks *userLocks
	index *openIndex
}

type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the timezone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithUnitOfWork overrides the transaction runner used by Stop.
func WithUnitOfWork(uow db.UnitOfWork) Option {
	return func(l *Ledger) { l.uow = uow }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a ledger over store. Call RebuildIndex once at startup to warm
// the open-session index; a cold index still works, it just queries more.
func New(store *db.Store, opts ...Option) *Ledger {
	l := &Ledger{
		repo:  store,
		uow:   store,
		log:   zerolog.Nop(),
		now:   time.Now,
		loc:   time.Local,
		locks: newUserLocks(),
		index: newOpenIndex(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the current time in the ledger's timezone.
func (l *Ledger) Now() time.Time {
	return l.now().In(l.loc)
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

// RebuildIndex replaces the open-session index with the open sessions found
// in the store.
func (l *Ledger) RebuildIndex(ctx context.Context) error {
	sessions, err := l.repo.ListOpenSessions(ctx)
	if err != nil {
		return storeErr("rebuild index", err)
	}
	entries := make(map[int64]uint, len(sessions))
	for _, s := range sessions {
		entries[s.UserID] = s.ID
	}
	l.index.reset(entries)
	l.log.Info().Int("open_sessions", len(entries)).Msg("open session index rebuilt")
	return nil
}

// Start opens a new session for userID. When one is already running it writes
// nothing and returns that session together with ErrSessionAlreadyOpen.
func (l *Ledger) Start(ctx context.Context, userID int64) (*models.Session, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	open, err := l.openSession(ctx, userID)
	if err != nil {
		return nil, storeErr("start", err)
	}
	if open != nil {
		return open, ErrSessionAlreadyOpen
	}

	session, err := l.repo.CreateSession(ctx, userID, l.Now())
	if err != nil {
		if errors.Is(err, db.ErrOpenSessionExists) {
			// Opened by another process sharing the database.
			if open, ferr := l.repo.FindOpenSession(ctx, userID); ferr == nil && open != nil {
				l.index.set(userID, open.ID)
				return open, ErrSessionAlreadyOpen
			}
			return nil, ErrSessionAlreadyOpen
		}
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create session")
		return nil, storeErr("start", err)
	}

	l.index.set(userID, session.ID)
	l.log.Info().Int64("user_id", userID).Uint("session_id", session.ID).Msg("session started")
	return session, nil
}

// Stop closes the user's open session and adds it to today's rollup in one
// transaction. On failure neither write is kept and the session stays open.
func (l *Ledger) Stop(ctx context.Context, userID int64) (*models.Session, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	open, err := l.openSession(ctx, userID)
	if err != nil {
		return nil, storeErr("stop", err)
	}
	if open == nil {
		return nil, ErrNoOpenSession
	}

	end := l.Now()
	var closed *models.Session
	err = l.uow.WithinTx(ctx, func(ctx context.Context, tx db.Repo) error {
		s, err := tx.CloseSession(ctx, open.ID, end)
		if err != nil {
			return err
		}
		if err := tx.IncrementDailyRollup(ctx, userID, models.DateKey(end), s.Minutes()); err != nil {
			return err
		}
		closed = s
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrAlreadyClosed) || errors.Is(err, db.ErrNotFound) {
			l.index.delete(userID)
			return nil, ErrNoOpenSession
		}
		l.log.Error().Err(err).Int64("user_id", userID).Uint("session_id", open.ID).Msg("failed to stop session")
		return nil, storeErr("stop", err)
	}

	l.index.delete(userID)
	l.log.Info().
		Int64("user_id", userID).
		Uint("session_id", closed.ID).
		Int("minutes", closed.Minutes()).
		Msg("session stopped")
	return closed, nil
}

// Status returns the user's open session, or nil when none is running.
func (l *Ledger) Status(ctx context.Context, userID int64) (*models.Session, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	open, err := l.openSession(ctx, userID)
	if err != nil {
		return nil, storeErr("status", err)
	}
	return open, nil
}

// openSession consults the index first and the store as the authority.
// Callers hold the user's lock.
func (l *Ledger) openSession(ctx context.Context, userID int64) (*models.Session, error) {
	if id, ok := l.index.get(userID); ok {
		s, err := l.repo.GetSession(ctx, id)
		switch {
		case err == nil && s.IsOpen():
			return s, nil
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return nil, err
		}
		// Closed elsewhere, e.g. from the CLI.
		l.index.delete(userID)
	}

	s, err := l.repo.FindOpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		l.index.set(userID, s.ID)
	}
	return s, nil
}

// TodayStats returns today's rollup for userID. On a store failure it returns
// zero stats together with ErrStoreUnavailable.
func (l *Ledger) TodayStats(ctx context.Context, userID int64) (Stats, error) {
	return l.StatsOn(ctx, userID, l.Now())
}

// StatsOn returns the rollup for the calendar day of date in the ledger's timezone.
func (l *Ledger) StatsOn(ctx context.Context, userID int64, date time.Time) (Stats, error) {
	date = date.In(l.loc)
	r, err := l.repo.GetDailyRollup(ctx, userID, models.DateKey(date))
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to read daily stats")
		return Stats{Date: date}, storeErr("stats", err)
	}
	return statsFromRollup(date, r), nil
}

// SetBirthday parses text as DD.MM.YYYY and stores it. Malformed input
// returns ErrValidation and leaves any stored birthday untouched.
func (l *Ledger) SetBirthday(ctx context.Context, userID int64, text string) (time.Time, error) {
	birthday, err := parser.ParseDate(text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := l.repo.SetBirthday(ctx, userID, birthday); err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to save birthday")
		return time.Time{}, storeErr("set birthday", err)
	}
	l.log.Info().Int64("user_id", userID).Msg("birthday saved")
	return birthday, nil
}

// Birthday returns the stored birthdate; false when none is set.
func (l *Ledger) Birthday(ctx context.Context, userID int64) (time.Time, bool, error) {
	b, ok, err := l.repo.GetBirthday(ctx, userID)
	if err != nil {
		return time.Time{}, false, storeErr("get birthday", err)
	}
	return b, ok, nil
}

// DaysLived returns whole calendar days from birthday to today.
func (l *Ledger) DaysLived(birthday time.Time) int {
	return models.DaysBetween(birthday, l.Now())
}

// History returns every session of userID, open ones included.
func (l *Ledger) History(ctx context.Context, userID int64) ([]models.Session, error) {
	sessions, err := l.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, storeErr("history", err)
	}
	return sessions, nil
}
