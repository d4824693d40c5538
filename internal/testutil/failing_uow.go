package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/balkashynov/deepwork/internal/db"
)

// FailingRollupUoW runs transactions on a real store but hands fn a Repo whose
// IncrementDailyRollup fails. Everything fn wrote before the failure is rolled
// back by the real transaction.
type FailingRollupUoW struct {
	Store *db.Store
	Err   error
}

func (u *FailingRollupUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.Repo) error) error {
	return u.Store.WithinTx(ctx, func(ctx context.Context, tx db.Repo) error {
		return fn(ctx, &failingRollup{Repo: tx, err: u.Err})
	})
}

type failingRollup struct {
	db.Repo
	err error
}

func (f *failingRollup) IncrementDailyRollup(context.Context, int64, string, int) error {
	return f.err
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
