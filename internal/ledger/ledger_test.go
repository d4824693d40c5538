package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/deepwork/internal/db"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/testutil"
)

var moscow = time.FixedZone("MSK", 3*60*60)

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *db.Store, *testutil.Clock) {
	t.Helper()
	store := testutil.NewTestStore(t)
	clock := testutil.NewClock(time.Date(2024, 3, 16, 9, 0, 0, 0, moscow))
	opts = append([]Option{WithClock(clock.Now), WithLocation(moscow)}, opts...)
	return New(store, opts...), store, clock
}

func openCount(t *testing.T, store *db.Store, userID int64) int {
	t.Helper()
	sessions, err := store.ListSessions(context.Background(), userID)
	require.NoError(t, err)
	n := 0
	for _, s := range sessions {
		if s.IsOpen() {
			n++
		}
	}
	return n
}

func TestStartStop_SingleSession(t *testing.T) {
	l, _, clock := newTestLedger(t)
	ctx := context.Background()

	started, err := l.Start(ctx, 1)
	require.NoError(t, err)
	assert.True(t, started.IsOpen())

	clock.Advance(47*time.Minute + 59*time.Second)
	closed, err := l.Stop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, started.ID, closed.ID)
	assert.Equal(t, 47, closed.Minutes())

	stats, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionCount)
	assert.Equal(t, 47, stats.TotalMinutes)
	assert.Equal(t, 0, stats.Hours)
	assert.Equal(t, 47, stats.Minutes)
}

func TestStart_Twice_Conflict(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := l.Start(ctx, 1)
	require.NoError(t, err)

	running, err := l.Start(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionAlreadyOpen)
	assert.True(t, IsConflict(err))
	require.NotNil(t, running)
	assert.Equal(t, first.ID, running.ID)

	sessions, err := store.ListSessions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestStop_Twice_Conflict(t *testing.T) {
	l, _, clock := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Stop(ctx, 1)
	assert.ErrorIs(t, err, ErrNoOpenSession)

	_, err = l.Start(ctx, 1)
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = l.Stop(ctx, 1)
	require.NoError(t, err)

	before, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)

	_, err = l.Stop(ctx, 1)
	assert.ErrorIs(t, err, ErrNoOpenSession)

	after, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, after.SessionCount)
}

func TestStop_ZeroMinuteSession(t *testing.T) {
	l, _, clock := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Start(ctx, 1)
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	closed, err := l.Stop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, closed.Minutes())

	stats, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionCount)
	assert.Equal(t, 0, stats.TotalMinutes)
}

func TestStop_AttributedToCloseDate(t *testing.T) {
	l, _, clock := newTestLedger(t)
	ctx := context.Background()
	clock.Set(time.Date(2024, 3, 16, 23, 50, 0, 0, moscow))

	_, err := l.Start(ctx, 1)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	_, err = l.Stop(ctx, 1)
	require.NoError(t, err)

	prev, err := l.StatsOn(ctx, 1, time.Date(2024, 3, 16, 12, 0, 0, 0, moscow))
	require.NoError(t, err)
	assert.Zero(t, prev.SessionCount)

	today, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, today.SessionCount)
	assert.Equal(t, 20, today.TotalMinutes)
	assert.Equal(t, "2024-03-17", models.DateKey(today.Date))
}

func TestStop_RollupFailureRollsBack(t *testing.T) {
	store := testutil.NewTestStore(t)
	clock := testutil.NewClock(time.Date(2024, 3, 16, 9, 0, 0, 0, moscow))
	boom := errors.New("disk full")
	l := New(store,
		WithClock(clock.Now),
		WithLocation(moscow),
		WithUnitOfWork(&testutil.FailingRollupUoW{Store: store, Err: boom}),
	)
	ctx := context.Background()

	started, err := l.Start(ctx, 1)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	_, err = l.Stop(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, boom)

	fetched, err := store.GetSession(ctx, started.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsOpen(), "session must stay open after a failed stop")
	assert.Nil(t, fetched.DurationMinutes)

	stats, err := l.TodayStats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, stats.SessionCount)

	// The user can still stop it once storage recovers.
	l.uow = store
	closed, err := l.Stop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, closed.Minutes())
}

func TestIndex_RebuildAfterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restart.db")
	clock := testutil.NewClock(time.Date(2024, 3, 16, 9, 0, 0, 0, moscow))
	ctx := context.Background()

	first := New(testutil.OpenTestStore(t, path), WithClock(clock.Now), WithLocation(moscow))
	started, err := first.Start(ctx, 5)
	require.NoError(t, err)

	restarted := New(testutil.OpenTestStore(t, path), WithClock(clock.Now), WithLocation(moscow))
	require.NoError(t, restarted.RebuildIndex(ctx))
	assert.Equal(t, 1, restarted.index.len())

	_, err = restarted.Start(ctx, 5)
	assert.ErrorIs(t, err, ErrSessionAlreadyOpen)

	clock.Advance(90 * time.Minute)
	closed, err := restarted.Stop(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, started.ID, closed.ID)
	assert.Equal(t, 0, restarted.index.len())
}

func TestIndex_ColdIndexFallsBackToStore(t *testing.T) {
	l, store, clock := newTestLedger(t)
	ctx := context.Background()

	open, err := store.CreateSession(ctx, 9, clock.Now())
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	closed, err := l.Stop(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, open.ID, closed.ID)
	assert.Equal(t, 15, closed.Minutes())
}

func TestIndex_StaleEntryIgnored(t *testing.T) {
	l, store, clock := newTestLedger(t)
	ctx := context.Background()

	s, err := l.Start(ctx, 3)
	require.NoError(t, err)

	// Another process closes the session behind the ledger's back.
	_, err = store.CloseSession(ctx, s.ID, clock.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = l.Stop(ctx, 3)
	assert.ErrorIs(t, err, ErrNoOpenSession)

	_, err = l.Start(ctx, 3)
	assert.NoError(t, err)
}

func TestStart_ConcurrentDoubleTap(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	const taps = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Start(ctx, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSessionAlreadyOpen):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, taps-1, conflicts)
	assert.Equal(t, 1, openCount(t, store, 1))
}

func TestRollupConsistency_RandomInterleavings(t *testing.T) {
	l, store, clock := newTestLedger(t)
	ctx := context.Background()
	users := []int64{1, 2, 3, 4}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(u))
			for i := 0; i < 40; i++ {
				var err error
				if rng.Intn(2) == 0 {
					_, err = l.Start(ctx, u)
				} else {
					_, err = l.Stop(ctx, u)
				}
				if err != nil && !IsConflict(err) {
					t.Errorf("user %d: %v", u, err)
				}
				clock.Advance(time.Duration(rng.Intn(400)) * time.Second)
			}
		}(u)
	}
	wg.Wait()

	for _, u := range users {
		sessions, err := store.ListSessions(ctx, u)
		require.NoError(t, err)

		open := 0
		type agg struct{ minutes, count int }
		want := map[string]agg{}
		for _, s := range sessions {
			if s.IsOpen() {
				open++
				continue
			}
			key := models.DateKey(s.EndTime.In(moscow))
			a := want[key]
			a.minutes += s.Minutes()
			a.count++
			want[key] = a
		}
		assert.LessOrEqual(t, open, 1, "user %d has more than one open session", u)

		for date, a := range want {
			r, err := store.GetDailyRollup(ctx, u, date)
			require.NoError(t, err)
			assert.Equal(t, a.minutes, r.TotalMinutes, fmt.Sprintf("user %d %s minutes", u, date))
			assert.Equal(t, a.count, r.SessionCount, fmt.Sprintf("user %d %s count", u, date))
		}
	}
}

func TestSetBirthday(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	got, err := l.SetBirthday(ctx, 1, "15.03.1990")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = l.SetBirthday(ctx, 1, "2024-03-15")
	assert.ErrorIs(t, err, ErrValidation)

	stored, ok, err := l.Birthday(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC), stored)

	_, ok, err = l.Birthday(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDaysLived(t *testing.T) {
	l, _, clock := newTestLedger(t)
	birthday := time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)

	clock.Set(time.Date(2024, 3, 15, 6, 0, 0, 0, moscow))
	assert.Equal(t, 12419, l.DaysLived(birthday))

	clock.Set(time.Date(2024, 3, 16, 6, 0, 0, 0, moscow))
	assert.Equal(t, 12420, l.DaysLived(birthday))

	// 02:30 MSK on the 16th is still the 15th in UTC; "today" follows the ledger zone.
	clock.Set(time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, 12420, l.DaysLived(birthday))
}

func TestStatus(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	s, err := l.Status(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, s)

	started, err := l.Start(ctx, 1)
	require.NoError(t, err)

	s, err = l.Status(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, started.ID, s.ID)
}

func TestUserLocks_ReleaseEntries(t *testing.T) {
	locks := newUserLocks()
	unlockA := locks.lock(1)
	unlockB := locks.lock(2)
	assert.Len(t, locks.locks, 2)
	unlockA()
	unlockB()
	assert.Empty(t, locks.locks)
}
