package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/testutil"
)

const user int64 = 1001

var msk = time.FixedZone("MSK", 3*60*60)

type fakeLedger struct {
	startErr    error
	stopErr     error
	statsErr    error
	birthdayErr error
	open        *models.Session
}

func (f *fakeLedger) Start(context.Context, int64) (*models.Session, error) {
	return f.open, f.startErr
}

func (f *fakeLedger) Stop(context.Context, int64) (*models.Session, error) {
	return nil, f.stopErr
}

func (f *fakeLedger) TodayStats(context.Context, int64) (ledger.Stats, error) {
	return ledger.Stats{}, f.statsErr
}

func (f *fakeLedger) SetBirthday(context.Context, int64, string) (time.Time, error) {
	return time.Time{}, f.birthdayErr
}

func (f *fakeLedger) DaysLived(time.Time) int     { return 0 }
func (f *fakeLedger) Location() *time.Location { return msk }

func newLedgerHandler(t *testing.T) (*Handler, *testutil.Clock) {
	t.Helper()
	store := testutil.NewTestStore(t)
	clock := testutil.NewClock(time.Date(2024, 3, 16, 10, 0, 0, 0, msk))
	l := ledger.New(store, ledger.WithClock(clock.Now), ledger.WithLocation(msk))
	return NewHandler(l, "06:00", zerolog.Nop()), clock
}

func hasButton(r Reply, a Action) bool {
	for _, row := range r.Keyboard {
		for _, b := range row {
			if b.Action == a {
				return true
			}
		}
	}
	return false
}

func TestHandle_StartStopStats(t *testing.T) {
	h, clock := newLedgerHandler(t)
	ctx := context.Background()

	r := h.Handle(ctx, user, ActionStartSession, "")
	assert.Contains(t, r.Text, "started at 10:00")
	assert.True(t, hasButton(r, ActionStopSession))

	clock.Advance(95*time.Minute + 30*time.Second)
	r = h.Handle(ctx, user, ActionStopSession, "")
	assert.Contains(t, r.Text, "This session: 1h 35m")
	assert.Contains(t, r.Text, "Total time: 1h 35m")
	assert.Contains(t, r.Text, "Sessions: 1")

	r = h.Handle(ctx, user, ActionTodayStats, "")
	assert.Contains(t, r.Text, "16.03.2024")
	assert.Contains(t, r.Text, "Total deep work: 1h 35m")
	assert.Contains(t, r.Text, "Goal: 4-6 hours")
}

func TestHandle_Conflicts(t *testing.T) {
	h, _ := newLedgerHandler(t)
	ctx := context.Background()

	r := h.Handle(ctx, user, ActionStopSession, "")
	assert.Contains(t, r.Text, "don't have an active")

	h.Handle(ctx, user, ActionStartSession, "")
	r = h.Handle(ctx, user, ActionStartSession, "")
	assert.Contains(t, r.Text, "already have an active")
	assert.Contains(t, r.Text, "since 10:00")
	assert.True(t, hasButton(r, ActionBack))
}

func TestHandle_Birthday(t *testing.T) {
	h, _ := newLedgerHandler(t)
	ctx := context.Background()

	r := h.Handle(ctx, user, ActionSetBirthdayPrompt, "")
	assert.Contains(t, r.Text, "DD.MM.YYYY")

	r = h.Handle(ctx, user, ActionBirthdayText, "15.03.1990")
	assert.Contains(t, r.Text, "Birth date saved")
	assert.Contains(t, r.Text, "15.03.1990")
	assert.Contains(t, r.Text, "for 12420 days")
	assert.Contains(t, r.Text, "06:00")

	r = h.Handle(ctx, user, ActionBirthdayText, "1990-03-15")
	assert.Contains(t, r.Text, "Invalid date format")
}

func TestHandle_BackAndUnknown(t *testing.T) {
	h := NewHandler(&fakeLedger{}, "06:00", zerolog.Nop())
	for _, a := range []Action{ActionBack, ActionUnknown} {
		r := h.Handle(context.Background(), user, a, "")
		assert.Equal(t, h.MainMenu(), r)
		assert.True(t, hasButton(r, ActionStartSession))
		assert.True(t, hasButton(r, ActionSetBirthdayPrompt))
	}
}

func TestHandle_StoreErrorsAreNotLeaked(t *testing.T) {
	raw := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	storeErr := fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, raw)
	h := NewHandler(&fakeLedger{
		startErr:    storeErr,
		stopErr:     storeErr,
		statsErr:    storeErr,
		birthdayErr: storeErr,
	}, "06:00", zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		action Action
		want   string
	}{
		{ActionStartSession, "Could not start"},
		{ActionStopSession, "still running"},
		{ActionTodayStats, "Could not load your stats"},
		{ActionBirthdayText, "Could not save your birth date"},
	}
	for _, tt := range tests {
		r := h.Handle(ctx, user, tt.action, "15.03.1990")
		assert.Contains(t, r.Text, tt.want, tt.action.String())
		assert.NotContains(t, r.Text, "10.0.0.5", tt.action.String())
		require.NotEmpty(t, r.Keyboard)
	}
}

func TestInlineKeyboard(t *testing.T) {
	_, ok := inlineKeyboard(nil)
	assert.False(t, ok)

	markup, ok := inlineKeyboard(mainKeyboard)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, btnStart.Text, first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "start_deepwork", *first.CallbackData)
}
