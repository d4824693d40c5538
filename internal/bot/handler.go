package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/parser"
)

// Ledger is what the chat handler needs from the session ledger.
type Ledger interface {
	Start(ctx context.Context, userID int64) (*models.Session, error)
	Stop(ctx context.Context, userID int64) (*models.Session, error)
	TodayStats(ctx context.Context, userID int64) (ledger.Stats, error)
	SetBirthday(ctx context.Context, userID int64, text string) (time.Time, error)
	DaysLived(birthday time.Time) int
	Location() *time.Location
}

// Button is an inline button that triggers an action.
type Button struct {
	Text   string
	Action Action
}

// Reply is a transport-neutral outbound message.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

var (
	btnStart    = Button{"🎯 Start deep work", ActionStartSession}
	btnStop     = Button{"⏹ Stop deep work", ActionStopSession}
	btnStats    = Button{"📊 Today's stats", ActionTodayStats}
	btnBirthday = Button{"🎂 Set birth date", ActionSetBirthdayPrompt}
	btnBack     = Button{"🔙 Back", ActionBack}

	mainKeyboard = [][]Button{{btnStart, btnStop}, {btnStats, btnBirthday}}
	backKeyboard = [][]Button{{btnBack}}
)

// Handler turns chat actions into ledger calls and replies. Every action gets
// a reply; ledger errors are mapped to short messages and never shown raw.
type Handler struct {
	ledger     Ledger
	birthdayAt string
	log        zerolog.Logger
}

// NewHandler creates a handler. birthdayAt is the HH:MM shown to users when
// they register a birthday.
func NewHandler(l Ledger, birthdayAt string, log zerolog.Logger) *Handler {
	return &Handler{ledger: l, birthdayAt: birthdayAt, log: log}
}

// Welcome is the reply to /start.
func (h *Handler) Welcome() Reply {
	return Reply{
		Text: "🚀 Welcome to Deep Work Tracker!\n\n" +
			"This bot helps you track the time you spend in deep work.\n\n" +
			"Choose an action:",
		Keyboard: mainKeyboard,
	}
}

// MainMenu is shown when navigating back.
func (h *Handler) MainMenu() Reply {
	return Reply{
		Text:     "🚀 Deep Work Tracker main menu\n\nChoose an action:",
		Keyboard: mainKeyboard,
	}
}

// Handle dispatches one action for userID. text is only used by
// ActionBirthdayText.
func (h *Handler) Handle(ctx context.Context, userID int64, action Action, text string) Reply {
	h.log.Debug().Int64("user_id", userID).Stringer("action", action).Msg("handling action")

	switch action {
	case ActionStartSession:
		return h.start(ctx, userID)
	case ActionStopSession:
		return h.stop(ctx, userID)
	case ActionTodayStats:
		return h.todayStats(ctx, userID)
	case ActionSetBirthdayPrompt:
		return h.askBirthday()
	case ActionBirthdayText:
		return h.birthdayText(ctx, userID, text)
	default:
		return h.MainMenu()
	}
}

func (h *Handler) start(ctx context.Context, userID int64) Reply {
	session, err := h.ledger.Start(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrSessionAlreadyOpen):
		text := "⚠️ You already have an active deep work session!\n"
		if session != nil {
			text += fmt.Sprintf("It has been running since %s.\n", h.clock(session.StartTime))
		}
		return Reply{Text: text + "Stop the current session first.", Keyboard: backKeyboard}
	case err != nil:
		h.log.Error().Err(err).Int64("user_id", userID).Msg("start failed")
		return Reply{Text: "❌ Could not start the session. Please try again.", Keyboard: backKeyboard}
	}

	return Reply{
		Text: fmt.Sprintf("🎯 Deep work session started at %s\n\n", h.clock(session.StartTime)) +
			"The clock is running... ⏰\n" +
			"Press 'Stop deep work' when you are done.",
		Keyboard: [][]Button{{btnStop, btnBack}},
	}
}

func (h *Handler) stop(ctx context.Context, userID int64) Reply {
	session, err := h.ledger.Stop(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrNoOpenSession):
		return Reply{
			Text:     "⚠️ You don't have an active deep work session.\nStart a new session first.",
			Keyboard: backKeyboard,
		}
	case err != nil:
		h.log.Error().Err(err).Int64("user_id", userID).Msg("stop failed")
		return Reply{Text: "❌ Could not stop the session. It is still running, please try again.", Keyboard: backKeyboard}
	}

	var b strings.Builder
	b.WriteString("✅ Deep work session finished!\n\n")
	fmt.Fprintf(&b, "⏱ This session: %s\n\n", models.FormatMinutes(session.Minutes()))
	if stats, err := h.ledger.TodayStats(ctx, userID); err == nil {
		b.WriteString("📊 Today so far:\n")
		fmt.Fprintf(&b, "⏱ Total time: %dh %dm\n", stats.Hours, stats.Minutes)
		fmt.Fprintf(&b, "🔄 Sessions: %d\n\n", stats.SessionCount)
	}
	b.WriteString("Great work! 🎉")

	return Reply{
		Text:     b.String(),
		Keyboard: [][]Button{{btnStart, btnStats}, {btnBack}},
	}
}

func (h *Handler) todayStats(ctx context.Context, userID int64) Reply {
	stats, err := h.ledger.TodayStats(ctx, userID)
	if err != nil {
		return Reply{Text: "❌ Could not load your stats right now. Please try again.", Keyboard: backKeyboard}
	}
	return Reply{
		Text: fmt.Sprintf("📊 Today's stats (%s):\n\n", parser.FormatDate(stats.Date)) +
			fmt.Sprintf("⏱ Total deep work: %dh %dm\n", stats.Hours, stats.Minutes) +
			fmt.Sprintf("🔄 Sessions: %d\n\n", stats.SessionCount) +
			"Goal: 4-6 hours of deep work a day 🎯",
		Keyboard: [][]Button{{btnStart, btnStop}, {btnBack}},
	}
}

func (h *Handler) askBirthday() Reply {
	return Reply{
		Text: "🎂 Please send your birth date in the format DD.MM.YYYY\n\n" +
			"For example: 15.03.1990\n\n" +
			"It is used to count the days you have lived.",
		Keyboard: backKeyboard,
	}
}

func (h *Handler) birthdayText(ctx context.Context, userID int64, text string) Reply {
	birthday, err := h.ledger.SetBirthday(ctx, userID, text)
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return Reply{
			Text:     "❌ Invalid date format. Use DD.MM.YYYY\nFor example: 15.03.1990",
			Keyboard: backKeyboard,
		}
	case err != nil:
		h.log.Error().Err(err).Int64("user_id", userID).Msg("saving birthday failed")
		return Reply{Text: "❌ Could not save your birth date. Please try again.", Keyboard: backKeyboard}
	}

	return Reply{
		Text: "✅ Birth date saved!\n\n" +
			fmt.Sprintf("🎂 Your birthday: %s\n", parser.FormatDate(birthday)) +
			fmt.Sprintf("🌍 You have lived on this planet for %d days\n\n", h.ledger.DaysLived(birthday)) +
			fmt.Sprintf("Every morning at %s you will get an update on the days you have lived!", h.birthdayAt),
		Keyboard: [][]Button{{btnStart, btnStats}, {btnBack}},
	}
}

func (h *Handler) clock(t time.Time) string {
	return t.In(h.ledger.Location()).Format("15:04")
}
