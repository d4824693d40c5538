package notifier

import (
	"fmt"
	"strings"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/parser"
)

// Tier grades a day's total deep work.
type Tier int

const (
	TierD Tier = iota // under 2h
	TierC             // 2h+
	TierB             // 3h+
	TierA             // 4h+, the daily goal
)

// TierFor picks the encouragement tier for totalMinutes.
func TierFor(totalMinutes int) Tier {
	switch {
	case totalMinutes >= 240:
		return TierA
	case totalMinutes >= 180:
		return TierB
	case totalMinutes >= 120:
		return TierC
	default:
		return TierD
	}
}

func (t Tier) String() string {
	return [...]string{"D", "C", "B", "A"}[t]
}

// Message is the encouragement line appended to the daily report.
func (t Tier) Message() string {
	switch t {
	case TierA:
		return "🎉 Excellent day! You hit your goal!"
	case TierB:
		return "👍 Good result! Keep it up!"
	case TierC:
		return "👌 Not bad! Try for a bit more tomorrow."
	default:
		return "💪 Tomorrow is a new day! Set a goal and reach it!"
	}
}

// ReportMessage composes the daily report. ok is false when nothing was
// tracked that day, in which case no message is sent.
func ReportMessage(stats ledger.Stats) (text string, ok bool) {
	if stats.TotalMinutes <= 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("📊 Daily deep work report\n")
	fmt.Fprintf(&b, "📅 %s\n\n", parser.FormatDate(stats.Date))
	fmt.Fprintf(&b, "⏱ Total time: %dh %dm\n", stats.Hours, stats.Minutes)
	fmt.Fprintf(&b, "🔄 Sessions: %d\n\n", stats.SessionCount)
	b.WriteString(TierFor(stats.TotalMinutes).Message())
	return b.String(), true
}

// BirthdayMessage composes the morning days-lived message.
func BirthdayMessage(daysLived int) string {
	return fmt.Sprintf(
		"🌅 Good morning!\n\n"+
			"🎂 Today you have lived on this planet for %d days\n\n"+
			"💫 Every new day is a chance to get better!\n"+
			"🎯 Start the day with deep work and reach your goals!",
		daysLived,
	)
}
