package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/deepwork/internal/models"
)

// RunTimerTUI shows the user's running session until it is stopped with s or
// left running with esc/q.
func RunTimerTUI(ctx context.Context, l TimerLedger, userID int64) error {
	session, err := l.Status(ctx, userID)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Println("⚠️  No active deep work session. Use 'deepwork start' first.")
		return nil
	}
	today, err := l.TodayStats(ctx, userID)
	if err != nil {
		return err
	}

	stop := func() (*models.Session, error) { return l.Stop(ctx, userID) }
	model := NewTimerModel(session, today, l.Location(), l.Now, stop)

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	m := final.(TimerModel)
	switch {
	case m.err != nil:
		return fmt.Errorf("failed to stop session: %w", m.err)
	case m.stopped != nil:
		fmt.Printf("⏹️  Deep work session finished: %s\n", models.FormatMinutes(m.stopped.Minutes()))
	default:
		fmt.Println("\n💡 The session is still running.")
		fmt.Println("   Use 'deepwork status' to check it or 'deepwork stop' to stop it.")
	}
	return nil
}

// RunBirthdayTUI prompts for a birth date. It returns "" when cancelled.
func RunBirthdayTUI(current string) (string, error) {
	final, err := tea.NewProgram(NewBirthdayModel(current)).Run()
	if err != nil {
		return "", err
	}
	return final.(BirthdayModel).Value(), nil
}
