package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/tui"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a deep work session",
	Long: `Start a deep work session. Opens the interactive timer by default, use --no-ui for a plain start.

Examples:
  deepwork start             # Start and watch the timer
  deepwork start --no-ui     # Start without UI
  deepwork start --user 42   # Start for another account`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		session, err := a.ledger.Start(cmd.Context(), userID)
		switch {
		case errors.Is(err, ledger.ErrSessionAlreadyOpen):
			fmt.Println("⚠️  A deep work session is already running")
		case err != nil:
			return err
		default:
			fmt.Printf("🎯 Deep work session started at %s\n", session.StartTime.In(a.ledger.Location()).Format("15:04:05"))
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			return nil
		}
		return tui.RunTimerTUI(cmd.Context(), a.ledger, userID)
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running deep work session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		session, err := a.ledger.Stop(cmd.Context(), userID)
		if errors.Is(err, ledger.ErrNoOpenSession) {
			fmt.Println("No active deep work session")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("⏹️  Deep work session finished: %s\n", models.FormatMinutes(session.Minutes()))
		if stats, err := a.ledger.TodayStats(cmd.Context(), userID); err == nil {
			fmt.Printf("📊 Today: %dh %dm in %d sessions\n", stats.Hours, stats.Minutes, stats.SessionCount)
		}
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running deep work session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		session, err := a.ledger.Status(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("No active deep work session")
			return nil
		}

		elapsed := a.ledger.Now().Sub(session.StartTime)
		fmt.Printf("⏱️  Deep work in progress\n")
		fmt.Printf("Started at: %s\n", session.StartTime.In(a.ledger.Location()).Format("15:04:05"))
		fmt.Printf("Elapsed time: %s\n", formatDuration(elapsed))
		return nil
	}),
}

func init() {
	startCmd.Flags().Bool("no-ui", false, "Start without the interactive timer")
	for _, c := range []*cobra.Command{startCmd, stopCmd, statusCmd} {
		addUserFlag(c)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
}
