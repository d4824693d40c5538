package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/parser"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deep work totals for a day",
	Long: `Show the deep work total and session count for today or a given day.

Examples:
  deepwork stats
  deepwork stats --date 16.03.2024 --sessions`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		day := a.ledger.Now()
		if raw, _ := cmd.Flags().GetString("date"); raw != "" {
			if day, err = dayIn(raw, a.ledger.Location()); err != nil {
				return err
			}
		}

		stats, err := a.ledger.StatsOn(cmd.Context(), userID, day)
		if err != nil {
			return err
		}
		fmt.Printf("📊 Deep work on %s\n", parser.FormatDate(stats.Date))
		fmt.Printf("⏱  Total: %dh %dm\n", stats.Hours, stats.Minutes)
		fmt.Printf("🔄 Sessions: %d\n", stats.SessionCount)

		showSessions, _ := cmd.Flags().GetBool("sessions")
		if !showSessions {
			return nil
		}

		history, err := a.ledger.History(cmd.Context(), userID)
		if err != nil {
			return err
		}
		key := models.DateKey(stats.Date)
		fmt.Println()
		for _, s := range history {
			if s.IsOpen() {
				if models.DateKey(s.StartTime.In(a.ledger.Location())) == key {
					fmt.Printf("  #%-4d %s - ...    running\n", s.ID, s.StartTime.In(a.ledger.Location()).Format("15:04"))
				}
				continue
			}
			// Sessions count towards the day they were closed on.
			if models.DateKey(s.EndTime.In(a.ledger.Location())) != key {
				continue
			}
			fmt.Printf("  #%-4d %s - %s  %s\n",
				s.ID,
				s.StartTime.In(a.ledger.Location()).Format("15:04"),
				s.EndTime.In(a.ledger.Location()).Format("15:04"),
				models.FormatMinutes(s.Minutes()))
		}
		return nil
	}),
}

// dayIn parses a DD.MM.YYYY day as noon in loc, which keeps the calendar
// day stable under any offset.
func dayIn(raw string, loc *time.Location) (time.Time, error) {
	d, err := parser.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
}

func init() {
	statsCmd.Flags().String("date", "", "Day to show, DD.MM.YYYY (default today)")
	statsCmd.Flags().Bool("sessions", false, "List the sessions counted on that day")
	addUserFlag(statsCmd)
}
