package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/deepwork/internal/bot"
	"github.com/balkashynov/deepwork/internal/logging"
	"github.com/balkashynov/deepwork/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <report|birthday>",
	Short: "Fire a daily notification now",
	Long: `Fire the daily report or the birthday message for ADMIN_USER_ID right away.
With --dry-run the message is printed instead of sent.

Examples:
  deepwork notify report --dry-run
  deepwork notify birthday`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"report", "birthday"},
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		var sender notifier.Sender = printSender{}
		if !dryRun {
			if err := a.cfg.RequireTelegram(); err != nil {
				return err
			}
			tg, err := bot.NewTelegram(a.cfg.TelegramToken, nil, logging.Component(a.log, "telegram"))
			if err != nil {
				return err
			}
			sender = tg
		}
		n := notifier.New(a.ledger, sender, a.cfg.AdminUserID, notifier.Schedule{Location: a.cfg.Location}, logging.Component(a.log, "notifier"))

		var sent bool
		var err error
		switch args[0] {
		case "report":
			sent, err = n.SendReport(cmd.Context())
		case "birthday":
			sent, err = n.SendBirthday(cmd.Context())
		default:
			return fmt.Errorf("unknown notification %q (want report or birthday)", args[0])
		}
		if err != nil {
			return err
		}
		if !sent {
			fmt.Println("Nothing to send.")
		} else if !dryRun {
			fmt.Println("✅ Sent.")
		}
		return nil
	}),
}

// printSender writes messages to stdout.
type printSender struct{}

func (printSender) Send(_ context.Context, chatID int64, text string) error {
	fmt.Printf("To %d:\n%s\n", chatID, text)
	return nil
}

func init() {
	notifyCmd.Flags().Bool("dry-run", false, "Print the message instead of sending it")
}
