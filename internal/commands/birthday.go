package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/parser"
	"github.com/balkashynov/deepwork/internal/tui"
)

var birthdayCmd = &cobra.Command{
	Use:   "birthday",
	Short: "Manage your birth date",
}

var birthdaySetCmd = &cobra.Command{
	Use:   "set [DD.MM.YYYY]",
	Short: "Set your birth date",
	Long: `Set your birth date. Without an argument an input prompt is opened.

Examples:
  deepwork birthday set 15.03.1990
  deepwork birthday set`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			current := ""
			if b, ok, err := a.ledger.Birthday(cmd.Context(), userID); err == nil && ok {
				current = parser.FormatDate(b)
			}
			if text, err = tui.RunBirthdayTUI(current); err != nil {
				return err
			}
			if text == "" {
				fmt.Println("❌ Cancelled.")
				return nil
			}
		}

		birthday, err := a.ledger.SetBirthday(cmd.Context(), userID, text)
		if errors.Is(err, ledger.ErrValidation) {
			return fmt.Errorf("invalid date %q, use DD.MM.YYYY", text)
		}
		if err != nil {
			return err
		}
		fmt.Printf("✅ Birth date saved: %s\n", parser.FormatDate(birthday))
		fmt.Printf("🌍 You have lived on this planet for %d days\n", a.ledger.DaysLived(birthday))
		return nil
	}),
}

var birthdayGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your birth date and days lived",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		userID, err := a.userID(cmd)
		if err != nil {
			return err
		}

		birthday, ok, err := a.ledger.Birthday(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No birth date set. Use 'deepwork birthday set DD.MM.YYYY'.")
			return nil
		}
		fmt.Printf("🎂 Birth date: %s\n", parser.FormatDate(birthday))
		fmt.Printf("🌍 Days lived: %d\n", a.ledger.DaysLived(birthday))
		return nil
	}),
}

func init() {
	birthdayCmd.AddCommand(birthdaySetCmd, birthdayGetCmd)
	addUserFlag(birthdaySetCmd)
	addUserFlag(birthdayGetCmd)
}
