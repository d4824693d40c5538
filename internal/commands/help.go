package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for deepwork",
	Long:  `Display detailed help for all deepwork commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if c, _, err := rootCmd.Find(args); err == nil && c != rootCmd {
				_ = c.Help()
				return
			}
		}
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
██████╗ ███████╗███████╗██████╗ ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗
██╔══██╗██╔════╝██╔════╝██╔══██╗██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝
██║  ██║█████╗  █████╗  ██████╔╝██║ █╗ ██║██║   ██║██████╔╝█████╔╝
██║  ██║██╔══╝  ██╔══╝  ██╔═══╝ ██║███╗██║██║   ██║██╔══██╗██╔═██╗
██████╔╝███████╗███████╗██║     ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗
╚═════╝ ╚══════╝╚══════╝╚═╝      ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝

deepwork - Deep work tracker for Telegram and the terminal

COMMANDS:

  serve                   Run the Telegram bot and the daily notifications

  start                   Start a deep work session
    --no-ui               Start without the interactive timer
  stop                    Stop the running session
  status                  Show the running session

    Timer keys:
      s             Stop and save
      esc/q         Exit, keep the session running

  stats                   Show today's total and session count
    --date                Another day, DD.MM.YYYY
    --sessions            List the sessions counted on that day

  birthday set [date]     Set your birth date (DD.MM.YYYY)
  birthday get            Show your birth date and days lived

  notify report           Send the daily report now
  notify birthday         Send the birthday message now
    --dry-run             Print instead of sending

  version                 Print version information
  help                    Show this help

COMMON FLAGS:

  --env-file              dotenv files to load (default .env.local, .env)
  --user                  Telegram user ID (default ADMIN_USER_ID)

ENVIRONMENT:

  TELEGRAM_TOKEN          Bot token, required by serve
  ADMIN_USER_ID           Receives the daily report and birthday messages
  DB_DRIVER               sqlite (default) or postgres
  DB_PATH                 SQLite file (default ~/.deepwork/deepwork.db)
  DB_HOST DB_PORT DB_NAME DB_USER DB_PASSWORD DB_SSLMODE
  DB_TIMEOUT              Per-operation database timeout (default 5s)
  TIMEZONE                Zone that decides what "today" is (default Europe/Moscow)
  REPORT_TIME             Daily report time, HH:MM (default 23:59)
  BIRTHDAY_TIME           Birthday message time, HH:MM (default 06:00)
  LOG_LEVEL               debug, info, warn, error (default info)

`)
}
