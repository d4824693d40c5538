package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/deepwork/internal/bot"
	"github.com/balkashynov/deepwork/internal/logging"
	"github.com/balkashynov/deepwork/internal/notifier"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the daily notifications",
	Long: `Run the Telegram bot and the daily notifications until interrupted.

Requires TELEGRAM_TOKEN. The daily report and birthday messages go to
ADMIN_USER_ID; without it only the chat interface runs.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.cfg.RequireTelegram(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.ledger.RebuildIndex(ctx); err != nil {
			return err
		}

		handler := bot.NewHandler(a.ledger, a.cfg.BirthdayAt.String(), logging.Component(a.log, "handler"))
		tg, err := bot.NewTelegram(a.cfg.TelegramToken, handler, logging.Component(a.log, "telegram"))
		if err != nil {
			return err
		}
		n := notifier.New(a.ledger, tg, a.cfg.AdminUserID, notifier.Schedule{
			Location:   a.cfg.Location,
			ReportAt:   a.cfg.ReportAt,
			BirthdayAt: a.cfg.BirthdayAt,
		}, logging.Component(a.log, "notifier"))

		a.log.Info().
			Str("timezone", a.cfg.Location.String()).
			Str("report_at", a.cfg.ReportAt.String()).
			Str("birthday_at", a.cfg.BirthdayAt.String()).
			Msg("starting deepwork")

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return tg.Run(gctx) })
		g.Go(func() error { return n.Run(gctx) })
		if err := g.Wait(); err != nil {
			return err
		}
		a.log.Info().Msg("shutdown complete")
		return nil
	}),
}
