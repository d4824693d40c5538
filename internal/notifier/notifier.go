package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/balkashynov/deepwork/internal/config"
	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/logging"
)

// ErrNoRecipient is returned when no recipient account is configured.
var ErrNoRecipient = errors.New("no recipient configured")

const fireTimeout = time.Minute

// Source is the read side of the ledger used by the triggers.
type Source interface {
	TodayStats(ctx context.Context, userID int64) (ledger.Stats, error)
	Birthday(ctx context.Context, userID int64) (time.Time, bool, error)
	DaysLived(birthday time.Time) int
}

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Schedule is when the two daily triggers fire.
type Schedule struct {
	Location   *time.Location
	ReportAt   config.ClockTime
	BirthdayAt config.ClockTime
}

// Notifier fires the daily report and birthday triggers for one recipient.
type Notifier struct {
	src       Source
	sender    Sender
	recipient int64
	schedule  Schedule
	log       zerolog.Logger
}

func New(src Source, sender Sender, recipient int64, schedule Schedule, log zerolog.Logger) *Notifier {
	if schedule.Location == nil {
		schedule.Location = time.Local
	}
	return &Notifier{
		src:       src,
		sender:    sender,
		recipient: recipient,
		schedule:  schedule,
		log:       log,
	}
}

// ComposeReport builds today's report for the recipient. ok is false when
// there is nothing to report.
func (n *Notifier) ComposeReport(ctx context.Context) (text string, ok bool, err error) {
	if n.recipient == 0 {
		return "", false, ErrNoRecipient
	}
	stats, err := n.src.TodayStats(ctx, n.recipient)
	if err != nil {
		return "", false, err
	}
	text, ok = ReportMessage(stats)
	return text, ok, nil
}

// ComposeBirthday builds the days-lived message. ok is false when the
// recipient has no birthday stored.
func (n *Notifier) ComposeBirthday(ctx context.Context) (text string, ok bool, err error) {
	if n.recipient == 0 {
		return "", false, ErrNoRecipient
	}
	birthday, found, err := n.src.Birthday(ctx, n.recipient)
	if err != nil || !found {
		return "", false, err
	}
	return BirthdayMessage(n.src.DaysLived(birthday)), true, nil
}

// SendReport composes and delivers the daily report. It reports whether a
// message was sent.
func (n *Notifier) SendReport(ctx context.Context) (bool, error) {
	return n.deliver(ctx, "report", n.ComposeReport)
}

// SendBirthday composes and delivers the days-lived message.
func (n *Notifier) SendBirthday(ctx context.Context) (bool, error) {
	return n.deliver(ctx, "birthday", n.ComposeBirthday)
}

func (n *Notifier) deliver(ctx context.Context, trigger string, compose func(context.Context) (string, bool, error)) (bool, error) {
	text, ok, err := compose(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", trigger, err)
	}
	if !ok {
		n.log.Info().Str("trigger", trigger).Msg("nothing to send")
		return false, nil
	}
	if err := n.sender.Send(ctx, n.recipient, text); err != nil {
		return false, fmt.Errorf("%s: delivery failed: %w", trigger, err)
	}
	n.log.Info().Str("trigger", trigger).Int64("chat_id", n.recipient).Msg("message sent")
	return true, nil
}

// job wraps a trigger for the scheduler: failures are logged, never raised.
func (n *Notifier) job(ctx context.Context, trigger string, send func(context.Context) (bool, error)) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		fireCtx, cancel := context.WithTimeout(ctx, fireTimeout)
		defer cancel()
		if _, err := send(fireCtx); err != nil {
			n.log.Error().Err(err).Str("trigger", trigger).Msg("scheduled notification failed")
		}
	}
}

// newCron registers both triggers. A fire that is still running when the next
// one is due is skipped rather than queued.
func (n *Notifier) newCron(ctx context.Context) (*cron.Cron, error) {
	cl := logging.CronLogger{Log: n.log}
	c := cron.New(
		cron.WithLocation(n.schedule.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(n.schedule.ReportAt.CronSpec(), n.job(ctx, "report", n.SendReport)); err != nil {
		return nil, fmt.Errorf("schedule report: %w", err)
	}
	if _, err := c.AddFunc(n.schedule.BirthdayAt.CronSpec(), n.job(ctx, "birthday", n.SendBirthday)); err != nil {
		return nil, fmt.Errorf("schedule birthday: %w", err)
	}
	return c, nil
}

// Run fires the triggers until ctx is cancelled, then waits for a running
// fire to finish. Without a recipient it idles until cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	if n.recipient == 0 {
		n.log.Warn().Msg("ADMIN_USER_ID not set, scheduled messages disabled")
		<-ctx.Done()
		return nil
	}

	c, err := n.newCron(ctx)
	if err != nil {
		return err
	}
	c.Start()
	n.log.Info().
		Str("report_at", n.schedule.ReportAt.String()).
		Str("birthday_at", n.schedule.BirthdayAt.String()).
		Str("timezone", n.schedule.Location.String()).
		Msg("notifier started")

	<-ctx.Done()
	<-c.Stop().Done()
	n.log.Info().Msg("notifier stopped")
	return nil
}
