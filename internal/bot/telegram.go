package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	pollTimeoutSeconds = 30
	updateTimeout      = 30 * time.Second
)

// Telegram runs the handler over the Telegram Bot API using long polling.
// It also delivers scheduled notifications.
type Telegram struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewTelegram authenticates with token.
func NewTelegram(token string, handler *Handler, log zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	log.Info().Str("bot", api.Self.UserName).Msg("authorized on telegram")
	return &Telegram{api: api, handler: handler, log: log}, nil
}

// Run polls for updates until ctx is cancelled. Each update is handled on its
// own goroutine; the ledger serialises work per user. On shutdown Run stops
// polling and waits for in-flight updates to finish.
func (t *Telegram) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := t.api.GetUpdatesChan(u)

	t.log.Info().Msg("bot started, polling for updates")
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.wg.Wait()
			t.log.Info().Msg("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}
			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				// Let in-flight work finish even if shutdown has begun.
				uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), updateTimeout)
				defer cancel()
				t.dispatch(uctx, update)
			}()
		}
	}
}

func (t *Telegram) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("recovered from panic")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		t.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		t.onMessage(ctx, update.Message)
	}
}

func (t *Telegram) onCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := t.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		t.log.Warn().Err(err).Msg("failed to answer callback")
	}
	if cq.From == nil || cq.Message == nil {
		return
	}

	action, ok := ParseCallback(cq.Data)
	if !ok {
		t.log.Warn().Str("data", cq.Data).Msg("unknown callback data")
		action = ActionBack
	}
	reply := t.handler.Handle(ctx, cq.From.ID, action, "")

	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, reply.Text)
	if markup, ok := inlineKeyboard(reply.Keyboard); ok {
		edit.ReplyMarkup = &markup
	}
	if _, err := t.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		t.log.Error().Err(err).Int64("user_id", cq.From.ID).Msg("failed to edit message")
	}
}

func (t *Telegram) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	var reply Reply
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		reply = t.handler.Welcome()
	case msg.IsCommand():
		reply = t.handler.MainMenu()
	case strings.TrimSpace(msg.Text) != "":
		reply = t.handler.Handle(ctx, msg.From.ID, ActionBirthdayText, msg.Text)
	default:
		return
	}

	if err := t.sendReply(msg.Chat.ID, reply); err != nil {
		t.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to send reply")
	}
}

func (t *Telegram) sendReply(chatID int64, reply Reply) error {
	out := tgbotapi.NewMessage(chatID, reply.Text)
	if markup, ok := inlineKeyboard(reply.Keyboard); ok {
		out.ReplyMarkup = markup
	}
	_, err := t.api.Send(out)
	return err
}

// Send delivers a plain text message.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

func inlineKeyboard(rows [][]Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Action.CallbackData()))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...), true
}
