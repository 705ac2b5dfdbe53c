package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/format"
	"github.com/svampito/nudgebot/internal/models"
)

// Telegram sends messages through the Bot API with a bounded per-call
// timeout. A timeout is just a delivery failure; the caller retries on
// the next poll.
type Telegram struct {
	api *tgbotapi.BotAPI
}

const sendTimeout = 10 * time.Second

// boundedClient caps every send at sendTimeout. The long-polling update
// client cannot share it: GetUpdates blocks up to its own poll timeout.
func boundedClient() *http.Client {
	return &http.Client{Timeout: sendTimeout}
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, boundedClient())
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API: %w", err)
	}
	return &Telegram{api: api}, nil
}

func (t *Telegram) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed := format.ParseMarkdown(m.Text)
	msg := tgbotapi.NewMessage(m.ChatID, parsed.Text)
	msg.Entities = parsed.Entities

	if len(m.Actions) > 0 {
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, row := range m.Actions {
			var buttons []tgbotapi.InlineKeyboardButton
			for _, a := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
					actionLabel(a, m.Category),
					fmt.Sprintf("%s:%d", callbackKey(a), m.Ref),
				))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

func actionLabel(a Action, category models.Category) string {
	medicine := category == models.CategoryMedicine

	switch a {
	case ActionConfirm:
		if medicine {
			return "✅ Presa"
		}
		return "✅ Fatto!"
	case ActionSnooze30:
		return "⏰ Tra 30min"
	case ActionSnooze60:
		return "⏰ Tra 1h"
	case ActionDeferDay:
		return "📅 Domani"
	case ActionSkip:
		if medicine {
			return "⏭ Saltata"
		}
		return "⏭ Salta"
	case ActionCancel:
		return "🗑 Cancella"
	case ActionDeferWeek:
		return "📅 Settimana prossima"
	}
	return string(a)
}

func callbackKey(a Action) string {
	switch a {
	case ActionConfirm:
		return "done"
	case ActionSnooze30:
		return "snooze30"
	case ActionSnooze60:
		return "snooze60"
	case ActionDeferDay:
		return "tomorrow"
	case ActionSkip:
		return "skip"
	case ActionCancel:
		return "cancel"
	case ActionDeferWeek:
		return "snooze_week"
	}
	return string(a)
}
