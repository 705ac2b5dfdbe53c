package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/lifecycle"
	"github.com/svampito/nudgebot/internal/messages"
	"github.com/svampito/nudgebot/internal/models"
)

// handleActionCallback routes the reminder action buttons:
// done, snooze30, snooze60, tomorrow, skip, cancel, snooze_week.
func (h *Handlers) handleActionCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Telegram omits the message on stale callbacks (older than ~48h).
	if callback.Message == nil {
		return
	}

	action, idStr, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return
	}
	reminderID, err := strconv.Atoi(idStr)
	if err != nil {
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	reminder, err := h.repos.Reminder.GetByID(ctx, reminderID)
	if err != nil {
		h.editMessage(chatID, messageID, "⚠️ Reminder non trovato.")
		return
	}
	if reminder.UserID != callback.From.ID {
		return
	}

	user, err := h.repos.User.GetByID(ctx, reminder.UserID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", reminder.UserID, err)
		return
	}
	loc := clock.LocationOrDefault(user.Timezone, h.cfg.DefaultTimezone)
	now := time.Now()

	switch action {
	case "done":
		logAction := lifecycle.Confirm(reminder, loc, now)
		h.persistAction(ctx, reminder, logAction)
		h.editMessage(chatID, messageID, messages.DoneResponse())

	case "snooze30", "snooze60":
		minutes := 30
		if action == "snooze60" {
			minutes = 60
		}
		logAction, warned := lifecycle.Snooze(reminder, minutes, now)
		h.persistAction(ctx, reminder, logAction)
		if warned {
			h.editMessageWithKeyboard(chatID, messageID,
				messages.SnoozeWarning(reminder), warningKeyboard(reminder.ReminderID))
			return
		}
		h.editMessage(chatID, messageID, messages.SnoozedResponse(minutes))

	case "tomorrow":
		logAction := lifecycle.DeferOneDay(reminder, loc)
		h.persistAction(ctx, reminder, logAction)
		h.editMessage(chatID, messageID,
			messages.DeferredResponse(reminder.NextFire.In(loc).Format("15:04")))

	case "skip":
		logAction := lifecycle.Skip(reminder, loc)
		h.persistAction(ctx, reminder, logAction)
		h.editMessage(chatID, messageID, messages.SkippedResponse())

	case "cancel":
		logAction := lifecycle.Cancel(reminder)
		h.persistAction(ctx, reminder, logAction)
		h.editMessage(chatID, messageID, messages.CancelledResponse())

	case "snooze_week":
		lifecycle.DeferOneWeek(reminder, now)
		if err := h.repos.Reminder.UpdateSchedule(ctx, reminder); err != nil {
			log.Printf("Failed to update reminder %d: %v", reminder.ReminderID, err)
		}
		h.editMessage(chatID, messageID, messages.DeferredWeekResponse())
	}
}

func (h *Handlers) persistAction(ctx context.Context, reminder *models.Reminder, action models.LogAction) {
	if err := h.repos.Log.Append(ctx, reminder.UserID, reminder.ReminderID, action); err != nil {
		log.Printf("Failed to append log for reminder %d: %v", reminder.ReminderID, err)
	}
	if err := h.repos.Reminder.UpdateSchedule(ctx, reminder); err != nil {
		log.Printf("Failed to update reminder %d: %v", reminder.ReminderID, err)
	}
}

// warningKeyboard is the third-snooze escalation prompt.
func warningKeyboard(reminderID int) tgbotapi.InlineKeyboardMarkup {
	id := strconv.Itoa(reminderID)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Settimana prossima", "snooze_week:"+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Cancella", "cancel:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Ancora 1 giorno", "tomorrow:"+id),
		),
	)
}

// quickConfirm resolves a bare "fatto"/"ok" against the most recently
// nudged reminder.
func (h *Handlers) quickConfirm(ctx context.Context, msg *tgbotapi.Message) {
	reminder, err := h.repos.Reminder.MostRecentNudged(ctx, msg.From.ID)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "🤔 Non ho reminder attivi da confermare. Scrivimi qualcosa da ricordare!")
		return
	}

	user, err := h.repos.User.GetByID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", msg.From.ID, err)
		return
	}
	loc := clock.LocationOrDefault(user.Timezone, h.cfg.DefaultTimezone)

	logAction := lifecycle.Confirm(reminder, loc, time.Now())
	h.persistAction(ctx, reminder, logAction)
	h.sendMessage(msg.Chat.ID, "✅ *"+reminder.Title+"* — fatto!")
}
