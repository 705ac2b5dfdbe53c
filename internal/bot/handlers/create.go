package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/ai"
	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/format"
	"github.com/svampito/nudgebot/internal/messages"
	"github.com/svampito/nudgebot/internal/models"
)

type pendingDraft struct {
	draft     *ai.Draft
	expiresAt time.Time
}

const draftTTL = 10 * time.Minute

// handleNewReminderText parses free text into a draft and asks the user
// to confirm before anything is saved.
func (h *Handlers) handleNewReminderText(ctx context.Context, msg *tgbotapi.Message, text string) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, messages.ParsingDisabled)
		return
	}

	user, err := h.repos.User.GetByID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", msg.From.ID, err)
		return
	}
	loc := clock.LocationOrDefault(user.Timezone, h.cfg.DefaultTimezone)

	draft, err := h.ai.ParseDraft(ctx, text, loc)
	if err != nil {
		log.Printf("Failed to parse draft for user %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, messages.NotUnderstood)
		return
	}
	if len(draft.Title) < 2 {
		h.sendMessage(msg.Chat.ID, messages.NotUnderstood)
		return
	}

	if draft.AdvanceDays == 0 {
		draft.AdvanceDays = messages.DefaultAdvanceDays(draft.Category)
	}

	h.pendingMu.Lock()
	h.pending[msg.From.ID] = &pendingDraft{draft: draft, expiresAt: time.Now().Add(draftTTL)}
	h.pendingMu.Unlock()

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Conferma", "rem:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Annulla", "rem:cancel"),
		),
	)

	h.sendMessageWithKeyboard(msg.Chat.ID, confirmationText(draft, loc), keyboard)
}

func (h *Handlers) sendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	parsed := format.ParseMarkdown(text)
	m := tgbotapi.NewMessage(chatID, parsed.Text)
	m.Entities = parsed.Entities
	m.ReplyMarkup = keyboard
	if _, err := h.api.Send(m); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

// handleDraftCallback resolves the confirm/cancel buttons on a draft.
func (h *Handlers) handleDraftCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Stale callbacks arrive without their message.
	if callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	h.pendingMu.Lock()
	pending, exists := h.pending[callback.From.ID]
	delete(h.pending, callback.From.ID)
	h.pendingMu.Unlock()

	if callback.Data == "rem:cancel" {
		h.editMessage(chatID, messageID, "❌ Annullato.")
		return
	}

	if !exists || time.Now().After(pending.expiresAt) {
		h.editMessage(chatID, messageID, "⏰ Conferma scaduta, riscrivimi il reminder.")
		return
	}

	reminder, err := h.saveDraft(ctx, callback.From.ID, pending.draft)
	if err != nil {
		log.Printf("Failed to save reminder for user %d: %v", callback.From.ID, err)
		h.editMessage(chatID, messageID, "⚠️ Non sono riuscito a salvare, riprova.")
		return
	}

	h.sched.Wake()
	h.editMessage(chatID, messageID, messages.ReminderSaved(reminder))
}

// saveDraft materializes a confirmed draft. A draft with multiple fire
// times becomes one sibling row per time slot, linked to the first row.
func (h *Handlers) saveDraft(ctx context.Context, userID int64, draft *ai.Draft) (*models.Reminder, error) {
	user, err := h.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := clock.LocationOrDefault(user.Timezone, h.cfg.DefaultTimezone)
	now := time.Now()

	fireAt := now.Add(time.Hour)
	if draft.FireAt != nil {
		fireAt = *draft.FireAt
	}

	// Advance notice moves the first fire ahead of a deadline at
	// creation time; rescheduling never re-applies it.
	if draft.Recurrence == models.RecurrenceOnce && draft.AdvanceDays > 0 {
		early := clock.AddLocalDays(fireAt, loc, -draft.AdvanceDays)
		if early.After(now) {
			fireAt = early
		}
	}

	base := models.Reminder{
		UserID:         userID,
		Title:          draft.Title,
		Category:       draft.Category,
		NextFire:       fireAt,
		Recurrence:     draft.Recurrence,
		RecurrenceDays: draft.RecurrenceDays,
		EndDate:        draft.EndDate,
		AdvanceDays:    draft.AdvanceDays,
		Status:         models.StatusActive,
	}

	if len(draft.FireTimes) <= 1 {
		reminder := base
		if err := h.repos.Reminder.Create(ctx, &reminder); err != nil {
			return nil, err
		}
		return &reminder, nil
	}

	// Multi-time: one row per slot, today at the slot time or tomorrow
	// if that already passed.
	total := len(draft.FireTimes)
	var parent *models.Reminder
	for idx, slot := range draft.FireTimes {
		slotFire, err := slotFireTime(slot, now, loc)
		if err != nil {
			return nil, err
		}

		reminder := base
		reminder.NextFire = slotFire
		reminder.FireTimes = strings.Join(draft.FireTimes, ",")
		i := idx
		n := total
		reminder.SlotIndex = &i
		reminder.SlotTotal = &n
		if parent != nil {
			pid := parent.ReminderID
			reminder.ParentID = &pid
		}

		if err := h.repos.Reminder.Create(ctx, &reminder); err != nil {
			return nil, err
		}
		if parent == nil {
			parent = &reminder
		}
	}
	return parent, nil
}

func slotFireTime(slot string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad fire time %q: %w", slot, err)
	}
	local := now.In(loc)
	fire := time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	if fire.Before(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire.UTC(), nil
}

// confirmationText summarizes a draft the way it will be scheduled.
func confirmationText(draft *ai.Draft, loc *time.Location) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s *%s*", messages.Emoji(draft.Category), draft.Title))

	switch draft.Recurrence {
	case models.RecurrenceOnce:
		if draft.FireAt != nil {
			local := draft.FireAt.In(loc)
			lines = append(lines, fmt.Sprintf("📅 %s ore %s", local.Format("02/01/2006"), local.Format("15:04")))
		}
		lines = append(lines, "🔁 Una tantum")
	case models.RecurrenceDaily:
		if len(draft.FireTimes) > 1 {
			lines = append(lines, "📅 Ogni giorno", "⏰ "+strings.Join(draft.FireTimes, " · "))
		} else if draft.FireAt != nil {
			lines = append(lines, "📅 Ogni giorno ore "+draft.FireAt.In(loc).Format("15:04"))
		}
	case models.RecurrenceWeekly:
		line := "📅 Ogni settimana"
		if draft.RecurrenceDays != "" {
			line = "📅 Ogni " + italianDays(draft.RecurrenceDays)
		}
		if draft.FireAt != nil {
			line += " ore " + draft.FireAt.In(loc).Format("15:04")
		}
		lines = append(lines, line)
	case models.RecurrenceMonthly:
		if draft.FireAt != nil {
			local := draft.FireAt.In(loc)
			lines = append(lines, fmt.Sprintf("📅 Ogni mese il %d ore %s", local.Day(), local.Format("15:04")))
		}
	case models.RecurrenceEveryOtherDay:
		if draft.FireAt != nil {
			lines = append(lines, "📅 Un giorno sì e uno no, ore "+draft.FireAt.In(loc).Format("15:04"))
		}
	}

	if draft.Recurrence != models.RecurrenceOnce {
		if draft.EndDate != nil {
			lines = append(lines, "⏳ Fino al "+draft.EndDate.In(loc).Format("02/01/2006"))
		} else {
			lines = append(lines, "🔁 Ricorrente (senza scadenza)")
		}
	}

	return strings.Join(lines, "\n")
}

var dayNames = map[string]string{
	"mon": "lunedì", "tue": "martedì", "wed": "mercoledì",
	"thu": "giovedì", "fri": "venerdì", "sat": "sabato", "sun": "domenica",
}

func italianDays(days string) string {
	var names []string
	for _, d := range strings.Split(days, ",") {
		if name, ok := dayNames[strings.TrimSpace(d)]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
