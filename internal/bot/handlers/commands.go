package handlers

import (
	"context"
	"fmt"
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

// handleStart greets the user and opens onboarding with the wake-hour
// question. Returning users just get the welcome back.
func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user, err := h.repos.User.GetByID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", msg.From.ID, err)
		return
	}

	h.sendMessage(msg.Chat.ID, messages.Welcome)

	if user.OnboardingDone {
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("6:00", "wake:6"),
			tgbotapi.NewInlineKeyboardButtonData("7:00", "wake:7"),
			tgbotapi.NewInlineKeyboardButtonData("8:00", "wake:8"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("9:00", "wake:9"),
			tgbotapi.NewInlineKeyboardButtonData("10:00", "wake:10"),
		),
	)
	h.sendMessageWithKeyboard(msg.Chat.ID, messages.WakeTimeAsk, keyboard)
}

func (h *Handlers) handleWakeCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Stale callbacks arrive without their message.
	if callback.Message == nil {
		return
	}

	hourStr := strings.TrimPrefix(callback.Data, "wake:")
	wakeHour, err := strconv.Atoi(hourStr)
	if err != nil || wakeHour < 0 || wakeHour > 23 {
		return
	}

	user, err := h.repos.User.GetByID(ctx, callback.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", callback.From.ID, err)
		return
	}

	if err := h.repos.User.SetQuietHours(ctx, callback.From.ID, wakeHour, user.SleepHour); err != nil {
		log.Printf("Failed to set wake hour for user %d: %v", callback.From.ID, err)
		return
	}
	if err := h.repos.User.SetOnboardingDone(ctx, callback.From.ID); err != nil {
		log.Printf("Failed to finish onboarding for user %d: %v", callback.From.ID, err)
	}

	h.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, messages.OnboardingDone)
}

func (h *Handlers) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	from, to := clock.LocalDayRange(time.Now(), loc)
	reminders, err := h.repos.Reminder.DueInRange(ctx, user.UserID, from, to)
	if err != nil {
		log.Printf("Failed to list today for user %d: %v", user.UserID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, renderList("📅 *Oggi:*", reminders, loc, "Niente in programma oggi. 🎉"))
}

func (h *Handlers) handleTomorrow(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	from, to := clock.LocalDayRange(clock.AddLocalDays(time.Now(), loc, 1), loc)
	reminders, err := h.repos.Reminder.DueInRange(ctx, user.UserID, from, to)
	if err != nil {
		log.Printf("Failed to list tomorrow for user %d: %v", user.UserID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, renderList("📅 *Domani:*", reminders, loc, "Domani sei libero. 🎉"))
}

func (h *Handlers) handleWeek(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	now := time.Now()
	from, _ := clock.LocalDayRange(now, loc)
	to := clock.AddLocalDays(from, loc, 7)
	reminders, err := h.repos.Reminder.DueInRange(ctx, user.UserID, from, to)
	if err != nil {
		log.Printf("Failed to list week for user %d: %v", user.UserID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, renderWeek(reminders, loc))
}

func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	reminders, err := h.repos.Reminder.ListActiveByUser(ctx, user.UserID)
	if err != nil {
		log.Printf("Failed to list reminders for user %d: %v", user.UserID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, renderNumberedList("📋 *I tuoi reminder:*", reminders, loc,
		"Non hai reminder attivi. Scrivimi qualcosa da ricordare!"))
}

func (h *Handlers) handleMedicines(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	reminders, err := h.repos.Reminder.ListActiveByCategory(ctx, user.UserID, models.CategoryMedicine)
	if err != nil {
		log.Printf("Failed to list medicines for user %d: %v", user.UserID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, renderList("💊 *I tuoi farmaci:*", collapseSlots(reminders), loc,
		"Nessun farmaco registrato."))
}

const deadlineWindow = 30 * 24 * time.Hour

func (h *Handlers) handleDeadlines(ctx context.Context, msg *tgbotapi.Message) {
	user, loc, ok := h.userLocation(ctx, msg)
	if !ok {
		return
	}
	reminders, err := h.repos.Reminder.ListDeadlines(ctx, user.UserID, time.Now().Add(deadlineWindow))
	if err != nil {
		log.Printf("Failed to list deadlines for user %d: %v", user.UserID, err)
		return
	}
	if len(reminders) == 0 {
		h.sendMessage(msg.Chat.ID, "Nessuna scadenza nei prossimi 30 giorni. 👌")
		return
	}

	lines := []string{"⏳ *Scadenze in arrivo:*\n"}
	for _, r := range reminders {
		local := r.NextFire.In(loc)
		lines = append(lines, fmt.Sprintf("%s %s — %s",
			messages.Emoji(r.Category), r.Title, local.Format("02/01")))
	}
	h.sendMessage(msg.Chat.ID, strings.Join(lines, "\n"))
}

// handleDelete resolves "/cancella <n>" against the numbered /lista view.
func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, "Dimmi quale: _/cancella 2_ (il numero da /lista)")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		h.sendMessage(msg.Chat.ID, "Non ho capito il numero. Guarda /lista e riprova.")
		return
	}

	reminders, err := h.repos.Reminder.ListActiveByUser(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list reminders for user %d: %v", msg.From.ID, err)
		return
	}
	if n > len(reminders) {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Hai solo %d reminder attivi.", len(reminders)))
		return
	}

	reminder := reminders[n-1]
	logAction := lifecycle.Cancel(reminder)
	h.persistAction(ctx, reminder, logAction)
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 *%s* cancellato.", reminder.Title))
}

// handleQuietHours sets "/silenzio <da> <a>", e.g. /silenzio 23 8.
func (h *Handlers) handleQuietHours(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		h.sendMessage(msg.Chat.ID,
			"Uso: _/silenzio 23 8_ — non ti disturbo dalle 23 alle 8.")
		return
	}

	sleepHour, err1 := strconv.Atoi(fields[0])
	wakeHour, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil ||
		sleepHour < 0 || sleepHour > 23 || wakeHour < 0 || wakeHour > 23 {
		h.sendMessage(msg.Chat.ID, "Le ore vanno da 0 a 23, tipo _/silenzio 23 8_.")
		return
	}

	if err := h.repos.User.SetQuietHours(ctx, msg.From.ID, wakeHour, sleepHour); err != nil {
		log.Printf("Failed to set quiet hours for user %d: %v", msg.From.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID,
		fmt.Sprintf("🌙 Ok, silenzio dalle %d:00 alle %d:00.", sleepHour, wakeHour))
}

var commonZones = []string{
	"Europe/Rome", "Europe/London",
	"Europe/Berlin", "America/New_York",
	"America/Sao_Paulo", "Asia/Tokyo",
}

func timezoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(commonZones); i += 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(commonZones[i], "tz:"+commonZones[i]),
			tgbotapi.NewInlineKeyboardButtonData(commonZones[i+1], "tz:"+commonZones[i+1]),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleTimezone validates the zone before storing it; a bad name is
// rejected here instead of surfacing later in the scheduler. Without an
// argument it offers a picker of common zones.
func (h *Handlers) handleTimezone(ctx context.Context, msg *tgbotapi.Message) {
	zone := strings.TrimSpace(msg.CommandArguments())
	if zone == "" {
		h.sendMessageWithKeyboard(msg.Chat.ID,
			"🌍 *Scegli il tuo fuso orario*, oppure scrivilo: _/timezone Europe/Rome_",
			timezoneKeyboard())
		return
	}

	if err := clock.ValidateZone(zone); err != nil {
		h.sendMessage(msg.Chat.ID,
			fmt.Sprintf("🤔 Non conosco il fuso *%s*. Usa il formato _Area/Città_, tipo _Europe/Rome_.", zone))
		return
	}

	if err := h.repos.User.SetTimezone(ctx, msg.From.ID, zone); err != nil {
		log.Printf("Failed to set timezone for user %d: %v", msg.From.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🌍 Fuso orario impostato: *%s*", zone))
}

func (h *Handlers) handleTimezoneCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}

	zone := strings.TrimPrefix(callback.Data, "tz:")
	if err := clock.ValidateZone(zone); err != nil {
		return
	}

	if err := h.repos.User.SetTimezone(ctx, callback.From.ID, zone); err != nil {
		log.Printf("Failed to set timezone for user %d: %v", callback.From.ID, err)
		return
	}
	h.editMessage(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("🌍 Fuso orario impostato: *%s*", zone))
}

func settingsText(user *models.User) string {
	summary := "attivo"
	if !user.MorningSummary {
		summary = "disattivato"
	}
	return fmt.Sprintf(
		"⚙️ *Le tue impostazioni:*\n\n"+
			"🌍 Fuso orario: %s\n"+
			"🌙 Silenzio: dalle %d:00 alle %d:00\n"+
			"☀️ Riepilogo mattutino: %s",
		user.Timezone, user.SleepHour, user.WakeHour, summary)
}

func settingsKeyboard(morningSummary bool) tgbotapi.InlineKeyboardMarkup {
	label := "☀️ Attiva il riepilogo mattutino"
	if morningSummary {
		label = "🌙 Disattiva il riepilogo mattutino"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "settings:toggle_morning"),
		),
	)
}

func (h *Handlers) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	user, err := h.repos.User.GetByID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", msg.From.ID, err)
		return
	}

	h.sendMessageWithKeyboard(msg.Chat.ID, settingsText(user), settingsKeyboard(user.MorningSummary))
}

// handleSettingsCallback flips the morning-summary flag in place.
func (h *Handlers) handleSettingsCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	if callback.Data != "settings:toggle_morning" {
		return
	}

	user, err := h.repos.User.GetByID(ctx, callback.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", callback.From.ID, err)
		return
	}

	user.MorningSummary = !user.MorningSummary
	if err := h.repos.User.SetMorningSummary(ctx, user.UserID, user.MorningSummary); err != nil {
		log.Printf("Failed to toggle morning summary for user %d: %v", user.UserID, err)
		return
	}

	h.editMessageWithKeyboard(callback.Message.Chat.ID, callback.Message.MessageID,
		settingsText(user), settingsKeyboard(user.MorningSummary))
}

func (h *Handlers) userLocation(ctx context.Context, msg *tgbotapi.Message) (*models.User, *time.Location, bool) {
	user, err := h.repos.User.GetByID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", msg.From.ID, err)
		return nil, nil, false
	}
	return user, clock.LocationOrDefault(user.Timezone, h.cfg.DefaultTimezone), true
}

// collapseSlots keeps one row per multi-time reminder group.
func collapseSlots(reminders []*models.Reminder) []*models.Reminder {
	seen := make(map[int]bool)
	var out []*models.Reminder
	for _, r := range reminders {
		group := r.ReminderID
		if r.ParentID != nil {
			group = *r.ParentID
		}
		if seen[group] {
			continue
		}
		seen[group] = true
		out = append(out, r)
	}
	return out
}

func reminderLine(r *models.Reminder, loc *time.Location) string {
	var when string
	if times := r.FireTimeList(); len(times) > 1 {
		when = strings.Join(times, " · ")
	} else {
		when = r.NextFire.In(loc).Format("15:04")
	}
	return fmt.Sprintf("%s %s _(%s)_", messages.Emoji(r.Category), r.Title, when)
}

func renderList(header string, reminders []*models.Reminder, loc *time.Location, empty string) string {
	if len(reminders) == 0 {
		return empty
	}
	lines := []string{header + "\n"}
	for _, r := range reminders {
		lines = append(lines, reminderLine(r, loc))
	}
	return strings.Join(lines, "\n")
}

func renderNumberedList(header string, reminders []*models.Reminder, loc *time.Location, empty string) string {
	if len(reminders) == 0 {
		return empty
	}
	lines := []string{header + "\n"}
	for i, r := range reminders {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, reminderLine(r, loc)))
	}
	lines = append(lines, "\nPer cancellarne uno: _/cancella <numero>_")
	return strings.Join(lines, "\n")
}

// renderWeek groups the next seven days by local date.
func renderWeek(reminders []*models.Reminder, loc *time.Location) string {
	if len(reminders) == 0 {
		return "Settimana libera. 🎉"
	}

	lines := []string{"📅 *I prossimi 7 giorni:*\n"}
	lastDay := ""
	for _, r := range reminders {
		local := r.NextFire.In(loc)
		day := local.Format("Mon 02/01")
		if day != lastDay {
			lines = append(lines, "\n*"+italianWeekday(local.Weekday())+" "+local.Format("02/01")+"*")
			lastDay = day
		}
		lines = append(lines, reminderLine(r, loc))
	}
	return strings.Join(lines, "\n")
}

var weekdayNames = [...]string{
	"Domenica", "Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato",
}

func italianWeekday(d time.Weekday) string {
	return weekdayNames[d]
}
