package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/models"
)

const exportLogLimit = 200

// exportFile is the document sent by /export: the user's active
// reminders plus their recent action history.
type exportFile struct {
	ExportedAt time.Time             `json:"exported_at"`
	Reminders  []*models.Reminder    `json:"reminders"`
	Logs       []*models.ReminderLog `json:"logs"`
}

func exportPayload(now time.Time, reminders []*models.Reminder, logs []*models.ReminderLog) ([]byte, error) {
	return json.MarshalIndent(exportFile{
		ExportedAt: now,
		Reminders:  reminders,
		Logs:       logs,
	}, "", "  ")
}

func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := h.repos.Reminder.ListActiveByUser(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list reminders for user %d: %v", msg.From.ID, err)
		return
	}
	logs, err := h.repos.Log.ListRecentByUser(ctx, msg.From.ID, exportLogLimit)
	if err != nil {
		log.Printf("Failed to list logs for user %d: %v", msg.From.ID, err)
		return
	}

	data, err := exportPayload(time.Now(), reminders, logs)
	if err != nil {
		log.Printf("Failed to build export for user %d: %v", msg.From.ID, err)
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "reminders.json",
		Bytes: data,
	})
	doc.Caption = "📦 I tuoi reminder"
	if _, err := h.api.Send(doc); err != nil {
		log.Printf("Failed to send export to user %d: %v", msg.From.ID, err)
	}
}
