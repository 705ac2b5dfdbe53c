package handlers

import (
	"context"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/ai"
	"github.com/svampito/nudgebot/internal/config"
	"github.com/svampito/nudgebot/internal/format"
	"github.com/svampito/nudgebot/internal/messages"
	"github.com/svampito/nudgebot/internal/repository"
	"github.com/svampito/nudgebot/internal/scheduler"
)

type Repositories struct {
	User     *repository.UserRepository
	Reminder *repository.ReminderRepository
	Log      *repository.ReminderLogRepository
}

type Handlers struct {
	api   *tgbotapi.BotAPI
	repos *Repositories
	ai    *ai.Client
	sched *scheduler.Scheduler
	cfg   *config.Config

	pendingMu sync.Mutex
	pending   map[int64]*pendingDraft
}

func New(api *tgbotapi.BotAPI, repos *Repositories, aiClient *ai.Client, sched *scheduler.Scheduler, cfg *config.Config) *Handlers {
	return &Handlers{
		api:     api,
		repos:   repos,
		ai:      aiClient,
		sched:   sched,
		cfg:     cfg,
		pending: make(map[int64]*pendingDraft),
	}
}

// Quick confirm keywords resolving the most recently nudged reminder.
var quickConfirmWords = map[string]bool{
	"ok": true, "fatto": true, "sì": true, "si": true,
	"presa": true, "preso": true, "done": true, "✅": true,
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := h.repos.User.GetOrCreate(ctx, msg.From.ID, msg.Chat.ID, msg.From.FirstName); err != nil {
		log.Printf("Failed to get/create user %d: %v", msg.From.ID, err)
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.sendMessage(msg.Chat.ID, messages.Help)
	case "oggi":
		h.handleToday(ctx, msg)
	case "domani":
		h.handleTomorrow(ctx, msg)
	case "settimana":
		h.handleWeek(ctx, msg)
	case "lista":
		h.handleList(ctx, msg)
	case "farmaci":
		h.handleMedicines(ctx, msg)
	case "scadenze":
		h.handleDeadlines(ctx, msg)
	case "fatto":
		h.quickConfirm(ctx, msg)
	case "cancella":
		h.handleDelete(ctx, msg)
	case "silenzio":
		h.handleQuietHours(ctx, msg)
	case "timezone":
		h.handleTimezone(ctx, msg)
	case "impostazioni":
		h.handleSettings(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Comando sconosciuto, prova /help")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := h.repos.User.GetOrCreate(ctx, msg.From.ID, msg.Chat.ID, msg.From.FirstName); err != nil {
		log.Printf("Failed to get/create user %d: %v", msg.From.ID, err)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if quickConfirmWords[strings.ToLower(text)] {
		h.quickConfirm(ctx, msg)
		return
	}

	h.handleNewReminderText(ctx, msg, text)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer immediately to clear the loading state.
	if _, err := h.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, "rem:"):
		h.handleDraftCallback(ctx, callback)
	case strings.HasPrefix(data, "wake:"):
		h.handleWakeCallback(ctx, callback)
	case strings.HasPrefix(data, "settings:"):
		h.handleSettingsCallback(ctx, callback)
	case strings.HasPrefix(data, "tz:"):
		h.handleTimezoneCallback(ctx, callback)
	default:
		h.handleActionCallback(ctx, callback)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) editMessage(chatID int64, messageID int, text string) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) editMessageWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, parsed.Text, keyboard)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
