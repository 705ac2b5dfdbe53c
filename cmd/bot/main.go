package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/svampito/nudgebot/internal/ai"
	"github.com/svampito/nudgebot/internal/bot"
	"github.com/svampito/nudgebot/internal/config"
	"github.com/svampito/nudgebot/internal/database"
	"github.com/svampito/nudgebot/internal/lifecycle"
	"github.com/svampito/nudgebot/internal/notify"
	"github.com/svampito/nudgebot/internal/repository"
	"github.com/svampito/nudgebot/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database ready")

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI parsing enabled (model %s)", cfg.AIModel)
	} else {
		log.Println("AI_API_KEY not set, natural-language parsing disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	// The scheduler gets its own API client with a bounded per-send
	// timeout; the update client above blocks on long polls.
	notifier, err := notify.NewTelegram(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	delays := lifecycle.Delays{
		Nudge2:    time.Duration(cfg.Nudge2DelayMin) * time.Minute,
		Nudge3:    time.Duration(cfg.Nudge3DelayMin) * time.Minute,
		Medicine:  time.Duration(cfg.MedicineNudgeDelayMin) * time.Minute,
		MaxNudges: cfg.MaxNudges,
	}

	sched := scheduler.New(
		notifier,
		repository.NewReminderRepository(db),
		repository.NewUserRepository(db),
		repository.NewReminderLogRepository(db),
		delays,
		cfg.DefaultTimezone,
	)
	sched.Start(ctx)

	b := bot.New(api, db, aiClient, sched, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("Received %v, shutting down", sig)
		cancel()
	}()

	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot stopped: %v", err)
	}
	log.Println("Shutdown complete")
}
