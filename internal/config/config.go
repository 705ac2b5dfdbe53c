package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string

	// Nudge escalation delays, in minutes.
	Nudge2DelayMin        int
	Nudge3DelayMin        int
	MedicineNudgeDelayMin int
	MaxNudges             int

	// Defaults applied to new users and to users with a broken timezone.
	DefaultTimezone  string
	DefaultWakeHour  int
	DefaultSleepHour int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIBaseURL:     getEnvOrDefault("AI_BASE_URL", "https://api.groq.com/openai/v1"),
		AIModel:       getEnvOrDefault("AI_MODEL", "llama-3.1-8b-instant"),

		Nudge2DelayMin:        getEnvIntOrDefault("NUDGE2_DELAY_MIN", 60),
		Nudge3DelayMin:        getEnvIntOrDefault("NUDGE3_DELAY_MIN", 180),
		MedicineNudgeDelayMin: getEnvIntOrDefault("MEDICINE_NUDGE_DELAY_MIN", 30),
		MaxNudges:             getEnvIntOrDefault("MAX_NUDGES", 3),

		DefaultTimezone:  getEnvOrDefault("DEFAULT_TIMEZONE", "Europe/Rome"),
		DefaultWakeHour:  getEnvIntOrDefault("DEFAULT_WAKE_HOUR", 8),
		DefaultSleepHour: getEnvIntOrDefault("DEFAULT_SLEEP_HOUR", 23),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
