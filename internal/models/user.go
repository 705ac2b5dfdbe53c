package models

import "time"

type User struct {
	UserID    int64  `json:"user_id"` // Telegram user ID
	ChatID    int64  `json:"chat_id"`
	FirstName string `json:"first_name"`
	Timezone  string `json:"timezone"`

	// Quiet hours: local time in [SleepHour, 24) or [0, WakeHour) —
	// nudges due inside the window are held, not dropped.
	WakeHour  int `json:"wake_hour"`
	SleepHour int `json:"sleep_hour"`

	MorningSummary bool      `json:"morning_summary"`
	OnboardingDone bool      `json:"onboarding_done"`
	CreatedAt      time.Time `json:"created_at"`
}
