package models

import "time"

// ReminderLog is an append-only audit record of user actions on
// reminders. Rows are only ever inserted; the weekly recap aggregates
// them.
type ReminderLog struct {
	LogID      int       `json:"log_id"`
	UserID     int64     `json:"user_id"`
	ReminderID int       `json:"reminder_id"`
	Action     LogAction `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogCounts is a per-action tally over a time window.
type LogCounts struct {
	Done      int
	Skipped   int
	Snoozed   int
	Cancelled int
}
