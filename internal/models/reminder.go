package models

import (
	"strings"
	"time"
)

type Reminder struct {
	ReminderID int        `json:"reminder_id"`
	UserID     int64      `json:"user_id"`
	Title      string     `json:"title"`
	Category   Category   `json:"category"`
	NextFire   time.Time  `json:"next_fire"` // UTC
	Recurrence Recurrence `json:"recurrence"`

	// RecurrenceDays is an informational weekday set for weekly
	// reminders, e.g. "mon,wed,fri". Advancement always adds seven
	// days from the last fire and does not consult it.
	RecurrenceDays string `json:"recurrence_days"`

	// FireTimes is the shared time-of-day list for multi-time
	// reminders, e.g. "08:00,14:00,21:00". Each time slot is its own
	// reminder row linked through ParentID.
	FireTimes string `json:"fire_times"`

	// RecurrenceRule is an optional RFC 5545 RRULE, only meaningful
	// when Recurrence is custom.
	RecurrenceRule string `json:"recurrence_rule"`

	EndDate     *time.Time `json:"end_date"`
	AdvanceDays int        `json:"advance_days"`

	NudgeCount  int        `json:"nudge_count"`
	LastNudgeAt *time.Time `json:"last_nudge_at"`

	Status      Status     `json:"status"`
	SnoozeCount int        `json:"snooze_count"`
	SlotIndex   *int       `json:"slot_index"`
	SlotTotal   *int       `json:"slot_total"`
	ParentID    *int       `json:"parent_id"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r *Reminder) IsRecurring() bool {
	return r.Recurrence != RecurrenceOnce
}

func (r *Reminder) FireTimeList() []string {
	if r.FireTimes == "" {
		return nil
	}
	return strings.Split(r.FireTimes, ",")
}

// NudgeState is the escalation sub-state of an active reminder for the
// current occurrence: either not yet fired, or awaiting a user response
// after one or more nudges.
type NudgeState interface {
	nudgeState()
}

type NotYetFired struct{}

type AwaitingResponse struct {
	NudgeLevel  int
	LastNudgeAt time.Time
}

func (NotYetFired) nudgeState()      {}
func (AwaitingResponse) nudgeState() {}

func (r *Reminder) NudgeState() NudgeState {
	if r.NudgeCount == 0 || r.LastNudgeAt == nil {
		return NotYetFired{}
	}
	return AwaitingResponse{NudgeLevel: r.NudgeCount, LastNudgeAt: *r.LastNudgeAt}
}

// ResetNudges clears the escalation sub-state, returning the occurrence
// to NotYetFired. Called after every reschedule.
func (r *Reminder) ResetNudges() {
	r.NudgeCount = 0
	r.LastNudgeAt = nil
}
