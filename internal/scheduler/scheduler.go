// Package scheduler runs the three polling cycles that drive reminder
// delivery: initial fires, escalation nudges and the daily/weekly
// digests. Each cycle is periodic, idempotent and guarded against
// overlapping with itself; a failure on one reminder never aborts the
// rest of the batch.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/lifecycle"
	"github.com/svampito/nudgebot/internal/messages"
	"github.com/svampito/nudgebot/internal/models"
	"github.com/svampito/nudgebot/internal/notify"
)

// ReminderStore is the slice of the reminder repository the cycles
// need.
type ReminderStore interface {
	DueInitial(ctx context.Context, now time.Time) ([]*models.Reminder, error)
	DueEscalation(ctx context.Context, maxNudges int) ([]*models.Reminder, error)
	UpdateSchedule(ctx context.Context, r *models.Reminder) error
	DueInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.Reminder, error)
	CountDueBefore(ctx context.Context, userID int64, until time.Time) (int, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	WithMorningSummary(ctx context.Context) ([]*models.User, error)
	All(ctx context.Context) ([]*models.User, error)
}

type LogStore interface {
	CountsSince(ctx context.Context, userID int64, since time.Time) (models.LogCounts, error)
}

type Scheduler struct {
	notifier  notify.Notifier
	reminders ReminderStore
	users     UserStore
	logs      LogStore

	delays    lifecycle.Delays
	defaultTZ string

	fireInterval     time.Duration
	escalateInterval time.Duration
	digestInterval   time.Duration

	fireBusy     atomic.Bool
	escalateBusy atomic.Bool
	digestBusy   atomic.Bool

	// lastWeekly dedupes the weekly recap inside its tolerance window.
	lastWeekly map[int64]time.Time

	wakeCh chan struct{}
	now    func() time.Time
}

func New(
	notifier notify.Notifier,
	reminders ReminderStore,
	users UserStore,
	logs LogStore,
	delays lifecycle.Delays,
	defaultTZ string,
) *Scheduler {
	return &Scheduler{
		notifier:         notifier,
		reminders:        reminders,
		users:            users,
		logs:             logs,
		delays:           delays,
		defaultTZ:        defaultTZ,
		fireInterval:     30 * time.Second,
		escalateInterval: 60 * time.Second,
		digestInterval:   time.Minute,
		lastWeekly:       make(map[int64]time.Time),
		wakeCh:           make(chan struct{}, 1),
		now:              time.Now,
	}
}

// Wake triggers an immediate fire check. Non-blocking if one is already
// pending.
func (s *Scheduler) Wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	go s.runFireLoop(ctx)
	go s.runLoop(ctx, "escalation", s.escalateInterval, &s.escalateBusy, s.checkEscalations)
	go s.runLoop(ctx, "digest", s.digestInterval, &s.digestBusy, s.checkDigests)
}

func (s *Scheduler) runFireLoop(ctx context.Context) {
	ticker := time.NewTicker(s.fireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Fire loop stopped")
			return
		case <-ticker.C:
			s.runGuarded(ctx, "fire", &s.fireBusy, s.checkInitialFires)
		case <-s.wakeCh:
			s.runGuarded(ctx, "fire", &s.fireBusy, s.checkInitialFires)
		}
	}
}

func (s *Scheduler) runLoop(ctx context.Context, name string, interval time.Duration, busy *atomic.Bool, check func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s loop stopped", name)
			return
		case <-ticker.C:
			s.runGuarded(ctx, name, busy, check)
		}
	}
}

// runGuarded skips the cycle when its previous execution is still in
// flight, rather than queueing it.
func (s *Scheduler) runGuarded(ctx context.Context, name string, busy *atomic.Bool, check func(context.Context)) {
	if !busy.CompareAndSwap(false, true) {
		log.Printf("%s cycle still in flight, skipping", name)
		return
	}
	defer busy.Store(false)
	check(ctx)
}

// userContext loads the reminder's owner and their zone. A vanished
// user or broken zone is a skip, never a cycle abort.
func (s *Scheduler) userContext(ctx context.Context, userID int64) (*models.User, *time.Location, bool) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", userID, err)
		return nil, nil, false
	}
	return user, clock.LocationOrDefault(user.Timezone, s.defaultTZ), true
}

// checkInitialFires delivers the first nudge for occurrences that have
// come due. State is persisted only after a successful send, so a
// delivery failure is retried on the next poll.
func (s *Scheduler) checkInitialFires(ctx context.Context) {
	now := s.now()

	reminders, err := s.reminders.DueInitial(ctx, now)
	if err != nil {
		log.Printf("Failed to query due reminders: %v", err)
		return
	}

	for _, reminder := range reminders {
		user, loc, ok := s.userContext(ctx, reminder.UserID)
		if !ok {
			continue
		}

		// Held during quiet hours; surfaces in the morning digest.
		if clock.IsQuietHours(now.In(loc), user.WakeHour, user.SleepHour) {
			continue
		}

		s.sendNudge(ctx, reminder, user, 1, now)
	}
}

// checkEscalations sends follow-up nudges once the category-dependent
// delay since the previous nudge has elapsed. Reminders at MaxNudges
// are never selected: they sit untouched until the user acts.
func (s *Scheduler) checkEscalations(ctx context.Context) {
	now := s.now()

	reminders, err := s.reminders.DueEscalation(ctx, s.delays.MaxNudges)
	if err != nil {
		log.Printf("Failed to query reminders for escalation: %v", err)
		return
	}

	for _, reminder := range reminders {
		user, loc, ok := s.userContext(ctx, reminder.UserID)
		if !ok {
			continue
		}

		if clock.IsQuietHours(now.In(loc), user.WakeHour, user.SleepHour) {
			continue
		}

		if !s.delays.EscalationDue(reminder, now) {
			continue
		}

		s.sendNudge(ctx, reminder, user, reminder.NudgeCount+1, now)
	}
}

func (s *Scheduler) sendNudge(ctx context.Context, reminder *models.Reminder, user *models.User, level int, now time.Time) {
	msg := notify.Message{
		ChatID:   user.ChatID,
		Text:     messages.Nudge(reminder, level),
		Ref:      reminder.ReminderID,
		Category: reminder.Category,
		Actions:  notify.Keyboard(reminder.Category, level),
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Printf("Failed to send nudge %d for reminder %d: %v", level, reminder.ReminderID, err)
		return
	}

	lifecycle.Fire(reminder, now)
	if err := s.reminders.UpdateSchedule(ctx, reminder); err != nil {
		log.Printf("Failed to persist nudge state for reminder %d: %v", reminder.ReminderID, err)
		return
	}
	log.Printf("Sent nudge %d for reminder %d to user %d", level, reminder.ReminderID, user.UserID)
}
