package repository

import (
	"context"
	"log"
	"time"

	"github.com/svampito/nudgebot/internal/database"
	"github.com/svampito/nudgebot/internal/models"
)

// pgxRow is the shared scan surface of pgx.Row and pgx.Rows.
type pgxRow interface {
	Scan(dest ...any) error
}

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `reminder_id, user_id, title, category, next_fire, recurrence,
	 recurrence_days, fire_times, recurrence_rule, end_date, advance_days,
	 nudge_count, last_nudge_at, status, snooze_count,
	 slot_index, slot_total, parent_id, completed_at, created_at`

// scanReminder validates the enum columns at the store boundary.
// Status must be well-formed; a malformed recurrence or category is
// downgraded with a logged warning instead of aborting the whole batch.
func scanReminder(row pgxRow) (*models.Reminder, error) {
	r := &models.Reminder{}
	var category, recurrence, status string
	var recurrenceDays, fireTimes, recurrenceRule *string

	err := row.Scan(&r.ReminderID, &r.UserID, &r.Title, &category, &r.NextFire,
		&recurrence, &recurrenceDays, &fireTimes, &recurrenceRule, &r.EndDate,
		&r.AdvanceDays, &r.NudgeCount, &r.LastNudgeAt, &status, &r.SnoozeCount,
		&r.SlotIndex, &r.SlotTotal, &r.ParentID, &r.CompletedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if r.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	if r.Category, err = models.ParseCategory(category); err != nil {
		log.Printf("Reminder %d has %v, treating as generic", r.ReminderID, err)
		r.Category = models.CategoryGeneric
	}
	if r.Recurrence, err = models.ParseRecurrence(recurrence); err != nil {
		log.Printf("Reminder %d has %v, treating as one-time", r.ReminderID, err)
		r.Recurrence = models.RecurrenceOnce
	}

	if recurrenceDays != nil {
		r.RecurrenceDays = *recurrenceDays
	}
	if fireTimes != nil {
		r.FireTimes = *fireTimes
	}
	if recurrenceRule != nil {
		r.RecurrenceRule = *recurrenceRule
	}
	return r, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (user_id, title, category, next_fire, recurrence,
		     recurrence_days, fire_times, recurrence_rule, end_date, advance_days,
		     status, slot_index, slot_total, parent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING reminder_id, created_at`,
		reminder.UserID, reminder.Title, string(reminder.Category), reminder.NextFire,
		string(reminder.Recurrence), nullable(reminder.RecurrenceDays),
		nullable(reminder.FireTimes), nullable(reminder.RecurrenceRule),
		reminder.EndDate, reminder.AdvanceDays, string(models.StatusActive),
		reminder.SlotIndex, reminder.SlotTotal, reminder.ParentID,
	).Scan(&reminder.ReminderID, &reminder.CreatedAt)
}

func (r *ReminderRepository) GetByID(ctx context.Context, reminderID int) (*models.Reminder, error) {
	return scanReminder(r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = $1`,
		reminderID,
	))
}

// UpdateSchedule atomically persists the scheduling fields mutated by
// the state machine. Last write wins; a user action racing an in-flight
// poll is resolved at the store, not with optimistic locking.
func (r *ReminderRepository) UpdateSchedule(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders
		 SET next_fire = $1, nudge_count = $2, last_nudge_at = $3,
		     status = $4, snooze_count = $5, completed_at = $6
		 WHERE reminder_id = $7`,
		reminder.NextFire, reminder.NudgeCount, reminder.LastNudgeAt,
		string(reminder.Status), reminder.SnoozeCount, reminder.CompletedAt,
		reminder.ReminderID,
	)
	return err
}

// DueInitial selects active reminders whose occurrence has arrived and
// that have not been nudged yet.
func (r *ReminderRepository) DueInitial(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = 'active' AND nudge_count = 0 AND next_fire <= $1
		 ORDER BY next_fire ASC`,
		now,
	)
}

// DueEscalation selects active reminders mid-escalation: at least one
// nudge sent, cap not yet reached.
func (r *ReminderRepository) DueEscalation(ctx context.Context, maxNudges int) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = 'active' AND nudge_count >= 1 AND nudge_count < $1
		       AND last_nudge_at IS NOT NULL
		 ORDER BY last_nudge_at ASC`,
		maxNudges,
	)
}

// DueInRange returns a user's active reminders due in [from, to),
// ordered by fire time. Used for the digest and the listing commands.
func (r *ReminderRepository) DueInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND status = 'active' AND next_fire >= $2 AND next_fire < $3
		 ORDER BY next_fire ASC`,
		userID, from, to,
	)
}

func (r *ReminderRepository) CountDueBefore(ctx context.Context, userID int64, until time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reminders
		 WHERE user_id = $1 AND status = 'active' AND next_fire <= $2`,
		userID, until,
	).Scan(&count)
	return count, err
}

func (r *ReminderRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND status = 'active'
		 ORDER BY next_fire ASC`,
		userID,
	)
}

func (r *ReminderRepository) ListActiveByCategory(ctx context.Context, userID int64, category models.Category) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND status = 'active' AND category = $2
		 ORDER BY next_fire ASC`,
		userID, string(category),
	)
}

// ListDeadlines returns upcoming one-time reminders, soonest first.
func (r *ReminderRepository) ListDeadlines(ctx context.Context, userID int64, until time.Time) ([]*models.Reminder, error) {
	return r.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND status = 'active' AND recurrence = 'once' AND next_fire <= $2
		 ORDER BY next_fire ASC`,
		userID, until,
	)
}

// MostRecentNudged finds the reminder a bare "fatto"/"ok" reply refers
// to: the most recently nudged active one.
func (r *ReminderRepository) MostRecentNudged(ctx context.Context, userID int64) (*models.Reminder, error) {
	return scanReminder(r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND status = 'active' AND nudge_count > 0
		 ORDER BY last_nudge_at DESC NULLS LAST
		 LIMIT 1`,
		userID,
	))
}

func (r *ReminderRepository) queryReminders(ctx context.Context, sql string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
