package repository

import (
	"context"
	"time"

	"github.com/svampito/nudgebot/internal/database"
	"github.com/svampito/nudgebot/internal/models"
)

type ReminderLogRepository struct {
	db *database.DB
}

func NewReminderLogRepository(db *database.DB) *ReminderLogRepository {
	return &ReminderLogRepository{db: db}
}

// Append inserts an audit row. Logs are never updated or deleted.
func (r *ReminderLogRepository) Append(ctx context.Context, userID int64, reminderID int, action models.LogAction) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminder_logs (user_id, reminder_id, action) VALUES ($1, $2, $3)`,
		userID, reminderID, string(action),
	)
	return err
}

// ListRecentByUser returns a user's latest log rows, newest first.
func (r *ReminderLogRepository) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.ReminderLog, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT log_id, user_id, reminder_id, action, created_at FROM reminder_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.ReminderLog
	for rows.Next() {
		l := &models.ReminderLog{}
		var action string
		if err := rows.Scan(&l.LogID, &l.UserID, &l.ReminderID, &action, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Action = models.LogAction(action)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountsSince tallies a user's actions from the given instant onward.
func (r *ReminderLogRepository) CountsSince(ctx context.Context, userID int64, since time.Time) (models.LogCounts, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT action, COUNT(*) FROM reminder_logs
		 WHERE user_id = $1 AND created_at >= $2
		 GROUP BY action`,
		userID, since,
	)
	if err != nil {
		return models.LogCounts{}, err
	}
	defer rows.Close()

	var counts models.LogCounts
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return models.LogCounts{}, err
		}
		switch models.LogAction(action) {
		case models.LogDone:
			counts.Done = n
		case models.LogSkipped:
			counts.Skipped = n
		case models.LogSnoozed:
			counts.Snoozed = n
		case models.LogCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}
