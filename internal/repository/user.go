package repository

import (
	"context"

	"github.com/svampito/nudgebot/internal/database"
	"github.com/svampito/nudgebot/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, chat_id, first_name, timezone, wake_hour, sleep_hour,
	 morning_summary, onboarding_done, created_at`

func scanUser(row pgxRow) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.UserID, &user.ChatID, &user.FirstName, &user.Timezone,
		&user.WakeHour, &user.SleepHour, &user.MorningSummary, &user.OnboardingDone,
		&user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetOrCreate(ctx context.Context, userID, chatID int64, firstName string) (*models.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx,
		`INSERT INTO users (user_id, chat_id, first_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET first_name = EXCLUDED.first_name
		 RETURNING `+userColumns,
		userID, chatID, firstName,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`,
		userID,
	))
}

func (r *UserRepository) SetTimezone(ctx context.Context, userID int64, timezone string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET timezone = $1 WHERE user_id = $2`,
		timezone, userID,
	)
	return err
}

func (r *UserRepository) SetQuietHours(ctx context.Context, userID int64, wakeHour, sleepHour int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET wake_hour = $1, sleep_hour = $2 WHERE user_id = $3`,
		wakeHour, sleepHour, userID,
	)
	return err
}

func (r *UserRepository) SetMorningSummary(ctx context.Context, userID int64, enabled bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET morning_summary = $1 WHERE user_id = $2`,
		enabled, userID,
	)
	return err
}

func (r *UserRepository) SetOnboardingDone(ctx context.Context, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET onboarding_done = true WHERE user_id = $1`,
		userID,
	)
	return err
}

func (r *UserRepository) All(ctx context.Context) ([]*models.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users`)
}

func (r *UserRepository) WithMorningSummary(ctx context.Context) ([]*models.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE morning_summary = true`)
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string) ([]*models.User, error) {
	rows, err := r.db.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
