package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svampito/nudgebot/internal/models"
)

var testDelays = Delays{
	Nudge2:    60 * time.Minute,
	Nudge3:    180 * time.Minute,
	Medicine:  30 * time.Minute,
	MaxNudges: 3,
}

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

func activeReminder(recurrence models.Recurrence, fire time.Time) *models.Reminder {
	return &models.Reminder{
		ReminderID: 1,
		Title:      "test",
		Category:   models.CategoryGeneric,
		Recurrence: recurrence,
		NextFire:   fire,
		Status:     models.StatusActive,
	}
}

func TestFire(t *testing.T) {
	now := time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceDaily, now)

	Fire(r, now)
	assert.Equal(t, 1, r.NudgeCount)
	require.NotNil(t, r.LastNudgeAt)
	assert.Equal(t, now, *r.LastNudgeAt)

	st, ok := r.NudgeState().(models.AwaitingResponse)
	require.True(t, ok)
	assert.Equal(t, 1, st.NudgeLevel)
}

func TestEscalationDue(t *testing.T) {
	base := time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		category models.Category
		nudges   int
		elapsed  time.Duration
		due      bool
	}{
		{"not fired yet", models.CategoryGeneric, 0, time.Hour, false},
		{"generic level 1 before delay", models.CategoryGeneric, 1, 59 * time.Minute, false},
		{"generic level 1 at delay", models.CategoryGeneric, 1, 60 * time.Minute, true},
		{"generic level 2 before delay", models.CategoryGeneric, 2, 119 * time.Minute, false},
		{"generic level 2 at delay", models.CategoryGeneric, 2, 120 * time.Minute, true},
		{"medicine level 1 at flat delay", models.CategoryMedicine, 1, 30 * time.Minute, true},
		{"medicine level 2 at flat delay", models.CategoryMedicine, 2, 30 * time.Minute, true},
		{"medicine before flat delay", models.CategoryMedicine, 1, 29 * time.Minute, false},
		{"at cap never escalates", models.CategoryGeneric, 3, 24 * time.Hour, false},
		{"medicine at cap never escalates", models.CategoryMedicine, 3, 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := activeReminder(models.RecurrenceDaily, base)
			r.Category = tt.category
			r.NudgeCount = tt.nudges
			if tt.nudges > 0 {
				last := base
				r.LastNudgeAt = &last
			}

			assert.Equal(t, tt.due, testDelays.EscalationDue(r, base.Add(tt.elapsed)))
		})
	}
}

func TestConfirmOnceBecomesDone(t *testing.T) {
	loc := rome(t)
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceOnce, now.Add(-time.Hour))
	Fire(r, now.Add(-30*time.Minute))

	action := Confirm(r, loc, now)

	assert.Equal(t, models.LogDone, action)
	assert.Equal(t, models.StatusDone, r.Status)
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, now, *r.CompletedAt)
	assert.Equal(t, 0, r.NudgeCount)
	assert.Nil(t, r.LastNudgeAt)
}

func TestConfirmRecurringAdvances(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()
	now := fire.Add(time.Hour)
	r := activeReminder(models.RecurrenceDaily, fire)
	Fire(r, fire)
	Fire(r, fire.Add(30*time.Minute))

	Confirm(r, loc, now)

	assert.Equal(t, models.StatusActive, r.Status)
	assert.Equal(t, time.Date(2025, 6, 11, 9, 0, 0, 0, loc).UTC(), r.NextFire)
	assert.IsType(t, models.NotYetFired{}, r.NudgeState())
}

func TestSkipAdvancesWithoutCompletion(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()
	r := activeReminder(models.RecurrenceDaily, fire)
	Fire(r, fire)

	action := Skip(r, loc)

	assert.Equal(t, models.LogSkipped, action)
	assert.Equal(t, models.StatusActive, r.Status)
	assert.Nil(t, r.CompletedAt)
	assert.Equal(t, time.Date(2025, 6, 11, 9, 0, 0, 0, loc).UTC(), r.NextFire)
	assert.Equal(t, 0, r.NudgeCount)
}

func TestSnoozeWarnsEveryThird(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceDaily, now)

	warnedAt := make(map[int]bool)
	for i := 1; i <= 9; i++ {
		before := r.NextFire
		_, warned := Snooze(r, 30, now)
		warnedAt[i] = warned
		if warned {
			// Postponement withheld on the warning.
			assert.Equal(t, before, r.NextFire, "snooze %d", i)
		} else {
			assert.Equal(t, now.Add(30*time.Minute), r.NextFire, "snooze %d", i)
		}
	}

	for i := 1; i <= 9; i++ {
		assert.Equal(t, i%3 == 0, warnedAt[i], "snooze %d", i)
	}
	assert.Equal(t, 9, r.SnoozeCount)
}

func TestSnoozeResetsNudges(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceDaily, now)
	Fire(r, now)

	action, warned := Snooze(r, 60, now)

	assert.Equal(t, models.LogSnoozed, action)
	assert.False(t, warned)
	assert.Equal(t, now.Add(time.Hour), r.NextFire)
	assert.Equal(t, 0, r.NudgeCount)
}

func TestDeferOneDay(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()
	r := activeReminder(models.RecurrenceOnce, fire)
	Fire(r, fire)

	action := DeferOneDay(r, loc)

	assert.Equal(t, models.LogSnoozed, action)
	assert.Equal(t, time.Date(2025, 6, 11, 9, 0, 0, 0, loc).UTC(), r.NextFire)
	assert.Equal(t, 0, r.NudgeCount)
	assert.Equal(t, 1, r.SnoozeCount)
}

func TestDeferOneWeekDoesNotCountAsSnooze(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceOnce, now.Add(-time.Hour))
	r.SnoozeCount = 3
	Fire(r, now)

	DeferOneWeek(r, now)

	assert.Equal(t, now.AddDate(0, 0, 7), r.NextFire)
	assert.Equal(t, 3, r.SnoozeCount)
	assert.Equal(t, 0, r.NudgeCount)
}

func TestCancelIsTerminal(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	r := activeReminder(models.RecurrenceDaily, now)

	action := Cancel(r)

	assert.Equal(t, models.LogCancelled, action)
	assert.Equal(t, models.StatusCancelled, r.Status)
}

// A course of medicine confirmed daily until its end date ends as done
// without any manual cleanup.
func TestMedicineCourseRunsToCompletion(t *testing.T) {
	loc := rome(t)
	start := time.Date(2025, 6, 10, 8, 0, 0, 0, loc)
	end := time.Date(2025, 6, 16, 23, 59, 59, 0, loc).UTC()

	r := activeReminder(models.RecurrenceDaily, start.UTC())
	r.Category = models.CategoryMedicine
	r.EndDate = &end

	days := 0
	for r.Status == models.StatusActive {
		require.Less(t, days, 30, "course must terminate")
		Fire(r, r.NextFire)
		Confirm(r, loc, r.NextFire.Add(5*time.Minute))
		days++
	}

	assert.Equal(t, 7, days)
	assert.Equal(t, models.StatusDone, r.Status)
}
