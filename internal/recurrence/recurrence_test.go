package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svampito/nudgebot/internal/models"
)

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

func reminderAt(recurrence models.Recurrence, fire time.Time) *models.Reminder {
	return &models.Reminder{
		Title:      "test",
		Recurrence: recurrence,
		NextFire:   fire,
		Status:     models.StatusActive,
	}
}

func TestAdvanceOnceIsTerminal(t *testing.T) {
	loc := rome(t)
	r := reminderAt(models.RecurrenceOnce, time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC))

	out := Advance(r, loc)
	assert.True(t, out.Terminal)
}

func TestAdvanceDaily(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()
	r := reminderAt(models.RecurrenceDaily, fire)

	out := Advance(r, loc)
	require.False(t, out.Terminal)
	assert.Equal(t, time.Date(2025, 6, 11, 9, 0, 0, 0, loc).UTC(), out.Next)
}

func TestAdvanceDailyAcrossDST(t *testing.T) {
	loc := rome(t)

	t.Run("spring forward", func(t *testing.T) {
		fire := time.Date(2025, 3, 29, 8, 0, 0, 0, loc).UTC()
		out := Advance(reminderAt(models.RecurrenceDaily, fire), loc)
		require.False(t, out.Terminal)
		assert.Equal(t, 8, out.Next.In(loc).Hour())
		assert.Equal(t, 23*time.Hour, out.Next.Sub(fire))
	})

	t.Run("fall back", func(t *testing.T) {
		fire := time.Date(2025, 10, 25, 8, 0, 0, 0, loc).UTC()
		out := Advance(reminderAt(models.RecurrenceDaily, fire), loc)
		require.False(t, out.Terminal)
		assert.Equal(t, 8, out.Next.In(loc).Hour())
		assert.Equal(t, 25*time.Hour, out.Next.Sub(fire))
	})
}

// Weekly advancement is a flat week from the last fire; a multi-day
// weekday set does not produce mid-week occurrences.
func TestAdvanceWeeklyIgnoresDaySet(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 2, 9, 0, 0, 0, loc).UTC() // a Monday
	r := reminderAt(models.RecurrenceWeekly, fire)
	r.RecurrenceDays = "mon,thu"

	out := Advance(r, loc)
	require.False(t, out.Terminal)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 0, 0, 0, loc).UTC(), out.Next)
}

func TestAdvanceEveryOtherDay(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()

	out := Advance(reminderAt(models.RecurrenceEveryOtherDay, fire), loc)
	require.False(t, out.Terminal)
	assert.Equal(t, time.Date(2025, 6, 12, 9, 0, 0, 0, loc).UTC(), out.Next)
}

func TestAdvanceMonthlyClamps(t *testing.T) {
	loc := rome(t)

	t.Run("Jan 31 clamps to Feb 28", func(t *testing.T) {
		fire := time.Date(2025, 1, 31, 9, 0, 0, 0, loc).UTC()
		out := Advance(reminderAt(models.RecurrenceMonthly, fire), loc)
		require.False(t, out.Terminal)
		local := out.Next.In(loc)
		assert.Equal(t, time.February, local.Month())
		assert.Equal(t, 28, local.Day())
	})

	t.Run("leap year keeps Feb 29", func(t *testing.T) {
		fire := time.Date(2024, 1, 31, 9, 0, 0, 0, loc).UTC()
		out := Advance(reminderAt(models.RecurrenceMonthly, fire), loc)
		require.False(t, out.Terminal)
		assert.Equal(t, 29, out.Next.In(loc).Day())
	})
}

func TestAdvanceEndDateBoundary(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()

	t.Run("next exactly at end date survives", func(t *testing.T) {
		r := reminderAt(models.RecurrenceDaily, fire)
		end := time.Date(2025, 6, 11, 9, 0, 0, 0, loc).UTC()
		r.EndDate = &end

		out := Advance(r, loc)
		assert.False(t, out.Terminal)
		assert.Equal(t, end, out.Next)
	})

	t.Run("next one day past end date is terminal", func(t *testing.T) {
		r := reminderAt(models.RecurrenceDaily, fire)
		end := time.Date(2025, 6, 10, 23, 59, 59, 0, loc).UTC()
		r.EndDate = &end

		out := Advance(r, loc)
		assert.True(t, out.Terminal)
	})
}

func TestAdvanceCustomRule(t *testing.T) {
	loc := rome(t)
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, loc).UTC()

	t.Run("weekly by-day rule picks the next listed day", func(t *testing.T) {
		r := reminderAt(models.RecurrenceCustom, monday)
		r.RecurrenceRule = "RRULE:FREQ=WEEKLY;BYDAY=MO,TH"

		out := Advance(r, loc)
		require.False(t, out.Terminal)
		local := out.Next.In(loc)
		assert.Equal(t, time.Thursday, local.Weekday())
		assert.Equal(t, 5, local.Day())
		assert.Equal(t, 9, local.Hour())
	})

	t.Run("exhausted rule ends the series", func(t *testing.T) {
		r := reminderAt(models.RecurrenceCustom, monday)
		r.RecurrenceRule = "RRULE:FREQ=DAILY;COUNT=1"

		out := Advance(r, loc)
		assert.True(t, out.Terminal)
	})

	t.Run("unparseable rule ends the series", func(t *testing.T) {
		r := reminderAt(models.RecurrenceCustom, monday)
		r.RecurrenceRule = "not-a-rule"

		out := Advance(r, loc)
		assert.True(t, out.Terminal)
	})

	t.Run("no rule behaves as daily", func(t *testing.T) {
		r := reminderAt(models.RecurrenceCustom, monday)

		out := Advance(r, loc)
		require.False(t, out.Terminal)
		assert.Equal(t, monday.In(loc).AddDate(0, 0, 1).UTC(), out.Next)
	})
}

// Advance never mutates the reminder it is given.
func TestAdvanceIsPure(t *testing.T) {
	loc := rome(t)
	fire := time.Date(2025, 6, 10, 9, 0, 0, 0, loc).UTC()
	r := reminderAt(models.RecurrenceDaily, fire)
	r.NudgeCount = 2

	Advance(r, loc)
	assert.Equal(t, fire, r.NextFire)
	assert.Equal(t, 2, r.NudgeCount)
	assert.Equal(t, models.StatusActive, r.Status)
}
