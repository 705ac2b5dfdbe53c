package ai

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

func TestResolveDateTime(t *testing.T) {
	loc := rome(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)

	t.Run("date and time", func(t *testing.T) {
		got, err := resolveDateTime("2025-06-12", "10:30", now, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 12, 10, 30, 0, 0, loc).UTC(), got)
	})

	t.Run("date only defaults to morning", func(t *testing.T) {
		got, err := resolveDateTime("2025-06-12", "", now, loc)
		require.NoError(t, err)
		assert.Equal(t, 9, got.In(loc).Hour())
	})

	t.Run("bare future time stays today", func(t *testing.T) {
		got, err := resolveDateTime("", "18:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 10, 18, 0, 0, 0, loc).UTC(), got)
	})

	t.Run("bare past time rolls to tomorrow", func(t *testing.T) {
		got, err := resolveDateTime("", "08:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 11, 8, 0, 0, 0, loc).UTC(), got)
	})

	t.Run("malformed date fails", func(t *testing.T) {
		_, err := resolveDateTime("12/06/2025", "10:00", now, loc)
		assert.Error(t, err)
	})
}

func TestResolveDraft(t *testing.T) {
	loc := rome(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)

	t.Run("full draft", func(t *testing.T) {
		draft, err := resolveDraft(rawDraft{
			Title:       "Prendere l'antibiotico",
			Date:        "2025-06-11",
			Time:        "08:00",
			Recurrence:  "daily",
			FireTimes:   []string{"08:00", "20:00"},
			Category:    "medicine",
			EndDate:     "2025-06-17",
			AdvanceDays: 0,
		}, now, loc)
		require.NoError(t, err)

		assert.Equal(t, models.CategoryMedicine, draft.Category)
		assert.Equal(t, models.RecurrenceDaily, draft.Recurrence)
		require.NotNil(t, draft.FireAt)
		require.NotNil(t, draft.EndDate)
		// End date covers the whole local day.
		assert.Equal(t, 23, draft.EndDate.In(loc).Hour())
	})

	t.Run("unknown category degrades to generic", func(t *testing.T) {
		draft, err := resolveDraft(rawDraft{Title: "x", Category: "pets", Recurrence: "once"}, now, loc)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryGeneric, draft.Category)
	})

	t.Run("unknown recurrence degrades to once", func(t *testing.T) {
		draft, err := resolveDraft(rawDraft{Title: "x", Category: "generic", Recurrence: "fortnightly"}, now, loc)
		require.NoError(t, err)
		assert.Equal(t, models.RecurrenceOnce, draft.Recurrence)
	})

	t.Run("no date or time leaves FireAt unset", func(t *testing.T) {
		draft, err := resolveDraft(rawDraft{Title: "x", Category: "generic", Recurrence: "daily"}, now, loc)
		require.NoError(t, err)
		assert.Nil(t, draft.FireAt)
	})
}
