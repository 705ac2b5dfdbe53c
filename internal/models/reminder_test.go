package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"active", "done", "skipped", "cancelled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}

	_, err := ParseStatus("paused")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestParseRecurrence(t *testing.T) {
	for _, s := range []string{"once", "daily", "weekly", "monthly", "every_other_day", "custom"} {
		got, err := ParseRecurrence(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}

	_, err := ParseRecurrence("fortnightly")
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"generic", "medicine", "birthday", "car", "house", "health", "document", "habit"} {
		got, err := ParseCategory(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}

	_, err := ParseCategory("pets")
	assert.Error(t, err)
}

func TestNudgeState(t *testing.T) {
	r := &Reminder{Status: StatusActive}
	assert.IsType(t, NotYetFired{}, r.NudgeState())

	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	r.NudgeCount = 2
	r.LastNudgeAt = &at

	st, ok := r.NudgeState().(AwaitingResponse)
	require.True(t, ok)
	assert.Equal(t, 2, st.NudgeLevel)
	assert.Equal(t, at, st.LastNudgeAt)

	r.ResetNudges()
	assert.IsType(t, NotYetFired{}, r.NudgeState())
	assert.Equal(t, 0, r.NudgeCount)
	assert.Nil(t, r.LastNudgeAt)
}

func TestFireTimeList(t *testing.T) {
	r := &Reminder{}
	assert.Nil(t, r.FireTimeList())

	r.FireTimes = "08:00,14:00,21:00"
	assert.Equal(t, []string{"08:00", "14:00", "21:00"}, r.FireTimeList())
}
