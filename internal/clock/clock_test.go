package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

func TestIsQuietHours(t *testing.T) {
	loc := rome(t)

	tests := []struct {
		name  string
		hour  int
		min   int
		quiet bool
	}{
		{"just after sleep hour", 23, 30, true},
		{"middle of the night", 3, 0, true},
		{"just before wake hour", 7, 59, true},
		{"exactly wake hour", 8, 0, false},
		{"midday", 14, 0, false},
		{"just before sleep hour", 22, 59, false},
		{"exactly sleep hour", 23, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := time.Date(2025, 6, 10, tt.hour, tt.min, 0, 0, loc)
			assert.Equal(t, tt.quiet, IsQuietHours(local, 8, 23))
		})
	}
}

func TestValidateZone(t *testing.T) {
	assert.NoError(t, ValidateZone("Europe/Rome"))
	assert.NoError(t, ValidateZone("UTC"))
	assert.Error(t, ValidateZone("Mars/Olympus"))
	assert.Error(t, ValidateZone("not a zone"))
}

func TestLocationOrDefault(t *testing.T) {
	loc := LocationOrDefault("Europe/Rome", "UTC")
	assert.Equal(t, "Europe/Rome", loc.String())

	loc = LocationOrDefault("Broken/Zone", "Europe/Rome")
	assert.Equal(t, "Europe/Rome", loc.String())

	loc = LocationOrDefault("Broken/Zone", "Also/Broken")
	assert.Equal(t, time.UTC, loc)
}

func TestAddLocalDaysAcrossSpringDST(t *testing.T) {
	loc := rome(t)

	// 2025-03-30 is the CET -> CEST transition in Rome.
	before := time.Date(2025, 3, 29, 8, 0, 0, 0, loc)
	after := AddLocalDays(before.UTC(), loc, 1)

	local := after.In(loc)
	assert.Equal(t, 8, local.Hour(), "wall-clock hour must survive the transition")
	assert.Equal(t, 30, local.Day())
	// The UTC gap is only 23 hours that day.
	assert.Equal(t, 23*time.Hour, after.Sub(before.UTC()))
}

func TestAddLocalDaysAcrossFallDST(t *testing.T) {
	loc := rome(t)

	// 2025-10-26 is the CEST -> CET transition.
	before := time.Date(2025, 10, 25, 8, 0, 0, 0, loc)
	after := AddLocalDays(before.UTC(), loc, 1)

	local := after.In(loc)
	assert.Equal(t, 8, local.Hour())
	assert.Equal(t, 25*time.Hour, after.Sub(before.UTC()))
}

func TestAddLocalMonthsClamp(t *testing.T) {
	loc := rome(t)

	tests := []struct {
		name    string
		start   time.Time
		months  int
		wantDay int
		wantMon time.Month
	}{
		{"Jan 31 to Feb 28", time.Date(2025, 1, 31, 9, 0, 0, 0, loc), 1, 28, time.February},
		{"Jan 31 to Feb 29 leap year", time.Date(2024, 1, 31, 9, 0, 0, 0, loc), 1, 29, time.February},
		{"Mar 31 to Apr 30", time.Date(2025, 3, 31, 9, 0, 0, 0, loc), 1, 30, time.April},
		{"Dec to Jan year rollover", time.Date(2025, 12, 15, 9, 0, 0, 0, loc), 1, 15, time.January},
		{"plain mid-month", time.Date(2025, 5, 10, 9, 0, 0, 0, loc), 1, 10, time.June},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddLocalMonths(tt.start.UTC(), loc, tt.months).In(loc)
			assert.Equal(t, tt.wantDay, got.Day())
			assert.Equal(t, tt.wantMon, got.Month())
			assert.Equal(t, 9, got.Hour())
		})
	}
}

func TestLocalDayRange(t *testing.T) {
	loc := rome(t)

	// 15:30 local on a summer day (CEST, UTC+2).
	at := time.Date(2025, 6, 10, 15, 30, 0, 0, loc)
	start, end := LocalDayRange(at.UTC(), loc)

	assert.Equal(t, time.Date(2025, 6, 9, 22, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 10, 22, 0, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
