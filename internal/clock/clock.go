// Package clock handles the localization rules shared by the scheduler
// cycles: quiet-hours gating and calendar-day arithmetic in a user's
// zone. Timestamps are persisted in UTC; every comparison against "due",
// quiet hours or a day boundary localizes first and converts back after.
package clock

import (
	"fmt"
	"log"
	"time"
)

// IsQuietHours reports whether the local wall-clock hour falls inside
// [sleepHour, 24) or [0, wakeHour). The overnight wrap (sleepHour
// numerically above wakeHour, e.g. 23 and 8) is the normal case.
func IsQuietHours(local time.Time, wakeHour, sleepHour int) bool {
	h := local.Hour()
	return h >= sleepHour || h < wakeHour
}

// ValidateZone rejects invalid IANA zone names at configuration time.
func ValidateZone(name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return nil
}

// LocationOrDefault loads the user's zone, falling back to the default
// zone with a logged warning when the stored name no longer resolves.
// The fallback applies to this computation only; the stored value is
// left for the user to fix.
func LocationOrDefault(name, fallback string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	log.Printf("Invalid stored timezone %q, falling back to %s: %v", name, fallback, err)
	loc, err = time.LoadLocation(fallback)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AddLocalDays adds calendar days in the given zone, preserving the
// wall-clock time across DST transitions, and returns the result in UTC.
func AddLocalDays(t time.Time, loc *time.Location, days int) time.Time {
	return t.In(loc).AddDate(0, 0, days).UTC()
}

// AddLocalMonths moves to the same day-of-month n months ahead in the
// given zone, clamping to the last day of the target month when it is
// shorter (Jan 31 -> Feb 28/29). Returns UTC.
func AddLocalMonths(t time.Time, loc *time.Location, months int) time.Time {
	local := t.In(loc)
	year, month, day := local.Date()

	m := int(month) + months
	y := year + (m-1)/12
	m = (m-1)%12 + 1

	if last := daysInMonth(y, time.Month(m)); day > last {
		day = last
	}

	return time.Date(y, time.Month(m), day,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc).UTC()
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LocalDayRange returns the UTC bounds [start, end) of the local
// calendar day containing t.
func LocalDayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
