// Package recurrence computes the next occurrence of a reminder after
// the current one resolves. Advance is pure: it never mutates the
// reminder, and resetting the nudge sub-state on reschedule is the
// caller's job.
package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/models"
)

// Outcome is either the next fire time or a terminal marker meaning no
// further occurrence should be scheduled.
type Outcome struct {
	Next     time.Time
	Terminal bool
}

// Advance computes the occurrence following r.NextFire, doing calendar
// arithmetic in the user's zone so the local wall-clock time survives
// DST transitions.
//
// Weekly reminders advance a flat seven days from the last fire;
// multi-day RecurrenceDays sets are not consulted. Custom reminders
// follow their RRULE; a rule that is exhausted or does not parse ends
// the series, and a custom reminder with no rule at all behaves as
// daily.
func Advance(r *models.Reminder, loc *time.Location) Outcome {
	var next time.Time

	switch r.Recurrence {
	case models.RecurrenceOnce:
		return Outcome{Terminal: true}
	case models.RecurrenceDaily:
		next = clock.AddLocalDays(r.NextFire, loc, 1)
	case models.RecurrenceWeekly:
		next = clock.AddLocalDays(r.NextFire, loc, 7)
	case models.RecurrenceMonthly:
		next = clock.AddLocalMonths(r.NextFire, loc, 1)
	case models.RecurrenceEveryOtherDay:
		next = clock.AddLocalDays(r.NextFire, loc, 2)
	case models.RecurrenceCustom:
		if n, ok := advanceRule(r, loc); ok {
			next = n
		} else if r.RecurrenceRule != "" {
			// Rule present but exhausted: no further occurrence.
			return Outcome{Terminal: true}
		} else {
			next = clock.AddLocalDays(r.NextFire, loc, 1)
		}
	default:
		next = clock.AddLocalDays(r.NextFire, loc, 1)
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return Outcome{Terminal: true}
	}

	return Outcome{Next: next}
}

// advanceRule evaluates an RFC 5545 RRULE anchored at the current fire
// time. Returns false when there is no rule, the rule does not parse,
// or it yields no occurrence after the current fire.
func advanceRule(r *models.Reminder, loc *time.Location) (time.Time, bool) {
	if r.RecurrenceRule == "" {
		return time.Time{}, false
	}

	opt, err := rrule.StrToROption(strings.TrimPrefix(r.RecurrenceRule, "RRULE:"))
	if err != nil {
		return time.Time{}, false
	}

	current := r.NextFire.In(loc)
	opt.Dtstart = current

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, false
	}

	next := rule.After(current, false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next.UTC(), true
}
