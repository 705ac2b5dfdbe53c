// Package lifecycle owns the reminder state transitions: firing and
// escalation on the scheduler side, and the user actions coming back
// through the chat callbacks. Functions mutate the reminder in memory
// and report what to log; persisting the result is the caller's job.
package lifecycle

import (
	"time"

	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/models"
	"github.com/svampito/nudgebot/internal/recurrence"
)

// Delays are the escalation thresholds. Medicine reminders use the flat
// Medicine delay between every nudge; generic ones wait Nudge2 after the
// first fire and Nudge3-Nudge2 after the second.
type Delays struct {
	Nudge2    time.Duration
	Nudge3    time.Duration
	Medicine  time.Duration
	MaxNudges int
}

// Fire records one sent nudge: Active(n) -> Active(n+1).
func Fire(r *models.Reminder, now time.Time) {
	r.NudgeCount++
	t := now
	r.LastNudgeAt = &t
}

// EscalationDue reports whether the next nudge should be sent. False
// for reminders that have not fired yet, and always false once
// MaxNudges is reached: an exhausted reminder sits untouched until the
// user acts, the system never resolves it on their behalf.
func (d Delays) EscalationDue(r *models.Reminder, now time.Time) bool {
	st, ok := r.NudgeState().(models.AwaitingResponse)
	if !ok {
		return false
	}
	if st.NudgeLevel >= d.MaxNudges {
		return false
	}

	var delay time.Duration
	switch {
	case r.Category == models.CategoryMedicine:
		delay = d.Medicine
	case st.NudgeLevel == 1:
		delay = d.Nudge2
	default:
		delay = d.Nudge3 - d.Nudge2
	}

	return now.Sub(st.LastNudgeAt) >= delay
}

// reschedule applies the recurrence engine's outcome: on a new
// occurrence the nudge sub-state resets, on a terminal outcome the
// reminder is done.
func reschedule(r *models.Reminder, loc *time.Location) {
	out := recurrence.Advance(r, loc)
	if out.Terminal {
		r.Status = models.StatusDone
		r.ResetNudges()
		return
	}
	r.NextFire = out.Next
	r.ResetNudges()
}

// Confirm resolves the current occurrence as done. Recurring reminders
// move to their next occurrence; once-type (or past end-date) reminders
// become terminal.
func Confirm(r *models.Reminder, loc *time.Location, now time.Time) models.LogAction {
	reschedule(r, loc)
	t := now
	r.CompletedAt = &t
	return models.LogDone
}

// Skip resolves the current occurrence without marking it completed.
func Skip(r *models.Reminder, loc *time.Location) models.LogAction {
	reschedule(r, loc)
	return models.LogSkipped
}

// Snooze postpones the reminder by the given number of minutes. Every
// third snooze the postponement is withheld and the caller must surface
// the escalation prompt instead (defer a week, cancel, or one more
// day); warned reports that case.
func Snooze(r *models.Reminder, minutes int, now time.Time) (action models.LogAction, warned bool) {
	r.SnoozeCount++
	if r.SnoozeCount%3 == 0 {
		return models.LogSnoozed, true
	}

	r.NextFire = now.Add(time.Duration(minutes) * time.Minute)
	r.ResetNudges()
	return models.LogSnoozed, false
}

// DeferOneDay moves the reminder to the same wall-clock time tomorrow,
// computed in the user's zone so DST shifts don't move it.
func DeferOneDay(r *models.Reminder, loc *time.Location) models.LogAction {
	r.NextFire = clock.AddLocalDays(r.NextFire, loc, 1)
	r.ResetNudges()
	r.SnoozeCount++
	return models.LogSnoozed
}

// DeferOneWeek pushes the reminder a week out from now. Used to resolve
// the third-snooze prompt, so it does not count as another snooze.
func DeferOneWeek(r *models.Reminder, now time.Time) {
	r.NextFire = now.AddDate(0, 0, 7)
	r.ResetNudges()
}

// Cancel is terminal; there is no transition out of Cancelled.
func Cancel(r *models.Reminder) models.LogAction {
	r.Status = models.StatusCancelled
	return models.LogCancelled
}
