package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/svampito/nudgebot/internal/clock"
	"github.com/svampito/nudgebot/internal/messages"
	"github.com/svampito/nudgebot/internal/models"
	"github.com/svampito/nudgebot/internal/notify"
)

// checkDigests runs both wall-clock-gated digests: the morning agenda
// at each user's wake hour and the weekly recap on Sunday evening.
func (s *Scheduler) checkDigests(ctx context.Context) {
	now := s.now()
	s.sendMorningDigests(ctx, now)
	s.sendWeeklyDigests(ctx, now)
}

// sendMorningDigests sends the day's agenda to every user whose local
// time is exactly their wake hour, minute zero. Reminders held by quiet
// hours overnight show up here.
func (s *Scheduler) sendMorningDigests(ctx context.Context, now time.Time) {
	users, err := s.users.WithMorningSummary(ctx)
	if err != nil {
		log.Printf("Failed to query users for morning digest: %v", err)
		return
	}

	for _, user := range users {
		loc := clock.LocationOrDefault(user.Timezone, s.defaultTZ)
		local := now.In(loc)

		if local.Hour() != user.WakeHour || local.Minute() != 0 {
			continue
		}

		dayStart, dayEnd := clock.LocalDayRange(local, loc)
		reminders, err := s.reminders.DueInRange(ctx, user.UserID, dayStart, dayEnd)
		if err != nil {
			log.Printf("Failed to query today's reminders for user %d: %v", user.UserID, err)
			continue
		}

		items := digestItems(reminders, loc)
		msg := notify.Message{ChatID: user.ChatID, Text: messages.MorningDigest(items)}
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("Failed to send morning digest to user %d: %v", user.UserID, err)
			continue
		}
		log.Printf("Sent morning digest to user %d (%d items)", user.UserID, len(items))
	}
}

// digestItems collapses multi-time sibling rows into one agenda line
// carrying all of the group's times.
func digestItems(reminders []*models.Reminder, loc *time.Location) []messages.DigestItem {
	var items []messages.DigestItem
	seen := make(map[int]bool)

	for _, r := range reminders {
		group := r.ReminderID
		if r.ParentID != nil {
			group = *r.ParentID
		}
		if seen[group] {
			continue
		}
		seen[group] = true

		item := messages.DigestItem{Title: r.Title, Category: r.Category}
		if times := r.FireTimeList(); len(times) > 0 {
			item.Times = times
		} else {
			item.Times = []string{r.NextFire.In(loc).Format("15:04")}
		}
		if r.Category == models.CategoryBirthday {
			item.Note = messages.BirthdayNote
		}

		items = append(items, item)
	}
	return items
}

const weeklyTolerance = 4 // minutes past 20:00 still eligible

// sendWeeklyDigests sends the Sunday-evening recap: what the user did
// with their reminders over the past week plus what is coming in the
// next one. The tolerance window absorbs ticker drift; lastWeekly keeps
// a user from getting the recap more than once per window.
func (s *Scheduler) sendWeeklyDigests(ctx context.Context, now time.Time) {
	users, err := s.users.All(ctx)
	if err != nil {
		log.Printf("Failed to query users for weekly digest: %v", err)
		return
	}

	for _, user := range users {
		loc := clock.LocationOrDefault(user.Timezone, s.defaultTZ)
		local := now.In(loc)

		if local.Weekday() != time.Sunday || local.Hour() != 20 || local.Minute() > weeklyTolerance {
			continue
		}
		if last, ok := s.lastWeekly[user.UserID]; ok && now.Sub(last) < time.Hour {
			continue
		}

		dayStart, _ := clock.LocalDayRange(local, loc)
		weekStart := dayStart.AddDate(0, 0, -7)

		counts, err := s.logs.CountsSince(ctx, user.UserID, weekStart)
		if err != nil {
			log.Printf("Failed to aggregate log counts for user %d: %v", user.UserID, err)
			continue
		}

		upcoming, err := s.reminders.CountDueBefore(ctx, user.UserID, now.AddDate(0, 0, 7))
		if err != nil {
			log.Printf("Failed to count upcoming reminders for user %d: %v", user.UserID, err)
			continue
		}

		msg := notify.Message{ChatID: user.ChatID, Text: messages.WeeklyDigest(counts, upcoming)}
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("Failed to send weekly digest to user %d: %v", user.UserID, err)
			continue
		}

		s.lastWeekly[user.UserID] = now
		log.Printf("Sent weekly digest to user %d", user.UserID)
	}
}
