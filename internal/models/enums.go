package models

import "fmt"

// Status is the lifecycle state of a reminder. Cancelled and, for
// once-type reminders, Done are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusDone      Status = "done"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusDone, StatusSkipped, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown reminder status %q", s)
}

// Recurrence determines how the next occurrence is computed after the
// current one is resolved.
type Recurrence string

const (
	RecurrenceOnce          Recurrence = "once"
	RecurrenceDaily         Recurrence = "daily"
	RecurrenceWeekly        Recurrence = "weekly"
	RecurrenceMonthly       Recurrence = "monthly"
	RecurrenceEveryOtherDay Recurrence = "every_other_day"
	RecurrenceCustom        Recurrence = "custom"
)

func ParseRecurrence(s string) (Recurrence, error) {
	switch Recurrence(s) {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly,
		RecurrenceMonthly, RecurrenceEveryOtherDay, RecurrenceCustom:
		return Recurrence(s), nil
	}
	return "", fmt.Errorf("unknown recurrence %q", s)
}

// Category drives nudge copy, emoji and the default advance-notice
// window. Scheduling only cares about it for medicine (shorter nudge
// delay) and multi-time grouping.
type Category string

const (
	CategoryGeneric  Category = "generic"
	CategoryMedicine Category = "medicine"
	CategoryBirthday Category = "birthday"
	CategoryCar      Category = "car"
	CategoryHouse    Category = "house"
	CategoryHealth   Category = "health"
	CategoryDocument Category = "document"
	CategoryHabit    Category = "habit"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGeneric, CategoryMedicine, CategoryBirthday, CategoryCar,
		CategoryHouse, CategoryHealth, CategoryDocument, CategoryHabit:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// LogAction is the kind of user action recorded in a ReminderLog row.
type LogAction string

const (
	LogDone      LogAction = "done"
	LogSkipped   LogAction = "skipped"
	LogSnoozed   LogAction = "snoozed"
	LogCancelled LogAction = "cancelled"
)
