// Package notify is the delivery boundary: the scheduler and handlers
// describe what to send as an abstract message with button intents, and
// an injected Notifier maps that onto the transport.
package notify

import (
	"context"

	"github.com/svampito/nudgebot/internal/models"
)

// Action is a button intent attached to a notification. The transport
// adapter decides labels and wire format.
type Action string

const (
	ActionConfirm   Action = "confirm"
	ActionSnooze30  Action = "snooze-30m"
	ActionSnooze60  Action = "snooze-60m"
	ActionDeferDay  Action = "defer-1-day"
	ActionSkip      Action = "skip"
	ActionCancel    Action = "cancel"
	ActionDeferWeek Action = "defer-1-week"
)

// Message is one outbound notification. Ref carries the reminder ID for
// action callbacks; Category picks the action verb variants (medicine
// buttons read differently). Digests send with no actions.
type Message struct {
	ChatID   int64
	Text     string
	Ref      int
	Category models.Category
	Actions  [][]Action
}

// Notifier delivers a message, returning an error on any failure
// including timeouts. Callers treat every failure the same way: log,
// leave state untouched and let the next poll retry.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Keyboard returns the action rows for a nudge at the given escalation
// level (1 = initial fire).
func Keyboard(category models.Category, nudgeLevel int) [][]Action {
	medicine := category == models.CategoryMedicine

	switch nudgeLevel {
	case 1:
		if medicine {
			return [][]Action{{ActionConfirm, ActionSnooze30}}
		}
		return [][]Action{
			{ActionConfirm, ActionSnooze60},
			{ActionDeferDay, ActionCancel},
		}
	case 2:
		if medicine {
			return [][]Action{{ActionConfirm, ActionSnooze30, ActionSkip}}
		}
		return [][]Action{{ActionConfirm, ActionSnooze60, ActionDeferDay}}
	default:
		if medicine {
			return [][]Action{{ActionConfirm, ActionSkip}}
		}
		return [][]Action{{ActionConfirm, ActionDeferDay, ActionCancel}}
	}
}

// WarningKeyboard is the third-snooze escalation prompt: push a week,
// cancel outright, or insist on one more day.
func WarningKeyboard() [][]Action {
	return [][]Action{
		{ActionDeferWeek, ActionCancel},
		{ActionDeferDay},
	}
}
