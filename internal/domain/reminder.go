package domain

import (
	"strconv"
	"strings"
	"time"
)

// Per-chat setting keys.
const (
	SettingPillReminder         = "pill_reminder_value"
	SettingWidgetRemainingPills = "widget_remaining_pills"
	SettingWidgetRemainingUnit  = "widget_remaining_pills_unit"
)

// ReminderInterval is the lead time, in days, before the stock runs out
// at which the user wants to be reminded.
type ReminderInterval int

const (
	OneWeek    ReminderInterval = 7
	TwoWeeks   ReminderInterval = 14
	ThreeWeeks ReminderInterval = 21
	FourWeeks  ReminderInterval = 28
)

// DefaultReminderInterval is used when nothing was saved yet.
const DefaultReminderInterval = OneWeek

// ReminderIntervals lists the selectable lead times in display order.
var ReminderIntervals = []ReminderInterval{OneWeek, TwoWeeks, ThreeWeeks, FourWeeks}

// Days returns the lead time in days.
func (r ReminderInterval) Days() int { return int(r) }

// Weeks returns the lead time in whole weeks.
func (r ReminderInterval) Weeks() int { return int(r) / 7 }

// String is the persisted form, e.g. "1 week" or "3 weeks".
func (r ReminderInterval) String() string {
	w := r.Weeks()
	if w == 1 {
		return "1 week"
	}
	return strconv.Itoa(w) + " weeks"
}

// Valid reports whether r is one of the selectable values.
func (r ReminderInterval) Valid() bool {
	for _, v := range ReminderIntervals {
		if v == r {
			return true
		}
	}
	return false
}

// ParseReminderInterval accepts the String form or a plain number of days.
// Anything else yields DefaultReminderInterval.
func ParseReminderInterval(s string) ReminderInterval {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range ReminderIntervals {
		if s == v.String() {
			return v
		}
	}
	if n, err := strconv.Atoi(s); err == nil && ReminderInterval(n).Valid() {
		return ReminderInterval(n)
	}
	return DefaultReminderInterval
}

// ShouldNotify reports whether the remaining stock, expressed in days,
// is within the reminder lead time.
func ShouldNotify(remainingDoseUnits, reminderLeadUnits int) bool {
	return remainingDoseUnits <= reminderLeadUnits
}

// ActionKind tells the notification scheduler what to do.
type ActionKind int

const (
	ActionCancel ActionKind = iota
	ActionSchedule
)

func (k ActionKind) String() string {
	if k == ActionSchedule {
		return "schedule"
	}
	return "cancel"
}

// ReminderAction is the outcome of a policy evaluation.
type ReminderAction struct {
	Kind ActionKind
	At   time.Time // set for ActionSchedule
}

// Decide turns a policy result into a scheduler action anchored at now.
func Decide(shouldNotify bool, now time.Time) ReminderAction {
	if !shouldNotify {
		return ReminderAction{Kind: ActionCancel}
	}
	return ReminderAction{Kind: ActionSchedule, At: now.UTC()}
}

// Reminder is a pending stock notification for a chat.
type Reminder struct {
	ChatID     int64
	AnchorAt   time.Time  // UTC, when the policy last asked for it
	FireAt     time.Time  // UTC, next delivery
	LastSentAt *time.Time // UTC, nullable
}
