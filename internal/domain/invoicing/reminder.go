package invoicing

import "time"

// Reminder backoff tiers, keyed to how long the invoice has been overdue.
// Within the first week a client hears from us every two days, then weekly
// up to a month, then fortnightly.
const (
	reminderIntervalFirstWeek  = 2 * 24 * time.Hour
	reminderIntervalFirstMonth = 7 * 24 * time.Hour
	reminderIntervalLongTerm   = 14 * 24 * time.Hour
)

// ReminderInterval returns the minimum gap between reminders for an
// invoice that has been overdue the given number of days
func ReminderInterval(daysOverdue int) time.Duration {
	switch {
	case daysOverdue <= 7:
		return reminderIntervalFirstWeek
	case daysOverdue <= 30:
		return reminderIntervalFirstMonth
	default:
		return reminderIntervalLongTerm
	}
}

// ShouldSendReminder reports whether an overdue reminder is due. The
// first reminder is always sent; later ones respect the backoff schedule
// against the last send time.
func (inv *Invoice) ShouldSendReminder(now time.Time) bool {
	if !inv.Status.IsOutstanding() {
		return false
	}
	if !inv.IsOverdue(now) {
		return false
	}
	if inv.LastReminderSent == nil {
		return true
	}
	interval := ReminderInterval(inv.DaysOverdue(now))
	return now.Sub(*inv.LastReminderSent) >= interval
}

// MarkReminderSent records a reminder dispatch
func (inv *Invoice) MarkReminderSent(now time.Time) {
	inv.LastReminderSent = &now
	inv.ReminderCount++
	inv.touch()
}
