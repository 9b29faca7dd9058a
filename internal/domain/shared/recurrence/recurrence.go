// Package recurrence implements the cadence arithmetic used by recurring
// invoices and expenses.
package recurrence

import (
	"time"
)

// Frequency is the cadence at which a recurring record regenerates
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// IsValid checks if the frequency is a supported cadence
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of the frequency
func (f Frequency) String() string {
	return string(f)
}

// AllFrequencies returns all supported frequencies
func AllFrequencies() []Frequency {
	return []Frequency{
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyMonthly,
		FrequencyQuarterly,
		FrequencyYearly,
	}
}

// Next returns the date one cadence step after the given date.
// Month-based steps are calendar-correct: the day of month is clamped to
// the last day of the target month, so Jan 31 + MONTHLY is Feb 28 (or 29
// in a leap year) and Feb 29 + YEARLY is Feb 28 the following year.
// time.AddDate alone is not used for month steps because it normalizes
// Jan 31 + 1 month to Mar 3.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(from, 1)
	case FrequencyQuarterly:
		return addMonthsClamped(from, 3)
	case FrequencyYearly:
		return addMonthsClamped(from, 12)
	}
	return from
}

// NextAfter advances from the given date until the result is strictly
// after the reference date. Used to resynchronize schedules that have
// fallen behind (e.g., the generation job was down for several periods).
func (f Frequency) NextAfter(from, after time.Time) time.Time {
	next := f.Next(from)
	for !next.After(after) {
		advanced := f.Next(next)
		if !advanced.After(next) {
			break
		}
		next = advanced
	}
	return next
}

// addMonthsClamped adds months keeping the day of month when possible,
// clamping to the last day of the target month otherwise.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysInMonth(target.Year(), target.Month())
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
