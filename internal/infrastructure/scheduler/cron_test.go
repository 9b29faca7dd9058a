package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCron_Invalid(t *testing.T) {
	for _, spec := range []string{
		"",
		"* * * *",
		"* * * * * *",
		"61 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 7",
		"a * * * *",
		"*/0 * * * *",
		"5-2 * * * *",
	} {
		_, err := ParseCron(spec)
		assert.ErrorIs(t, err, ErrInvalidCronSpec, "spec %q", spec)
	}
}

func TestCronSchedule_Hourly(t *testing.T) {
	schedule, err := ParseCron("0 * * * *")
	require.NoError(t, err)

	assert.True(t, schedule.Matches(time.Date(2026, 3, 10, 14, 0, 30, 0, time.UTC)))
	assert.False(t, schedule.Matches(time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)))
}

func TestCronSchedule_Steps(t *testing.T) {
	schedule, err := ParseCron("*/15 * * * *")
	require.NoError(t, err)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for minute := 0; minute < 60; minute++ {
		got := schedule.Matches(day.Add(time.Duration(minute) * time.Minute))
		want := minute%15 == 0
		assert.Equal(t, want, got, "minute %d", minute)
	}
}

func TestCronSchedule_WeeklyMonday(t *testing.T) {
	schedule, err := ParseCron("0 7 * * 1")
	require.NoError(t, err)

	monday := time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	assert.True(t, schedule.Matches(monday))
	assert.False(t, schedule.Matches(monday.Add(24*time.Hour)))
	assert.False(t, schedule.Matches(monday.Add(time.Hour)))
}

func TestCronSchedule_MonthlyFirst(t *testing.T) {
	schedule, err := ParseCron("0 7 1 * *")
	require.NoError(t, err)

	assert.True(t, schedule.Matches(time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)))
	assert.False(t, schedule.Matches(time.Date(2026, 9, 2, 7, 0, 0, 0, time.UTC)))
}

func TestCronSchedule_DayOrWeekday(t *testing.T) {
	// Restricting both day fields fires on either match
	schedule, err := ParseCron("0 0 1 * 1")
	require.NoError(t, err)

	firstOfMonth := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Tuesday, firstOfMonth.Weekday())
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())
	wednesday := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, schedule.Matches(firstOfMonth))
	assert.True(t, schedule.Matches(monday))
	assert.False(t, schedule.Matches(wednesday))
}

func TestCronSchedule_RangesAndLists(t *testing.T) {
	schedule, err := ParseCron("30 9-17 * * 1,2,3,4,5")
	require.NoError(t, err)

	friday := time.Date(2026, 9, 4, 10, 30, 0, 0, time.UTC)
	require.Equal(t, time.Friday, friday.Weekday())
	saturday := time.Date(2026, 9, 5, 10, 30, 0, 0, time.UTC)

	assert.True(t, schedule.Matches(friday))
	assert.False(t, schedule.Matches(saturday))
	assert.False(t, schedule.Matches(friday.Add(8*time.Hour)))
}

func TestCronSchedule_Next(t *testing.T) {
	schedule, err := ParseCron("0 2 * * *")
	require.NoError(t, err)

	from := time.Date(2026, 3, 10, 14, 25, 40, 0, time.UTC)
	next := schedule.Next(from)
	assert.Equal(t, time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC), next)

	// Strictly after: asking at the firing minute rolls to the next day
	next = schedule.Next(time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 12, 2, 0, 0, 0, time.UTC), next)
}
