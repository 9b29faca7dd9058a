package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronSchedule is a parsed five-field cron expression
// (minute, hour, day-of-month, month, day-of-week).
// Supported field syntax: "*", single values, comma lists,
// ranges ("9-17") and step values ("*/15").
type CronSchedule struct {
	spec       string
	minutes    map[int]bool
	hours      map[int]bool
	days       map[int]bool
	months     map[int]bool
	weekdays   map[int]bool
	anyDay     bool
	anyWeekday bool
}

type cronField struct {
	name string
	min  int
	max  int
}

var cronFields = []cronField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day", 1, 31},
	{"month", 1, 12},
	{"weekday", 0, 6},
}

// ParseCron parses a five-field cron expression.
func ParseCron(spec string) (*CronSchedule, error) {
	parts := strings.Fields(spec)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: %q must have 5 fields, got %d", ErrInvalidCronSpec, spec, len(parts))
	}

	sets := make([]map[int]bool, 5)
	for i, part := range parts {
		set, err := parseCronField(part, cronFields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCronSpec, spec, err)
		}
		sets[i] = set
	}

	return &CronSchedule{
		spec:       spec,
		minutes:    sets[0],
		hours:      sets[1],
		days:       sets[2],
		months:     sets[3],
		weekdays:   sets[4],
		anyDay:     parts[2] == "*",
		anyWeekday: parts[4] == "*",
	}, nil
}

// parseCronField expands one cron field into the set of matching values.
func parseCronField(part string, field cronField) (map[int]bool, error) {
	set := make(map[int]bool)

	for _, token := range strings.Split(part, ",") {
		lo, hi, step := field.min, field.max, 1

		if rest, ok := strings.CutPrefix(token, "*/"); ok {
			n, err := strconv.Atoi(rest)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("bad step in %s field: %q", field.name, token)
			}
			step = n
		} else if token != "*" {
			bounds := strings.SplitN(token, "-", 2)
			n, err := strconv.Atoi(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("bad value in %s field: %q", field.name, token)
			}
			lo, hi = n, n
			if len(bounds) == 2 {
				m, err := strconv.Atoi(bounds[1])
				if err != nil {
					return nil, fmt.Errorf("bad range in %s field: %q", field.name, token)
				}
				hi = m
			}
		}

		if lo < field.min || hi > field.max || lo > hi {
			return nil, fmt.Errorf("%s field out of range [%d,%d]: %q", field.name, field.min, field.max, token)
		}

		for v := lo; v <= hi; v += step {
			set[v] = true
		}
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("empty %s field", field.name)
	}
	return set, nil
}

// Matches reports whether the schedule fires in the minute containing t.
func (c *CronSchedule) Matches(t time.Time) bool {
	if !c.minutes[t.Minute()] || !c.hours[t.Hour()] || !c.months[int(t.Month())] {
		return false
	}

	dayMatch := c.days[t.Day()]
	weekdayMatch := c.weekdays[int(t.Weekday())]

	// Standard cron semantics: when both day fields are restricted,
	// either one matching is enough.
	switch {
	case c.anyDay && c.anyWeekday:
		return true
	case c.anyDay:
		return weekdayMatch
	case c.anyWeekday:
		return dayMatch
	default:
		return dayMatch || weekdayMatch
	}
}

// Next returns the first firing time strictly after t, or the zero time
// if none is found within four years (impossible for valid schedules).
func (c *CronSchedule) Next(t time.Time) time.Time {
	candidate := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(4, 0, 0)

	for candidate.Before(limit) {
		if c.Matches(candidate) {
			return candidate
		}
		candidate = candidate.Add(time.Minute)
	}
	return time.Time{}
}

// String returns the original cron expression.
func (c *CronSchedule) String() string {
	return c.spec
}
