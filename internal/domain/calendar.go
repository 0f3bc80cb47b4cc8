package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CalendarDay is one weekly schedule entry. Times are HH:MM in the
// calendar's timezone.
type CalendarDay struct {
	DayOfWeek    int
	IsWorkingDay bool
	StartTime    string
	EndTime      string
}

// BusinessCalendar is the weekly working-hours schedule. Days without an
// entry behave as non-working.
type BusinessCalendar struct {
	Timezone string
	Days     map[time.Weekday]CalendarDay
}

// IsWorkingDay reports whether the day of week counts toward business-hours
// clocks.
func (c BusinessCalendar) IsWorkingDay(dow time.Weekday) bool {
	day, ok := c.Days[dow]
	return ok && day.IsWorkingDay
}

// WorkingWindow returns the configured [start, end) window for the day as
// minutes from midnight. ok is false for non-working or unconfigured days
// and for unparseable or empty windows.
func (c BusinessCalendar) WorkingWindow(dow time.Weekday) (startMin, endMin int, ok bool) {
	day, found := c.Days[dow]
	if !found || !day.IsWorkingDay {
		return 0, 0, false
	}
	start, err := ParseDayMinutes(day.StartTime)
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseDayMinutes(day.EndTime)
	if err != nil {
		return 0, 0, false
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// Location resolves the calendar timezone, falling back to UTC.
func (c BusinessCalendar) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDayMinutes converts an HH:MM string to minutes from midnight.
func ParseDayMinutes(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hours*60 + minutes, nil
}
