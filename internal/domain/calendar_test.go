package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDayMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{" 09:15 ", 555, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"-1:00", 0, true},
		{"nine", 0, true},
		{"", 0, true},
		{"09", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDayMinutes(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBusinessCalendarWorkingWindow(t *testing.T) {
	cal := BusinessCalendar{
		Timezone: "UTC",
		Days: map[time.Weekday]CalendarDay{
			time.Monday:  {DayOfWeek: 1, IsWorkingDay: true, StartTime: "09:00", EndTime: "17:00"},
			time.Tuesday: {DayOfWeek: 2, IsWorkingDay: false},
			time.Friday:  {DayOfWeek: 5, IsWorkingDay: true, StartTime: "17:00", EndTime: "09:00"},
		},
	}

	start, end, ok := cal.WorkingWindow(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, 540, start)
	assert.Equal(t, 1020, end)

	_, _, ok = cal.WorkingWindow(time.Tuesday)
	assert.False(t, ok, "non-working day has no window")

	_, _, ok = cal.WorkingWindow(time.Sunday)
	assert.False(t, ok, "unconfigured day has no window")

	_, _, ok = cal.WorkingWindow(time.Friday)
	assert.False(t, ok, "inverted window is rejected")

	assert.True(t, cal.IsWorkingDay(time.Monday))
	assert.False(t, cal.IsWorkingDay(time.Tuesday))
	assert.False(t, cal.IsWorkingDay(time.Saturday))
}

func TestBusinessCalendarLocation(t *testing.T) {
	assert.Equal(t, time.UTC, BusinessCalendar{}.Location())
	assert.Equal(t, time.UTC, BusinessCalendar{Timezone: "Mars/Olympus"}.Location())

	loc := BusinessCalendar{Timezone: "Europe/Berlin"}.Location()
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestSLARuleTargetFor(t *testing.T) {
	rule := SLARule{ResponseTargetMinutes: 60, ResolutionTargetMinutes: 480}
	assert.Equal(t, int64(60), rule.TargetFor(ClockTypeResponse))
	assert.Equal(t, int64(480), rule.TargetFor(ClockTypeResolution))
	assert.Equal(t, int64(0), rule.TargetFor(ClockType("unknown")))
}

func TestClockRunning(t *testing.T) {
	now := time.Now()
	running := SLAClock{Status: ClockStatusRunningWarning}
	assert.True(t, running.Running())

	stopped := SLAClock{Status: ClockStatusMet, StoppedAt: &now}
	assert.False(t, stopped.Running())

	assert.True(t, ClockStatusMet.Terminal())
	assert.True(t, ClockStatusStopped.Terminal())
	assert.False(t, ClockStatusOverdue.Terminal())
}
