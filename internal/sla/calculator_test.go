package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Monday 2026-03-02 is the anchor for all scenarios.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func weekdayCalendar() domain.BusinessCalendar {
	days := map[time.Weekday]domain.CalendarDay{}
	for dow := time.Monday; dow <= time.Friday; dow++ {
		days[dow] = domain.CalendarDay{
			DayOfWeek:    int(dow),
			IsWorkingDay: true,
			StartTime:    "09:00",
			EndTime:      "17:00",
		}
	}
	return domain.BusinessCalendar{Timezone: "UTC", Days: days}
}

func pause(from, to time.Time) domain.PauseWindow {
	return domain.PauseWindow{StartsAt: from, EndsAt: to}
}

func TestElapsedWallClock(t *testing.T) {
	snap := Snapshot{Calendar: weekdayCalendar()}

	start := monday.Add(10 * time.Hour)

	t.Run("no pauses equals wall clock", func(t *testing.T) {
		assert.Equal(t, 90*time.Minute, Elapsed(start, start.Add(90*time.Minute), false, snap))
	})

	t.Run("end equal to start is zero", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), Elapsed(start, start, false, snap))
	})

	t.Run("end before start is zero", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), Elapsed(start, start.Add(-time.Hour), false, snap))
	})

	t.Run("pause inside span subtracted", func(t *testing.T) {
		snap := Snapshot{PauseWindows: []domain.PauseWindow{
			pause(start.Add(10*time.Minute), start.Add(30*time.Minute)),
		}}
		assert.Equal(t, 40*time.Minute, Elapsed(start, start.Add(time.Hour), false, snap))
	})

	t.Run("pause partially overlapping clipped to span", func(t *testing.T) {
		snap := Snapshot{PauseWindows: []domain.PauseWindow{
			pause(start.Add(-30*time.Minute), start.Add(30*time.Minute)),
		}}
		assert.Equal(t, 30*time.Minute, Elapsed(start, start.Add(time.Hour), false, snap))
	})

	t.Run("overlapping pauses subtracted once", func(t *testing.T) {
		// three windows covering a combined 40 minutes, pairwise overlapping
		snap := Snapshot{PauseWindows: []domain.PauseWindow{
			pause(start.Add(5*time.Minute), start.Add(25*time.Minute)),
			pause(start.Add(15*time.Minute), start.Add(35*time.Minute)),
			pause(start.Add(30*time.Minute), start.Add(45*time.Minute)),
		}}
		assert.Equal(t, 20*time.Minute, Elapsed(start, start.Add(time.Hour), false, snap))
	})

	t.Run("full pause coverage clamps to zero", func(t *testing.T) {
		snap := Snapshot{PauseWindows: []domain.PauseWindow{
			pause(start.Add(-time.Hour), start.Add(2*time.Hour)),
		}}
		assert.Equal(t, time.Duration(0), Elapsed(start, start.Add(time.Hour), false, snap))
	})
}

func TestElapsedBusinessHours(t *testing.T) {
	snap := Snapshot{Calendar: weekdayCalendar()}

	t.Run("inside a single working day", func(t *testing.T) {
		start := monday.Add(10 * time.Hour)
		assert.Equal(t, 2*time.Hour, Elapsed(start, start.Add(2*time.Hour), true, snap))
	})

	t.Run("start before working hours counts from opening", func(t *testing.T) {
		start := monday.Add(7 * time.Hour)
		end := monday.Add(11 * time.Hour)
		assert.Equal(t, 2*time.Hour, Elapsed(start, end, true, snap))
	})

	t.Run("evening until next morning accrues nothing", func(t *testing.T) {
		start := monday.Add(18 * time.Hour)
		end := monday.Add(32 * time.Hour) // Tuesday 08:00
		assert.Equal(t, time.Duration(0), Elapsed(start, end, true, snap))
	})

	t.Run("span across two working days", func(t *testing.T) {
		start := monday.Add(16 * time.Hour)            // Monday 16:00
		end := monday.Add(24*time.Hour + 10*time.Hour) // Tuesday 10:00
		assert.Equal(t, 2*time.Hour, Elapsed(start, end, true, snap))
	})

	t.Run("weekend is skipped", func(t *testing.T) {
		friday16 := monday.Add(4*24*time.Hour + 16*time.Hour)
		nextMonday10 := monday.Add(7*24*time.Hour + 10*time.Hour)
		assert.Equal(t, 2*time.Hour, Elapsed(friday16, nextMonday10, true, snap))
	})

	t.Run("empty calendar accrues nothing", func(t *testing.T) {
		empty := Snapshot{Calendar: domain.BusinessCalendar{Timezone: "UTC"}}
		start := monday.Add(10 * time.Hour)
		assert.Equal(t, time.Duration(0), Elapsed(start, start.Add(48*time.Hour), true, empty))
	})

	t.Run("pause during working hours subtracted", func(t *testing.T) {
		start := monday.Add(10 * time.Hour)
		snap := Snapshot{
			Calendar: weekdayCalendar(),
			PauseWindows: []domain.PauseWindow{
				pause(monday.Add(11*time.Hour), monday.Add(12*time.Hour)),
			},
		}
		assert.Equal(t, 3*time.Hour, Elapsed(start, monday.Add(14*time.Hour), true, snap))
	})

	t.Run("pause outside working hours does not reduce accrual", func(t *testing.T) {
		start := monday.Add(16 * time.Hour)
		end := monday.Add(24*time.Hour + 10*time.Hour)
		snap := Snapshot{
			Calendar: weekdayCalendar(),
			PauseWindows: []domain.PauseWindow{
				// overnight window entirely outside 09:00-17:00
				pause(monday.Add(20*time.Hour), monday.Add(28*time.Hour)),
			},
		}
		assert.Equal(t, 2*time.Hour, Elapsed(start, end, true, snap))
	})

	t.Run("pause straddling the working window is clipped", func(t *testing.T) {
		start := monday.Add(9 * time.Hour)
		end := monday.Add(12 * time.Hour)
		snap := Snapshot{
			Calendar: weekdayCalendar(),
			PauseWindows: []domain.PauseWindow{
				// 06:00-10:00, only the 09:00-10:00 slice is working time
				pause(monday.Add(6*time.Hour), monday.Add(10*time.Hour)),
			},
		}
		assert.Equal(t, 2*time.Hour, Elapsed(start, end, true, snap))
	})
}

func TestElapsedMonotonic(t *testing.T) {
	snap := Snapshot{
		Calendar: weekdayCalendar(),
		PauseWindows: []domain.PauseWindow{
			pause(monday.Add(11*time.Hour), monday.Add(13*time.Hour)),
		},
	}
	start := monday.Add(9 * time.Hour)

	var prev time.Duration
	for step := 0; step <= 48; step++ {
		end := start.Add(time.Duration(step) * 30 * time.Minute)
		got := Elapsed(start, end, true, snap)
		assert.GreaterOrEqual(t, got, prev, "elapsed must never decrease as end advances")
		prev = got
	}
}

func TestElapsedDSTTransitionDay(t *testing.T) {
	sundays := map[time.Weekday]domain.CalendarDay{
		time.Sunday: {DayOfWeek: 0, IsWorkingDay: true, StartTime: "09:00", EndTime: "17:00"},
	}
	snap := Snapshot{Calendar: domain.BusinessCalendar{Timezone: "America/New_York", Days: sundays}}

	t.Run("spring forward keeps the window at local opening time", func(t *testing.T) {
		// Sunday 2026-03-08: 02:00 EST jumps to 03:00 EDT, a 23-hour day.
		// 13:00 UTC is 09:00 EDT; the window opens there, not an hour later.
		start := time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC)
		assert.Equal(t, 2*time.Hour, Elapsed(start, start.Add(2*time.Hour), true, snap))
	})

	t.Run("fall back keeps the window at local opening time", func(t *testing.T) {
		// Sunday 2026-11-01: 02:00 EDT falls back to 01:00 EST, a 25-hour
		// day. 13:00 UTC is still 08:00 EST, before opening.
		start := time.Date(2026, 11, 1, 13, 0, 0, 0, time.UTC)
		assert.Equal(t, 30*time.Minute, Elapsed(start, start.Add(90*time.Minute), true, snap))
	})
}

func TestElapsedTimezoneCalendar(t *testing.T) {
	// calendar in New York: 09:00 local is 14:00 UTC in early March
	days := weekdayCalendar().Days
	snap := Snapshot{Calendar: domain.BusinessCalendar{Timezone: "America/New_York", Days: days}}

	start := monday.Add(13 * time.Hour) // 08:00 in New York
	end := monday.Add(15 * time.Hour)   // 10:00 in New York
	assert.Equal(t, time.Hour, Elapsed(start, end, true, snap))
}
