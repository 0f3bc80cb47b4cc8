package sla

import "time"

// Elapsed computes accrued time between start and end against the snapshot
// configuration. It is a pure function: deterministic for identical inputs,
// monotonic non-decreasing in end, and never negative.
//
// With businessHoursOnly false the result is wall-clock time minus the union
// of pause windows intersecting [start, end). With businessHoursOnly true,
// only time inside the calendar's working windows counts, and pause overlap
// is clipped to those same working windows so that a pause outside business
// hours cannot reduce time that never accrued.
func Elapsed(start, end time.Time, businessHoursOnly bool, snap Snapshot) time.Duration {
	if !end.After(start) {
		return 0
	}

	span := Interval{Start: start, End: end}
	paused := MergePauseWindows(snap.PauseWindows)

	if !businessHoursOnly {
		elapsed := span.Duration()
		for _, p := range paused {
			elapsed -= Overlap(p, span)
		}
		if elapsed < 0 {
			return 0
		}
		return elapsed
	}

	loc := snap.Calendar.Location()
	localStart := start.In(loc)
	localEnd := end.In(loc)

	var working, pausedInWork time.Duration
	for day := dayStart(localStart); day.Before(localEnd); day = nextDay(day) {
		startMin, endMin, ok := snap.Calendar.WorkingWindow(day.Weekday())
		if !ok {
			continue
		}
		window := Interval{
			Start: clockTime(day, startMin),
			End:   clockTime(day, endMin),
		}
		effective := intersect(window, span)
		if effective.Duration() == 0 {
			continue
		}
		working += effective.Duration()
		for _, p := range paused {
			pausedInWork += Overlap(p, effective)
		}
	}

	elapsed := working - pausedInWork
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func intersect(a, b Interval) Interval {
	out := a
	if b.Start.After(out.Start) {
		out.Start = b.Start
	}
	if b.End.Before(out.End) {
		out.End = b.End
	}
	if !out.End.After(out.Start) {
		return Interval{Start: out.Start, End: out.Start}
	}
	return out
}

func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// nextDay advances by calendar day rather than 24h so DST shifts do not skip
// or repeat a day boundary.
func nextDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

// clockTime pins minutes-from-midnight to wall-clock time in the day's
// location. Adding a duration to midnight would slide the window on days
// where a DST transition changes the day's length.
func clockTime(day time.Time, minutes int) time.Time {
	year, month, date := day.Date()
	return time.Date(year, month, date, minutes/60, minutes%60, 0, 0, day.Location())
}
