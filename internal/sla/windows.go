package sla

import (
	"sort"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Interval is a half-open [Start, End) span of absolute time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the span length, zero for degenerate intervals.
func (iv Interval) Duration() time.Duration {
	if !iv.End.After(iv.Start) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Overlap returns the intersection of two intervals as a duration. Windows
// that merely touch at an endpoint contribute nothing.
func Overlap(a, b Interval) time.Duration {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// MergePauseWindows unions overlapping (or touching) pause windows so that a
// span covered by several windows is subtracted once. Input order does not
// matter; zero-length windows are dropped.
func MergePauseWindows(windows []domain.PauseWindow) []Interval {
	intervals := make([]Interval, 0, len(windows))
	for _, w := range windows {
		if w.EndsAt.After(w.StartsAt) {
			intervals = append(intervals, Interval{Start: w.StartsAt, End: w.EndsAt})
		}
	}
	if len(intervals) == 0 {
		return nil
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := []Interval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
