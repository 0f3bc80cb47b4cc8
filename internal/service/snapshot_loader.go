package service

import (
	"context"
	"time"

	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
)

// SnapshotLoader assembles the point-in-time configuration snapshot each
// evaluation consumes: the weekly calendar plus the pause windows touching
// the measured span. Admin edits are picked up on the next evaluation.
type SnapshotLoader struct {
	calendar repository.CalendarRepository
	pauses   repository.PauseWindowRepository
	timezone string
}

// NewSnapshotLoader builds the loader.
func NewSnapshotLoader(calendar repository.CalendarRepository, pauses repository.PauseWindowRepository, timezone string) *SnapshotLoader {
	return &SnapshotLoader{calendar: calendar, pauses: pauses, timezone: timezone}
}

// Load reads the snapshot for the span [start, end).
func (l *SnapshotLoader) Load(ctx context.Context, start, end time.Time) (sla.Snapshot, error) {
	days, err := l.calendar.GetDays(ctx)
	if err != nil {
		return sla.Snapshot{}, err
	}
	windows, err := l.pauses.ListOverlapping(ctx, start, end)
	if err != nil {
		return sla.Snapshot{}, err
	}
	return sla.Snapshot{
		Calendar:     repository.BuildCalendar(days, l.timezone),
		PauseWindows: windows,
	}, nil
}
