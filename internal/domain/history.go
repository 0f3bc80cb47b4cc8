package domain

import "time"

// SLAHistoryEntry is an immutable audit row appended on every evaluation,
// whether or not the status changed. Ordered by (ticket, clock type,
// recorded_at).
type SLAHistoryEntry struct {
	ID             string
	TicketID       string
	ClockType      ClockType
	Cycle          int
	Status         ClockStatus
	ElapsedMinutes int64
	TargetMinutes  int64
	RecordedAt     time.Time
}
