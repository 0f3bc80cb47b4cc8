package domain

import "time"

// SLARule defines per-priority response/resolution targets. Rules are
// written by the admin configuration surface and read-only to the engine.
type SLARule struct {
	ID                      string
	PriorityKey             string
	ResponseTargetMinutes   int64
	ResolutionTargetMinutes int64
	WarningThresholdPct     int
	EscalationThresholdPct  int
	BusinessHoursOnly       bool
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TargetFor returns the target minutes for the given clock type. Zero means
// the rule does not track that clock.
func (r *SLARule) TargetFor(clockType ClockType) int64 {
	switch clockType {
	case ClockTypeResponse:
		return r.ResponseTargetMinutes
	case ClockTypeResolution:
		return r.ResolutionTargetMinutes
	default:
		return 0
	}
}
