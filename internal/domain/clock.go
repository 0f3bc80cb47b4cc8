package domain

import "time"

// ClockType names the SLA timer kind for a ticket.
type ClockType string

const (
	ClockTypeResponse   ClockType = "response"
	ClockTypeResolution ClockType = "resolution"
)

// ClockStatus enumerates derived clock states.
type ClockStatus string

const (
	ClockStatusRunningOK      ClockStatus = "RUNNING_OK"
	ClockStatusRunningWarning ClockStatus = "RUNNING_WARNING"
	ClockStatusOverdue        ClockStatus = "OVERDUE"
	ClockStatusMet            ClockStatus = "MET"
	ClockStatusStopped        ClockStatus = "STOPPED"
)

// Terminal reports whether the status admits no further transitions.
func (s ClockStatus) Terminal() bool {
	return s == ClockStatusMet || s == ClockStatusStopped
}

// SLAClock is the per-(ticket, clock type) tracking state. A reopen starts a
// new lifecycle under the next cycle number; stopped clocks are frozen, never
// deleted.
type SLAClock struct {
	ID              string
	TicketID        string
	Type            ClockType
	Cycle           int
	RuleID          string
	TargetMinutes   int64
	StartedAt       time.Time
	StoppedAt       *time.Time
	ElapsedMinutes  int64
	Status          ClockStatus
	LastNotifiedPct int
	LastEvaluatedAt time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Running reports whether the clock still accrues time.
func (c *SLAClock) Running() bool {
	return c.StoppedAt == nil && !c.Status.Terminal()
}
