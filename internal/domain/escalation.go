package domain

import "time"

// EscalationRule is one escalation tier bound to an SLA rule. Several tiers
// per rule are allowed (e.g. 80% notifies the team lead, 100% the manager).
type EscalationRule struct {
	ID           string
	RuleID       string
	ThresholdPct int
	NotifyRoles  []NotifyRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
