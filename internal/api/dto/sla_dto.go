package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// SLARuleRequest payload.
type SLARuleRequest struct {
	PriorityKey             string `json:"priority_key"`
	ResponseTargetMinutes   int64  `json:"response_target_minutes"`
	ResolutionTargetMinutes int64  `json:"resolution_target_minutes"`
	WarningThresholdPct     int    `json:"warning_threshold_pct"`
	EscalationThresholdPct  int    `json:"escalation_threshold_pct"`
	BusinessHoursOnly       bool   `json:"business_hours_only"`
	Active                  bool   `json:"active"`
}

// SLARuleResponse payload.
type SLARuleResponse struct {
	ID                      string    `json:"id"`
	PriorityKey             string    `json:"priority_key"`
	ResponseTargetMinutes   int64     `json:"response_target_minutes"`
	ResolutionTargetMinutes int64     `json:"resolution_target_minutes"`
	WarningThresholdPct     int       `json:"warning_threshold_pct"`
	EscalationThresholdPct  int       `json:"escalation_threshold_pct"`
	BusinessHoursOnly       bool      `json:"business_hours_only"`
	Active                  bool      `json:"active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// CalendarDayRequest is one weekly schedule entry.
type CalendarDayRequest struct {
	DayOfWeek    int    `json:"day_of_week"`
	IsWorkingDay bool   `json:"is_working_day"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// CalendarResponse payload.
type CalendarResponse struct {
	Timezone string               `json:"timezone"`
	Days     []CalendarDayRequest `json:"days"`
}

// PauseWindowRequest payload.
type PauseWindowRequest struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Reason   string    `json:"reason"`
}

// PauseWindowResponse payload.
type PauseWindowResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EscalationRuleRequest payload.
type EscalationRuleRequest struct {
	RuleID       string   `json:"rule_id"`
	ThresholdPct int      `json:"threshold_pct"`
	NotifyRoles  []string `json:"notify_roles"`
	Active       bool     `json:"active"`
}

// EscalationRuleResponse payload.
type EscalationRuleResponse struct {
	ID           string    `json:"id"`
	RuleID       string    `json:"rule_id"`
	ThresholdPct int       `json:"threshold_pct"`
	NotifyRoles  []string  `json:"notify_roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClockResponse exposes a clock state for reporting.
type ClockResponse struct {
	ID              string             `json:"id"`
	TicketID        string             `json:"ticket_id"`
	ClockType       domain.ClockType   `json:"clock_type"`
	Cycle           int                `json:"cycle"`
	RuleID          string             `json:"rule_id"`
	TargetMinutes   int64              `json:"target_minutes"`
	StartedAt       time.Time          `json:"started_at"`
	StoppedAt       *time.Time         `json:"stopped_at,omitempty"`
	ElapsedMinutes  int64              `json:"elapsed_minutes"`
	Status          domain.ClockStatus `json:"status"`
	LastEvaluatedAt time.Time          `json:"last_evaluated_at"`
}

// HistoryEntryResponse is one audit row.
type HistoryEntryResponse struct {
	ID             string             `json:"id"`
	ClockType      domain.ClockType   `json:"clock_type"`
	Cycle          int                `json:"cycle"`
	Status         domain.ClockStatus `json:"status"`
	ElapsedMinutes int64              `json:"elapsed_minutes"`
	TargetMinutes  int64              `json:"target_minutes"`
	RecordedAt     time.Time          `json:"recorded_at"`
}
