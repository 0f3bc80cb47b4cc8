package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

// Consumed from the ticket-lifecycle collaborator.
const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketPriorityChanged  EventType = "ticket_priority_changed"
	EventTicketFirstResponse    EventType = "ticket_first_response"
	EventTicketResolvedOrClosed EventType = "ticket_resolved_or_closed"
	EventTicketReopened         EventType = "ticket_reopened"
)

// Emitted toward the notification/messaging collaborator.
const (
	EventSLAStatusChanged    EventType = "sla_status_changed"
	EventSLAThresholdCrossed EventType = "sla_threshold_crossed"
)

// Event is the envelope carried by the dispatcher.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority string    `json:"old_priority"`
	NewPriority string    `json:"new_priority"`
	At          time.Time `json:"at"`
}

// TicketFirstResponsePayload payload.
type TicketFirstResponsePayload struct {
	RespondedAt time.Time `json:"responded_at"`
}

// TicketResolvedOrClosedPayload payload.
type TicketResolvedOrClosedPayload struct {
	At time.Time `json:"at"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	At time.Time `json:"at"`
}

// SLAStatusChangedPayload payload.
type SLAStatusChangedPayload struct {
	ClockType      domain.ClockType   `json:"clock_type"`
	OldStatus      domain.ClockStatus `json:"old_status"`
	NewStatus      domain.ClockStatus `json:"new_status"`
	ElapsedMinutes int64              `json:"elapsed_minutes"`
	TargetMinutes  int64              `json:"target_minutes"`
}

// SLAThresholdCrossedPayload payload.
type SLAThresholdCrossedPayload struct {
	ClockType    domain.ClockType    `json:"clock_type"`
	ThresholdPct int                 `json:"threshold_pct"`
	NotifyRoles  []domain.NotifyRole `json:"notify_roles"`
}
