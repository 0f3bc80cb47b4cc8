package dto

import "time"

// TicketEventRequest is the envelope the ticket backend posts to the
// ingestion endpoint. Only the fields relevant to the event type need to be
// set.
type TicketEventRequest struct {
	Type        string     `json:"type"`
	TicketID    string     `json:"ticket_id"`
	At          *time.Time `json:"at,omitempty"`
	PriorityKey string     `json:"priority_key,omitempty"`
	// OldPriorityKey carries the previous priority on ticket_priority_changed.
	OldPriorityKey string `json:"old_priority_key,omitempty"`
}

// TicketEventResponse acknowledges ingestion.
type TicketEventResponse struct {
	EventID  string `json:"event_id"`
	Accepted bool   `json:"accepted"`
}
