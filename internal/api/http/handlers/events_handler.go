package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/events"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// EventsHandler ingests ticket-lifecycle events posted by the ticket backend
// and hands them to the in-process dispatcher.
type EventsHandler struct {
	dispatcher events.Dispatcher
}

// NewEventsHandler constructs handler.
func NewEventsHandler(dispatcher events.Dispatcher) *EventsHandler {
	return &EventsHandler{dispatcher: dispatcher}
}

// Ingest POST /events/ticket.
func (h *EventsHandler) Ingest(c *fiber.Ctx) error {
	var req dto.TicketEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventType(req.Type),
		TicketID:  req.TicketID,
		Timestamp: at,
	}

	switch event.Type {
	case events.EventTicketCreated:
		if req.PriorityKey == "" {
			return apperrors.NewValidationError("priority_key required for ticket_created", nil)
		}
		event.Payload = events.TicketCreatedPayload{Priority: req.PriorityKey, CreatedAt: at}
	case events.EventTicketPriorityChanged:
		if req.PriorityKey == "" {
			return apperrors.NewValidationError("priority_key required for ticket_priority_changed", nil)
		}
		event.Payload = events.TicketPriorityChangedPayload{
			OldPriority: req.OldPriorityKey,
			NewPriority: req.PriorityKey,
			At:          at,
		}
	case events.EventTicketFirstResponse:
		event.Payload = events.TicketFirstResponsePayload{RespondedAt: at}
	case events.EventTicketResolvedOrClosed:
		event.Payload = events.TicketResolvedOrClosedPayload{At: at}
	case events.EventTicketReopened:
		event.Payload = events.TicketReopenedPayload{At: at}
	default:
		return apperrors.NewValidationError("unknown event type", map[string]any{"type": req.Type})
	}

	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.TicketEventResponse{
		EventID:  event.ID,
		Accepted: true,
	}})
}
