package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/events"
)

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.Handler) {}

func postEvent(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/events/ticket", bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestIngestPriorityChangedCarriesBothPriorities(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	app := fiber.New()
	app.Post("/events/ticket", NewEventsHandler(dispatcher).Ingest)

	status := postEvent(t, app, `{
		"type": "ticket_priority_changed",
		"ticket_id": "t-1",
		"priority_key": "urgent",
		"old_priority_key": "high",
		"at": "2026-03-02T09:00:00Z"
	}`)
	assert.Equal(t, fiber.StatusAccepted, status)

	require.Len(t, dispatcher.published, 1)
	payload, ok := dispatcher.published[0].Payload.(events.TicketPriorityChangedPayload)
	require.True(t, ok)
	assert.Equal(t, "high", payload.OldPriority)
	assert.Equal(t, "urgent", payload.NewPriority)
}

func TestIngestTicketCreated(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	app := fiber.New()
	app.Post("/events/ticket", NewEventsHandler(dispatcher).Ingest)

	status := postEvent(t, app, `{
		"type": "ticket_created",
		"ticket_id": "t-2",
		"priority_key": "low",
		"at": "2026-03-02T09:00:00Z"
	}`)
	assert.Equal(t, fiber.StatusAccepted, status)

	require.Len(t, dispatcher.published, 1)
	payload, ok := dispatcher.published[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "low", payload.Priority)
}
