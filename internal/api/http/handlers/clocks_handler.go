package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
)

// ClocksHandler exposes per-ticket SLA state for reporting.
type ClocksHandler struct {
	clocks  repository.ClockRepository
	history repository.HistoryRepository
}

// NewClocksHandler constructs handler.
func NewClocksHandler(clocks repository.ClockRepository, history repository.HistoryRepository) *ClocksHandler {
	return &ClocksHandler{clocks: clocks, history: history}
}

// ListClocks GET /tickets/:id/clocks. Returns every cycle of every clock,
// newest cycle first per type.
func (h *ClocksHandler) ListClocks(c *fiber.Ctx) error {
	clocks, err := h.clocks.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ClockResponse, 0, len(clocks))
	for i := range clocks {
		items = append(items, clockResponse(&clocks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListHistory GET /tickets/:id/history?clock_type=&from=&to=.
func (h *ClocksHandler) ListHistory(c *fiber.Ctx) error {
	filter := repository.HistoryFilter{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if ct := c.Query("clock_type"); ct != "" {
		clockType := domain.ClockType(ct)
		filter.ClockType = &clockType
	}
	if from := parseRFC3339(c.Query("from")); from != nil {
		filter.From = from
	}
	if to := parseRFC3339(c.Query("to")); to != nil {
		filter.To = to
	}

	entries, err := h.history.ListByTicket(c.UserContext(), c.Params("id"), filter)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:             entry.ID,
			ClockType:      entry.ClockType,
			Cycle:          entry.Cycle,
			Status:         entry.Status,
			ElapsedMinutes: entry.ElapsedMinutes,
			TargetMinutes:  entry.TargetMinutes,
			RecordedAt:     entry.RecordedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func clockResponse(clock *domain.SLAClock) dto.ClockResponse {
	return dto.ClockResponse{
		ID:              clock.ID,
		TicketID:        clock.TicketID,
		ClockType:       clock.Type,
		Cycle:           clock.Cycle,
		RuleID:          clock.RuleID,
		TargetMinutes:   clock.TargetMinutes,
		StartedAt:       clock.StartedAt,
		StoppedAt:       clock.StoppedAt,
		ElapsedMinutes:  clock.ElapsedMinutes,
		Status:          clock.Status,
		LastEvaluatedAt: clock.LastEvaluatedAt,
	}
}

func parseRFC3339(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
