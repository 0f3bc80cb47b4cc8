package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// CalendarHandler manages the business-calendar admin endpoints.
type CalendarHandler struct {
	config *service.ConfigService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(configService *service.ConfigService) *CalendarHandler {
	return &CalendarHandler{config: configService}
}

// Get GET /sla/calendar.
func (h *CalendarHandler) Get(c *fiber.Ctx) error {
	calendar, err := h.config.GetCalendar(c.UserContext())
	if err != nil {
		return err
	}
	days := make([]dto.CalendarDayRequest, 0, len(calendar.Days))
	for _, day := range calendar.Days {
		days = append(days, dto.CalendarDayRequest{
			DayOfWeek:    day.DayOfWeek,
			IsWorkingDay: day.IsWorkingDay,
			StartTime:    day.StartTime,
			EndTime:      day.EndTime,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayOfWeek < days[j].DayOfWeek })
	return c.JSON(fiber.Map{"data": dto.CalendarResponse{
		Timezone: calendar.Timezone,
		Days:     days,
	}})
}

// Put PUT /sla/calendar. Replaces the whole weekly schedule.
func (h *CalendarHandler) Put(c *fiber.Ctx) error {
	var req struct {
		Days []dto.CalendarDayRequest `json:"days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	days := make([]domain.CalendarDay, 0, len(req.Days))
	for _, day := range req.Days {
		days = append(days, domain.CalendarDay{
			DayOfWeek:    day.DayOfWeek,
			IsWorkingDay: day.IsWorkingDay,
			StartTime:    day.StartTime,
			EndTime:      day.EndTime,
		})
	}
	if err := h.config.PutCalendar(c.UserContext(), days); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": len(days)}})
}
