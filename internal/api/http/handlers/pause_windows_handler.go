package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PauseWindowsHandler manages pause-window admin endpoints.
type PauseWindowsHandler struct {
	config *service.ConfigService
}

// NewPauseWindowsHandler constructs handler.
func NewPauseWindowsHandler(configService *service.ConfigService) *PauseWindowsHandler {
	return &PauseWindowsHandler{config: configService}
}

// Create POST /sla/pause-windows.
func (h *PauseWindowsHandler) Create(c *fiber.Ctx) error {
	var req dto.PauseWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	window := &domain.PauseWindow{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Reason:   req.Reason,
	}
	if err := h.config.CreatePauseWindow(c.UserContext(), window); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": pauseWindowResponse(window)})
}

// Update PUT /sla/pause-windows/:id.
func (h *PauseWindowsHandler) Update(c *fiber.Ctx) error {
	var req dto.PauseWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	window := &domain.PauseWindow{
		ID:       c.Params("id"),
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Reason:   req.Reason,
	}
	if err := h.config.UpdatePauseWindow(c.UserContext(), window); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pauseWindowResponse(window)})
}

// Delete DELETE /sla/pause-windows/:id.
func (h *PauseWindowsHandler) Delete(c *fiber.Ctx) error {
	if err := h.config.DeletePauseWindow(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get GET /sla/pause-windows/:id.
func (h *PauseWindowsHandler) Get(c *fiber.Ctx) error {
	window, err := h.config.GetPauseWindow(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if window == nil {
		return apperrors.NewNotFound("pause window", map[string]any{"id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": pauseWindowResponse(window)})
}

// List GET /sla/pause-windows. With from and to set, only windows
// intersecting the range are returned.
func (h *PauseWindowsHandler) List(c *fiber.Ctx) error {
	var windows []domain.PauseWindow
	var err error
	if fromStr, toStr := c.Query("from"), c.Query("to"); fromStr != "" && toStr != "" {
		from, fromErr := time.Parse(time.RFC3339, fromStr)
		to, toErr := time.Parse(time.RFC3339, toStr)
		if fromErr != nil || toErr != nil {
			return apperrors.NewValidationError("from and to must be RFC3339 timestamps", nil)
		}
		windows, err = h.config.ListPauseWindowsInRange(c.UserContext(), from, to)
	} else {
		windows, err = h.config.ListPauseWindows(c.UserContext(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	}
	if err != nil {
		return err
	}
	items := make([]dto.PauseWindowResponse, 0, len(windows))
	for i := range windows {
		items = append(items, pauseWindowResponse(&windows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func pauseWindowResponse(window *domain.PauseWindow) dto.PauseWindowResponse {
	return dto.PauseWindowResponse{
		ID:        window.ID,
		Name:      window.Name,
		StartsAt:  window.StartsAt,
		EndsAt:    window.EndsAt,
		Reason:    window.Reason,
		CreatedAt: window.CreatedAt,
		UpdatedAt: window.UpdatedAt,
	}
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
