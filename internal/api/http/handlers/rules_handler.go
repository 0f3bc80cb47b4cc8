package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// RulesHandler manages the SLA rule admin endpoints.
type RulesHandler struct {
	config *service.ConfigService
}

// NewRulesHandler constructs handler.
func NewRulesHandler(configService *service.ConfigService) *RulesHandler {
	return &RulesHandler{config: configService}
}

// Create POST /sla/rules.
func (h *RulesHandler) Create(c *fiber.Ctx) error {
	var req dto.SLARuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := ruleFromRequest(req)
	if err := h.config.CreateRule(c.UserContext(), rule); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ruleResponse(rule)})
}

// Update PUT /sla/rules/:id.
func (h *RulesHandler) Update(c *fiber.Ctx) error {
	var req dto.SLARuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := ruleFromRequest(req)
	rule.ID = c.Params("id")
	if err := h.config.UpdateRule(c.UserContext(), rule); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ruleResponse(rule)})
}

// Get GET /sla/rules/:id.
func (h *RulesHandler) Get(c *fiber.Ctx) error {
	rule, err := h.config.GetRule(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if rule == nil {
		return apperrors.NewNotFound("sla rule", map[string]any{"id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": ruleResponse(rule)})
}

// List GET /sla/rules.
func (h *RulesHandler) List(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive", false)
	rules, err := h.config.ListRules(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.SLARuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, ruleResponse(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func ruleFromRequest(req dto.SLARuleRequest) *domain.SLARule {
	return &domain.SLARule{
		PriorityKey:             req.PriorityKey,
		ResponseTargetMinutes:   req.ResponseTargetMinutes,
		ResolutionTargetMinutes: req.ResolutionTargetMinutes,
		WarningThresholdPct:     req.WarningThresholdPct,
		EscalationThresholdPct:  req.EscalationThresholdPct,
		BusinessHoursOnly:       req.BusinessHoursOnly,
		Active:                  req.Active,
	}
}

func ruleResponse(rule *domain.SLARule) dto.SLARuleResponse {
	return dto.SLARuleResponse{
		ID:                      rule.ID,
		PriorityKey:             rule.PriorityKey,
		ResponseTargetMinutes:   rule.ResponseTargetMinutes,
		ResolutionTargetMinutes: rule.ResolutionTargetMinutes,
		WarningThresholdPct:     rule.WarningThresholdPct,
		EscalationThresholdPct:  rule.EscalationThresholdPct,
		BusinessHoursOnly:       rule.BusinessHoursOnly,
		Active:                  rule.Active,
		CreatedAt:               rule.CreatedAt,
		UpdatedAt:               rule.UpdatedAt,
	}
}
