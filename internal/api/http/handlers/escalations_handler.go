package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// EscalationsHandler manages escalation-tier admin endpoints.
type EscalationsHandler struct {
	config *service.ConfigService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(configService *service.ConfigService) *EscalationsHandler {
	return &EscalationsHandler{config: configService}
}

// Create POST /sla/escalation-rules.
func (h *EscalationsHandler) Create(c *fiber.Ctx) error {
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := escalationFromRequest(req)
	if err := h.config.CreateEscalationRule(c.UserContext(), rule); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": escalationResponse(rule)})
}

// Update PUT /sla/escalation-rules/:id.
func (h *EscalationsHandler) Update(c *fiber.Ctx) error {
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := escalationFromRequest(req)
	rule.ID = c.Params("id")
	if err := h.config.UpdateEscalationRule(c.UserContext(), rule); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationResponse(rule)})
}

// Delete DELETE /sla/escalation-rules/:id.
func (h *EscalationsHandler) Delete(c *fiber.Ctx) error {
	if err := h.config.DeleteEscalationRule(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List GET /sla/escalation-rules?rule_id=...
func (h *EscalationsHandler) List(c *fiber.Ctx) error {
	ruleID := c.Query("rule_id")
	if ruleID == "" {
		return apperrors.NewValidationError("rule_id query parameter required", nil)
	}
	rules, err := h.config.ListEscalationRules(c.UserContext(), ruleID)
	if err != nil {
		return err
	}
	items := make([]dto.EscalationRuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, escalationResponse(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func escalationFromRequest(req dto.EscalationRuleRequest) *domain.EscalationRule {
	roles := make([]domain.NotifyRole, 0, len(req.NotifyRoles))
	for _, role := range req.NotifyRoles {
		roles = append(roles, domain.NotifyRole(role))
	}
	return &domain.EscalationRule{
		RuleID:       req.RuleID,
		ThresholdPct: req.ThresholdPct,
		NotifyRoles:  roles,
		Active:       req.Active,
	}
}

func escalationResponse(rule *domain.EscalationRule) dto.EscalationRuleResponse {
	roles := make([]string, 0, len(rule.NotifyRoles))
	for _, role := range rule.NotifyRoles {
		roles = append(roles, string(role))
	}
	return dto.EscalationRuleResponse{
		ID:           rule.ID,
		RuleID:       rule.RuleID,
		ThresholdPct: rule.ThresholdPct,
		NotifyRoles:  roles,
		Active:       rule.Active,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
}
