package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// ConfigService is the admin-facing write surface for SLA rules, the
// business calendar, pause windows and escalation tiers. Validation happens
// here, before anything reaches the engine.
type ConfigService struct {
	rules       repository.SLARuleRepository
	calendar    repository.CalendarRepository
	pauses      repository.PauseWindowRepository
	escalations repository.EscalationRuleRepository
	timezone    string
}

// ConfigDependencies bundles repositories for the config service.
type ConfigDependencies struct {
	RuleRepo       repository.SLARuleRepository
	CalendarRepo   repository.CalendarRepository
	PauseRepo      repository.PauseWindowRepository
	EscalationRepo repository.EscalationRuleRepository
	Timezone       string
}

// NewConfigService constructs the service.
func NewConfigService(deps ConfigDependencies) *ConfigService {
	return &ConfigService{
		rules:       deps.RuleRepo,
		calendar:    deps.CalendarRepo,
		pauses:      deps.PauseRepo,
		escalations: deps.EscalationRepo,
		timezone:    deps.Timezone,
	}
}

// CreateRule validates and stores a new SLA rule.
func (s *ConfigService) CreateRule(ctx context.Context, rule *domain.SLARule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if rule.Active {
		count, err := s.rules.CountActiveByPriority(ctx, rule.PriorityKey, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewRuleConflict(rule.PriorityKey)
		}
	}
	return s.rules.Create(ctx, rule)
}

// UpdateRule validates and stores rule changes.
func (s *ConfigService) UpdateRule(ctx context.Context, rule *domain.SLARule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if rule.Active {
		count, err := s.rules.CountActiveByPriority(ctx, rule.PriorityKey, rule.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewRuleConflict(rule.PriorityKey)
		}
	}
	return s.rules.Update(ctx, rule)
}

// GetRule fetches a rule by id.
func (s *ConfigService) GetRule(ctx context.Context, id string) (*domain.SLARule, error) {
	return s.rules.GetByID(ctx, id)
}

// ListRules lists rules, optionally including inactive ones.
func (s *ConfigService) ListRules(ctx context.Context, includeInactive bool) ([]domain.SLARule, error) {
	return s.rules.List(ctx, includeInactive)
}

// GetCalendar returns the weekly schedule with the engine timezone applied.
func (s *ConfigService) GetCalendar(ctx context.Context) (domain.BusinessCalendar, error) {
	days, err := s.calendar.GetDays(ctx)
	if err != nil {
		return domain.BusinessCalendar{}, err
	}
	return repository.BuildCalendar(days, s.timezone), nil
}

// PutCalendar replaces the weekly schedule. Days omitted from the payload
// behave as non-working.
func (s *ConfigService) PutCalendar(ctx context.Context, days []domain.CalendarDay) error {
	seen := map[int]bool{}
	for _, day := range days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return apperrors.NewValidationError("day_of_week must be 0-6", map[string]any{"day_of_week": day.DayOfWeek})
		}
		if seen[day.DayOfWeek] {
			return apperrors.NewValidationError("duplicate day_of_week", map[string]any{"day_of_week": day.DayOfWeek})
		}
		seen[day.DayOfWeek] = true
		if !day.IsWorkingDay {
			continue
		}
		start, err := domain.ParseDayMinutes(day.StartTime)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		end, err := domain.ParseDayMinutes(day.EndTime)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		if end <= start {
			return apperrors.NewValidationError("end_time must be after start_time",
				map[string]any{"day_of_week": day.DayOfWeek})
		}
	}
	return s.calendar.ReplaceDays(ctx, days)
}

// CreatePauseWindow validates and stores a pause window.
func (s *ConfigService) CreatePauseWindow(ctx context.Context, window *domain.PauseWindow) error {
	if err := validatePauseWindow(window); err != nil {
		return err
	}
	return s.pauses.Create(ctx, window)
}

// UpdatePauseWindow validates and stores pause window changes.
func (s *ConfigService) UpdatePauseWindow(ctx context.Context, window *domain.PauseWindow) error {
	if err := validatePauseWindow(window); err != nil {
		return err
	}
	return s.pauses.Update(ctx, window)
}

// DeletePauseWindow removes a window.
func (s *ConfigService) DeletePauseWindow(ctx context.Context, id string) error {
	return s.pauses.Delete(ctx, id)
}

// GetPauseWindow fetches a window by id.
func (s *ConfigService) GetPauseWindow(ctx context.Context, id string) (*domain.PauseWindow, error) {
	return s.pauses.GetByID(ctx, id)
}

// ListPauseWindows lists windows paginated.
func (s *ConfigService) ListPauseWindows(ctx context.Context, limit, offset int) ([]domain.PauseWindow, error) {
	return s.pauses.List(ctx, limit, offset)
}

// ListPauseWindowsInRange lists windows intersecting [start, end).
func (s *ConfigService) ListPauseWindowsInRange(ctx context.Context, start, end time.Time) ([]domain.PauseWindow, error) {
	if !start.Before(end) {
		return nil, apperrors.NewInvalidWindow("from must be before to", nil)
	}
	return s.pauses.ListOverlapping(ctx, start, end)
}

// CreateEscalationRule validates and stores an escalation tier.
func (s *ConfigService) CreateEscalationRule(ctx context.Context, rule *domain.EscalationRule) error {
	if err := s.validateEscalationRule(ctx, rule, true); err != nil {
		return err
	}
	return s.escalations.Create(ctx, rule)
}

// UpdateEscalationRule validates and stores tier changes.
func (s *ConfigService) UpdateEscalationRule(ctx context.Context, rule *domain.EscalationRule) error {
	if err := s.validateEscalationRule(ctx, rule, false); err != nil {
		return err
	}
	return s.escalations.Update(ctx, rule)
}

// DeleteEscalationRule removes a tier.
func (s *ConfigService) DeleteEscalationRule(ctx context.Context, id string) error {
	return s.escalations.Delete(ctx, id)
}

// ListEscalationRules lists all tiers of an SLA rule.
func (s *ConfigService) ListEscalationRules(ctx context.Context, ruleID string) ([]domain.EscalationRule, error) {
	return s.escalations.ListByRule(ctx, ruleID)
}

func validateRule(rule *domain.SLARule) error {
	rule.PriorityKey = strings.TrimSpace(rule.PriorityKey)
	if rule.PriorityKey == "" {
		return apperrors.NewValidationError("priority_key required", nil)
	}
	if rule.ResponseTargetMinutes <= 0 && rule.ResolutionTargetMinutes <= 0 {
		return apperrors.NewValidationError("at least one target must be positive", nil)
	}
	if rule.ResponseTargetMinutes < 0 || rule.ResolutionTargetMinutes < 0 {
		return apperrors.NewValidationError("targets must not be negative", nil)
	}
	if rule.WarningThresholdPct < 0 || rule.WarningThresholdPct > 100 {
		return apperrors.NewValidationError("warning_threshold_pct must be 0-100", nil)
	}
	if rule.EscalationThresholdPct < 0 {
		return apperrors.NewValidationError("escalation_threshold_pct must not be negative", nil)
	}
	return nil
}

func validatePauseWindow(window *domain.PauseWindow) error {
	window.Name = strings.TrimSpace(window.Name)
	if window.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if !window.StartsAt.Before(window.EndsAt) {
		return apperrors.NewInvalidWindow("starts_at must be before ends_at", map[string]any{
			"starts_at": window.StartsAt,
			"ends_at":   window.EndsAt,
		})
	}
	return nil
}

func (s *ConfigService) validateEscalationRule(ctx context.Context, rule *domain.EscalationRule, checkParent bool) error {
	if rule.ThresholdPct <= 0 {
		return apperrors.NewValidationError("threshold_pct must be positive", nil)
	}
	if len(rule.NotifyRoles) == 0 {
		return apperrors.NewValidationError("notify_roles required", nil)
	}
	for _, role := range rule.NotifyRoles {
		if !role.Valid() {
			return apperrors.NewInvalidRole(string(role))
		}
	}
	if checkParent {
		if _, err := s.rules.GetByID(ctx, rule.RuleID); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}
