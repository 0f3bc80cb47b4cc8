package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EscalationRuleRepository encapsulates escalation tier persistence.
type EscalationRuleRepository interface {
	Create(ctx context.Context, rule *domain.EscalationRule) error
	Update(ctx context.Context, rule *domain.EscalationRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.EscalationRule, error)
	ListByRule(ctx context.Context, ruleID string) ([]domain.EscalationRule, error)
	// ListActiveByRule returns active tiers ascending by threshold, the
	// order the dispatcher fires them in.
	ListActiveByRule(ctx context.Context, ruleID string) ([]domain.EscalationRule, error)
}

type escalationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRuleRepository instantiates repository.
func NewEscalationRuleRepository(pool *pgxpool.Pool) EscalationRuleRepository {
	return &escalationRuleRepository{pool: pool}
}

func (r *escalationRuleRepository) Create(ctx context.Context, rule *domain.EscalationRule) error {
	const query = `
        INSERT INTO escalation_rules (rule_id, threshold_pct, notify_roles, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.RuleID,
		rule.ThresholdPct,
		rolesToStrings(rule.NotifyRoles),
		rule.Active,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *escalationRuleRepository) Update(ctx context.Context, rule *domain.EscalationRule) error {
	const query = `
        UPDATE escalation_rules SET threshold_pct=$1, notify_roles=$2, active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		rule.ThresholdPct,
		rolesToStrings(rule.NotifyRoles),
		rule.Active,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *escalationRuleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM escalation_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *escalationRuleRepository) GetByID(ctx context.Context, id string) (*domain.EscalationRule, error) {
	const query = `
        SELECT id, rule_id, threshold_pct, notify_roles, active, created_at, updated_at
        FROM escalation_rules WHERE id=$1`
	var rule domain.EscalationRule
	var roles []string
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.RuleID,
		&rule.ThresholdPct,
		&roles,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rule.NotifyRoles = rolesFromStrings(roles)
	return &rule, nil
}

func (r *escalationRuleRepository) ListByRule(ctx context.Context, ruleID string) ([]domain.EscalationRule, error) {
	const query = `
        SELECT id, rule_id, threshold_pct, notify_roles, active, created_at, updated_at
        FROM escalation_rules WHERE rule_id=$1 ORDER BY threshold_pct ASC`
	return r.list(ctx, query, ruleID)
}

func (r *escalationRuleRepository) ListActiveByRule(ctx context.Context, ruleID string) ([]domain.EscalationRule, error) {
	const query = `
        SELECT id, rule_id, threshold_pct, notify_roles, active, created_at, updated_at
        FROM escalation_rules WHERE rule_id=$1 AND active=true ORDER BY threshold_pct ASC`
	return r.list(ctx, query, ruleID)
}

func (r *escalationRuleRepository) list(ctx context.Context, query, ruleID string) ([]domain.EscalationRule, error) {
	rows, err := r.pool.Query(ctx, query, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationRule
	for rows.Next() {
		var rule domain.EscalationRule
		var roles []string
		if err := rows.Scan(
			&rule.ID,
			&rule.RuleID,
			&rule.ThresholdPct,
			&roles,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rule.NotifyRoles = rolesFromStrings(roles)
		result = append(result, rule)
	}
	return result, rows.Err()
}

func rolesToStrings(roles []domain.NotifyRole) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func rolesFromStrings(values []string) []domain.NotifyRole {
	out := make([]domain.NotifyRole, 0, len(values))
	for _, v := range values {
		out = append(out, domain.NotifyRole(v))
	}
	return out
}
