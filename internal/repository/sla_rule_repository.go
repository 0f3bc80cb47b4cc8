package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// SLARuleRepository encapsulates SLA rule persistence.
type SLARuleRepository interface {
	Create(ctx context.Context, rule *domain.SLARule) error
	Update(ctx context.Context, rule *domain.SLARule) error
	GetByID(ctx context.Context, id string) (*domain.SLARule, error)
	// GetActiveByPriority returns (nil, nil) when no active rule matches:
	// an unmatched priority disables tracking and is not an error.
	GetActiveByPriority(ctx context.Context, priorityKey string) (*domain.SLARule, error)
	List(ctx context.Context, includeInactive bool) ([]domain.SLARule, error)
	// CountActiveByPriority supports the one-active-rule-per-priority
	// invariant, optionally excluding a rule being updated.
	CountActiveByPriority(ctx context.Context, priorityKey, excludeID string) (int, error)
}

type slaRuleRepository struct {
	pool *pgxpool.Pool
}

// NewSLARuleRepository instantiates repository.
func NewSLARuleRepository(pool *pgxpool.Pool) SLARuleRepository {
	return &slaRuleRepository{pool: pool}
}

const slaRuleColumns = `id, priority_key, response_target_minutes, resolution_target_minutes,
               warning_threshold_pct, escalation_threshold_pct, business_hours_only, active,
               created_at, updated_at`

func (r *slaRuleRepository) Create(ctx context.Context, rule *domain.SLARule) error {
	const query = `
        INSERT INTO sla_rules (priority_key, response_target_minutes, resolution_target_minutes,
            warning_threshold_pct, escalation_threshold_pct, business_hours_only, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.PriorityKey,
		rule.ResponseTargetMinutes,
		rule.ResolutionTargetMinutes,
		rule.WarningThresholdPct,
		rule.EscalationThresholdPct,
		rule.BusinessHoursOnly,
		rule.Active,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *slaRuleRepository) Update(ctx context.Context, rule *domain.SLARule) error {
	const query = `
        UPDATE sla_rules SET priority_key=$1, response_target_minutes=$2, resolution_target_minutes=$3,
            warning_threshold_pct=$4, escalation_threshold_pct=$5, business_hours_only=$6, active=$7,
            updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		rule.PriorityKey,
		rule.ResponseTargetMinutes,
		rule.ResolutionTargetMinutes,
		rule.WarningThresholdPct,
		rule.EscalationThresholdPct,
		rule.BusinessHoursOnly,
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

func (r *slaRuleRepository) GetByID(ctx context.Context, id string) (*domain.SLARule, error) {
	const query = `SELECT ` + slaRuleColumns + ` FROM sla_rules WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *slaRuleRepository) GetActiveByPriority(ctx context.Context, priorityKey string) (*domain.SLARule, error) {
	const query = `SELECT ` + slaRuleColumns + ` FROM sla_rules WHERE priority_key=$1 AND active=true`
	rule, err := r.fetchSingle(ctx, query, priorityKey)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rule, err
}

func (r *slaRuleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.SLARule, error) {
	var rule domain.SLARule
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&rule.ID,
		&rule.PriorityKey,
		&rule.ResponseTargetMinutes,
		&rule.ResolutionTargetMinutes,
		&rule.WarningThresholdPct,
		&rule.EscalationThresholdPct,
		&rule.BusinessHoursOnly,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *slaRuleRepository) List(ctx context.Context, includeInactive bool) ([]domain.SLARule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules`
	if !includeInactive {
		query += ` WHERE active=true`
	}
	query += ` ORDER BY priority_key ASC, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLARule
	for rows.Next() {
		var rule domain.SLARule
		if err := rows.Scan(
			&rule.ID,
			&rule.PriorityKey,
			&rule.ResponseTargetMinutes,
			&rule.ResolutionTargetMinutes,
			&rule.WarningThresholdPct,
			&rule.EscalationThresholdPct,
			&rule.BusinessHoursOnly,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func (r *slaRuleRepository) CountActiveByPriority(ctx context.Context, priorityKey, excludeID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM sla_rules
        WHERE priority_key=$1 AND active=true AND ($2 = '' OR id <> $2::uuid)`
	var count int
	if err := r.pool.QueryRow(ctx, query, priorityKey, excludeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
