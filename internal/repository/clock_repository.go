package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// ErrVersionConflict signals a lost optimistic-concurrency race; callers
// reload and re-run the evaluation.
var ErrVersionConflict = errors.New("clock version conflict")

// ClockRepository encapsulates SLA clock persistence. Clocks are mutated
// only through versioned conditional writes.
type ClockRepository interface {
	Create(ctx context.Context, clock *domain.SLAClock) error
	// GetCurrent returns the latest cycle for (ticket, type), or
	// (nil, nil) when the ticket is untracked.
	GetCurrent(ctx context.Context, ticketID string, clockType domain.ClockType) (*domain.SLAClock, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.SLAClock, error)
	// ListRunning pages through non-terminal clocks for the sweeper.
	ListRunning(ctx context.Context, limit, offset int) ([]domain.SLAClock, error)
	// UpdateVersioned persists the clock only if the stored version still
	// matches expectedVersion, bumping it on success.
	UpdateVersioned(ctx context.Context, clock *domain.SLAClock, expectedVersion int64) error
}

type clockRepository struct {
	pool *pgxpool.Pool
}

// NewClockRepository instantiates repository.
func NewClockRepository(pool *pgxpool.Pool) ClockRepository {
	return &clockRepository{pool: pool}
}

const clockColumns = `id, ticket_id, clock_type, cycle, rule_id, target_minutes, started_at,
               stopped_at, elapsed_minutes, status, last_notified_pct, last_evaluated_at,
               version, created_at, updated_at`

func (r *clockRepository) Create(ctx context.Context, clock *domain.SLAClock) error {
	const query = `
        INSERT INTO sla_clocks (ticket_id, clock_type, cycle, rule_id, target_minutes,
            started_at, elapsed_minutes, status, last_notified_pct, last_evaluated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,1)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		clock.TicketID,
		clock.Type,
		clock.Cycle,
		clock.RuleID,
		clock.TargetMinutes,
		clock.StartedAt,
		clock.ElapsedMinutes,
		clock.Status,
		clock.LastNotifiedPct,
		clock.LastEvaluatedAt,
	).Scan(&clock.ID, &clock.Version, &clock.CreatedAt, &clock.UpdatedAt)
}

func (r *clockRepository) GetCurrent(ctx context.Context, ticketID string, clockType domain.ClockType) (*domain.SLAClock, error) {
	const query = `
        SELECT ` + clockColumns + `
        FROM sla_clocks WHERE ticket_id=$1 AND clock_type=$2
        ORDER BY cycle DESC LIMIT 1`
	clock, err := scanClock(r.pool.QueryRow(ctx, query, ticketID, clockType))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return clock, err
}

func (r *clockRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.SLAClock, error) {
	const query = `
        SELECT ` + clockColumns + `
        FROM sla_clocks WHERE ticket_id=$1 ORDER BY clock_type ASC, cycle ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClocks(rows)
}

func (r *clockRepository) ListRunning(ctx context.Context, limit, offset int) ([]domain.SLAClock, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + clockColumns + `
        FROM sla_clocks WHERE stopped_at IS NULL AND status NOT IN ('MET','STOPPED')
        ORDER BY started_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClocks(rows)
}

func (r *clockRepository) UpdateVersioned(ctx context.Context, clock *domain.SLAClock, expectedVersion int64) error {
	const query = `
        UPDATE sla_clocks SET rule_id=$1, target_minutes=$2, stopped_at=$3, elapsed_minutes=$4,
            status=$5, last_notified_pct=$6, last_evaluated_at=$7, version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9`
	cmd, err := r.pool.Exec(ctx, query,
		clock.RuleID,
		clock.TargetMinutes,
		clock.StoppedAt,
		clock.ElapsedMinutes,
		clock.Status,
		clock.LastNotifiedPct,
		clock.LastEvaluatedAt,
		clock.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	clock.Version = expectedVersion + 1
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClock(row rowScanner) (*domain.SLAClock, error) {
	var clock domain.SLAClock
	if err := row.Scan(
		&clock.ID,
		&clock.TicketID,
		&clock.Type,
		&clock.Cycle,
		&clock.RuleID,
		&clock.TargetMinutes,
		&clock.StartedAt,
		&clock.StoppedAt,
		&clock.ElapsedMinutes,
		&clock.Status,
		&clock.LastNotifiedPct,
		&clock.LastEvaluatedAt,
		&clock.Version,
		&clock.CreatedAt,
		&clock.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &clock, nil
}

func scanClocks(rows pgx.Rows) ([]domain.SLAClock, error) {
	var result []domain.SLAClock
	for rows.Next() {
		clock, err := scanClock(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *clock)
	}
	return result, rows.Err()
}
