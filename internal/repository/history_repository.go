package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// HistoryFilter narrows history queries for reporting.
type HistoryFilter struct {
	ClockType *domain.ClockType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// HistoryRepository stores the append-only evaluation audit trail.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.SLAHistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string, filter HistoryFilter) ([]domain.SLAHistoryEntry, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.SLAHistoryEntry) error {
	const query = `
        INSERT INTO sla_history (ticket_id, clock_type, cycle, status, elapsed_minutes, target_minutes, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ClockType,
		entry.Cycle,
		entry.Status,
		entry.ElapsedMinutes,
		entry.TargetMinutes,
		entry.RecordedAt,
	).Scan(&entry.ID)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string, filter HistoryFilter) ([]domain.SLAHistoryEntry, error) {
	base := `SELECT id, ticket_id, clock_type, cycle, status, elapsed_minutes, target_minutes, recorded_at
             FROM sla_history`
	clauses := []string{"ticket_id=$1"}
	args := []any{ticketID}

	if filter.ClockType != nil {
		args = append(args, *filter.ClockType)
		clauses = append(clauses, fmt.Sprintf("clock_type=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("recorded_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("recorded_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY clock_type ASC, recorded_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]domain.SLAHistoryEntry, error) {
	var result []domain.SLAHistoryEntry
	for rows.Next() {
		var entry domain.SLAHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ClockType,
			&entry.Cycle,
			&entry.Status,
			&entry.ElapsedMinutes,
			&entry.TargetMinutes,
			&entry.RecordedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
