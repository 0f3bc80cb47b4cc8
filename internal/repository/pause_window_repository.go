package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PauseWindowRepository encapsulates pause window persistence.
type PauseWindowRepository interface {
	Create(ctx context.Context, window *domain.PauseWindow) error
	Update(ctx context.Context, window *domain.PauseWindow) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.PauseWindow, error)
	List(ctx context.Context, limit, offset int) ([]domain.PauseWindow, error)
	// ListOverlapping returns all windows intersecting [start, end), the
	// calculator's input set.
	ListOverlapping(ctx context.Context, start, end time.Time) ([]domain.PauseWindow, error)
}

type pauseWindowRepository struct {
	pool *pgxpool.Pool
}

// NewPauseWindowRepository instantiates repository.
func NewPauseWindowRepository(pool *pgxpool.Pool) PauseWindowRepository {
	return &pauseWindowRepository{pool: pool}
}

func (r *pauseWindowRepository) Create(ctx context.Context, window *domain.PauseWindow) error {
	const query = `
        INSERT INTO pause_windows (name, starts_at, ends_at, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		window.Name,
		window.StartsAt,
		window.EndsAt,
		window.Reason,
	).Scan(&window.ID, &window.CreatedAt, &window.UpdatedAt)
}

func (r *pauseWindowRepository) Update(ctx context.Context, window *domain.PauseWindow) error {
	const query = `
        UPDATE pause_windows SET name=$1, starts_at=$2, ends_at=$3, reason=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		window.Name,
		window.StartsAt,
		window.EndsAt,
		window.Reason,
		window.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pauseWindowRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM pause_windows WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pauseWindowRepository) GetByID(ctx context.Context, id string) (*domain.PauseWindow, error) {
	const query = `
        SELECT id, name, starts_at, ends_at, reason, created_at, updated_at
        FROM pause_windows WHERE id=$1`
	var window domain.PauseWindow
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&window.ID,
		&window.Name,
		&window.StartsAt,
		&window.EndsAt,
		&window.Reason,
		&window.CreatedAt,
		&window.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *pauseWindowRepository) List(ctx context.Context, limit, offset int) ([]domain.PauseWindow, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, name, starts_at, ends_at, reason, created_at, updated_at
        FROM pause_windows ORDER BY starts_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPauseWindows(rows)
}

func (r *pauseWindowRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]domain.PauseWindow, error) {
	const query = `
        SELECT id, name, starts_at, ends_at, reason, created_at, updated_at
        FROM pause_windows WHERE starts_at < $2 AND ends_at > $1
        ORDER BY starts_at ASC`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPauseWindows(rows)
}

func scanPauseWindows(rows pgx.Rows) ([]domain.PauseWindow, error) {
	var result []domain.PauseWindow
	for rows.Next() {
		var window domain.PauseWindow
		if err := rows.Scan(
			&window.ID,
			&window.Name,
			&window.StartsAt,
			&window.EndsAt,
			&window.Reason,
			&window.CreatedAt,
			&window.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, window)
	}
	return result, rows.Err()
}
