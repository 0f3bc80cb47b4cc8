package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// CalendarRepository stores the weekly working-hours schedule. Days never
// present behave as non-working; reads therefore tolerate partial weeks.
type CalendarRepository interface {
	GetDays(ctx context.Context) ([]domain.CalendarDay, error)
	ReplaceDays(ctx context.Context, days []domain.CalendarDay) error
}

type calendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository builds repository.
func NewCalendarRepository(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepository{pool: pool}
}

func (r *calendarRepository) GetDays(ctx context.Context) ([]domain.CalendarDay, error) {
	const query = `
        SELECT day_of_week, is_working_day, start_time, end_time
        FROM business_calendar ORDER BY day_of_week ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CalendarDay
	for rows.Next() {
		var day domain.CalendarDay
		if err := rows.Scan(&day.DayOfWeek, &day.IsWorkingDay, &day.StartTime, &day.EndTime); err != nil {
			return nil, err
		}
		result = append(result, day)
	}
	return result, rows.Err()
}

func (r *calendarRepository) ReplaceDays(ctx context.Context, days []domain.CalendarDay) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM business_calendar`); err != nil {
		return err
	}
	const insert = `
        INSERT INTO business_calendar (day_of_week, is_working_day, start_time, end_time)
        VALUES ($1,$2,$3,$4)`
	for _, day := range days {
		if _, err := tx.Exec(ctx, insert, day.DayOfWeek, day.IsWorkingDay, day.StartTime, day.EndTime); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// BuildCalendar assembles a domain calendar from stored days and the engine
// timezone.
func BuildCalendar(days []domain.CalendarDay, timezone string) domain.BusinessCalendar {
	cal := domain.BusinessCalendar{
		Timezone: timezone,
		Days:     make(map[time.Weekday]domain.CalendarDay, len(days)),
	}
	for _, day := range days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			continue
		}
		cal.Days[time.Weekday(day.DayOfWeek)] = day
	}
	return cal
}
