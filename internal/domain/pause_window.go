package domain

import "time"

// PauseWindow is an organization-wide interval during which no clock
// accrues time. StartsAt < EndsAt is enforced at write time; windows may
// overlap and are unioned before use.
type PauseWindow struct {
	ID        string
	Name      string
	StartsAt  time.Time
	EndsAt    time.Time
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Intersects reports whether the window touches [start, end).
func (w PauseWindow) Intersects(start, end time.Time) bool {
	return w.StartsAt.Before(end) && w.EndsAt.After(start)
}
