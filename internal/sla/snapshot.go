package sla

import "github.com/spec-kit/sla-engine/internal/domain"

// Snapshot is the read-only configuration handed to the calculator for a
// single evaluation: the weekly calendar and the pause windows touching the
// span under measurement. Callers build it per evaluation; the calculator
// never reads shared state.
type Snapshot struct {
	Calendar     domain.BusinessCalendar
	PauseWindows []domain.PauseWindow
}
