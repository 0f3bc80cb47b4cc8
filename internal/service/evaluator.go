package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
)

const defaultEvaluationRetries = 3

// Evaluator runs the per-(ticket, clock) state machine. Every call follows
// the same cycle: load the clock, compute elapsed from startedAt against a
// fresh config snapshot, derive the status, append a history entry, and
// persist through a versioned conditional write. Version conflicts restart
// the whole cycle, so concurrent triggers converge on a consistent
// recomputation rather than a stale delta.
type Evaluator struct {
	clocks      repository.ClockRepository
	history     repository.HistoryRepository
	rules       repository.SLARuleRepository
	snapshots   *SnapshotLoader
	escalations *EscalationDispatcher
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxRetries  int
}

// EvaluatorDependencies bundles collaborators for the evaluator.
type EvaluatorDependencies struct {
	ClockRepo   repository.ClockRepository
	HistoryRepo repository.HistoryRepository
	RuleRepo    repository.SLARuleRepository
	Snapshots   *SnapshotLoader
	Escalations *EscalationDispatcher
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	MaxRetries  int
}

// NewEvaluator constructs the evaluator.
func NewEvaluator(deps EvaluatorDependencies) *Evaluator {
	retries := deps.MaxRetries
	if retries <= 0 {
		retries = defaultEvaluationRetries
	}
	return &Evaluator{
		clocks:      deps.ClockRepo,
		history:     deps.HistoryRepo,
		rules:       deps.RuleRepo,
		snapshots:   deps.Snapshots,
		escalations: deps.Escalations,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		maxRetries:  retries,
	}
}

// Evaluate recomputes the running clock for (ticket, clock type) as of now.
// Untracked tickets and terminal clocks are silent no-ops.
func (e *Evaluator) Evaluate(ctx context.Context, ticketID string, clockType domain.ClockType, now time.Time) error {
	return e.withRetry(ctx, ticketID, clockType, func(clock *domain.SLAClock) error {
		rule, err := e.rules.GetByID(ctx, clock.RuleID)
		if err != nil {
			return err
		}
		return e.evaluateRunning(ctx, clock, rule, now)
	})
}

// Rebind points a running clock at a new SLA rule (priority change),
// recomputes the target, and re-evaluates. Accrued time stays continuous
// because elapsed is always derived from startedAt.
func (e *Evaluator) Rebind(ctx context.Context, ticketID string, clockType domain.ClockType, rule *domain.SLARule, now time.Time) error {
	return e.withRetry(ctx, ticketID, clockType, func(clock *domain.SLAClock) error {
		target := rule.TargetFor(clock.Type)
		if target <= 0 {
			// the new rule does not track this clock type; keep the
			// current binding running
			return nil
		}
		clock.RuleID = rule.ID
		clock.TargetMinutes = target
		return e.evaluateRunning(ctx, clock, rule, now)
	})
}

// Stop retires the clock at the given instant, freezing elapsedMinutes and
// marking MET when the target was made, STOPPED otherwise. Stopping an
// already-stopped clock is a silent no-op. The stop is itself an evaluation:
// a threshold crossed between the last sweep and the stop instant still
// fires before the clock freezes.
func (e *Evaluator) Stop(ctx context.Context, ticketID string, clockType domain.ClockType, at time.Time) error {
	return e.withRetry(ctx, ticketID, clockType, func(clock *domain.SLAClock) error {
		rule, err := e.rules.GetByID(ctx, clock.RuleID)
		if err != nil {
			return err
		}
		snap, err := e.snapshots.Load(ctx, clock.StartedAt, at)
		if err != nil {
			return err
		}
		elapsed := sla.Elapsed(clock.StartedAt, at, rule.BusinessHoursOnly, snap)
		target := time.Duration(clock.TargetMinutes) * time.Minute

		oldStatus := clock.Status
		if elapsed < target {
			clock.Status = domain.ClockStatusMet
		} else {
			clock.Status = domain.ClockStatusStopped
		}

		fired, mark, err := e.escalations.Pending(ctx, clock, rule, percentOfTarget(elapsed, target))
		if err != nil {
			return err
		}

		stoppedAt := at
		clock.StoppedAt = &stoppedAt
		clock.ElapsedMinutes = int64(elapsed / time.Minute)
		clock.LastEvaluatedAt = at
		clock.LastNotifiedPct = mark

		if err := e.clocks.UpdateVersioned(ctx, clock, clock.Version); err != nil {
			return err
		}
		e.appendHistory(ctx, clock, at)
		e.publishStatusChange(ctx, clock, oldStatus)
		e.escalations.Emit(ctx, clock, fired)
		e.metrics.RecordEvaluation(clock.Status)
		return nil
	})
}

// withRetry loads the current clock and applies fn, restarting the whole
// read-evaluate-write cycle on optimistic-concurrency conflicts.
func (e *Evaluator) withRetry(ctx context.Context, ticketID string, clockType domain.ClockType, fn func(*domain.SLAClock) error) error {
	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		clock, err := e.clocks.GetCurrent(ctx, ticketID, clockType)
		if err != nil {
			return err
		}
		if clock == nil || !clock.Running() {
			return nil
		}

		err = fn(clock)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		lastErr = err
		e.logger.Debug("clock version conflict, retrying",
			zap.String("ticket_id", ticketID),
			zap.String("clock_type", string(clockType)))
	}
	return lastErr
}

func (e *Evaluator) evaluateRunning(ctx context.Context, clock *domain.SLAClock, rule *domain.SLARule, now time.Time) error {
	snap, err := e.snapshots.Load(ctx, clock.StartedAt, now)
	if err != nil {
		return err
	}
	elapsed := sla.Elapsed(clock.StartedAt, now, rule.BusinessHoursOnly, snap)
	target := time.Duration(clock.TargetMinutes) * time.Minute

	oldStatus := clock.Status
	newStatus := nextRunningStatus(oldStatus, elapsed, target, rule.WarningThresholdPct)
	currentPct := percentOfTarget(elapsed, target)

	fired, mark, err := e.escalations.Pending(ctx, clock, rule, currentPct)
	if err != nil {
		return err
	}

	clock.Status = newStatus
	clock.ElapsedMinutes = int64(elapsed / time.Minute)
	clock.LastEvaluatedAt = now
	clock.LastNotifiedPct = mark

	if err := e.clocks.UpdateVersioned(ctx, clock, clock.Version); err != nil {
		return err
	}

	e.appendHistory(ctx, clock, now)
	e.publishStatusChange(ctx, clock, oldStatus)
	e.escalations.Emit(ctx, clock, fired)
	e.metrics.RecordEvaluation(newStatus)
	return nil
}

// nextRunningStatus derives the state for a still-running clock. OVERDUE is
// sticky: elapsed is monotonic while running, and a later rule rebind must
// not un-breach a clock.
func nextRunningStatus(prev domain.ClockStatus, elapsed, target time.Duration, warningPct int) domain.ClockStatus {
	if prev == domain.ClockStatusOverdue {
		return domain.ClockStatusOverdue
	}
	if elapsed >= target {
		return domain.ClockStatusOverdue
	}
	warnAt := time.Duration(int64(target) * int64(warningPct) / 100)
	if warningPct > 0 && elapsed >= warnAt {
		return domain.ClockStatusRunningWarning
	}
	return domain.ClockStatusRunningOK
}

func percentOfTarget(elapsed, target time.Duration) float64 {
	if target <= 0 {
		return 0
	}
	return float64(elapsed) / float64(target) * 100
}

func (e *Evaluator) appendHistory(ctx context.Context, clock *domain.SLAClock, recordedAt time.Time) {
	entry := &domain.SLAHistoryEntry{
		TicketID:       clock.TicketID,
		ClockType:      clock.Type,
		Cycle:          clock.Cycle,
		Status:         clock.Status,
		ElapsedMinutes: clock.ElapsedMinutes,
		TargetMinutes:  clock.TargetMinutes,
		RecordedAt:     recordedAt,
	}
	if err := e.history.Append(ctx, entry); err != nil {
		e.logger.Warn("history append failed",
			zap.String("ticket_id", clock.TicketID),
			zap.String("clock_type", string(clock.Type)),
			zap.Error(err))
	}
}

func (e *Evaluator) publishStatusChange(ctx context.Context, clock *domain.SLAClock, oldStatus domain.ClockStatus) {
	if clock.Status == oldStatus {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLAStatusChanged,
		TicketID:  clock.TicketID,
		Timestamp: clock.LastEvaluatedAt,
		Payload: events.SLAStatusChangedPayload{
			ClockType:      clock.Type,
			OldStatus:      oldStatus,
			NewStatus:      clock.Status,
			ElapsedMinutes: clock.ElapsedMinutes,
			TargetMinutes:  clock.TargetMinutes,
		},
	}
	_ = e.dispatcher.Publish(ctx, event)
}
