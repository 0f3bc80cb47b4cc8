package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/repository"
)

// LifecycleService consumes ticket lifecycle events and drives clock
// creation, stopping, rebinding and reopening. Per-ticket failures are
// returned to the dispatcher (which isolates them) and never affect other
// tickets.
type LifecycleService struct {
	rules     repository.SLARuleRepository
	clocks    repository.ClockRepository
	history   repository.HistoryRepository
	evaluator *Evaluator
	logger    *zap.Logger
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	RuleRepo    repository.SLARuleRepository
	ClockRepo   repository.ClockRepository
	HistoryRepo repository.HistoryRepository
	Evaluator   *Evaluator
	Logger      *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		rules:     deps.RuleRepo,
		clocks:    deps.ClockRepo,
		history:   deps.HistoryRepo,
		evaluator: deps.Evaluator,
		logger:    deps.Logger,
	}
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (s *LifecycleService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.HandleTicketCreated)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, s.HandlePriorityChanged)
	dispatcher.Subscribe(events.EventTicketFirstResponse, s.HandleFirstResponse)
	dispatcher.Subscribe(events.EventTicketResolvedOrClosed, s.HandleResolvedOrClosed)
	dispatcher.Subscribe(events.EventTicketReopened, s.HandleReopened)
}

// HandleTicketCreated starts the response clock and, when the rule defines a
// resolution target, the resolution clock. A priority with no active rule
// leaves the ticket untracked without error.
func (s *LifecycleService) HandleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	rule, err := s.rules.GetActiveByPriority(ctx, payload.Priority)
	if err != nil {
		return err
	}
	if rule == nil {
		s.logger.Debug("no active SLA rule for priority; ticket untracked",
			zap.String("ticket_id", event.TicketID),
			zap.String("priority", payload.Priority))
		return nil
	}

	if err := s.startClock(ctx, event.TicketID, domain.ClockTypeResponse, rule, payload.CreatedAt, 1); err != nil {
		return err
	}
	return s.startClock(ctx, event.TicketID, domain.ClockTypeResolution, rule, payload.CreatedAt, 1)
}

// HandlePriorityChanged rebinds running clocks to the new priority's rule.
// When no active rule matches the new priority the clocks keep their current
// binding; untracking a running clock would discard its audit state.
func (s *LifecycleService) HandlePriorityChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPriorityChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	rule, err := s.rules.GetActiveByPriority(ctx, payload.NewPriority)
	if err != nil {
		return err
	}
	if rule == nil {
		s.logger.Warn("no active SLA rule for new priority; keeping current binding",
			zap.String("ticket_id", event.TicketID),
			zap.String("new_priority", payload.NewPriority))
		return nil
	}

	if err := s.evaluator.Rebind(ctx, event.TicketID, domain.ClockTypeResponse, rule, payload.At); err != nil {
		return err
	}
	return s.evaluator.Rebind(ctx, event.TicketID, domain.ClockTypeResolution, rule, payload.At)
}

// HandleFirstResponse stops the response clock.
func (s *LifecycleService) HandleFirstResponse(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketFirstResponsePayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	return s.evaluator.Stop(ctx, event.TicketID, domain.ClockTypeResponse, payload.RespondedAt)
}

// HandleResolvedOrClosed stops the resolution clock.
func (s *LifecycleService) HandleResolvedOrClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedOrClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	return s.evaluator.Stop(ctx, event.TicketID, domain.ClockTypeResolution, payload.At)
}

// HandleReopened starts a fresh resolution clock lifecycle from the reopen
// instant, inheriting the rule binding of the retired clock. Prior cycles
// and their history stay frozen.
func (s *LifecycleService) HandleReopened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketReopenedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	prev, err := s.clocks.GetCurrent(ctx, event.TicketID, domain.ClockTypeResolution)
	if err != nil {
		return err
	}
	if prev == nil {
		s.logger.Debug("reopen for untracked ticket ignored", zap.String("ticket_id", event.TicketID))
		return nil
	}
	if prev.Running() {
		s.logger.Debug("reopen with running resolution clock ignored", zap.String("ticket_id", event.TicketID))
		return nil
	}

	clock := &domain.SLAClock{
		TicketID:        event.TicketID,
		Type:            domain.ClockTypeResolution,
		Cycle:           prev.Cycle + 1,
		RuleID:          prev.RuleID,
		TargetMinutes:   prev.TargetMinutes,
		StartedAt:       payload.At,
		Status:          domain.ClockStatusRunningOK,
		LastEvaluatedAt: payload.At,
	}
	if err := s.clocks.Create(ctx, clock); err != nil {
		return err
	}
	s.recordCreation(ctx, clock)
	s.logger.Info("resolution clock reopened",
		zap.String("ticket_id", event.TicketID),
		zap.Int("cycle", clock.Cycle))
	return nil
}

func (s *LifecycleService) startClock(ctx context.Context, ticketID string, clockType domain.ClockType, rule *domain.SLARule, at time.Time, cycle int) error {
	target := rule.TargetFor(clockType)
	if target <= 0 {
		return nil
	}
	existing, err := s.clocks.GetCurrent(ctx, ticketID, clockType)
	if err != nil {
		return err
	}
	if existing != nil {
		// duplicate delivery of the creation event
		return nil
	}

	clock := &domain.SLAClock{
		TicketID:        ticketID,
		Type:            clockType,
		Cycle:           cycle,
		RuleID:          rule.ID,
		TargetMinutes:   target,
		StartedAt:       at,
		Status:          domain.ClockStatusRunningOK,
		LastEvaluatedAt: at,
	}
	if err := s.clocks.Create(ctx, clock); err != nil {
		return err
	}
	s.recordCreation(ctx, clock)
	return nil
}

func (s *LifecycleService) recordCreation(ctx context.Context, clock *domain.SLAClock) {
	entry := &domain.SLAHistoryEntry{
		TicketID:       clock.TicketID,
		ClockType:      clock.Type,
		Cycle:          clock.Cycle,
		Status:         clock.Status,
		ElapsedMinutes: 0,
		TargetMinutes:  clock.TargetMinutes,
		RecordedAt:     clock.StartedAt,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("history append failed",
			zap.String("ticket_id", clock.TicketID),
			zap.String("clock_type", string(clock.Type)),
			zap.Error(err))
	}
}
