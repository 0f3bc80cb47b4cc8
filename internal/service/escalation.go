package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
)

// EscalationDispatcher detects threshold crossings during evaluation and
// emits SLAThresholdCrossed events at most once per tier per clock
// lifecycle. De-duplication rides on the clock's persisted high-water mark
// (last notified percent), so process restarts cannot double-fire.
type EscalationDispatcher struct {
	escalations repository.EscalationRuleRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewEscalationDispatcher constructs the dispatcher.
func NewEscalationDispatcher(escalations repository.EscalationRuleRepository, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *EscalationDispatcher {
	return &EscalationDispatcher{
		escalations: escalations,
		dispatcher:  dispatcher,
		logger:      logger,
		metrics:     metrics,
	}
}

// Pending returns the tiers newly crossed at currentPct, ascending, plus the
// new high-water mark to persist. When the SLA rule has no explicit tiers,
// its own escalation threshold acts as a single manager-facing tier.
func (d *EscalationDispatcher) Pending(ctx context.Context, clock *domain.SLAClock, rule *domain.SLARule, currentPct float64) ([]domain.EscalationRule, int, error) {
	tiers, err := d.escalations.ListActiveByRule(ctx, clock.RuleID)
	if err != nil {
		return nil, clock.LastNotifiedPct, err
	}
	if len(tiers) == 0 && rule.EscalationThresholdPct > 0 {
		tiers = []domain.EscalationRule{{
			RuleID:       rule.ID,
			ThresholdPct: rule.EscalationThresholdPct,
			NotifyRoles:  []domain.NotifyRole{domain.NotifyRoleManager},
			Active:       true,
		}}
	}

	// the high-water walk below assumes ascending thresholds; do not trust
	// repository ordering for that
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].ThresholdPct < tiers[j].ThresholdPct
	})

	mark := clock.LastNotifiedPct
	var fired []domain.EscalationRule
	for _, tier := range tiers {
		if tier.ThresholdPct <= mark {
			continue
		}
		if currentPct < float64(tier.ThresholdPct) {
			continue
		}
		fired = append(fired, tier)
		mark = tier.ThresholdPct
	}
	return fired, mark, nil
}

// Emit publishes the crossing events for tiers already persisted into the
// clock's high-water mark. Called only after the conditional write succeeds,
// so a lost write race never produces a duplicate emission.
func (d *EscalationDispatcher) Emit(ctx context.Context, clock *domain.SLAClock, fired []domain.EscalationRule) {
	for _, tier := range fired {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSLAThresholdCrossed,
			TicketID:  clock.TicketID,
			Timestamp: clock.LastEvaluatedAt,
			Payload: events.SLAThresholdCrossedPayload{
				ClockType:    clock.Type,
				ThresholdPct: tier.ThresholdPct,
				NotifyRoles:  tier.NotifyRoles,
			},
		}
		if err := d.dispatcher.Publish(ctx, event); err != nil {
			d.logger.Warn("escalation publish failed",
				zap.String("ticket_id", clock.TicketID),
				zap.Int("threshold_pct", tier.ThresholdPct),
				zap.Error(err))
			continue
		}
		d.metrics.RecordEscalation()
		d.logger.Info("sla threshold crossed",
			zap.String("ticket_id", clock.TicketID),
			zap.String("clock_type", string(clock.Type)),
			zap.Int("threshold_pct", tier.ThresholdPct))
	}
}
