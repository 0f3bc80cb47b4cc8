package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
)

func tier(ruleID string, pct int, active bool, roles ...domain.NotifyRole) domain.EscalationRule {
	return domain.EscalationRule{
		ID:           "tier-" + ruleID,
		RuleID:       ruleID,
		ThresholdPct: pct,
		NotifyRoles:  roles,
		Active:       active,
	}
}

func thresholdPayloads(d *recordingDispatcher) []events.SLAThresholdCrossedPayload {
	var out []events.SLAThresholdCrossedPayload
	for _, event := range d.ofType(events.EventSLAThresholdCrossed) {
		out = append(out, event.Payload.(events.SLAThresholdCrossedPayload))
	}
	return out
}

func TestThresholdFiresExactlyOnce(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 80, true, domain.NotifyRoleTeamLead),
	}

	// sweep the clock every five minutes well past the threshold
	for minute := 5; minute <= 55; minute += 5 {
		require.NoError(t, h.evaluator.Evaluate(ctx, "t-1",
			domain.ClockTypeResponse, mondayNine.Add(time.Duration(minute)*time.Minute)))
	}

	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 1)
	assert.Equal(t, 80, crossed[0].ThresholdPct)
	assert.Equal(t, []domain.NotifyRole{domain.NotifyRoleTeamLead}, crossed[0].NotifyRoles)
	assert.Equal(t, 80, currentClock(t, h, "t-1").LastNotifiedPct)
	assert.Equal(t, int64(1), h.metrics.EscalationCount())
}

func TestMultipleTiersFireAscending(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 100, true, domain.NotifyRoleManager),
		tier("rule-urgent", 50, true, domain.NotifyRoleAgent),
		tier("rule-urgent", 80, true, domain.NotifyRoleTeamLead),
	}

	// a single late evaluation crosses every tier at once
	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(61*time.Minute)))

	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 3)
	assert.Equal(t, 50, crossed[0].ThresholdPct)
	assert.Equal(t, 80, crossed[1].ThresholdPct)
	assert.Equal(t, 100, crossed[2].ThresholdPct)
	assert.Equal(t, 100, currentClock(t, h, "t-1").LastNotifiedPct)
}

func TestTiersFireIncrementally(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 50, true, domain.NotifyRoleAgent),
		tier("rule-urgent", 100, true, domain.NotifyRoleManager),
	}

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(31*time.Minute)))
	require.Len(t, thresholdPayloads(h.dispatcher), 1)
	assert.Equal(t, 50, currentClock(t, h, "t-1").LastNotifiedPct)

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(61*time.Minute)))
	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 2)
	assert.Equal(t, 100, crossed[1].ThresholdPct)
	assert.Equal(t, 100, currentClock(t, h, "t-1").LastNotifiedPct)
}

func TestInactiveTierSkipped(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 50, false, domain.NotifyRoleAgent),
		tier("rule-urgent", 80, true, domain.NotifyRoleTeamLead),
	}

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(61*time.Minute)))

	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 1)
	assert.Equal(t, 80, crossed[0].ThresholdPct)
}

func TestRuleThresholdActsAsDefaultTier(t *testing.T) {
	ctx := context.Background()
	rule := urgentRule()
	rule.EscalationThresholdPct = 90
	h := newEvaluatorHarness(t, rule)
	h.startResponseClock(t, "t-1")

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(50*time.Minute)))
	require.Empty(t, thresholdPayloads(h.dispatcher))

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(55*time.Minute)))
	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 1)
	assert.Equal(t, 90, crossed[0].ThresholdPct)
	assert.Equal(t, []domain.NotifyRole{domain.NotifyRoleManager}, crossed[0].NotifyRoles)

	// later sweeps never re-fire the synthesized tier
	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(70*time.Minute)))
	assert.Len(t, thresholdPayloads(h.dispatcher), 1)
}

func TestPendingHandlesUnorderedTiers(t *testing.T) {
	ctx := context.Background()
	escalations := &fakeEscalationRepo{tiers: []domain.EscalationRule{
		tier("rule-urgent", 100, true, domain.NotifyRoleManager),
		tier("rule-urgent", 50, true, domain.NotifyRoleAgent),
		tier("rule-urgent", 80, true, domain.NotifyRoleTeamLead),
	}}
	d := NewEscalationDispatcher(escalations, &recordingDispatcher{}, zap.NewNop(), observability.NewMetrics())

	clock := &domain.SLAClock{TicketID: "t-1", Type: domain.ClockTypeResponse, RuleID: "rule-urgent"}
	fired, mark, err := d.Pending(ctx, clock, urgentRule(), 90)
	require.NoError(t, err)
	require.Len(t, fired, 2)
	assert.Equal(t, 50, fired[0].ThresholdPct)
	assert.Equal(t, 80, fired[1].ThresholdPct)
	assert.Equal(t, 80, mark)
}

func TestStopFiresThresholdCrossedSinceLastSweep(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 100, true, domain.NotifyRoleManager),
	}

	// no sweeps in between; the stop itself crosses the tier
	require.NoError(t, h.evaluator.Stop(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(65*time.Minute)))

	crossed := thresholdPayloads(h.dispatcher)
	require.Len(t, crossed, 1)
	assert.Equal(t, 100, crossed[0].ThresholdPct)
	assert.Equal(t, []domain.NotifyRole{domain.NotifyRoleManager}, crossed[0].NotifyRoles)

	clock := currentClock(t, h, "t-1")
	assert.Equal(t, domain.ClockStatusStopped, clock.Status)
	assert.Equal(t, 100, clock.LastNotifiedPct)
}

func TestStopUnderThresholdFiresNothing(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")
	h.escalations.tiers = []domain.EscalationRule{
		tier("rule-urgent", 100, true, domain.NotifyRoleManager),
	}

	require.NoError(t, h.evaluator.Stop(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(30*time.Minute)))

	assert.Empty(t, thresholdPayloads(h.dispatcher))
	clock := currentClock(t, h, "t-1")
	assert.Equal(t, domain.ClockStatusMet, clock.Status)
	assert.Equal(t, 0, clock.LastNotifiedPct)
}

func TestNoTiersNoEvents(t *testing.T) {
	ctx := context.Background()
	h := newEvaluatorHarness(t, urgentRule())
	h.startResponseClock(t, "t-1")

	require.NoError(t, h.evaluator.Evaluate(ctx, "t-1", domain.ClockTypeResponse, mondayNine.Add(2*time.Hour)))
	assert.Empty(t, thresholdPayloads(h.dispatcher))
	assert.Equal(t, 0, currentClock(t, h, "t-1").LastNotifiedPct)
}
