package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/repository"
)

type fakeRuleRepo struct {
	rules map[string]*domain.SLARule
}

func newFakeRuleRepo(rules ...*domain.SLARule) *fakeRuleRepo {
	repo := &fakeRuleRepo{rules: map[string]*domain.SLARule{}}
	for _, rule := range rules {
		repo.rules[rule.ID] = rule
	}
	return repo
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *domain.SLARule) error {
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rule-%d", len(r.rules)+1)
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeRuleRepo) Update(_ context.Context, rule *domain.SLARule) error {
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeRuleRepo) GetByID(_ context.Context, id string) (*domain.SLARule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule %s not found", id)
	}
	return rule, nil
}

func (r *fakeRuleRepo) GetActiveByPriority(_ context.Context, priorityKey string) (*domain.SLARule, error) {
	for _, rule := range r.rules {
		if rule.PriorityKey == priorityKey && rule.Active {
			return rule, nil
		}
	}
	return nil, nil
}

func (r *fakeRuleRepo) List(_ context.Context, includeInactive bool) ([]domain.SLARule, error) {
	var out []domain.SLARule
	for _, rule := range r.rules {
		if rule.Active || includeInactive {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) CountActiveByPriority(_ context.Context, priorityKey, excludeID string) (int, error) {
	count := 0
	for _, rule := range r.rules {
		if rule.PriorityKey == priorityKey && rule.Active && rule.ID != excludeID {
			count++
		}
	}
	return count, nil
}

type fakeClockRepo struct {
	mu     sync.Mutex
	clocks []*domain.SLAClock
	nextID int
	// conflictsLeft forces that many version conflicts before writes succeed
	conflictsLeft int
}

func newFakeClockRepo() *fakeClockRepo { return &fakeClockRepo{} }

func (r *fakeClockRepo) Create(_ context.Context, clock *domain.SLAClock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clock.ID = fmt.Sprintf("clock-%d", r.nextID)
	clock.Version = 1
	stored := *clock
	r.clocks = append(r.clocks, &stored)
	return nil
}

func (r *fakeClockRepo) GetCurrent(_ context.Context, ticketID string, clockType domain.ClockType) (*domain.SLAClock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var current *domain.SLAClock
	for _, clock := range r.clocks {
		if clock.TicketID != ticketID || clock.Type != clockType {
			continue
		}
		if current == nil || clock.Cycle > current.Cycle {
			current = clock
		}
	}
	if current == nil {
		return nil, nil
	}
	out := *current
	return &out, nil
}

func (r *fakeClockRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.SLAClock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SLAClock
	for _, clock := range r.clocks {
		if clock.TicketID == ticketID {
			out = append(out, *clock)
		}
	}
	return out, nil
}

func (r *fakeClockRepo) ListRunning(_ context.Context, limit, offset int) ([]domain.SLAClock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var running []domain.SLAClock
	for _, clock := range r.clocks {
		if clock.Running() {
			running = append(running, *clock)
		}
	}
	if offset >= len(running) {
		return nil, nil
	}
	running = running[offset:]
	if limit > 0 && len(running) > limit {
		running = running[:limit]
	}
	return running, nil
}

func (r *fakeClockRepo) UpdateVersioned(_ context.Context, clock *domain.SLAClock, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return repository.ErrVersionConflict
	}
	for i, stored := range r.clocks {
		if stored.ID != clock.ID {
			continue
		}
		if stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		clock.Version = expectedVersion + 1
		updated := *clock
		r.clocks[i] = &updated
		return nil
	}
	return repository.ErrVersionConflict
}

type fakeHistoryRepo struct {
	entries []domain.SLAHistoryEntry
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry *domain.SLAHistoryEntry) error {
	entry.ID = fmt.Sprintf("hist-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, filter repository.HistoryFilter) ([]domain.SLAHistoryEntry, error) {
	var out []domain.SLAHistoryEntry
	for _, entry := range r.entries {
		if entry.TicketID != ticketID {
			continue
		}
		if filter.ClockType != nil && entry.ClockType != *filter.ClockType {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

type fakeCalendarRepo struct {
	days []domain.CalendarDay
}

func (r *fakeCalendarRepo) GetDays(_ context.Context) ([]domain.CalendarDay, error) {
	return r.days, nil
}

func (r *fakeCalendarRepo) ReplaceDays(_ context.Context, days []domain.CalendarDay) error {
	r.days = days
	return nil
}

type fakePauseRepo struct {
	windows []domain.PauseWindow
}

func (r *fakePauseRepo) Create(_ context.Context, window *domain.PauseWindow) error {
	window.ID = fmt.Sprintf("pause-%d", len(r.windows)+1)
	r.windows = append(r.windows, *window)
	return nil
}

func (r *fakePauseRepo) Update(_ context.Context, window *domain.PauseWindow) error {
	for i := range r.windows {
		if r.windows[i].ID == window.ID {
			r.windows[i] = *window
			return nil
		}
	}
	return fmt.Errorf("pause window %s not found", window.ID)
}

func (r *fakePauseRepo) Delete(_ context.Context, id string) error {
	for i := range r.windows {
		if r.windows[i].ID == id {
			r.windows = append(r.windows[:i], r.windows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("pause window %s not found", id)
}

func (r *fakePauseRepo) GetByID(_ context.Context, id string) (*domain.PauseWindow, error) {
	for i := range r.windows {
		if r.windows[i].ID == id {
			out := r.windows[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakePauseRepo) List(_ context.Context, _, _ int) ([]domain.PauseWindow, error) {
	return append([]domain.PauseWindow(nil), r.windows...), nil
}

func (r *fakePauseRepo) ListOverlapping(_ context.Context, start, end time.Time) ([]domain.PauseWindow, error) {
	var out []domain.PauseWindow
	for _, window := range r.windows {
		if window.Intersects(start, end) {
			out = append(out, window)
		}
	}
	return out, nil
}

type fakeEscalationRepo struct {
	tiers []domain.EscalationRule
}

func (r *fakeEscalationRepo) Create(_ context.Context, rule *domain.EscalationRule) error {
	rule.ID = fmt.Sprintf("tier-%d", len(r.tiers)+1)
	r.tiers = append(r.tiers, *rule)
	return nil
}

func (r *fakeEscalationRepo) Update(_ context.Context, rule *domain.EscalationRule) error {
	for i := range r.tiers {
		if r.tiers[i].ID == rule.ID {
			r.tiers[i] = *rule
			return nil
		}
	}
	return fmt.Errorf("escalation rule %s not found", rule.ID)
}

func (r *fakeEscalationRepo) Delete(_ context.Context, id string) error {
	for i := range r.tiers {
		if r.tiers[i].ID == id {
			r.tiers = append(r.tiers[:i], r.tiers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("escalation rule %s not found", id)
}

func (r *fakeEscalationRepo) GetByID(_ context.Context, id string) (*domain.EscalationRule, error) {
	for i := range r.tiers {
		if r.tiers[i].ID == id {
			out := r.tiers[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeEscalationRepo) ListByRule(_ context.Context, ruleID string) ([]domain.EscalationRule, error) {
	var out []domain.EscalationRule
	for _, tier := range r.tiers {
		if tier.RuleID == ruleID {
			out = append(out, tier)
		}
	}
	return out, nil
}

// ListActiveByRule deliberately returns insertion order; callers must not
// depend on repository ordering.
func (r *fakeEscalationRepo) ListActiveByRule(_ context.Context, ruleID string) ([]domain.EscalationRule, error) {
	var out []domain.EscalationRule
	for _, tier := range r.tiers {
		if tier.RuleID == ruleID && tier.Active {
			out = append(out, tier)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.Handler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
