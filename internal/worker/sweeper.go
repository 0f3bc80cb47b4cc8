package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
)

const sweepLockKey = "sla:sweep:lock"

// Sweeper periodically re-evaluates every running clock so that tickets age
// into WARNING/OVERDUE without requiring a mutation. Each run recomputes
// from startedAt, so sweeps are idempotent and safe to race with
// event-triggered evaluations.
type Sweeper struct {
	clocks    repository.ClockRepository
	evaluator *service.Evaluator
	redis     *persistence.Redis
	logger    *zap.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	batchSize int
	lockTTL   time.Duration
}

// SweeperConfig bundles sweeper construction parameters.
type SweeperConfig struct {
	ClockRepo repository.ClockRepository
	Evaluator *service.Evaluator
	Redis     *persistence.Redis
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

// NewSweeper constructs the sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 3 * time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = interval - 10*time.Second
	}
	return &Sweeper{
		clocks:    cfg.ClockRepo,
		evaluator: cfg.Evaluator,
		redis:     cfg.Redis,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		interval:  interval,
		batchSize: batchSize,
		lockTTL:   lockTTL,
	}
}

// Run loops until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce evaluates all running clocks once. The redis lock only prevents
// replicas from duplicating work; correctness comes from the evaluator's
// conditional writes, not from the lock.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	acquired, err := s.redis.AcquireLock(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		s.logger.Warn("sweep lock unavailable, sweeping anyway", zap.Error(err))
	} else if !acquired {
		s.logger.Debug("sweep skipped, another instance holds the lock")
		return
	}
	defer func() {
		if err == nil && acquired {
			_ = s.redis.ReleaseLock(ctx, sweepLockKey)
		}
	}()

	now := time.Now()
	var swept, failed int
	for offset := 0; ; offset += s.batchSize {
		clocks, err := s.clocks.ListRunning(ctx, s.batchSize, offset)
		if err != nil {
			s.logger.Error("list running clocks failed", zap.Error(err))
			return
		}
		if len(clocks) == 0 {
			break
		}
		for i := range clocks {
			clock := &clocks[i]
			if err := s.evaluator.Evaluate(ctx, clock.TicketID, clock.Type, now); err != nil {
				// one ticket's fault never aborts the sweep
				failed++
				s.logger.Warn("sweep evaluation failed",
					zap.String("ticket_id", clock.TicketID),
					zap.String("clock_type", string(clock.Type)),
					zap.Error(err))
				continue
			}
			swept++
		}
		if len(clocks) < s.batchSize {
			break
		}
	}

	s.metrics.RecordSweep()
	s.logger.Info("sweep completed",
		zap.Int("evaluated", swept),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(now)))
}
