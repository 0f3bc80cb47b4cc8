package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-engine/internal/api/http"
	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ruleRepo := repository.NewSLARuleRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)
	pauseRepo := repository.NewPauseWindowRepository(pool)
	escalationRepo := repository.NewEscalationRuleRepository(pool)
	clockRepo := repository.NewClockRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	snapshots := service.NewSnapshotLoader(calendarRepo, pauseRepo, cfg.Engine.Timezone)
	escalations := service.NewEscalationDispatcher(escalationRepo, dispatcher, logger, metrics)
	evaluator := service.NewEvaluator(service.EvaluatorDependencies{
		ClockRepo:   clockRepo,
		HistoryRepo: historyRepo,
		RuleRepo:    ruleRepo,
		Snapshots:   snapshots,
		Escalations: escalations,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
		MaxRetries:  cfg.Engine.EvaluationRetries,
	})
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		RuleRepo:    ruleRepo,
		ClockRepo:   clockRepo,
		HistoryRepo: historyRepo,
		Evaluator:   evaluator,
		Logger:      logger,
	})
	lifecycle.RegisterHandlers(dispatcher)

	configService := service.NewConfigService(service.ConfigDependencies{
		RuleRepo:       ruleRepo,
		CalendarRepo:   calendarRepo,
		PauseRepo:      pauseRepo,
		EscalationRepo: escalationRepo,
		Timezone:       cfg.Engine.Timezone,
	})

	sweeper := worker.NewSweeper(worker.SweeperConfig{
		ClockRepo: clockRepo,
		Evaluator: evaluator,
		Redis:     redis,
		Logger:    logger,
		Metrics:   metrics,
		Interval:  cfg.Engine.SweepInterval(),
		BatchSize: cfg.Engine.SweepBatchSize,
		LockTTL:   cfg.Engine.SweepLockTTL(),
	})
	go sweeper.Run(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Rules:          handlers.NewRulesHandler(configService),
		Calendar:       handlers.NewCalendarHandler(configService),
		PauseWindows:   handlers.NewPauseWindowsHandler(configService),
		Escalations:    handlers.NewEscalationsHandler(configService),
		Clocks:         handlers.NewClocksHandler(clockRepo, historyRepo),
		Events:         handlers.NewEventsHandler(dispatcher),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
