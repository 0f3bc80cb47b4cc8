package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Rules          *handlers.RulesHandler
	Calendar       *handlers.CalendarHandler
	PauseWindows   *handlers.PauseWindowsHandler
	Escalations    *handlers.EscalationsHandler
	Clocks         *handlers.ClocksHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	rules := api.Group("/sla/rules")
	rules.Post("", cfg.Rules.Create)
	rules.Get("", cfg.Rules.List)
	rules.Get("/:id", cfg.Rules.Get)
	rules.Put("/:id", cfg.Rules.Update)

	api.Get("/sla/calendar", cfg.Calendar.Get)
	api.Put("/sla/calendar", cfg.Calendar.Put)

	pauses := api.Group("/sla/pause-windows")
	pauses.Post("", cfg.PauseWindows.Create)
	pauses.Get("", cfg.PauseWindows.List)
	pauses.Get("/:id", cfg.PauseWindows.Get)
	pauses.Put("/:id", cfg.PauseWindows.Update)
	pauses.Delete("/:id", cfg.PauseWindows.Delete)

	escalations := api.Group("/sla/escalation-rules")
	escalations.Post("", cfg.Escalations.Create)
	escalations.Get("", cfg.Escalations.List)
	escalations.Put("/:id", cfg.Escalations.Update)
	escalations.Delete("/:id", cfg.Escalations.Delete)

	api.Get("/tickets/:id/clocks", cfg.Clocks.ListClocks)
	api.Get("/tickets/:id/history", cfg.Clocks.ListHistory)

	api.Post("/events/ticket", cfg.Events.Ingest)
}
