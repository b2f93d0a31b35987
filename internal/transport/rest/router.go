package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/transport/middleware"
)

// RegisterAllRoutes wires the ops API. Everything under /guilds requires a
// bearer token signed with the configured API secret; health and ping stay
// open for probes.
func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, stores Stores, dutyHandler *DutyHandler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(cfg, stores)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.BearerAuth(cfg.Server.APISecret, logger))

			pr.Route("/guilds/{guildID}", func(gr chi.Router) {
				gr.Get("/cycle", dutyHandler.GetActiveCycle)
				gr.Get("/shifts/active", dutyHandler.GetActiveShifts)
				gr.Get("/shifts/{ref}", dutyHandler.GetShift)
				gr.Get("/leaves/active", dutyHandler.GetActiveLeaves)
				gr.Get("/users/{userID}/activity", dutyHandler.GetUserActivity)
				gr.Get("/users/{userID}/history", dutyHandler.GetUserHistory)
				gr.Get("/audit", dutyHandler.GetAuditTail)
			})
		})
	})
}
