package server

import (
	"log/slog"
	"net/http"

	"planets-api/internal/middleware"
	"planets-api/internal/planet"
	planetHandlers "planets-api/internal/planet/handlers"
	serverHandlers "planets-api/internal/server/handlers"
	"planets-api/internal/shared/config"
)

type Routes struct {
	config        *config.Config
	planetService *planet.Service
	store         serverHandlers.Pinger
	limiter       middleware.Limiter
	logger        *slog.Logger
}

func NewRoutes(cfg *config.Config, planetService *planet.Service, store serverHandlers.Pinger, limiter middleware.Limiter, logger *slog.Logger) *Routes {
	return &Routes{
		config:        cfg,
		planetService: planetService,
		store:         store,
		limiter:       limiter,
		logger:        logger,
	}
}

// Setup builds the mux and wraps it in the middleware chain
func (r *Routes) Setup() http.Handler {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.store, r.config.Storage.Driver)
	planetHandler := planetHandlers.NewPlanetHandler(r.planetService, r.logger)

	mux.Handle("GET /health", healthHandler)
	planetHandler.Register(mux)

	// method-less patterns only catch what the routes above do not
	mux.Handle("/health", serverHandlers.MethodNotAllowed("GET"))
	mux.Handle("/planets", serverHandlers.MethodNotAllowed("GET, POST"))
	mux.Handle("/planets/{planet_id}", serverHandlers.MethodNotAllowed("GET, PUT, DELETE"))
	mux.HandleFunc("/", serverHandlers.NotFound)

	cors := middleware.NewCORS(r.config.Frontend)
	rateLimiter := middleware.NewRateLimiter(r.config.RateLimit, r.limiter)

	logger.Info("Routes configured successfully",
		"endpoints", []string{"/health", "/planets", "/planets/{planet_id}"},
		"rate_limit_enabled", r.config.RateLimit.Enabled,
	)

	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.RequestLogger(r.logger),
		cors.Middleware,
		rateLimiter.Middleware,
	)
}
