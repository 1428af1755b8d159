package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"planets-api/internal/planet"
	"planets-api/internal/server"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/logger"
	"planets-api/internal/shared/redis"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg)
	log.Info("Starting Planets API",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := planet.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open planet store", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process rate limiting", "error", err)
		redisClient = nil
	}

	limiter := server.NewLimiter(ctx, cfg.RateLimit, redisClient, log)
	planetService := planet.NewService(store, log)
	routes := server.NewRoutes(cfg, planetService, store, limiter, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      routes.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Info("Shutting down HTTP server")
				err := srv.Shutdown(ctx)
				cancel()
				if closeErr := closeStore(); closeErr != nil {
					log.Error("Failed to close planet store", "error", closeErr)
				}
				return err
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Close()
			},
		},
	)

	exitCode := <-wait
	log.Info("Server stopped", "exit_code", exitCode)
	os.Exit(exitCode)
}
