package server

import (
	"context"
	"log/slog"

	"planets-api/internal/middleware"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/redis"
)

// NewLimiter shares buckets through Redis when client is connected. It returns
// nil when rate limiting is disabled.
func NewLimiter(ctx context.Context, cfg config.RateLimitConfig, client *redis.Client, logger *slog.Logger) middleware.Limiter {
	logger = logger.With("component", "rate_limit", "operation", "setup")

	if !cfg.Enabled {
		logger.Info("Rate limiting disabled")
		return nil
	}

	if client != nil {
		logger.Info("Using Redis rate limiter", "prefix", cfg.Prefix)
		return middleware.NewRedisLimiter(client, cfg.Prefix, cfg.RequestsPerSecond, cfg.BurstSize)
	}

	logger.Info("Using in-process rate limiter")
	return middleware.NewLocalLimiter(ctx, cfg.RequestsPerSecond, cfg.BurstSize)
}
