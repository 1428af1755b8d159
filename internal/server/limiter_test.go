package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"planets-api/internal/middleware"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/redis"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("disabled builds nothing even with redis and a zero rate", func(t *testing.T) {
		client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: "localhost:0"})}
		defer client.Close()

		limiter := NewLimiter(ctx, config.RateLimitConfig{Enabled: false}, client, logger)
		assert.Nil(t, limiter)
	})

	t.Run("redis when connected", func(t *testing.T) {
		client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: "localhost:0"})}
		defer client.Close()

		limiter := NewLimiter(ctx, config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstSize: 10}, client, logger)
		assert.IsType(t, &middleware.RedisLimiter{}, limiter)
	})

	t.Run("local without redis", func(t *testing.T) {
		limiter := NewLimiter(ctx, config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstSize: 10}, nil, logger)
		assert.IsType(t, &middleware.LocalLimiter{}, limiter)
	})
}
