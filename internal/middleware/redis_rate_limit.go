package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, remaining_tokens, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter is a token bucket shared by every instance pointing at the same Redis
type RedisLimiter struct {
	client         redis.Scripter
	prefix         string
	capacity       int
	refillInterval time.Duration
	ttl            time.Duration
}

func NewRedisLimiter(client redis.Scripter, prefix string, requestsPerSecond float64, burstSize int) *RedisLimiter {
	// a non-positive rate leaves the bucket at its burst with no refill
	var refillInterval time.Duration
	if requestsPerSecond > 0 {
		refillInterval = time.Duration(float64(time.Second) / requestsPerSecond)
		if refillInterval < time.Millisecond {
			refillInterval = time.Millisecond
		}
	}

	// keep idle buckets at least until they would have refilled
	ttl := time.Duration(burstSize) * refillInterval
	if ttl < time.Minute {
		ttl = time.Minute
	}

	return &RedisLimiter{
		client:         client,
		prefix:         prefix,
		capacity:       burstSize,
		refillInterval: refillInterval,
		ttl:            ttl,
	}
}

func (l *RedisLimiter) key(client string) string {
	return l.prefix + ":ip:" + client
}

func (l *RedisLimiter) Allow(ctx context.Context, client string) (Decision, error) {
	args := []interface{}{
		time.Now().UnixMilli(),
		l.capacity,
		l.refillInterval.Milliseconds(),
		int64(math.Ceil(l.ttl.Seconds())),
	}

	vals, err := tokenBucketScript.Run(ctx, l.client, []string{l.key(client)}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result: %v", vals)
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
