package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitPrefix namespaces rate limit keys in Redis.
const RateLimitPrefix = "ptb:ratelimit:"

// RateLimiter limits request rates per key.
type RateLimiter interface {
	// Allow reports whether another request is allowed under limit
	// requests per window for the given key.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Count returns the number of requests currently inside the window.
	Count(ctx context.Context, key string, window time.Duration) (int, error)
}

// redisRateLimiter implements RateLimiter with a Redis sorted set per key,
// sliding-window style.
type redisRateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRateLimiter creates a new Redis-based rate limiter
func NewRedisRateLimiter(client *redis.Client, logger *zap.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		logger: logger,
	}
}

// Allow checks the sliding window and records the request when admitted.
func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	rateLimitKey := RateLimitPrefix + key

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, rateLimitKey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, rateLimitKey)

	requestID := fmt.Sprintf("%d-%d", now.UnixNano(), now.Nanosecond()%1000)
	pipe.ZAdd(ctx, rateLimitKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: requestID,
	})
	pipe.Expire(ctx, rateLimitKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("rate limiter pipeline failed",
			zap.String("key", key),
			zap.Int("limit", limit),
			zap.Error(err))
		return false, fmt.Errorf("rate limiter pipeline failed: %w", err)
	}

	// Count is taken before the current request was added.
	currentCount := countCmd.Val()
	if currentCount >= int64(limit) {
		// Roll back the entry we just recorded.
		r.client.ZRem(ctx, rateLimitKey, requestID)

		r.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("current_count", currentCount),
			zap.Int("limit", limit))
		return false, nil
	}

	return true, nil
}

// Count returns the current entries inside the window for a key.
func (r *redisRateLimiter) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	windowStart := time.Now().Add(-window)
	rateLimitKey := RateLimitPrefix + key

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, rateLimitKey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, rateLimitKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter count failed: %w", err)
	}

	return int(countCmd.Val()), nil
}
