package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRateLimiter(t *testing.T) (RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRateLimiter(client, zap.NewNop()), mr
}

func TestRedisRateLimiter_AllowWithinLimit(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestRateLimiter(t)

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "client-a", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i)
	}

	allowed, err := limiter.Allow(ctx, "client-a", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "sixth request should be rejected")

	count, err := limiter.Count(ctx, "client-a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestRateLimiter(t)

	allowed, err := limiter.Allow(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "a different key has its own window")
}

func TestRedisRateLimiter_RedisDownReturnsError(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestRateLimiter(t)

	mr.Close()

	_, err := limiter.Allow(ctx, "client-a", 5, time.Minute)
	assert.Error(t, err)
}
