package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	current := time.Date(2024, 5, 10, 12, 0, 5, 0, time.UTC)
	limiter := NewRedisLimiter(client, limit)
	limiter.now = func() time.Time { return current }
	return limiter, mr, &current
}

func TestRedisLimiter_WindowLimit(t *testing.T) {
	limiter, _, _ := newTestRedisLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are limited independently")
}

func TestRedisLimiter_KeyExpires(t *testing.T) {
	limiter, mr, _ := newTestRedisLimiter(t, 1)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))

	allowed, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists(keys[0]))

	allowed, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed, "expired window starts a fresh count")
}

func TestRedisLimiter_NextWindow(t *testing.T) {
	limiter, _, current := newTestRedisLimiter(t, 1)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "ip")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "ip")
	require.False(t, allowed)

	*current = current.Add(time.Minute)
	allowed, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_ServerDown(t *testing.T) {
	limiter, mr, _ := newTestRedisLimiter(t, 5)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "ip")
	assert.Error(t, err)
}

func TestNewRedisClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}
