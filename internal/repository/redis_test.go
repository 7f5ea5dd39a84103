package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer Close(client)

	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("OverLimit", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("UsersAreIndependent", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, 2, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("WindowExpires", func(t *testing.T) {
		assert.True(t, s.TTL("shareit:rate_limit:1") > 0)
		s.FastForward(2 * time.Minute)

		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRedisRateLimiter_NilClient(t *testing.T) {
	limiter := NewRedisRateLimiter(nil)
	_, err := limiter.CheckRateLimit(context.Background(), 1, 1, time.Second)
	assert.Error(t, err)
}

func TestRedisRateLimiter_ServerDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()
	s.Close()

	_, err = NewRedisRateLimiter(client).CheckRateLimit(context.Background(), 1, 1, time.Second)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client))
	assert.NoError(t, Close(nil))
}
