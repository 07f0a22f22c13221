package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestTokenBucketLimiter_Allow(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewTokenBucketLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "redeem:user:alice"
	limit := 5
	window := time.Minute

	for i := range limit {
		allowed, err := limiter.Allow(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	// One past the budget is denied.
	allowed, err := limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestTokenBucketLimiter_AllowN(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewTokenBucketLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "redeem:user:bob"
	limit := 10
	window := time.Minute

	allowed, err := limiter.AllowN(ctx, key, 7, limit, window)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.AllowN(ctx, key, 3, limit, window)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.AllowN(ctx, key, 1, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestTokenBucketLimiter_KeysAreIndependent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewTokenBucketLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	limit := 3
	window := time.Minute

	for range limit {
		allowed, err := limiter.Allow(ctx, "redeem:user:alice", limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "redeem:user:alice", limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed)

	// A different caller's budget is untouched.
	allowed, err = limiter.Allow(ctx, "redeem:user:bob", limit, window)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_ResetAndRemaining(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewTokenBucketLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "redeem:ip:192.168.1.10"
	limit := 4
	window := time.Minute

	remaining, err := limiter.GetRemaining(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.Equal(t, limit, remaining)

	allowed, err := limiter.AllowN(ctx, key, 4, limit, window)
	assert.NoError(t, err)
	assert.True(t, allowed)

	remaining, err = limiter.GetRemaining(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.Equal(t, 0, remaining)

	require.NoError(t, limiter.Reset(ctx, key))

	allowed, err = limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_Concurrent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewTokenBucketLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "redeem:token:shared"
	limit := 40
	window := time.Minute

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for range 60 {
		wg.Go(func() {
			allowed, err := limiter.Allow(ctx, key, limit, window)
			assert.NoError(t, err)
			mu.Lock()
			if allowed {
				allowedCount++
			}
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Equal(t, limit, allowedCount)
}

func TestTokenBucketLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	// Kill Redis before the check.
	mr.Close()

	ctx := context.Background()

	strict := NewTokenBucketLimiter(client, zap.NewNop(), false)
	allowed, err := strict.Allow(ctx, "redeem:user:alice", 5, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)

	lenient := NewTokenBucketLimiter(client, zap.NewNop(), true)
	allowed, err = lenient.Allow(ctx, "redeem:user:alice", 5, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestGetRuleForEndpoint(t *testing.T) {
	config := &RateLimitConfig{
		RegisterPerMinute: 5,
		LoginPerMinute:    10,
		RedeemPerMinute:   20,
		APIPerMinute:      100,
	}

	assert.Equal(t, 20, GetRuleForEndpoint("redeem", config).Limit)
	assert.Equal(t, 5, GetRuleForEndpoint("register", config).Limit)
	assert.Equal(t, 10, GetRuleForEndpoint("login", config).Limit)
	assert.Equal(t, 100, GetRuleForEndpoint("api", config).Limit)
	assert.Equal(t, 100, GetRuleForEndpoint("unknown", config).Limit)
	assert.Equal(t, time.Minute, GetRuleForEndpoint("redeem", config).Window)
}
