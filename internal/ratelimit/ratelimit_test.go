package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/quotation/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewWriteLimiterDisabled(t *testing.T) {
	limiter, err := NewWriteLimiter(Params{
		Lc:     fxtest.NewLifecycle(t),
		Config: config.Config{},
		Log:    zap.NewNop(),
	})
	require.NoError(t, err)
	assert.Nil(t, limiter)

	res, err := limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewWriteLimiterRequiresRedis(t *testing.T) {
	_, err := NewWriteLimiter(Params{
		Lc: fxtest.NewLifecycle(t),
		Config: config.Config{
			RateLimit: config.RateLimitConfig{Enabled: true, WriteRate: 1, WriteBurst: 1},
		},
		Log: zap.NewNop(),
	})
	assert.Error(t, err)
}

func TestTokenBucketValidation(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, validateLimits(&TokenBucket{client: nil}, "k", 1, 1), ErrNotConfigured)
}

func TestBuildResultRetryAfter(t *testing.T) {
	res := buildResult(false, 0, 1_000, 2, 10)
	assert.False(t, res.Allowed)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)
	assert.Equal(t, 10, res.Limit)

	res = buildResult(true, 4, 1_000, 2, 10)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.RetryAfter)
	assert.Equal(t, 4, res.Remaining)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 5))
	assert.Equal(t, 20*time.Second, defaultBucketTTL(1, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}
