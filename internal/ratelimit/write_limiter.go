package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/quotation/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyWriteSubject = "quotation:writes:%s"

// Limiter decides whether a subject may perform one more write.
type Limiter interface {
	Allow(ctx context.Context, subject string) (*RateLimitResult, error)
}

// WriteLimiter throttles mutating API calls per actor.
type WriteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config config.Config
	Log    *zap.Logger
}

// NewWriteLimiter returns nil when rate limiting is disabled.
func NewWriteLimiter(p Params) (*WriteLimiter, error) {
	limitCfg := p.Config.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(p.Config.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.WriteRate <= 0 || limitCfg.WriteBurst <= 0 {
		return nil, ErrInvalidLimits
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.Config.RedisPassword),
		DB:       p.Config.RedisDB,
	})
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	p.Log.Named("ratelimit").Info("write rate limit enabled",
		zap.Float64("rate", limitCfg.WriteRate),
		zap.Int("burst", limitCfg.WriteBurst),
	)
	return &WriteLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.WriteRate,
		burst:  limitCfg.WriteBurst,
	}, nil
}

func (l *WriteLimiter) Allow(ctx context.Context, subject string) (*RateLimitResult, error) {
	if l == nil {
		return &RateLimitResult{Allowed: true}, nil
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return &RateLimitResult{Allowed: false}, ErrEmptyKey
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWriteSubject, subject), l.rate, l.burst)
}
