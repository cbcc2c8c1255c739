package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/neeraj3071/InvoicePro/internal/config"
)

const keyLoginAttempt = "auth:login:%s"

// Login attempt budget per client address. Refills one attempt every few
// seconds after the burst is spent.
const (
	loginRate  = 0.2
	loginBurst = 10
)

// LoginLimiter throttles credential guessing on the login endpoint. A nil
// limiter (redis not configured) allows everything.
type LoginLimiter struct {
	enabled bool
	bucket  *TokenBucket
}

func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	if !cfg.RateLimitEnabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	return &LoginLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow reports whether another login attempt from addr may proceed.
func (l *LoginLimiter) Allow(ctx context.Context, addr string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginAttempt, strings.TrimSpace(addr)), loginRate, loginBurst)
}
