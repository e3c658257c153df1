package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "ratelimit:"

// WindowLimiter is a fixed-window counter shared by every API instance.
// Key format: ratelimit:<scope>:<client>
type WindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewWindowLimiter allows limit hits per key in each window.
func NewWindowLimiter(client *redis.Client, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one hit for key. When the window is exhausted it reports the
// time left until the counter expires.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := limiterPrefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("limiter expire: %w", err)
		}
	}
	if n <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("limiter ttl: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; restore it so the key cannot block forever
		_ = l.client.Expire(ctx, k, l.window).Err()
		ttl = l.window
	}
	return false, ttl, nil
}
