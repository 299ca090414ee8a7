package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Defaults for the fixed window per IP and purpose.
const (
	defaultLimit  = 10
	defaultWindow = 15 * time.Minute
)

// Limiter is a fixed-window request counter backed by Redis. Counters
// expire with the window; a Redis outage degrades to allowing traffic,
// callers log the error and continue.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
	}
}

func getIPKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimit reports whether the IP has exhausted its window
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, getIPKey(ip, purpose)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return count >= l.limit, nil
}

// RecordIPRequest counts a request against the IP's window
func (l *Limiter) RecordIPRequest(ctx context.Context, ip, purpose string) error {
	key := getIPKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	// First hit in the window starts the expiry clock
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return nil
}
