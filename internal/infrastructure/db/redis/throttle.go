package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleWindow      = 15 * time.Minute
	maxAttemptsPerEntry = 10
)

// LoginThrottle counts authentication attempts per email+IP in a fixed
// window, backed by Redis. Key format: login_attempts:<email>:<ip>
type LoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// Allow increments the attempt counter for key and reports whether the
// caller is still under the limit. The window starts at the first attempt
// and resets when the key expires.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	rkey := "login_attempts:" + key

	n, err := t.client.Incr(ctx, rkey).Result()
	if err != nil {
		return false, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, rkey, throttleWindow).Err(); err != nil {
			return false, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return n <= maxAttemptsPerEntry, nil
}
