package ports

import "context"

// LoginThrottle rate-limits authentication attempts per caller. Allow
// reports whether another attempt is permitted for key right now.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
