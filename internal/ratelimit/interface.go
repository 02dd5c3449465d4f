package ratelimit

import (
	"context"
	"time"
)

// Limiter throttles raw request volume per key, typically a client IP.
// Counting happens in Allow; the other methods only read state for response headers.
type Limiter interface {
	// Allow records one request for key and reports whether it fits the limit.
	Allow(ctx context.Context, key string) (bool, error)

	// Remaining is how many more requests key may make in the current window.
	Remaining(ctx context.Context, key string) (int, error)

	// Limit is the configured number of requests per window.
	Limit() int

	// Reset is when the oldest counted request for key stops counting.
	Reset(ctx context.Context, key string) (time.Time, error)
}

var (
	_ Limiter = (*FixedWindowLimiter)(nil)
	_ Limiter = (*SlidingWindowLimiter)(nil)
)
