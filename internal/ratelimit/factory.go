package ratelimit

import (
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/storage"
)

func NewLimiter(redis *storage.RedisClient, algorithm string, limit int, window time.Duration) Limiter {
	switch algorithm {
	case "sliding_window":
		return NewSlidingWindowLimiter(redis, limit, window)
	case "fixed_window":
		return NewFixedWindow(redis, limit, window)
	default:
		return NewFixedWindow(redis, limit, window)
	}
}
