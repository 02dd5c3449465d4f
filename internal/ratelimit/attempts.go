package ratelimit

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "ml_rate_limit:"

// AttemptCounter counts accepted subscriptions per submitter IP.
//
// Allow and Increment are separate calls: a check passes before the
// subscription is attempted and the counter only moves once it succeeds.
// Concurrent submissions from one IP can therefore overshoot the limit.
type AttemptCounter struct {
	redis       *storage.RedisClient
	maxAttempts int
	window      time.Duration
}

func NewAttemptCounter(redis *storage.RedisClient, maxAttempts int, window time.Duration) *AttemptCounter {
	return &AttemptCounter{
		redis:       redis,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow reports whether ip is still under the limit.
func (a *AttemptCounter) Allow(ctx context.Context, ip string) (bool, error) {
	count, err := a.Count(ctx, ip)
	if err != nil {
		return false, err
	}
	return count < a.maxAttempts, nil
}

// Increment records one accepted subscription. Every increment restarts the window.
func (a *AttemptCounter) Increment(ctx context.Context, ip string) error {
	key := attemptKey(ip)

	pipe := a.redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, a.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}

	return nil
}

// Count returns the attempts recorded for ip in the live window.
func (a *AttemptCounter) Count(ctx context.Context, ip string) (int, error) {
	val, err := a.redis.Get(ctx, attemptKey(ip))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempts: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return count, nil
}

func attemptKey(ip string) string {
	sum := md5.Sum([]byte(ip))
	return attemptKeyPrefix + hex.EncodeToString(sum[:])
}
