package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"github.com/redis/go-redis/v9"
)

type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(redis *storage.RedisClient, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := slidingKey(key)
	now := s.now()
	windowStart := now.Add(-s.window)

	// Sorted set scored by request time
	pipe := s.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(s.limit) {
		return false, nil
	}

	stamp := now.UnixNano()
	if err := s.redis.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(stamp),
		Member: strconv.FormatInt(stamp, 10),
	}); err != nil {
		return false, err
	}
	if err := s.redis.Expire(ctx, redisKey, s.window); err != nil {
		return false, err
	}

	return true, nil
}

func (s *SlidingWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	now := s.now()
	windowStart := now.Add(-s.window)

	count, err := s.redis.ZCount(ctx, slidingKey(key),
		strconv.FormatInt(windowStart.UnixNano(), 10),
		strconv.FormatInt(now.UnixNano(), 10))
	if err != nil {
		return 0, err
	}

	return max(s.limit-int(count), 0), nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

// Reset returns when the oldest request in the window ages out.
func (s *SlidingWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	oldest, err := s.redis.ZRange(ctx, slidingKey(key), 0, 0)
	if err != nil || len(oldest) == 0 {
		return s.now(), nil
	}

	oldestNano, err := strconv.ParseInt(oldest[0], 10, 64)
	if err != nil {
		return s.now(), nil
	}

	return time.Unix(0, oldestNano).Add(s.window), nil
}

func slidingKey(key string) string {
	return fmt.Sprintf("ml_flood:sliding:%s", key)
}
