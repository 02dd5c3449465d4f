package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/metrics"
	"github.com/aman-churiwal/mailing-lists/internal/ratelimit"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FloodLimit bounds raw request volume per client IP. It sits in front of the public POST routes
// and is independent of the subscription attempt counter.
func FloodLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := security.ClientIP(c.Request.Header, c.Request.RemoteAddr)
		ctx := c.Request.Context()

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			// Store outages must not take the public form down
			logger.Warn("flood limit check failed", zap.String("ip", key), zap.Error(err))
			c.Next()
			return
		}

		remaining, _ := limiter.Remaining(ctx, key)
		resetTime, _ := limiter.Reset(ctx, key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := max(int(time.Until(resetTime).Seconds()), 0)

			metrics.FloodLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"limit":       limiter.Limit(),
				"retry_after": resetTime.Unix(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
