package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aptcare/backend/pkg/response"
)

// RateLimiter sliding-window counter, implemented by pkg/redis.Client
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit limits requests per route. After JWTAuth the bucket is the
// signed-in user, so residents behind one building NAT do not share a quota;
// before it (login, refresh) the bucket is the client IP.
// A nil limiter or a store error lets the request through.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), rateLimitKey(c), limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "Quá nhiều yêu cầu, vui lòng thử lại sau")
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if uid := c.GetString(ContextUserID); uid != "" {
		return fmt.Sprintf("rate_limit:user:%s:%s", uid, c.FullPath())
	}
	return fmt.Sprintf("rate_limit:ip:%s:%s", c.ClientIP(), c.FullPath())
}
