package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"carmarket-backend/internal/metrics"
	"carmarket-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitMiddleware limits requests per client and endpoint category. A
// limiter failure lets the request through.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, config *ratelimit.Config, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		category := config.GetEndpointKey(route, c.Request.Method)
		clientID := getClientID(c)

		allowed, resetTime, err := limiter.Allow(c.Request.Context(), clientID, category)
		if err != nil {
			log.Warn().Err(err).Str("category", category).Msg("rate limiter unavailable")
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		setRateLimitHeaders(c, limiter.Limit(category), allowed, resetTime)

		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(category).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"message":    fmt.Sprintf("Too many requests. Try again in %v", resetTime),
				"code":       "RATE_LIMIT_EXCEEDED",
				"retryAfter": int(resetTime.Seconds()),
			})
			return
		}

		c.Next()
	}
}

// getClientID prefers the authenticated user and falls back to the client IP.
func getClientID(c *gin.Context) string {
	if userID, ok := UserID(c); ok {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func setRateLimitHeaders(c *gin.Context, limit ratelimit.RateLimit, allowed bool, resetTime time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.BurstSize))
	c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))

	if !allowed {
		c.Header("Retry-After", strconv.Itoa(int(resetTime.Seconds())))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetTime).Unix(), 10))
	}
}
