package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathlight-labs/pathlight/internal/monitoring"
)

// Middleware rejects requests over the per-IP limit with 429.
func Middleware(limiter *Limiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.IncrementRateLimitBlock()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
