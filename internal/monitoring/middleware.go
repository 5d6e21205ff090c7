package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request metrics and logs each request
func Middleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.IncrementRequest()
		metrics.RecordStatus(status)
		if status >= 500 {
			metrics.IncrementError()
		}

		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, duration)
	}
}
