// Package security provides response-hardening middleware for the API.
package security

import (
	"os"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets baseline browser protections on every
// response. HSTS is opt-in since local deployments run plain HTTP.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if os.Getenv("ENABLE_HSTS") == "true" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
