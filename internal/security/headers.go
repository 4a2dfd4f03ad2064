package security

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var baseHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "same-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
}

// SecurityHeadersMiddleware adds security headers to all responses. Exports
// are personal competition data, so they are never cached.
func SecurityHeadersMiddleware(enableHSTS bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range baseHeaders {
			c.Header(h[0], h[1])
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/export/") {
			c.Header("Cache-Control", "no-store")
			c.Header("X-Download-Options", "noopen")
		}

		// HSTS only makes sense behind HTTPS
		if enableHSTS {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
