package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/gin-gonic/gin"
)

const nonceKey = "csp-nonce"

// GenerateNonce returns a random base64 nonce for inline page assets.
func GenerateNonce() (string, error) {
	nonceBytes := make([]byte, 18)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(nonceBytes), nil
}

// CSPMiddleware generates a per-request nonce and sets the CSP header. The
// page template reads the nonce with GetNonce for its inline script and
// style.
func CSPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := GenerateNonce()
		if err != nil {
			appErr := apperrors.NewInternalError("failed to generate CSP nonce", err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
			return
		}

		c.Set(nonceKey, nonce)
		c.Header("Content-Security-Policy", buildCSPPolicy(nonce))

		c.Next()
	}
}

// GetNonce retrieves the nonce from the Gin context
func GetNonce(c *gin.Context) string {
	nonce, _ := c.Get(nonceKey)
	s, _ := nonce.(string)
	return s
}

// buildCSPPolicy allows the page its own nonce'd script and style, form posts
// and the live-update socket back to this origin, and nothing else.
func buildCSPPolicy(nonce string) string {
	directives := []string{
		"default-src 'none'",
		"script-src 'nonce-" + nonce + "'",
		"style-src 'nonce-" + nonce + "'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'none'",
	}
	return strings.Join(directives, "; ")
}
