package security

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// MaxNameLength bounds distributor names accepted from clients.
const MaxNameLength = 200

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	EnableHSTS        bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxRequestsPerMin: 120,
		AllowedOrigins:    []string{"http://localhost:8080"},
		TrustedProxies:    []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout:    30 * time.Second,
	}
}

// ValidateName checks a distributor name supplied by a client. Emptiness is
// not checked here; blank names are a silent no-op for add and allowed for
// edits.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", MaxNameLength)
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("name contains invalid characters")
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid UTF-8 encoding")
	}

	return nil
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware provides request limiting, CORS and request guards
type SecurityMiddleware struct {
	config SecurityConfig

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
	onBlock    func(ip string)
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{
		config:     config,
		ipLimiters: make(map[string]*ipLimiter),
	}
}

// OnBlock registers a callback invoked whenever a request is rate limited
func (sm *SecurityMiddleware) OnBlock(fn func(ip string)) {
	sm.onBlock = fn
}

func (sm *SecurityMiddleware) limiterFor(ip string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.ipLimiters[ip]
	if !exists {
		rps := rate.Limit(float64(sm.config.MaxRequestsPerMin) / 60.0)
		// Allow a burst of half the per-minute budget so page loads with
		// several requests are not throttled.
		burst := sm.config.MaxRequestsPerMin / 2
		if burst < 5 {
			burst = 5
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
		sm.ipLimiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	clientIP := c.ClientIP()

	if !sm.limiterFor(clientIP).Allow() {
		if sm.onBlock != nil {
			sm.onBlock(clientIP)
		}
		appErr := apperrors.NewRateLimitError("60")
		c.Header("Retry-After", "60")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	c.Next()
}

// ValidateContentType rejects bodies the API does not understand
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := strings.ToLower(c.GetHeader("Content-Type"))

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}

	if contentType != "" && c.Request.ContentLength != 0 {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(contentType, allowed) {
				found = true
				break
			}
		}

		if !found {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported content type",
			})
			return
		}
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)

	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS allows the configured origins to call the JSON API with the session
// cookie.
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     sm.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = DefaultSecurityConfig().AllowedOrigins
	}
	return cors.New(cfg)
}

// Cleanup drops limiters for IPs not seen within idle, every interval, until
// ctx is done.
func (sm *SecurityMiddleware) Cleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sm.cleanupOldLimiters(idle)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// cleanupOldLimiters removes rate limiters for IPs that haven't been seen recently
func (sm *SecurityMiddleware) cleanupOldLimiters(idle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for ip, entry := range sm.ipLimiters {
		if entry.lastSeen.Before(cutoff) {
			delete(sm.ipLimiters, ip)
			removed++
		}
	}
	return removed
}
