package monitoring

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// slowRequest is the duration after which a request is logged as slow.
// Exports render whole workbooks in memory, so this is generous.
const slowRequest = 3 * time.Second

// quietPaths are polled by probes and logged at debug level only.
var quietPaths = map[string]bool{"/health": true, "/metrics": true}

// MonitoringMiddleware creates Gin middleware for request monitoring. Paths
// are logged by route pattern so record ids do not end up in the logs.
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementRequest()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method
		ip := c.ClientIP()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordResponseTime(duration)
		metrics.RecordRequestByStatus(statusCode)
		if statusCode >= 400 {
			metrics.IncrementError()
		}

		if quietPaths[path] {
			logger.Debug("HTTP Request", "path", path, "status_code", statusCode)
		} else {
			logger.RequestLogger(method, path, ip, c.GetHeader("User-Agent"), statusCode, duration)
		}

		if duration > slowRequest {
			logger.PerformanceLogger("slow_request:"+path, duration.Seconds(), "seconds")
		}

		if statusCode >= http.StatusInternalServerError {
			logger.SystemLogger("server_error", fmt.Sprintf("Status %d for %s %s", statusCode, method, path))
		}
	}
}

// SecurityMonitoringMiddleware logs suspicious requests. It never blocks;
// limits are enforced by the handlers and the rate limiter.
func SecurityMonitoringMiddleware(logger *Logger, maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		userAgent := c.GetHeader("User-Agent")

		details := make(map[string]interface{})

		if containsSuspiciousUserAgent(userAgent) {
			details["type"] = "suspicious_user_agent"
		}

		if c.Request.Method == http.MethodPost && c.Request.URL.Path == "/api/import" &&
			c.Request.ContentLength > maxUploadBytes {
			details["type"] = "oversized_upload"
			details["size_bytes"] = c.Request.ContentLength
		}

		if len(details) > 0 {
			details["path"] = c.Request.URL.Path
			logger.SecurityLogger("suspicious_activity_detected", ip, userAgent, details)
		}

		c.Next()
	}
}

var suspiciousAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zmap",
	"dirbuster",
	"gobuster",
	"nikto",
	"acunetix",
	"nessus",
}

func containsSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range suspiciousAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}

// HealthHandler reports liveness with a metrics snapshot
func HealthHandler(metrics *Metrics, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
			"metrics":   metrics.GetStats(),
		})
	}
}

// MetricsHandler serves the full metrics snapshot
func MetricsHandler(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetStats())
	}
}
