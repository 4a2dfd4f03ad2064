package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/docs"
	"github.com/ZanzyTHEbar/distributor-competition/internal/api"
	"github.com/ZanzyTHEbar/distributor-competition/internal/config"
	"github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/ZanzyTHEbar/distributor-competition/internal/frontend"
	"github.com/ZanzyTHEbar/distributor-competition/internal/live"
	"github.com/ZanzyTHEbar/distributor-competition/internal/middleware"
	"github.com/ZanzyTHEbar/distributor-competition/internal/monitoring"
	"github.com/ZanzyTHEbar/distributor-competition/internal/security"
	"github.com/ZanzyTHEbar/distributor-competition/internal/session"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// server wires the long-lived components behind the HTTP router.
type server struct {
	cfg      *config.Config
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
	sessions *session.Manager
	hub      *live.Hub
	security *security.SecurityMiddleware
	compress *middleware.CompressionMiddleware
}

func newServer(cfg *config.Config, logger *monitoring.Logger) *server {
	metrics := monitoring.NewMetrics()

	hub := live.NewHub(
		live.WithAllowedOrigins(cfg.AllowedOrigins),
		live.WithConnectionObserver(metrics.LiveConnected),
	)

	sessions := session.NewManager(cfg.SessionTTL,
		session.WithDefaultWeights(cfg.PointConfig()),
		session.WithListener(func(sessionID string, revision uint64) {
			metrics.IncrementMutation()
			hub.Notify(sessionID, revision)
		}),
	)
	metrics.TrackSessions(sessions.Size)

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.MaxRequestsPerMin = cfg.RateLimitPerMin
	securityConfig.AllowedOrigins = cfg.AllowedOrigins
	securityConfig.EnableHSTS = cfg.EnableHSTS

	sm := security.NewSecurityMiddleware(securityConfig)
	sm.OnBlock(func(ip string) {
		metrics.IncrementRateLimitBlock()
		logger.SecurityLogger("rate_limited", ip, "", nil)
	})

	return &server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: sessions,
		hub:      hub,
		security: sm,
		compress: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
	}
}

// start launches the background workers. They stop when ctx is done.
func (s *server) start(ctx context.Context) {
	go s.hub.Run(ctx)
	s.security.Cleanup(ctx, 10*time.Minute, time.Hour)
}

func (s *server) stop() {
	s.sessions.Stop()
}

func (s *server) router() (*gin.Engine, error) {
	renderer, err := export.NewRenderer(s.cfg.BrandingText())
	if err != nil {
		return nil, errors.NewConfigurationError("failed to load export templates", err)
	}

	page, err := frontend.LoadIndexTemplate()
	if err != nil {
		return nil, errors.NewConfigurationError("failed to load page template", err)
	}

	handler, err := api.NewHandler(api.Config{
		Sessions:       s.sessions,
		Hub:            s.hub,
		Renderer:       renderer,
		Page:           page,
		Branding:       s.cfg.BrandingText(),
		Metrics:        s.metrics,
		Logger:         s.logger,
		MaxUploadBytes: s.cfg.MaxUploadBytes,
		SecureCookies:  s.cfg.EnableHSTS,
	})
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(security.DefaultSecurityConfig().TrustedProxies); err != nil {
		return nil, errors.NewConfigurationError("invalid trusted proxies", err)
	}

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, s.cfg.MaxUploadBytes))

	r.Use(s.compress.Handler())

	// Add error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// Security middleware
	r.Use(security.SecurityHeadersMiddleware(s.cfg.EnableHSTS))
	r.Use(security.CSPMiddleware())
	r.Use(s.security.CORS())
	r.Use(s.security.RequestTimeout)
	r.Use(s.security.ValidateContentType)
	r.Use(s.security.RateLimitByIP)

	r.GET("/health", monitoring.HealthHandler(s.metrics, version))
	r.GET("/metrics", monitoring.MetricsHandler(s.metrics))
	r.GET("/metrics/compression", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.compress.GetStats())
	})
	r.GET("/sessions/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.sessions.Stats())
	})

	if s.cfg.EnableSwagger {
		docs.SwaggerInfo.Version = version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Performance profiling endpoints (development only)
	if s.cfg.EnableProfiling {
		slog.Info("Enabling performance profiling endpoints")
		r.GET("/debug/pprof/*filepath", pprofHandler)
	}

	handler.Register(r)

	s.logger.SystemLogger("router_ready", fmt.Sprintf("swagger=%t profiling=%t", s.cfg.EnableSwagger, s.cfg.EnableProfiling))
	return r, nil
}

// pprofHandler dispatches under one catch-all route, since gin does not allow
// static siblings next to a wildcard.
func pprofHandler(c *gin.Context) {
	switch strings.TrimPrefix(c.Param("filepath"), "/") {
	case "cmdline":
		pprof.Cmdline(c.Writer, c.Request)
	case "profile":
		pprof.Profile(c.Writer, c.Request)
	case "symbol":
		pprof.Symbol(c.Writer, c.Request)
	case "trace":
		pprof.Trace(c.Writer, c.Request)
	default:
		pprof.Index(c.Writer, c.Request)
	}
}
