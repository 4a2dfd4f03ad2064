// Package api exposes competition sessions over HTTP.
//
// Every route is bound to the caller's session through the
// competition_session cookie. Requests posted by the page's HTML forms get a
// 303 redirect back to "/" with a flash message; everything else gets JSON.
package api

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/ZanzyTHEbar/distributor-competition/internal/frontend"
	"github.com/ZanzyTHEbar/distributor-competition/internal/live"
	"github.com/ZanzyTHEbar/distributor-competition/internal/monitoring"
	"github.com/ZanzyTHEbar/distributor-competition/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the session id.
	SessionCookie = "competition_session"
	// FlashCookie carries a one-shot message for the next page render.
	FlashCookie = "competition_flash"

	sessionKey = "session"
)

// Config holds the dependencies of a Handler.
type Config struct {
	Sessions       *session.Manager
	Hub            *live.Hub
	Renderer       *export.Renderer
	Page           *template.Template
	Branding       export.Branding
	Metrics        *monitoring.Metrics
	Logger         *monitoring.Logger
	MaxUploadBytes int64
	SecureCookies  bool
}

// Handler serves the page and the JSON API.
type Handler struct {
	sessions       *session.Manager
	hub            *live.Hub
	renderer       *export.Renderer
	page           *template.Template
	branding       export.Branding
	metrics        *monitoring.Metrics
	logger         *monitoring.Logger
	maxUploadBytes int64
	secureCookies  bool
}

// NewHandler validates cfg and creates a Handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Sessions == nil {
		return nil, apperrors.NewConfigurationError("session manager is required", nil)
	}
	if cfg.Renderer == nil || cfg.Page == nil {
		return nil, apperrors.NewConfigurationError("templates are required", nil)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, apperrors.NewConfigurationError("max upload size must be positive", nil)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitoring.NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = monitoring.NewLogger(monitoring.ParseLevel("info"))
	}

	return &Handler{
		sessions:       cfg.Sessions,
		hub:            cfg.Hub,
		renderer:       cfg.Renderer,
		page:           cfg.Page,
		branding:       cfg.Branding,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		secureCookies:  cfg.SecureCookies,
	}, nil
}

// Register mounts the page and the /api routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.bindSession, frontend.NewIndexHandler(h.page, h.loadPage))

	api := r.Group("/api", h.bindSession)
	{
		api.GET("/state", h.getState)

		api.POST("/distributors", h.addDistributor)
		api.POST("/distributors/bulk", h.bulkAddDistributors)
		api.PATCH("/distributors/:id", h.updateDistributor)
		api.POST("/distributors/:id", h.updateDistributor)
		api.DELETE("/distributors/:id", h.removeDistributor)
		api.POST("/distributors/:id/delete", h.removeDistributor)

		api.PUT("/settings", h.updateSettings)
		api.POST("/settings", h.updateSettings)

		api.POST("/import", h.importWorkbook)

		api.GET("/export/results.xlsx", h.exportResults)
		api.GET("/export/template.xlsx", h.exportTemplate)
		api.GET("/export/presentation.html", h.exportPresentation)
		api.GET("/export/certificates.html", h.exportCertificates)

		if h.hub != nil {
			api.GET("/ws", h.liveUpdates)
		}
	}
}

// bindSession attaches the caller's session, creating one when the cookie is
// missing or points to an expired session.
func (h *Handler) bindSession(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)

	s, created := h.sessions.GetOrCreate(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, s.ID, 0, "/", "", h.secureCookies, true)
		h.logger.SystemLogger("session_created", monitoring.ShortID(s.ID))
	}

	c.Set(sessionKey, s)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func (h *Handler) loadPage(c *gin.Context) (frontend.Page, error) {
	state := currentSession(c).State()
	flash, isErr := h.takeFlash(c)

	return frontend.Page{
		Revision:   state.Revision,
		View:       state.View,
		Branding:   h.branding,
		Flash:      flash,
		FlashError: isErr,
	}, nil
}

// getState godoc
// @Summary      Current competition state
// @Description  Records in entry order, standings in rank order, the reward summary and the revision counter.
// @Tags         competition
// @Produce      json
// @Success      200  {object}  session.State
// @Router       /api/state [get]
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).State())
}

// fromForm reports whether the request came from one of the page's HTML forms
// rather than an API client.
func fromForm(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return false
	}
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// wantsPage reports whether a failed GET should go back to the page.
func wantsPage(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html")
}

// respond finishes a successful mutation.
func (h *Handler) respond(c *gin.Context, state session.State, flash string) {
	if fromForm(c) {
		if flash != "" {
			h.setFlash(c, flash, false)
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if flash != "" {
		c.Header("X-Message", flash)
	}
	c.JSON(http.StatusOK, state)
}

// fail reports err to the client in the form it expects.
func (h *Handler) fail(c *gin.Context, err error) {
	appErr := apperrors.ToAppError(err)
	apperrors.LogError(c, appErr)
	h.logger.APIErrorLogger(err, c.Request.Method, c.Request.URL.Path, c.ClientIP(), appErr.HTTPStatus)

	if fromForm(c) || wantsPage(c) {
		h.setFlash(c, appErr.Message, true)
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
}

const (
	flashOK    = "ok|"
	flashError = "error|"
)

func (h *Handler) setFlash(c *gin.Context, msg string, isErr bool) {
	prefix := flashOK
	if isErr {
		prefix = flashError
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, prefix+msg, 60, "/", "", h.secureCookies, true)
}

// takeFlash reads and clears the flash cookie.
func (h *Handler) takeFlash(c *gin.Context) (string, bool) {
	value, err := c.Cookie(FlashCookie)
	if err != nil || value == "" {
		return "", false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", h.secureCookies, true)

	switch {
	case strings.HasPrefix(value, flashError):
		return strings.TrimPrefix(value, flashError), true
	case strings.HasPrefix(value, flashOK):
		return strings.TrimPrefix(value, flashOK), false
	}
	return "", false
}

var errNoFile = errors.New("no file uploaded")
