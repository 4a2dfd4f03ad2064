package frontend

import (
	"html/template"

	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/security"
	"github.com/gin-gonic/gin"
)

// PageFunc builds the page data for the current request.
type PageFunc func(c *gin.Context) (Page, error)

// NewIndexHandler serves the competition page. The CSP nonce comes from
// security.CSPMiddleware and is generated here when that middleware is absent.
// Failures are left on the context for errors.ErrorHandler.
func NewIndexHandler(indexTemplate *template.Template, load PageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := load(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		page.Nonce = security.GetNonce(c)
		if page.Nonce == "" {
			if page.Nonce, err = security.GenerateNonce(); err != nil {
				_ = c.Error(apperrors.NewInternalError("failed to generate CSP nonce", err))
				return
			}
		}

		if err := RenderIndex(c, indexTemplate, page); err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to render page", err))
		}
	}
}
