package frontend

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/ZanzyTHEbar/distributor-competition/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessHTMLForNonce(t *testing.T) {
	out := processHTMLForNonce(`<style>a{}</style><script type="module">x()</script>`)
	assert.Equal(t, `<style nonce="{{.Nonce}}">a{}</style><script nonce="{{.Nonce}}" type="module">x()</script>`, out)
}

func samplePage() Page {
	records := []competition.DistributorRecord{
		{ID: "a", Name: "Quiet <Co>"},
		{ID: "b", Name: "Leader", Activities: competition.CountOf(20), AMHSold: competition.CountOf(4)},
	}
	return Page{
		Revision: 7,
		View:     competition.DeriveView(records, competition.DefaultPointConfig()),
		Branding: export.DefaultBranding(),
	}
}

func TestIndexHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tmpl, err := LoadIndexTemplate()
	require.NoError(t, err)

	page := samplePage()
	page.Flash = "Successfully imported 2 distributors!"

	r := gin.New()
	r.Use(security.CSPMiddleware())
	r.GET("/", NewIndexHandler(tmpl, func(c *gin.Context) (Page, error) { return page, nil }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	csp := w.Header().Get("Content-Security-Policy")
	nonceAttr := body[strings.Index(body, `<script nonce="`)+len(`<script nonce="`):]
	nonce := nonceAttr[:strings.Index(nonceAttr, `"`)]
	assert.Contains(t, csp, "'nonce-"+nonce+"'")
	assert.Contains(t, body, `<style nonce="`+nonce+`"`)

	assert.Contains(t, body, "Quiet &lt;Co&gt;")
	assert.NotContains(t, body, "Quiet <Co>")
	assert.Contains(t, body, "Successfully imported 2 distributors!")
	assert.Contains(t, body, `action="/api/distributors/b"`)
	assert.Contains(t, body, `action="/api/distributors/a/delete"`)
	assert.Contains(t, body, "reward-5")
	assert.Contains(t, body, "Total AMH machines: 5")
	assert.Regexp(t, `var revision =\s+7\s*;`, body)
	assert.Contains(t, body, "at least 100 points + activity")

	// Standings list the leader before the record collected first.
	standings := body[strings.Index(body, `id="standings"`):]
	assert.Less(t, strings.Index(standings, "Leader"), strings.Index(standings, "Quiet"))
}

func TestIndexHandlerErrorFlash(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tmpl, err := LoadIndexTemplate()
	require.NoError(t, err)

	page := samplePage()
	page.Flash = "No data found in the file."
	page.FlashError = true

	r := gin.New()
	r.GET("/", NewIndexHandler(tmpl, func(c *gin.Context) (Page, error) { return page, nil }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="flash error"`)
}

func TestIndexHandlerLoadError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tmpl, err := LoadIndexTemplate()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", NewIndexHandler(tmpl, func(c *gin.Context) (Page, error) {
		return Page{}, errors.New("boom")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotContains(t, w.Body.String(), "<html")
}
