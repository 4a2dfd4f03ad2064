package frontend

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/gin-gonic/gin"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// LivePath is where the page opens its revision websocket.
const LivePath = "/api/ws"

var (
	scriptTagRegex = regexp.MustCompile(`<script([^>]*)>`)
	styleTagRegex  = regexp.MustCompile(`<style([^>]*)>`)
)

// Page is everything the index template renders.
type Page struct {
	Nonce      string
	Revision   uint64
	View       competition.View
	Rules      []competition.RewardRule
	Branding   export.Branding
	Flash      string
	FlashError bool
	LivePath   string
}

var funcs = template.FuncMap{
	"rewardClass": func(r competition.Reward) string {
		if r == competition.NoReward {
			return "reward-none"
		}
		return fmt.Sprintf("reward-%d", r.Units())
	},
}

// LoadIndexTemplate loads and processes the index template from the embedded filesystem
func LoadIndexTemplate() (*template.Template, error) {
	htmlContent, err := fs.ReadFile(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read index template: %w", err)
	}

	// Process the HTML to inject nonce placeholders
	processedHTML := processHTMLForNonce(string(htmlContent))

	tmpl, err := template.New("index").Funcs(funcs).Parse(processedHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return tmpl, nil
}

// processHTMLForNonce modifies HTML to include nonce template placeholders
func processHTMLForNonce(html string) string {
	html = scriptTagRegex.ReplaceAllString(html, `<script nonce="{{.Nonce}}"$1>`)
	html = styleTagRegex.ReplaceAllString(html, `<style nonce="{{.Nonce}}"$1>`)
	return html
}

// RenderIndex renders the index template for page
func RenderIndex(c *gin.Context, tmpl *template.Template, page Page) error {
	var buf bytes.Buffer

	if page.Rules == nil {
		page.Rules = competition.RewardRules
	}
	if page.LivePath == "" {
		page.LivePath = LivePath
	}

	if err := tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	return nil
}
