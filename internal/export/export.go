// Package export renders the competition's printable HTML documents.
package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Download file names.
const (
	PresentationFileName = "distributor_competition_presentation.html"
	CertificatesFileName = "distributor_reward_certificates.html"
)

// ContentType is the MIME type of every document written here.
const ContentType = "text/html; charset=utf-8"

// ErrNoWinners is returned by Certificates when nobody earned a reward.
var ErrNoWinners = errors.New("no distributors have won rewards yet")

// NoWinnersMessage is the user-facing text for ErrNoWinners.
const NoWinnersMessage = "No distributors have won rewards yet."

// Branding is the text printed in document headers and footers.
type Branding struct {
	Company  string
	Title    string
	Subtitle string
}

// DefaultBranding returns the stock header text.
func DefaultBranding() Branding {
	return Branding{
		Company:  "Jack World No.1",
		Title:    "Distributor Competition",
		Subtitle: "AMH/URUS Sales Ranking & Rewards",
	}
}

var tierColors = map[competition.Reward]string{
	competition.FiveAMH:  "#eab308",
	competition.ThreeAMH: "#3b82f6",
	competition.TwoAMH:   "#22c55e",
	competition.OneAMH:   "#a855f7",
}

// TierColor is the accent colour used for a reward tier. NoReward has none.
func TierColor(r competition.Reward) string {
	return tierColors[r]
}

var funcs = template.FuncMap{
	"tierColor": TierColor,
	"tierClass": func(r competition.Reward) string {
		return fmt.Sprintf("tier-%d", r.Units())
	},
	"rewardClass": func(r competition.Reward) string {
		if r == competition.NoReward {
			return "reward-none"
		}
		return fmt.Sprintf("reward-%d", r.Units())
	},
	"rankClass": func(rank int) string {
		if rank >= 1 && rank <= 3 {
			return fmt.Sprintf("rank-%d", rank)
		}
		return ""
	},
}

// Renderer writes the presentation and certificate documents.
type Renderer struct {
	branding     Branding
	presentation *template.Template
	certificates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer(branding Branding) (*Renderer, error) {
	presentation, err := template.New("presentation.html.tmpl").Funcs(funcs).
		ParseFS(templateFS, "templates/presentation.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse presentation template: %w", err)
	}

	certificates, err := template.New("certificates.html.tmpl").Funcs(funcs).
		ParseFS(templateFS, "templates/certificates.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificates template: %w", err)
	}

	return &Renderer{
		branding:     branding,
		presentation: presentation,
		certificates: certificates,
	}, nil
}

// Presentation writes the standings document: header, reward rules, point
// system and the full ranked table.
func (r *Renderer) Presentation(w io.Writer, view competition.View) error {
	data := struct {
		Branding Branding
		Rules    []competition.RewardRule
		View     competition.View
	}{r.branding, competition.RewardRules, view}

	return execute(w, r.presentation, data)
}

// Certificates writes one printable page per reward winner, grouped by tier
// from 5 AMH down to 1 AMH and in rank order within a tier.
func (r *Renderer) Certificates(w io.Writer, view competition.View) error {
	winners := view.Winners()
	if len(winners) == 0 {
		return ErrNoWinners
	}

	data := struct {
		Branding Branding
		Winners  []competition.RankedRecord
	}{r.branding, winners}

	return execute(w, r.certificates, data)
}

// execute renders into a buffer first so a template error never leaves a
// half-written document behind.
func execute(w io.Writer, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
