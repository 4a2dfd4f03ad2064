// Package report prints competition standings and the reward summary to a
// terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/charmbracelet/lipgloss"
)

const nameWidth = 24

// printStyles holds all the styles used in the report.
type printStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	top    lipgloss.Style
	dim    lipgloss.Style
	total  lipgloss.Style
	tiers  map[competition.Reward]lipgloss.Style
}

func newPrintStyles(r *lipgloss.Renderer) printStyles {
	tiers := make(map[competition.Reward]lipgloss.Style, len(competition.RewardRules))
	for _, rule := range competition.RewardRules {
		tiers[rule.Reward] = r.NewStyle().Bold(true).Foreground(lipgloss.Color(export.TierColor(rule.Reward)))
	}

	return printStyles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		top:    r.NewStyle().Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
		total:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		tiers:  tiers,
	}
}

func (s printStyles) reward(r competition.Reward) lipgloss.Style {
	if style, ok := s.tiers[r]; ok {
		return style
	}
	return s.dim
}

// Printer writes reports to w. Colour is used only when w is a terminal.
type Printer struct {
	w        io.Writer
	styles   printStyles
	branding export.Branding
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer, branding export.Branding) *Printer {
	return &Printer{
		w:        w,
		styles:   newPrintStyles(lipgloss.NewRenderer(w)),
		branding: branding,
	}
}

// Print writes the header, standings and reward summary.
func (p *Printer) Print(view competition.View) {
	p.Header(view.Config)
	p.Standings(view.Standings)
	p.Summary(view.Summary)
}

// Header prints the branding and active point settings.
func (p *Printer) Header(cfg competition.PointConfig) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.styles.title.Render(p.branding.Title))
	fmt.Fprintln(p.w, p.styles.dim.Render(p.branding.Subtitle+" | "+p.branding.Company))
	fmt.Fprintf(p.w, "Points: activity x%d, AMH x%d, URUS x%d\n",
		cfg.ActivityWeight, cfg.PrimaryWeight, cfg.SecondaryWeight)
	fmt.Fprintln(p.w)
}

// Standings prints one line per distributor in rank order.
func (p *Printer) Standings(standings []competition.RankedRecord) {
	fmt.Fprintln(p.w, p.styles.header.Render(fmt.Sprintf("%-5s %-*s %6s %6s %6s %7s  %s",
		"Rank", nameWidth, "Distributor", "Act", "AMH", "URUS", "Points", "Reward")))

	if len(standings) == 0 {
		fmt.Fprintln(p.w, p.styles.dim.Render("  no distributors"))
	}

	for _, r := range standings {
		rank := fmt.Sprintf("#%-4d", r.Rank)
		if r.Rank <= 3 {
			rank = p.styles.top.Render(rank)
		}
		fmt.Fprintf(p.w, "%s %-*s %6d %6d %6d %7d  %s\n",
			rank,
			nameWidth, truncate(displayName(r.Name), nameWidth),
			r.Activities.Int(), r.AMHSold.Int(), r.URUSSold.Int(),
			r.Points,
			p.styles.reward(r.Reward).Render(r.Reward.String()))
	}
	fmt.Fprintln(p.w)
}

// Summary prints winners per tier and the machine total.
func (p *Printer) Summary(summary competition.Summary) {
	fmt.Fprintln(p.w, p.styles.header.Render("REWARD SUMMARY"))
	fmt.Fprintf(p.w, "Winners: %d\n", summary.WinnerCount)

	for _, b := range summary.Buckets {
		fmt.Fprintf(p.w, "  %s: %d x %d = %d machines\n",
			p.styles.reward(b.Reward).Render(fmt.Sprintf("%-6s", b.Reward)),
			b.Count(), b.Reward.Units(), b.Machines)
		if b.Count() > 0 {
			names := make([]string, 0, b.Count())
			for _, w := range b.Winners {
				names = append(names, displayName(w.Name))
			}
			fmt.Fprintln(p.w, p.styles.dim.Render("    "+strings.Join(names, ", ")))
		}
	}

	fmt.Fprintln(p.w, p.styles.total.Render(fmt.Sprintf("Total AMH machines: %d", summary.GrandTotal)))
	fmt.Fprintln(p.w)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
