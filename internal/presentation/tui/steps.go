package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/muesli/termenv"
)

// StepRenderer colours one rewrite: the replaced occurrence is highlighted in
// the resulting word and the applied formula is dimmed.
type StepRenderer struct {
	profile termenv.Profile
}

// NewStepRenderer detects the terminal's colour profile.
func NewStepRenderer() *StepRenderer {
	return &StepRenderer{profile: termenv.ColorProfile()}
}

// NewStepRendererWithProfile uses a fixed profile, e.g. termenv.Ascii for plain output.
func NewStepRendererWithProfile(p termenv.Profile) *StepRenderer {
	return &StepRenderer{profile: p}
}

// Render formats a step. It matches markov.StepRenderer.
func (r *StepRenderer) Render(s domain.Step) string {
	number := r.profile.String(fmt.Sprintf("%3d", s.Number)).Foreground(r.profile.Color("#818cf8"))
	formula := r.profile.String(s.Formula).Faint()

	line := fmt.Sprintf("%s  %s  ->  %s   (%s)", number, quote(s.Before), r.highlight(s), formula)
	if s.Outcome.IsTerminal() {
		line += "  " + r.Outcome(s.Outcome)
	}
	return line
}

// Outcome renders an outcome badge.
func (r *StepRenderer) Outcome(o domain.Outcome) string {
	color := "#a78bfa"
	switch o {
	case domain.OutcomeTerminated:
		color = "#4ade80"
	case domain.OutcomeHalted:
		color = "#60a5fa"
	case domain.OutcomeStepLimitReached:
		color = "#facc15"
	}
	return r.profile.String(string(o)).Foreground(r.profile.Color(color)).Bold().String()
}

// highlight colours the replacement inside the rewritten word.
func (r *StepRenderer) highlight(s domain.Step) string {
	runes := []rune(s.Word)
	n := len([]rune(s.Replacement))
	if n == 0 || s.Position < 0 || s.Position+n > len(runes) {
		return quote(s.Word)
	}

	head := string(runes[:s.Position])
	mid := r.profile.String(string(runes[s.Position : s.Position+n])).Foreground(r.profile.Color("#f472b6")).Bold()
	tail := string(runes[s.Position+n:])
	return `"` + head + mid.String() + tail + `"`
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
