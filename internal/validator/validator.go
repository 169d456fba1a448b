package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/markov/pkg/scheme"
)

// Finding is a problem that does not prevent a scheme from being built.
type Finding struct {
	// Formula is the priority of the offending formula, or -1 for the whole scheme.
	Formula    int
	Definition string
	Message    string
}

func (f Finding) String() string {
	if f.Formula < 0 {
		return f.Message
	}
	return fmt.Sprintf("formula %d (%s): %s", f.Formula+1, f.Definition, f.Message)
}

// LintScheme reports formulas that can never fire and schemes that cannot stop
// the way their author probably intended.
func LintScheme(s *scheme.Scheme) []Finding {
	var findings []Finding
	formulas := s.Formulas()
	syntax := s.Syntax()

	hasFinal := false
	loops := false
	for j, f := range formulas {
		// A pattern containing an earlier pattern is never the first applicable one.
		for i := 0; i < j; i++ {
			if strings.Contains(f.Pattern, formulas[i].Pattern) {
				findings = append(findings, Finding{
					Formula:    j,
					Definition: f.Format(syntax),
					Message:    fmt.Sprintf("never applies, formula %d (%s) always matches first", i+1, formulas[i].Format(syntax)),
				})
				break
			}
		}

		// An empty pattern matches every word, so nothing after it is reached and
		// the run never halts. Only an earlier final formula can stop it.
		if f.Pattern == "" && !f.Final && !hasFinal && !loops {
			loops = true
			findings = append(findings, Finding{
				Formula:    j,
				Definition: f.Format(syntax),
				Message:    "always applies and no final formula precedes it, every run ends at the step limit",
			})
		}
		hasFinal = hasFinal || f.Final
	}

	if !hasFinal {
		findings = append(findings, Finding{
			Formula: -1,
			Message: "no final formula, runs stop only when no formula applies",
		})
	}
	return findings
}
