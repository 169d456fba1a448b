package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// EmptyWord is how the empty word is labelled.
const EmptyWord = "ε"

// GenerateMermaid produces a Mermaid flowchart of a run trace: each word is a
// node and each edge is labelled with the formula that produced the next word.
// The last word is styled after the run's outcome.
func GenerateMermaid(initial string, steps []domain.Step, outcome domain.Outcome) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sb.WriteString(fmt.Sprintf("    w0((\"%s\"))\n", label(initial)))
	for i, step := range steps {
		from := fmt.Sprintf("w%d", i)
		to := fmt.Sprintf("w%d", i+1)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", to, label(step.Word)))
		sb.WriteString(fmt.Sprintf("    %s -- \"%d: %s\" --> %s\n", from, step.Number, label(step.Formula), to))
	}

	if outcome.IsTerminal() {
		last := fmt.Sprintf("w%d", len(steps))
		sb.WriteString("\n    %% Outcome\n")
		sb.WriteString("    classDef terminated fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef halted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef step_limit_reached fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", last, outcome))
	}

	return sb.String()
}

// GenerateSchemeMermaid draws the control flow of a scheme: formulas are tried
// in priority order, a regular rewrite restarts from the top and a final one stops.
func GenerateSchemeMermaid(d scheme.Description) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"word\"))\n")
	sb.WriteString("    halt([\"halt\"])\n")
	sb.WriteString("    stop([\"stop\"])\n")

	if len(d.Formulas) == 0 {
		sb.WriteString("    start --> halt\n")
		return sb.String()
	}

	sb.WriteString("    start --> f0\n")
	for i, f := range d.Formulas {
		id := fmt.Sprintf("f%d", i)
		if f.Final {
			sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", id, label(f.Definition)))
			sb.WriteString(fmt.Sprintf("    %s -- \"applied\" --> stop\n", id))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label(f.Definition)))
			sb.WriteString(fmt.Sprintf("    %s -- \"applied\" --> f0\n", id))
		}

		next := "halt"
		if i+1 < len(d.Formulas) {
			next = fmt.Sprintf("f%d", i+1)
		}
		sb.WriteString(fmt.Sprintf("    %s -. \"no match\" .-> %s\n", id, next))
	}
	return sb.String()
}

func label(s string) string {
	if s == "" {
		return EmptyWord
	}
	return strings.ReplaceAll(s, `"`, "#quot;")
}
