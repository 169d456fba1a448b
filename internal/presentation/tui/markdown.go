package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/markov/pkg/scheme"
)

// SchemeMarkdown renders a scheme description as a markdown document.
func SchemeMarkdown(name, description string, d scheme.Description) string {
	var sb strings.Builder

	title := name
	if title == "" {
		title = "Scheme"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if description != "" {
		fmt.Fprintf(&sb, "%s\n\n", description)
	}

	fmt.Fprintf(&sb, "- **Alphabet:** `%s`\n", d.Alphabet)
	if d.Extension != "" {
		fmt.Fprintf(&sb, "- **Extension:** `%s`\n", d.Extension)
	}
	fmt.Fprintf(&sb, "- **Delimiter:** `%s`\n", d.Delimiter)
	fmt.Fprintf(&sb, "- **Final marker:** `%s`\n\n", d.FinalMarker)

	sb.WriteString("| # | Pattern | Replacement | Final |\n")
	sb.WriteString("|---|---------|-------------|-------|\n")
	for _, f := range d.Formulas {
		final := ""
		if f.Final {
			final = "yes"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", f.Index+1, cell(f.Pattern), cell(f.Replacement), final)
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "*empty*"
	}
	return "`" + strings.ReplaceAll(s, "|", `\|`) + "`"
}
