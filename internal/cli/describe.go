package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/markov/internal/presentation/graph"
	"github.com/aretw0/markov/internal/presentation/tui"
	"github.com/aretw0/markov/internal/validator"
	"github.com/aretw0/markov/pkg/domain"
)

// Validate builds the scheme and lists every invalid formula, followed by
// warnings about formulas that can never fire.
func Validate(ctx context.Context, flags *SchemeFlags, w io.Writer) error {
	def, err := flags.Load(ctx)
	if err != nil {
		return err
	}

	s, err := def.Build()
	if err != nil {
		errs := domain.DefinitionErrors(err)
		if len(errs) == 0 {
			return err
		}
		for _, e := range errs {
			fmt.Fprintf(w, "  - %v\n", e)
		}
		return fmt.Errorf("%s: %d invalid formulas", def.Name, len(errs))
	}

	fmt.Fprintf(w, "Scheme %s is valid (%d formulas). ✅\n", def.Name, s.Len())
	for _, f := range validator.LintScheme(s) {
		fmt.Fprintf(w, "  warning: %s\n", f)
	}
	return nil
}

// DescribeOptions configures the describe command.
type DescribeOptions struct {
	Scheme *SchemeFlags
	// Mermaid prints a flowchart of the formulas instead of the table.
	Mermaid bool
	// Render turns markdown into terminal output. Nil prints raw markdown.
	Render func(string) (string, error)
	Out    io.Writer
}

// Describe prints the scheme as a markdown table or a Mermaid chart.
func Describe(ctx context.Context, opts DescribeOptions) error {
	def, err := opts.Scheme.Load(ctx)
	if err != nil {
		return err
	}
	s, err := def.Build()
	if err != nil {
		return err
	}

	d := s.Describe()
	if opts.Mermaid {
		fmt.Fprint(opts.Out, graph.GenerateSchemeMermaid(d))
		return nil
	}

	doc := tui.SchemeMarkdown(def.Name, def.Description, d)
	if opts.Render != nil {
		rendered, err := opts.Render(doc)
		if err == nil {
			doc = rendered
		}
	}
	fmt.Fprint(opts.Out, doc)
	return nil
}
