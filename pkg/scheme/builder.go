package scheme

import (
	"fmt"

	"github.com/aretw0/markov/internal/compiler"
	"github.com/aretw0/markov/pkg/domain"
)

// entry is either a raw definition line or a formula added directly.
type entry struct {
	line    string
	formula *domain.Formula
}

// Builder accumulates formulas and produces a validated Scheme.
// Definitions are parsed at Build time, so options and definitions may be
// supplied in any order.
type Builder struct {
	alphabet  domain.Alphabet
	syntax    domain.Syntax
	extension []rune
	entries   []entry
}

// NewBuilder creates a builder with the default alphabet and syntax.
func NewBuilder() *Builder {
	return &Builder{
		alphabet: domain.DefaultAlphabet(),
		syntax:   domain.DefaultSyntax(),
	}
}

// WithAlphabet replaces the alphabet.
func (b *Builder) WithAlphabet(a domain.Alphabet) *Builder {
	b.alphabet = a
	return b
}

// WithSyntax replaces both reserved characters.
func (b *Builder) WithSyntax(s domain.Syntax) *Builder {
	b.syntax = s
	return b
}

// WithDelimiter sets the delimiter character.
func (b *Builder) WithDelimiter(r rune) *Builder {
	b.syntax.Delimiter = r
	return b
}

// WithFinalMarker sets the final marker character.
func (b *Builder) WithFinalMarker(r rune) *Builder {
	b.syntax.FinalMarker = r
	return b
}

// WithExtension extends the alphabet with auxiliary characters when the scheme is built.
func (b *Builder) WithExtension(chars ...rune) *Builder {
	b.extension = append(b.extension, chars...)
	return b
}

// Add appends a formula. Its characters are checked against the alphabet at Build.
func (b *Builder) Add(f domain.Formula) *Builder {
	b.entries = append(b.entries, entry{formula: &f})
	return b
}

// AddDefinition appends one definition line.
func (b *Builder) AddDefinition(line string) *Builder {
	b.entries = append(b.entries, entry{line: line})
	return b
}

// AddDefinitions appends definition lines in order.
func (b *Builder) AddDefinitions(lines ...string) *Builder {
	for _, line := range lines {
		b.AddDefinition(line)
	}
	return b
}

// AddText splits text into lines and appends each as a definition.
func (b *Builder) AddText(text string) *Builder {
	return b.AddDefinitions(compiler.SplitLines(text)...)
}

// Build validates the configuration and every accumulated definition.
// All definition errors are reported together as a *domain.AggregateError.
func (b *Builder) Build() (*Scheme, error) {
	if b.alphabet.IsZero() {
		return nil, domain.ErrEmptyAlphabet
	}

	alphabet := b.alphabet
	for _, r := range b.extension {
		var err error
		alphabet, err = b.syntax.ExtendAlphabet(alphabet, r)
		if err != nil {
			return nil, fmt.Errorf("failed to extend the alphabet: %w", err)
		}
	}

	if err := b.syntax.Validate(alphabet); err != nil {
		return nil, err
	}

	if len(b.entries) == 0 {
		return nil, domain.ErrEmptyScheme
	}

	parser := compiler.NewParser(alphabet, b.syntax)
	formulas := make([]domain.Formula, 0, len(b.entries))
	var errs []error

	for i, e := range b.entries {
		var (
			f   domain.Formula
			err error
		)
		if e.formula != nil {
			f = *e.formula
			err = f.Validate(alphabet)
		} else {
			f, err = parser.Parse(e.line)
		}
		if err != nil {
			if fe, ok := err.(*domain.FormulaError); ok {
				fe.Line = i + 1
			}
			errs = append(errs, err)
			continue
		}
		formulas = append(formulas, f)
	}

	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}

	return &Scheme{
		alphabet: alphabet,
		syntax:   b.syntax,
		formulas: formulas,
	}, nil
}
