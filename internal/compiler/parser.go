package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/markov/pkg/domain"
)

// Parser converts formula definitions into domain.Formula values.
// It is stateless apart from its configuration and safe for concurrent use.
type Parser struct {
	alphabet domain.Alphabet
	syntax   domain.Syntax
}

// NewParser creates a parser for the given alphabet and syntax.
// The caller is expected to have validated the syntax against the alphabet.
func NewParser(alphabet domain.Alphabet, syntax domain.Syntax) *Parser {
	return &Parser{alphabet: alphabet, syntax: syntax}
}

// Parse decodes a single line of the form <pattern><delimiter>[<final marker>]<replacement>.
func (p *Parser) Parse(definition string) (domain.Formula, error) {
	fail := func(err error, detail string) (domain.Formula, error) {
		return domain.Formula{}, &domain.FormulaError{Definition: definition, Err: err, Detail: detail}
	}

	if strings.TrimSpace(definition) == "" {
		return fail(domain.ErrEmptyDefinition, "")
	}

	delimiter := string(p.syntax.Delimiter)
	switch n := strings.Count(definition, delimiter); {
	case n == 0:
		return fail(domain.ErrMissingDelimiter, "")
	case n > 1:
		return fail(domain.ErrMultipleDelimiters, fmt.Sprintf("%d delimiters", n))
	}

	pattern, replacement, _ := strings.Cut(definition, delimiter)

	marker := string(p.syntax.FinalMarker)
	final := strings.HasPrefix(replacement, marker)
	if final {
		replacement = replacement[len(marker):]
	}

	if detail := p.invalidCharacters(pattern, "left"); detail != "" {
		return fail(domain.ErrInvalidCharacter, detail)
	}
	if detail := p.invalidCharacters(replacement, "right"); detail != "" {
		return fail(domain.ErrInvalidCharacter, detail)
	}

	return domain.Formula{
		Pattern:     pattern,
		Replacement: replacement,
		Final:       final,
		Definition:  definition,
	}, nil
}

func (p *Parser) invalidCharacters(side, name string) string {
	var unknown []rune
	misplacedMarker := false

	for _, r := range side {
		switch {
		case p.alphabet.Contains(r):
		case r == p.syntax.FinalMarker:
			misplacedMarker = true
		default:
			unknown = append(unknown, r)
		}
	}

	switch {
	case misplacedMarker && len(unknown) > 0:
		return fmt.Sprintf("final marker on the %s side, unknown characters: %q", name, string(unknown))
	case misplacedMarker:
		return fmt.Sprintf("final marker on the %s side", name)
	case len(unknown) > 0:
		return fmt.Sprintf("unknown characters: %q", string(unknown))
	}
	return ""
}

// SplitLines splits a scheme text into definition lines.
// It accepts "\r\n" endings and ignores a single trailing newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
