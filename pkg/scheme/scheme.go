package scheme

import (
	"github.com/aretw0/markov/internal/compiler"
	"github.com/aretw0/markov/pkg/domain"
)

// Scheme is an ordered, validated list of formulas over one alphabet.
// Formula order is priority: index 0 is tried first.
//
// A Scheme is never mutated after Build and may be shared by any number of
// concurrent rewrite sessions.
type Scheme struct {
	alphabet domain.Alphabet
	syntax   domain.Syntax
	formulas []domain.Formula
}

// Alphabet returns the alphabet the scheme is defined over.
func (s *Scheme) Alphabet() domain.Alphabet { return s.alphabet }

// Syntax returns the delimiter and final marker used by the definitions.
func (s *Scheme) Syntax() domain.Syntax { return s.syntax }

// Len returns the number of formulas.
func (s *Scheme) Len() int { return len(s.formulas) }

// Formula returns the formula at priority i.
func (s *Scheme) Formula(i int) domain.Formula { return s.formulas[i] }

// Formulas returns a copy of the formulas in priority order.
func (s *Scheme) Formulas() []domain.Formula {
	out := make([]domain.Formula, len(s.formulas))
	copy(out, s.formulas)
	return out
}

// ValidateWord checks that word can be fed to the scheme.
func (s *Scheme) ValidateWord(word string) error {
	return s.alphabet.ValidateWord(word)
}

// Definition renders the scheme back into its textual form, one formula per line.
func (s *Scheme) Definition() string {
	out := ""
	for i, f := range s.formulas {
		if i > 0 {
			out += "\n"
		}
		out += f.Format(s.syntax)
	}
	return out
}

// ParseFormula parses a single definition line outside of a builder.
func ParseFormula(line string, alphabet domain.Alphabet, syntax domain.Syntax) (domain.Formula, error) {
	if err := syntax.Validate(alphabet); err != nil {
		return domain.Formula{}, err
	}
	return compiler.NewParser(alphabet, syntax).Parse(line)
}
