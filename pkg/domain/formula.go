package domain

import "fmt"

const (
	DefaultDelimiter   = '→'
	DefaultFinalMarker = '⋅'
)

// Syntax holds the two reserved characters of the definition format.
type Syntax struct {
	Delimiter   rune
	FinalMarker rune
}

// DefaultSyntax returns the '→' / '⋅' pair.
func DefaultSyntax() Syntax {
	return Syntax{Delimiter: DefaultDelimiter, FinalMarker: DefaultFinalMarker}
}

// Validate checks the syntax against the alphabet it will be used with.
func (s Syntax) Validate(a Alphabet) error {
	if s.Delimiter == s.FinalMarker {
		return fmt.Errorf("%w: %q", ErrDelimiterIsFinalMarker, s.Delimiter)
	}
	if a.Contains(s.Delimiter) {
		return fmt.Errorf("%w: delimiter %q belongs to the alphabet", ErrReservedCharacterConflict, s.Delimiter)
	}
	if a.Contains(s.FinalMarker) {
		return fmt.Errorf("%w: final marker %q belongs to the alphabet", ErrReservedCharacterConflict, s.FinalMarker)
	}
	return nil
}

// ExtendAlphabet extends a with c unless c is reserved by this syntax.
func (s Syntax) ExtendAlphabet(a Alphabet, c rune) (Alphabet, error) {
	if c == s.Delimiter || c == s.FinalMarker {
		return Alphabet{}, fmt.Errorf("%w: %q is reserved", ErrReservedCharacterConflict, c)
	}
	return a.Extend(c)
}

// Formula is a single substitution rule.
type Formula struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Final       bool   `json:"final" yaml:"final"`

	// Definition is the source text the formula was parsed from, if any.
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// Format serialises the formula back into definition syntax.
func (f Formula) Format(s Syntax) string {
	out := f.Pattern + string(s.Delimiter)
	if f.Final {
		out += string(s.FinalMarker)
	}
	return out + f.Replacement
}

// Validate checks that pattern and replacement only use alphabet characters.
func (f Formula) Validate(a Alphabet) error {
	var invalid []rune
	for _, r := range f.Pattern + f.Replacement {
		if !a.Contains(r) {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) > 0 {
		return &FormulaError{
			Definition: f.Definition,
			Err:        ErrInvalidCharacter,
			Detail:     fmt.Sprintf("unknown characters: %q", string(invalid)),
		}
	}
	return nil
}

// Label returns the source definition, or a rendering with the default syntax.
func (f Formula) Label() string {
	if f.Definition != "" {
		return f.Definition
	}
	return f.Format(DefaultSyntax())
}
