package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
	"github.com/mitchellh/mapstructure"
)

// Environment variables read by ApplyEnv.
const (
	EnvAlphabet       = "MARKOV_ALPHABET"
	EnvExtension      = "MARKOV_EXTENSION"
	EnvDelimiter      = "MARKOV_DELIMITER"
	EnvFinalMarker    = "MARKOV_FINAL_MARKER"
	EnvStrictAlphabet = "MARKOV_STRICT_ALPHABET"
)

// ErrSingleCharacter is returned when a reserved character setting is not exactly one character.
var ErrSingleCharacter = errors.New("expected exactly one character")

// Config describes the alphabet and syntax a scheme is written in.
// Empty fields fall back to the defaults.
type Config struct {
	Alphabet       string `mapstructure:"alphabet" yaml:"alphabet,omitempty" json:"alphabet,omitempty"`
	Extension      string `mapstructure:"extension" yaml:"extension,omitempty" json:"extension,omitempty"`
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	FinalMarker    string `mapstructure:"final_marker" yaml:"final_marker,omitempty" json:"final_marker,omitempty"`
	StrictAlphabet bool   `mapstructure:"strict_alphabet" yaml:"strict_alphabet,omitempty" json:"strict_alphabet,omitempty"`
}

// Default returns the '→' / '⋅' syntax over Latin letters, digits and '|'.
func Default() Config {
	return Config{
		Delimiter:   string(domain.DefaultDelimiter),
		FinalMarker: string(domain.DefaultFinalMarker),
	}
}

// FromMap decodes loosely typed settings (YAML documents, JSON request bodies)
// on top of the defaults. Unknown keys are rejected.
func FromMap(m map[string]any) (Config, error) {
	return Default().Overlay(m)
}

// Overlay decodes m on top of c. Keys absent from m keep the values of c.
func (c Config) Overlay(m map[string]any) (Config, error) {
	cfg := c
	if len(m) == 0 {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return Config{}, fmt.Errorf("invalid scheme configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the MARKOV_* environment variables.
func (c Config) ApplyEnv() Config {
	return c.applyLookup(os.LookupEnv)
}

func (c Config) applyLookup(lookup func(string) (string, bool)) Config {
	if v, ok := lookup(EnvAlphabet); ok && v != "" {
		c.Alphabet = v
	}
	if v, ok := lookup(EnvExtension); ok && v != "" {
		c.Extension = v
	}
	if v, ok := lookup(EnvDelimiter); ok && v != "" {
		c.Delimiter = v
	}
	if v, ok := lookup(EnvFinalMarker); ok && v != "" {
		c.FinalMarker = v
	}
	if v, ok := lookup(EnvStrictAlphabet); ok {
		if strict, err := strconv.ParseBool(v); err == nil {
			c.StrictAlphabet = strict
		}
	}
	return c
}

// Syntax resolves the reserved characters.
func (c Config) Syntax() (domain.Syntax, error) {
	s := domain.DefaultSyntax()

	if c.Delimiter != "" {
		r, err := single("delimiter", c.Delimiter)
		if err != nil {
			return domain.Syntax{}, err
		}
		s.Delimiter = r
	}
	if c.FinalMarker != "" {
		r, err := single("final marker", c.FinalMarker)
		if err != nil {
			return domain.Syntax{}, err
		}
		s.FinalMarker = r
	}
	return s, nil
}

// AlphabetValue resolves the main alphabet (without the extension).
func (c Config) AlphabetValue() (domain.Alphabet, error) {
	if c.Alphabet == "" {
		return domain.DefaultAlphabet(), nil
	}
	policy := domain.FoldDuplicates
	if c.StrictAlphabet {
		policy = domain.RejectDuplicates
	}
	a, err := domain.ParseAlphabet(c.Alphabet, policy)
	if err != nil {
		return domain.Alphabet{}, fmt.Errorf("failed to parse the alphabet: %w", err)
	}
	return a, nil
}

// Builder returns a scheme builder configured with this alphabet and syntax.
func (c Config) Builder() (*scheme.Builder, error) {
	alphabet, err := c.AlphabetValue()
	if err != nil {
		return nil, err
	}
	syntax, err := c.Syntax()
	if err != nil {
		return nil, err
	}
	return scheme.NewBuilder().
		WithAlphabet(alphabet).
		WithSyntax(syntax).
		WithExtension([]rune(c.Extension)...), nil
}

func single(name, value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%s %q: %w", name, value, ErrSingleCharacter)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}
