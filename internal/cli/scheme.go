package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/pkg/adapters/file"
	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/spf13/pflag"
)

// SchemeFlags are the flags shared by every command that loads a scheme.
type SchemeFlags struct {
	Path           string
	Alphabet       string
	Extension      string
	Delimiter      string
	FinalMarker    string
	StrictAlphabet bool

	flags *pflag.FlagSet
}

// Bind registers the flags on fs.
func (f *SchemeFlags) Bind(fs *pflag.FlagSet) {
	f.flags = fs
	fs.StringVarP(&f.Path, "scheme", "s", "", "Scheme file: one formula per line, or a .yaml document")
	fs.StringVar(&f.Alphabet, "alphabet", "", "Main alphabet characters (default: a-z, A-Z, 0-9 and |)")
	fs.StringVar(&f.Extension, "extension", "", "Auxiliary characters allowed in formulas but not in input words")
	fs.StringVar(&f.Delimiter, "delimiter", "", "Character separating pattern and replacement (default →)")
	fs.StringVar(&f.FinalMarker, "final-marker", "", "Character marking a final formula (default ⋅)")
	fs.BoolVar(&f.StrictAlphabet, "strict-alphabet", false, "Reject repeated characters in --alphabet")
}

func (f *SchemeFlags) changed(name string) bool {
	return f.flags != nil && f.flags.Changed(name)
}

// Config resolves the configuration: explicit flags win over MARKOV_* variables,
// which win over the settings of the scheme document.
func (f *SchemeFlags) Config(fromFile config.Config) config.Config {
	cfg := fromFile.ApplyEnv()
	if f.changed("alphabet") {
		cfg.Alphabet = f.Alphabet
	}
	if f.changed("extension") {
		cfg.Extension = f.Extension
	}
	if f.changed("delimiter") {
		cfg.Delimiter = f.Delimiter
	}
	if f.changed("final-marker") {
		cfg.FinalMarker = f.FinalMarker
	}
	if f.changed("strict-alphabet") {
		cfg.StrictAlphabet = f.StrictAlphabet
	}
	return cfg
}

// Load reads the scheme file and applies the configuration precedence.
func (f *SchemeFlags) Load(ctx context.Context) (*ports.Definition, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("a scheme file is required (--scheme)")
	}
	def, err := file.NewSchemeLoader(f.Path).Load(ctx, config.Default())
	if err != nil {
		return nil, err
	}
	def.Config = f.Config(def.Config)
	return def, nil
}

// Engine loads the scheme and builds an engine for it.
func (f *SchemeFlags) Engine(ctx context.Context, opts ...markov.Option) (*markov.Engine, *ports.Definition, error) {
	def, err := f.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := def.Build()
	if err != nil {
		return nil, def, err
	}
	return markov.FromScheme(s, append([]markov.Option{markov.WithName(def.Name)}, opts...)...), def, nil
}
