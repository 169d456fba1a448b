package ports

import (
	"context"
	"fmt"

	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/scheme"
)

// Definition is a scheme as read from a source, before it is built.
type Definition struct {
	// Name identifies the source (usually the file name).
	Name string
	// Description is free text shown by describe, if the source provides one.
	Description string
	// Config holds the alphabet and syntax declared by the source, if any.
	Config config.Config
	// Lines are the formula definitions in priority order.
	Lines []string
}

// SchemeLoader defines how scheme definitions are obtained.
// This keeps the engine independent of files, embedded strings or remote sources.
type SchemeLoader interface {
	// Load reads the definition. base supplies defaults for settings the source omits.
	Load(ctx context.Context, base config.Config) (*Definition, error)
}

// Build turns the definition into a validated scheme.
func (d *Definition) Build() (*scheme.Scheme, error) {
	builder, err := d.Config.Builder()
	if err != nil {
		return nil, err
	}
	s, err := builder.AddDefinitions(d.Lines...).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create the algorithm scheme from %s: %w", d.Name, err)
	}
	return s, nil
}
