package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/markov/internal/compiler"
	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/ports"
	"gopkg.in/yaml.v3"
)

// SchemeLoader reads a scheme from disk.
//
// Files ending in .yaml or .yml are documents of the form
//
//	name: unary-addition
//	description: Adds two unary numbers.
//	alphabet: "|+"
//	formulas:
//	  - "|+→+|"
//	  - "+→⋅"
//
// Any other file is plain text with one formula per line.
type SchemeLoader struct {
	Path string
}

var _ ports.SchemeLoader = (*SchemeLoader)(nil)

// NewSchemeLoader creates a loader for path.
func NewSchemeLoader(path string) *SchemeLoader {
	return &SchemeLoader{Path: path}
}

// Load reads the file. Settings found in a YAML document overlay base.
func (l *SchemeLoader) Load(ctx context.Context, base config.Config) (*ports.Definition, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scheme file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(l.Path), filepath.Ext(l.Path))

	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".yaml", ".yml":
		return ParseYAML(name, data, base)
	default:
		return &ports.Definition{
			Name:   name,
			Config: base,
			Lines:  compiler.SplitLines(string(data)),
		}, nil
	}
}

// ParseYAML decodes a YAML scheme document.
func ParseYAML(name string, data []byte, base config.Config) (*ports.Definition, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scheme document %s: %w", name, err)
	}

	raw, ok := doc["formulas"]
	if !ok {
		return nil, fmt.Errorf("scheme document %s has no formulas", name)
	}
	delete(doc, "formulas")

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("scheme document %s: formulas must be a list, got %T", name, raw)
	}
	lines := make([]string, len(items))
	for i, item := range items {
		if item != nil {
			lines[i] = fmt.Sprint(item)
		}
	}

	if v, ok := doc["name"]; ok {
		name = fmt.Sprint(v)
		delete(doc, "name")
	}
	var description string
	if v, ok := doc["description"]; ok {
		description = fmt.Sprint(v)
		delete(doc, "description")
	}

	cfg, err := base.Overlay(doc)
	if err != nil {
		return nil, fmt.Errorf("scheme document %s: %w", name, err)
	}

	return &ports.Definition{Name: name, Description: description, Config: cfg, Lines: lines}, nil
}
