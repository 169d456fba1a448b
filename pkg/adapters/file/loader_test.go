package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/markov/pkg/adapters/file"
	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSchemeLoader_PlainText(t *testing.T) {
	path := writeFile(t, "rewrite.txt", "a→b\r\nb→c\nc→⋅4\n")

	def, err := file.NewSchemeLoader(path).Load(context.Background(), config.Default())
	require.NoError(t, err)

	assert.Equal(t, "rewrite", def.Name)
	assert.Equal(t, []string{"a→b", "b→c", "c→⋅4"}, def.Lines)

	s, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestSchemeLoader_YAML(t *testing.T) {
	path := writeFile(t, "unary.yaml", `
name: unary-addition
description: Adds two unary numbers.
alphabet: "|+"
delimiter: ">"
final_marker: "!"
formulas:
  - "|+>+|"
  - "+>!"
`)

	def, err := file.NewSchemeLoader(path).Load(context.Background(), config.Default())
	require.NoError(t, err)

	assert.Equal(t, "unary-addition", def.Name)
	assert.Equal(t, "Adds two unary numbers.", def.Description)
	assert.Equal(t, "|+", def.Config.Alphabet)
	assert.Equal(t, ">", def.Config.Delimiter)

	s, err := def.Build()
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.True(t, s.Formula(1).Final)
	assert.Equal(t, "", s.Formula(1).Replacement)
}

func TestSchemeLoader_YAMLKeepsBaseSettings(t *testing.T) {
	path := writeFile(t, "ext.yml", `
formulas:
  - "a→⋅d"
`)
	base := config.Default()
	base.Alphabet = "abc"
	base.Extension = "d"

	def, err := file.NewSchemeLoader(path).Load(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, "abc", def.Config.Alphabet)
	assert.Equal(t, "d", def.Config.Extension)

	s, err := def.Build()
	require.NoError(t, err)
	assert.ErrorIs(t, s.ValidateWord("abcd"), domain.ErrWordContainsExtensionCharacter)
}

func TestSchemeLoader_YAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing formulas", "alphabet: abc\n"},
		{"formulas not a list", "formulas: a→b\n"},
		{"unknown key", "colour: red\nformulas: [\"a→b\"]\n"},
		{"malformed", "formulas: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", tt.content)
			_, err := file.NewSchemeLoader(path).Load(context.Background(), config.Default())
			assert.Error(t, err)
		})
	}
}

func TestSchemeLoader_BuildReportsEveryLine(t *testing.T) {
	path := writeFile(t, "broken.txt", "a→b\nab\nx→y\n")

	def, err := file.NewSchemeLoader(path).Load(context.Background(), config.Default())
	require.NoError(t, err)

	_, err = def.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingDelimiter)
	assert.Len(t, domain.DefinitionErrors(err), 1)
}

func TestSchemeLoader_MissingFile(t *testing.T) {
	_, err := file.NewSchemeLoader(filepath.Join(t.TempDir(), "nope.txt")).Load(context.Background(), config.Default())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
