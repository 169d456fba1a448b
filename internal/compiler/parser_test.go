package compiler_test

import (
	"errors"
	"testing"

	"github.com/aretw0/markov/internal/compiler"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T) *compiler.Parser {
	t.Helper()
	a, err := domain.MustAlphabet("abc").Extend('d')
	require.NoError(t, err)
	return compiler.NewParser(a, domain.DefaultSyntax())
}

func TestParser_Parse(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		definition string
		want       domain.Formula
	}{
		{"a→b", domain.Formula{Pattern: "a", Replacement: "b"}},
		{"ab→⋅c", domain.Formula{Pattern: "ab", Replacement: "c", Final: true}},
		{"→a", domain.Formula{Replacement: "a"}},
		{"a→", domain.Formula{Pattern: "a"}},
		{"→⋅", domain.Formula{Final: true}},
		{"d→da", domain.Formula{Pattern: "d", Replacement: "da"}},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			got, err := p.Parse(tt.definition)
			require.NoError(t, err)
			tt.want.Definition = tt.definition
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.definition, got.Format(domain.DefaultSyntax()))
		})
	}
}

func TestParser_ParseErrors(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		definition string
		want       error
		detail     string
	}{
		{"", domain.ErrEmptyDefinition, ""},
		{"  \t", domain.ErrEmptyDefinition, ""},
		{"ab", domain.ErrMissingDelimiter, ""},
		{"a→b→c", domain.ErrMultipleDelimiters, "2 delimiters"},
		{"→→", domain.ErrMultipleDelimiters, "2 delimiters"},
		{"ax→b", domain.ErrInvalidCharacter, `unknown characters: "x"`},
		{"a→by", domain.ErrInvalidCharacter, `unknown characters: "y"`},
		{"a⋅→b", domain.ErrInvalidCharacter, "final marker on the left side"},
		{"a→b⋅", domain.ErrInvalidCharacter, "final marker on the right side"},
		{"a→⋅⋅b", domain.ErrInvalidCharacter, "final marker on the right side"},
		{"x⋅→b", domain.ErrInvalidCharacter, `final marker on the left side, unknown characters: "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			_, err := p.Parse(tt.definition)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fe *domain.FormulaError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.definition, fe.Definition)
			assert.Equal(t, tt.detail, fe.Detail)
		})
	}
}

func TestParser_CustomSyntax(t *testing.T) {
	p := compiler.NewParser(domain.MustAlphabet("ab"), domain.Syntax{Delimiter: '>', FinalMarker: '!'})

	f, err := p.Parse("a>!b")
	require.NoError(t, err)
	assert.True(t, f.Final)
	assert.Equal(t, "b", f.Replacement)

	_, err = p.Parse("a→b")
	assert.ErrorIs(t, err, domain.ErrMissingDelimiter)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, compiler.SplitLines(""))
	assert.Equal(t, []string{"a→b", "b→c"}, compiler.SplitLines("a→b\nb→c\n"))
	assert.Equal(t, []string{"a→b", "b→c"}, compiler.SplitLines("a→b\r\nb→c"))
	assert.Equal(t, []string{"a→b", "", "b→c"}, compiler.SplitLines("a→b\n\nb→c"))
}
