package runtime

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/markov/pkg/scheme"
)

// StepResult is the outcome of a single rewrite attempt.
type StepResult struct {
	// Applied is false when no formula occurs in the word.
	Applied bool
	// FormulaIndex is the priority of the applied formula.
	FormulaIndex int
	// Position is the rune offset of the rewritten occurrence.
	Position int
	// Final reports whether the applied formula terminates the algorithm.
	Final bool
	// Word is the rewritten word, or the input when nothing applied.
	Word string
}

// Step performs one rewrite of word.
//
// The applicable formula is the first one, in priority order, whose pattern
// occurs anywhere in the word; an empty pattern occurs at position 0 of every
// word. Only the leftmost occurrence of that pattern is replaced.
func Step(s *scheme.Scheme, word string) StepResult {
	for i := 0; i < s.Len(); i++ {
		f := s.Formula(i)

		idx := strings.Index(word, f.Pattern)
		if idx < 0 {
			continue
		}

		return StepResult{
			Applied:      true,
			FormulaIndex: i,
			Position:     utf8.RuneCountInString(word[:idx]),
			Final:        f.Final,
			Word:         word[:idx] + f.Replacement + word[idx+len(f.Pattern):],
		}
	}

	return StepResult{Word: word}
}
