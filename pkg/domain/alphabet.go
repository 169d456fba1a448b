package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DuplicatePolicy decides how ParseAlphabet treats repeated characters.
type DuplicatePolicy int

const (
	// FoldDuplicates silently keeps one copy of each repeated character.
	FoldDuplicates DuplicatePolicy = iota
	// RejectDuplicates fails with ErrDuplicateCharacter.
	RejectDuplicates
)

// Alphabet is an immutable set of characters.
//
// Main characters may appear in input words, patterns and replacements.
// Extension characters may only appear inside formulas; schemes use them as
// auxiliary markers that never leak into (or come from) the user's word.
type Alphabet struct {
	main      map[rune]struct{}
	extension map[rune]struct{}
}

// ParseAlphabet builds an alphabet from the distinct characters of text.
func ParseAlphabet(text string, policy DuplicatePolicy) (Alphabet, error) {
	main := make(map[rune]struct{}, len(text))
	var duplicates []rune

	for _, r := range text {
		if _, seen := main[r]; seen {
			if !slices.Contains(duplicates, r) {
				duplicates = append(duplicates, r)
			}
			continue
		}
		main[r] = struct{}{}
	}

	if len(main) == 0 {
		return Alphabet{}, ErrEmptyAlphabet
	}
	if policy == RejectDuplicates && len(duplicates) > 0 {
		return Alphabet{}, fmt.Errorf("%w: %q in %q", ErrDuplicateCharacter, string(duplicates), text)
	}

	return Alphabet{main: main}, nil
}

// NewAlphabet builds an alphabet from a set of characters.
func NewAlphabet(chars ...rune) (Alphabet, error) {
	return ParseAlphabet(string(chars), FoldDuplicates)
}

// MustAlphabet is like ParseAlphabet with folding but panics on error.
// Intended for package-level defaults and tests.
func MustAlphabet(text string) Alphabet {
	a, err := ParseAlphabet(text, FoldDuplicates)
	if err != nil {
		panic(err)
	}
	return a
}

// DefaultAlphabet returns Latin letters, digits and '|'.
func DefaultAlphabet() Alphabet {
	var b strings.Builder
	for r := 'a'; r <= 'z'; r++ {
		b.WriteRune(r)
	}
	for r := 'A'; r <= 'Z'; r++ {
		b.WriteRune(r)
	}
	for r := '0'; r <= '9'; r++ {
		b.WriteRune(r)
	}
	b.WriteRune('|')
	return MustAlphabet(b.String())
}

// Extend returns a new alphabet with c added as an extension character.
// The receiver is left untouched.
func (a Alphabet) Extend(c rune) (Alphabet, error) {
	if a.Contains(c) {
		return Alphabet{}, fmt.Errorf("%w: %q", ErrCharacterAlreadyPresent, c)
	}

	ext := make(map[rune]struct{}, len(a.extension)+1)
	for r := range a.extension {
		ext[r] = struct{}{}
	}
	ext[c] = struct{}{}

	return Alphabet{main: a.main, extension: ext}, nil
}

// Contains reports whether c is a main or an extension character.
func (a Alphabet) Contains(c rune) bool {
	if _, ok := a.main[c]; ok {
		return true
	}
	_, ok := a.extension[c]
	return ok
}

// ContainsMain reports whether c may appear in an input word.
func (a Alphabet) ContainsMain(c rune) bool {
	_, ok := a.main[c]
	return ok
}

// IsZero reports whether the alphabet was never initialised.
func (a Alphabet) IsZero() bool {
	return len(a.main) == 0
}

// Len returns the number of characters, extension included.
func (a Alphabet) Len() int {
	return len(a.main) + len(a.extension)
}

// Main returns the main characters in ascending order.
func (a Alphabet) Main() []rune {
	return sortedRunes(a.main)
}

// Extension returns the extension characters in ascending order.
func (a Alphabet) Extension() []rune {
	return sortedRunes(a.extension)
}

// String renders the main characters followed by the extension in brackets.
func (a Alphabet) String() string {
	s := string(a.Main())
	if len(a.extension) > 0 {
		s += "[" + string(a.Extension()) + "]"
	}
	return s
}

// ValidateWord checks that every character of word is a main character.
// Unknown characters take precedence over extension characters.
func (a Alphabet) ValidateWord(word string) error {
	var unknown, extension []rune
	for _, r := range word {
		switch {
		case a.ContainsMain(r):
		case a.Contains(r):
			extension = append(extension, r)
		default:
			unknown = append(unknown, r)
		}
	}

	if len(unknown) > 0 {
		return &WordError{Err: ErrWordContainsInvalidCharacter, Characters: string(unknown)}
	}
	if len(extension) > 0 {
		return &WordError{Err: ErrWordContainsExtensionCharacter, Characters: string(extension)}
	}
	return nil
}

func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}
