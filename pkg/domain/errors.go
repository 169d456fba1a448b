package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors.
var (
	// ErrEmptyAlphabet is returned when an alphabet would contain no characters.
	ErrEmptyAlphabet = errors.New("an alphabet cannot be empty")

	// ErrDuplicateCharacter is returned by strict alphabet parsing when a character repeats.
	ErrDuplicateCharacter = errors.New("duplicate character in alphabet definition")

	// ErrCharacterAlreadyPresent is returned when extending an alphabet with a character it already holds.
	ErrCharacterAlreadyPresent = errors.New("character is already part of the alphabet")

	// ErrReservedCharacterConflict is returned when the delimiter or the final marker collides with the alphabet.
	ErrReservedCharacterConflict = errors.New("reserved character conflicts with the alphabet")

	// ErrDelimiterIsFinalMarker is returned when the same character is used as delimiter and final marker.
	ErrDelimiterIsFinalMarker = errors.New("delimiter and final marker must differ")
)

// Parse errors.
var (
	ErrMissingDelimiter   = errors.New("no delimiter found")
	ErrMultipleDelimiters = errors.New("multiple delimiters found")
	ErrInvalidCharacter   = errors.New("invalid character")
	ErrEmptyDefinition    = errors.New("empty formula definition")
)

// ErrEmptyScheme is returned by the builder when no formula was accumulated.
var ErrEmptyScheme = errors.New("a scheme must contain at least one formula")

// Application errors.
var (
	ErrWordContainsInvalidCharacter   = errors.New("word contains characters outside the alphabet")
	ErrWordContainsExtensionCharacter = errors.New("word contains alphabet extension characters")
	ErrZeroStepLimit                  = errors.New("the algorithm should be allowed to do at least one step")
	ErrStepLimitExceeded              = errors.New("step limit exceeded")
	ErrStepLimitTooHigh               = errors.New("step limit is above the allowed maximum")
)

// DefaultMaxStepLimit bounds the step limits accepted from remote clients.
const DefaultMaxStepLimit = 1_000_000

// CheckStepLimit rejects limits a server is not willing to spend.
// A ceiling of zero or less disables the check.
func CheckStepLimit(limit, ceiling int) error {
	if ceiling > 0 && limit > ceiling {
		return fmt.Errorf("%d > %d: %w", limit, ceiling, ErrStepLimitTooHigh)
	}
	return nil
}

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when starting a session under an ID that is already stored.
var ErrSessionExists = errors.New("session already exists")

// FormulaError describes why a single formula definition was rejected.
type FormulaError struct {
	Line       int    // 1-based position in the definition list, 0 when unknown
	Definition string // Raw text of the formula
	Err        error  // One of the parse sentinels
	Detail     string // Offending characters or counts
}

func (e *FormulaError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	fmt.Fprintf(&b, "%s in formula %q", e.Err, e.Definition)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func (e *FormulaError) Unwrap() error { return e.Err }

// WordError reports the characters of an input word that the scheme cannot accept.
type WordError struct {
	Err        error
	Characters string
}

func (e *WordError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Characters)
}

func (e *WordError) Unwrap() error { return e.Err }

// StepLimitError is returned when the step limit policy treats an unfinished run as a failure.
type StepLimitError struct {
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("the application is not completed after reaching step %d", e.Limit)
}

func (e *StepLimitError) Unwrap() error { return ErrStepLimitExceeded }

// AggregateError represents multiple definition failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d definition errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// DefinitionErrors returns all collected errors if err is an AggregateError.
// Otherwise returns nil.
func DefinitionErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
