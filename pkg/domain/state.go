package domain

import "time"

// Outcome is the status of a rewrite session.
type Outcome string

const (
	OutcomeRunning          Outcome = "running"            // More steps may follow
	OutcomeTerminated       Outcome = "terminated"         // A final formula fired
	OutcomeHalted           Outcome = "halted"             // No formula matched
	OutcomeStepLimitReached Outcome = "step_limit_reached" // Budget spent while still running
)

// IsTerminal reports whether no further step can change the word.
func (o Outcome) IsTerminal() bool {
	return o != OutcomeRunning && o != ""
}

// StepLimitPolicy decides how a run that spends its budget is reported.
type StepLimitPolicy int

const (
	// LimitAsOutcome reports OutcomeStepLimitReached as a regular result.
	LimitAsOutcome StepLimitPolicy = iota
	// LimitAsError additionally returns a *StepLimitError.
	LimitAsError
)

// Step describes one successful rewrite.
type Step struct {
	// Number is the 1-based index of the step within its session.
	Number int `json:"number"`
	// FormulaIndex is the position of the applied formula in the scheme.
	FormulaIndex int `json:"formula_index"`
	// Formula is the applied formula's definition.
	Formula string `json:"formula"`
	// Position is the rune offset of the rewritten occurrence.
	Position int `json:"position"`
	// Replacement is what was written at Position.
	Replacement string  `json:"replacement"`
	Before      string  `json:"before"`
	Word        string  `json:"word"`
	Outcome     Outcome `json:"outcome"`
}

// Result is what a full application returns.
type Result struct {
	Word    string  `json:"word"`
	Steps   int     `json:"steps"`
	Outcome Outcome `json:"outcome"`
}

// Session is a stepwise application persisted between calls.
type Session struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Word      string    `json:"word"`
	Steps     int       `json:"steps"`
	MaxSteps  int       `json:"max_steps"`
	Outcome   Outcome   `json:"outcome"`
	History   []Step    `json:"history,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted session when the store encrypts at rest.
	// Only the fields needed for listing stay in clear text.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates a running session for word.
func NewSession(id, word string, maxSteps int) *Session {
	return &Session{
		ID:        id,
		Input:     word,
		Word:      word,
		MaxSteps:  maxSteps,
		Outcome:   OutcomeRunning,
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy, so stores never share history slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.History != nil {
		c.History = make([]Step, len(s.History))
		copy(c.History, s.History)
	}
	if s.Sealed != nil {
		c.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &c
}

// Result projects the session onto a Result.
func (s *Session) Result() Result {
	return Result{Word: s.Word, Steps: s.Steps, Outcome: s.Outcome}
}
