package runtime

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// Iterator applies a scheme to a word one step at a time.
//
// Each call to Next performs exactly one rewrite. The iterator is finite and
// not restartable; create a new one for every run. It owns its word and
// counter, so several iterators may share one Scheme concurrently.
type Iterator struct {
	scheme   *scheme.Scheme
	word     string
	steps    int
	maxSteps int
	outcome  domain.Outcome
	current  domain.Step

	ctx       context.Context
	sessionID string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	started   time.Time
}

// NewIterator validates word and prepares a session bounded by maxSteps.
func NewIterator(s *scheme.Scheme, word string, maxSteps int) (*Iterator, error) {
	if maxSteps <= 0 {
		return nil, domain.ErrZeroStepLimit
	}
	if err := s.ValidateWord(word); err != nil {
		return nil, err
	}
	return newIterator(s, word, 0, maxSteps), nil
}

// Resume continues a session that already performed some steps.
// Intermediate words may hold extension characters, so only membership in
// the full alphabet is checked.
func Resume(s *scheme.Scheme, session *domain.Session) (*Iterator, error) {
	if session.MaxSteps <= 0 {
		return nil, domain.ErrZeroStepLimit
	}
	for _, r := range session.Word {
		if !s.Alphabet().Contains(r) {
			return nil, &domain.WordError{Err: domain.ErrWordContainsInvalidCharacter, Characters: string(r)}
		}
	}

	it := newIterator(s, session.Word, session.Steps, session.MaxSteps)
	it.sessionID = session.ID
	if session.Outcome != "" {
		it.outcome = session.Outcome
	}
	if it.outcome == domain.OutcomeRunning && it.steps >= it.maxSteps {
		it.outcome = domain.OutcomeStepLimitReached
	}
	return it, nil
}

func newIterator(s *scheme.Scheme, word string, steps, maxSteps int) *Iterator {
	return &Iterator{
		scheme:   s,
		word:     word,
		steps:    steps,
		maxSteps: maxSteps,
		outcome:  domain.OutcomeRunning,
		ctx:      context.Background(),
		logger:   logging.NewNop(),
		started:  time.Now(),
	}
}

// Next performs one step and reports whether it produced a rewrite.
// It returns false once the session is terminal; the terminating rewrite
// itself is still reported as a value.
func (it *Iterator) Next() bool {
	if it.outcome != domain.OutcomeRunning {
		return false
	}

	r := Step(it.scheme, it.word)
	if !r.Applied {
		it.outcome = domain.OutcomeHalted
		it.logger.Debug("no formula applies", "word", it.word, "steps", it.steps)
		it.finish()
		return false
	}

	before := it.word
	it.word = r.Word
	it.steps++

	switch {
	case r.Final:
		it.outcome = domain.OutcomeTerminated
	case it.steps >= it.maxSteps:
		it.outcome = domain.OutcomeStepLimitReached
	}

	f := it.scheme.Formula(r.FormulaIndex)
	it.current = domain.Step{
		Number:       it.steps,
		FormulaIndex: r.FormulaIndex,
		Formula:      f.Format(it.scheme.Syntax()),
		Position:     r.Position,
		Replacement:  f.Replacement,
		Before:       before,
		Word:         it.word,
		Outcome:      it.outcome,
	}

	it.logger.Debug("formula applied",
		"step", it.steps,
		"formula", it.current.Formula,
		"before", before,
		"after", it.word,
	)
	if it.hooks.OnStep != nil {
		it.hooks.OnStep(it.ctx, &domain.StepEvent{
			EventBase: it.event(domain.EventStep),
			Step:      it.current,
		})
	}

	if it.outcome != domain.OutcomeRunning {
		it.finish()
	}
	return true
}

func (it *Iterator) finish() {
	if it.hooks.OnFinish != nil {
		it.hooks.OnFinish(it.ctx, &domain.FinishEvent{
			EventBase: it.event(domain.EventFinish),
			Result:    it.Result(),
			Duration:  time.Since(it.started),
		})
	}
}

func (it *Iterator) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: it.sessionID}
}

// Step returns the rewrite produced by the last successful Next.
func (it *Iterator) Step() domain.Step { return it.current }

// Word returns the current word.
func (it *Iterator) Word() string { return it.word }

// Steps returns the number of rewrites performed so far.
func (it *Iterator) Steps() int { return it.steps }

// Outcome returns the session status.
func (it *Iterator) Outcome() domain.Outcome { return it.outcome }

// Result returns the current word, step count and outcome.
func (it *Iterator) Result() domain.Result {
	return domain.Result{Word: it.word, Steps: it.steps, Outcome: it.outcome}
}

// All adapts the iterator to a range-over-func sequence.
// Breaking out of the loop leaves the iterator where it stopped.
func (it *Iterator) All() iter.Seq[domain.Step] {
	return func(yield func(domain.Step) bool) {
		for it.Next() {
			if !yield(it.current) {
				return
			}
		}
	}
}

// Run applies s to word until it terminates, halts or spends maxSteps.
func Run(s *scheme.Scheme, word string, maxSteps int, policy domain.StepLimitPolicy) (domain.Result, error) {
	it, err := NewIterator(s, word, maxSteps)
	if err != nil {
		return domain.Result{}, err
	}
	return drain(it, policy)
}

// drain steps it to a terminal outcome. A cancelled context stops it between
// steps with the word reached so far.
func drain(it *Iterator, policy domain.StepLimitPolicy) (domain.Result, error) {
	for it.outcome == domain.OutcomeRunning {
		if err := it.ctx.Err(); err != nil {
			it.logger.Warn("application cancelled", "steps", it.steps, "err", err)
			return it.Result(), err
		}
		it.Next()
	}

	res := it.Result()
	if res.Outcome == domain.OutcomeStepLimitReached && policy == domain.LimitAsError {
		return res, &domain.StepLimitError{Limit: it.maxSteps}
	}
	return res, nil
}
