package runtime

import (
	"context"
	"log/slog"
	"math"

	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// Engine binds a scheme to its observability and step limit policy.
type Engine struct {
	scheme *scheme.Scheme
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	policy domain.StepLimitPolicy
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStepLimitPolicy decides whether spending the step budget is an error.
func WithStepLimitPolicy(p domain.StepLimitPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// NewEngine creates a new engine for s.
func NewEngine(s *scheme.Scheme, opts ...EngineOption) *Engine {
	e := &Engine{
		scheme: s,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scheme returns the scheme the engine applies.
func (e *Engine) Scheme() *scheme.Scheme { return e.scheme }

// Iterate starts an observed stepwise session.
func (e *Engine) Iterate(ctx context.Context, word string, maxSteps int) (*Iterator, error) {
	it, err := NewIterator(e.scheme, word, maxSteps)
	if err != nil {
		return nil, err
	}
	e.observe(ctx, it)
	return it, nil
}

// Apply runs word to completion.
func (e *Engine) Apply(ctx context.Context, word string, maxSteps int) (domain.Result, error) {
	it, err := e.Iterate(ctx, word, maxSteps)
	if err != nil {
		return domain.Result{}, err
	}

	res, err := drain(it, e.policy)
	e.logger.Info("application finished",
		"steps", res.Steps,
		"outcome", res.Outcome,
		"limit", maxSteps,
	)
	return res, err
}

// ApplyOnce performs a single step without a step budget.
// The returned outcome is Running, Terminated or Halted. The step is logged
// and reported to the hooks like any other.
func (e *Engine) ApplyOnce(ctx context.Context, word string) (StepResult, domain.Outcome, error) {
	it, err := e.Iterate(ctx, word, math.MaxInt)
	if err != nil {
		return StepResult{}, "", err
	}
	if !it.Next() {
		return StepResult{Word: word}, it.Outcome(), nil
	}

	step := it.Step()
	return StepResult{
		Applied:      true,
		FormulaIndex: step.FormulaIndex,
		Position:     step.Position,
		Final:        e.scheme.Formula(step.FormulaIndex).Final,
		Word:         step.Word,
	}, it.Outcome(), nil
}

// Advance performs one step on a persisted session and updates it in place.
// It reports whether a rewrite happened.
func (e *Engine) Advance(ctx context.Context, session *domain.Session) (bool, error) {
	it, err := Resume(e.scheme, session)
	if err != nil {
		return false, err
	}
	e.observe(ctx, it)

	advanced := it.Next()
	if advanced {
		session.History = append(session.History, it.Step())
	}
	session.Word = it.Word()
	session.Steps = it.Steps()
	session.Outcome = it.Outcome()

	if session.Outcome == domain.OutcomeStepLimitReached && e.policy == domain.LimitAsError {
		return advanced, &domain.StepLimitError{Limit: session.MaxSteps}
	}
	return advanced, nil
}

func (e *Engine) observe(ctx context.Context, it *Iterator) {
	if ctx != nil {
		it.ctx = ctx
	}
	it.hooks = e.hooks
	it.logger = e.logger
}
