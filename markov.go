package markov

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/internal/runtime"
	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// Iterator is a stepwise application of a scheme to one word.
type Iterator = runtime.Iterator

// StepResult is the outcome of a single rewrite attempt.
type StepResult = runtime.StepResult

// Engine is the high-level entry point for the library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	scheme  *scheme.Scheme
	config  config.Config
	hooks   domain.LifecycleHooks
	policy  domain.StepLimitPolicy
	logger  *slog.Logger
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig sets the alphabet and syntax used to parse the definition passed to New.
// It has no effect on FromScheme.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStepLimitPolicy decides whether reaching the step limit is reported as an error.
// The default reports it as the StepLimitReached outcome.
func WithStepLimitPolicy(p domain.StepLimitPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithName labels the engine (and its log records), usually after the scheme file.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New parses definition (one formula per line) and returns an engine for it.
func New(definition string, opts ...Option) (*Engine, error) {
	eng := &Engine{config: config.Default()}
	for _, opt := range opts {
		opt(eng)
	}

	builder, err := eng.config.Builder()
	if err != nil {
		return nil, err
	}
	s, err := builder.AddText(definition).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create the algorithm scheme: %w", err)
	}

	eng.scheme = s
	eng.init()
	return eng, nil
}

// FromScheme wraps an already built scheme.
func FromScheme(s *scheme.Scheme, opts ...Option) *Engine {
	eng := &Engine{scheme: s}
	for _, opt := range opts {
		opt(eng)
	}
	eng.init()
	return eng
}

func (e *Engine) init() {
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("scheme", e.Name)
	}

	e.runtime = runtime.NewEngine(e.scheme,
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
		runtime.WithStepLimitPolicy(e.policy),
	)
}

// Scheme returns the scheme the engine applies.
func (e *Engine) Scheme() *scheme.Scheme {
	return e.scheme
}

// Apply rewrites word until a final formula fires, no formula applies or
// maxSteps rewrites were done.
func (e *Engine) Apply(ctx context.Context, word string, maxSteps int) (domain.Result, error) {
	return e.runtime.Apply(ctx, word, maxSteps)
}

// ApplyOnce performs a single step on word.
func (e *Engine) ApplyOnce(ctx context.Context, word string) (StepResult, domain.Outcome, error) {
	return e.runtime.ApplyOnce(ctx, word)
}

// Iterate returns a lazy stepwise application bounded by maxSteps.
func (e *Engine) Iterate(ctx context.Context, word string, maxSteps int) (*Iterator, error) {
	return e.runtime.Iterate(ctx, word, maxSteps)
}

// Start creates a persisted session for word without performing any step.
func (e *Engine) Start(sessionID, word string, maxSteps int) (*domain.Session, error) {
	if maxSteps <= 0 {
		return nil, domain.ErrZeroStepLimit
	}
	if err := e.scheme.ValidateWord(word); err != nil {
		return nil, err
	}
	return domain.NewSession(sessionID, word, maxSteps), nil
}

// Advance performs one step on a persisted session, updating it in place.
func (e *Engine) Advance(ctx context.Context, session *domain.Session) (bool, error) {
	return e.runtime.Advance(ctx, session)
}
