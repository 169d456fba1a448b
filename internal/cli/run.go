package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/internal/presentation/graph"
	"github.com/aretw0/markov/internal/presentation/tui"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/observability"
	"github.com/aretw0/markov/pkg/session"
	"github.com/muesli/termenv"
)

// RunOptions configures a single invocation of the run command.
type RunOptions struct {
	Scheme *SchemeFlags
	Input  string

	// Limit is the step budget. Zero is only accepted in interactive mode.
	Limit       int
	Interactive bool
	// Trace prints every rewrite without pausing.
	Trace bool
	// Quiet prints only the resulting word.
	Quiet bool
	// StrictLimit reports a run that spent its budget as an error.
	StrictLimit bool
	// Mermaid appends a flowchart of the run.
	Mermaid bool
	// Color enables terminal colours in step lines.
	Color bool

	// SessionID persists the run in StoreDSN so it can be resumed.
	SessionID string
	StoreDSN  string
	Store     StoreOptions

	Debug bool

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (o *RunOptions) validate() error {
	if o.Quiet && (o.Interactive || o.Trace) {
		return fmt.Errorf("--quiet cannot be combined with --interactive or --trace")
	}
	if o.Limit < 0 {
		return domain.ErrZeroStepLimit
	}
	if o.Limit == 0 && !o.Interactive {
		return fmt.Errorf("a step limit is required (--limit) unless --interactive is set")
	}
	return nil
}

func (o *RunOptions) limit() int {
	if o.Limit == 0 {
		return math.MaxInt
	}
	return o.Limit
}

// Run applies the scheme selected by opts.Scheme to opts.Input.
func Run(ctx context.Context, opts RunOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}

	logger := logging.NewWithWriter(opts.Err, logging.LevelFor(opts.Debug), false)
	recorder := &observability.Recorder{}
	hooks := recorder.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}

	policy := domain.LimitAsOutcome
	if opts.StrictLimit {
		policy = domain.LimitAsError
	}

	eng, _, err := opts.Scheme.Engine(ctx,
		markov.WithLogger(logger),
		markov.WithLifecycleHooks(hooks),
		markov.WithStepLimitPolicy(policy),
	)
	if err != nil {
		return err
	}

	profile := termenv.Ascii
	if opts.Color {
		profile = termenv.ColorProfile()
	}
	runner := &markov.Runner{
		Input:    opts.In,
		Output:   opts.Out,
		Headless: !opts.Interactive,
		Renderer: tui.NewStepRendererWithProfile(profile).Render,
	}

	if opts.SessionID != "" {
		return runSession(ctx, opts, eng, runner, logger)
	}

	var res domain.Result
	switch {
	case opts.Interactive || opts.Trace:
		res, err = runner.Run(ctx, eng, opts.Input, opts.limit())
	default:
		res, err = eng.Apply(ctx, opts.Input, opts.limit())
		var limitErr *domain.StepLimitError
		if err != nil && !errors.As(err, &limitErr) {
			return err
		}
		if opts.Quiet {
			fmt.Fprintln(opts.Out, res.Word)
		} else {
			markov.WriteSummary(opts.Out, res)
		}
	}

	if opts.Mermaid && res.Outcome != "" {
		fmt.Fprint(opts.Out, graph.GenerateMermaid(opts.Input, recorder.Steps(), res.Outcome))
	}
	return err
}

func runSession(ctx context.Context, opts RunOptions, eng *markov.Engine, runner *markov.Runner, logger *slog.Logger) error {
	store, err := OpenStore(opts.StoreDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Use(opts.Store); err != nil {
		return err
	}

	managerOpts := []session.Option{session.WithLogger(logger)}
	if store.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(store.Locker))
	}
	manager := session.NewManager(store, eng, managerOpts...)

	current, err := manager.Load(ctx, opts.SessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		current, err = manager.Start(ctx, opts.SessionID, opts.Input, opts.limit())
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		logger.Info("resuming session", "session_id", current.ID, "steps", current.Steps, "outcome", current.Outcome)
	}

	if opts.Interactive || opts.Trace {
		stepper := &sessionStepper{ctx: ctx, manager: manager, session: current}
		_, err = runner.Drive(ctx, stepper)
		current = stepper.session
	} else {
		var final *domain.Session
		final, err = manager.Run(ctx, opts.SessionID)
		var limitErr *domain.StepLimitError
		if err != nil && !errors.As(err, &limitErr) {
			return err
		}
		current = final
		if opts.Quiet {
			fmt.Fprintln(opts.Out, current.Word)
		} else {
			markov.WriteSummary(opts.Out, current.Result())
		}
	}

	if opts.Mermaid {
		fmt.Fprint(opts.Out, graph.GenerateMermaid(current.Input, current.History, current.Outcome))
	}
	return err
}

// sessionStepper drives a persisted session one saved step at a time.
type sessionStepper struct {
	ctx     context.Context
	manager *session.Manager
	session *domain.Session
	err     error
}

func (s *sessionStepper) Next() bool {
	if s.err != nil || s.session.Outcome.IsTerminal() {
		return false
	}

	updated, advanced, err := s.manager.Advance(s.ctx, s.session.ID)
	if updated != nil {
		s.session = updated
	}
	if err != nil {
		s.err = err
		var limitErr *domain.StepLimitError
		return advanced && errors.As(err, &limitErr)
	}
	return advanced
}

func (s *sessionStepper) Step() domain.Step {
	if len(s.session.History) == 0 {
		return domain.Step{}
	}
	return s.session.History[len(s.session.History)-1]
}

func (s *sessionStepper) Outcome() domain.Outcome { return s.session.Outcome }

func (s *sessionStepper) Result() domain.Result { return s.session.Result() }

func (s *sessionStepper) Err() error { return s.err }
