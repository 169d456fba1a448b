package markov

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/markov/pkg/domain"
)

// Runner drives a stepwise application using the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer StepRenderer
}

// StepRenderer formats a single rewrite for display.
// This allows for coloured TUI output without coupling the core package.
type StepRenderer func(domain.Step) string

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// DefaultStepRenderer renders a step as plain text.
func DefaultStepRenderer(s domain.Step) string {
	return fmt.Sprintf("Transformed the word %q to the word %q by applying the substitution formula %q.",
		s.Before, s.Word, s.Formula)
}

type line struct {
	text string
	err  error
}

// Stepper is a stepwise application the Runner can drive. *Iterator
// implements it; so can adapters over persisted sessions.
type Stepper interface {
	Next() bool
	Step() domain.Step
	Outcome() domain.Outcome
	Result() domain.Result
}

// Run applies the engine's scheme to word, pausing after every step until the
// user presses ENTER. It stops early on EOF, "quit"/"exit" or context
// cancellation and returns the state reached so far.
func (r *Runner) Run(ctx context.Context, engine *Engine, word string, maxSteps int) (domain.Result, error) {
	it, err := engine.Iterate(ctx, word, maxSteps)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to apply the algorithm scheme to the input: %w", err)
	}
	res, err := r.Drive(ctx, it)
	if err == nil && res.Outcome == domain.OutcomeStepLimitReached && engine.policy == domain.LimitAsError {
		err = &domain.StepLimitError{Limit: maxSteps}
	}
	return res, err
}

// Drive prints every step of s, prompting between steps unless Headless is set.
// If s has an Err method, its error is returned once s stops.
func (r *Runner) Drive(ctx context.Context, s Stepper) (domain.Result, error) {
	if r.Input == nil && !r.Headless {
		return domain.Result{}, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	writer := r.Output
	if writer == nil {
		return domain.Result{}, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	render := r.Renderer
	if render == nil {
		render = DefaultStepRenderer
	}

	var lines <-chan line
	if !r.Headless {
		lines = readLines(ctx, r.Input)
	}

	for s.Next() {
		fmt.Fprintln(writer, render(s.Step()))

		if r.Headless || s.Outcome().IsTerminal() {
			continue
		}

		fmt.Fprint(writer, "Press ENTER to continue or type quit to exit. ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(writer, "\nStopping due to the received interrupt.")
			return s.Result(), ctx.Err()
		case l := <-lines:
			if l.err != nil {
				if l.err == io.EOF {
					return s.Result(), nil
				}
				return s.Result(), fmt.Errorf("input error: %w", l.err)
			}
			input := strings.TrimSpace(l.text)
			if input == "quit" || input == "exit" {
				fmt.Fprintln(writer, "Bye!")
				return s.Result(), nil
			}
		}
	}

	res := s.Result()
	if e, ok := s.(interface{ Err() error }); ok {
		if err := e.Err(); err != nil {
			var limitErr *domain.StepLimitError
			if errors.As(err, &limitErr) {
				WriteSummary(writer, res)
			}
			return res, err
		}
	}
	WriteSummary(writer, res)
	return res, nil
}

// WriteSummary prints the closing report of an application.
func WriteSummary(w io.Writer, res domain.Result) {
	if res.Outcome == domain.OutcomeHalted && res.Steps == 0 {
		fmt.Fprintln(w, "No transformation was made, no formulas were applied.")
	}
	fmt.Fprintf(w, "The algorithm is finished after taking %d steps (%s). The output string is %q.\n",
		res.Steps, res.Outcome, res.Word)
}

func readLines(ctx context.Context, in io.Reader) <-chan line {
	out := make(chan line, 1)
	go func() {
		reader := bufio.NewReader(in)
		for {
			text, err := reader.ReadString('\n')
			select {
			case out <- line{text: text, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
