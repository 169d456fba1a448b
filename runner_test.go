package markov_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Interactive(t *testing.T) {
	eng, err := markov.New("a→b\nb→c\nc→⋅4")
	require.NoError(t, err)

	var out bytes.Buffer
	runner := markov.NewRunner()
	runner.Input = strings.NewReader("\n\n\n")
	runner.Output = &out

	res, err := runner.Run(context.Background(), eng, "ab", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.Result{Word: "4c", Steps: 4, Outcome: domain.OutcomeTerminated}, res)

	got := out.String()
	assert.Contains(t, got, `Transformed the word "ab" to the word "bb" by applying the substitution formula "a→b".`)
	assert.Contains(t, got, `Transformed the word "cc" to the word "4c" by applying the substitution formula "c→⋅4".`)
	assert.Equal(t, 3, strings.Count(got, "Press ENTER"))
	assert.Contains(t, got, `The algorithm is finished after taking 4 steps (terminated). The output string is "4c".`)
}

func TestRunner_Quit(t *testing.T) {
	eng, err := markov.New("a→aa")
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &markov.Runner{Input: strings.NewReader("\nquit\n"), Output: &out}

	res, err := runner.Run(context.Background(), eng, "a", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, domain.OutcomeRunning, res.Outcome)
	assert.Contains(t, out.String(), "Bye!")
	assert.NotContains(t, out.String(), "The algorithm is finished")
}

func TestRunner_EOF(t *testing.T) {
	eng, err := markov.New("a→aa")
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &markov.Runner{Input: strings.NewReader(""), Output: &out}

	res, err := runner.Run(context.Background(), eng, "a", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Steps)
}

func TestRunner_Headless(t *testing.T) {
	eng, err := markov.New("a→aa")
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &markov.Runner{
		Output:   &out,
		Headless: true,
		Renderer: func(s domain.Step) string { return s.Word },
	}

	res, err := runner.Run(context.Background(), eng, "a", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStepLimitReached, res.Outcome)
	assert.Equal(t, "aa\naaa\naaaa\nThe algorithm is finished after taking 3 steps (step_limit_reached). The output string is \"aaaa\".\n", out.String())
}

func TestRunner_NoTransformation(t *testing.T) {
	eng, err := markov.New("x→y")
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &markov.Runner{Output: &out, Headless: true}

	res, err := runner.Run(context.Background(), eng, "abc", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeHalted, res.Outcome)
	assert.Contains(t, out.String(), "No transformation was made, no formulas were applied.")
}

func TestRunner_StepLimitAsError(t *testing.T) {
	eng, err := markov.New("a→aa", markov.WithStepLimitPolicy(domain.LimitAsError))
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &markov.Runner{Output: &out, Headless: true}

	_, err = runner.Run(context.Background(), eng, "a", 2)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Contains(t, out.String(), "The algorithm is finished after taking 2 steps")
}

func TestRunner_Cancelled(t *testing.T) {
	eng, err := markov.New("a→aa")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	// A reader that never delivers a line leaves only the context to stop the loop.
	runner := &markov.Runner{Input: blockingReader{}, Output: &out}

	res, err := runner.Run(ctx, eng, "a", 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Steps)
	assert.Contains(t, out.String(), "Stopping due to the received interrupt.")
}

func TestRunner_RequiresIO(t *testing.T) {
	eng, err := markov.New("a→b")
	require.NoError(t, err)

	_, err = (&markov.Runner{Output: &bytes.Buffer{}}).Run(context.Background(), eng, "a", 1)
	assert.Error(t, err)

	_, err = (&markov.Runner{Headless: true}).Run(context.Background(), eng, "a", 1)
	assert.Error(t, err)
}

// fakeStepper replays prepared steps and then fails.
type fakeStepper struct {
	steps []domain.Step
	i     int
	err   error
}

func (f *fakeStepper) Next() bool {
	if f.i >= len(f.steps) {
		return false
	}
	f.i++
	return true
}

func (f *fakeStepper) Step() domain.Step { return f.steps[f.i-1] }

func (f *fakeStepper) Outcome() domain.Outcome {
	if f.i == 0 {
		return domain.OutcomeRunning
	}
	return f.steps[f.i-1].Outcome
}

func (f *fakeStepper) Result() domain.Result {
	s := f.steps[f.i-1]
	return domain.Result{Word: s.Word, Steps: s.Number, Outcome: s.Outcome}
}

func (f *fakeStepper) Err() error { return f.err }

func TestRunner_DriveReportsStepperError(t *testing.T) {
	boom := assert.AnError
	s := &fakeStepper{
		steps: []domain.Step{{Number: 1, Word: "b", Outcome: domain.OutcomeRunning}},
		err:   boom,
	}

	var out bytes.Buffer
	runner := &markov.Runner{Output: &out, Headless: true, Renderer: func(s domain.Step) string { return s.Word }}

	res, err := runner.Drive(context.Background(), s)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "b", res.Word)
	assert.Equal(t, "b\n", out.String())
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
