package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/markov/internal/runtime"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, lines ...string) *scheme.Scheme {
	t.Helper()
	s, err := scheme.NewBuilder().AddDefinitions(lines...).Build()
	require.NoError(t, err)
	return s
}

func TestStep_PriorityBeatsPosition(t *testing.T) {
	// "b" occurs earlier in the word, but "c→x" has the higher priority.
	s := build(t, "c→x", "b→y")

	r := runtime.Step(s, "bbc")
	assert.True(t, r.Applied)
	assert.Equal(t, 0, r.FormulaIndex)
	assert.Equal(t, 2, r.Position)
	assert.Equal(t, "bbx", r.Word)
}

func TestStep_LeftmostOccurrence(t *testing.T) {
	s := build(t, "ab→c")

	r := runtime.Step(s, "aabab")
	assert.Equal(t, 1, r.Position)
	assert.Equal(t, "acab", r.Word)
}

func TestStep_EmptyPattern(t *testing.T) {
	s := build(t, "→|")

	r := runtime.Step(s, "ab")
	assert.True(t, r.Applied)
	assert.Equal(t, 0, r.Position)
	assert.Equal(t, "|ab", r.Word)

	r = runtime.Step(s, "")
	assert.Equal(t, "|", r.Word)
}

func TestStep_NoMatch(t *testing.T) {
	s := build(t, "x→y")

	r := runtime.Step(s, "abc")
	assert.False(t, r.Applied)
	assert.Equal(t, "abc", r.Word)
}

func TestStep_RunePosition(t *testing.T) {
	s, err := scheme.NewBuilder().
		WithAlphabet(domain.MustAlphabet("äöb")).
		AddDefinition("b→ö").
		Build()
	require.NoError(t, err)

	r := runtime.Step(s, "ääb")
	assert.Equal(t, 2, r.Position)
	assert.Equal(t, "ääö", r.Word)
}

func TestRun_Outcomes(t *testing.T) {
	res, err := runtime.Run(build(t, "a→b", "b→c", "c→⋅4"), "aaabc", 10, domain.LimitAsOutcome)
	require.NoError(t, err)
	assert.Equal(t, domain.Result{Word: "4cccc", Steps: 8, Outcome: domain.OutcomeTerminated}, res)

	res, err = runtime.Run(build(t, "x→y"), "abc", 5, domain.LimitAsOutcome)
	require.NoError(t, err)
	assert.Equal(t, domain.Result{Word: "abc", Steps: 0, Outcome: domain.OutcomeHalted}, res)

	res, err = runtime.Run(build(t, "a→aa"), "a", 3, domain.LimitAsOutcome)
	require.NoError(t, err)
	assert.Equal(t, domain.Result{Word: "aaaa", Steps: 3, Outcome: domain.OutcomeStepLimitReached}, res)

	res, err = runtime.Run(build(t, "a→aa"), "a", 3, domain.LimitAsError)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, "aaaa", res.Word)

	_, err = runtime.Run(build(t, "a→aa"), "a", 0, domain.LimitAsOutcome)
	assert.ErrorIs(t, err, domain.ErrZeroStepLimit)
}

func TestRun_Deterministic(t *testing.T) {
	s := build(t, "ba→ab", "a→⋅")

	first, err := runtime.Run(s, "bbaba", 100, domain.LimitAsOutcome)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := runtime.Run(s, "bbaba", 100, domain.LimitAsOutcome)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestIterator_EarlyBreak(t *testing.T) {
	it, err := runtime.NewIterator(build(t, "a→aa"), "a", 10)
	require.NoError(t, err)

	n := 0
	for range it.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, it.Steps())
	assert.Equal(t, domain.OutcomeRunning, it.Outcome())

	require.True(t, it.Next())
	assert.Equal(t, "aaaa", it.Word())
	assert.Equal(t, 3, it.Step().Number)
}

func TestIterator_StepDetails(t *testing.T) {
	it, err := runtime.NewIterator(build(t, "b→⋅cc"), "abb", 5)
	require.NoError(t, err)

	require.True(t, it.Next())
	step := it.Step()
	assert.Equal(t, domain.Step{
		Number:       1,
		FormulaIndex: 0,
		Formula:      "b→⋅cc",
		Position:     1,
		Replacement:  "cc",
		Before:       "abb",
		Word:         "accb",
		Outcome:      domain.OutcomeTerminated,
	}, step)
	assert.False(t, it.Next())
}

func TestEngine_Hooks(t *testing.T) {
	var (
		steps    []domain.Step
		finished []domain.Result
	)
	hooks := domain.LifecycleHooks{
		OnStep:   func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Step) },
		OnFinish: func(_ context.Context, e *domain.FinishEvent) { finished = append(finished, e.Result) },
	}
	eng := runtime.NewEngine(build(t, "a→b"), runtime.WithLifecycleHooks(hooks))

	res, err := eng.Apply(context.Background(), "aa", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeHalted, res.Outcome)
	assert.Len(t, steps, 2)
	require.Len(t, finished, 1)
	assert.Equal(t, res, finished[0])
}

func TestEngine_Advance(t *testing.T) {
	eng := runtime.NewEngine(build(t, "a→b", "b→⋅c"), runtime.WithStepLimitPolicy(domain.LimitAsError))
	ctx := context.Background()

	session := domain.NewSession("s", "aa", 2)
	advanced, err := eng.Advance(ctx, session)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, "ba", session.Word)

	advanced, err = eng.Advance(ctx, session)
	assert.True(t, advanced)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, "bb", session.Word)
	assert.Equal(t, domain.OutcomeStepLimitReached, session.Outcome)
	assert.Len(t, session.History, 2)
}

func TestResume_AcceptsExtensionCharacters(t *testing.T) {
	s, err := scheme.NewBuilder().
		WithAlphabet(domain.MustAlphabet("ab")).
		WithExtension('*').
		AddDefinitions("*a→b*", "*→⋅", "→*").
		Build()
	require.NoError(t, err)

	session := &domain.Session{ID: "s", Word: "*aa", Steps: 1, MaxSteps: 10, Outcome: domain.OutcomeRunning}
	it, err := runtime.Resume(s, session)
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Equal(t, "b*a", it.Word())
	assert.Equal(t, 2, it.Steps())

	_, err = runtime.Resume(s, &domain.Session{Word: "x", MaxSteps: 1})
	assert.ErrorIs(t, err, domain.ErrWordContainsInvalidCharacter)

	it, err = runtime.Resume(s, &domain.Session{Word: "a", Steps: 3, MaxSteps: 3, Outcome: domain.OutcomeRunning})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStepLimitReached, it.Outcome())
	assert.False(t, it.Next())
}

func TestScheme_SharedAcrossGoroutines(t *testing.T) {
	s := build(t, "a→b", "b→c", "c→⋅4")

	var wg sync.WaitGroup
	results := make([]domain.Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := runtime.Run(s, "aaabc", 10, domain.LimitAsOutcome)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, "4cccc", res.Word)
	}
}

func TestEngine_ApplyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hooks := domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			if e.Step.Number == 3 {
				cancel()
			}
		},
	}
	eng := runtime.NewEngine(build(t, "a→aa"), runtime.WithLifecycleHooks(hooks))

	res, err := eng.Apply(ctx, "a", 2_000_000_000)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, "aaaa", res.Word)
	assert.Equal(t, domain.OutcomeRunning, res.Outcome)
}

func TestEngine_ApplyOnceFiresHooks(t *testing.T) {
	var steps []domain.Step
	hooks := domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Step) },
	}
	eng := runtime.NewEngine(build(t, "a→b", "b→⋅c"), runtime.WithLifecycleHooks(hooks))

	r, outcome, err := eng.ApplyOnce(context.Background(), "bab")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRunning, outcome)
	assert.Equal(t, runtime.StepResult{Applied: true, FormulaIndex: 0, Position: 1, Word: "bbb"}, r)

	r, outcome, err = eng.ApplyOnce(context.Background(), "bbb")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTerminated, outcome)
	assert.True(t, r.Final)

	require.Len(t, steps, 2)
	assert.Equal(t, "bab", steps[0].Before)
	assert.Equal(t, "cbb", steps[1].Word)
}
