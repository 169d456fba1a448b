package observability

import (
	"context"
	"sync"

	"github.com/aretw0/markov/pkg/domain"
)

// Recorder keeps the trace of the runs it observes.
type Recorder struct {
	mu     sync.Mutex
	steps  []domain.Step
	result *domain.Result
}

// Hooks returns hooks that append to the recorder.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.steps = append(r.steps, e.Step)
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			res := e.Result
			r.result = &res
		},
	}
}

// Steps returns a copy of the recorded rewrites.
func (r *Recorder) Steps() []domain.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Result returns the last finished run, if any.
func (r *Recorder) Result() (domain.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return domain.Result{}, false
	}
	return *r.result, true
}

// Reset clears the trace.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
	r.result = nil
}
