package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep   EventType = "step"
	EventFinish EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// StepEvent is emitted after every successful rewrite.
type StepEvent struct {
	EventBase
	Step Step `json:"step"`
}

// FinishEvent is emitted once a session reaches a terminal outcome.
type FinishEvent struct {
	EventBase
	Result   Result        `json:"result"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStep   func(context.Context, *StepEvent)
	OnFinish func(context.Context, *FinishEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep: func(ctx context.Context, e *StepEvent) {
			if h.OnStep != nil {
				h.OnStep(ctx, e)
			}
			if other.OnStep != nil {
				other.OnStep(ctx, e)
			}
		},
		OnFinish: func(ctx context.Context, e *FinishEvent) {
			if h.OnFinish != nil {
				h.OnFinish(ctx, e)
			}
			if other.OnFinish != nil {
				other.OnFinish(ctx, e)
			}
		},
	}
}
