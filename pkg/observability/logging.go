package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/markov/pkg/domain"
)

// LoggingHooks writes an audit record for every rewrite and every finished run.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "rewrite",
				"session_id", e.SessionID,
				"step", e.Step.Number,
				"formula", e.Step.Formula,
				"position", e.Step.Position,
				"word", e.Step.Word,
			)
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			logger.InfoContext(ctx, "run finished",
				"session_id", e.SessionID,
				"outcome", e.Result.Outcome,
				"steps", e.Result.Steps,
				"duration", e.Duration,
			)
		},
	}
}
