package ports

import (
	"context"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// Applier is the slice of the engine that driving adapters (HTTP, MCP) depend on.
type Applier interface {
	// Scheme returns the scheme being applied.
	Scheme() *scheme.Scheme

	// Apply runs word to completion within maxSteps.
	Apply(ctx context.Context, word string, maxSteps int) (domain.Result, error)

	// Start validates word and creates a session without stepping.
	Start(sessionID, word string, maxSteps int) (*domain.Session, error)

	// Advance performs one step on a session, updating it in place.
	Advance(ctx context.Context, session *domain.Session) (bool, error)
}
