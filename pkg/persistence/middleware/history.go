package middleware

import (
	"context"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
)

type historyLimitMiddleware struct {
	next  ports.SessionStore
	limit int
}

// NewHistoryLimitMiddleware keeps only the last limit steps of every saved
// session. Step numbers are preserved, so a trimmed history still tells how far
// the run went. A limit of zero or less disables trimming.
func NewHistoryLimitMiddleware(limit int) Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		if limit <= 0 {
			return next
		}
		return &historyLimitMiddleware{next: next, limit: limit}
	}
}

func (m *historyLimitMiddleware) Save(ctx context.Context, session *domain.Session) error {
	if len(session.History) <= m.limit {
		return m.next.Save(ctx, session)
	}

	// Copy so the caller's session keeps its full history.
	trimmed := *session
	trimmed.History = make([]domain.Step, m.limit)
	copy(trimmed.History, session.History[len(session.History)-m.limit:])
	return m.next.Save(ctx, &trimmed)
}

func (m *historyLimitMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *historyLimitMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *historyLimitMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
