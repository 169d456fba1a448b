package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can keep a session locked.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates stepwise sessions, serialising every read-modify-write
// on the same session ID.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store  ports.SessionStore
	engine ports.Applier

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that steps sessions with engine and persists them in store.
func NewManager(store ports.SessionStore, engine ports.Applier, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		engine:  engine,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start validates word and stores a new session without stepping it.
func (m *Manager) Start(ctx context.Context, sessionID, word string, maxSteps int) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, sessionID)
		switch {
		case err == nil:
			return fmt.Errorf("%s: %w", sessionID, domain.ErrSessionExists)
		case !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		session, err = m.engine.Start(sessionID, word, maxSteps)
		if err != nil {
			return err
		}
		session.UpdatedAt = m.now()

		if err := m.store.Save(ctx, session); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("session started", "session_id", sessionID, "word", word, "limit", maxSteps)
	return session, nil
}

// Advance loads the session, performs one step and saves it.
// It reports whether a rewrite happened; a terminal session is returned unchanged.
func (m *Manager) Advance(ctx context.Context, sessionID string) (*domain.Session, bool, error) {
	var (
		session  *domain.Session
		advanced bool
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Outcome.IsTerminal() {
			return nil
		}

		var stepErr error
		advanced, stepErr = m.engine.Advance(ctx, session)
		var limitErr *domain.StepLimitError
		if stepErr != nil && !errors.As(stepErr, &limitErr) {
			return stepErr
		}

		session.UpdatedAt = m.now()
		if err := m.store.Save(ctx, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return stepErr
	})
	if err != nil && session == nil {
		return nil, false, err
	}
	return session, advanced, err
}

// Run advances the session until it reaches a terminal outcome.
func (m *Manager) Run(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.RunFunc(ctx, sessionID, nil)
}

// RunFunc is Run calling fn with every step as it is performed.
// Steps come from the engine, not from the stored history, so a store that
// trims history still reports all of them.
func (m *Manager) RunFunc(ctx context.Context, sessionID string, fn func(domain.Step)) (*domain.Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session, advanced, err := m.Advance(ctx, sessionID)
		if advanced && fn != nil && len(session.History) > 0 {
			fn(session.History[len(session.History)-1])
		}
		if err != nil {
			return session, err
		}
		if session.Outcome.IsTerminal() {
			return session, nil
		}
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Engine returns the engine sessions are stepped with.
func (m *Manager) Engine() ports.Applier {
	return m.engine
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
