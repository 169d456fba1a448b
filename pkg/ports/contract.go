package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, "aaabc", 10)
		session.Word = "baabc"
		session.Steps = 1
		session.History = []domain.Step{{
			Number:  1,
			Formula: "a→b",
			Before:  "aaabc",
			Word:    "baabc",
			Outcome: domain.OutcomeRunning,
		}}

		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "aaabc", loaded.Input)
		assert.Equal(t, "baabc", loaded.Word)
		assert.Equal(t, 1, loaded.Steps)
		assert.Equal(t, 10, loaded.MaxSteps)
		assert.Equal(t, domain.OutcomeRunning, loaded.Outcome)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "a→b", loaded.History[0].Formula)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Word = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Word, "Mutating a loaded session must not change the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "a", 1)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, "a", 1)))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, "b", 1)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("IDs Are Opaque", func(t *testing.T) {
		ids := []string{"index", "lock:" + sessionID, "session:" + sessionID, "tmp-" + sessionID}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, domain.NewSession(id, "a", 1)), "Save %q", id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		for _, id := range ids {
			loaded, err := store.Load(ctx, id)
			require.NoError(t, err, "Load %q", id)
			assert.Equal(t, id, loaded.ID)
		}

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, sessions, id)
		}
	})
}
