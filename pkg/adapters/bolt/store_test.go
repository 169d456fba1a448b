package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/markov/pkg/adapters/bolt"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SessionStore = (*bolt.Store)(nil)

func TestBoltStore_Contract(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunSessionStoreContract(t, store)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := bolt.Open(path)
	require.NoError(t, err)
	session := domain.NewSession("persisted", "aaabc", 10)
	session.Word = "4cccc"
	session.Steps = 8
	session.Outcome = domain.OutcomeTerminated
	require.NoError(t, store.Save(ctx, session))
	require.NoError(t, store.Close())

	store, err = bolt.Open(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "4cccc", loaded.Word)
	assert.Equal(t, domain.OutcomeTerminated, loaded.Outcome)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, ids)
}
