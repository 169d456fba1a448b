package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/markov/pkg/adapters/memory"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_SaveCopiesHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	session := domain.NewSession("s1", "a", 3)
	session.History = []domain.Step{{Number: 1, Word: "b"}}
	require.NoError(t, store.Save(ctx, session))

	session.History[0].Word = "changed"

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.History[0].Word)
}
