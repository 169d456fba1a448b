package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/markov/pkg/adapters/memory"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/persistence/middleware"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealed(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func sampleSession() *domain.Session {
	s := domain.NewSession("secret-session", "aaabc", 10)
	s.Word = "baabc"
	s.Steps = 1
	s.History = []domain.Step{{Number: 1, Formula: "a→b", Before: "aaabc", Word: "baabc"}}
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, sealed(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()
	original := sampleSession()

	require.NoError(t, store.Save(ctx, original))

	raw, err := underlying.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Empty(t, raw.Word)
	assert.Empty(t, raw.Input)
	assert.Empty(t, raw.History)
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, original.Outcome, raw.Outcome)
	assert.Equal(t, 1, raw.Steps)

	loaded, err := store.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "baabc", loaded.Word)
	assert.Equal(t, "aaabc", loaded.Input)
	assert.Equal(t, original.History, loaded.History)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, sampleSession()))

	newStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "secret-session")
	require.NoError(t, err)
	assert.Equal(t, "baabc", loaded.Word)

	// Saving again re-encrypts with the active key.
	require.NoError(t, newStore.Save(ctx, loaded))
	_, err = oldStore.Load(ctx, "secret-session")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainSession(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, sampleSession()))

	store := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "secret-session")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrKeySize)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrKeySize)
}
