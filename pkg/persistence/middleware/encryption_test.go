package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/heartsquest/pkg/adapters/memory"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/persistence/middleware"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig, inner ports.StateStore) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(inner)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	inner := memory.NewStore()
	store := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, inner)
	ctx := context.Background()

	p := domain.NewProgress("s", "start")
	p.CurrentStep = "q1"
	p.Answer = "fro"
	p.Revision = 4
	require.NoError(t, store.Save(ctx, "s", p))

	raw, err := inner.Load(ctx, "s")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.CurrentStep)
	assert.Empty(t, raw.Answer)
	assert.Empty(t, raw.History)
	assert.Equal(t, uint64(4), raw.Revision)

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("q1"), loaded.CurrentStep)
	assert.Equal(t, "fro", loaded.Answer)
	assert.Empty(t, loaded.Sealed)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	require.NoError(t, store.Delete(ctx, "s"))
	_, err = store.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey}, inner)
	require.NoError(t, oldStore.Save(ctx, "r", domain.NewProgress("r", "start")))

	newStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, inner)
	loaded, err := newStore.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("start"), loaded.CurrentStep)

	loaded.CurrentStep = "map"
	require.NoError(t, newStore.Save(ctx, "r", loaded))

	_, err = oldStore.Load(ctx, "r")
	assert.ErrorContains(t, err, "failed to decrypt progress")
}

func TestEncryptionMiddleware_RejectsPlainSnapshots(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "plain", domain.NewProgress("plain", "start")))

	store := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, inner)
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorContains(t, err, "must be 32 bytes")

	assert.Len(t, middleware.KeyFromPassphrase("pretty girl"), 32)
	assert.Equal(t, middleware.KeyFromPassphrase("a"), middleware.KeyFromPassphrase("a"))
}
