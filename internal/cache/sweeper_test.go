package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/fantasycache/internal/persist"
)

func TestSweep(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	store.Set(ctx, "live", json.RawMessage(`1`), time.Minute)
	store.Set(ctx, "dead", json.RawMessage(`2`), 10*time.Millisecond)
	require.NoError(t, backend.Put(ctx, "corrupt", []byte(`{not json`)))

	// Partitioned records are not this store's tier and must survive the
	// sweep untouched.
	require.NoError(t, backend.Put(ctx, "historical/drafts/k", []byte(`{also not json`)))

	time.Sleep(25 * time.Millisecond)
	result := store.Sweep(ctx)

	assert.Equal(t, 1, result.MemoryRemoved)
	assert.Equal(t, 3, result.DiskScanned)
	assert.Equal(t, 2, result.DiskRemoved)

	_, ok := store.Get(ctx, "live")
	assert.True(t, ok)
	_, err := backend.Get(ctx, "dead")
	assert.ErrorIs(t, err, persist.ErrNotFound)
	_, err = backend.Get(ctx, "corrupt")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	_, err = backend.Get(ctx, "historical/drafts/k")
	assert.NoError(t, err)
}

func TestSweepLoop(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend()
	store := New(backend, WithSweepInterval(20*time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })

	store.Set(ctx, "dead", json.RawMessage(`1`), 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		if store.Len() != 0 {
			return false
		}
		_, err := backend.Get(ctx, "dead")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	store.Set(ctx, "a", json.RawMessage(`1`), time.Minute)
	store.Set(ctx, "b", json.RawMessage(`2`), time.Minute)
	require.NoError(t, backend.Put(ctx, "historical/drafts/k", []byte(`{}`)))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.MemoryEntries)
	assert.Equal(t, 2, stats.DiskEntries)
}
