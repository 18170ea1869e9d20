package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract verifies that a DocumentStore implementation
// honours the interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")
	doc := []byte("nodes:\n  - id: 1\n    type: standard-in\nconnections: []\n")

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, doc))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, doc, loaded)
	})

	t.Run("Save replaces", func(t *testing.T) {
		next := []byte("nodes: []\nconnections: []\n")
		require.NoError(t, store.Save(ctx, name, next))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, next, loaded)
	})

	t.Run("Load isolates callers", func(t *testing.T) {
		data := []byte("nodes: []\n")
		require.NoError(t, store.Save(ctx, name, data))
		data[0] = 'X'

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, byte('n'), loaded[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, doc))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.NoError(t, store.Delete(ctx, name), "deleting twice")
	})

	t.Run("List", func(t *testing.T) {
		b, a := name+"-b", name+"-a"
		require.NoError(t, store.Save(ctx, b, doc))
		require.NoError(t, store.Save(ctx, a, doc))
		defer func() {
			_ = store.Delete(ctx, a)
			_ = store.Delete(ctx, b)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, a)
		assert.Contains(t, names, b)
		assert.IsIncreasing(t, names)
	})
}
