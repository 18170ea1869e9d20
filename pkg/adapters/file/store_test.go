package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango/pkg/adapters/file"
	"github.com/slipstream/mango/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "pipeline", []byte("nodes: []\n")))
	data, err := os.ReadFile(filepath.Join(dir, "pipeline.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "nodes: []\n", string(data))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pipeline"}, names)
}

func TestFileStore_InvalidNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	for _, name := range []string{"", "..", "../escape", `a\b`} {
		assert.ErrorIs(t, store.Save(ctx, name, nil), file.ErrInvalidName, name)
		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, file.ErrInvalidName, name)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
