package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "run-1/class-0001.ckpt"
	data := []byte("hello world, this is a checkpoint")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Nothing is visible before Close.
	_, err = store.Open(ctx, name)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "run-1", "class-0001.ckpt"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	rc, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "this", string(got))

	require.NoError(t, store.Put(ctx, "run-1/LATEST", []byte(name)))
	require.NoError(t, store.Put(ctx, "result.txt", []byte("done")))

	names, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	require.Equal(t, []string{"run-1/LATEST", name}, names)

	require.NoError(t, store.Delete(ctx, name))
	require.NoError(t, store.Delete(ctx, name), "deleting twice is fine")
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"result.txt", "run-1/LATEST"}, names)
}

func TestLocalStore_ReadRangeBoundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "b.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "b.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "x/y", []byte("payload")))
			got, err := ReadAll(ctx, store, "x/y")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), got)

			require.NoError(t, store.Put(ctx, "empty", nil))
			got, err = ReadAll(ctx, store, "empty")
			require.NoError(t, err)
			assert.Empty(t, got)

			_, err = ReadAll(ctx, store, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
