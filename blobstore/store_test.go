package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lfs "github.com/hupe1980/lexfst/internal/fs"
)

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	data := []byte("mop moth pop star stop top")

	t.Run("create and read", func(t *testing.T) {
		w, err := store.Create(ctx, "dicts/terms.lxf")
		require.NoError(t, err)
		_, err = w.Write(data[:10])
		require.NoError(t, err)
		_, err = w.Write(data[10:])
		require.NoError(t, err)
		require.NoError(t, w.Sync())
		require.NoError(t, w.Close())

		_, err = w.Write([]byte("x"))
		assert.Error(t, err)

		b, err := store.Open(ctx, "dicts/terms.lxf")
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(len(data)), b.Size())

		buf := make([]byte, 4)
		n, err := b.ReadAt(ctx, buf, 4)
		require.NoError(t, err)
		assert.Equal(t, "moth", string(buf[:n]))

		tail := make([]byte, 8)
		n, err = b.ReadAt(ctx, tail, int64(len(data)-3))
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, "top", string(tail[:n]))

		r, err := b.ReadRange(ctx, 9, 3)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "pop", string(got))

		all, err := ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, data, all)
	})

	t.Run("abort", func(t *testing.T) {
		w, err := store.Create(ctx, "dicts/aborted.lxf")
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Abort())

		_, err = w.Write(data)
		assert.Error(t, err)
		_, err = store.Open(ctx, "dicts/aborted.lxf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put list delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "dicts/a.lxf", []byte("a")))
		require.NoError(t, store.Put(ctx, "other.lxf", nil))

		names, err := store.List(ctx, "dicts/")
		require.NoError(t, err)
		assert.Equal(t, []string{"dicts/a.lxf", "dicts/terms.lxf"}, names)

		names, err = store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"dicts/a.lxf", "dicts/terms.lxf", "other.lxf"}, names)

		b, err := store.Open(ctx, "other.lxf")
		require.NoError(t, err)
		all, err := ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, all)
		require.NoError(t, b.Close())

		require.NoError(t, store.Delete(ctx, "dicts/a.lxf"))
		require.NoError(t, store.Delete(ctx, "dicts/a.lxf"))
		_, err = store.Open(ctx, "dicts/a.lxf")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	exerciseStore(t, NewLocalStore(t.TempDir()))
}

func TestLocalStoreFileSystem(t *testing.T) {
	ffs := lfs.NewFaultyFS(nil)
	exerciseStore(t, NewLocalStore(t.TempDir(), WithFileSystem(ffs)))
	assert.Positive(t, ffs.Written())
}

func TestLocalStoreFailedWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	ffs := lfs.NewFaultyFS(nil)
	ffs.AddRule("broken", lfs.Fault{FailAfterBytes: -1, FailOnSync: true})
	store := NewLocalStore(root, WithFileSystem(ffs))

	w, err := store.Create(ctx, "broken.lxf")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), lfs.ErrInjected)

	_, err = store.Open(ctx, "broken.lxf")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, store.Put(ctx, "broken.lxf", []byte("x")), lfs.ErrInjected)
	_, err = os.Stat(filepath.Join(root, "broken.lxf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStoreInvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	for _, name := range []string{"", "../escape", "a//b", "/abs"} {
		_, err := store.Open(ctx, name)
		assert.Error(t, err, name)
		assert.Error(t, store.Put(ctx, name, nil), name)
	}
}
