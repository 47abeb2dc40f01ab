package fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "dict.lxf")

	require.NoError(t, WriteFileAtomic(Default, path, writeString("first")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	require.NoError(t, WriteFileAtomic(Default, path, writeString("second")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := Default.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not survive")
}

func TestWriteFileAtomicFaults(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		fault   Fault
	}{
		{"write", ".tmp-", Fault{FailAfterBytes: 3}},
		{"sync", ".tmp-", Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", ".tmp-", Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", "dict.lxf", Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "dict.lxf")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

			ffs := NewFaultyFS(nil)
			ffs.AddRule(tt.pattern, tt.fault)
			err := WriteFileAtomic(ffs, path, writeString("replacement"))
			assert.ErrorIs(t, err, ErrInjected)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "old", string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestFaultyFSWritten(t *testing.T) {
	ffs := NewFaultyFS(LocalFS{})
	f, err := ffs.OpenFile(filepath.Join(t.TempDir(), "a"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, int64(5), ffs.Written())
}
