package fst

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexfst/store"
)

func readAll(t *testing.T, r BytesReader, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	require.NoError(t, r.ReadFull(buf))
	return buf
}

func TestBytesStore(t *testing.T) {
	t.Run("write across blocks", func(t *testing.T) {
		s := NewBytesStore(2)
		data := []byte("hello, paged world")
		n, err := s.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, int64(len(data)), s.Position())

		var out bytes.Buffer
		_, err = s.WriteTo(&out)
		require.NoError(t, err)
		assert.Equal(t, data, out.Bytes())

		r := s.ForwardReader()
		assert.Equal(t, data, readAll(t, r, len(data)))
		_, err = r.ReadByte()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("reverse reader", func(t *testing.T) {
		s := NewBytesStore(3)
		_, _ = s.Write([]byte("abcdefghij"))
		r := s.ReverseReader()
		assert.True(t, r.Reversed())
		r.SetPosition(9)
		assert.Equal(t, []byte("jihg"), readAll(t, r, 4))
		assert.Equal(t, int64(5), r.Position())
		r.SkipBytes(2)
		b, err := r.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte('d'), b)
		r.SkipBytes(-2)
		b, _ = r.ReadByte()
		assert.Equal(t, byte('e'), b)

		r.SetPosition(0)
		_, err = r.ReadByte()
		require.NoError(t, err)
		_, err = r.ReadByte()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("in place edits", func(t *testing.T) {
		s := NewBytesStore(2)
		_, _ = s.Write([]byte("0123456789"))
		s.reverse(1, 8)
		assert.Equal(t, "0876543219", string(readAll(t, s.ForwardReader(), 10)))

		s.writeBytesAt(2, []byte("xyz"))
		assert.Equal(t, "08xyz43219", string(readAll(t, s.ForwardReader(), 10)))

		s.copyBytes(1, 3, 4)
		assert.Equal(t, "08x8xyz219", string(readAll(t, s.ForwardReader(), 10)))

		s.writeInt32At(4, 0x41424344)
		assert.Equal(t, "08x8ABCD19", string(readAll(t, s.ForwardReader(), 10)))
	})

	t.Run("skip and truncate", func(t *testing.T) {
		s := NewBytesStore(2)
		_, _ = s.Write([]byte("abc"))
		s.skipBytes(6)
		assert.Equal(t, int64(9), s.Position())
		s.skipBytes(-3)
		assert.Equal(t, int64(9), s.Position())

		s.truncate(4)
		assert.Equal(t, int64(4), s.Position())
		_ = s.WriteByte('z')
		assert.Equal(t, int64(5), s.Position())

		s.truncate(0)
		assert.Equal(t, int64(0), s.Position())
		_ = s.WriteByte('q')
		assert.Equal(t, "q", string(readAll(t, s.ForwardReader(), 1)))
	})

	t.Run("finish and reload", func(t *testing.T) {
		s := NewBytesStore(4)
		data := bytes.Repeat([]byte("fst"), 11)
		_, _ = s.Write(data)
		s.finish()
		assert.Equal(t, int64(len(data)), s.Position())

		var out bytes.Buffer
		_, err := s.WriteTo(&out)
		require.NoError(t, err)

		loaded, err := readBytesStore(store.NewSliceInput(out.Bytes()), int64(out.Len()), 8)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), loaded.Position())
		assert.Equal(t, data, readAll(t, loaded.ForwardReader(), len(data)))

		_, err = readBytesStore(store.NewSliceInput(out.Bytes()[:5]), 10, 8)
		assert.Error(t, err)
	})
}
