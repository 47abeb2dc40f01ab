package store

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVInt(t *testing.T) {
	values := []int{0, 1, 127, 128, 255, 16383, 16384, math.MaxInt32}
	out := NewSliceOutput(0)
	for _, v := range values {
		require.NoError(t, WriteVInt(out, v))
	}

	in := NewSliceInput(out.Bytes())
	for _, want := range values {
		got, err := ReadVInt(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, in.Remaining())

	t.Run("single byte below 128", func(t *testing.T) {
		o := NewSliceOutput(0)
		require.NoError(t, WriteVInt(o, 127))
		assert.Equal(t, []byte{0x7f}, o.Bytes())
	})

	t.Run("negative rejected", func(t *testing.T) {
		assert.ErrorIs(t, WriteVInt(NewSliceOutput(0), -1), ErrNegativeValue)
	})

	t.Run("overlong rejected", func(t *testing.T) {
		_, err := ReadVInt(NewSliceInput([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}))
		assert.ErrorIs(t, err, ErrMalformedVarint)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ReadVInt(NewSliceInput([]byte{0x80}))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestVLong(t *testing.T) {
	values := []uint64{0, 1, 1 << 35, math.MaxUint64}
	out := NewSliceOutput(0)
	for _, v := range values {
		require.NoError(t, WriteVLong(out, v))
	}
	in := NewSliceInput(out.Bytes())
	for _, want := range values {
		got, err := ReadVLong(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFixedWidth(t *testing.T) {
	out := NewSliceOutput(0)
	require.NoError(t, WriteShort(out, 0xbeef))
	require.NoError(t, WriteInt32(out, 0xdeadbeef))
	assert.Equal(t, []byte{0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef}, out.Bytes())

	in := NewSliceInput(out.Bytes())
	s, err := ReadShort(in)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), s)
	i, err := ReadInt32(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), i)
}

func TestStreams(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputStream(&buf)
	require.NoError(t, WriteString(out, "FST"))
	require.NoError(t, WriteVLong(out, 300))
	require.NoError(t, out.Flush())
	assert.Equal(t, int64(buf.Len()), out.Count())

	in := NewInputStream(&buf)
	s, err := ReadString(in, 16)
	require.NoError(t, err)
	assert.Equal(t, "FST", s)
	v, err := ReadVLong(in)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)

	_, err = in.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadStringBounded(t *testing.T) {
	out := NewSliceOutput(0)
	require.NoError(t, WriteString(out, "toolong"))
	_, err := ReadString(NewSliceInput(out.Bytes()), 3)
	assert.ErrorIs(t, err, ErrMalformedVarint)
}
