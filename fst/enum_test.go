package fst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumExhaustedSeeks(t *testing.T) {
	f := buildUint64(t, exampleKeys, []uint64{1, 2, 3, 4, 5, 6})

	t.Run("ceil past the last key", func(t *testing.T) {
		e := NewBytesEnum(f)
		io, err := e.SeekCeil([]byte("zzz"))
		require.NoError(t, err)
		assert.Nil(t, io)

		io, err = e.Next()
		require.NoError(t, err)
		assert.Nil(t, io)
		assert.Nil(t, e.Current())

		io, err = e.SeekCeil([]byte("sto"))
		require.NoError(t, err)
		require.NotNil(t, io)
		assert.Equal(t, "stop", string(io.Input))
	})

	t.Run("floor before the first key", func(t *testing.T) {
		e := NewBytesEnum(f)
		io, err := e.SeekFloor([]byte("a"))
		require.NoError(t, err)
		assert.Nil(t, io)

		io, err = e.Next()
		require.NoError(t, err)
		assert.Nil(t, io)
	})

	t.Run("failed exact seek", func(t *testing.T) {
		e := NewBytesEnum(f)
		io, err := e.SeekExact([]byte("stop"))
		require.NoError(t, err)
		require.NotNil(t, io)
		require.NotNil(t, e.Current())

		io, err = e.SeekExact([]byte("stoq"))
		require.NoError(t, err)
		assert.Nil(t, io)
		assert.Nil(t, e.Current())

		io, err = e.SeekCeil([]byte("sto"))
		require.NoError(t, err)
		require.NotNil(t, io)
		assert.Equal(t, "stop", string(io.Input))
		assert.Equal(t, uint64(5), e.Current().Output)
	})

	t.Run("ints enum", func(t *testing.T) {
		e := NewIntsEnum(f)
		io, err := e.SeekExact(ToInts([]byte("mo"), nil))
		require.NoError(t, err)
		assert.Nil(t, io)
		assert.Nil(t, e.Current())
	})
}

func TestEnumDepthLimit(t *testing.T) {
	f := buildUint64(t, []string{"abcdefgh"}, []uint64{1})

	// A stack deeper than any real path only arises from a cycle.
	e := NewBytesEnum(f)
	e.e.maxDepth = 4
	_, err := e.Next()
	assert.ErrorIs(t, err, ErrCorrupt)

	e = NewBytesEnum(f)
	e.e.maxDepth = 4
	_, err = e.SeekFloor([]byte("z"))
	assert.ErrorIs(t, err, ErrCorrupt)

	e = NewBytesEnum(f)
	e.e.maxDepth = 4
	_, err = e.SeekExact([]byte("abcdefgh"))
	assert.ErrorIs(t, err, ErrCorrupt)

	io, err := NewBytesEnum(f).SeekFloor([]byte("z"))
	require.NoError(t, err)
	require.NotNil(t, io)
	assert.Equal(t, "abcdefgh", string(io.Input))
}
