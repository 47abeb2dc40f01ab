package outputs

import (
	"testing"

	"github.com/hupe1980/lexfst/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkLaws verifies the algebra identities every Outputs implementation must
// satisfy for the given pair of values.
func checkLaws[T any](t *testing.T, o Outputs[T], x, y T) {
	t.Helper()
	no := o.NoOutput()

	assert.True(t, o.Equal(o.Add(no, x), x), "Add(NoOutput, x) = x")
	assert.True(t, o.Equal(o.Add(x, no), x), "Add(x, NoOutput) = x")
	assert.True(t, o.Equal(o.Subtract(x, no), x), "Subtract(x, NoOutput) = x")
	assert.True(t, o.IsNoOutput(o.Subtract(x, x)), "Subtract(x, x) = NoOutput")
	assert.True(t, o.IsNoOutput(o.Common(x, no)), "Common(x, NoOutput) = NoOutput")
	assert.True(t, o.Equal(o.Common(x, x), x), "Common(x, x) = x")

	c := o.Common(x, y)
	assert.True(t, o.Equal(o.Add(c, o.Subtract(x, c)), x), "Add(Common, Subtract(x, Common)) = x")
	assert.True(t, o.Equal(o.Add(c, o.Subtract(y, c)), y), "Add(Common, Subtract(y, Common)) = y")
}

func roundTrip[T any](t *testing.T, o Outputs[T], v T) {
	t.Helper()
	out := store.NewSliceOutput(0)
	require.NoError(t, o.Write(v, out))
	require.NoError(t, o.WriteFinalOutput(v, out))

	in := store.NewSliceInput(out.Bytes())
	got, err := o.Read(in)
	require.NoError(t, err)
	assert.True(t, o.Equal(v, got), "Read: want %s got %s", o.String(v), o.String(got))
	got, err = o.ReadFinalOutput(in)
	require.NoError(t, err)
	assert.True(t, o.Equal(v, got))
	assert.Equal(t, 0, in.Remaining())
}

func TestNoOutputs(t *testing.T) {
	o := NewNoOutputs()
	checkLaws[struct{}](t, o, struct{}{}, struct{}{})
	roundTrip[struct{}](t, o, struct{}{})

	m, err := o.Merge(struct{}{}, struct{}{})
	require.NoError(t, err)
	assert.True(t, o.IsNoOutput(m))
}

func TestByteSequenceOutputs(t *testing.T) {
	o := NewByteSequenceOutputs()
	checkLaws(t, o, []byte("station"), []byte("stop"))
	checkLaws(t, o, []byte("abc"), []byte("xyz"))
	roundTrip(t, o, []byte("hello"))
	roundTrip(t, o, o.NoOutput())

	t.Run("common prefix", func(t *testing.T) {
		assert.Equal(t, []byte("st"), o.Common([]byte("station"), []byte("stop")))
		assert.True(t, o.IsNoOutput(o.Common([]byte("a"), []byte("b"))))
	})

	t.Run("singleton no-output", func(t *testing.T) {
		for _, v := range [][]byte{
			o.Subtract([]byte("ab"), []byte("ab")),
			o.Common([]byte("x"), []byte("y")),
			o.Add(nil, nil),
		} {
			assert.True(t, o.IsNoOutput(v))
		}
		assert.NotNil(t, o.Subtract([]byte("ab"), []byte("ab")))
	})

	t.Run("merge unsupported", func(t *testing.T) {
		_, err := o.Merge([]byte("a"), []byte("b"))
		assert.ErrorIs(t, err, ErrMergeNotSupported)
	})
}

func TestCharSequenceOutputs(t *testing.T) {
	o := NewCharSequenceOutputs()
	checkLaws(t, o, []rune("grüße"), []rune("grün"))
	roundTrip(t, o, []rune("日本語"))
	assert.Equal(t, "grü", o.String(o.Common([]rune("grüße"), []rune("grün"))))
}

func TestIntSequenceOutputs(t *testing.T) {
	o := NewIntSequenceOutputs()
	checkLaws(t, o, []int{1, 2, 3}, []int{1, 2, 4, 5})
	roundTrip(t, o, []int{0, 128, 1 << 20})
	assert.Equal(t, []int{3}, o.Subtract([]int{1, 2, 3}, []int{1, 2}))
}

func TestPositiveIntOutputs(t *testing.T) {
	o := NewPositiveIntOutputs()
	checkLaws[uint64](t, o, 42, 17)
	checkLaws[uint64](t, o, 0, 5)
	roundTrip[uint64](t, o, 1<<40)

	assert.Equal(t, uint64(17), o.Common(42, 17))
	assert.Equal(t, uint64(25), o.Subtract(42, 17))
	assert.Equal(t, uint64(59), o.Add(42, 17))
	assert.Equal(t, -1, o.Compare(1, 2))
	assert.Equal(t, 0, o.Compare(2, 2))
	assert.Equal(t, 1, o.Compare(3, 2))

	assert.Panics(t, func() { o.Subtract(1, 2) })
}

func TestPairOutputs(t *testing.T) {
	o := NewPairOutputs[uint64, []byte](NewPositiveIntOutputs(), NewByteSequenceOutputs())
	x := o.NewPair(10, []byte("foo"))
	y := o.NewPair(4, []byte("fob"))
	checkLaws(t, o, x, y)
	roundTrip(t, o, x)
	roundTrip(t, o, o.NoOutput())

	t.Run("normalizes empty pair", func(t *testing.T) {
		assert.Same(t, o.NoOutput(), o.NewPair(0, nil))
		assert.Same(t, o.NoOutput(), o.Subtract(x, x))
		assert.Same(t, o.NoOutput(), o.Common(o.NewPair(0, []byte("a")), o.NewPair(3, []byte("b"))))
	})

	t.Run("component-wise", func(t *testing.T) {
		c := o.Common(x, y)
		assert.Equal(t, uint64(4), c.Output1)
		assert.Equal(t, []byte("fo"), c.Output2)
	})

	t.Run("merge propagates unsupported", func(t *testing.T) {
		_, err := o.Merge(x, y)
		assert.ErrorIs(t, err, ErrMergeNotSupported)
	})
}
