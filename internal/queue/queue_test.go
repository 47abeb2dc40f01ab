package queue

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue(t *testing.T) {
	t.Run("min order", func(t *testing.T) {
		pq := New(4, func(a, b int) bool { return a < b })
		for _, v := range []int{5, 1, 4, 2, 3} {
			pq.PushItem(v)
		}
		require.Equal(t, 5, pq.Len())
		top, ok := pq.TopItem()
		require.True(t, ok)
		assert.Equal(t, 1, top)

		var got []int
		for pq.Len() > 0 {
			v, _ := pq.PopItem()
			got = append(got, v)
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5}, got)

		_, ok = pq.PopItem()
		assert.False(t, ok)
	})

	t.Run("insert with overflow keeps largest", func(t *testing.T) {
		pq := New(3, func(a, b int) bool { return a < b })
		for _, v := range []int{7, 1, 9, 3, 8, 2} {
			pq.InsertWithOverflow(v, 3)
		}
		var got []int
		for pq.Len() > 0 {
			v, _ := pq.PopItem()
			got = append(got, v)
		}
		assert.Equal(t, []int{7, 8, 9}, got)
	})
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet(0, cmp.Compare[int])
	for _, v := range []int{4, 2, 8, 6} {
		assert.True(t, s.Add(v))
	}
	assert.False(t, s.Add(4))
	assert.Equal(t, 4, s.Len())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 8, last)

	first, ok := s.PollFirst()
	require.True(t, ok)
	assert.Equal(t, 2, first)

	last, ok = s.PollLast()
	require.True(t, ok)
	assert.Equal(t, 8, last)

	assert.Equal(t, 2, s.Len())
	first, _ = s.First()
	assert.Equal(t, 4, first)

	empty := NewOrderedSet(0, cmp.Compare[int])
	_, ok = empty.PollFirst()
	assert.False(t, ok)
	_, ok = empty.PollLast()
	assert.False(t, ok)
}
