package fst

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexfst/outputs"
)

type weighted struct {
	key    string
	weight uint64
}

func bruteForceTopN(entries []weighted, n int, accept func(string) bool) []weighted {
	var kept []weighted
	for _, e := range entries {
		if accept == nil || accept(e.key) {
			kept = append(kept, e)
		}
	}
	slices.SortFunc(kept, func(a, b weighted) int {
		if c := cmp.Compare(a.weight, b.weight); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	return kept[:min(n, len(kept))]
}

func weightedFST(t *testing.T, r *rand.Rand, n int, opts ...BuilderOption) (*FST[uint64], []weighted) {
	t.Helper()
	keys := randomKeys(r, n, "abcdef", 6)
	// Distinct weights keep the expected order unambiguous.
	perm := r.Perm(len(keys))
	entries := make([]weighted, len(keys))
	vals := make([]uint64, len(keys))
	for i, k := range keys {
		vals[i] = uint64(perm[i]*3 + 1)
		entries[i] = weighted{key: k, weight: vals[i]}
	}
	return buildUint64(t, keys, vals, opts...), entries
}

func resultKeys(res []Result[uint64]) []weighted {
	out := make([]weighted, len(res))
	for i, r := range res {
		out[i] = weighted{key: string(ToBytes(r.Input)), weight: r.Output}
	}
	return out
}

func TestShortestPaths(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for _, tt := range []struct {
		name string
		opts []BuilderOption
	}{
		{"default", nil},
		{"packed", []BuilderOption{WithPacking(true)}},
		{"no array arcs", []BuilderOption{WithArrayArcs(false)}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f, entries := weightedFST(t, r, 300, tt.opts...)
			for _, n := range []int{1, 2, 7, 50, 1000} {
				res, err := ShortestPaths(f, f.FirstArc(&Arc[uint64]{}), 0, cmp.Compare[uint64], n, false)
				require.NoError(t, err)
				assert.True(t, res.IsComplete)
				assert.Equal(t, bruteForceTopN(entries, n, nil), resultKeys(res.TopN), "top %d", n)
			}
		})
	}
}

func TestShortestPathsFromPrefix(t *testing.T) {
	keys := []string{"car", "card", "care", "cart", "cat", "dog"}
	vals := []uint64{50, 10, 30, 20, 5, 1}
	f := buildUint64(t, keys, vals)

	// Walk to the node after "car".
	in := f.BytesReader()
	arc := f.FirstArc(&Arc[uint64]{})
	var prefixOutput uint64
	for _, c := range []byte("car") {
		var err error
		arc, err = f.FindTargetArc(int(c), arc, &Arc[uint64]{}, in)
		require.NoError(t, err)
		require.NotNil(t, arc)
		prefixOutput += arc.Output
	}

	res, err := ShortestPaths(f, arc, prefixOutput, cmp.Compare[uint64], 3, true)
	require.NoError(t, err)
	require.Len(t, res.TopN, 3)
	assert.Equal(t, []int{'d'}, res.TopN[0].Input)
	assert.Equal(t, uint64(10), res.TopN[0].Output)
	assert.Equal(t, []int{'t'}, res.TopN[1].Input)
	assert.Equal(t, uint64(20), res.TopN[1].Output)
	assert.Equal(t, []int{'e'}, res.TopN[2].Input)
	assert.Equal(t, uint64(30), res.TopN[2].Output)

	// "car" itself is only reachable through the end arc.
	res, err = ShortestPaths(f, arc, prefixOutput, cmp.Compare[uint64], 10, true)
	require.NoError(t, err)
	require.Len(t, res.TopN, 4)
	assert.Empty(t, res.TopN[3].Input)
	assert.Equal(t, uint64(50), res.TopN[3].Output)

	res, err = ShortestPaths(f, arc, prefixOutput, cmp.Compare[uint64], 10, false)
	require.NoError(t, err)
	assert.Len(t, res.TopN, 3)
}

func TestTopNSearcherAccept(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	f, entries := weightedFST(t, r, 200)

	accept := func(key string) bool { return !strings.HasPrefix(key, "a") }

	s := NewTopNSearcher(f, 10, 1000, cmp.Compare[uint64])
	s.Accept = func(input []int, _ uint64) bool { return accept(string(ToBytes(input))) }
	require.NoError(t, s.AddStartPaths(f.FirstArc(&Arc[uint64]{}), 0, false, nil))
	res, err := s.Search()
	require.NoError(t, err)
	assert.True(t, res.IsComplete)
	assert.Equal(t, bruteForceTopN(entries, 10, accept), resultKeys(res.TopN))
}

func TestTopNSearcherShallowQueue(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 4))
	f, entries := weightedFST(t, r, 200)

	s := NewTopNSearcher(f, 5, 2, cmp.Compare[uint64])
	require.NoError(t, s.AddStartPaths(f.FirstArc(&Arc[uint64]{}), 0, false, nil))
	res, err := s.Search()
	require.NoError(t, err)
	// Depth is raised to N, so the search is still exact.
	assert.True(t, res.IsComplete)
	assert.Equal(t, bruteForceTopN(entries, 5, nil), resultKeys(res.TopN))
}

func TestTopNNoCompletion(t *testing.T) {
	b := NewBuilder[[]byte](InputByte1, outputs.NewByteSequenceOutputs())
	require.NoError(t, b.AddString("aa", []byte("x")))
	require.NoError(t, b.AddString("ab", []byte("y")))
	f, err := b.Finish()
	require.NoError(t, err)

	var root Arc[[]byte]
	f.FirstArc(&root)
	var a Arc[[]byte]
	_, err = f.FindTargetArc('a', &root, &a, f.BytesReader())
	require.NoError(t, err)

	s := NewTopNSearcher(f, 1, 1, func(x, y []byte) int { return strings.Compare(string(x), string(y)) })
	// Force a non-greedy step through a node whose arcs all carry output.
	s.queue.Add(&searchPath[[]byte]{arc: a, cost: nil, input: []int{'a'}})
	_, err = s.Search()
	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestGetByOutput(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	keys := randomKeys(r, 500, "abcdefghij", 8)
	ords := make([]uint64, len(keys))
	for i := range ords {
		ords[i] = uint64(i)
	}

	for _, opts := range [][]BuilderOption{nil, {WithPacking(true)}, {WithArrayArcs(false)}} {
		f := buildUint64(t, keys, ords, opts...)
		for i, k := range keys {
			input, ok, err := GetByOutput(f, uint64(i))
			require.NoError(t, err)
			require.True(t, ok, "ord %d", i)
			assert.Equal(t, k, string(ToBytes(input)))
		}
		_, ok, err := GetByOutput(f, uint64(len(keys)+10))
		require.NoError(t, err)
		assert.False(t, ok)
	}

	t.Run("gaps", func(t *testing.T) {
		f := buildUint64(t, []string{"a", "b", "c"}, []uint64{0, 5, 9})
		input, ok, err := GetByOutput(f, 5)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b", string(ToBytes(input)))

		_, ok, err = GetByOutput(f, 6)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
