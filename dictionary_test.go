package lexfst

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexfst/fst"
)

var exampleTerms = map[string]uint64{
	"mop":  7,
	"moth": 3,
	"pop":  11,
	"star": 2,
	"stop": 9,
	"top":  4,
}

func buildExample(t *testing.T, opts ...Option) *Dictionary {
	t.Helper()
	d, err := BuildFromMap(exampleTerms, opts...)
	require.NoError(t, err)
	return d
}

func collect(seq iter.Seq2[[]byte, uint64]) []Entry {
	var out []Entry
	for term, v := range seq {
		out = append(out, Entry{Term: bytes.Clone(term), Value: v})
	}
	return out
}

func termsOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e.Term)
	}
	return out
}

func TestDictionaryGet(t *testing.T) {
	for _, pack := range []bool{false, true} {
		t.Run(fmt.Sprintf("pack=%v", pack), func(t *testing.T) {
			var opts []Option
			if pack {
				opts = append(opts, WithPacking())
			}
			d := buildExample(t, opts...)
			assert.Equal(t, len(exampleTerms), d.Len())
			assert.Equal(t, pack, d.Stats().Packed)
			assert.Positive(t, d.SizeInBytes())

			for term, want := range exampleTerms {
				v, ok, err := d.Get([]byte(term))
				require.NoError(t, err)
				assert.True(t, ok, term)
				assert.Equal(t, want, v, term)
			}

			for _, missing := range []string{"", "m", "mo", "mops", "stops", "zebra"} {
				ok, err := d.Contains([]byte(missing))
				require.NoError(t, err)
				assert.False(t, ok, missing)
			}
		})
	}
}

func TestDictionaryBuilderErrors(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		b := NewDictionaryBuilder()
		require.NoError(t, b.AddString("a", 1))
		err := b.AddString("a", 2)
		assert.ErrorIs(t, err, ErrDuplicateTerm)

		var te *TermError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, []byte("a"), te.Term)
		assert.Contains(t, err.Error(), `"a"`)

		// The builder is still usable.
		require.NoError(t, b.AddString("b", 2))
		d, err := b.Finish()
		require.NoError(t, err)
		assert.Equal(t, 2, d.Len())
	})

	t.Run("out of order", func(t *testing.T) {
		b := NewDictionaryBuilder()
		require.NoError(t, b.AddString("b", 1))
		assert.ErrorIs(t, b.AddString("a", 2), ErrOutOfOrder)
		assert.Equal(t, 1, b.Len())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewDictionaryBuilder().Finish()
		assert.ErrorIs(t, err, ErrEmptyDictionary)

		_, err = BuildFromMap(nil)
		assert.ErrorIs(t, err, ErrEmptyDictionary)

		_, err = BuildOrdinals(nil)
		assert.ErrorIs(t, err, ErrEmptyDictionary)
	})

	t.Run("pruned away", func(t *testing.T) {
		b := NewDictionaryBuilder(WithBuilderOptions(fst.WithMinSuffixCount1(10)))
		require.NoError(t, b.AddString("a", 1))
		_, err := b.Finish()
		assert.ErrorIs(t, err, ErrEmptyDictionary)
	})
}

func TestDictionaryEmptyTerm(t *testing.T) {
	d, err := BuildFromMap(map[string]uint64{"": 5, "a": 1})
	require.NoError(t, err)

	v, ok, err := d.Get(nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), v)

	entries := collect(d.All())
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Term)
	assert.Equal(t, uint64(5), entries[0].Value)
	assert.Equal(t, "a", string(entries[1].Term))
}

func TestDictionaryCeilFloor(t *testing.T) {
	d := buildExample(t)

	tests := []struct {
		target string
		ceil   string
		floor  string
	}{
		{target: "", ceil: "mop", floor: ""},
		{target: "a", ceil: "mop", floor: ""},
		{target: "mop", ceil: "mop", floor: "mop"},
		{target: "mopa", ceil: "moth", floor: "mop"},
		{target: "n", ceil: "pop", floor: "moth"},
		{target: "stoa", ceil: "stop", floor: "star"},
		{target: "top", ceil: "top", floor: "top"},
		{target: "zzz", ceil: "", floor: "top"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			e, ok, err := d.Ceil([]byte(tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.ceil != "", ok)
			if ok {
				assert.Equal(t, tt.ceil, string(e.Term))
				assert.Equal(t, exampleTerms[tt.ceil], e.Value)
			}

			e, ok, err = d.Floor([]byte(tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.floor != "", ok)
			if ok {
				assert.Equal(t, tt.floor, string(e.Term))
				assert.Equal(t, exampleTerms[tt.floor], e.Value)
			}
		})
	}
}

func TestDictionaryIteration(t *testing.T) {
	d := buildExample(t)

	t.Run("all", func(t *testing.T) {
		entries := collect(d.All())
		assert.Equal(t, []string{"mop", "moth", "pop", "star", "stop", "top"}, termsOf(entries))
		for _, e := range entries {
			assert.Equal(t, exampleTerms[string(e.Term)], e.Value)
		}
	})

	t.Run("range", func(t *testing.T) {
		assert.Equal(t, []string{"moth", "pop"}, termsOf(collect(d.Range([]byte("moth"), []byte("star")))))
		assert.Equal(t, []string{"star", "stop", "top"}, termsOf(collect(d.Range([]byte("r"), nil))))
		assert.Equal(t, []string{"mop", "moth"}, termsOf(collect(d.Range(nil, []byte("n")))))
		assert.Empty(t, collect(d.Range([]byte("x"), nil)))
	})

	t.Run("prefix", func(t *testing.T) {
		assert.Equal(t, []string{"star", "stop"}, termsOf(collect(d.Prefix([]byte("st")))))
		assert.Equal(t, []string{"mop", "moth"}, termsOf(collect(d.Prefix([]byte("mo")))))
		assert.Equal(t, []string{"top"}, termsOf(collect(d.Prefix([]byte("top")))))
		assert.Empty(t, collect(d.Prefix([]byte("q"))))
		assert.Len(t, collect(d.Prefix(nil)), len(exampleTerms))
	})

	t.Run("early break", func(t *testing.T) {
		var seen []string
		for term := range d.All() {
			seen = append(seen, string(term))
			if len(seen) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"mop", "moth"}, seen)
	})

	t.Run("cursor", func(t *testing.T) {
		c := d.Cursor()
		c.Seek([]byte("p"))
		require.True(t, c.Next())
		assert.Equal(t, "pop", string(c.Term()))
		assert.Equal(t, uint64(11), c.Value())
		require.True(t, c.Next())
		assert.Equal(t, "star", string(c.Term()))

		c.Seek([]byte("mop"))
		require.True(t, c.Next())
		assert.Equal(t, "mop", string(c.Term()))

		c.Seek([]byte("zz"))
		assert.False(t, c.Next())
		assert.False(t, c.Next())
		assert.NoError(t, c.Err())
	})
}

func TestPrefixEnd(t *testing.T) {
	tests := []struct {
		prefix []byte
		want   []byte
	}{
		{prefix: nil, want: nil},
		{prefix: []byte("a"), want: []byte("b")},
		{prefix: []byte("ab"), want: []byte("ac")},
		{prefix: []byte{'a', 0xff}, want: []byte("b")},
		{prefix: []byte{0xff, 0xff}, want: nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prefixEnd(tt.prefix), "%q", tt.prefix)
	}
}

func TestDictionaryPrefixValues(t *testing.T) {
	d := buildExample(t)

	bm, err := d.PrefixValues([]byte("st"))
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 9}, bm.ToArray())

	bm, err = d.PrefixValues(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(exampleTerms)), bm.GetCardinality())

	bm, err = d.PrefixValues([]byte("x"))
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())
}

func TestDictionaryTopN(t *testing.T) {
	d, err := BuildFromMap(map[string]uint64{
		"car":  50,
		"card": 10,
		"care": 30,
		"cart": 20,
		"cat":  5,
		"dog":  1,
	})
	require.NoError(t, err)

	tests := []struct {
		prefix string
		n      int
		want   []Entry
	}{
		{prefix: "", n: 1, want: []Entry{{Term: []byte("dog"), Value: 1}}},
		{prefix: "ca", n: 2, want: []Entry{{Term: []byte("cat"), Value: 5}, {Term: []byte("card"), Value: 10}}},
		{prefix: "car", n: 3, want: []Entry{
			{Term: []byte("card"), Value: 10},
			{Term: []byte("cart"), Value: 20},
			{Term: []byte("care"), Value: 30},
		}},
		{prefix: "car", n: 10, want: []Entry{
			{Term: []byte("card"), Value: 10},
			{Term: []byte("cart"), Value: 20},
			{Term: []byte("care"), Value: 30},
			{Term: []byte("car"), Value: 50},
		}},
		{prefix: "cart", n: 2, want: []Entry{{Term: []byte("cart"), Value: 20}}},
		{prefix: "x", n: 3, want: nil},
		{prefix: "carts", n: 3, want: nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.prefix, tt.n), func(t *testing.T) {
			got, complete, err := d.TopN([]byte(tt.prefix), tt.n)
			require.NoError(t, err)
			assert.True(t, complete)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, _, err = d.TopN(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidN)
}

func TestDictionaryTermForValue(t *testing.T) {
	d, err := BuildOrdinals([]string{"pear", "apple", "fig", "apple", "kiwi"})
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	for i, want := range []string{"apple", "fig", "kiwi", "pear"} {
		v, ok, err := d.Get([]byte(want))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, uint64(i), v)

		term, ok, err := d.TermForValue(uint64(i))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, string(term))
	}

	_, ok, err := d.TermForValue(99)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = buildExample(t).TermForValue(3)
	assert.ErrorIs(t, err, ErrNotMonotonic)
}

func TestDictionaryPrunedLen(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	d, err := BuildOrdinals([]string{"aa", "ab", "b"},
		WithBuilderOptions(fst.WithMinSuffixCount1(2)), WithMetricsCollector(metrics))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, termsOf(collect(d.All())))
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, int64(3), metrics.GetStats().BuildTerms)

	_, _, err = d.TermForValue(0)
	assert.ErrorIs(t, err, ErrNotMonotonic)

	var buf bytes.Buffer
	_, err = d.WriteTo(&buf)
	require.NoError(t, err)
	loaded, err := ReadDictionary(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func randomDictionary(t *testing.T, r *rand.Rand, n int, opts ...Option) (*Dictionary, map[string]uint64) {
	t.Helper()
	m := make(map[string]uint64, n)
	for len(m) < n {
		b := make([]byte, 1+r.IntN(12))
		for i := range b {
			b[i] = byte('a' + r.IntN(6))
		}
		m[string(b)] = r.Uint64N(1 << 40)
	}
	d, err := BuildFromMap(m, opts...)
	require.NoError(t, err)
	return d, m
}

func TestDictionaryGetBatch(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	metrics := &BasicMetricsCollector{}
	d, m := randomDictionary(t, r, 2000, WithConcurrency(4), WithMetricsCollector(metrics))

	terms := make([][]byte, 0, len(m)+100)
	for term := range m {
		terms = append(terms, []byte(term))
	}
	for i := range 100 {
		terms = append(terms, fmt.Appendf(nil, "missing-%d", i))
	}
	r.Shuffle(len(terms), func(i, j int) { terms[i], terms[j] = terms[j], terms[i] })

	res, err := d.GetBatch(context.Background(), terms)
	require.NoError(t, err)
	require.Len(t, res, len(terms))
	for i, term := range terms {
		want, ok := m[string(term)]
		assert.Equal(t, ok, res[i].Found, "%s", term)
		assert.Equal(t, want, res[i].Value, "%s", term)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(len(terms)), stats.BatchItems)
	assert.Equal(t, int64(len(m)), stats.BatchHits)

	res, err = d.GetBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.GetBatch(ctx, terms)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDictionaryRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	d, m := randomDictionary(t, r, 3000, WithPacking())

	keys := slices.Sorted(maps.Keys(m))
	assert.Equal(t, keys, termsOf(collect(d.All())))

	for range 200 {
		target := string([]byte{byte('a' + r.IntN(7)), byte('a' + r.IntN(7))})
		idx, _ := slices.BinarySearch(keys, target)
		e, ok, err := d.Ceil([]byte(target))
		require.NoError(t, err)
		if idx == len(keys) {
			assert.False(t, ok, target)
			continue
		}
		require.True(t, ok, target)
		assert.Equal(t, keys[idx], string(e.Term), target)
		assert.Equal(t, m[keys[idx]], e.Value)
	}
}

func TestDictionaryObservability(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	d := buildExample(t, WithLogger(logger), WithMetricsCollector(metrics))
	_, _, err := d.Get([]byte("pop"))
	require.NoError(t, err)
	_, _, err = d.Get([]byte("nope"))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(len(exampleTerms)), stats.BuildTerms)
	assert.Equal(t, int64(2), stats.LookupCount)
	assert.Equal(t, int64(1), stats.LookupHits)

	assert.Contains(t, logs.String(), `"msg":"dictionary built"`)
	assert.Contains(t, logs.String(), `"msg":"fst built"`)

	_, err = NewDictionaryBuilder(WithLogger(logger), WithMetricsCollector(metrics)).Finish()
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().BuildErrors)
	assert.Contains(t, logs.String(), `"msg":"build failed"`)
}
