package lexfst

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lexfst/fst"
	"github.com/hupe1980/lexfst/outputs"
)

// Entry is a term with its value.
type Entry struct {
	Term  []byte
	Value uint64
}

// Lookup is the result of one GetBatch lookup.
type Lookup struct {
	Value uint64
	Found bool
}

// Stats describes the shape of a dictionary's automaton.
type Stats struct {
	Terms     int64
	Nodes     int64
	Arcs      int64
	SizeBytes int64
	Packed    bool
}

// DictionaryBuilder builds a Dictionary from terms added in ascending byte
// order. It is not safe for concurrent use.
type DictionaryBuilder struct {
	opts    options
	builder *fst.Builder[uint64]
	start   time.Time

	last      []byte
	lastValue uint64
	added     bool
	monotonic bool
	err       error
}

// NewDictionaryBuilder returns an empty builder.
func NewDictionaryBuilder(optFns ...Option) *DictionaryBuilder {
	o := applyOptions(optFns)

	bopts := []fst.BuilderOption{fst.WithLogger(o.logger.Logger)}
	if o.pack {
		bopts = append(bopts, fst.WithPacking(true))
	}
	bopts = append(bopts, o.builderOptions...)

	return &DictionaryBuilder{
		opts:      o,
		builder:   fst.NewBuilder[uint64](fst.InputByte1, outputs.NewPositiveIntOutputs(), bopts...),
		start:     time.Now(),
		monotonic: true,
	}
}

// Add adds term with value. Terms must be added in strictly ascending byte
// order. An out-of-order or duplicate term is rejected without affecting
// the builder; any other error is permanent.
func (b *DictionaryBuilder) Add(term []byte, value uint64) error {
	if b.err != nil {
		return b.err
	}
	if b.added {
		switch c := bytes.Compare(term, b.last); {
		case c == 0:
			return &TermError{Term: bytes.Clone(term), cause: ErrDuplicateTerm}
		case c < 0:
			return &TermError{Term: bytes.Clone(term), cause: ErrOutOfOrder}
		}
		if value < b.lastValue {
			b.monotonic = false
		}
	}

	if err := b.builder.AddBytes(term, value); err != nil {
		b.err = &TermError{Term: bytes.Clone(term), cause: translateError(err)}
		return b.err
	}
	b.last = append(b.last[:0], term...)
	b.lastValue = value
	b.added = true
	return nil
}

// AddString adds term as UTF-8 bytes.
func (b *DictionaryBuilder) AddString(term string, value uint64) error {
	return b.Add([]byte(term), value)
}

// Len returns the number of terms added so far.
func (b *DictionaryBuilder) Len() int {
	return int(b.builder.TermCount())
}

// Finish compiles the dictionary. The builder must not be used afterwards.
func (b *DictionaryBuilder) Finish() (*Dictionary, error) {
	d, err := b.finish()
	terms := b.builder.TermCount()
	b.opts.metricsCollector.RecordBuild(terms, time.Since(b.start), err)
	if d != nil {
		b.opts.logger.LogBuild(context.Background(), terms, d.SizeInBytes(), d.fst.Packed(), err)
	} else {
		b.opts.logger.LogBuild(context.Background(), terms, 0, false, err)
	}
	return d, err
}

func (b *DictionaryBuilder) finish() (*Dictionary, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.added {
		return nil, ErrEmptyDictionary
	}
	f, err := b.builder.Finish()
	if err != nil {
		b.err = translateError(err)
		return nil, b.err
	}
	if f == nil {
		// Every term was pruned.
		return nil, ErrEmptyDictionary
	}
	if !b.builder.Prunes() {
		return newDictionary(f, b.builder.TermCount(), b.monotonic, b.opts), nil
	}
	// Pruning keeps prefixes rather than added terms, so the accepted keys
	// are counted and reverse lookups are off.
	terms, err := countKeys(f)
	if err != nil {
		b.err = translateError(err)
		return nil, b.err
	}
	return newDictionary(f, terms, false, b.opts), nil
}

func countKeys(f *fst.FST[uint64]) (int64, error) {
	var n int64
	e := fst.NewBytesEnum(f)
	for {
		res, err := e.Next()
		if err != nil {
			return 0, err
		}
		if res == nil {
			return n, nil
		}
		n++
	}
}

// BuildFromMap builds a dictionary from an unordered map.
func BuildFromMap(m map[string]uint64, optFns ...Option) (*Dictionary, error) {
	b := NewDictionaryBuilder(optFns...)
	for _, term := range slices.Sorted(maps.Keys(m)) {
		if err := b.AddString(term, m[term]); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// BuildOrdinals builds a dictionary mapping each distinct term to its rank
// in byte order. Such a dictionary supports TermForValue.
func BuildOrdinals(terms []string, optFns ...Option) (*Dictionary, error) {
	sorted := slices.Compact(slices.Sorted(slices.Values(terms)))
	b := NewDictionaryBuilder(optFns...)
	for i, term := range sorted {
		if err := b.AddString(term, uint64(i)); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// Dictionary is an immutable map from byte-string terms to uint64 values,
// stored as a minimal finite-state transducer. It is safe for concurrent use.
type Dictionary struct {
	fst       *fst.FST[uint64]
	terms     int64
	monotonic bool
	opts      options

	// Memory reserved with the resource controller on load.
	reserved  int64
	closeOnce sync.Once
}

func newDictionary(f *fst.FST[uint64], terms int64, monotonic bool, o options) *Dictionary {
	return &Dictionary{
		fst:       f,
		terms:     terms,
		monotonic: monotonic,
		opts:      o,
	}
}

// Len returns the number of terms the dictionary accepts. With pruning
// builder options this differs from the number of terms added.
func (d *Dictionary) Len() int { return int(d.terms) }

// SizeInBytes returns the size of the automaton's byte buffer.
func (d *Dictionary) SizeInBytes() int64 { return d.fst.SizeInBytes() }

// FST exposes the underlying automaton for custom traversals.
func (d *Dictionary) FST() *fst.FST[uint64] { return d.fst }

// Stats returns the automaton's node, arc and size counters.
func (d *Dictionary) Stats() Stats {
	return Stats{
		Terms:     d.terms,
		Nodes:     d.fst.NodeCount(),
		Arcs:      d.fst.ArcCount(),
		SizeBytes: d.fst.SizeInBytes(),
		Packed:    d.fst.Packed(),
	}
}

// Close releases memory reserved with the resource controller. The
// dictionary must not be used afterwards. Close is idempotent.
func (d *Dictionary) Close() error {
	d.closeOnce.Do(func() {
		d.opts.controller.ReleaseMemory(d.reserved)
		d.reserved = 0
	})
	return nil
}

// Get returns the value stored for term.
func (d *Dictionary) Get(term []byte) (uint64, bool, error) {
	start := time.Now()
	v, ok, err := fst.GetBytes(d.fst, term)
	err = translateError(err)
	d.opts.metricsCollector.RecordLookup(ok, time.Since(start), err)
	return v, ok, err
}

// Contains reports whether term is present.
func (d *Dictionary) Contains(term []byte) (bool, error) {
	_, ok, err := d.Get(term)
	return ok, err
}

// Ceil returns the smallest entry whose term is >= term.
func (d *Dictionary) Ceil(term []byte) (Entry, bool, error) {
	res, err := fst.NewBytesEnum(d.fst).SeekCeil(term)
	return toEntry(res, err)
}

// Floor returns the largest entry whose term is <= term.
func (d *Dictionary) Floor(term []byte) (Entry, bool, error) {
	res, err := fst.NewBytesEnum(d.fst).SeekFloor(term)
	return toEntry(res, err)
}

func toEntry(res *fst.InputOutput[[]byte, uint64], err error) (Entry, bool, error) {
	if err != nil {
		return Entry{}, false, translateError(err)
	}
	if res == nil {
		return Entry{}, false, nil
	}
	return Entry{Term: bytes.Clone(res.Input), Value: res.Output}, true, nil
}

// All iterates over every entry in term order. The yielded term is reused
// between iterations. Iteration stops early on a read error, which is
// logged; use Cursor to observe errors.
func (d *Dictionary) All() iter.Seq2[[]byte, uint64] {
	return d.Range(nil, nil)
}

// Range iterates over entries with from <= term < to in term order. A nil
// bound is open. The yielded term is reused between iterations.
func (d *Dictionary) Range(from, to []byte) iter.Seq2[[]byte, uint64] {
	return func(yield func([]byte, uint64) bool) {
		c := d.Cursor()
		if from != nil {
			c.Seek(from)
		}
		for c.Next() {
			if to != nil && bytes.Compare(c.Term(), to) >= 0 {
				return
			}
			if !yield(c.Term(), c.Value()) {
				return
			}
		}
		if err := c.Err(); err != nil {
			d.opts.logger.Error("iteration stopped", "error", err)
		}
	}
}

// Prefix iterates over entries whose term starts with prefix.
func (d *Dictionary) Prefix(prefix []byte) iter.Seq2[[]byte, uint64] {
	return d.Range(prefix, prefixEnd(prefix))
}

// prefixEnd returns the smallest term greater than every term starting
// with prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for len(end) > 0 {
		last := len(end) - 1
		if end[last] < 0xff {
			end[last]++
			return end
		}
		end = end[:last]
	}
	return nil
}

// PrefixValues collects the values of all terms starting with prefix.
func (d *Dictionary) PrefixValues(prefix []byte) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	end := prefixEnd(prefix)
	c := d.Cursor()
	c.Seek(prefix)
	for c.Next() {
		if end != nil && bytes.Compare(c.Term(), end) >= 0 {
			break
		}
		bm.Add(c.Value())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return bm, nil
}

// TopN returns up to n entries starting with prefix that have the smallest
// values, ordered by value then term. complete is false if better entries
// may have been missed.
func (d *Dictionary) TopN(prefix []byte, n int) (entries []Entry, complete bool, err error) {
	if n <= 0 {
		return nil, false, ErrInvalidN
	}

	var arc fst.Arc[uint64]
	d.fst.FirstArc(&arc)
	in := d.fst.BytesReader()
	var output uint64
	for _, c := range prefix {
		found, err := d.fst.FindTargetArc(int(c), &arc, &arc, in)
		if err != nil {
			return nil, false, translateError(err)
		}
		if found == nil {
			return nil, true, nil
		}
		output += arc.Output
	}

	s := fst.NewTopNSearcher(d.fst, n, n, cmp.Compare[uint64])
	if err := s.AddStartPaths(&arc, output, true, fst.ToInts(prefix, nil)); err != nil {
		return nil, false, translateError(err)
	}
	res, err := s.Search()
	if err != nil {
		return nil, false, translateError(err)
	}

	entries = make([]Entry, 0, len(res.TopN))
	for _, r := range res.TopN {
		entries = append(entries, Entry{Term: fst.ToBytes(r.Input), Value: r.Output})
	}
	return entries, res.IsComplete, nil
}

// TermForValue returns the term stored with value v. It requires values
// that never decrease in term order, such as those of BuildOrdinals, and
// returns ErrNotMonotonic otherwise.
func (d *Dictionary) TermForValue(v uint64) ([]byte, bool, error) {
	if !d.monotonic {
		return nil, false, ErrNotMonotonic
	}
	labels, ok, err := fst.GetByOutput(d.fst, v)
	if err != nil || !ok {
		return nil, false, translateError(err)
	}
	return fst.ToBytes(labels), true, nil
}

// batchChunk is the smallest number of terms handed to one goroutine.
const batchChunk = 64

// GetBatch looks up terms concurrently. Results are in input order.
func (d *Dictionary) GetBatch(ctx context.Context, terms [][]byte) ([]Lookup, error) {
	start := time.Now()
	results := make([]Lookup, len(terms))

	workers := max(1, d.opts.concurrency)
	chunk := max(batchChunk, (len(terms)+workers-1)/workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(terms); lo += chunk {
		hi := min(lo+chunk, len(terms))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				v, ok, err := fst.GetBytes(d.fst, terms[i])
				if err != nil {
					return fmt.Errorf("term %q: %w", terms[i], translateError(err))
				}
				results[i] = Lookup{Value: v, Found: ok}
			}
			return nil
		})
	}
	err := g.Wait()

	found := 0
	if err == nil {
		for _, r := range results {
			if r.Found {
				found++
			}
		}
	}
	d.opts.metricsCollector.RecordBatch(len(terms), found, time.Since(start))
	d.opts.logger.LogBatch(ctx, len(terms), found, err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Cursor returns a cursor positioned before the first entry.
func (d *Dictionary) Cursor() *Cursor {
	return &Cursor{enum: fst.NewBytesEnum(d.fst)}
}

// Cursor walks a dictionary in term order. It is not safe for concurrent
// use.
type Cursor struct {
	enum *fst.BytesEnum[uint64]
	cur  *fst.InputOutput[[]byte, uint64]
	seek []byte
	err  error
	done bool
}

// Seek makes the next call to Next land on the smallest term >= term.
func (c *Cursor) Seek(term []byte) {
	c.seek = append(c.seek[:0], term...)
	if c.seek == nil {
		c.seek = []byte{}
	}
	c.done = false
}

// Next advances the cursor. It returns false at the end or on error.
func (c *Cursor) Next() bool {
	if c.done || c.err != nil {
		return false
	}
	var err error
	if c.seek != nil {
		c.cur, err = c.enum.SeekCeil(c.seek)
		c.seek = nil
	} else {
		c.cur, err = c.enum.Next()
	}
	if err != nil {
		c.err = translateError(err)
		c.cur = nil
	}
	if c.cur == nil {
		c.done = true
		return false
	}
	return true
}

// Term returns the current term. It is valid until the next call to Next.
func (c *Cursor) Term() []byte { return c.cur.Input }

// Value returns the current value.
func (c *Cursor) Value() uint64 { return c.cur.Output }

// Err returns the error that stopped the cursor, if any.
func (c *Cursor) Err() error { return c.err }
