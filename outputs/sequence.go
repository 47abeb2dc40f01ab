package outputs

import (
	"fmt"

	"github.com/hupe1980/lexfst/store"
)

// sequence implements the shared prefix algebra of the slice-valued outputs.
// The zero-length slice held in noOutput is the only no-output value handed
// out; every operation that empties a sequence returns it.
type sequence[E comparable] struct {
	noOutput  []E
	writeElem func(out store.DataOutput, e E) error
	readElem  func(in store.DataInput) (E, error)
	hashElem  func(e E) uint64
}

func (s *sequence[E]) common(a, b []E) []E {
	n := min(len(a), len(b))
	pos := 0
	for pos < n && a[pos] == b[pos] {
		pos++
	}
	switch {
	case pos == 0:
		return s.noOutput
	case pos == len(a):
		return a
	case pos == len(b):
		return b
	default:
		return a[:pos:pos]
	}
}

func (s *sequence[E]) subtract(output, inc []E) []E {
	if len(inc) == 0 {
		return output
	}
	if len(inc) == len(output) {
		return s.noOutput
	}
	if len(inc) > len(output) {
		panic(fmt.Sprintf("outputs: cannot subtract %d elements from sequence of %d", len(inc), len(output)))
	}
	return output[len(inc):]
}

func (s *sequence[E]) add(prefix, output []E) []E {
	if len(prefix) == 0 {
		return output
	}
	if len(output) == 0 {
		return prefix
	}
	res := make([]E, 0, len(prefix)+len(output))
	res = append(res, prefix...)
	return append(res, output...)
}

func (s *sequence[E]) write(v []E, out store.DataOutput) error {
	if err := store.WriteVInt(out, len(v)); err != nil {
		return err
	}
	for _, e := range v {
		if err := s.writeElem(out, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *sequence[E]) read(in store.DataInput) ([]E, error) {
	n, err := store.ReadVInt(in)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return s.noOutput, nil
	}
	res := make([]E, n)
	for i := range res {
		if res[i], err = s.readElem(in); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *sequence[E]) equal(a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *sequence[E]) hash(v []E) uint64 {
	h := uint64(0)
	for _, e := range v {
		h = 31*h + s.hashElem(e)
	}
	return h
}
