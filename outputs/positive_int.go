package outputs

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/lexfst/store"
)

// PositiveIntOutputs is the min/plus algebra over non-negative integers:
// Common is the minimum, Subtract the difference and Add the sum. Along any
// path the accumulated output never decreases, which makes FSTs over this
// algebra usable for reverse lookups and shortest-path searches.
type PositiveIntOutputs struct{}

var _ Outputs[uint64] = PositiveIntOutputs{}

// NewPositiveIntOutputs returns the non-negative integer algebra.
func NewPositiveIntOutputs() PositiveIntOutputs { return PositiveIntOutputs{} }

func (PositiveIntOutputs) Common(a, b uint64) uint64 { return min(a, b) }

// Subtract panics if inc is larger than output.
func (PositiveIntOutputs) Subtract(output, inc uint64) uint64 {
	if inc > output {
		panic(fmt.Sprintf("outputs: cannot subtract %d from %d", inc, output))
	}
	return output - inc
}

func (PositiveIntOutputs) Add(prefix, output uint64) uint64 { return prefix + output }

// Merge is not supported.
func (PositiveIntOutputs) Merge(a, _ uint64) (uint64, error) { return a, ErrMergeNotSupported }

func (PositiveIntOutputs) Write(v uint64, out store.DataOutput) error {
	return store.WriteVLong(out, v)
}

func (PositiveIntOutputs) WriteFinalOutput(v uint64, out store.DataOutput) error {
	return store.WriteVLong(out, v)
}

func (PositiveIntOutputs) Read(in store.DataInput) (uint64, error) { return store.ReadVLong(in) }

func (PositiveIntOutputs) ReadFinalOutput(in store.DataInput) (uint64, error) {
	return store.ReadVLong(in)
}

func (PositiveIntOutputs) NoOutput() uint64         { return 0 }
func (PositiveIntOutputs) IsNoOutput(v uint64) bool { return v == 0 }
func (PositiveIntOutputs) Equal(a, b uint64) bool   { return a == b }
func (PositiveIntOutputs) Hash(v uint64) uint64     { return v ^ v>>32 }
func (PositiveIntOutputs) String(v uint64) string   { return strconv.FormatUint(v, 10) }

// Compare orders outputs ascending; it is the natural comparator for
// shortest-path searches over this algebra.
func (PositiveIntOutputs) Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
