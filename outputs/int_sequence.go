package outputs

import (
	"fmt"

	"github.com/hupe1980/lexfst/store"
)

// IntSequenceOutputs is the algebra of non-negative int sequences.
type IntSequenceOutputs struct {
	seq sequence[int]
}

var _ Outputs[[]int] = (*IntSequenceOutputs)(nil)

var intSequenceSingleton = &IntSequenceOutputs{
	seq: sequence[int]{
		noOutput:  []int{},
		writeElem: store.WriteVInt,
		readElem:  store.ReadVInt,
		hashElem:  func(e int) uint64 { return uint64(e) },
	},
}

// NewIntSequenceOutputs returns the shared int-sequence algebra.
func NewIntSequenceOutputs() *IntSequenceOutputs { return intSequenceSingleton }

func (o *IntSequenceOutputs) Common(a, b []int) []int          { return o.seq.common(a, b) }
func (o *IntSequenceOutputs) Subtract(output, inc []int) []int { return o.seq.subtract(output, inc) }
func (o *IntSequenceOutputs) Add(prefix, output []int) []int   { return o.seq.add(prefix, output) }

// Merge is not supported.
func (o *IntSequenceOutputs) Merge(a, _ []int) ([]int, error) { return a, ErrMergeNotSupported }

func (o *IntSequenceOutputs) Write(v []int, out store.DataOutput) error { return o.seq.write(v, out) }
func (o *IntSequenceOutputs) WriteFinalOutput(v []int, out store.DataOutput) error {
	return o.seq.write(v, out)
}
func (o *IntSequenceOutputs) Read(in store.DataInput) ([]int, error) { return o.seq.read(in) }
func (o *IntSequenceOutputs) ReadFinalOutput(in store.DataInput) ([]int, error) {
	return o.seq.read(in)
}

func (o *IntSequenceOutputs) NoOutput() []int         { return o.seq.noOutput }
func (o *IntSequenceOutputs) IsNoOutput(v []int) bool { return len(v) == 0 }
func (o *IntSequenceOutputs) Equal(a, b []int) bool   { return o.seq.equal(a, b) }
func (o *IntSequenceOutputs) Hash(v []int) uint64     { return o.seq.hash(v) }
func (o *IntSequenceOutputs) String(v []int) string   { return fmt.Sprint(v) }
