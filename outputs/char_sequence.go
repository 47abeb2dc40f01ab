package outputs

import (
	"github.com/hupe1980/lexfst/store"
)

// CharSequenceOutputs is the algebra of character strings. Each rune is
// serialized as a vInt.
type CharSequenceOutputs struct {
	seq sequence[rune]
}

var _ Outputs[[]rune] = (*CharSequenceOutputs)(nil)

var charSequenceSingleton = &CharSequenceOutputs{
	seq: sequence[rune]{
		noOutput: []rune{},
		writeElem: func(out store.DataOutput, e rune) error {
			return store.WriteVInt(out, int(e))
		},
		readElem: func(in store.DataInput) (rune, error) {
			v, err := store.ReadVInt(in)
			return rune(v), err
		},
		hashElem: func(e rune) uint64 { return uint64(e) },
	},
}

// NewCharSequenceOutputs returns the shared char-sequence algebra.
func NewCharSequenceOutputs() *CharSequenceOutputs { return charSequenceSingleton }

func (o *CharSequenceOutputs) Common(a, b []rune) []rune          { return o.seq.common(a, b) }
func (o *CharSequenceOutputs) Subtract(output, inc []rune) []rune { return o.seq.subtract(output, inc) }
func (o *CharSequenceOutputs) Add(prefix, output []rune) []rune   { return o.seq.add(prefix, output) }

// Merge is not supported.
func (o *CharSequenceOutputs) Merge(a, _ []rune) ([]rune, error) { return a, ErrMergeNotSupported }

func (o *CharSequenceOutputs) Write(v []rune, out store.DataOutput) error { return o.seq.write(v, out) }
func (o *CharSequenceOutputs) WriteFinalOutput(v []rune, out store.DataOutput) error {
	return o.seq.write(v, out)
}
func (o *CharSequenceOutputs) Read(in store.DataInput) ([]rune, error) { return o.seq.read(in) }
func (o *CharSequenceOutputs) ReadFinalOutput(in store.DataInput) ([]rune, error) {
	return o.seq.read(in)
}

func (o *CharSequenceOutputs) NoOutput() []rune         { return o.seq.noOutput }
func (o *CharSequenceOutputs) IsNoOutput(v []rune) bool { return len(v) == 0 }
func (o *CharSequenceOutputs) Equal(a, b []rune) bool   { return o.seq.equal(a, b) }
func (o *CharSequenceOutputs) Hash(v []rune) uint64     { return o.seq.hash(v) }
func (o *CharSequenceOutputs) String(v []rune) string   { return string(v) }
