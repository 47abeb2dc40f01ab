package outputs

import (
	"github.com/hupe1980/lexfst/store"
)

// Pair holds one output from each of two algebras.
type Pair[A, B any] struct {
	Output1 A
	Output2 B
}

// PairOutputs composes two algebras component-wise.
type PairOutputs[A, B any] struct {
	outputs1 Outputs[A]
	outputs2 Outputs[B]
	noOutput *Pair[A, B]
}

var _ Outputs[*Pair[int, int]] = (*PairOutputs[int, int])(nil)

// NewPairOutputs returns the product of outputs1 and outputs2.
func NewPairOutputs[A, B any](outputs1 Outputs[A], outputs2 Outputs[B]) *PairOutputs[A, B] {
	return &PairOutputs[A, B]{
		outputs1: outputs1,
		outputs2: outputs2,
		noOutput: &Pair[A, B]{Output1: outputs1.NoOutput(), Output2: outputs2.NoOutput()},
	}
}

// NewPair returns a pair, normalizing (no-output, no-output) to the shared
// no-output pair.
func (o *PairOutputs[A, B]) NewPair(a A, b B) *Pair[A, B] {
	if o.outputs1.IsNoOutput(a) {
		a = o.outputs1.NoOutput()
	}
	if o.outputs2.IsNoOutput(b) {
		b = o.outputs2.NoOutput()
	}
	if o.outputs1.IsNoOutput(a) && o.outputs2.IsNoOutput(b) {
		return o.noOutput
	}
	return &Pair[A, B]{Output1: a, Output2: b}
}

func (o *PairOutputs[A, B]) Common(a, b *Pair[A, B]) *Pair[A, B] {
	return o.NewPair(o.outputs1.Common(a.Output1, b.Output1), o.outputs2.Common(a.Output2, b.Output2))
}

func (o *PairOutputs[A, B]) Subtract(output, inc *Pair[A, B]) *Pair[A, B] {
	return o.NewPair(o.outputs1.Subtract(output.Output1, inc.Output1), o.outputs2.Subtract(output.Output2, inc.Output2))
}

func (o *PairOutputs[A, B]) Add(prefix, output *Pair[A, B]) *Pair[A, B] {
	return o.NewPair(o.outputs1.Add(prefix.Output1, output.Output1), o.outputs2.Add(prefix.Output2, output.Output2))
}

// Merge merges both components; it fails if either algebra cannot merge.
func (o *PairOutputs[A, B]) Merge(a, b *Pair[A, B]) (*Pair[A, B], error) {
	m1, err := o.outputs1.Merge(a.Output1, b.Output1)
	if err != nil {
		return a, err
	}
	m2, err := o.outputs2.Merge(a.Output2, b.Output2)
	if err != nil {
		return a, err
	}
	return o.NewPair(m1, m2), nil
}

func (o *PairOutputs[A, B]) Write(v *Pair[A, B], out store.DataOutput) error {
	if err := o.outputs1.Write(v.Output1, out); err != nil {
		return err
	}
	return o.outputs2.Write(v.Output2, out)
}

func (o *PairOutputs[A, B]) WriteFinalOutput(v *Pair[A, B], out store.DataOutput) error {
	return o.Write(v, out)
}

func (o *PairOutputs[A, B]) Read(in store.DataInput) (*Pair[A, B], error) {
	a, err := o.outputs1.Read(in)
	if err != nil {
		return nil, err
	}
	b, err := o.outputs2.Read(in)
	if err != nil {
		return nil, err
	}
	return o.NewPair(a, b), nil
}

func (o *PairOutputs[A, B]) ReadFinalOutput(in store.DataInput) (*Pair[A, B], error) {
	return o.Read(in)
}

func (o *PairOutputs[A, B]) NoOutput() *Pair[A, B] { return o.noOutput }

// IsNoOutput compares by identity; NewPair guarantees the empty pair is
// always the shared instance.
func (o *PairOutputs[A, B]) IsNoOutput(v *Pair[A, B]) bool { return v == o.noOutput }

func (o *PairOutputs[A, B]) Equal(a, b *Pair[A, B]) bool {
	return a == b || (o.outputs1.Equal(a.Output1, b.Output1) && o.outputs2.Equal(a.Output2, b.Output2))
}

func (o *PairOutputs[A, B]) Hash(v *Pair[A, B]) uint64 {
	return o.outputs1.Hash(v.Output1)*31 + o.outputs2.Hash(v.Output2)
}

func (o *PairOutputs[A, B]) String(v *Pair[A, B]) string {
	return "<pair:" + o.outputs1.String(v.Output1) + "," + o.outputs2.String(v.Output2) + ">"
}

// Outputs1 returns the first component algebra.
func (o *PairOutputs[A, B]) Outputs1() Outputs[A] { return o.outputs1 }

// Outputs2 returns the second component algebra.
func (o *PairOutputs[A, B]) Outputs2() Outputs[B] { return o.outputs2 }
