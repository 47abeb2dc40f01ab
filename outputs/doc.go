// Package outputs defines the output algebras an FST can attach to its arcs.
//
// An algebra supplies Common, Subtract and Add (prefix extraction, prefix
// removal and concatenation under the algebra's own partial order) plus the
// serialization of its values. Every algebra has one distinguished no-output
// value; operations that logically produce "nothing" return exactly that
// value, and IsNoOutput is the only supported way to test for it.
//
// Built-in algebras:
//
//   - NoOutputs: plain acceptors (FSA), every value is the no-output.
//   - ByteSequenceOutputs, CharSequenceOutputs, IntSequenceOutputs: sequences
//     joined by concatenation, Common is the longest common prefix.
//   - PositiveIntOutputs: non-negative integers under min/plus, suitable for
//     ordinals and weights.
//   - PairOutputs: two algebras composed component-wise.
package outputs
