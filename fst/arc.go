package fst

import "fmt"

// Arc is a cursor over one transition of an FST. Arcs are reused by the read
// methods of [FST]; copy one with CopyFrom to keep it.
type Arc[T any] struct {
	// Label is the input label, or EndLabel for the virtual arc leaving a
	// final node.
	Label int
	// Output is the output contributed by this arc.
	Output T
	// NextFinalOutput is the output added when the target is accepted.
	NextFinalOutput T

	target int64
	flags  byte

	// From the node containing this arc.
	node int64

	// Address of the next arc for linear nodes, or the next node when this
	// is a virtual final arc.
	nextArc int64

	// Fixed-array nodes only.
	posArcsStart int64
	bytesPerArc  int
	arcIdx       int
	numArcs      int
}

// CopyFrom copies other into a and returns a.
func (a *Arc[T]) CopyFrom(other *Arc[T]) *Arc[T] {
	*a = *other
	return a
}

func (a *Arc[T]) flag(f byte) bool { return a.flags&f != 0 }

// IsFinal reports whether the arc leads to an accepting state.
func (a *Arc[T]) IsFinal() bool { return a.flag(bitFinalArc) }

// IsLast reports whether this is the last arc leaving its node.
func (a *Arc[T]) IsLast() bool { return a.flag(bitLastArc) }

// Target returns the address (or ordinal) of the node this arc leads to.
// Values of zero or below denote a node without arcs.
func (a *Arc[T]) Target() int64 { return a.target }

// HasTargetArcs reports whether the arc's target has outgoing arcs.
func (a *Arc[T]) HasTargetArcs() bool { return targetHasArcs(a) }

func (a *Arc[T]) String() string {
	s := fmt.Sprintf("node=%d target=%d label=%d", a.node, a.target, a.Label)
	if a.IsFinal() {
		s += " final"
	}
	if a.IsLast() {
		s += " last"
	}
	if a.flag(bitTargetNext) {
		s += " targetNext"
	}
	if a.flag(bitStopNode) {
		s += " stop"
	}
	if a.bytesPerArc != 0 {
		s += fmt.Sprintf(" arcArray(idx=%d of %d)", a.arcIdx, a.numArcs)
	}
	return s
}

// targetHasArcs reports whether the arc points at a node with arcs.
// Addresses 0 (non-final leaf) and -1 (final leaf) never hold a node.
func targetHasArcs[T any](a *Arc[T]) bool { return a.target > 0 }
