package fst

import "github.com/hupe1980/lexfst/outputs"

// node is a builder-side arc target: either a compiledNode already frozen
// into the FST or an *uncompiledNode still on the frontier.
type node interface {
	isCompiled() bool
}

type compiledNode struct {
	node int64
}

func (compiledNode) isCompiled() bool { return true }

type builderArc[T any] struct {
	label           int
	target          node
	isFinal         bool
	output          T
	nextFinalOutput T
}

// uncompiledNode is a node on the builder frontier that has not yet been
// frozen into the FST.
type uncompiledNode[T any] struct {
	outputs outputs.Outputs[T]
	arcs    []builderArc[T]
	numArcs int
	isFinal bool
	output  T
	// Number of inputs passing through this node.
	inputCount int64
	// Distance from the root; fixed for the lifetime of the node.
	depth int
}

func newUncompiledNode[T any](outs outputs.Outputs[T], depth int) *uncompiledNode[T] {
	return &uncompiledNode[T]{
		outputs: outs,
		arcs:    make([]builderArc[T], 1),
		output:  outs.NoOutput(),
		depth:   depth,
	}
}

func (*uncompiledNode[T]) isCompiled() bool { return false }

func (n *uncompiledNode[T]) clear() {
	n.numArcs = 0
	n.isFinal = false
	n.output = n.outputs.NoOutput()
	n.inputCount = 0
}

func (n *uncompiledNode[T]) lastOutput() T {
	return n.arcs[n.numArcs-1].output
}

func (n *uncompiledNode[T]) addArc(label int, target node) {
	if n.numArcs == len(n.arcs) {
		n.arcs = append(n.arcs, make([]builderArc[T], len(n.arcs)/2+1)...)
	}
	noOutput := n.outputs.NoOutput()
	n.arcs[n.numArcs] = builderArc[T]{
		label:           label,
		target:          target,
		output:          noOutput,
		nextFinalOutput: noOutput,
	}
	n.numArcs++
}

func (n *uncompiledNode[T]) replaceLast(target node, nextFinalOutput T, isFinal bool) {
	arc := &n.arcs[n.numArcs-1]
	arc.target = target
	arc.nextFinalOutput = nextFinalOutput
	arc.isFinal = isFinal
}

func (n *uncompiledNode[T]) deleteLast() {
	n.numArcs--
	n.arcs[n.numArcs] = builderArc[T]{}
}

func (n *uncompiledNode[T]) setLastOutput(v T) {
	n.arcs[n.numArcs-1].output = v
}

// prependOutput pushes prefix onto every arc and the final output.
func (n *uncompiledNode[T]) prependOutput(prefix T) {
	for i := range n.numArcs {
		n.arcs[i].output = n.outputs.Add(prefix, n.arcs[i].output)
	}
	if n.isFinal {
		n.output = n.outputs.Add(prefix, n.output)
	}
}
