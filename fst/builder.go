package fst

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/hupe1980/lexfst/outputs"
)

// DefaultBytesPageBits is the default log2 page size of the byte buffer.
const DefaultBytesPageBits = 15

// BuilderOption configures a Builder.
type BuilderOption func(o *builderOptions)

type builderOptions struct {
	minSuffixCount1         int64
	minSuffixCount2         int64
	doShareSuffix           bool
	doShareNonSingletonNode bool
	shareMaxTailLength      int
	doPack                  bool
	allowArrayArcs          bool
	bytesPageBits           int
	logger                  *slog.Logger
}

// WithMinSuffixCount1 prunes nodes traversed by fewer than n inputs.
func WithMinSuffixCount1(n int) BuilderOption {
	return func(o *builderOptions) { o.minSuffixCount1 = int64(n) }
}

// WithMinSuffixCount2 prunes nodes whose parent is traversed by fewer than n
// inputs. With n == 1 only the distinguishing prefix of each input is kept.
func WithMinSuffixCount2(n int) BuilderOption {
	return func(o *builderOptions) { o.minSuffixCount2 = int64(n) }
}

// WithSuffixSharing toggles sharing of identical suffixes (minimization).
func WithSuffixSharing(enabled bool) BuilderOption {
	return func(o *builderOptions) { o.doShareSuffix = enabled }
}

// WithShareNonSingletonNodes allows sharing nodes with more than one arc.
// This costs more memory during the build but yields a smaller FST.
func WithShareNonSingletonNodes(enabled bool) BuilderOption {
	return func(o *builderOptions) { o.doShareNonSingletonNode = enabled }
}

// WithShareMaxTailLength limits suffix sharing to tails of at most n labels.
func WithShareMaxTailLength(n int) BuilderOption {
	return func(o *builderOptions) { o.shareMaxTailLength = n }
}

// WithPacking packs the FST on Finish.
func WithPacking(enabled bool) BuilderOption {
	return func(o *builderOptions) { o.doPack = enabled }
}

// WithArrayArcs toggles the fixed-array encoding for wide nodes.
func WithArrayArcs(enabled bool) BuilderOption {
	return func(o *builderOptions) { o.allowArrayArcs = enabled }
}

// WithBytesPageBits sets the log2 page size of the byte buffer.
func WithBytesPageBits(bits int) BuilderOption {
	return func(o *builderOptions) { o.bytesPageBits = bits }
}

// WithLogger sets the logger used for build summaries.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(o *builderOptions) { o.logger = logger }
}

// Builder builds a minimal FST from inputs added in ascending order. A
// Builder is not safe for concurrent use, and after any error it must be
// discarded.
type Builder[T any] struct {
	opts    builderOptions
	fst     *FST[T]
	outputs outputs.Outputs[T]
	dedup   *nodeHash[T]

	lastInput []int
	frontier  []*uncompiledNode[T]

	termCount int64
	scratch   []int
}

// NewBuilder returns a Builder for the given alphabet and output algebra.
// Without options the FST is fully minimized, not pruned and not packed.
func NewBuilder[T any](inputType InputType, outs outputs.Outputs[T], optFns ...BuilderOption) *Builder[T] {
	opts := builderOptions{
		doShareSuffix:           true,
		doShareNonSingletonNode: true,
		shareMaxTailLength:      math.MaxInt32,
		allowArrayArcs:          true,
		bytesPageBits:           DefaultBytesPageBits,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.bytesPageBits < 1 || opts.bytesPageBits > maxBlockBits {
		opts.bytesPageBits = DefaultBytesPageBits
	}

	b := &Builder[T]{
		opts:     opts,
		outputs:  outs,
		fst:      newFST(inputType, outs, opts.doPack, opts.allowArrayArcs, opts.bytesPageBits),
		frontier: make([]*uncompiledNode[T], 10),
	}
	if opts.doShareSuffix {
		b.dedup = newNodeHash(b.fst)
	}
	for i := range b.frontier {
		b.frontier[i] = newUncompiledNode(outs, i)
	}
	return b
}

// TermCount returns the number of inputs added.
func (b *Builder[T]) TermCount() int64 { return b.termCount }

// Prunes reports whether the builder drops rare suffixes, in which case the
// FST accepts a different key set than the inputs added.
func (b *Builder[T]) Prunes() bool {
	return b.opts.minSuffixCount1 > 0 || b.opts.minSuffixCount2 > 0
}

// NodeCount returns the number of nodes compiled so far, including the
// implicit stop nodes.
func (b *Builder[T]) NodeCount() int64 { return 1 + b.fst.nodeCount }

// ArcCount returns the number of arcs compiled so far.
func (b *Builder[T]) ArcCount() int64 { return b.fst.arcCount }

// MappedStateCount returns the number of distinct nodes held by the suffix
// table.
func (b *Builder[T]) MappedStateCount() int64 {
	if b.dedup == nil {
		return 0
	}
	return int64(b.dedup.count)
}

// AddBytes adds a byte-labeled input.
func (b *Builder[T]) AddBytes(input []byte, output T) error {
	b.scratch = ToInts(input, b.scratch)
	return b.Add(b.scratch, output)
}

// AddString adds s as UTF-8 bytes, UTF-16 code units or code points,
// depending on the input type.
func (b *Builder[T]) AddString(s string, output T) error {
	switch b.fst.inputType {
	case InputByte1:
		b.scratch = ToInts([]byte(s), b.scratch)
	case InputByte2:
		b.scratch = ToUTF16(s, b.scratch)
	default:
		b.scratch = ToUTF32(s, b.scratch)
	}
	return b.Add(b.scratch, output)
}

// Add adds input with its output. Inputs must be added in ascending order;
// adding the same input again merges the outputs.
func (b *Builder[T]) Add(input []int, output T) error {
	if b.outputs.IsNoOutput(output) {
		output = b.outputs.NoOutput()
	}
	if slices.Compare(input, b.lastInput) < 0 {
		return ErrOutOfOrder
	}
	maxLabel := b.fst.inputType.maxLabel()
	for _, label := range input {
		if label < 0 || label > maxLabel {
			return ErrInvalidLabel
		}
	}
	b.termCount++

	if len(input) == 0 {
		// Finality of the root is carried by the incoming arc in the FST
		// format, so the empty input is kept out of band.
		b.frontier[0].inputCount++
		b.frontier[0].isFinal = true
		return b.fst.setEmptyOutput(output)
	}

	// Shared prefix with the previous input.
	pos := 0
	stop := min(len(b.lastInput), len(input))
	for {
		b.frontier[pos].inputCount++
		if pos >= stop || b.lastInput[pos] != input[pos] {
			break
		}
		pos++
	}
	prefixLenPlus1 := pos + 1

	for len(b.frontier) < len(input)+1 {
		b.frontier = append(b.frontier, newUncompiledNode(b.outputs, len(b.frontier)))
	}

	// Freeze the suffix of the previous input that this one does not share.
	if err := b.freezeTail(prefixLenPlus1); err != nil {
		return err
	}

	for idx := prefixLenPlus1; idx <= len(input); idx++ {
		b.frontier[idx-1].addArc(input[idx-1], b.frontier[idx])
		b.frontier[idx].inputCount++
	}

	sameInput := len(b.lastInput) == len(input) && prefixLenPlus1 == len(input)+1
	lastNode := b.frontier[len(input)]
	if !sameInput {
		lastNode.isFinal = true
		lastNode.output = b.outputs.NoOutput()
	}

	// Push conflicting outputs forward, only as far as needed.
	for idx := 1; idx < prefixLenPlus1; idx++ {
		n := b.frontier[idx]
		parent := b.frontier[idx-1]

		lastOutput := parent.lastOutput()
		commonPrefix := b.outputs.NoOutput()
		if !b.outputs.IsNoOutput(lastOutput) {
			commonPrefix = b.outputs.Common(output, lastOutput)
			wordSuffix := b.outputs.Subtract(lastOutput, commonPrefix)
			parent.setLastOutput(commonPrefix)
			n.prependOutput(wordSuffix)
		}
		output = b.outputs.Subtract(output, commonPrefix)
	}

	if sameInput {
		merged, err := b.outputs.Merge(lastNode.output, output)
		if err != nil {
			return err
		}
		lastNode.output = merged
	} else {
		// The new arc is private to this input; it takes the leftover.
		b.frontier[prefixLenPlus1-1].setLastOutput(output)
	}

	b.lastInput = append(b.lastInput[:0], input...)
	return nil
}

// freezeTail compiles or prunes the frontier nodes of the previous input
// deeper than prefixLenPlus1-1.
func (b *Builder[T]) freezeTail(prefixLenPlus1 int) error {
	minSuffix1, minSuffix2 := b.opts.minSuffixCount1, b.opts.minSuffixCount2
	downTo := max(1, prefixLenPlus1)
	for idx := len(b.lastInput); idx >= downTo; idx-- {
		doPrune, doCompile := false, false

		n := b.frontier[idx]
		parent := b.frontier[idx-1]

		switch {
		case n.inputCount < minSuffix1:
			doPrune = true
			doCompile = true
		case idx > prefixLenPlus1:
			// The parent is about to be compiled; if it does not make the
			// cut, neither does this node. With minSuffixCount2 == 1 only
			// the part up to the distinguishing edge is kept.
			doPrune = parent.inputCount < minSuffix2 || (minSuffix2 == 1 && parent.inputCount == 1 && idx > 1)
			doCompile = true
		default:
			// Undecided unless pruning is off.
			doCompile = minSuffix2 == 0
		}

		if n.inputCount < minSuffix2 || (minSuffix2 == 1 && n.inputCount == 1 && idx > 1) {
			for i := range n.numArcs {
				if target, ok := n.arcs[i].target.(*uncompiledNode[T]); ok {
					target.clear()
				}
			}
			n.numArcs = 0
		}

		if doPrune {
			n.clear()
			parent.deleteLast()
			continue
		}

		if minSuffix2 != 0 {
			if err := b.compileAllTargets(n, len(b.lastInput)-idx); err != nil {
				return err
			}
		}
		nextFinalOutput := n.output

		// Dead ends are made final; enumeration cannot cope with
		// non-final leaves.
		isFinal := n.isFinal || n.numArcs == 0

		if doCompile {
			compiled, err := b.compileNode(n, 1+len(b.lastInput)-idx)
			if err != nil {
				return err
			}
			parent.replaceLast(compiled, nextFinalOutput, isFinal)
		} else {
			// Keep n in play until it is either compiled or pruned; the
			// frontier gets a fresh node for this depth.
			parent.replaceLast(n, nextFinalOutput, isFinal)
			b.frontier[idx] = newUncompiledNode(b.outputs, idx)
		}
	}
	return nil
}

func (b *Builder[T]) compileNode(n *uncompiledNode[T], tailLength int) (compiledNode, error) {
	var (
		node int64
		err  error
	)
	if b.dedup != nil && (b.opts.doShareNonSingletonNode || n.numArcs <= 1) &&
		tailLength <= b.opts.shareMaxTailLength && n.numArcs != 0 {
		node, err = b.dedup.add(n)
	} else {
		node, err = b.fst.addNode(n)
	}
	if err != nil {
		return compiledNode{}, err
	}
	n.clear()
	return compiledNode{node: node}, nil
}

func (b *Builder[T]) compileAllTargets(n *uncompiledNode[T], tailLength int) error {
	for i := range n.numArcs {
		arc := &n.arcs[i]
		target, ok := arc.target.(*uncompiledNode[T])
		if !ok {
			continue
		}
		if target.numArcs == 0 {
			arc.isFinal = true
			target.isFinal = true
		}
		compiled, err := b.compileNode(target, tailLength-1)
		if err != nil {
			return err
		}
		arc.target = compiled
	}
	return nil
}

// Finish compiles the remaining frontier and returns the FST. It returns
// (nil, nil) when every input was pruned away.
func (b *Builder[T]) Finish() (*FST[T], error) {
	root := b.frontier[0]
	minSuffix1, minSuffix2 := b.opts.minSuffixCount1, b.opts.minSuffixCount2

	if err := b.freezeTail(0); err != nil {
		return nil, err
	}
	if root.inputCount < minSuffix1 || root.inputCount < minSuffix2 || root.numArcs == 0 {
		if !b.fst.hasEmptyOutput {
			return nil, nil
		}
		if minSuffix1 > 0 || minSuffix2 > 0 {
			// The empty input was pruned too.
			return nil, nil
		}
	} else if minSuffix2 != 0 {
		if err := b.compileAllTargets(root, len(b.lastInput)); err != nil {
			return nil, err
		}
	}

	compiled, err := b.compileNode(root, len(b.lastInput))
	if err != nil {
		return nil, err
	}
	if err := b.fst.finish(compiled.node); err != nil {
		return nil, err
	}

	if b.opts.logger != nil {
		b.opts.logger.LogAttrs(context.Background(), slog.LevelDebug, "fst built",
			slog.Int64("terms", b.termCount),
			slog.Int64("nodes", b.fst.nodeCount),
			slog.Int64("arcs", b.fst.arcCount),
			slog.Int64("bytes", b.fst.SizeInBytes()),
		)
	}

	if !b.opts.doPack {
		return b.fst, nil
	}
	packed, err := b.fst.Pack(3, max(10, int(b.fst.nodeCount/4)))
	if err != nil {
		return nil, err
	}
	if b.opts.logger != nil {
		b.opts.logger.LogAttrs(context.Background(), slog.LevelDebug, "fst packed",
			slog.Int64("bytes", packed.SizeInBytes()),
		)
	}
	return packed, nil
}
