package fst

import (
	"fmt"
	"math"

	"github.com/hupe1980/lexfst/outputs"
	"github.com/hupe1980/lexfst/store"
)

// InputType is the label alphabet of an FST.
type InputType byte

const (
	// InputByte1 labels are single bytes (0..255).
	InputByte1 InputType = iota
	// InputByte2 labels are 16-bit code units (0..65535).
	InputByte2
	// InputByte4 labels are non-negative ints, vInt encoded.
	InputByte4
)

func (t InputType) String() string {
	switch t {
	case InputByte1:
		return "BYTE1"
	case InputByte2:
		return "BYTE2"
	case InputByte4:
		return "BYTE4"
	default:
		return fmt.Sprintf("InputType(%d)", byte(t))
	}
}

// maxLabel returns the largest label representable by t.
func (t InputType) maxLabel() int {
	switch t {
	case InputByte1:
		return math.MaxUint8
	case InputByte2:
		return math.MaxUint16
	default:
		return math.MaxInt32
	}
}

const (
	bitFinalArc          byte = 1 << 0
	bitLastArc           byte = 1 << 1
	bitTargetNext        byte = 1 << 2
	bitStopNode          byte = 1 << 3
	bitArcHasOutput      byte = 1 << 4
	bitArcHasFinalOutput byte = 1 << 5
	// Packed FSTs only.
	bitTargetDelta byte = 1 << 6

	// A first byte equal to this marks a fixed-array node. No real arc can
	// carry a final output without also being final.
	arcsAsFixedArray = bitArcHasFinalOutput

	fixedArrayShallowDistance = 3
	fixedArrayNumArcsShallow  = 5
	fixedArrayNumArcsDeep     = 10

	rootArcCacheSize = 0x80
)

const (
	// EndLabel is the label of the virtual arc leaving a final node.
	EndLabel = -1

	finalEndNode    int64 = -1
	nonFinalEndNode int64 = 0
)

// FST is a compiled finite state transducer. After Finish or Load it is
// immutable and safe for concurrent readers that use their own arcs and
// BytesReaders.
type FST[T any] struct {
	inputType InputType
	outputs   outputs.Outputs[T]
	noOutput  T

	// Output of the empty input, if accepted.
	emptyOutput    T
	hasEmptyOutput bool

	bytes     *BytesStore
	startNode int64
	version   int

	// Set while building a packable FST; nodes are then ordinals.
	nodeAddress []int64
	inCounts    []int64

	packed           bool
	nodeRefToAddress []int64

	allowArrayArcs bool
	lastFrozenNode int64
	bytesPerArc    []int

	nodeCount          int64
	arcCount           int64
	arcWithOutputCount int64

	cachedRootArcs []*Arc[T]
}

func newFST[T any](inputType InputType, outs outputs.Outputs[T], willPack, allowArrayArcs bool, bytesPageBits int) *FST[T] {
	f := &FST[T]{
		inputType:      inputType,
		outputs:        outs,
		noOutput:       outs.NoOutput(),
		bytes:          NewBytesStore(bytesPageBits),
		startNode:      -1,
		version:        VersionCurrent,
		allowArrayArcs: allowArrayArcs,
	}
	// Pad so that no node lands on address 0, which means "no arcs".
	_ = f.bytes.WriteByte(0)
	if willPack {
		f.nodeAddress = make([]int64, 1, 64)
		f.inCounts = make([]int64, 1, 64)
	}
	return f
}

// newPackedFST returns an empty, forward-read FST used as the target of Pack.
func newPackedFST[T any](inputType InputType, outs outputs.Outputs[T], bytesPageBits int) *FST[T] {
	return &FST[T]{
		inputType: inputType,
		outputs:   outs,
		noOutput:  outs.NoOutput(),
		bytes:     NewBytesStore(bytesPageBits),
		startNode: -1,
		version:   VersionCurrent,
		packed:    true,
	}
}

// InputType returns the label alphabet.
func (f *FST[T]) InputType() InputType { return f.inputType }

// Outputs returns the output algebra.
func (f *FST[T]) Outputs() outputs.Outputs[T] { return f.outputs }

// EmptyOutput returns the output of the empty input, if it is accepted.
func (f *FST[T]) EmptyOutput() (T, bool) { return f.emptyOutput, f.hasEmptyOutput }

// NodeCount returns the number of compiled nodes.
func (f *FST[T]) NodeCount() int64 { return f.nodeCount }

// ArcCount returns the number of compiled arcs.
func (f *FST[T]) ArcCount() int64 { return f.arcCount }

// ArcWithOutputCount returns the number of arcs carrying an output.
func (f *FST[T]) ArcWithOutputCount() int64 { return f.arcWithOutputCount }

// Packed reports whether the FST uses the packed layout.
func (f *FST[T]) Packed() bool { return f.packed }

// SizeInBytes approximates the memory held by the FST.
func (f *FST[T]) SizeInBytes() int64 {
	size := f.bytes.Position()
	size += 8 * int64(len(f.nodeRefToAddress)+len(f.nodeAddress)+len(f.inCounts))
	return size
}

func (f *FST[T]) String() string {
	return fmt.Sprintf("FST(input=%s, output=%T, packed=%t, nodes=%d, arcs=%d)",
		f.inputType, f.outputs, f.packed, f.nodeCount, f.arcCount)
}

func (f *FST[T]) setEmptyOutput(v T) error {
	if f.hasEmptyOutput {
		merged, err := f.outputs.Merge(f.emptyOutput, v)
		if err != nil {
			return err
		}
		f.emptyOutput = merged
		return nil
	}
	f.emptyOutput = v
	f.hasEmptyOutput = true
	return nil
}

func (f *FST[T]) finish(newStartNode int64) error {
	if f.startNode != -1 {
		return ErrAlreadyFinished
	}
	if newStartNode == finalEndNode && f.hasEmptyOutput {
		newStartNode = 0
	}
	f.startNode = newStartNode
	f.bytes.finish()
	return f.cacheRootArcs()
}

func (f *FST[T]) nodeAddressOf(node int64) int64 {
	if f.nodeAddress != nil {
		return f.nodeAddress[node]
	}
	return node
}

// BytesReader returns a reader positioned for this FST's layout.
func (f *FST[T]) BytesReader() BytesReader {
	if f.packed {
		return f.bytes.ForwardReader()
	}
	return f.bytes.ReverseReader()
}

func (f *FST[T]) cacheRootArcs() error {
	f.cachedRootArcs = make([]*Arc[T], rootArcCacheSize)
	arc := f.FirstArc(&Arc[T]{})
	if !targetHasArcs(arc) {
		return nil
	}
	in := f.BytesReader()
	if _, err := f.ReadFirstRealTargetArc(arc.target, arc, in); err != nil {
		return err
	}
	for arc.Label < len(f.cachedRootArcs) {
		f.cachedRootArcs[arc.Label] = new(Arc[T]).CopyFrom(arc)
		if arc.IsLast() {
			break
		}
		if _, err := f.ReadNextRealArc(arc, in); err != nil {
			return err
		}
	}
	return nil
}

func (f *FST[T]) writeLabel(out store.DataOutput, label int) error {
	switch f.inputType {
	case InputByte1:
		return out.WriteByte(byte(label))
	case InputByte2:
		return store.WriteShort(out, uint16(label))
	default:
		return store.WriteVInt(out, label)
	}
}

// ReadLabel reads one label in this FST's encoding.
func (f *FST[T]) ReadLabel(in store.DataInput) (int, error) {
	switch f.inputType {
	case InputByte1:
		b, err := in.ReadByte()
		return int(b), err
	case InputByte2:
		v, err := store.ReadShort(in)
		return int(v), err
	default:
		return store.ReadVInt(in)
	}
}

func (f *FST[T]) shouldExpand(n *uncompiledNode[T]) bool {
	return f.allowArrayArcs &&
		((n.depth <= fixedArrayShallowDistance && n.numArcs >= fixedArrayNumArcsShallow) ||
			n.numArcs >= fixedArrayNumArcsDeep)
}

// addNode freezes n into the byte buffer and returns its address, or its
// ordinal when building a packable FST.
func (f *FST[T]) addNode(n *uncompiledNode[T]) (int64, error) {
	if n.numArcs == 0 {
		if n.isFinal {
			return finalEndNode, nil
		}
		return nonFinalEndNode, nil
	}

	w := f.bytes
	startAddress := w.Position()

	doFixedArray := f.shouldExpand(n)
	if doFixedArray && len(f.bytesPerArc) < n.numArcs {
		f.bytesPerArc = make([]int, n.numArcs+n.numArcs/8+1)
	}

	f.arcCount += int64(n.numArcs)

	lastArc := n.numArcs - 1
	lastArcStart := startAddress
	maxBytesPerArc := 0
	for i := range n.numArcs {
		arc := &n.arcs[i]
		target := arc.target.(compiledNode).node

		var flags byte
		if i == lastArc {
			flags |= bitLastArc
		}
		if f.lastFrozenNode == target && !doFixedArray {
			flags |= bitTargetNext
		}
		if arc.isFinal {
			flags |= bitFinalArc
			if !f.outputs.IsNoOutput(arc.nextFinalOutput) {
				flags |= bitArcHasFinalOutput
			}
		}

		hasArcs := target > 0
		if !hasArcs {
			flags |= bitStopNode
		} else if f.inCounts != nil {
			f.inCounts[target]++
		}

		hasOutput := !f.outputs.IsNoOutput(arc.output)
		if hasOutput {
			flags |= bitArcHasOutput
		}

		if err := w.WriteByte(flags); err != nil {
			return 0, err
		}
		if err := f.writeLabel(w, arc.label); err != nil {
			return 0, err
		}
		if hasOutput {
			if err := f.outputs.Write(arc.output, w); err != nil {
				return 0, err
			}
			f.arcWithOutputCount++
		}
		if flags&bitArcHasFinalOutput != 0 {
			if err := f.outputs.WriteFinalOutput(arc.nextFinalOutput, w); err != nil {
				return 0, err
			}
		}
		if hasArcs && flags&bitTargetNext == 0 {
			if err := store.WriteVLong(w, uint64(target)); err != nil {
				return 0, err
			}
		}

		// Record each arc's size; the array expansion below pads them all
		// to the largest.
		if doFixedArray {
			pos := w.Position()
			f.bytesPerArc[i] = int(pos - lastArcStart)
			lastArcStart = pos
			maxBytesPerArc = max(maxBytesPerArc, f.bytesPerArc[i])
		}
	}

	if doFixedArray {
		header := store.NewSliceOutput(11)
		_ = header.WriteByte(arcsAsFixedArray)
		_ = store.WriteVInt(header, n.numArcs)
		_ = store.WriteVInt(header, maxBytesPerArc)
		headerLen := int64(header.Len())

		fixedArrayStart := startAddress + headerLen

		// Expand arcs in place, last one first.
		srcPos := w.Position()
		destPos := fixedArrayStart + int64(n.numArcs*maxBytesPerArc)
		if destPos > srcPos {
			w.skipBytes(int(destPos - srcPos))
			for i := n.numArcs - 1; i >= 0; i-- {
				destPos -= int64(maxBytesPerArc)
				srcPos -= int64(f.bytesPerArc[i])
				if srcPos != destPos {
					w.copyBytes(srcPos, destPos, f.bytesPerArc[i])
				}
			}
		}
		w.writeBytesAt(startAddress, header.Bytes())
	}

	thisNodeAddress := w.Position() - 1
	w.reverse(startAddress, thisNodeAddress)

	if f.nodeAddress != nil && f.nodeCount == math.MaxInt32 {
		return 0, ErrTooManyNodes
	}

	f.nodeCount++
	var node int64
	if f.nodeAddress != nil {
		// Ordinals start at 1.
		f.nodeAddress = append(f.nodeAddress, thisNodeAddress)
		f.inCounts = append(f.inCounts, 0)
		node = f.nodeCount
	} else {
		node = thisNodeAddress
	}
	f.lastFrozenNode = node
	return node, nil
}

// FirstArc fills arc with the virtual arc entering the start node.
func (f *FST[T]) FirstArc(arc *Arc[T]) *Arc[T] {
	if f.hasEmptyOutput {
		arc.flags = bitFinalArc | bitLastArc
		arc.NextFinalOutput = f.emptyOutput
		if !f.outputs.IsNoOutput(f.emptyOutput) {
			arc.flags |= bitArcHasFinalOutput
		}
	} else {
		arc.flags = bitLastArc
		arc.NextFinalOutput = f.noOutput
	}
	arc.Output = f.noOutput
	// An FST that only accepts the empty input has start node 0.
	arc.target = f.startNode
	return arc
}

// ReadLastTargetArc fills arc with the last arc leaving follow's target.
// If the target has no arcs, follow must be final and arc becomes the
// virtual end arc.
func (f *FST[T]) ReadLastTargetArc(follow, arc *Arc[T], in BytesReader) (*Arc[T], error) {
	if !targetHasArcs(follow) {
		arc.Label = EndLabel
		arc.target = finalEndNode
		arc.Output = follow.NextFinalOutput
		arc.NextFinalOutput = f.noOutput
		arc.flags = bitFinalArc | bitLastArc
		arc.bytesPerArc = 0
		return arc, nil
	}

	node := follow.target
	in.SetPosition(f.nodeAddressOf(node))
	arc.node = node
	b, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == arcsAsFixedArray {
		if err := f.readArrayHeader(arc, in); err != nil {
			return nil, err
		}
		arc.arcIdx = arc.numArcs - 2
	} else {
		arc.flags = b
		arc.bytesPerArc = 0
		for !arc.IsLast() {
			if err := f.skipArcBody(arc.flags, in); err != nil {
				return nil, err
			}
			if arc.flags, err = in.ReadByte(); err != nil {
				return nil, err
			}
		}
		// Step back over the flags byte just read.
		in.SkipBytes(-1)
		arc.nextArc = in.Position()
	}
	return f.ReadNextRealArc(arc, in)
}

// ReadFirstTargetArc fills arc with the first arc leaving follow's target.
// A final follow yields the virtual end arc first.
func (f *FST[T]) ReadFirstTargetArc(follow, arc *Arc[T], in BytesReader) (*Arc[T], error) {
	if follow.IsFinal() {
		target := follow.target
		arc.Label = EndLabel
		arc.Output = follow.NextFinalOutput
		arc.NextFinalOutput = f.noOutput
		arc.flags = bitFinalArc
		arc.bytesPerArc = 0
		if target <= 0 {
			arc.flags |= bitLastArc
		} else {
			arc.node = target
			// nextArc holds a node, not an address, here.
			arc.nextArc = target
		}
		arc.target = finalEndNode
		return arc, nil
	}
	return f.ReadFirstRealTargetArc(follow.target, arc, in)
}

// ReadFirstRealTargetArc fills arc with the first real arc of node.
func (f *FST[T]) ReadFirstRealTargetArc(node int64, arc *Arc[T], in BytesReader) (*Arc[T], error) {
	address := f.nodeAddressOf(node)
	in.SetPosition(address)
	arc.node = node

	b, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == arcsAsFixedArray {
		if err := f.readArrayHeader(arc, in); err != nil {
			return nil, err
		}
		arc.arcIdx = -1
		arc.nextArc = arc.posArcsStart
	} else {
		arc.nextArc = address
		arc.bytesPerArc = 0
	}
	return f.ReadNextRealArc(arc, in)
}

func (f *FST[T]) readArrayHeader(arc *Arc[T], in BytesReader) error {
	numArcs, err := store.ReadVInt(in)
	if err != nil {
		return err
	}
	arc.numArcs = numArcs
	if f.packed || f.version >= VersionVIntBytesPerArc {
		arc.bytesPerArc, err = store.ReadVInt(in)
	} else {
		var v uint32
		v, err = store.ReadInt32(in)
		arc.bytesPerArc = int(int32(v))
	}
	if err != nil {
		return err
	}
	if arc.bytesPerArc <= 0 || arc.numArcs <= 0 {
		return ErrCorrupt
	}
	arc.posArcsStart = in.Position()
	return nil
}

// IsExpandedTarget reports whether follow's target is a fixed-array node.
func (f *FST[T]) IsExpandedTarget(follow *Arc[T], in BytesReader) (bool, error) {
	if !targetHasArcs(follow) {
		return false, nil
	}
	in.SetPosition(f.nodeAddressOf(follow.target))
	b, err := in.ReadByte()
	if err != nil {
		return false, err
	}
	return b == arcsAsFixedArray, nil
}

// TargetHasArcs reports whether arc's target has outgoing arcs.
func (f *FST[T]) TargetHasArcs(arc *Arc[T]) bool { return targetHasArcs(arc) }

// ReadNextArc advances arc to the next arc of its node.
func (f *FST[T]) ReadNextArc(arc *Arc[T], in BytesReader) (*Arc[T], error) {
	if arc.Label == EndLabel {
		// Virtual final arc.
		if arc.nextArc <= 0 {
			return nil, ErrLastArc
		}
		return f.ReadFirstRealTargetArc(arc.nextArc, arc, in)
	}
	return f.ReadNextRealArc(arc, in)
}

// ReadNextArcLabel peeks at the label of the arc following arc.
func (f *FST[T]) ReadNextArcLabel(arc *Arc[T], in BytesReader) (int, error) {
	if arc.IsLast() {
		return 0, ErrLastArc
	}
	if arc.Label == EndLabel {
		pos := f.nodeAddressOf(arc.nextArc)
		in.SetPosition(pos)
		b, err := in.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == arcsAsFixedArray {
			var scratch Arc[T]
			if err := f.readArrayHeader(&scratch, in); err != nil {
				return 0, err
			}
		} else {
			in.SetPosition(pos)
		}
	} else if arc.bytesPerArc != 0 {
		in.SetPosition(arc.posArcsStart)
		in.SkipBytes(int64((1 + arc.arcIdx) * arc.bytesPerArc))
	} else {
		in.SetPosition(arc.nextArc)
	}
	if _, err := in.ReadByte(); err != nil {
		return 0, err
	}
	return f.ReadLabel(in)
}

// ReadNextRealArc advances arc to the next real arc of its node. arc must
// not be the last arc.
func (f *FST[T]) ReadNextRealArc(arc *Arc[T], in BytesReader) (*Arc[T], error) {
	if arc.bytesPerArc != 0 {
		arc.arcIdx++
		if arc.arcIdx >= arc.numArcs {
			return nil, ErrLastArc
		}
		in.SetPosition(arc.posArcsStart)
		in.SkipBytes(int64(arc.arcIdx * arc.bytesPerArc))
	} else {
		in.SetPosition(arc.nextArc)
	}

	var err error
	if arc.flags, err = in.ReadByte(); err != nil {
		return nil, err
	}
	if arc.Label, err = f.ReadLabel(in); err != nil {
		return nil, err
	}

	if arc.flag(bitArcHasOutput) {
		if arc.Output, err = f.outputs.Read(in); err != nil {
			return nil, err
		}
	} else {
		arc.Output = f.noOutput
	}

	if arc.flag(bitArcHasFinalOutput) {
		if arc.NextFinalOutput, err = f.outputs.ReadFinalOutput(in); err != nil {
			return nil, err
		}
	} else {
		arc.NextFinalOutput = f.noOutput
	}

	switch {
	case arc.flag(bitStopNode):
		if arc.flag(bitFinalArc) {
			arc.target = finalEndNode
		} else {
			arc.target = nonFinalEndNode
		}
		arc.nextArc = in.Position()
	case arc.flag(bitTargetNext):
		arc.nextArc = in.Position()
		if f.nodeAddress != nil {
			arc.target = arc.node - 1
			break
		}
		if !arc.IsLast() {
			if arc.bytesPerArc == 0 {
				if err := f.seekToNextNode(in); err != nil {
					return nil, err
				}
			} else {
				in.SetPosition(arc.posArcsStart)
				in.SkipBytes(int64(arc.bytesPerArc * arc.numArcs))
			}
		}
		arc.target = in.Position()
	default:
		if f.packed {
			pos := in.Position()
			code, err := store.ReadVLong(in)
			if err != nil {
				return nil, err
			}
			switch {
			case arc.flag(bitTargetDelta):
				arc.target = pos + int64(code)
			case code < uint64(len(f.nodeRefToAddress)):
				arc.target = f.nodeRefToAddress[code]
			default:
				arc.target = int64(code) - int64(len(f.nodeRefToAddress))
			}
		} else {
			target, err := store.ReadVLong(in)
			if err != nil {
				return nil, err
			}
			arc.target = int64(target)
		}
		arc.nextArc = in.Position()
	}
	return arc, nil
}

// skipArcBody skips everything after the flags byte of one arc.
func (f *FST[T]) skipArcBody(flags byte, in BytesReader) error {
	if _, err := f.ReadLabel(in); err != nil {
		return err
	}
	if flags&bitArcHasOutput != 0 {
		if _, err := f.outputs.Read(in); err != nil {
			return err
		}
	}
	if flags&bitArcHasFinalOutput != 0 {
		if _, err := f.outputs.ReadFinalOutput(in); err != nil {
			return err
		}
	}
	if flags&(bitStopNode|bitTargetNext) == 0 {
		if _, err := store.ReadVLong(in); err != nil {
			return err
		}
	}
	return nil
}

// seekToNextNode skips the remaining arcs of a linear node.
func (f *FST[T]) seekToNextNode(in BytesReader) error {
	for {
		flags, err := in.ReadByte()
		if err != nil {
			return err
		}
		if err := f.skipArcBody(flags, in); err != nil {
			return err
		}
		if flags&bitLastArc != 0 {
			return nil
		}
	}
}

// FindTargetArc finds the arc labeled label leaving follow's target and
// stores it in arc. It returns nil when there is no such arc. follow and arc
// may be the same value.
func (f *FST[T]) FindTargetArc(label int, follow, arc *Arc[T], in BytesReader) (*Arc[T], error) {
	target := follow.target
	if label == EndLabel {
		if !follow.IsFinal() {
			return nil, nil
		}
		if target <= 0 {
			arc.flags = bitLastArc
		} else {
			arc.flags = 0
			// nextArc holds a node, not an address, here.
			arc.nextArc = target
			arc.node = target
		}
		arc.Output = follow.NextFinalOutput
		arc.NextFinalOutput = f.noOutput
		arc.bytesPerArc = 0
		arc.Label = EndLabel
		return arc, nil
	}

	if target == f.startNode && label >= 0 && label < len(f.cachedRootArcs) {
		cached := f.cachedRootArcs[label]
		if cached == nil {
			return nil, nil
		}
		return arc.CopyFrom(cached), nil
	}

	if target <= 0 {
		return nil, nil
	}

	in.SetPosition(f.nodeAddressOf(target))
	arc.node = target

	b, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == arcsAsFixedArray {
		if err := f.readArrayHeader(arc, in); err != nil {
			return nil, err
		}
		mid, found, err := f.searchArray(arc, label, 0, in)
		if err != nil || !found {
			return nil, err
		}
		arc.arcIdx = mid - 1
		return f.ReadNextRealArc(arc, in)
	}

	if _, err := f.ReadFirstRealTargetArc(target, arc, in); err != nil {
		return nil, err
	}
	for {
		switch {
		case arc.Label == label:
			return arc, nil
		case arc.Label > label, arc.IsLast():
			return nil, nil
		}
		if _, err := f.ReadNextRealArc(arc, in); err != nil {
			return nil, err
		}
	}
}

// searchArray binary searches the labels of a fixed-array node starting at
// index low. When the label is missing it returns the insertion point.
func (f *FST[T]) searchArray(arc *Arc[T], label, low int, in BytesReader) (int, bool, error) {
	high := arc.numArcs - 1
	for low <= high {
		mid := int(uint(low+high) >> 1)
		in.SetPosition(arc.posArcsStart)
		in.SkipBytes(int64(arc.bytesPerArc*mid + 1))
		midLabel, err := f.ReadLabel(in)
		if err != nil {
			return 0, false, err
		}
		switch {
		case midLabel < label:
			low = mid + 1
		case midLabel > label:
			high = mid - 1
		default:
			return mid, true, nil
		}
	}
	return low, false, nil
}
