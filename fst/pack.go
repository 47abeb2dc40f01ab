package fst

import (
	"github.com/hupe1980/lexfst/internal/queue"
	"github.com/hupe1980/lexfst/store"
)

type nodeAndInCount struct {
	node  int64
	count int64
}

// lessInCount orders by in-count, breaking ties towards higher ordinals.
func lessInCount(a, b nodeAndInCount) bool {
	if a.count != b.count {
		return a.count < b.count
	}
	return a.node > b.node
}

// Pack rewrites an FST built with packing enabled into the packed layout.
// The maxDerefNodes nodes with the most incoming arcs (at least
// minInCountDeref) are addressed through a small ordinal table; every other
// target is written as a delta or an absolute address, whichever is
// shorter. The receiver is left unchanged.
func (f *FST[T]) Pack(minInCountDeref, maxDerefNodes int) (*FST[T], error) {
	if f.nodeAddress == nil {
		return nil, ErrNotPackable
	}
	if f.startNode == -1 {
		return nil, ErrNotFinished
	}

	r := f.BytesReader()
	nodeCount := f.nodeCount

	topN := min(int64(maxDerefNodes), nodeCount)
	var topNodeMap map[int64]int64
	if topN > 0 {
		q := queue.New(int(topN), lessInCount)
		for node := int64(1); node <= nodeCount; node++ {
			count := f.inCounts[node]
			if count >= int64(minInCountDeref) {
				q.InsertWithOverflow(nodeAndInCount{node: node, count: count}, int(topN))
			}
		}
		// The most referenced node gets ordinal 0.
		topNodeMap = make(map[int64]int64, q.Len())
		for downTo := int64(q.Len() - 1); downTo >= 0; downTo-- {
			n, _ := q.PopItem()
			topNodeMap[n.node] = downTo
		}
	}
	topSize := int64(len(topNodeMap))

	// Ordinals start at 1; 0 is reserved for the stop node.
	newNodeAddress := make([]int64, nodeCount+1)
	endPos := f.bytes.Position()
	for node := int64(1); node <= nodeCount; node++ {
		newNodeAddress[node] = 1 + endPos - f.nodeAddress[node]
	}

	var (
		arc    Arc[T]
		packed *FST[T]
	)

	// Iterate until addresses converge.
	for {
		changed := false

		packed = newPackedFST(f.inputType, f.outputs, f.bytes.BlockBits())
		w := packed.bytes
		// Address 0 is reserved.
		_ = w.WriteByte(0)

		var addressError int64

		// Nodes are written in reverse ordinal order so that the node
		// following a node in the buffer is its predecessor ordinal, which
		// keeps target-next arcs valid.
		for node := nodeCount; node >= 1; node-- {
			packed.nodeCount++
			address := w.Position()
			if address != newNodeAddress[node] {
				addressError = address - newNodeAddress[node]
				changed = true
				newNodeAddress[node] = address
			}

			nodeArcCount := int64(0)
			bytesPerArc := 0
			retry := false

			for {
				if _, err := f.ReadFirstRealTargetArc(node, &arc, r); err != nil {
					return nil, err
				}

				useArcArray := arc.bytesPerArc != 0
				if useArcArray {
					if bytesPerArc == 0 {
						bytesPerArc = arc.bytesPerArc
					}
					_ = w.WriteByte(arcsAsFixedArray)
					_ = store.WriteVInt(w, arc.numArcs)
					_ = store.WriteVInt(w, bytesPerArc)
				}

				maxBytesPerArc := 0
				for {
					arcStartPos := w.Position()
					nodeArcCount++

					var flags byte
					if arc.IsLast() {
						flags |= bitLastArc
					}
					if !useArcArray && node != 1 && arc.target == node-1 {
						flags |= bitTargetNext
					}
					if arc.IsFinal() {
						flags |= bitFinalArc
						if !f.outputs.IsNoOutput(arc.NextFinalOutput) {
							flags |= bitArcHasFinalOutput
						}
					}
					hasArcs := targetHasArcs(&arc)
					if !hasArcs {
						flags |= bitStopNode
					}
					hasOutput := !f.outputs.IsNoOutput(arc.Output)
					if hasOutput {
						flags |= bitArcHasOutput
					}

					var absPtr int64
					doWriteTarget := hasArcs && flags&bitTargetNext == 0
					if doWriteTarget {
						if ptr, ok := topNodeMap[arc.target]; ok {
							absPtr = ptr
						} else {
							absPtr = topSize + newNodeAddress[arc.target] + addressError
						}
						// Estimate: flags and label still precede the target.
						delta := max(0, newNodeAddress[arc.target]+addressError-w.Position()-2)
						if delta < absPtr {
							flags |= bitTargetDelta
						}
					}

					_ = w.WriteByte(flags)
					if err := packed.writeLabel(w, arc.Label); err != nil {
						return nil, err
					}
					if hasOutput {
						if err := f.outputs.Write(arc.Output, w); err != nil {
							return nil, err
						}
						if !retry {
							packed.arcWithOutputCount++
						}
					}
					if flags&bitArcHasFinalOutput != 0 {
						if err := f.outputs.WriteFinalOutput(arc.NextFinalOutput, w); err != nil {
							return nil, err
						}
					}

					if doWriteTarget {
						if flags&bitTargetDelta != 0 {
							delta := max(0, newNodeAddress[arc.target]+addressError-w.Position())
							_ = store.WriteVLong(w, uint64(delta))
						} else {
							_ = store.WriteVLong(w, uint64(absPtr))
						}
					}

					if useArcArray {
						arcBytes := int(w.Position() - arcStartPos)
						maxBytesPerArc = max(maxBytesPerArc, arcBytes)
						// Pads to the stride; an arc larger than the stride
						// forces a retry below.
						w.skipBytes(int(arcStartPos + int64(bytesPerArc) - w.Position()))
					}

					if arc.IsLast() {
						break
					}
					if _, err := f.ReadNextRealArc(&arc, r); err != nil {
						return nil, err
					}
				}

				if !useArcArray || maxBytesPerArc == bytesPerArc || (retry && maxBytesPerArc <= bytesPerArc) {
					break
				}

				// The stride changed; rewrite this node.
				bytesPerArc = maxBytesPerArc
				w.truncate(address)
				nodeArcCount = 0
				retry = true
			}

			packed.arcCount += nodeArcCount
		}

		if !changed {
			break
		}
	}

	packed.nodeRefToAddress = make([]int64, topSize)
	for node, ord := range topNodeMap {
		packed.nodeRefToAddress[ord] = newNodeAddress[node]
	}

	packed.startNode = f.startNode
	if f.startNode > 0 {
		packed.startNode = newNodeAddress[f.startNode]
	}
	if f.hasEmptyOutput {
		packed.emptyOutput = f.emptyOutput
		packed.hasEmptyOutput = true
	}

	packed.bytes.finish()
	if err := packed.cacheRootArcs(); err != nil {
		return nil, err
	}
	return packed, nil
}
