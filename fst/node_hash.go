package fst

// nodeHash finds frozen nodes structurally equal to a frontier node so that
// identical suffixes are stored once. Entries are node handles; equality is
// decided by re-reading the frozen node.
type nodeHash[T any] struct {
	fst     *FST[T]
	table   []int64
	count   int
	mask    uint64
	scratch Arc[T]
	in      BytesReader
}

func newNodeHash[T any](f *FST[T]) *nodeHash[T] {
	return &nodeHash[T]{
		fst:   f,
		table: make([]int64, 16),
		mask:  15,
		in:    f.bytes.ReverseReader(),
	}
}

const hashPrime = 31

func (h *nodeHash[T]) mixArc(acc uint64, label int, target int64, output, nextFinalOutput T, isFinal bool) uint64 {
	outs := h.fst.outputs
	acc = hashPrime*acc + uint64(label)
	acc = hashPrime*acc + uint64(target^(target>>32))
	acc = hashPrime*acc + outs.Hash(output)
	acc = hashPrime*acc + outs.Hash(nextFinalOutput)
	if isFinal {
		acc += 17
	}
	return acc
}

// hashNode hashes a frontier node whose targets are all compiled.
func (h *nodeHash[T]) hashNode(n *uncompiledNode[T]) uint64 {
	var acc uint64
	for i := range n.numArcs {
		arc := &n.arcs[i]
		acc = h.mixArc(acc, arc.label, arc.target.(compiledNode).node, arc.output, arc.nextFinalOutput, arc.isFinal)
	}
	return acc
}

// hashFrozen hashes a frozen node; it agrees with hashNode.
func (h *nodeHash[T]) hashFrozen(node int64) (uint64, error) {
	arc := &h.scratch
	if _, err := h.fst.ReadFirstRealTargetArc(node, arc, h.in); err != nil {
		return 0, err
	}
	var acc uint64
	for {
		acc = h.mixArc(acc, arc.Label, arc.target, arc.Output, arc.NextFinalOutput, arc.IsFinal())
		if arc.IsLast() {
			return acc, nil
		}
		if _, err := h.fst.ReadNextRealArc(arc, h.in); err != nil {
			return 0, err
		}
	}
}

func (h *nodeHash[T]) nodesEqual(n *uncompiledNode[T], address int64) (bool, error) {
	arc := &h.scratch
	if _, err := h.fst.ReadFirstRealTargetArc(address, arc, h.in); err != nil {
		return false, err
	}
	if arc.bytesPerArc != 0 && n.numArcs != arc.numArcs {
		return false, nil
	}
	outs := h.fst.outputs
	for i := range n.numArcs {
		ba := &n.arcs[i]
		if ba.label != arc.Label ||
			!outs.Equal(ba.output, arc.Output) ||
			ba.target.(compiledNode).node != arc.target ||
			!outs.Equal(ba.nextFinalOutput, arc.NextFinalOutput) ||
			ba.isFinal != arc.IsFinal() {
			return false, nil
		}
		if arc.IsLast() {
			return i == n.numArcs-1, nil
		}
		if _, err := h.fst.ReadNextRealArc(arc, h.in); err != nil {
			return false, err
		}
	}
	return false, nil
}

// add returns the handle of a frozen node equal to n, freezing n first if
// no such node exists.
func (h *nodeHash[T]) add(n *uncompiledNode[T]) (int64, error) {
	sum := h.hashNode(n)
	pos := sum & h.mask
	for c := uint64(1); ; c++ {
		v := h.table[pos]
		if v == 0 {
			node, err := h.fst.addNode(n)
			if err != nil {
				return 0, err
			}
			h.count++
			h.table[pos] = node
			if h.count > len(h.table)/2 {
				if err := h.rehash(); err != nil {
					return 0, err
				}
			}
			return node, nil
		}
		eq, err := h.nodesEqual(n, v)
		if err != nil {
			return 0, err
		}
		if eq {
			return v, nil
		}
		// Quadratic probe.
		pos = (pos + c) & h.mask
	}
}

func (h *nodeHash[T]) insert(node int64) error {
	sum, err := h.hashFrozen(node)
	if err != nil {
		return err
	}
	pos := sum & h.mask
	for c := uint64(1); ; c++ {
		if h.table[pos] == 0 {
			h.table[pos] = node
			return nil
		}
		pos = (pos + c) & h.mask
	}
}

func (h *nodeHash[T]) rehash() error {
	old := h.table
	h.table = make([]int64, 2*len(old))
	h.mask = uint64(len(h.table) - 1)
	for _, node := range old {
		if node != 0 {
			if err := h.insert(node); err != nil {
				return err
			}
		}
	}
	return nil
}
