package fst

import (
	"fmt"
	"math"
)

// InputOutput pairs an input with its output.
type InputOutput[L, T any] struct {
	Input  L
	Output T
}

// enum holds the cursor state shared by BytesEnum and IntsEnum: one arc
// and one cumulative output per depth of the current key.
type enum[T any] struct {
	fst *FST[T]
	in  BytesReader

	arcs []*Arc[T]
	// output[i] is the output accumulated through depth i.
	output []T
	// current[i] is the label at depth i; index 0 is unused.
	current []int
	target  []int
	upto    int
	done    bool
	// missed is set by a failed exact seek until the next move.
	missed bool
	// maxDepth bounds the stack; a path in a valid FST visits each node at
	// most once, so deeper walks mean a cycle in damaged data.
	maxDepth int
}

func (e *enum[T]) init(f *FST[T]) {
	e.fst = f
	e.in = f.BytesReader()
	e.arcs = make([]*Arc[T], 10)
	e.output = make([]T, 10)
	e.current = make([]int, 10)
	e.maxDepth = int(min(f.SizeInBytes(), math.MaxInt32)) + 2
	f.FirstArc(e.arc(0))
	e.output[0] = f.noOutput
}

func (e *enum[T]) arc(idx int) *Arc[T] {
	if e.arcs[idx] == nil {
		e.arcs[idx] = &Arc[T]{}
	}
	return e.arcs[idx]
}

func (e *enum[T]) targetLabel() int {
	if e.upto-1 == len(e.target) {
		return EndLabel
	}
	return e.target[e.upto-1]
}

func (e *enum[T]) setCurrentLabel(label int) { e.current[e.upto] = label }

func (e *enum[T]) incr() error {
	if e.upto >= e.maxDepth {
		return fmt.Errorf("%w: enumeration deeper than %d labels", ErrCorrupt, e.maxDepth)
	}
	e.upto++
	if e.upto >= len(e.arcs) {
		n := e.upto + e.upto/2 + 1
		e.arcs = append(e.arcs, make([]*Arc[T], n-len(e.arcs))...)
		e.output = append(e.output, make([]T, n-len(e.output))...)
		e.current = append(e.current, make([]int, n-len(e.current))...)
	}
	return nil
}

func (e *enum[T]) add(prefix, output T) T { return e.fst.outputs.Add(prefix, output) }

// rewindPrefix pops the stack back to the prefix shared by the current key
// and the target.
func (e *enum[T]) rewindPrefix() error {
	e.done = false
	e.missed = false
	if e.upto == 0 {
		e.upto = 1
		_, err := e.fst.ReadFirstTargetArc(e.arc(0), e.arc(1), e.in)
		return err
	}

	limit := e.upto
	e.upto = 1
	for e.upto < limit && e.upto <= len(e.target)+1 {
		cmp := e.current[e.upto] - e.targetLabel()
		if cmp < 0 {
			// Seek forward from here.
			return nil
		}
		if cmp > 0 {
			// Seek backwards: restart this depth at its first arc.
			_, err := e.fst.ReadFirstTargetArc(e.arc(e.upto-1), e.arc(e.upto), e.in)
			return err
		}
		e.upto++
	}
	return nil
}

func (e *enum[T]) doNext() error {
	e.missed = false
	if e.done {
		return nil
	}
	if e.upto == 0 {
		e.upto = 1
		if _, err := e.fst.ReadFirstTargetArc(e.arc(0), e.arc(1), e.in); err != nil {
			return err
		}
	} else {
		for e.arcs[e.upto].IsLast() {
			e.upto--
			if e.upto == 0 {
				e.done = true
				return nil
			}
		}
		if _, err := e.fst.ReadNextArc(e.arcs[e.upto], e.in); err != nil {
			return err
		}
	}
	return e.pushFirst()
}

// descend records arc as the match at the current depth and moves to the
// first arc of its target.
func (e *enum[T]) descend(arc *Arc[T]) (*Arc[T], error) {
	e.setCurrentLabel(arc.Label)
	if err := e.incr(); err != nil {
		return nil, err
	}
	return e.fst.ReadFirstTargetArc(arc, e.arc(e.upto), e.in)
}

// nextFork backs out of a dead end to the nearest ancestor with an arc left
// to explore, then descends to the first key below it.
func (e *enum[T]) nextFork() error {
	e.upto--
	for e.upto > 0 {
		prev := e.arc(e.upto)
		if !prev.IsLast() {
			if _, err := e.fst.ReadNextArc(prev, e.in); err != nil {
				return err
			}
			return e.pushFirst()
		}
		e.upto--
	}
	e.done = true
	return nil
}

func (e *enum[T]) doSeekCeil() error {
	if err := e.rewindPrefix(); err != nil {
		return err
	}
	arc := e.arc(e.upto)
	targetLabel := e.targetLabel()

	for {
		if arc.bytesPerArc != 0 && arc.Label != EndLabel {
			idx, found, err := e.fst.searchArray(arc, targetLabel, arc.arcIdx, e.in)
			if err != nil {
				return err
			}
			if !found && idx == arc.numArcs {
				// Target sorts after every arc here.
				return e.nextFork()
			}
			arc.arcIdx = idx - 1
			if _, err := e.fst.ReadNextRealArc(arc, e.in); err != nil {
				return err
			}
			if !found {
				return e.pushFirst()
			}
			e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
			if arc, err = e.descend(arc); err != nil {
				return err
			}
			targetLabel = e.targetLabel()
			continue
		}

		switch {
		case arc.Label == targetLabel:
			e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
			if targetLabel == EndLabel {
				return nil
			}
			var err error
			if arc, err = e.descend(arc); err != nil {
				return err
			}
			targetLabel = e.targetLabel()
		case arc.Label > targetLabel:
			return e.pushFirst()
		case arc.IsLast():
			return e.nextFork()
		default:
			if _, err := e.fst.ReadNextArc(arc, e.in); err != nil {
				return err
			}
		}
	}
}

func (e *enum[T]) doSeekFloor() error {
	if err := e.rewindPrefix(); err != nil {
		return err
	}
	arc := e.arc(e.upto)
	targetLabel := e.targetLabel()

	for {
		if arc.bytesPerArc != 0 && arc.Label != EndLabel {
			idx, found, err := e.fst.searchArray(arc, targetLabel, arc.arcIdx, e.in)
			if err != nil {
				return err
			}
			if found {
				arc.arcIdx = idx - 1
				if _, err := e.fst.ReadNextRealArc(arc, e.in); err != nil {
					return err
				}
				e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
				if arc, err = e.descend(arc); err != nil {
					return err
				}
				targetLabel = e.targetLabel()
				continue
			}
			if idx == 0 {
				// The first arc already sorts after the target.
				return e.floorBacktrack(arc, targetLabel)
			}
			// idx-1 is the floor arc.
			arc.arcIdx = idx - 2
			if _, err := e.fst.ReadNextRealArc(arc, e.in); err != nil {
				return err
			}
			return e.pushLast()
		}

		switch {
		case arc.Label == targetLabel:
			e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
			if targetLabel == EndLabel {
				return nil
			}
			var err error
			if arc, err = e.descend(arc); err != nil {
				return err
			}
			targetLabel = e.targetLabel()
		case arc.Label > targetLabel:
			return e.floorBacktrack(arc, targetLabel)
		case !arc.IsLast():
			next, err := e.fst.ReadNextArcLabel(arc, e.in)
			if err != nil {
				return err
			}
			if next > targetLabel {
				return e.pushLast()
			}
			if _, err := e.fst.ReadNextArc(arc, e.in); err != nil {
				return err
			}
		default:
			return e.pushLast()
		}
	}
}

// floorBacktrack walks up from a node whose arcs all sort after the target
// until some node has an arc before its target label, then descends along
// last arcs from the greatest such arc.
func (e *enum[T]) floorBacktrack(arc *Arc[T], targetLabel int) error {
	for {
		if _, err := e.fst.ReadFirstTargetArc(e.arc(e.upto-1), arc, e.in); err != nil {
			return err
		}
		if arc.Label < targetLabel {
			for !arc.IsLast() {
				next, err := e.fst.ReadNextArcLabel(arc, e.in)
				if err != nil {
					return err
				}
				if next >= targetLabel {
					break
				}
				if _, err := e.fst.ReadNextArc(arc, e.in); err != nil {
					return err
				}
			}
			return e.pushLast()
		}
		e.upto--
		if e.upto == 0 {
			e.done = true
			return nil
		}
		targetLabel = e.targetLabel()
		arc = e.arc(e.upto)
	}
}

func (e *enum[T]) doSeekExact() (bool, error) {
	if err := e.rewindPrefix(); err != nil {
		return false, err
	}
	arc := e.arc(e.upto - 1)
	targetLabel := e.targetLabel()

	for {
		next, err := e.fst.FindTargetArc(targetLabel, arc, e.arc(e.upto), e.in)
		if err != nil {
			return false, err
		}
		if next == nil {
			// Leave a valid frame at this depth for later seeks.
			if _, err := e.fst.ReadFirstTargetArc(arc, e.arc(e.upto), e.in); err != nil {
				return false, err
			}
			e.missed = true
			return false, nil
		}
		e.output[e.upto] = e.add(e.output[e.upto-1], next.Output)
		if targetLabel == EndLabel {
			return true, nil
		}
		e.setCurrentLabel(targetLabel)
		if err := e.incr(); err != nil {
			return false, err
		}
		targetLabel = e.targetLabel()
		arc = next
	}
}

// pushFirst appends the current arc and follows first arcs down to the
// first accepted key.
func (e *enum[T]) pushFirst() error {
	arc := e.arcs[e.upto]
	for {
		e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
		if arc.Label == EndLabel {
			return nil
		}
		e.setCurrentLabel(arc.Label)
		if err := e.incr(); err != nil {
			return err
		}
		next := e.arc(e.upto)
		if _, err := e.fst.ReadFirstTargetArc(arc, next, e.in); err != nil {
			return err
		}
		arc = next
	}
}

// pushLast appends the current arc and follows last arcs down to the last
// accepted key.
func (e *enum[T]) pushLast() error {
	arc := e.arcs[e.upto]
	for {
		e.setCurrentLabel(arc.Label)
		e.output[e.upto] = e.add(e.output[e.upto-1], arc.Output)
		if arc.Label == EndLabel {
			return nil
		}
		if err := e.incr(); err != nil {
			return err
		}
		var err error
		if arc, err = e.fst.ReadLastTargetArc(arc, e.arc(e.upto), e.in); err != nil {
			return err
		}
	}
}

// positioned reports whether the enum sits on a key.
func (e *enum[T]) positioned() bool { return e.upto > 0 && !e.missed }

// key returns the labels of the current key.
func (e *enum[T]) key() []int { return e.current[1:e.upto] }
