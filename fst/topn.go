package fst

import (
	"errors"
	"slices"

	"github.com/hupe1980/lexfst/internal/queue"
)

// ErrNoCompletion is returned by TopNSearcher.Search when a node has no
// arc with a zero output. Top-N search requires outputs such as
// PositiveIntOutputs, where the builder pushes the minimum towards the root.
var ErrNoCompletion = errors.New("fst: node has no zero-output completion")

// Result is one path found by a TopNSearcher.
type Result[T any] struct {
	Input  []int
	Output T
}

// TopResults holds the paths found by a search. IsComplete is false when
// the queue overflowed, in which case better paths may have been missed.
type TopResults[T any] struct {
	IsComplete bool
	TopN       []Result[T]
}

type searchPath[T any] struct {
	arc   Arc[T]
	cost  T
	input []int
}

// TopNSearcher finds the cheapest accepted paths under a comparator.
type TopNSearcher[T any] struct {
	fst           *FST[T]
	in            BytesReader
	topN          int
	maxQueueDepth int
	cmp           func(a, b T) int
	queue         *queue.OrderedSet[*searchPath[T]]
	scratch       Arc[T]

	// Accept filters completed paths; rejected paths do not count towards
	// the N results. Nil accepts everything.
	Accept func(input []int, output T) bool
}

// NewTopNSearcher returns a searcher that keeps at most maxQueueDepth
// partial paths. maxQueueDepth is raised to topN if smaller.
func NewTopNSearcher[T any](f *FST[T], topN, maxQueueDepth int, cmp func(a, b T) int) *TopNSearcher[T] {
	maxQueueDepth = max(maxQueueDepth, topN)
	s := &TopNSearcher[T]{
		fst:           f,
		in:            f.BytesReader(),
		topN:          topN,
		maxQueueDepth: maxQueueDepth,
		cmp:           cmp,
	}
	s.queue = queue.NewOrderedSet(maxQueueDepth+1, s.comparePaths)
	return s
}

// comparePaths orders by cost, then by input.
func (s *TopNSearcher[T]) comparePaths(a, b *searchPath[T]) int {
	if c := s.cmp(a.cost, b.cost); c != 0 {
		return c
	}
	return slices.Compare(a.input, b.input)
}

// addIfCompetitive queues p extended by its current arc unless the queue
// is full of better paths.
func (s *TopNSearcher[T]) addIfCompetitive(p *searchPath[T]) {
	cost := s.fst.outputs.Add(p.cost, p.arc.Output)
	if s.queue.Len() == s.maxQueueDepth {
		bottom, _ := s.queue.Last()
		c := s.cmp(cost, bottom.cost)
		if c > 0 {
			return
		}
		if c == 0 {
			extended := append(slices.Clip(p.input), p.arc.Label)
			if slices.Compare(bottom.input, extended) < 0 {
				return
			}
		}
	}

	input := make([]int, len(p.input)+1)
	copy(input, p.input)
	input[len(p.input)] = p.arc.Label
	np := &searchPath[T]{arc: p.arc, cost: cost, input: input}

	s.queue.Add(np)
	if s.queue.Len() == s.maxQueueDepth+1 {
		s.queue.PollLast()
	}
}

// AddStartPaths queues every arc leaving node, including the end arc when
// node is final and allowEmpty is set. input is the prefix leading to node.
func (s *TopNSearcher[T]) AddStartPaths(node *Arc[T], startOutput T, allowEmpty bool, input []int) error {
	if s.fst.outputs.IsNoOutput(startOutput) {
		startOutput = s.fst.noOutput
	}
	p := &searchPath[T]{cost: startOutput, input: input}
	if _, err := s.fst.ReadFirstTargetArc(node, &p.arc, s.in); err != nil {
		return err
	}
	for {
		if allowEmpty || p.arc.Label != EndLabel {
			s.addIfCompetitive(p)
		}
		if p.arc.IsLast() {
			return nil
		}
		if _, err := s.fst.ReadNextArc(&p.arc, s.in); err != nil {
			return err
		}
	}
}

// Search runs the search. A searcher can be used once.
func (s *TopNSearcher[T]) Search() (TopResults[T], error) {
	var results []Result[T]
	noOutput := s.fst.noOutput
	in := s.fst.BytesReader()
	rejectCount := 0

	for len(results) < s.topN && s.queue != nil {
		p, ok := s.queue.PollFirst()
		if !ok {
			// Fewer than N paths exist.
			break
		}

		if p.arc.Label == EndLabel {
			// The empty continuation: drop the end label.
			input := p.input[:len(p.input)-1]
			if s.Accept == nil || s.Accept(input, p.cost) {
				results = append(results, Result[T]{Input: input, Output: p.cost})
			} else {
				rejectCount++
			}
			continue
		}

		if len(results) == s.topN-1 && s.maxQueueDepth == s.topN {
			// Last path; the queue is no longer needed.
			s.queue = nil
		}

		// Follow zero-output arcs to the cheapest completion of p, queueing
		// the other arcs met on the way.
		for {
			if _, err := s.fst.ReadFirstTargetArc(&p.arc, &p.arc, in); err != nil {
				return TopResults[T]{}, err
			}

			foundZero := false
			for {
				if s.cmp(noOutput, p.arc.Output) == 0 {
					switch {
					case s.queue == nil:
						foundZero = true
					case !foundZero:
						s.scratch.CopyFrom(&p.arc)
						foundZero = true
					default:
						s.addIfCompetitive(p)
					}
					if s.queue == nil {
						break
					}
				} else if s.queue != nil {
					s.addIfCompetitive(p)
				}
				if p.arc.IsLast() {
					break
				}
				if _, err := s.fst.ReadNextArc(&p.arc, in); err != nil {
					return TopResults[T]{}, err
				}
			}

			if !foundZero {
				return TopResults[T]{}, ErrNoCompletion
			}
			if s.queue != nil {
				p.arc.CopyFrom(&s.scratch)
			}

			if p.arc.Label == EndLabel {
				finalOutput := s.fst.outputs.Add(p.cost, p.arc.Output)
				if s.Accept == nil || s.Accept(p.input, finalOutput) {
					results = append(results, Result[T]{Input: p.input, Output: finalOutput})
				} else {
					rejectCount++
				}
				break
			}
			p.input = append(p.input, p.arc.Label)
			p.cost = s.fst.outputs.Add(p.cost, p.arc.Output)
		}
	}
	return TopResults[T]{
		IsComplete: rejectCount+s.topN <= s.maxQueueDepth,
		TopN:       results,
	}, nil
}

// ShortestPaths returns the topN cheapest paths starting at from. The queue
// is as deep as topN, so the result is always complete.
func ShortestPaths[T any](f *FST[T], from *Arc[T], startOutput T, cmp func(a, b T) int, topN int, allowEmpty bool) (TopResults[T], error) {
	s := NewTopNSearcher(f, topN, topN, cmp)
	if err := s.AddStartPaths(from, startOutput, allowEmpty, nil); err != nil {
		return TopResults[T]{}, err
	}
	return s.Search()
}
