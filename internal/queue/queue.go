// Package queue provides the priority structures used by FST packing and
// top-N path search.
package queue

// PriorityQueue is a binary heap ordered by less: the item for which less
// reports true against every other item sits at the top.
type PriorityQueue[T any] struct {
	less  func(a, b T) bool
	items []T
}

// New returns an empty queue with room for capacity items.
func New[T any](capacity int, less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		less:  less,
		items: make([]T, 0, capacity),
	}
}

// Len returns the number of queued items.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// TopItem returns the top element of the heap.
func (pq *PriorityQueue[T]) TopItem() (T, bool) {
	if len(pq.items) == 0 {
		var zero T
		return zero, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PushItem(item T) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PopItem() (T, bool) {
	var zero T
	n := len(pq.items)
	if n == 0 {
		return zero, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = zero
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// InsertWithOverflow keeps at most limit items: once full, item replaces the
// top only if the top sorts before it. It reports whether item was kept.
func (pq *PriorityQueue[T]) InsertWithOverflow(item T, limit int) bool {
	if len(pq.items) < limit {
		pq.PushItem(item)
		return true
	}
	if len(pq.items) > 0 && pq.less(pq.items[0], item) {
		pq.items[0] = item
		pq.siftDown(0)
		return true
	}
	return false
}

func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(pq.items[i], pq.items[p]) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(pq.items[r], pq.items[l]) {
			best = r
		}
		if !pq.less(pq.items[best], pq.items[i]) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
