package retrieval

import "cmp"

// candidate is a scored record inside a chunk's bounded queue.
type candidate struct {
	id    int
	score float64
}

// before reports whether a ranks ahead of b: lower score first, then lower id.
func before(a, b candidate) bool {
	if c := cmp.Compare(a.score, b.score); c != 0 {
		return c < 0
	}
	return a.id < b.id
}

func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(a.score, b.score); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// boundedQueue keeps the best capacity candidates seen so far.
// It is a max-heap on (score, id): the top is the worst kept candidate.
// It does NOT implement container/heap to avoid interface overhead.
type boundedQueue struct {
	capacity int
	items    []candidate
}

func newBoundedQueue(capacity int) *boundedQueue {
	return &boundedQueue{
		capacity: capacity,
		items:    make([]candidate, 0, min(capacity, 1024)),
	}
}

// Len returns the number of candidates kept.
func (q *boundedQueue) Len() int {
	return len(q.items)
}

// Push offers c. When the queue is full, c replaces the top only if it
// ranks ahead of it.
func (q *boundedQueue) Push(c candidate) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, c)
		q.siftUp(len(q.items) - 1)
		return
	}
	if q.capacity == 0 || !before(c, q.items[0]) {
		return
	}
	q.items[0] = c
	q.siftDown(0)
}

// Items returns the kept candidates in heap order.
func (q *boundedQueue) Items() []candidate {
	return q.items
}

// worse reports whether the element at i belongs above the element at j.
func (q *boundedQueue) worse(i, j int) bool {
	return before(q.items[j], q.items[i])
}

// siftUp moves the element at index i up the heap until the heap invariant is restored.
func (q *boundedQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.worse(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

// siftDown moves the element at index i down the heap until the heap invariant is restored.
func (q *boundedQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && q.worse(right, left) {
			child = right
		}
		if !q.worse(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
