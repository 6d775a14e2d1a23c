// Package pqueue provides a growable binary heap ordered by a caller-supplied
// comparator. The minimum element, as decided by less, is always at the root.
package pqueue

import "errors"

// InitialCapacity is the number of slots allocated by New.
const InitialCapacity = 128

// ErrEmpty is returned by Pop on a queue with no items.
var ErrEmpty = errors.New("pqueue: pop from empty queue")

// Queue is a binary heap stored in a dense array. Capacity doubles when the
// array fills and never shrinks. A Queue is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	n     int
	less  func(a, b T) bool
}

// New returns an empty queue where less(a, b) reports whether a must be
// served before b.
func New[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{
		items: make([]T, InitialCapacity),
		less:  less,
	}
}

func (q *Queue[T]) Len() int { return q.n }
func (q *Queue[T]) Cap() int { return len(q.items) }

func (q *Queue[T]) Push(item T) {
	if q.n == len(q.items) {
		grown := make([]T, 2*len(q.items))
		copy(grown, q.items)
		q.items = grown
	}
	q.items[q.n] = item
	q.n++
	q.up(q.n - 1)
}

// Pop removes and returns the root. Callers are expected to check Len first;
// an empty queue yields ErrEmpty.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q.n == 0 {
		return zero, ErrEmpty
	}
	root := q.items[0]
	q.n--
	q.items[0] = q.items[q.n]
	q.items[q.n] = zero
	q.down(0)
	return root, nil
}

// Peek returns the root without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.n == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

func (q *Queue[T]) up(j int) {
	for j > 0 {
		parent := (j - 1) / 2
		if !q.less(q.items[j], q.items[parent]) {
			break
		}
		q.swap(j, parent)
		j = parent
	}
}

func (q *Queue[T]) down(i int) {
	for {
		best := i
		if l := 2*i + 1; l < q.n && q.less(q.items[l], q.items[best]) {
			best = l
		}
		if r := 2*i + 2; r < q.n && q.less(q.items[r], q.items[best]) {
			best = r
		}
		if best == i {
			return
		}
		q.swap(i, best)
		i = best
	}
}

func (q *Queue[T]) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}
