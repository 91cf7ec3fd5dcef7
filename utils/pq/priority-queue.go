package pq

import "container/heap"

// lessFunc is a comparison function between two elements of type T.
type lessFunc[T any] func(T, T) bool

// _heap satisfies the heap.Interface. It includes a list of elements,
// a comparison function and the set of elements in the list.
type _heap[T comparable] struct {
	list   []T
	queued map[T]struct{}
	less   lessFunc[T]
}

// Len returns the size of the heap.
func (h *_heap[T]) Len() int {
	return len(h.list)
}

// Swap interchanges the values of the elements at the given indices.
func (h *_heap[T]) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

// Push appends a given element to the heap.
func (h *_heap[T]) Push(x any) {
	el := x.(T)
	h.queued[el] = struct{}{}
	h.list = append(h.list, el)
}

// Pop retrieves the last element in the heap.
func (h *_heap[T]) Pop() any {
	old := h.list
	n := len(old)
	x := old[n-1]
	var zero T
	old[n-1] = zero
	h.list = old[0 : n-1]
	delete(h.queued, x)
	return x
}

// Less compares two elements in the heap at the given indices.
func (h *_heap[T]) Less(i, j int) bool {
	return h.less(h.list[i], h.list[j])
}

var _ heap.Interface = (*_heap[int])(nil)

// PriorityQueue is a heap-ordered set. An element is present at most once.
type PriorityQueue[T comparable] struct {
	heap *_heap[T]
}

// Empty creates an empty priority queue for elements of a given type,
// with the given comparison function. The element for which less holds
// against every other element is returned first.
func Empty[T comparable](less lessFunc[T]) PriorityQueue[T] {
	return PriorityQueue[T]{
		heap: &_heap[T]{
			queued: make(map[T]struct{}),
			less:   less,
		},
	}
}

// IsEmpty checks whether the priority queue is empty.
func (p PriorityQueue[T]) IsEmpty() bool {
	return p.heap.Len() == 0
}

// Len returns the number of queued elements.
func (p PriorityQueue[T]) Len() int {
	return p.heap.Len()
}

// GetNext pops the top element from the heap. Panics if the queue is empty.
func (p PriorityQueue[T]) GetNext() T {
	return heap.Pop(p.heap).(T)
}

// Add inserts the given element in the heap, if not already present.
// Returns whether the element was inserted.
func (p PriorityQueue[T]) Add(x T) bool {
	if _, found := p.heap.queued[x]; found {
		return false
	}

	heap.Push(p.heap, x)
	return true
}
