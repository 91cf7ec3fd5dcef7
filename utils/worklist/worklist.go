package worklist

// Worklist is a FIFO queue in which every element is enqueued at most once
// over the lifetime of the worklist.
type Worklist[T comparable] struct {
	list []T
	seen map[T]struct{}
}

// Visit runs a worklist seeded with the given start elements. The iteration
// function exposes the next element and a function with which to add more
// elements. Every distinct element is passed to do exactly once.
func Visit[T comparable](starts []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range starts {
		W.Add(e)
	}

	W.Process(do)
}

func Empty[T comparable]() *Worklist[T] {
	return &Worklist[T]{seen: make(map[T]struct{})}
}

// GetNext dequeues the oldest element. Returns the zero value if empty.
func (w *Worklist[T]) GetNext() (ret T) {
	if len(w.list) == 0 {
		return
	}
	next := w.list[0]
	w.list = w.list[1:]
	return next
}

func (w *Worklist[T]) IsEmpty() bool {
	return len(w.list) == 0
}

// Seen reports whether el was ever added.
func (w *Worklist[T]) Seen(el T) bool {
	_, ok := w.seen[el]
	return ok
}

func (w *Worklist[T]) Process(
	do func(
		next T,
		add func(element T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), func(el T) { w.Add(el) })
	}
}

// Add enqueues el unless it was added before. Returns whether it was enqueued.
func (w *Worklist[T]) Add(el T) bool {
	if w.Seen(el) {
		return false
	}
	w.seen[el] = struct{}{}
	w.list = append(w.list, el)
	return true
}
