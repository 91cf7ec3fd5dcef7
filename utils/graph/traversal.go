package graph

import W "github.com/cs-au-dk/absnum/utils/worklist"

// BFS visits the nodes reachable from starts in breadth-first order, until
// visit returns true. Reports whether the search stopped early.
func (G Graph[T]) BFS(visit func(node T) (stop bool), starts ...T) bool {
	stopped := false
	W.Visit(starts, func(node T, add func(T)) {
		if stopped {
			return
		}
		if visit(node) {
			stopped = true
			return
		}
		for _, next := range G.Edges(node) {
			add(next)
		}
	})
	return stopped
}

// Reachable lists the nodes reachable from starts in breadth-first order.
func (G Graph[T]) Reachable(starts ...T) (ret []T) {
	G.BFS(func(node T) bool {
		ret = append(ret, node)
		return false
	}, starts...)
	return
}
