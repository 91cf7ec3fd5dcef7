package graph

// WTO is a weak topological ordering of the nodes reachable from an entry
// (Bourdoncle, "Efficient chaotic iteration strategies with widenings", 1993).
// Every cycle in the graph contains a head, and the body of every component
// is ordered after its head and before any node following the component.
type WTO[T comparable] struct {
	// Order lists the reachable nodes in WTO order.
	Order []T
	pos   map[T]int
	head  map[T]bool
	depth map[T]int
	// Innermost head enclosing each node in a component.
	component map[T]T
}

// Position returns the index of node in Order, or -1 if it is unreachable.
func (w WTO[T]) Position(node T) int {
	if p, ok := w.pos[node]; ok {
		return p
	}
	return -1
}

// IsHead checks whether node is the head of a component.
func (w WTO[T]) IsHead(node T) bool {
	return w.head[node]
}

// Heads lists the component heads in WTO order.
func (w WTO[T]) Heads() (ret []T) {
	for _, n := range w.Order {
		if w.head[n] {
			ret = append(ret, n)
		}
	}
	return
}

// Depth is the number of components enclosing node. A head counts its own
// component.
func (w WTO[T]) Depth(node T) int {
	return w.depth[node]
}

// Head returns the head of the innermost component containing node, which
// is node itself for heads. Reports false outside of any component.
func (w WTO[T]) Head(node T) (T, bool) {
	h, ok := w.component[node]
	return h, ok
}

// Less orders nodes by WTO position.
func (w WTO[T]) Less(a, b T) bool {
	return w.pos[a] < w.pos[b]
}

// WTO computes a weak topological ordering by recursive SCC decomposition.
// The head of a cyclic component is the node first reached by a depth-first
// search from entry, which is always an entry point of the component.
func (G Graph[T]) WTO(entry T) WTO[T] {
	pre := make(map[T]int)
	var dfs func(T)
	dfs = func(node T) {
		pre[node] = len(pre)
		for _, e := range G.Edges(node) {
			if _, seen := pre[e]; !seen {
				dfs(e)
			}
		}
	}
	dfs(entry)

	w := WTO[T]{
		pos:       make(map[T]int),
		head:      make(map[T]bool),
		depth:     make(map[T]int),
		component: make(map[T]T),
	}

	// outer is the enclosing head, or nil at the top level.
	emit := func(node T, depth int, outer *T) {
		w.pos[node] = len(w.Order)
		w.Order = append(w.Order, node)
		w.depth[node] = depth
		if outer != nil {
			w.component[node] = *outer
		}
	}

	var build func(g Graph[T], starts []T, depth int, outer *T)
	build = func(g Graph[T], starts []T, depth int, outer *T) {
		scc := g.SCC(starts)
		// Components come in reverse topological order.
		for c := len(scc.Components) - 1; c >= 0; c-- {
			comp := scc.Components[c]
			if !scc.IsCyclic(c) {
				emit(comp[0], depth, outer)
				continue
			}

			h := comp[0]
			inComp := make(map[T]bool, len(comp))
			for _, n := range comp {
				inComp[n] = true
				if pre[n] < pre[h] {
					h = n
				}
			}
			w.head[h] = true
			emit(h, depth+1, &h)

			body := g.Restrict(func(_, to T) bool {
				return inComp[to] && to != h
			})
			build(body, body.Edges(h), depth+1, &h)
		}
	}
	build(G, []T{entry}, 0, nil)

	return w
}
