package graph

/*
	This package exposes utilities for working with graph structures.

	Control-flow graphs reach the fixpoint engine from several front ends,
	each with its own node representation.

	The goal of this package is to provide easy access to graph algorithms on
	data that has a graph representation.
	Currently this is done by only requiring the caller to provide a function
	describing the edge relation over comparable nodes.
*/

type edgesOf[T any] func(node T) []T

type Graph[T comparable] struct {
	edgesOf     edgesOf[T]
	cachedEdges map[T][]T
}

// Edges returns the successors of node. The edge function is invoked at
// most once per node.
func (G Graph[T]) Edges(node T) []T {
	if cached, found := G.cachedEdges[node]; found {
		return cached
	}

	es := G.edgesOf(node)
	G.cachedEdges[node] = es
	return es
}

func Of[T comparable](edgesOf edgesOf[T]) Graph[T] {
	return Graph[T]{
		edgesOf,
		make(map[T][]T),
	}
}

// Restrict returns the subgraph containing only the edges for which keep holds.
func (G Graph[T]) Restrict(keep func(from, to T) bool) Graph[T] {
	return Of(func(node T) (ret []T) {
		for _, e := range G.Edges(node) {
			if keep(node, e) {
				ret = append(ret, e)
			}
		}
		return
	})
}
