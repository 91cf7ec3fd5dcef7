package fixpoint

import (
	"fmt"

	"github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils/dot"
	"github.com/cs-au-dk/absnum/utils/graph"
	"github.com/cs-au-dk/absnum/utils/hmap"
)

// Result holds the abstract states computed by Analyze.
type Result[L comparable, V comparable, E any, D lattice.Environment[V, E, D]] struct {
	// Iterations counts the work-list pops of the ascending phase.
	Iterations int
	// Complete is false when the analysis was cancelled or hit the
	// iteration cap. States are then not guaranteed to be sound.
	Complete bool
	Err      error

	prog   Program[L, V, E]
	G      graph.Graph[L]
	wto    graph.WTO[L]
	bottom D
	states map[L]D
	edges  *hmap.MultiKey[L, L, D]

	obligations []Obligation[L, E]
}

func (a *analysis[L, V, E, D]) result(err error) *Result[L, V, E, D] {
	r := &Result[L, V, E, D]{
		Iterations: a.iterations,
		Complete:   err == nil,
		Err:        err,
		prog:       a.prog,
		G:          a.G,
		wto:        a.wto,
		bottom:     a.bottom,
		states:     a.states,
		edges:      a.edges,
	}

	for _, l := range a.wto.Order {
		t := &transfer[L, V, E, D]{
			label: l,
			state: a.stateAt(l),
			onAssert: func(o Obligation[L, E], state D) {
				switch {
				case !r.Complete:
					o.Outcome = lattice.OutcomeTop
				case state.IsBottom():
					o.Outcome = lattice.OutcomeBottom
				}
				r.obligations = append(r.obligations, o)
			},
		}
		// Assertions are reported for unreachable labels as well.
		a.prog.Decode(l, t)
	}

	return r
}

// Labels lists the labels reachable from the entry in weak topological
// order.
func (r *Result[L, V, E, D]) Labels() []L {
	return r.wto.Order
}

// IsHead checks whether l is a widening point.
func (r *Result[L, V, E, D]) IsHead(l L) bool {
	return r.wto.IsHead(l)
}

// StateAt returns the state on entry to l. Unreached labels are ⊥.
func (r *Result[L, V, E, D]) StateAt(l L) D {
	if s, found := r.states[l]; found {
		return s
	}
	return r.bottom
}

// StateAfter runs the statements of l over its state. A final branch
// does not refine the result.
func (r *Result[L, V, E, D]) StateAfter(l L) D {
	t := &transfer[L, V, E, D]{label: l, state: r.StateAt(l)}
	if r.prog != nil && !t.state.IsBottom() {
		r.prog.Decode(l, t)
	}
	return t.state
}

// EdgeState returns the state flowing from one label to another.
func (r *Result[L, V, E, D]) EdgeState(from, to L) D {
	if s, found := r.edges.GetOk(from, to); found {
		return s
	}
	return r.bottom
}

// DeadEdges lists the edges leaving a reachable label that no execution
// can take.
func (r *Result[L, V, E, D]) DeadEdges() (ret []Edge[L]) {
	for _, l := range r.wto.Order {
		if r.StateAt(l).IsBottom() {
			continue
		}
		for _, succ := range r.G.Edges(l) {
			if r.EdgeState(l, succ).IsBottom() {
				ret = append(ret, Edge[L]{l, succ})
			}
		}
	}
	return
}

// Unreachable lists, in weak topological order, the labels no path of live
// edges leads to from the entry. Incomplete results report none.
func (r *Result[L, V, E, D]) Unreachable() (ret []L) {
	if r.prog == nil || !r.Complete {
		return nil
	}

	live := r.G.Restrict(func(from, to L) bool {
		return !r.EdgeState(from, to).IsBottom()
	})

	reached := make(map[L]bool, len(r.wto.Order))
	for _, l := range live.Reachable(r.prog.Entry()) {
		reached[l] = true
	}
	for _, l := range r.wto.Order {
		if !reached[l] {
			ret = append(ret, l)
		}
	}
	return
}

// Obligations returns the verdict on every assertion, in label order.
func (r *Result[L, V, E, D]) Obligations() []Obligation[L, E] {
	return r.obligations
}

// ToDotGraph draws the control-flow graph with the state of every label.
// Heads are drawn with a double border and dead edges are dashed.
// Labels of a loop are clustered by their innermost head.
func (r *Result[L, V, E, D]) ToDotGraph(title string) *dot.Graph {
	dg := r.G.ToDotGraph(r.wto.Order, &graph.VisualizationConfig[L]{
		NodeAttrs: func(l L) (string, dot.Attrs) {
			state := r.StateAt(l)
			attrs := dot.Attrs{
				"label": fmt.Sprintf("%v\n%s", l, state),
			}
			if r.wto.IsHead(l) {
				attrs["peripheries"] = "2"
			}
			if state.IsBottom() {
				attrs["fillcolor"] = "lightgray"
			}
			return fmt.Sprint(l), attrs
		},
		EdgeAttrs: func(from, to L) dot.Attrs {
			if !r.StateAt(from).IsBottom() && r.EdgeState(from, to).IsBottom() {
				return dot.Attrs{"style": "dashed", "color": "gray"}
			}
			return nil
		},
		Cluster: r.wto.Head,
		ClusterAttrs: func(head L) dot.Attrs {
			return dot.Attrs{"label": fmt.Sprintf("loop %v", head), "style": "dashed"}
		},
	})
	dg.Title = title
	return dg
}
