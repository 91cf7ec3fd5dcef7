package fixpoint

import "github.com/cs-au-dk/absnum/analysis/lattice"

// transfer runs the statements of one label over an abstract state.
type transfer[L comparable, V comparable, E any, D lattice.Environment[V, E, D]] struct {
	label L
	state D

	branched  bool
	cond      E
	then, els L

	// Invoked on every assertion with the state it is checked in.
	onAssert func(Obligation[L, E], D)
	asserts  int
}

func (t *transfer[L, V, E, D]) Nop() {}

func (t *transfer[L, V, E, D]) Assign(x V, e E) {
	t.state = t.state.Assign(x, e)
}

func (t *transfer[L, V, E, D]) AssignInParallel(assignments map[V]E) {
	t.state = t.state.AssignInParallel(assignments)
}

func (t *transfer[L, V, E, D]) Havoc(x V) {
	t.state = t.state.ProjectVariable(x)
}

func (t *transfer[L, V, E, D]) Assume(g E) {
	t.state = t.state.TestTrue(g)
}

func (t *transfer[L, V, E, D]) Assert(g E) {
	if t.onAssert != nil {
		t.onAssert(Obligation[L, E]{
			Label:   t.label,
			Index:   t.asserts,
			Guard:   g,
			Outcome: t.state.CheckIfHolds(g),
		}, t.state)
	}
	t.asserts++
	t.state = t.state.TestTrue(g)
}

func (t *transfer[L, V, E, D]) Branch(cond E, then, els L) {
	t.branched = true
	t.cond, t.then, t.els = cond, then, els
}

func (t *transfer[L, V, E, D]) Pop(x V) {
	t.state = t.state.ProjectVariable(x)
}

func (t *transfer[L, V, E, D]) Fact(f lattice.Fact) {
	t.state = t.state.AssumeFact(f)
}

// out computes the state flowing along the edge to succ.
func (t *transfer[L, V, E, D]) out(succ L) D {
	if !t.branched || t.state.IsBottom() {
		return t.state
	}

	switch {
	case succ == t.then && succ == t.els:
		return t.state
	case succ == t.then:
		return t.state.TestTrue(t.cond)
	case succ == t.els:
		return t.state.TestFalse(t.cond)
	}
	return t.state
}
