// Package fixpoint computes the abstract states of a control-flow graph by
// chaotic iteration in weak topological order, with widening at component
// heads followed by a bounded number of narrowing passes.
package fixpoint

import "github.com/cs-au-dk/absnum/analysis/lattice"

// Program supplies the control-flow graph of one analyzed procedure.
type Program[L comparable, V comparable, E any] interface {
	// Entry returns the label execution starts at.
	Entry() L
	// Successors returns the labels control may flow to from l.
	Successors(l L) []L
	// Decode dispatches the statements at l to v, in execution order. Only
	// the last statement may be a Branch.
	Decode(l L, v Visitor[L, V, E])
}

// Visitor receives the statements of a label.
type Visitor[L comparable, V comparable, E any] interface {
	Nop()
	Assign(x V, e E)
	AssignInParallel(assignments map[V]E)
	// Havoc gives x an unknown value.
	Havoc(x V)
	Assume(g E)
	// Assert is a proof obligation. Execution continues assuming g.
	Assert(g E)
	// Branch transfers control to then when cond holds and to els
	// otherwise.
	Branch(cond E, then, els L)
	// Pop is reached when x leaves scope.
	Pop(x V)
	Fact(f lattice.Fact)
}

// Edge is a control-flow edge between two labels.
type Edge[L comparable] struct {
	From, To L
}

// Obligation is the verdict on an assertion.
type Obligation[L comparable, E any] struct {
	Label L
	// Index orders the assertions of one label.
	Index   int
	Guard   E
	Outcome lattice.Outcome
}
