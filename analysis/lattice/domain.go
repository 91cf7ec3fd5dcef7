package lattice

import "fmt"

// Lattice is the capability set shared by all abstract values of type D.
// Values are persistent: operations return new values and never modify
// the receiver.
type Lattice[D any] interface {
	fmt.Stringer

	IsBottom() bool
	IsTop() bool
	// Bottom and Top return the extreme elements of the receiver's lattice.
	// They carry over any per-session configuration of the receiver.
	Bottom() D
	Top() D

	LessEqual(D) bool
	Join(D) D
	Meet(D) D
	// Widening computes prev ∇ receiver. The receiver is expected to be
	// above prev.
	Widening(prev D) D
	// Narrowing computes prev Δ receiver.
	Narrowing(prev D) D
}

// Environment is an abstract value describing the variables of type V of a
// program point. Expressions of type E are decoded with the session's
// expression decoder.
type Environment[V comparable, E any, D any] interface {
	Lattice[D]

	// Variables lists the variables tracked by the environment.
	Variables() []V
	// AddVariable starts tracking x with an unknown value.
	AddVariable(x V) D
	// RemoveVariable forgets everything about x.
	RemoveVariable(x V) D
	// ProjectVariable existentially eliminates x, keeping the constraints
	// it induces between the remaining variables.
	ProjectVariable(x V) D
	// RenameVariable transfers everything known about from to to.
	RenameVariable(from, to V) D

	// Assign performs x := e.
	Assign(x V, e E) D
	// AssignInParallel performs the simultaneous assignment of each target.
	// All right-hand sides are evaluated in the pre-state.
	AssignInParallel(assignments map[V]E) D

	// TestTrue restricts the environment to the states where guard holds.
	TestTrue(guard E) D
	// TestFalse restricts the environment to the states where guard fails.
	TestFalse(guard E) D
	// CheckIfHolds decides e in the environment.
	CheckIfHolds(e E) Outcome

	// AssumeFact restricts the environment with a fact. Environments
	// return the receiver on facts they do not understand.
	AssumeFact(f Fact) D
}

// Fact is knowledge injected by a front end, e.g. the range of a parameter.
type Fact interface {
	fmt.Stringer
}

// BoundFact asserts that Var ranges over Bounds.
type BoundFact[V comparable] struct {
	Var    V
	Bounds Interval
}

func (f BoundFact[V]) String() string {
	return fmt.Sprintf("%v ∈ %s", f.Var, f.Bounds)
}

// TrivialLessEqual decides a ⊑ b when either side is ⊥ or ⊤. The second
// result is false when the comparison requires the structure of the values.
func TrivialLessEqual[D Lattice[D]](a, b D) (leq, ok bool) {
	switch {
	case a.IsBottom():
		return true, true
	case b.IsBottom():
		return false, true
	case b.IsTop():
		return true, true
	case a.IsTop():
		return false, true
	}
	return false, false
}

// TrivialJoin computes a ⊔ b when either side is ⊥ or ⊤.
func TrivialJoin[D Lattice[D]](a, b D) (join D, ok bool) {
	switch {
	case a.IsBottom():
		return b, true
	case b.IsBottom():
		return a, true
	case a.IsTop():
		return a, true
	case b.IsTop():
		return b, true
	}
	return join, false
}

// TrivialMeet computes a ⊓ b when either side is ⊥ or ⊤.
func TrivialMeet[D Lattice[D]](a, b D) (meet D, ok bool) {
	switch {
	case a.IsBottom():
		return a, true
	case b.IsBottom():
		return b, true
	case a.IsTop():
		return b, true
	case b.IsTop():
		return a, true
	}
	return meet, false
}
