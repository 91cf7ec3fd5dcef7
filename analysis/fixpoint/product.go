package fixpoint

import (
	"fmt"

	"github.com/cs-au-dk/absnum/analysis/lattice"
)

// Product is the reduced-by-⊥ cartesian product of two environments over
// the same variables. If either component is ⊥, so is the product.
type Product[V comparable, E any, A lattice.Environment[V, E, A], B lattice.Environment[V, E, B]] struct {
	Left  A
	Right B
}

// NewProduct pairs two environments.
func NewProduct[V comparable, E any, A lattice.Environment[V, E, A], B lattice.Environment[V, E, B]](left A, right B) Product[V, E, A, B] {
	return Product[V, E, A, B]{left, right}.smash()
}

func (p Product[V, E, A, B]) smash() Product[V, E, A, B] {
	if p.Left.IsBottom() != p.Right.IsBottom() {
		return p.Bottom()
	}
	return p
}

func (p Product[V, E, A, B]) both(f func(A) A, g func(B) B) Product[V, E, A, B] {
	return Product[V, E, A, B]{f(p.Left), g(p.Right)}.smash()
}

func (p Product[V, E, A, B]) String() string {
	if p.IsBottom() {
		return p.Left.String()
	}
	return fmt.Sprintf("⟨%s, %s⟩", p.Left, p.Right)
}

func (p Product[V, E, A, B]) IsBottom() bool {
	return p.Left.IsBottom() || p.Right.IsBottom()
}

func (p Product[V, E, A, B]) IsTop() bool {
	return p.Left.IsTop() && p.Right.IsTop()
}

func (p Product[V, E, A, B]) Bottom() Product[V, E, A, B] {
	return Product[V, E, A, B]{p.Left.Bottom(), p.Right.Bottom()}
}

func (p Product[V, E, A, B]) Top() Product[V, E, A, B] {
	return Product[V, E, A, B]{p.Left.Top(), p.Right.Top()}
}

func (p Product[V, E, A, B]) LessEqual(o Product[V, E, A, B]) bool {
	if p.IsBottom() {
		return true
	}
	return p.Left.LessEqual(o.Left) && p.Right.LessEqual(o.Right)
}

func (p Product[V, E, A, B]) Join(o Product[V, E, A, B]) Product[V, E, A, B] {
	switch {
	case p.IsBottom():
		return o
	case o.IsBottom():
		return p
	}
	return Product[V, E, A, B]{p.Left.Join(o.Left), p.Right.Join(o.Right)}
}

func (p Product[V, E, A, B]) Meet(o Product[V, E, A, B]) Product[V, E, A, B] {
	return Product[V, E, A, B]{p.Left.Meet(o.Left), p.Right.Meet(o.Right)}.smash()
}

func (p Product[V, E, A, B]) Widening(prev Product[V, E, A, B]) Product[V, E, A, B] {
	if prev.IsBottom() {
		return p
	}
	return Product[V, E, A, B]{p.Left.Widening(prev.Left), p.Right.Widening(prev.Right)}
}

func (p Product[V, E, A, B]) Narrowing(prev Product[V, E, A, B]) Product[V, E, A, B] {
	return Product[V, E, A, B]{p.Left.Narrowing(prev.Left), p.Right.Narrowing(prev.Right)}.smash()
}

// Variables lists the variables of both components, left first.
func (p Product[V, E, A, B]) Variables() []V {
	vs := p.Left.Variables()
	seen := make(map[V]bool, len(vs))
	for _, x := range vs {
		seen[x] = true
	}
	for _, x := range p.Right.Variables() {
		if !seen[x] {
			vs = append(vs, x)
		}
	}
	return vs
}

func (p Product[V, E, A, B]) AddVariable(x V) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.AddVariable(x) }, func(b B) B { return b.AddVariable(x) })
}

func (p Product[V, E, A, B]) RemoveVariable(x V) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.RemoveVariable(x) }, func(b B) B { return b.RemoveVariable(x) })
}

func (p Product[V, E, A, B]) ProjectVariable(x V) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.ProjectVariable(x) }, func(b B) B { return b.ProjectVariable(x) })
}

func (p Product[V, E, A, B]) RenameVariable(from, to V) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.RenameVariable(from, to) }, func(b B) B { return b.RenameVariable(from, to) })
}

func (p Product[V, E, A, B]) Assign(x V, e E) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.Assign(x, e) }, func(b B) B { return b.Assign(x, e) })
}

func (p Product[V, E, A, B]) AssignInParallel(assignments map[V]E) Product[V, E, A, B] {
	return p.both(
		func(a A) A { return a.AssignInParallel(assignments) },
		func(b B) B { return b.AssignInParallel(assignments) },
	)
}

func (p Product[V, E, A, B]) TestTrue(g E) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.TestTrue(g) }, func(b B) B { return b.TestTrue(g) })
}

func (p Product[V, E, A, B]) TestFalse(g E) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.TestFalse(g) }, func(b B) B { return b.TestFalse(g) })
}

// CheckIfHolds meets the verdicts of both components.
func (p Product[V, E, A, B]) CheckIfHolds(e E) lattice.Outcome {
	if p.IsBottom() {
		return lattice.OutcomeBottom
	}
	return p.Left.CheckIfHolds(e).Meet(p.Right.CheckIfHolds(e))
}

func (p Product[V, E, A, B]) AssumeFact(f lattice.Fact) Product[V, E, A, B] {
	return p.both(func(a A) A { return a.AssumeFact(f) }, func(b B) B { return b.AssumeFact(f) })
}
