// Package guard restricts abstract states to the states satisfying, or
// falsifying, a boolean guard.
package guard

import "github.com/cs-au-dk/absnum/analysis/expr"

// Refiner is implemented by abstract states that can be restricted by the
// atomic guards. Handlers are only invoked on non-⊥ receivers.
type Refiner[V comparable, E any, D any] interface {
	IsBottom() bool
	Bottom() D
	Join(D) D

	// AssumeEqual restricts to the states where l == r.
	AssumeEqual(l, r E) D
	// AssumeNotEqual restricts to the states where l != r.
	AssumeNotEqual(l, r E) D
	// AssumeLessThan restricts to the states where l < r.
	AssumeLessThan(l, r E) D
	// AssumeLessEqual restricts to the states where l <= r.
	AssumeLessEqual(l, r E) D
	// AssumeVariable restricts to the states where x != 0 is truth.
	AssumeVariable(x V, truth bool) D
}

// Test restricts d to the states where g evaluates to polarity.
//
// Conjunctions are refined sequentially and disjunctions by joining the
// refinements of each side, with the roles swapped when polarity is false.
// Comparisons are reduced to the four Refiner handlers. Guards of any other
// shape leave d unchanged.
func Test[V comparable, E any, D Refiner[V, E, D]](dec expr.Decoder[V, E], d D, g E, polarity bool) D {
	if d.IsBottom() {
		return d
	}

	op := dec.OperatorFor(g)
	switch op {
	case expr.Constant:
		truth, ok := expr.TryBool(dec, g)
		if !ok {
			k, ok := expr.TryInt64(dec, g)
			if !ok {
				return d
			}
			truth = k != 0
		}
		if truth != polarity {
			return d.Bottom()
		}
		return d

	case expr.Variable:
		if x, ok := dec.IsVariable(g); ok {
			return d.AssumeVariable(x, polarity)
		}
		return d

	case expr.Not:
		return Test(dec, d, dec.Left(g), !polarity)

	case expr.And, expr.Or:
		l, r := dec.Left(g), dec.Right(g)
		// a && b, and !(a || b) = !a && !b
		if (op == expr.And) == polarity {
			return Test(dec, Test(dec, d, l, polarity), r, polarity)
		}
		// a || b, and !(a && b) = !a || !b
		return Test(dec, d, l, polarity).Join(Test(dec, d, r, polarity))
	}

	if !op.IsComparison() {
		return d
	}
	if !polarity {
		op = op.Negate()
	}

	l, r := dec.Left(g), dec.Right(g)
	switch op {
	case expr.Equal:
		return d.AssumeEqual(l, r)
	case expr.NotEqual:
		return d.AssumeNotEqual(l, r)
	case expr.LessThan:
		return d.AssumeLessThan(l, r)
	case expr.LessEqual:
		return d.AssumeLessEqual(l, r)
	case expr.GreaterThan:
		return d.AssumeLessThan(r, l)
	default:
		return d.AssumeLessEqual(r, l)
	}
}
