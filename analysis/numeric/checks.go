package numeric

import (
	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
)

// comparer is implemented by environments able to decide atomic relations.
type comparer[E any] interface {
	CheckIfLessThan(l, r E) L.Outcome
	CheckIfLessEqualThan(l, r E) L.Outcome
	CheckIfEqual(l, r E) L.Outcome
	CheckIfNonZero(e E) L.Outcome
}

// checkIfHolds decides a boolean expression by structural recursion, with
// the atomic relations answered by c. Integer expressions hold when they
// are non-zero.
func checkIfHolds[V comparable, E any](dec expr.Decoder[V, E], c comparer[E], e E) L.Outcome {
	switch dec.OperatorFor(e) {
	case expr.Constant:
		if b, ok := expr.TryBool(dec, e); ok {
			return L.OutcomeOf(b)
		}
	case expr.Not:
		return checkIfHolds(dec, c, dec.Left(e)).Negate()
	case expr.And:
		return checkIfHolds(dec, c, dec.Left(e)).And(checkIfHolds(dec, c, dec.Right(e)))
	case expr.Or:
		return checkIfHolds(dec, c, dec.Left(e)).Or(checkIfHolds(dec, c, dec.Right(e)))
	case expr.LessThan:
		return c.CheckIfLessThan(dec.Left(e), dec.Right(e))
	case expr.LessEqual:
		return c.CheckIfLessEqualThan(dec.Left(e), dec.Right(e))
	case expr.GreaterThan:
		return c.CheckIfLessThan(dec.Right(e), dec.Left(e))
	case expr.GreaterEqual:
		return c.CheckIfLessEqualThan(dec.Right(e), dec.Left(e))
	case expr.Equal:
		return c.CheckIfEqual(dec.Left(e), dec.Right(e))
	case expr.NotEqual:
		return c.CheckIfEqual(dec.Left(e), dec.Right(e)).Negate()
	}
	return c.CheckIfNonZero(e)
}

// truthInterval is the integer encoding of an outcome: 1 for true, 0 for
// false.
func truthInterval(o L.Outcome) L.Interval {
	switch o {
	case L.OutcomeBottom:
		return L.BotInterval()
	case L.OutcomeTrue:
		return L.Singleton(1)
	case L.OutcomeFalse:
		return L.Singleton(0)
	}
	return L.FiniteInterval(0, 1)
}

// excludeEdge removes k from i when k is one of the bounds of i.
func excludeEdge(i L.Interval, k int64) L.Interval {
	switch {
	case i.Low().Eq(L.FiniteBound(k)):
		return L.NewInterval(L.FiniteBound(k+1), i.High())
	case i.High().Eq(L.FiniteBound(k)):
		return L.NewInterval(i.Low(), L.FiniteBound(k-1))
	}
	return i
}
