package numeric

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
)

// eval computes the value of e in a concrete state. Booleans are 0 and 1.
// Under Wrap every arithmetic result is truncated to 32 bits.
func eval(e E, state map[string]int64, overflow Overflow) int64 {
	wrap := func(k int64) int64 {
		if overflow == Wrap {
			return int64(int32(k))
		}
		return k
	}
	truth := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}
	l := func() int64 { return eval(codec.Left(e), state, overflow) }
	r := func() int64 { return eval(codec.Right(e), state, overflow) }

	switch op := codec.OperatorFor(e); op {
	case expr.Constant:
		if k, ok := expr.TryInt64[string](codec, e); ok {
			return k
		}
		b, _ := expr.TryBool[string](codec, e)
		return truth(b)
	case expr.Variable:
		x, _ := codec.IsVariable(e)
		return state[x]
	case expr.Addition:
		return wrap(l() + r())
	case expr.Subtraction:
		return wrap(l() - r())
	case expr.Multiplication:
		return wrap(l() * r())
	case expr.UnaryMinus:
		return wrap(-l())
	case expr.Not:
		return truth(l() == 0)
	case expr.And:
		return truth(l() != 0 && r() != 0)
	case expr.Or:
		return truth(l() != 0 || r() != 0)
	case expr.Equal:
		return truth(l() == r())
	case expr.NotEqual:
		return truth(l() != r())
	case expr.LessThan:
		return truth(l() < r())
	case expr.LessEqual:
		return truth(l() <= r())
	case expr.GreaterThan:
		return truth(l() > r())
	case expr.GreaterEqual:
		return truth(l() >= r())
	default:
		if bits, signed, ok := op.Conversion(); ok {
			k, ok := L.Singleton(l()).Wrap(bits, signed).IsSingleton()
			if !ok {
				panic(fmt.Sprintf("cannot evaluate %v concretely", e))
			}
			return k
		}
	}
	panic(fmt.Sprintf("unsupported operator in %v", e))
}

// refinable is the part of an environment exercised by the sampling below.
type refinable[D any] interface {
	IsBottom() bool
	BoundsOf(string) L.Interval
	AssumeFact(L.Fact) D
	Assign(string, E) D
	Meet(D) D
	TestTrue(E) D
	TestFalse(E) D
}

var (
	samples = []int64{
		math.MinInt32, math.MinInt32 + 1, -11, -1, 0, 1, 4, 5, 10, 11,
		math.MaxInt32 - 1, math.MaxInt32,
	}

	boxes = [][2]L.Interval{
		{L.Int32Interval(), L.Int32Interval()},
		{itv(0, 10), L.Int32Interval()},
		{itv(0, 10), itv(-11, 5)},
	}

	guards = []string{
		"x < y",
		"x + 1 <= y",
		"x - 1 == y",
		"x != y + 1",
		"x + 2147483647 + 1 > 0",
		"x + 2147483647 < y",
		"y - 2147483647 - 1 <= x",
		"int32(x + 2147483647) < 0",
		"int8(x) == y",
		"x * 2 < y",
		"!(x < y) && y > 4",
		"x == 5 || y + 1 > x",
	}
)

// checkRefinementSound samples concrete states in each box and checks that
// every state satisfying a guard survives TestTrue, and every state
// falsifying it survives TestFalse.
func checkRefinementSound[D refinable[D]](t *testing.T, top D, overflow Overflow) {
	t.Helper()
	for _, box := range boxes {
		init := top.
			AssumeFact(L.BoundFact[string]{Var: "x", Bounds: box[0]}).
			AssumeFact(L.BoundFact[string]{Var: "y", Bounds: box[1]})

		for _, src := range guards {
			g := p(src)
			refined := map[bool]D{true: init.TestTrue(g), false: init.TestFalse(g)}

			for _, vx := range samples {
				if !box[0].Contains(vx) {
					continue
				}
				for _, vy := range samples {
					if !box[1].Contains(vy) {
						continue
					}
					state := map[string]int64{"x": vx, "y": vy}
					holds := eval(g, state, overflow) != 0
					d := refined[holds]

					msg := fmt.Sprintf("%s is %v at x=%d y=%d in %v", src, holds, vx, vy, box)
					if !assert.True(t, d.BoundsOf("x").Contains(vx), msg) ||
						!assert.True(t, d.BoundsOf("y").Contains(vy), msg) {
						continue
					}
					point := top.Assign("x", expr.Int[string](vx)).Assign("y", expr.Int[string](vy))
					assert.False(t, d.Meet(point).IsBottom(), msg)
				}
			}
		}
	}
}

func TestGuardRefinementSound(t *testing.T) {
	for _, overflow := range []Overflow{Wrap, Ideal} {
		t.Run(fmt.Sprintf("intervals/%v", overflow), func(t *testing.T) {
			checkRefinementSound[*Intervals[string, E]](t, NewIntervals(newContext(overflow)), overflow)
		})
		t.Run(fmt.Sprintf("zones/%v", overflow), func(t *testing.T) {
			checkRefinementSound[*Zones[string, E]](t, NewZones(newContext(overflow)), overflow)
		})
	}
}
