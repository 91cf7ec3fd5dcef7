package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs-au-dk/absnum/analysis/expr"
)

var codec = expr.Tree[string]{}

// states is the exact domain of sets of valuations of x and y.
type states map[[2]int64]bool

func index(x string) int {
	if x == "y" {
		return 1
	}
	return 0
}

func eval(e *expr.Expr[string], s [2]int64) int64 {
	truth := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}

	switch e.Op() {
	case expr.Constant:
		if b, ok := expr.TryBool(codec, e); ok {
			return truth(b)
		}
		k, _ := expr.TryInt64(codec, e)
		return k
	case expr.Variable:
		x, _ := codec.IsVariable(e)
		return s[index(x)]
	case expr.Not:
		return truth(eval(codec.Left(e), s) == 0)
	case expr.UnaryMinus:
		return -eval(codec.Left(e), s)
	}

	l, r := eval(codec.Left(e), s), eval(codec.Right(e), s)
	switch e.Op() {
	case expr.Addition:
		return l + r
	case expr.Subtraction:
		return l - r
	case expr.Multiplication:
		return l * r
	case expr.And:
		return truth(l != 0 && r != 0)
	case expr.Or:
		return truth(l != 0 || r != 0)
	case expr.Equal:
		return truth(l == r)
	case expr.NotEqual:
		return truth(l != r)
	case expr.LessThan:
		return truth(l < r)
	case expr.LessEqual:
		return truth(l <= r)
	case expr.GreaterThan:
		return truth(l > r)
	case expr.GreaterEqual:
		return truth(l >= r)
	}
	panic(e.String())
}

func (d states) filter(f func([2]int64) bool) states {
	res := states{}
	for s := range d {
		if f(s) {
			res[s] = true
		}
	}
	return res
}

func (d states) where(e *expr.Expr[string], truth bool) states {
	return d.filter(func(s [2]int64) bool { return (eval(e, s) != 0) == truth })
}

func (d states) IsBottom() bool { return len(d) == 0 }
func (d states) Bottom() states { return states{} }

func (d states) Join(o states) states {
	res := states{}
	for s := range d {
		res[s] = true
	}
	for s := range o {
		res[s] = true
	}
	return res
}

func (d states) AssumeEqual(l, r *expr.Expr[string]) states {
	return d.filter(func(s [2]int64) bool { return eval(l, s) == eval(r, s) })
}

func (d states) AssumeNotEqual(l, r *expr.Expr[string]) states {
	return d.filter(func(s [2]int64) bool { return eval(l, s) != eval(r, s) })
}

func (d states) AssumeLessThan(l, r *expr.Expr[string]) states {
	return d.filter(func(s [2]int64) bool { return eval(l, s) < eval(r, s) })
}

func (d states) AssumeLessEqual(l, r *expr.Expr[string]) states {
	return d.filter(func(s [2]int64) bool { return eval(l, s) <= eval(r, s) })
}

func (d states) AssumeVariable(x string, truth bool) states {
	return d.filter(func(s [2]int64) bool { return (s[index(x)] != 0) == truth })
}

func grid() states {
	d := states{}
	for x := int64(-2); x <= 2; x++ {
		for y := int64(-2); y <= 2; y++ {
			d[[2]int64{x, y}] = true
		}
	}
	return d
}

// With exact handlers the refinement is exactly the set of states where the
// guard evaluates to the polarity.
func TestExactRefinement(t *testing.T) {
	guards := []string{
		"x < y",
		"x <= 1",
		"x > y",
		"x >= 0",
		"x == y",
		"x != y",
		"x",
		"!x",
		"x < y && y < 1",
		"x < 0 || y > 0",
		"!(x == 0 || y == 0)",
		"!(x < y && x > -2)",
		"x + y < 1",
		"x * y > 0",
		"-x > y",
		"true",
		"false",
		"1",
		"0",
	}

	all := grid()
	for _, g := range guards {
		e := expr.MustParse(g)
		for _, polarity := range []bool{true, false} {
			assert.Equal(t, all.where(e, polarity), Test(codec, all, e, polarity), "%s under %v", g, polarity)
		}
	}
}

func TestUnknownShapes(t *testing.T) {
	all := grid()
	// Arithmetic is not a guard shape, and nothing is refined.
	assert.Equal(t, all, Test(codec, all, expr.MustParse("x + y"), true))
	assert.Equal(t, all, Test(codec, all, expr.MustParse("x + y"), false))
}

func TestBottomShortCircuits(t *testing.T) {
	none := states{}
	assert.True(t, Test(codec, none, expr.MustParse("x < y || x"), true).IsBottom())
	assert.True(t, Test(codec, none, expr.MustParse("true"), false).IsBottom())
}
