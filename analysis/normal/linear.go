package normal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cs-au-dk/absnum/analysis/expr"
)

// Linear is the form c1*x1 + ... + cn*xn + k. Variables with a zero
// coefficient are not stored.
type Linear[V comparable] struct {
	// Variables in order of first occurrence.
	vars   []V
	coeffs map[V]int64
	k      int64
}

func constLinear[V comparable](k int64) Linear[V] {
	return Linear[V]{coeffs: map[V]int64{}, k: k}
}

func varLinear[V comparable](v V) Linear[V] {
	return Linear[V]{vars: []V{v}, coeffs: map[V]int64{v: 1}}
}

// Constant returns k.
func (l Linear[V]) Constant() int64 { return l.k }

// Coefficient returns the coefficient of v.
func (l Linear[V]) Coefficient(v V) int64 { return l.coeffs[v] }

// Variables lists the variables with a non-zero coefficient.
func (l Linear[V]) Variables() []V {
	res := make([]V, 0, len(l.coeffs))
	for _, v := range l.vars {
		if l.coeffs[v] != 0 {
			res = append(res, v)
		}
	}
	return res
}

func (l Linear[V]) scale(c int64) Linear[V] {
	res := constLinear[V](l.k * c)
	if c == 0 {
		return res
	}
	res.vars = l.vars
	for v, a := range l.coeffs {
		res.coeffs[v] = a * c
	}
	return res
}

func (l Linear[V]) plus(o Linear[V]) Linear[V] {
	res := constLinear[V](l.k + o.k)
	res.vars = append(res.vars, l.vars...)
	for v, a := range l.coeffs {
		res.coeffs[v] = a
	}
	for _, v := range o.vars {
		if !slices.Contains(res.vars, v) {
			res.vars = append(res.vars, v)
		}
		res.coeffs[v] += o.coeffs[v]
	}
	for v, a := range res.coeffs {
		if a == 0 {
			delete(res.coeffs, v)
		}
	}
	return res
}

// LinearFormOf computes the linear form of e. It handles constants,
// variables, addition, subtraction, negation, integer conversions and
// multiplication where one side is constant. Conversions are read as the
// identity.
func LinearFormOf[V comparable, E any](e E, dec expr.Decoder[V, E]) (Linear[V], bool) {
	var none Linear[V]

	op := dec.OperatorFor(e)
	if op.IsConversion() {
		return LinearFormOf(dec.Left(e), dec)
	}
	switch op {
	case expr.Constant:
		c, _ := dec.TryValueOf(e)
		if k, ok := constantOf(c); ok {
			return constLinear[V](k), true
		}
	case expr.Variable:
		if v, ok := dec.IsVariable(e); ok {
			return varLinear(v), true
		}
	case expr.UnaryMinus:
		if l, ok := LinearFormOf(dec.Left(e), dec); ok {
			return l.scale(-1), true
		}
	case expr.Addition, expr.Subtraction, expr.Multiplication:
		l, ok := LinearFormOf(dec.Left(e), dec)
		if !ok {
			break
		}
		r, ok := LinearFormOf(dec.Right(e), dec)
		if !ok {
			break
		}

		switch op {
		case expr.Addition:
			return l.plus(r), true
		case expr.Subtraction:
			return l.plus(r.scale(-1)), true
		}

		switch {
		case len(r.coeffs) == 0:
			return l.scale(r.k), true
		case len(l.coeffs) == 0:
			return r.scale(l.k), true
		}
	}
	return none, false
}

// ToExpr encodes the linear form. Fails when a coefficient or the constant
// does not fit in 32 bits.
func ToExpr[V comparable, E any](l Linear[V], enc expr.Encoder[V, E]) (E, bool) {
	var res E
	first := true
	fits := func(k int64) bool { return k >= -1<<31 && k < 1<<31 }

	for _, v := range l.Variables() {
		c := l.coeffs[v]
		if !fits(c) {
			return res, false
		}
		term := enc.Variable(v)
		if c != 1 {
			term = enc.Compound(expr.Multiplication, expr.IntConstant(enc, c), term)
		}
		if first {
			res, first = term, false
		} else {
			res = enc.Compound(expr.Addition, res, term)
		}
	}

	if !fits(l.k) {
		return res, false
	}
	switch {
	case first:
		res = expr.IntConstant(enc, l.k)
	case l.k != 0:
		res = enc.Compound(expr.Addition, res, expr.IntConstant(enc, l.k))
	}
	return res, true
}

func (l Linear[V]) String() string {
	var parts []string
	for _, v := range l.Variables() {
		parts = append(parts, fmt.Sprintf("%d*%v", l.coeffs[v], v))
	}
	if l.k != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprint(l.k))
	}
	return strings.Join(parts, " + ")
}
