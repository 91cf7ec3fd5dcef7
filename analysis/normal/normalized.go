package normal

import (
	"fmt"
	"go/constant"
	"math"

	"github.com/cs-au-dk/absnum/analysis/expr"
)

type kind uint8

const (
	constantKind kind = iota
	variableKind
	additionKind
)

// Normalized is an expression of one of the shapes
//
//	k        (constant)
//	v        (variable)
//	v + k    (addition, k != 0)
//
// Values are immutable and comparable with ==.
type Normalized[V comparable] struct {
	kind kind
	v    V
	k    int32
}

// ForConstant creates the constant k.
func ForConstant[V comparable](k int32) Normalized[V] {
	return Normalized[V]{kind: constantKind, k: k}
}

// ForVariable creates the variable v.
func ForVariable[V comparable](v V) Normalized[V] {
	return Normalized[V]{kind: variableKind, v: v}
}

// For creates v + k, collapsing to a variable when k is zero.
func For[V comparable](v V, k int32) Normalized[V] {
	if k == 0 {
		return ForVariable(v)
	}
	return Normalized[V]{kind: additionKind, v: v, k: k}
}

func (n Normalized[V]) IsConstant() (int32, bool) {
	return n.k, n.kind == constantKind
}

func (n Normalized[V]) IsVariable() (V, bool) {
	if n.kind == variableKind {
		return n.v, true
	}
	var zero V
	return zero, false
}

func (n Normalized[V]) IsAddition() (V, int32, bool) {
	if n.kind == additionKind {
		return n.v, n.k, true
	}
	var zero V
	return zero, 0, false
}

// Offset returns the constant of a constant or addition, and 0 for a
// variable.
func (n Normalized[V]) Offset() int32 { return n.k }

// Base returns the variable and offset of a variable or addition.
func (n Normalized[V]) Base() (v V, k int32, ok bool) {
	if n.kind == constantKind {
		return v, 0, false
	}
	return n.v, n.k, true
}

func (n Normalized[V]) add(k int32) Normalized[V] {
	if n.kind == constantKind {
		return ForConstant[V](n.k + k)
	}
	return For(n.v, n.k+k)
}

// PlusOne returns n + 1. Offsets wrap around in 32 bits.
func (n Normalized[V]) PlusOne() Normalized[V] { return n.add(1) }

// MinusOne returns n - 1. Offsets wrap around in 32 bits.
func (n Normalized[V]) MinusOne() Normalized[V] { return n.add(-1) }

// Convert encodes n with enc.
func Convert[V comparable, E any](n Normalized[V], enc expr.Encoder[V, E]) E {
	switch n.kind {
	case constantKind:
		return expr.IntConstant(enc, int64(n.k))
	case variableKind:
		return enc.Variable(n.v)
	default:
		return enc.Compound(expr.Addition, enc.Variable(n.v), expr.IntConstant(enc, int64(n.k)))
	}
}

func (n Normalized[V]) String() string {
	switch n.kind {
	case constantKind:
		return fmt.Sprint(n.k)
	case variableKind:
		return fmt.Sprint(n.v)
	default:
		if n.k < 0 {
			return fmt.Sprintf("%v - %d", n.v, -int64(n.k))
		}
		return fmt.Sprintf("%v + %d", n.v, n.k)
	}
}

// TryConvertFrom normalizes e. It understands constants, variables,
// additions, subtractions and integer conversions, and fails on anything
// else. Constants are folded in 32 bits and conversions are read as the
// identity; callers modelling other arithmetic must check that neither
// changed the value.
func TryConvertFrom[V comparable, E any](e E, dec expr.Decoder[V, E]) (Normalized[V], bool) {
	var none Normalized[V]
	if dec == nil {
		return none, false
	}

	op := dec.OperatorFor(e)
	if op.IsConversion() {
		return TryConvertFrom(dec.Left(e), dec)
	}
	switch op {
	case expr.Constant:
		if k, ok := expr.TryInt32(dec, e); ok {
			return ForConstant[V](k), true
		}
	case expr.Variable:
		if v, ok := dec.IsVariable(e); ok {
			return ForVariable(v), true
		}
	case expr.Addition, expr.Subtraction:
		l, ok := TryConvertFrom(dec.Left(e), dec)
		if !ok {
			break
		}
		r, ok := TryConvertFrom(dec.Right(e), dec)
		if !ok {
			break
		}
		if op == expr.Addition {
			return add(l, r)
		}
		return sub(l, r)
	}
	return none, false
}

func add[V comparable](l, r Normalized[V]) (Normalized[V], bool) {
	switch {
	case r.kind == constantKind:
		// K + K, V + K, (V + k) + K
		return l.add(r.k), true
	case l.kind == constantKind:
		// K + V, K + (V + k)
		return r.add(l.k), true
	}
	return Normalized[V]{}, false
}

func sub[V comparable](l, r Normalized[V]) (Normalized[V], bool) {
	switch {
	case r.kind == constantKind:
		// -MinInt32 is not representable.
		if r.k == math.MinInt32 {
			break
		}
		return l.add(-r.k), true
	case l.kind != constantKind && r.kind != constantKind && l.v == r.v:
		// (V + a) - (V + b)
		return ForConstant[V](l.k - r.k), true
	}
	return Normalized[V]{}, false
}

// TryConvertFromLinear is like TryConvertFrom, but on failure retries
// through the linear form of e. This recognizes e.g. 2*x - x + 3 as x + 3.
func TryConvertFromLinear[V comparable, E any](e E, dec expr.Decoder[V, E], enc expr.Encoder[V, E]) (Normalized[V], bool) {
	if n, ok := TryConvertFrom(e, dec); ok {
		return n, true
	}
	if dec == nil || enc == nil {
		return Normalized[V]{}, false
	}

	lin, ok := LinearFormOf(e, dec)
	if !ok {
		return Normalized[V]{}, false
	}
	pure, ok := ToExpr(lin, enc)
	if !ok {
		return Normalized[V]{}, false
	}
	return TryConvertFrom(pure, dec)
}

// constantOf is the integer value of c, if it is one.
func constantOf(c constant.Value) (int64, bool) {
	if c == nil || c.Kind() != constant.Int {
		return 0, false
	}
	return constant.Int64Val(c)
}
