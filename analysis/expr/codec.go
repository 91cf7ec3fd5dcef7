package expr

import (
	"go/constant"
	"math"
)

// Decoder inspects opaque expressions of type E over variables of type V.
// Front ends implement it for their own expression representation.
type Decoder[V comparable, E any] interface {
	// OperatorFor classifies the root of e.
	OperatorFor(e E) Operator
	// IsVariable returns the variable e denotes, if e is a variable.
	IsVariable(e E) (V, bool)
	IsConstant(e E) bool
	IsUnary(e E) bool
	IsBinary(e E) bool
	// Left returns the only operand of a unary expression or the left
	// operand of a binary one.
	Left(e E) E
	Right(e E) E
	// TryValueOf returns the value of a constant expression.
	TryValueOf(e E) (constant.Value, bool)
}

// Encoder builds opaque expressions.
type Encoder[V comparable, E any] interface {
	Variable(v V) E
	Constant(c constant.Value) E
	// Compound applies op to the operands. Unary operators take one operand,
	// binary operators two.
	Compound(op Operator, operands ...E) E
}

// TryInt64 extracts an integer constant representable in 64 bits.
func TryInt64[V comparable, E any](dec Decoder[V, E], e E) (int64, bool) {
	c, ok := dec.TryValueOf(e)
	if !ok || c.Kind() != constant.Int {
		return 0, false
	}
	return constant.Int64Val(c)
}

// TryInt32 extracts an integer constant representable in 32 bits.
func TryInt32[V comparable, E any](dec Decoder[V, E], e E) (int32, bool) {
	k, ok := TryInt64(dec, e)
	if !ok || k < math.MinInt32 || k > math.MaxInt32 {
		return 0, false
	}
	return int32(k), true
}

// TryBool extracts a boolean constant.
func TryBool[V comparable, E any](dec Decoder[V, E], e E) (bool, bool) {
	c, ok := dec.TryValueOf(e)
	if !ok || c.Kind() != constant.Bool {
		return false, false
	}
	return constant.BoolVal(c), true
}

// IntConstant encodes an integer constant.
func IntConstant[V comparable, E any](enc Encoder[V, E], k int64) E {
	return enc.Constant(constant.MakeInt64(k))
}
