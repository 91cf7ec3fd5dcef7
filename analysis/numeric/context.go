package numeric

import (
	"errors"
	"fmt"
	"math"

	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/analysis/normal"
)

// Overflow selects the integer model of arithmetic.
type Overflow uint8

const (
	// Wrap models int32 machine arithmetic. Results that may overflow are
	// over-approximated by the int32 range.
	Wrap Overflow = iota
	// Ideal models unbounded integers.
	Ideal
)

var ErrUnknownOverflow = errors.New("unknown overflow model")

func (o Overflow) String() string {
	switch o {
	case Wrap:
		return "wrap"
	case Ideal:
		return "ideal"
	}
	return "?"
}

// ParseOverflow reads an overflow model name.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "wrap":
		return Wrap, nil
	case "ideal":
		return Ideal, nil
	}
	return Wrap, fmt.Errorf("%q: %w", s, ErrUnknownOverflow)
}

// Context holds what all environments of one analysis session share.
// Contexts are read-only once created, so sessions running in parallel
// may share one.
type Context[V comparable, E any] struct {
	Decoder    expr.Decoder[V, E]
	Encoder    expr.Encoder[V, E]
	Thresholds L.Thresholds
	Overflow   Overflow
}

// NewContext creates a session context. The widening landmarks always
// include -1, 0 and 1, and the int32 limits under the Wrap model.
// Panics if the decoder or encoder is missing.
func NewContext[V comparable, E any](
	dec expr.Decoder[V, E],
	enc expr.Encoder[V, E],
	overflow Overflow,
	thresholds ...int64,
) *Context[V, E] {
	if dec == nil || enc == nil {
		panic("numeric: context requires an expression decoder and encoder")
	}

	ts := append([]int64{-1, 0, 1}, thresholds...)
	if overflow == Wrap {
		ts = append(ts, math.MinInt32, math.MaxInt32)
	}

	return &Context[V, E]{
		Decoder:    dec,
		Encoder:    enc,
		Thresholds: L.NewThresholds(ts...),
		Overflow:   overflow,
	}
}

// wrap applies the overflow model to the result of an operation.
func (ctx *Context[V, E]) wrap(i L.Interval) L.Interval {
	if ctx.Overflow == Wrap {
		return i.Wrap32()
	}
	return i
}

// safeOffset checks that adding k to a value in i cannot overflow under the
// session's model. Relations of the form x + k are only sound then.
func (ctx *Context[V, E]) safeOffset(i L.Interval, k int64) bool {
	return k == 0 || ctx.Overflow == Ideal || i.Add(L.Singleton(k)).Leq(L.Int32Interval())
}

// normalize reads e as k or x + k. The form is rejected when a conversion
// in e may truncate its operand, with bounds evaluating subexpressions, or
// when under the Ideal model the 32-bit constant folding differs from the
// unbounded constant.
func (ctx *Context[V, E]) normalize(e E, bounds func(E) L.Interval) (normal.Normalized[V], bool) {
	n, ok := normal.TryConvertFromLinear(e, ctx.Decoder, ctx.Encoder)
	if !ok || ctx.truncates(e, bounds) {
		return n, false
	}
	if ctx.Overflow == Ideal {
		lin, ok := normal.LinearFormOf(e, ctx.Decoder)
		if !ok || lin.Constant() != int64(n.Offset()) {
			return n, false
		}
	}
	return n, true
}

// truncates checks whether a conversion in e may change the value of its
// operand.
func (ctx *Context[V, E]) truncates(e E, bounds func(E) L.Interval) bool {
	dec := ctx.Decoder
	op := dec.OperatorFor(e)
	if bits, signed, ok := op.Conversion(); ok && !bounds(dec.Left(e)).Fits(bits, signed) {
		return true
	}
	switch {
	case op.IsUnary():
		return ctx.truncates(dec.Left(e), bounds)
	case op.IsBinary():
		return ctx.truncates(dec.Left(e), bounds) || ctx.truncates(dec.Right(e), bounds)
	}
	return false
}

// opened reads widening landmarks as infinite, so that narrowing may refine
// bounds that widening jumped to. Under the Wrap model the int32 limits are
// always landmarks.
func (ctx *Context[V, E]) opened(i L.Interval) L.Interval {
	if i.IsBot() {
		return i
	}
	low, high := i.Low(), i.High()
	if ctx.Thresholds.Contains(low) || ctx.Overflow == Wrap && low.Leq(L.FiniteBound(math.MinInt32)) {
		low = L.MinusInfinity{}
	}
	if ctx.Thresholds.Contains(high) || ctx.Overflow == Wrap && high.Geq(L.FiniteBound(math.MaxInt32)) {
		high = L.PlusInfinity{}
	}
	return L.NewInterval(low, high)
}

// open decides whether narrowing may refine a matrix entry.
func (ctx *Context[V, E]) open(b L.Bound) bool {
	return b.IsInfinite() || ctx.Thresholds.Contains(b) ||
		ctx.Overflow == Wrap && b.Geq(L.FiniteBound(math.MaxInt32))
}
