package lattice

import (
	"fmt"
	"math"
	"slices"
)

// Interval is a member of the interval lattice over the extended integers.
// Any interval consists of two bounds, `low` and `high`. All empty intervals
// are represented by ⊥ = [∞, -∞].
type Interval struct {
	low  Bound
	high Bound
}

// NewInterval creates an interval with possibly infinite bounds.
// If low > high the result is ⊥.
func NewInterval(low, high Bound) Interval {
	if low.Gt(high) || low.Eq(PlusInfinity{}) || high.Eq(MinusInfinity{}) {
		return BotInterval()
	}
	return Interval{low: low, high: high}
}

// FiniteInterval creates an interval with finite bounds.
func FiniteInterval(low, high int64) Interval {
	return NewInterval(FiniteBound(low), FiniteBound(high))
}

// Singleton creates [k, k].
func Singleton(k int64) Interval {
	return FiniteInterval(k, k)
}

// TopInterval is [-∞, ∞].
func TopInterval() Interval {
	return Interval{low: MinusInfinity{}, high: PlusInfinity{}}
}

// BotInterval is [∞, -∞].
func BotInterval() Interval {
	return Interval{low: PlusInfinity{}, high: MinusInfinity{}}
}

// saturated builds the interval of an arithmetic result. A lower bound that
// overflowed to ∞ is clamped back to the largest integer, and dually for the
// upper bound, so that overflow never produces ⊥.
func saturated(low, high Bound) Interval {
	if low.Eq(PlusInfinity{}) {
		low = FiniteBound(math.MaxInt64)
	}
	if high.Eq(MinusInfinity{}) {
		high = FiniteBound(math.MinInt64)
	}
	return NewInterval(low, high)
}

// Int32Interval is the range of int32.
func Int32Interval() Interval {
	return FiniteInterval(math.MinInt32, math.MaxInt32)
}

func (e Interval) String() string {
	if e.IsBot() {
		return colorize.Element("⊥")
	}
	return "[" + e.low.String() + ", " + e.high.String() + "]"
}

// Height returns the height of the interval in the interval lattice.
// The height is computed as the difference between the high and low bounds,
// if both are finite, or -1 otherwise:
//
//	[c1, c2] = c2 - c1, if c1, c2 ∈ ℤ
//	[c1, c2] = -1, if c1 = ±∞  v  c2 = ±∞
func (e Interval) Height() int {
	l, lok := e.low.(FiniteBound)
	h, hok := e.high.(FiniteBound)
	if !(lok && hok) {
		return -1
	}
	return int(math.Max(0, float64(h-l)))
}

// IsBot checks that the interval is equal to ⊥ = [∞, -∞].
func (e Interval) IsBot() bool {
	return e == BotInterval()
}

// IsTop checks that the interval is equal to ⊤ = [-∞, ∞].
func (e Interval) IsTop() bool {
	return e == TopInterval()
}

// Low is the lower bound.
func (e Interval) Low() Bound { return e.low }

// High is the upper bound.
func (e Interval) High() Bound { return e.high }

// GetFiniteBounds unpacks the interval bounds, if finite, and panics otherwise.
func (e Interval) GetFiniteBounds() (int64, int64) {
	if e.low.IsInfinite() || e.high.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite bounds", e))
	}
	return int64(e.low.(FiniteBound)), int64(e.high.(FiniteBound))
}

// IsSingleton returns k if the interval is [k, k].
func (e Interval) IsSingleton() (int64, bool) {
	if l, ok := e.low.(FiniteBound); ok && e.low.Eq(e.high) {
		return int64(l), true
	}
	return 0, false
}

// Contains checks whether k is a member of the interval.
func (e Interval) Contains(k int64) bool {
	return !e.IsBot() && e.low.Leq(FiniteBound(k)) && e.high.Geq(FiniteBound(k))
}

// Eq computes i1 = i2.
func (e1 Interval) Eq(e2 Interval) bool {
	return e1.Leq(e2) && e2.Leq(e1)
}

// Leq computes i1 ⊑ i2.
func (e1 Interval) Leq(e2 Interval) bool {
	switch {
	case e1.IsBot():
		return true
	case e2.IsBot():
		return false
	}
	return e1.low.Geq(e2.low) && e1.high.Leq(e2.high)
}

// Join computes i1 ⊔ i2.
// The resulting interval takes the lowest of the lower bounds,
// and the highest of the upper bounds.
func (e1 Interval) Join(e2 Interval) Interval {
	switch {
	case e1.IsBot():
		return e2
	case e2.IsBot():
		return e1
	}
	return Interval{low: e1.low.Min(e2.low), high: e1.high.Max(e2.high)}
}

// Meet computes i1 ⊓ i2.
func (e1 Interval) Meet(e2 Interval) Interval {
	// [l1, h1], [l2, h2]:
	// h1 < l2 | h2 < l1 => [∞, -∞]
	return NewInterval(e1.low.Max(e2.low), e1.high.Min(e2.high))
}

// Thresholds are the landmarks used when widening. Unstable bounds jump to
// the nearest landmark instead of directly to infinity.
type Thresholds []int64

// NewThresholds sorts and deduplicates the landmarks.
func NewThresholds(ts ...int64) Thresholds {
	res := slices.Clone(ts)
	slices.Sort(res)
	return slices.Compact(res)
}

// Above returns the smallest landmark ≥ b, or ∞.
func (ts Thresholds) Above(b Bound) Bound {
	if b.IsInfinite() {
		return b
	}
	k := int64(b.(FiniteBound))
	if i, _ := slices.BinarySearch(ts, k); i < len(ts) {
		return FiniteBound(ts[i])
	}
	return PlusInfinity{}
}

// Contains checks whether b is a landmark.
func (ts Thresholds) Contains(b Bound) bool {
	k, ok := b.(FiniteBound)
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(ts, int64(k))
	return found
}

// Below returns the largest landmark ≤ b, or -∞.
func (ts Thresholds) Below(b Bound) Bound {
	if b.IsInfinite() {
		return b
	}
	k := int64(b.(FiniteBound))
	i, found := slices.BinarySearch(ts, k)
	switch {
	case found:
		return FiniteBound(ts[i])
	case i > 0:
		return FiniteBound(ts[i-1])
	}
	return MinusInfinity{}
}

// Widening computes prev ∇ e. Bounds of e that moved away from those of prev
// jump to the next landmark in that direction.
func (e Interval) Widening(prev Interval, ts Thresholds) Interval {
	switch {
	case prev.IsBot():
		return e
	case e.IsBot():
		return prev
	}

	low, high := prev.low, prev.high
	if e.low.Lt(prev.low) {
		low = ts.Below(e.low)
	}
	if e.high.Gt(prev.high) {
		high = ts.Above(e.high)
	}
	return Interval{low: low, high: high}
}

// Narrowing computes prev Δ e. Only infinite bounds of prev are refined.
func (e Interval) Narrowing(prev Interval) Interval {
	switch {
	case prev.IsBot():
		return prev
	case e.IsBot():
		return e
	}

	low, high := prev.low, prev.high
	if low.IsInfinite() {
		low = e.low
	}
	if high.IsInfinite() {
		high = e.high
	}
	return NewInterval(low, high)
}

// Add computes the interval addition [l1 + l2, h1 + h2].
func (e1 Interval) Add(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return BotInterval()
	}
	return saturated(e1.low.Plus(e2.low), e1.high.Plus(e2.high))
}

// Neg computes [-h, -l].
func (e Interval) Neg() Interval {
	if e.IsBot() {
		return e
	}
	return saturated(e.high.Neg(), e.low.Neg())
}

// Sub computes the interval subtraction [l1 - h2, h1 - l2].
func (e1 Interval) Sub(e2 Interval) Interval {
	return e1.Add(e2.Neg())
}

// hull is the smallest interval containing all bounds.
func hull(bs ...Bound) Interval {
	low, high := bs[0], bs[0]
	for _, b := range bs[1:] {
		low, high = low.Min(b), high.Max(b)
	}
	return saturated(low, high)
}

// Mul computes the hull of the pairwise products of the bounds.
func (e1 Interval) Mul(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return BotInterval()
	}
	return hull(
		e1.low.Mult(e2.low), e1.low.Mult(e2.high),
		e1.high.Mult(e2.low), e1.high.Mult(e2.high),
	)
}

// split divides e into its negative and positive parts, leaving out 0.
func (e Interval) split() (neg, pos Interval) {
	return e.Meet(NewInterval(MinusInfinity{}, FiniteBound(-1))),
		e.Meet(NewInterval(FiniteBound(1), PlusInfinity{}))
}

// Div computes the truncated division e1 / e2. Divisors equal to 0 are
// ignored, so [k, k] / [0, 0] is ⊥.
func (e1 Interval) Div(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return BotInterval()
	}

	res := BotInterval()
	neg, pos := e2.split()
	for _, d := range []Interval{neg, pos} {
		if d.IsBot() {
			continue
		}
		res = res.Join(hull(
			e1.low.Div(d.low), e1.low.Div(d.high),
			e1.high.Div(d.low), e1.high.Div(d.high),
		))
	}
	return res
}

// Rem computes the truncated remainder e1 % e2. The result has the sign of
// the dividend and is smaller than the divisor in magnitude.
func (e1 Interval) Rem(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return BotInterval()
	}
	neg, pos := e2.split()
	if neg.IsBot() && pos.IsBot() {
		return BotInterval()
	}

	if a, ok := e1.IsSingleton(); ok {
		if b, ok := e2.IsSingleton(); ok && b != 0 {
			if b == -1 {
				return Singleton(0)
			}
			return Singleton(a % b)
		}
	}

	// |e1 % e2| ≤ max(|e2|) - 1
	m := e2.low.Neg().Max(e2.high).Minus(FiniteBound(1))
	res := NewInterval(m.Neg(), m)
	if e1.low.Geq(FiniteBound(0)) {
		res = res.Meet(NewInterval(FiniteBound(0), e1.high))
	} else if e1.high.Leq(FiniteBound(0)) {
		res = res.Meet(NewInterval(e1.low, FiniteBound(0)))
	} else {
		res = res.Meet(e1)
	}
	return res
}

// IntRange is the range of the integer type with the given width and
// signedness. The upper end of the 64-bit unsigned range is ∞.
func IntRange(bits uint, signed bool) Interval {
	switch {
	case signed:
		return FiniteInterval(-1<<(bits-1), 1<<(bits-1)-1)
	case bits < 64:
		return FiniteInterval(0, 1<<bits-1)
	}
	return NewInterval(FiniteBound(0), PlusInfinity{})
}

// Fits checks that every member of the interval is a value of the integer
// type with the given width and signedness.
func (e Interval) Fits(bits uint, signed bool) bool {
	return e.IsBot() || e.Leq(IntRange(bits, signed)) && !e.high.IsInfinite()
}

// Wrap over-approximates the values obtained by truncating the members of
// the interval to an integer type with the given width and signedness.
// Intervals that fit the type are unchanged.
func (e Interval) Wrap(bits uint, signed bool) Interval {
	if e.Fits(bits, signed) {
		return e
	}
	if k, ok := e.IsSingleton(); ok && bits < 64 {
		shift := 64 - bits
		if signed {
			return Singleton(k << shift >> shift)
		}
		return Singleton(int64(uint64(k) << shift >> shift))
	}
	return IntRange(bits, signed)
}

// Wrap32 over-approximates the int32 values obtained by truncating the
// members of the interval to 32 bits.
func (e Interval) Wrap32() Interval {
	return e.Wrap(32, true)
}

// CheckLessThan decides whether every member of e1 is smaller than every
// member of e2.
func (e1 Interval) CheckLessThan(e2 Interval) Outcome {
	switch {
	case e1.IsBot() || e2.IsBot():
		return OutcomeBottom
	case e1.high.Lt(e2.low):
		return OutcomeTrue
	case e1.low.Geq(e2.high):
		return OutcomeFalse
	}
	return OutcomeTop
}

// CheckLessEqual decides whether every member of e1 is at most every
// member of e2.
func (e1 Interval) CheckLessEqual(e2 Interval) Outcome {
	switch {
	case e1.IsBot() || e2.IsBot():
		return OutcomeBottom
	case e1.high.Leq(e2.low):
		return OutcomeTrue
	case e1.low.Gt(e2.high):
		return OutcomeFalse
	}
	return OutcomeTop
}

// CheckEqual decides whether e1 and e2 denote the same single value.
func (e1 Interval) CheckEqual(e2 Interval) Outcome {
	switch {
	case e1.IsBot() || e2.IsBot():
		return OutcomeBottom
	case e1.Meet(e2).IsBot():
		return OutcomeFalse
	}
	if a, ok := e1.IsSingleton(); ok {
		if b, ok := e2.IsSingleton(); ok && a == b {
			return OutcomeTrue
		}
	}
	return OutcomeTop
}
