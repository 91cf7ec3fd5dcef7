package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs-au-dk/absnum/utils"
)

func init() {
	utils.Opts().SetNoColorize(true)
}

type (
	b = FiniteBound
	P = PlusInfinity
	M = MinusInfinity
)

var (
	itv = NewInterval
	bot = BotInterval()
	top = TopInterval()
)

func TestIntervalJoin(t *testing.T) {
	tests := []struct {
		a, b, expected Interval
	}{
		{bot, bot, bot},
		{bot, top, top},
		{top, bot, top},
		{top, top, top},
		{bot, itv(b(0), b(0)), itv(b(0), b(0))},
		{itv(b(0), b(0)), bot, itv(b(0), b(0))},
		{itv(b(0), b(0)), itv(b(1), b(1)), itv(b(0), b(1))},
		{itv(b(1), b(1)), itv(b(0), b(0)), itv(b(0), b(1))},
		{itv(b(1), b(2)), itv(b(3), b(4)), itv(b(1), b(4))},
		{itv(b(-1), b(0)), itv(b(0), b(1)), itv(b(-1), b(1))},
		{itv(b(0), b(1024)), itv(b(0), P{}), itv(b(0), P{})},
		{itv(b(-1024), b(0)), itv(b(0), P{}), itv(b(-1024), P{})},
		{itv(M{}, b(0)), itv(b(-1024), b(0)), itv(M{}, b(0))},
		{itv(M{}, b(-1024)), itv(b(1024), P{}), top},
	}

	for _, test := range tests {
		res := test.a.Join(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalMeet(t *testing.T) {
	tests := []struct {
		a, b, expected Interval
	}{
		{bot, top, bot},
		{top, top, top},
		{itv(b(0), b(5)), itv(b(3), b(9)), itv(b(3), b(5))},
		{itv(b(0), b(2)), itv(b(3), b(9)), bot},
		{itv(M{}, b(2)), itv(b(-3), P{}), itv(b(-3), b(2))},
		{itv(b(0), b(5)), itv(b(5), P{}), itv(b(5), b(5))},
	}

	for _, test := range tests {
		res := test.a.Meet(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊓ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalLatticeLaws(t *testing.T) {
	samples := []Interval{
		bot, top,
		itv(b(0), b(0)),
		itv(b(-3), b(7)),
		itv(b(5), P{}),
		itv(M{}, b(-2)),
		itv(b(1), b(2)),
	}

	for _, x := range samples {
		assert.True(t, x.Join(x).Eq(x), "idempotent ⊔ %s", x)
		assert.True(t, x.Meet(x).Eq(x), "idempotent ⊓ %s", x)
		assert.True(t, bot.Leq(x) && x.Leq(top), "bounded %s", x)

		for _, y := range samples {
			j, m := x.Join(y), x.Meet(y)
			assert.True(t, j.Eq(y.Join(x)), "commutative ⊔ %s %s", x, y)
			assert.True(t, m.Eq(y.Meet(x)), "commutative ⊓ %s %s", x, y)
			assert.True(t, x.Leq(j) && y.Leq(j), "upper bound %s %s", x, y)
			assert.True(t, m.Leq(x) && m.Leq(y), "lower bound %s %s", x, y)
			assert.True(t, x.Join(m).Eq(x), "absorption %s %s", x, y)
			assert.Equal(t, x.Leq(y), j.Eq(y), "order agrees with ⊔ %s %s", x, y)

			for _, z := range samples {
				assert.True(t, x.Join(y.Join(z)).Eq(x.Join(y).Join(z)), "associative ⊔")
				assert.True(t, x.Meet(y.Meet(z)).Eq(x.Meet(y).Meet(z)), "associative ⊓")
			}
		}
	}
}

func TestIntervalArithmetic(t *testing.T) {
	tests := []struct {
		name          string
		res, expected Interval
	}{
		{"add", FiniteInterval(1, 2).Add(FiniteInterval(10, 20)), FiniteInterval(11, 22)},
		{"add ∞", FiniteInterval(1, 2).Add(itv(b(0), P{})), itv(b(1), P{})},
		{"add saturates", Singleton(math.MaxInt64).Add(Singleton(1)), itv(b(math.MaxInt64), P{})},
		{"sub", FiniteInterval(1, 2).Sub(FiniteInterval(10, 20)), FiniteInterval(-19, -8)},
		{"neg", itv(b(3), P{}).Neg(), itv(M{}, b(-3))},
		{"mul", FiniteInterval(-2, 3).Mul(FiniteInterval(4, 5)), FiniteInterval(-10, 15)},
		{"mul zero ∞", Singleton(0).Mul(itv(b(1), P{})), Singleton(0)},
		{"mul ∞", FiniteInterval(-1, 1).Mul(itv(b(1), P{})), top},
		{"div", FiniteInterval(10, 20).Div(FiniteInterval(2, 5)), FiniteInterval(2, 10)},
		{"div by zero", Singleton(7).Div(Singleton(0)), bot},
		{"div around zero", Singleton(6).Div(FiniteInterval(-2, 3)), FiniteInterval(-6, 6)},
		{"div ∞", itv(b(10), P{}).Div(itv(b(1), P{})), itv(b(0), P{})},
		{"rem", FiniteInterval(0, 100).Rem(Singleton(8)), FiniteInterval(0, 7)},
		{"rem negative", FiniteInterval(-100, -1).Rem(Singleton(8)), FiniteInterval(-7, 0)},
		{"rem exact", Singleton(-7).Rem(Singleton(3)), Singleton(-1)},
		{"rem by zero", Singleton(1).Rem(Singleton(0)), bot},
		{"wrap", FiniteInterval(0, math.MaxInt32+1).Wrap32(), Int32Interval()},
		{"wrap noop", FiniteInterval(-4, 4).Wrap32(), FiniteInterval(-4, 4)},
		{"wrap singleton", Singleton(math.MaxInt32 + 1).Wrap32(), Singleton(math.MinInt32)},
		{"bot", bot.Add(top), bot},
	}

	for _, test := range tests {
		if !test.res.Eq(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.res, test.expected)
		}
	}
}

func TestIntervalWidening(t *testing.T) {
	ts := NewThresholds(100, 0, -1, 10, 0)
	assert.Equal(t, Thresholds{-1, 0, 10, 100}, ts)

	tests := []struct {
		prev, cur, expected Interval
	}{
		{bot, FiniteInterval(0, 0), FiniteInterval(0, 0)},
		{FiniteInterval(0, 0), FiniteInterval(0, 1), FiniteInterval(0, 10)},
		{FiniteInterval(0, 10), FiniteInterval(0, 11), FiniteInterval(0, 100)},
		{FiniteInterval(0, 100), FiniteInterval(0, 101), itv(b(0), P{})},
		{FiniteInterval(0, 5), FiniteInterval(-3, 5), itv(M{}, b(5))},
		{FiniteInterval(0, 5), FiniteInterval(0, 5), FiniteInterval(0, 5)},
	}

	for _, test := range tests {
		res := test.cur.Widening(test.prev, ts)
		if !res.Eq(test.expected) {
			t.Errorf("%s ∇ %s = %s, expected %s\n", test.prev, test.cur, res, test.expected)
		}
	}
}

// Widening an increasing chain clamped to the int32 range stabilizes after
// at most three steps when the int32 limits are landmarks.
func TestIntervalWideningConverges(t *testing.T) {
	ts := NewThresholds(math.MinInt32, math.MaxInt32)

	chains := map[string]func(Interval) Interval{
		"increment": func(x Interval) Interval { return x.Add(Singleton(1)).Wrap32() },
		"decrement": func(x Interval) Interval { return x.Sub(Singleton(1)).Wrap32() },
		"double":    func(x Interval) Interval { return x.Mul(Singleton(2)).Wrap32() },
		"both": func(x Interval) Interval {
			return x.Add(FiniteInterval(-1, 1)).Wrap32()
		},
	}

	for name, f := range chains {
		x := Singleton(1)
		steps := 0
		for ; steps < 10; steps++ {
			next := x.Join(f(x)).Widening(x, ts)
			if next.Leq(x) {
				break
			}
			x = next
		}
		assert.LessOrEqual(t, steps, 3, name)
		assert.True(t, x.Leq(Int32Interval()), "%s: %s", name, x)
	}
}

func TestIntervalNarrowing(t *testing.T) {
	tests := []struct {
		prev, cur, expected Interval
	}{
		{itv(b(0), P{}), FiniteInterval(0, 10), FiniteInterval(0, 10)},
		{FiniteInterval(0, 100), FiniteInterval(0, 10), FiniteInterval(0, 100)},
		{top, FiniteInterval(-1, 1), FiniteInterval(-1, 1)},
		{bot, FiniteInterval(-1, 1), bot},
		{top, bot, bot},
	}

	for _, test := range tests {
		res := test.cur.Narrowing(test.prev)
		if !res.Eq(test.expected) {
			t.Errorf("%s Δ %s = %s, expected %s\n", test.prev, test.cur, res, test.expected)
		}
	}
}

func TestIntervalQueries(t *testing.T) {
	assert.Equal(t, OutcomeTrue, FiniteInterval(0, 4).CheckLessThan(FiniteInterval(5, 9)))
	assert.Equal(t, OutcomeFalse, FiniteInterval(5, 9).CheckLessThan(FiniteInterval(0, 5)))
	assert.Equal(t, OutcomeTop, FiniteInterval(0, 5).CheckLessThan(FiniteInterval(5, 9)))
	assert.Equal(t, OutcomeTrue, FiniteInterval(0, 5).CheckLessEqual(FiniteInterval(5, 9)))
	assert.Equal(t, OutcomeFalse, FiniteInterval(6, 9).CheckLessEqual(FiniteInterval(0, 5)))
	assert.Equal(t, OutcomeTrue, Singleton(3).CheckEqual(Singleton(3)))
	assert.Equal(t, OutcomeFalse, Singleton(3).CheckEqual(FiniteInterval(4, 5)))
	assert.Equal(t, OutcomeTop, Singleton(3).CheckEqual(FiniteInterval(3, 5)))
	assert.Equal(t, OutcomeBottom, bot.CheckEqual(Singleton(3)))

	k, ok := Singleton(-4).IsSingleton()
	assert.True(t, ok)
	assert.Equal(t, int64(-4), k)
	_, ok = top.IsSingleton()
	assert.False(t, ok)

	assert.True(t, FiniteInterval(-1, 1).Contains(0))
	assert.False(t, bot.Contains(0))
	assert.Equal(t, 4, FiniteInterval(1, 5).Height())
	assert.Equal(t, -1, top.Height())
	assert.Equal(t, "[-∞, 3]", itv(M{}, b(3)).String())
	assert.Equal(t, "⊥", bot.String())
	assert.Panics(t, func() { top.GetFiniteBounds() })
}

func TestIntervalIntegerTypes(t *testing.T) {
	assert.Equal(t, FiniteInterval(-128, 127), IntRange(8, true))
	assert.Equal(t, FiniteInterval(0, 65535), IntRange(16, false))
	assert.Equal(t, FiniteInterval(math.MinInt64, math.MaxInt64), IntRange(64, true))
	assert.Equal(t, NewInterval(FiniteBound(0), PlusInfinity{}), IntRange(64, false))

	assert.True(t, FiniteInterval(0, 255).Fits(8, false))
	assert.False(t, FiniteInterval(-1, 255).Fits(8, false))
	assert.False(t, NewInterval(FiniteBound(0), PlusInfinity{}).Fits(64, false))
	assert.True(t, BotInterval().Fits(8, true))

	tests := []struct {
		name          string
		actual, wants Interval
	}{
		{"uint8 overflow", Singleton(256).Wrap(8, false), Singleton(0)},
		{"uint8 underflow", Singleton(-1).Wrap(8, false), Singleton(255)},
		{"int8 overflow", Singleton(128).Wrap(8, true), Singleton(-128)},
		{"int16 fits", FiniteInterval(-5, 5).Wrap(16, true), FiniteInterval(-5, 5)},
		{"int16 range", FiniteInterval(0, 40000).Wrap(16, true), IntRange(16, true)},
		{"uint64 negative", Singleton(-1).Wrap(64, false), IntRange(64, false)},
		{"int64 unbounded", TopInterval().Wrap(64, true), IntRange(64, true)},
		{"int32", Singleton(math.MaxInt32 + 1).Wrap32(), Singleton(math.MinInt32)},
	}
	for _, test := range tests {
		assert.Equal(t, test.wants, test.actual, test.name)
	}
}

func TestThresholdsContains(t *testing.T) {
	ts := NewThresholds(100, -1, 0, 1)
	assert.True(t, ts.Contains(FiniteBound(100)))
	assert.True(t, ts.Contains(FiniteBound(-1)))
	assert.False(t, ts.Contains(FiniteBound(50)))
	assert.False(t, ts.Contains(PlusInfinity{}))
}
