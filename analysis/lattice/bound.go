package lattice

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Bound is implemented by all interval bounds i.e., any FiniteBound value,
// PlusInfinity and MinusInfinity.
//
// Finite arithmetic saturates: a result that does not fit in 64 bits
// becomes the infinity of the same sign.
type Bound interface {
	String() string

	// IsInfinite checks whether the bound is ∞ or -∞.
	IsInfinite() bool

	// BINARY RELATIONS

	// Eq checks for bound equality.
	Eq(Bound) bool
	// Leq computes b1 ≤ b2. The semantics is -∞ ≤ c ≤ ∞, where c ∈ ℤ.
	Leq(Bound) bool
	// Geq computes b1 ≥ b2.
	Geq(Bound) bool
	// Lt computes b1 < b2.
	Lt(Bound) bool
	// Gt computes b1 > b2.
	Gt(Bound) bool

	// BINARY OPERATIONS

	// Plus computes b1 + b2. The semantics of plus is:
	//	.-----------------------------.
	// 	|   b1   |   b2   |  b1 + b2  |
	// 	|========|========|===========|
	// 	|  ∈  ℤ  |  ∈  ℤ  |  b1 + b2  |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ  |    ∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ  |   -∞   |    -∞     |
	// 	|--------|--------|-----------|
	// 	|   -∞   |   -∞   |    -∞     |
	// 	|--------|--------|-----------|
	// 	|    ∞   |    ∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|    ∞   |   -∞   |   panic   |
	// 	 -----------------------------
	Plus(Bound) Bound

	// Minus computes b1 - b2, i.e. b1 + (-b2).
	Minus(Bound) Bound

	// Mult computes b1 * b2. The semantics of multiplication is:
	//	.-----------------------------.
	// 	|   b1   |   b2   |  b1 * b2  |
	// 	|========|========|===========|
	// 	|  ∈  ℤ  |  ∈  ℤ  |  b1 * b2  |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ+ |    ∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ+ |   -∞   |    -∞     |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ- |   -∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ- |    ∞   |    -∞     |
	// 	|--------|--------|-----------|
	// 	|    0   |  (-)∞  |     0     |
	// 	|--------|--------|-----------|
	// 	|    ∞   |    ∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|   -∞   |   -∞   |     ∞     |
	// 	|--------|--------|-----------|
	// 	|    ∞   |   -∞   |    -∞     |
	// 	 -----------------------------
	//
	// The 0 * ∞ row is what interval multiplication needs: [0, 0] * [1, ∞] = [0, 0].
	Mult(Bound) Bound

	// Div computes the truncated quotient b1 / b2. The semantics of division is:
	//	.-----------------------------.
	// 	|   b1   |   b2   |  b1 / b2  |
	// 	|========|========|===========|
	// 	|  ∈  ℤ  |  ∈ ℤ≠0 |  b1 / b2  |
	// 	|--------|--------|-----------|
	// 	|  (-)∞  |  ∈ ℤ≠0 | sign * ∞  |
	// 	|--------|--------|-----------|
	// 	|  ∈  ℤ  |  (-)∞  |     0     |
	// 	|--------|--------|-----------|
	// 	|  (-)∞  |  (-)∞  |     0     |
	// 	|--------|--------|-----------|
	// 	|  ∀ b1  |    0   |   panic   |
	// 	 -----------------------------
	Div(Bound) Bound

	// Neg computes -b.
	Neg() Bound

	// Max computes max(b1, b2).
	Max(Bound) Bound
	// Min computes min(b1, b2).
	Min(Bound) Bound
}

type (
	// FiniteBound is used to represent finite limits of an interval value.
	FiniteBound int64
	// PlusInfinity represents ∞.
	PlusInfinity struct{}
	// MinusInfinity represents -∞.
	MinusInfinity struct{}
)

// infinity returns ∞ if positive is true, and -∞ otherwise.
func infinity(positive bool) Bound {
	if positive {
		return PlusInfinity{}
	}
	return MinusInfinity{}
}

// sign returns -1, 0 or 1.
func sign(b Bound) int {
	switch b := b.(type) {
	case FiniteBound:
		switch {
		case b < 0:
			return -1
		case b > 0:
			return 1
		}
		return 0
	case PlusInfinity:
		return 1
	case MinusInfinity:
		return -1
	}
	panic(errPatternMatch(b))
}

func addChecked[T constraints.Signed](a, b T) (T, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func mulChecked[T constraints.Signed](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	return c, c/b == a && (c < 0) == ((a < 0) != (b < 0))
}

// Bound32 clamps an int64 into the int32 range.
func Bound32[T constraints.Integer](k T) int32 {
	switch {
	case int64(k) > math.MaxInt32:
		return math.MaxInt32
	case int64(k) < math.MinInt32:
		return math.MinInt32
	}
	return int32(k)
}

// IsInfinite is false for the finite bound.
func (FiniteBound) IsInfinite() bool {
	return false
}

func (b FiniteBound) String() string {
	return colorize.Element(strconv.FormatInt(int64(b), 10))
}

// Eq compares for equality with another bound. Two finite bounds
// are equal if their underlying values are equal.
func (b1 FiniteBound) Eq(b2 Bound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 == b2
	}
	return false
}

// Leq computes b1 ≤ b2. The semantics is -∞ ≤ c ≤ ∞, where c ∈ ℤ.
func (b1 FiniteBound) Leq(b2 Bound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 <= b2
	case PlusInfinity:
		return true
	}
	return false
}

// Geq computes b1 ≥ b2. The semantics is ∞ ≥ c ≥ -∞, where c ∈ ℤ.
func (b1 FiniteBound) Geq(b2 Bound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 >= b2
	case MinusInfinity:
		return true
	}
	return false
}

// Lt computes b1 < b2.
func (b1 FiniteBound) Lt(b2 Bound) bool {
	return !b1.Geq(b2)
}

// Gt computes b1 > b2.
func (b1 FiniteBound) Gt(b2 Bound) bool {
	return !b1.Leq(b2)
}

// Plus computes b1 + b2. The semantics of plus is:
//
//	.--------------------.
//	|   b2   |  b1 + b2  |
//	|========|===========|
//	|   ∈ ℤ  |  b1 + b2  |
//	|--------|-----------|
//	|    ∞   |     ∞     |
//	|--------|-----------|
//	|   -∞   |    -∞     |
//	 --------------------
func (b1 FiniteBound) Plus(b2 Bound) Bound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if c, ok := addChecked(b1, b2); ok {
			return c
		}
		return infinity(b2 > 0)
	}
	return b2
}

// Minus computes b1 - b2.
func (b1 FiniteBound) Minus(b2 Bound) Bound {
	return b1.Plus(b2.Neg())
}

// Mult computes b1 * b2. Multiplying 0 with an infinity yields 0.
func (b1 FiniteBound) Mult(b2 Bound) Bound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if c, ok := mulChecked(b1, b2); ok {
			return c
		}
		return infinity((b1 < 0) == (b2 < 0))
	}
	if b1 == 0 {
		return FiniteBound(0)
	}
	return infinity(sign(b1) == sign(b2))
}

// Div computes b1 / b2. The semantics of division is:
//
//	.--------------------.
//	|   b2   |  b1 / b2  |
//	|========|===========|
//	|  ∈ ℤ≠0 |  b1 / b2  |
//	|--------|-----------|
//	|  (-)∞  |     0     |
//	|--------|-----------|
//	|    0   |   panic   |
//	 --------------------
func (b1 FiniteBound) Div(b2 Bound) Bound {
	switch b2 := b2.(type) {
	case FiniteBound:
		switch {
		case b2 == 0:
			panic("division by 0")
		// The only overflowing quotient.
		case b2 == -1 && b1 == math.MinInt64:
			return PlusInfinity{}
		}
		return b1 / b2
	}
	return FiniteBound(0)
}

// Neg computes -b. Negating the smallest int64 saturates to ∞.
func (b FiniteBound) Neg() Bound {
	if b == math.MinInt64 {
		return PlusInfinity{}
	}
	return -b
}

// Max computes max(b1, b2). The semantics of maximum is:
//
//	.-----------------------.
//	|   b2   | max(b1, b2)  |
//	|========|==============|
//	|  ∈  ℤ  | max(b1, b2)  |
//	|--------|--------------|
//	|   -∞   |      b1      |
//	|--------|--------------|
//	|    ∞   |      ∞       |
//	 -----------------------
func (b1 FiniteBound) Max(b2 Bound) Bound {
	if b1.Lt(b2) {
		return b2
	}
	return b1
}

// Min computes min(b1, b2).
func (b1 FiniteBound) Min(b2 Bound) Bound {
	if b1.Gt(b2) {
		return b2
	}
	return b1
}

// IsInfinite is true for ∞.
func (PlusInfinity) IsInfinite() bool {
	return true
}

func (PlusInfinity) String() string {
	return colorize.Element("∞")
}

// Eq checks for interval bound equality.
func (PlusInfinity) Eq(b2 Bound) bool {
	_, ok := b2.(PlusInfinity)
	return ok
}

// Leq computes ∞ ≤ b.
func (b1 PlusInfinity) Leq(b2 Bound) bool {
	return b1.Eq(b2)
}

// Geq computes ∞ ≥ b. It is always true as ∞ is the largest possible bound.
func (PlusInfinity) Geq(Bound) bool {
	return true
}

// Lt computes ∞ < b. It is always false as ∞ is the largest possible bound.
func (PlusInfinity) Lt(Bound) bool {
	return false
}

// Gt computes ∞ > b.
func (b1 PlusInfinity) Gt(b2 Bound) bool {
	return !b1.Eq(b2)
}

// Plus computes ∞ + b. The semantics of plus is:
//
//	.---------------------.
//	|    b    |   ∞ + b   |
//	|=========|===========|
//	|   ∈ ℤ   |     ∞     |
//	|---------|-----------|
//	|   -∞    |   panic   |
//	|---------|-----------|
//	|    ∞    |     ∞     |
//	 ---------------------
func (PlusInfinity) Plus(b2 Bound) Bound {
	if _, ok := b2.(MinusInfinity); ok {
		panic("∞ - ∞")
	}
	return PlusInfinity{}
}

// Minus computes ∞ - b.
func (b1 PlusInfinity) Minus(b2 Bound) Bound {
	return b1.Plus(b2.Neg())
}

// Mult computes ∞ * b.
func (PlusInfinity) Mult(b2 Bound) Bound {
	if s := sign(b2); s != 0 {
		return infinity(s > 0)
	}
	return FiniteBound(0)
}

// Div computes ∞ / b. Dividing two infinities yields 0.
func (PlusInfinity) Div(b2 Bound) Bound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if b2 == 0 {
			panic("division by 0")
		}
		return infinity(b2 > 0)
	}
	return FiniteBound(0)
}

// Neg computes -∞.
func (PlusInfinity) Neg() Bound {
	return MinusInfinity{}
}

// Max computes max(∞, b), which is always ∞.
func (PlusInfinity) Max(Bound) Bound {
	return PlusInfinity{}
}

// Min computes min(∞, b), which is always b.
func (PlusInfinity) Min(b2 Bound) Bound {
	return b2
}

// IsInfinite is true for -∞.
func (MinusInfinity) IsInfinite() bool {
	return true
}

func (MinusInfinity) String() string {
	return colorize.Element("-∞")
}

// Eq computes -∞ = b.
func (MinusInfinity) Eq(b2 Bound) bool {
	_, ok := b2.(MinusInfinity)
	return ok
}

// Leq computes -∞ ≤ b. It is always true as -∞ is the smallest possible bound.
func (MinusInfinity) Leq(Bound) bool {
	return true
}

// Geq computes -∞ ≥ b.
func (b1 MinusInfinity) Geq(b2 Bound) bool {
	return b1.Eq(b2)
}

// Lt computes -∞ < b.
func (b1 MinusInfinity) Lt(b2 Bound) bool {
	return !b1.Eq(b2)
}

// Gt computes -∞ > b. It is always false as -∞ is the smallest possible bound.
func (MinusInfinity) Gt(Bound) bool {
	return false
}

// Plus computes -∞ + b. The semantics of plus is:
//
//	.---------------------.
//	|    b    |  -∞ + b   |
//	|=========|===========|
//	|   ∈ ℤ   |    -∞     |
//	|---------|-----------|
//	|   -∞    |    -∞     |
//	|---------|-----------|
//	|    ∞    |   panic   |
//	 ---------------------
func (MinusInfinity) Plus(b Bound) Bound {
	if _, ok := b.(PlusInfinity); ok {
		panic("-∞ + ∞")
	}
	return MinusInfinity{}
}

// Minus computes -∞ - b.
func (b1 MinusInfinity) Minus(b2 Bound) Bound {
	return b1.Plus(b2.Neg())
}

// Mult computes -∞ * b.
func (MinusInfinity) Mult(b Bound) Bound {
	if s := sign(b); s != 0 {
		return infinity(s < 0)
	}
	return FiniteBound(0)
}

// Div computes -∞ / b. Dividing two infinities yields 0.
func (MinusInfinity) Div(b Bound) Bound {
	switch b := b.(type) {
	case FiniteBound:
		if b == 0 {
			panic("division by 0")
		}
		return infinity(b < 0)
	}
	return FiniteBound(0)
}

// Neg computes ∞.
func (MinusInfinity) Neg() Bound {
	return PlusInfinity{}
}

// Max computes max(-∞, b), which is always b.
func (MinusInfinity) Max(b Bound) Bound {
	return b
}

// Min computes min(-∞, b), which is always -∞.
func (MinusInfinity) Min(Bound) Bound {
	return MinusInfinity{}
}
