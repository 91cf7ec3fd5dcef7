package expr

import (
	"go/constant"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codec = Tree[string]{}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src, expected string
	}{
		{"x + 1 < y", "(x + 1) < y"},
		{"a || b && c", "a || (b && c)"},
		{"x * 2 + 3", "(x * 2) + 3"},
		{"x - 1 - 2", "(x - 1) - 2"},
		{"!(x == y)", "!(x == y)"},
		{"-x", "-x"},
		{"-5 + x", "-5 + x"},
		{"int32(x + 1) >= 0", "int32(x + 1) >= 0"},
		{"true && x != 0 // trailing comment", "true && (x != 0)"},
		{"i % 2 == 0", "(i % 2) == 0"},
	}

	for _, test := range tests {
		e, err := Parse(test.src)
		require.NoError(t, err, test.src)
		assert.Equal(t, test.expected, e.String(), test.src)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"x +", "(x", "x < < y", ""} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
	assert.Panics(t, func() { MustParse("x +") })
}

func TestTreeDecoder(t *testing.T) {
	e := MustParse("x + 3")

	assert.Equal(t, Addition, codec.OperatorFor(e))
	assert.True(t, codec.IsBinary(e))
	assert.False(t, codec.IsUnary(e))

	v, ok := codec.IsVariable(codec.Left(e))
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	k, ok := TryInt32[string](codec, codec.Right(e))
	assert.True(t, ok)
	assert.Equal(t, int32(3), k)

	_, ok = TryInt32[string](codec, Int[string](math.MaxInt32+1))
	assert.False(t, ok)
	_, ok = TryInt64[string](codec, Var("x"))
	assert.False(t, ok)

	b, ok := TryBool[string](codec, Bool[string](true))
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = TryBool[string](codec, Int[string](1))
	assert.False(t, ok)

	assert.Nil(t, codec.Right(MustParse("-x")))
}

func TestTreeEncoder(t *testing.T) {
	e := codec.Compound(LessThan,
		codec.Variable("i"),
		codec.Constant(constant.MakeInt64(10)))
	assert.True(t, e.Equal(MustParse("i < 10")))
	assert.False(t, e.Equal(MustParse("i < 11")))
	assert.False(t, e.Equal(MustParse("i <= 10")))
	assert.False(t, Int[string](1).Equal(Bool[string](true)))

	assert.Panics(t, func() { Apply(Addition, Var("x")) })
}

func TestVariablesAndMap(t *testing.T) {
	e := MustParse("x + y * x < z")
	assert.Equal(t, []string{"x", "y", "z"}, e.Variables())

	renamed := e.Map(func(v string) *Expr[string] { return Var(v + "'") })
	assert.Equal(t, "(x' + (y' * x')) < z'", renamed.String())
}

func TestOperatorAlgebra(t *testing.T) {
	for _, op := range []Operator{Equal, NotEqual, LessThan, LessEqual, GreaterThan, GreaterEqual} {
		assert.Equal(t, op, op.Negate().Negate(), op.String())
		assert.True(t, op.IsComparison())
		assert.True(t, op.IsBoolean())
	}
	assert.Equal(t, GreaterEqual, LessThan.Negate())
	assert.Equal(t, Addition, Addition.Negate())
	assert.False(t, Addition.IsBoolean())
	assert.Equal(t, "?", Operator(1000).String())
}

func TestConversions(t *testing.T) {
	for _, src := range []string{"int8(x)", "uint8(x + 1)", "int64(-x)", "uint64(x * 2)"} {
		e := MustParse(src)
		assert.True(t, e.Op().IsConversion(), src)
		assert.True(t, e.Op().IsUnary(), src)
		assert.Equal(t, src, e.String())
	}

	bits, signed, ok := ConvertToUint16.Conversion()
	assert.True(t, ok)
	assert.Equal(t, uint(16), bits)
	assert.False(t, signed)

	op, ok := ConversionTo(32, true)
	assert.True(t, ok)
	assert.Equal(t, ConvertToInt32, op)

	_, ok = ConversionTo(24, true)
	assert.False(t, ok)
	_, _, ok = Addition.Conversion()
	assert.False(t, ok)
}
