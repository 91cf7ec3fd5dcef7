package lang

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-au-dk/absnum/analysis/enumdef"
	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/fixpoint"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/analysis/numeric"
	"github.com/cs-au-dk/absnum/utils"
)

func init() {
	utils.Opts().SetNoColorize(true)
}

var codec = expr.Tree[string]{}

func zones() *numeric.Zones[string, E] {
	return numeric.NewZones(numeric.NewContext[string, E](codec, codec, numeric.Ideal))
}

func analyze(t *testing.T, p *Program) *fixpoint.Result[int, string, E, *numeric.Zones[string, E]] {
	t.Helper()
	res := fixpoint.Analyze[int, string, E](context.Background(), p, zones(), fixpoint.Options[E]{
		Preconditions: p.Requires,
	})
	require.True(t, res.Complete)
	return res
}

func outcomes[D L.Environment[string, E, D]](res *fixpoint.Result[int, string, E, D]) (ret []L.Outcome) {
	for _, o := range res.Obligations() {
		ret = append(ret, o.Outcome)
	}
	return
}

func TestParseFile(t *testing.T) {
	p, err := ParseFile("testdata/counter.while")
	require.NoError(t, err)

	assert.Equal(t, []E{expr.MustParse("n >= 0")}, p.Requires)
	assert.Equal(t, []string{"i", "n"}, p.Variables())
	assert.Equal(t, 3, p.Exit())
	goldie.New(t).Assert(t, "listing", []byte(p.String()))

	a, ok := p.Assertion(3, 0)
	require.True(t, ok)
	assert.Equal(t, 8, a.Pos.Line)
	_, ok = p.Assertion(3, 1)
	assert.False(t, ok)

	res := analyze(t, p)
	assert.Equal(t, []L.Outcome{L.OutcomeTrue}, outcomes(res))
}

func TestControlFlow(t *testing.T) {
	p := MustParse(`
		x = 0;
		if y > 0 {
			x = 1;
		} else if y < 0 {
			x = -1;
		}
		assert x >= -1 && x <= 1;
		assert x == 0;
	`)

	// 0 branches to 1 and 2; 2 branches to 3 and 4.
	assert.Equal(t, []int{1, 2}, p.Successors(0))
	assert.Equal(t, []int{3, 4}, p.Successors(2))
	assert.Equal(t, []int{5}, p.Successors(3))
	assert.Equal(t, []int{6}, p.Successors(1))
	assert.Equal(t, 6, p.Exit())
	assert.Nil(t, p.Successors(42))

	res := analyze(t, p)
	assert.Equal(t, []L.Outcome{L.OutcomeTrue, L.OutcomeTop}, outcomes(res))
	assert.Equal(t, L.FiniteInterval(-1, 1), res.StateAt(p.Exit()).BoundsOf("x"))
}

func TestParallelAssignment(t *testing.T) {
	p := MustParse(`
		x = 1; y = 2;
		x, y = y, x;
		assert x == 2 && y == 1;
	`)
	assert.Equal(t, "x, y = y, x", p.Instrs(0)[2].String())

	res := analyze(t, p)
	assert.Equal(t, []L.Outcome{L.OutcomeTrue}, outcomes(res))
}

func TestScopes(t *testing.T) {
	p := MustParse(`
		x = 3;
		{
			var t = x + 1;
			x = t;
		}
		assert x == 4;
	`)

	instrs := p.Instrs(0)
	require.Len(t, instrs, 5)
	assert.Equal(t, KPop, instrs[3].Kind)
	assert.Equal(t, "pop t", instrs[3].String())

	res := analyze(t, p)
	assert.Equal(t, []L.Outcome{L.OutcomeTrue}, outcomes(res))
}

func TestUnreachableAssertion(t *testing.T) {
	p := MustParse(`
		havoc x;
		assume x > 10;
		if x < 5 {
			assert false;
		}
	`)

	res := analyze(t, p)
	assert.Equal(t, []L.Outcome{L.OutcomeBottom}, outcomes(res))
	assert.Equal(t, []fixpoint.Edge[int]{{0, 1}}, res.DeadEdges())
}

func TestFacts(t *testing.T) {
	p := MustParse(`
		fact x in [-5, 5];
		fact c is Color;
		fact ok iff d is Color;
		assert x >= -5;
	`)

	instrs := p.Instrs(0)
	require.Len(t, instrs, 4)
	assert.Equal(t, L.BoundFact[string]{Var: "x", Bounds: L.FiniteInterval(-5, 5)}, instrs[0].Fact)
	assert.Equal(t, enumdef.EnumFact[string, string]{Type: "Color", Var: "c"}, instrs[1].Fact)
	assert.Equal(t, "fact ok ⇔ Color(d)", instrs[2].String())

	init := fixpoint.NewProduct[string, E](zones(), enumdef.New[string, string, E](codec))
	res := fixpoint.Analyze[int, string, E](context.Background(), p, init, fixpoint.Options[E]{})
	require.True(t, res.Complete)
	assert.Equal(t, []L.Outcome{L.OutcomeTrue}, outcomes(res))

	exit := res.StateAfter(p.Exit())
	assert.Equal(t, L.OutcomeTrue, exit.Right.CheckIfVariableIsDefined("c", "Color"))
	assert.Equal(t, L.OutcomeTop, exit.Right.CheckIfVariableIsDefined("d", "Color"))
}

func TestErrors(t *testing.T) {
	for _, src := range []string{
		"x = ;",
		"while x { x = 1; ",
		"x, y = 1;",
		"x, x = 1, 2;",
		"fact x in [y, 3];",
		"if x x = 1;",
	} {
		_, err := Parse("bad", src)
		assert.Error(t, err, src)
	}

	_, err := Parse("bad", "x, y = 1;")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseFile("testdata/missing.while")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParse("assert;") })
}

func TestDotGraph(t *testing.T) {
	p, err := ParseFile("testdata/counter.while")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, analyze(t, p).ToDotGraph(p.Name).WriteDot(&buf))
	assert.Contains(t, buf.String(), `"2" -> "1"`)
}
