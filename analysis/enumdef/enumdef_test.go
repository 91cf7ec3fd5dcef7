package enumdef

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils"
)

func init() {
	utils.Opts().SetNoColorize(true)
}

type domain = EnumDefined[string, string, *expr.Expr[string]]

func top() *domain {
	return New[string, string, *expr.Expr[string]](expr.Tree[string]{})
}

func TestAssumeCondition(t *testing.T) {
	d := top().AssumeTypeIff("ok", "Color", "c")
	assert.False(t, d.IsTop())
	assert.Equal(t, L.OutcomeTop, d.CheckIfVariableIsDefined("c", "Color"))

	// Unknown conditions are ignored.
	assert.Same(t, d, d.AssumeCondition("other"))

	d = d.AssumeCondition("ok")
	assert.Equal(t, L.OutcomeTrue, d.CheckIfVariableIsDefined("c", "Color"))
	assert.Equal(t, L.OutcomeTop, d.CheckIfVariableIsDefined("c", "Shape"))
	assert.Equal(t, []Pair[string, string]{{"Color", "c"}}, d.DefinedVariables())

	assert.Equal(t, L.OutcomeBottom, d.Bottom().CheckIfVariableIsDefined("c", "Color"))
	assert.Equal(t, L.OutcomeTop, top().CheckIfVariableIsDefined("c", "Color"))
}

func TestTestTrue(t *testing.T) {
	d := top().AssumeFact(EnumIffFact[string, string]{"ok", Pair[string, string]{"Color", "c"}})

	assert.Equal(t, L.OutcomeTop, d.TestFalse(expr.Var("ok")).CheckIfVariableIsDefined("c", "Color"))
	assert.Equal(t, L.OutcomeTrue, d.TestTrue(expr.Var("ok")).CheckIfVariableIsDefined("c", "Color"))
	assert.Same(t, d, d.TestTrue(expr.MustParse("ok == 1")))
	assert.Equal(t, L.OutcomeTop, d.CheckIfHolds(expr.Var("ok")))
}

func TestLattice(t *testing.T) {
	a := top().AssumeDefined("Color", "x").AssumeDefined("Color", "y")
	b := top().AssumeDefined("Color", "y").AssumeDefined("Shape", "z")

	j := a.Join(b)
	assert.Equal(t, []Pair[string, string]{{"Color", "y"}}, j.DefinedVariables())
	assert.True(t, a.LessEqual(j))
	assert.True(t, b.LessEqual(j))
	assert.False(t, j.LessEqual(a))
	assert.True(t, j.LessEqual(j))

	m := a.Meet(b)
	assert.Len(t, m.DefinedVariables(), 3)
	assert.True(t, m.LessEqual(a))
	assert.True(t, m.LessEqual(b))

	// Disjoint facts join to ⊤.
	assert.True(t, top().AssumeDefined("Color", "x").Join(top().AssumeDefined("Color", "y")).IsTop())

	assert.Same(t, a, a.Join(a.Bottom()))
	assert.Same(t, a, a.Meet(a.Top()))
	assert.True(t, a.Widening(b).LessEqual(j) && j.LessEqual(a.Widening(b)))
}

func TestConditionsLattice(t *testing.T) {
	a := top().AssumeTypeIff("p", "Color", "x").AssumeTypeIff("p", "Color", "y")
	b := top().AssumeTypeIff("p", "Color", "y").AssumeTypeIff("q", "Color", "z")

	j := a.Join(b)
	assert.Equal(t, "(p ⇔ {Color(y)}; defined {})", j.String())
	assert.True(t, a.LessEqual(j))
	assert.True(t, b.LessEqual(j))
	assert.False(t, j.LessEqual(b))

	m := a.Meet(b)
	assert.Equal(t, "(p ⇔ {Color(x), Color(y)}; q ⇔ {Color(z)}; defined {})", m.String())
}

func TestRename(t *testing.T) {
	d := top().
		AssumeTypeIff("p", "Color", "x").
		AssumeDefined("Color", "x").
		AssumeDefined("Shape", "y")

	r := d.Rename(map[string][]string{"p": {"q"}, "x": {"a", "b"}})
	assert.Equal(t, "(q ⇔ {Color(a), Color(b)}; defined {Color(a), Color(b)})", r.String())

	// Variables without new names are dropped.
	r = d.Rename(map[string][]string{"y": {"y"}})
	assert.Equal(t, []Pair[string, string]{{"Shape", "y"}}, r.DefinedVariables())
	assert.Equal(t, []string{"y"}, r.Variables())
}

func TestEnvironmentOperations(t *testing.T) {
	d := top().
		AssumeTypeIff("p", "Color", "x").
		AssumeDefined("Color", "x").
		AssumeDefined("Shape", "y")
	assert.Equal(t, []string{"p", "x", "y"}, d.Variables())

	e := d.Assign("z", expr.Var("x"))
	assert.Equal(t, L.OutcomeTrue, e.CheckIfVariableIsDefined("z", "Color"))
	assert.Equal(t, L.OutcomeTrue, e.CheckIfVariableIsDefined("x", "Color"))

	e = d.Assign("x", expr.Int[string](3))
	assert.Equal(t, L.OutcomeTop, e.CheckIfVariableIsDefined("x", "Color"))
	assert.Equal(t, "(defined {Shape(y)})", e.String())

	e = d.AssignInParallel(map[string]*expr.Expr[string]{"x": expr.Var("y"), "y": expr.Var("x")})
	assert.Equal(t, L.OutcomeTrue, e.CheckIfVariableIsDefined("y", "Color"))
	assert.Equal(t, L.OutcomeTrue, e.CheckIfVariableIsDefined("x", "Shape"))

	e = d.RenameVariable("y", "w")
	assert.Equal(t, L.OutcomeTrue, e.CheckIfVariableIsDefined("w", "Shape"))
	assert.Equal(t, L.OutcomeTop, e.CheckIfVariableIsDefined("y", "Shape"))

	e = d.ProjectVariable("y")
	assert.Equal(t, []string{"p", "x"}, e.Variables())
	assert.Same(t, d, d.AddVariable("v"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "⊤", top().String())
	assert.Equal(t, "⊥", top().Bottom().String())
	assert.Equal(t, "Color(x)", EnumFact[string, string]{"Color", "x"}.String())
	assert.Equal(t, "p ⇔ Color(x)", EnumIffFact[string, string]{"p", Pair[string, string]{"Color", "x"}}.String())
	assert.Panics(t, func() { New[string, string, *expr.Expr[string]](nil) })
}
