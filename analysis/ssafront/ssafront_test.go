package ssafront

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/fixpoint"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/analysis/numeric"
	"github.com/cs-au-dk/absnum/utils"
)

func init() {
	utils.Opts().SetNoColorize(true)
}

const source = `package p

func assert(bool) {}
func assume(bool) {}

func count(n int) int {
	assume(n >= 0)
	i := 0
	for i < n {
		i++
	}
	assert(i == n)
	return i
}

func clamp(x int) int {
	if x > 10 {
		x = 10
	}
	if x > 20 {
		assert(false)
	}
	assert(x <= 10)
	return x
}

func narrow(x int64) int32 {
	y := int32(x)
	var b byte = 200
	z := int(b)
	assert(z == 200)
	return y
}

func opaque(xs []int) int {
	n := len(xs)
	assert(n >= 0)
	return n
}

func big() {
	x := 3000000000
	y := x + 1
	assert(y > 0)
}

func bytes() {
	var b uint8 = 255
	c := b + 1
	assert(c == 0)
}

func ranged(b uint8, k int16) {
	assert(b <= 255)
	assert(int(k) >= -32768)
}

func negate(x int8) {
	assume(x == -128)
	y := -x
	assert(y == -128)
}
`

func build(t *testing.T) *ssa.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", source, parser.ParseComments)
	require.NoError(t, err)

	pkg, _, err := ssautil.BuildPackage(
		&types.Config{Importer: importer.Default()},
		fset,
		types.NewPackage("p", ""),
		[]*ast.File{f},
		ssa.SanityCheckFunctions,
	)
	require.NoError(t, err)
	return pkg
}

func function(t *testing.T, name string) *Function {
	t.Helper()
	f, err := New(build(t).Func(name))
	require.NoError(t, err)
	return f
}

var codec = expr.Tree[string]{}

func analyze(f *Function) *fixpoint.Result[Label, string, E, *numeric.Zones[string, E]] {
	init := numeric.NewZones(numeric.NewContext[string, E](codec, codec, numeric.Ideal))
	return fixpoint.Analyze[Label, string, E](context.Background(), f, init, fixpoint.Options[E]{})
}

// verdicts maps the source line of every assertion to its outcome.
func verdicts(f *Function, res *fixpoint.Result[Label, string, E, *numeric.Zones[string, E]]) map[int]L.Outcome {
	out := map[int]L.Outcome{}
	for _, o := range res.Obligations() {
		pos, ok := f.Assertion(o.Label, o.Index)
		if ok {
			out[f.Position(pos).Line] = o.Outcome
		}
	}
	return out
}

func TestCountingLoop(t *testing.T) {
	f := function(t, "count")
	res := analyze(f)
	require.True(t, res.Complete)

	assert.Equal(t, map[int]L.Outcome{12: L.OutcomeTrue}, verdicts(f, res))

	// The loop head is entered through φ-edges.
	heads := 0
	for _, l := range res.Labels() {
		if res.IsHead(l) {
			heads++
			assert.False(t, l.IsEdge())
		}
	}
	assert.Equal(t, 1, heads)
}

func TestBranches(t *testing.T) {
	f := function(t, "clamp")
	res := analyze(f)
	require.True(t, res.Complete)

	assert.Equal(t, map[int]L.Outcome{
		21: L.OutcomeBottom,
		23: L.OutcomeTrue,
	}, verdicts(f, res))
	assert.Len(t, res.DeadEdges(), 1)
}

func TestConversions(t *testing.T) {
	f := function(t, "narrow")
	res := analyze(f)
	assert.Equal(t, map[int]L.Outcome{31: L.OutcomeTrue}, verdicts(f, res))
}

func TestIntegerTypes(t *testing.T) {
	for name, want := range map[string]map[int]L.Outcome{
		// int is 64 bits wide.
		"big": {44: L.OutcomeTrue},
		// uint8 arithmetic wraps around.
		"bytes":  {50: L.OutcomeTrue},
		"ranged": {54: L.OutcomeTrue, 55: L.OutcomeTrue},
		"negate": {61: L.OutcomeTrue},
	} {
		f := function(t, name)
		res := analyze(f)
		require.True(t, res.Complete, name)
		assert.Equal(t, want, verdicts(f, res), name)
	}
}

func TestTranslateWrapsToType(t *testing.T) {
	f := function(t, "bytes")
	var found bool
	for _, b := range f.Fn.Blocks {
		for _, instr := range b.Instrs {
			if op, ok := instr.(*ssa.BinOp); ok && op.Op == token.ADD {
				e, ok := translate(op)
				require.True(t, ok)
				assert.Equal(t, "uint8(255 + 1)", e.String())
				found = true
			}
		}
	}
	assert.True(t, found)

	r, ok := typeRange(types.Typ[types.Uint16])
	assert.True(t, ok)
	assert.Equal(t, L.FiniteInterval(0, 65535), r)
	_, ok = typeRange(types.Typ[types.Bool])
	assert.False(t, ok)
	_, ok = typeRange(types.Typ[types.UntypedInt])
	assert.False(t, ok)
}

func TestUntrackedValues(t *testing.T) {
	f := function(t, "opaque")
	res := analyze(f)
	assert.Equal(t, map[int]L.Outcome{37: L.OutcomeTop}, verdicts(f, res))
}

func TestLabels(t *testing.T) {
	f := function(t, "count")
	assert.Equal(t, Label{0, -1}, f.Entry())
	assert.Equal(t, "b0", f.Entry().String())
	assert.Equal(t, "b0→b1", Label{1, 0}.String())

	for _, l := range []Label{{1, 0}, {3, 2}} {
		assert.Equal(t, []Label{{l.Block, -1}}, f.Successors(l))
	}

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoBody)
}

func TestWebs(t *testing.T) {
	f := function(t, "count")

	var phi *ssa.Phi
	for _, b := range f.Fn.Blocks {
		for _, instr := range b.Instrs {
			if p, ok := instr.(*ssa.Phi); ok {
				phi = p
			}
		}
	}
	require.NotNil(t, phi)

	for _, web := range f.Webs() {
		if web[0] == f.Fn.Params[0] {
			assert.Len(t, web, 1)
		}
		for _, v := range web {
			if v == phi {
				// i := 0 and i++ are joined by the φ-node, the constant is
				// not a register.
				assert.Len(t, web, 2)
			}
		}
	}

	names := f.Names()
	assert.Equal(t, "n", names["n"])
	assert.Equal(t, "i", names[phi.Name()])
}

func TestFunctions(t *testing.T) {
	fs := Functions([]*ssa.Package{build(t), nil})
	var names []string
	for _, f := range fs {
		names = append(names, f.Fn.Name())
	}
	assert.Equal(t, []string{"assert", "assume", "count", "clamp", "narrow", "opaque", "big", "bytes", "ranged", "negate"}, names)
}
