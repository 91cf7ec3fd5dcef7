// Package ssafront analyzes Go functions. A function in SSA form is
// exposed to the fixpoint engine as a control-flow graph over its basic
// blocks, tracking every integer and boolean register.
//
// φ-nodes are resolved on the incoming edges: every edge into a block with
// φ-nodes gets its own label, which performs the φ-moves of that edge as a
// parallel assignment.
//
// Calls to package-level functions named assert and assume with a single
// boolean argument are proof obligations and assumptions, respectively.
package ssafront

import (
	"errors"
	"fmt"
	"go/token"
	"sort"

	"golang.org/x/tools/go/ssa"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/fixpoint"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
)

type E = *expr.Expr[string]

var ErrNoBody = errors.New("function has no body")

// Label is either a basic block or, when From is not -1, the edge from
// block From into Block.
type Label struct {
	Block, From int
}

func (l Label) IsEdge() bool { return l.From >= 0 }

func (l Label) String() string {
	if l.IsEdge() {
		return fmt.Sprintf("b%d→b%d", l.From, l.Block)
	}
	return fmt.Sprintf("b%d", l.Block)
}

// Function is the control-flow supplier of a Go function.
type Function struct {
	Fn *ssa.Function
}

var _ fixpoint.Program[Label, string, E] = (*Function)(nil)

func New(fn *ssa.Function) (*Function, error) {
	if fn == nil || len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("%v: %w", fn, ErrNoBody)
	}
	return &Function{fn}, nil
}

// Functions lists the functions with bodies declared in the given packages,
// ordered by position.
func Functions(pkgs []*ssa.Package) (res []*Function) {
	for _, pkg := range pkgs {
		if pkg == nil {
			continue
		}
		for _, m := range pkg.Members {
			if fn, ok := m.(*ssa.Function); ok && fn.Synthetic == "" && len(fn.Blocks) > 0 {
				res = append(res, &Function{fn})
			}
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Fn.Pos() != res[j].Fn.Pos() {
			return res[i].Fn.Pos() < res[j].Fn.Pos()
		}
		return res[i].Fn.String() < res[j].Fn.String()
	})
	return
}

func (f *Function) String() string { return f.Fn.String() }

func (f *Function) Entry() Label {
	return Label{0, -1}
}

func hasPhis(b *ssa.BasicBlock) bool {
	if len(b.Instrs) == 0 {
		return false
	}
	_, ok := b.Instrs[0].(*ssa.Phi)
	return ok
}

// target is the label control reaches when leaving from for to.
func target(from, to *ssa.BasicBlock) Label {
	if hasPhis(to) {
		return Label{to.Index, from.Index}
	}
	return Label{to.Index, -1}
}

func (f *Function) Successors(l Label) (res []Label) {
	if l.IsEdge() {
		return []Label{{l.Block, -1}}
	}

	b := f.Fn.Blocks[l.Block]
	for _, s := range b.Succs {
		res = append(res, target(b, s))
	}
	return
}

func (f *Function) Decode(l Label, v fixpoint.Visitor[Label, string, E]) {
	b := f.Fn.Blocks[l.Block]
	if l.IsEdge() {
		f.decodeEdge(b, f.Fn.Blocks[l.From], v)
		return
	}

	emitted := false
	if l == f.Entry() {
		for _, p := range f.Fn.Params {
			emitted = bound(p, v) || emitted
		}
		for _, fv := range f.Fn.FreeVars {
			emitted = bound(fv, v) || emitted
		}
	}
	for _, instr := range b.Instrs {
		emitted = f.decode(instr, v) || emitted
	}
	if !emitted {
		v.Nop()
	}
}

// decodeEdge performs the φ-moves of the edge from pred into b.
func (f *Function) decodeEdge(b, pred *ssa.BasicBlock, v fixpoint.Visitor[Label, string, E]) {
	k := -1
	for i, p := range b.Preds {
		if p == pred {
			k = i
			break
		}
	}

	moves := map[string]E{}
	for _, instr := range b.Instrs {
		phi, ok := instr.(*ssa.Phi)
		if !ok {
			break
		}
		if !tracked(phi) || k < 0 {
			continue
		}
		moves[phi.Name()] = operand(phi.Edges[k])
	}

	switch len(moves) {
	case 0:
		v.Nop()
	default:
		v.AssignInParallel(moves)
	}
}

// decode dispatches a single instruction, and reports whether it had any
// effect.
func (f *Function) decode(instr ssa.Instruction, v fixpoint.Visitor[Label, string, E]) bool {
	switch instr := instr.(type) {
	case *ssa.Phi:
		return false

	case *ssa.If:
		b := instr.Block()
		v.Branch(guard(instr.Cond), target(b, b.Succs[0]), target(b, b.Succs[1]))
		return true

	case *ssa.Call:
		if kind, arg, ok := contract(instr); ok {
			switch kind {
			case "assert":
				v.Assert(guard(arg))
			case "assume":
				v.Assume(guard(arg))
			}
			return true
		}
	}

	if val, ok := instr.(ssa.Value); ok && tracked(val) {
		if e, ok := translate(val); ok {
			v.Assign(val.Name(), e)
		} else {
			v.Havoc(val.Name())
			bound(val, v)
		}
		return true
	}
	return false
}

// bound restricts an integer register to the values of its type.
func bound(val ssa.Value, v fixpoint.Visitor[Label, string, E]) bool {
	r, ok := typeRange(val.Type())
	if !ok {
		return false
	}
	v.Fact(L.BoundFact[string]{Var: val.Name(), Bounds: r})
	return true
}

// contract recognizes calls to assert and assume.
func contract(call *ssa.Call) (kind string, arg ssa.Value, ok bool) {
	callee := call.Call.StaticCallee()
	if callee == nil || callee.Parent() != nil || len(call.Call.Args) != 1 {
		return
	}
	switch callee.Name() {
	case "assert", "assume":
		arg = call.Call.Args[0]
		return callee.Name(), arg, isBool(arg.Type())
	}
	return
}

// Assertion returns the position of the index-th assertion of a label.
func (f *Function) Assertion(l Label, index int) (token.Pos, bool) {
	if l.IsEdge() {
		return token.NoPos, false
	}
	for _, instr := range f.Fn.Blocks[l.Block].Instrs {
		call, ok := instr.(*ssa.Call)
		if !ok {
			continue
		}
		if kind, _, ok := contract(call); !ok || kind != "assert" {
			continue
		}
		if index == 0 {
			return call.Pos(), true
		}
		index--
	}
	return token.NoPos, false
}

// Position resolves a position in the function's file set.
func (f *Function) Position(pos token.Pos) token.Position {
	return f.Fn.Prog.Fset.Position(pos)
}
