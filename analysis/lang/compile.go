package lang

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cs-au-dk/absnum/analysis/enumdef"
	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/lattice"
)

type compiler struct {
	prog *Program
}

func (c *compiler) newBlock() int {
	c.prog.blocks = append(c.prog.blocks, &block{})
	return len(c.prog.blocks) - 1
}

func (c *compiler) emit(l int, i Instr) {
	b := c.prog.blocks[l]
	b.instrs = append(b.instrs, i)
}

func (c *compiler) jump(from, to int) {
	b := c.prog.blocks[from]
	b.succs = append(b.succs, to)
}

// branch ends the block at l with a two-way branch on cond.
func (c *compiler) branch(l int, pos lexer.Position, cond E) (then, els int) {
	then, els = c.newBlock(), c.newBlock()
	c.emit(l, Instr{Kind: KBranch, Pos: pos, Exprs: []E{cond}, Then: then, Else: els})
	c.jump(l, then)
	c.jump(l, els)
	return
}

func (c *compiler) stmts(cur int, stmts []*Stmt) (int, error) {
	var err error
	for _, s := range stmts {
		if cur, err = c.stmt(cur, s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// stmt compiles s starting in the block at cur, and returns the block
// control continues in.
func (c *compiler) stmt(cur int, s *Stmt) (int, error) {
	switch {
	case s.Assign != nil:
		a := s.Assign
		if len(a.Targets) != len(a.Values) {
			return cur, fmt.Errorf("%s: %d targets and %d values: %w", s.Pos, len(a.Targets), len(a.Values), ErrMalformed)
		}
		seen := map[string]bool{}
		for _, x := range a.Targets {
			if seen[x] {
				return cur, fmt.Errorf("%s: %s assigned twice: %w", s.Pos, x, ErrMalformed)
			}
			seen[x] = true
		}

		i := Instr{Kind: KAssign, Pos: s.Pos, Targets: a.Targets}
		for _, v := range a.Values {
			i.Exprs = append(i.Exprs, v.Lower())
		}
		c.emit(cur, i)

	case s.Assume != nil:
		c.emit(cur, Instr{Kind: KAssume, Pos: s.Pos, Exprs: []E{s.Assume.Lower()}})

	case s.Assert != nil:
		c.emit(cur, Instr{Kind: KAssert, Pos: s.Pos, Exprs: []E{s.Assert.Lower()}})

	case s.Havoc != nil:
		c.emit(cur, Instr{Kind: KHavoc, Pos: s.Pos, Targets: []string{*s.Havoc}})

	case s.Fact != nil:
		f, err := s.Fact.lower()
		if err != nil {
			return cur, fmt.Errorf("%s: %w", s.Pos, err)
		}
		c.emit(cur, Instr{Kind: KFact, Pos: s.Pos, Fact: f})

	case s.Decl != nil:
		// Declarations are scoped by the enclosing block, see Block.
		i := Instr{Kind: KHavoc, Pos: s.Pos, Targets: []string{s.Decl.Name}}
		if s.Decl.Init != nil {
			i = Instr{Kind: KAssign, Pos: s.Pos, Targets: []string{s.Decl.Name}, Exprs: []E{s.Decl.Init.Lower()}}
		}
		c.emit(cur, i)

	case s.Block != nil:
		return c.block(cur, s.Block)

	case s.If != nil:
		return c.ifStmt(cur, s.Pos, s.If)

	case s.While != nil:
		head := c.newBlock()
		c.jump(cur, head)

		body, exit := c.branch(head, s.Pos, s.While.Cond.Lower())
		end, err := c.block(body, s.While.Body)
		if err != nil {
			return cur, err
		}
		c.jump(end, head)
		return exit, nil
	}

	return cur, nil
}

// block compiles a nested scope. Variables declared in it are popped on
// exit.
func (c *compiler) block(cur int, b *Block) (int, error) {
	cur, err := c.stmts(cur, b.Stmts)
	if err != nil {
		return cur, err
	}

	for k := len(b.Stmts) - 1; k >= 0; k-- {
		if d := b.Stmts[k].Decl; d != nil {
			c.emit(cur, Instr{Kind: KPop, Pos: b.Stmts[k].Pos, Targets: []string{d.Name}})
		}
	}
	return cur, nil
}

func (c *compiler) ifStmt(cur int, pos lexer.Position, s *If) (int, error) {
	then, els := c.branch(cur, pos, s.Cond.Lower())

	thenEnd, err := c.block(then, s.Then)
	if err != nil {
		return cur, err
	}

	elsEnd := els
	if s.Else != nil {
		switch {
		case s.Else.If != nil:
			elsEnd, err = c.ifStmt(els, pos, s.Else.If)
		default:
			elsEnd, err = c.block(els, s.Else.Block)
		}
		if err != nil {
			return cur, err
		}
	}

	join := c.newBlock()
	c.jump(thenEnd, join)
	c.jump(elsEnd, join)
	return join, nil
}

func constant(s *expr.Sum) (int64, error) {
	e := s.Lower()
	if k, ok := expr.TryInt64[string](expr.Tree[string]{}, e); ok {
		return k, nil
	}
	return 0, fmt.Errorf("bound %s is not an integer literal: %w", e, ErrMalformed)
}

func (f *Fact) lower() (lattice.Fact, error) {
	switch {
	case f.Range != nil:
		lo, err := constant(f.Range.Low)
		if err != nil {
			return nil, err
		}
		hi, err := constant(f.Range.High)
		if err != nil {
			return nil, err
		}
		return lattice.BoundFact[string]{Var: f.Range.Var, Bounds: lattice.FiniteInterval(lo, hi)}, nil
	case f.Iff != nil:
		return enumdef.EnumIffFact[string, string]{
			Cond: f.Iff.Cond,
			Pair: enumdef.Pair[string, string]{Type: f.Iff.Type, Var: f.Iff.Var},
		}, nil
	default:
		return enumdef.EnumFact[string, string]{Type: f.Enum.Type, Var: f.Enum.Var}, nil
	}
}
