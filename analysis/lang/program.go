package lang

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/fixpoint"
	"github.com/cs-au-dk/absnum/analysis/lattice"
)

type E = *expr.Expr[string]

// ErrMalformed is reported for programs that parse but cannot be compiled.
var ErrMalformed = errors.New("malformed program")

type Kind uint8

const (
	KAssign Kind = iota
	KAssume
	KAssert
	KHavoc
	KFact
	KBranch
	KPop
)

// Instr is a compiled statement.
type Instr struct {
	Kind Kind
	Pos  lexer.Position

	// Assignment targets, or the havocked/popped variable.
	Targets []string
	// Right-hand sides, or the guard of an assume, assert or branch.
	Exprs []E

	Then, Else int
	Fact       lattice.Fact
}

func (i Instr) String() string {
	switch i.Kind {
	case KAssign:
		rhs := make([]string, len(i.Exprs))
		for k, e := range i.Exprs {
			rhs[k] = e.String()
		}
		return strings.Join(i.Targets, ", ") + " = " + strings.Join(rhs, ", ")
	case KAssume:
		return "assume " + i.Exprs[0].String()
	case KAssert:
		return "assert " + i.Exprs[0].String()
	case KHavoc:
		return "havoc " + i.Targets[0]
	case KFact:
		return "fact " + i.Fact.String()
	case KBranch:
		return fmt.Sprintf("if %s goto %d else %d", i.Exprs[0], i.Then, i.Else)
	case KPop:
		return "pop " + i.Targets[0]
	}
	return "?"
}

type block struct {
	instrs []Instr
	succs  []int
}

// Program is a compiled while-language program. Label 0 is the entry, and
// each label is a basic block ending in at most one branch.
type Program struct {
	Name string
	// Requires lists the preconditions declared at the top of the file.
	Requires []E

	blocks []*block
	exit   int
}

func (p *Program) Entry() int { return 0 }

// Exit is the label reached after the last statement.
func (p *Program) Exit() int { return p.exit }

func (p *Program) Successors(l int) []int {
	if l < 0 || l >= len(p.blocks) {
		return nil
	}
	return p.blocks[l].succs
}

// Instrs returns the statements of a label.
func (p *Program) Instrs(l int) []Instr {
	if l < 0 || l >= len(p.blocks) {
		return nil
	}
	return p.blocks[l].instrs
}

func (p *Program) Decode(l int, v fixpoint.Visitor[int, string, E]) {
	if len(p.Instrs(l)) == 0 {
		v.Nop()
		return
	}

	for _, i := range p.Instrs(l) {
		switch i.Kind {
		case KAssign:
			if len(i.Targets) == 1 {
				v.Assign(i.Targets[0], i.Exprs[0])
				break
			}
			assignments := make(map[string]E, len(i.Targets))
			for k, x := range i.Targets {
				assignments[x] = i.Exprs[k]
			}
			v.AssignInParallel(assignments)
		case KAssume:
			v.Assume(i.Exprs[0])
		case KAssert:
			v.Assert(i.Exprs[0])
		case KHavoc:
			v.Havoc(i.Targets[0])
		case KFact:
			v.Fact(i.Fact)
		case KBranch:
			v.Branch(i.Exprs[0], i.Then, i.Else)
		case KPop:
			v.Pop(i.Targets[0])
		}
	}
}

// Assertion finds the index-th assertion of a label.
func (p *Program) Assertion(l, index int) (Instr, bool) {
	for _, i := range p.Instrs(l) {
		if i.Kind != KAssert {
			continue
		}
		if index == 0 {
			return i, true
		}
		index--
	}
	return Instr{}, false
}

// Variables lists every variable mentioned in the program.
func (p *Program) Variables() []string {
	seen := map[string]bool{}
	for _, b := range p.blocks {
		for _, i := range b.instrs {
			for _, x := range i.Targets {
				seen[x] = true
			}
			for _, e := range i.Exprs {
				for _, x := range e.Variables() {
					seen[x] = true
				}
			}
		}
	}
	for _, e := range p.Requires {
		for _, x := range e.Variables() {
			seen[x] = true
		}
	}

	res := make([]string, 0, len(seen))
	for x := range seen {
		res = append(res, x)
	}
	sort.Strings(res)
	return res
}

func (p *Program) String() string {
	var sb strings.Builder
	for l, b := range p.blocks {
		fmt.Fprintf(&sb, "%d:\n", l)
		for _, i := range b.instrs {
			fmt.Fprintf(&sb, "\t%s\n", i)
		}
		if len(b.succs) > 0 && (len(b.instrs) == 0 || b.instrs[len(b.instrs)-1].Kind != KBranch) {
			fmt.Fprintf(&sb, "\tgoto %d\n", b.succs[0])
		}
	}
	return sb.String()
}

// ParseFile reads and compiles a program from disk.
func ParseFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(src))
}

// Parse compiles the source of a program. The name is used in positions.
func Parse(name, src string) (*Program, error) {
	f, err := parser.ParseString(name, src)
	if err != nil {
		return nil, err
	}

	c := &compiler{prog: &Program{Name: name}}
	for _, r := range f.Requires {
		c.prog.Requires = append(c.prog.Requires, r.Lower())
	}

	cur := c.newBlock()
	cur, err = c.stmts(cur, f.Stmts)
	if err != nil {
		return nil, err
	}
	c.prog.exit = cur
	return c.prog, nil
}

// MustParse is like Parse but panics on errors.
func MustParse(src string) *Program {
	p, err := Parse("", src)
	if err != nil {
		panic(err)
	}
	return p
}
