package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes expressions and the statements of the while language.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `\|\||&&|==|!=|<=|>=|[-+*/%<>=!]`},
	{Name: "Punct", Pattern: `[(){};,:\[\]]`},
})

// Grammar of expressions, from loosest to tightest binding.
type (
	Disjunction struct {
		Left *Conjunction   `@@`
		Rest []*Conjunction `( "||" @@ )*`
	}

	Conjunction struct {
		Left *Comparison   `@@`
		Rest []*Comparison `( "&&" @@ )*`
	}

	Comparison struct {
		Left *Sum            `@@`
		Tail *ComparisonTail `@@?`
	}

	ComparisonTail struct {
		Op    string `@( "==" | "!=" | "<=" | ">=" | "<" | ">" )`
		Right *Sum   `@@`
	}

	Sum struct {
		Left *Product  `@@`
		Rest []*SumTail `@@*`
	}

	SumTail struct {
		Op    string   `@( "+" | "-" )`
		Right *Product `@@`
	}

	Product struct {
		Left *Unary         `@@`
		Rest []*ProductTail `@@*`
	}

	ProductTail struct {
		Op    string `@( "*" | "/" | "%" )`
		Right *Unary `@@`
	}

	Unary struct {
		Negation *Negation `  @@`
		Primary  *Primary  `| @@`
	}

	Negation struct {
		Op      string `@( "!" | "-" )`
		Operand *Unary `@@`
	}

	Primary struct {
		Int        *int64       `  @Int`
		Bool       *string      `| @( "true" | "false" )`
		Conversion *Conversion  `| @@`
		Ident      *string      `| @Ident`
		Sub        *Disjunction `| "(" @@ ")"`
	}
)

// Conversion truncates its operand to an integer type.
type Conversion struct {
	Type    string       `@( "int8" | "int16" | "int32" | "int64" | "uint8" | "uint16" | "uint32" | "uint64" )`
	Operand *Disjunction `"(" @@ ")"`
}

var conversionOps = map[string]Operator{}

func init() {
	for op := range conversions {
		conversionOps[op.String()] = op
	}
}

var parser = participle.MustBuild[Disjunction](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse reads an expression over named variables, e.g. "x + 1 < y && !b".
func Parse(src string) (*Expr[string], error) {
	d, err := parser.ParseString("", src)
	if err != nil {
		return nil, err
	}
	return d.Lower(), nil
}

// MustParse is like Parse but panics on syntax errors.
func MustParse(src string) *Expr[string] {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

var binaryOps = map[string]Operator{
	"+":  Addition,
	"-":  Subtraction,
	"*":  Multiplication,
	"/":  Division,
	"%":  Modulus,
	"==": Equal,
	"!=": NotEqual,
	"<":  LessThan,
	"<=": LessEqual,
	">":  GreaterThan,
	">=": GreaterEqual,
}

// Lower converts the syntax tree to an expression tree.
func (d *Disjunction) Lower() *Expr[string] {
	e := d.Left.Lower()
	for _, r := range d.Rest {
		e = Apply(Or, e, r.Lower())
	}
	return e
}

func (c *Conjunction) Lower() *Expr[string] {
	e := c.Left.Lower()
	for _, r := range c.Rest {
		e = Apply(And, e, r.Lower())
	}
	return e
}

func (c *Comparison) Lower() *Expr[string] {
	e := c.Left.Lower()
	if c.Tail != nil {
		e = Apply(binaryOps[c.Tail.Op], e, c.Tail.Right.Lower())
	}
	return e
}

func (s *Sum) Lower() *Expr[string] {
	e := s.Left.Lower()
	for _, r := range s.Rest {
		e = Apply(binaryOps[r.Op], e, r.Right.Lower())
	}
	return e
}

func (p *Product) Lower() *Expr[string] {
	e := p.Left.Lower()
	for _, r := range p.Rest {
		e = Apply(binaryOps[r.Op], e, r.Right.Lower())
	}
	return e
}

func (u *Unary) Lower() *Expr[string] {
	if n := u.Negation; n != nil {
		operand := n.Operand.Lower()
		if n.Op == "!" {
			return Apply(Not, operand)
		}
		// Fold negative literals.
		if operand.op == Constant {
			if k, ok := TryInt64[string](Tree[string]{}, operand); ok {
				return Int[string](-k)
			}
		}
		return Apply(UnaryMinus, operand)
	}
	return u.Primary.Lower()
}

func (p *Primary) Lower() *Expr[string] {
	switch {
	case p.Int != nil:
		return Int[string](*p.Int)
	case p.Bool != nil:
		return Bool[string](*p.Bool == "true")
	case p.Conversion != nil:
		return Apply(conversionOps[p.Conversion.Type], p.Conversion.Operand.Lower())
	case p.Ident != nil:
		return Var(*p.Ident)
	default:
		return p.Sub.Lower()
	}
}
