package ssafront

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
)

func basic(t types.Type) (*types.Basic, bool) {
	b, ok := t.Underlying().(*types.Basic)
	return b, ok
}

func isInteger(t types.Type) bool {
	b, ok := basic(t)
	return ok && b.Info()&types.IsInteger != 0
}

func isBool(t types.Type) bool {
	b, ok := basic(t)
	return ok && b.Info()&types.IsBoolean != 0
}

// conversion is the operator truncating a value to the integer type t.
func conversion(t types.Type) (expr.Operator, bool) {
	b, ok := basic(t)
	if !ok || b.Info()&types.IsInteger == 0 || b.Info()&types.IsUntyped != 0 {
		return 0, false
	}
	return expr.ConversionTo(uint(8*sizes.Sizeof(b)), b.Info()&types.IsUnsigned == 0)
}

// typeRange is the set of values of the integer type t.
func typeRange(t types.Type) (L.Interval, bool) {
	op, ok := conversion(t)
	if !ok {
		return L.Interval{}, false
	}
	bits, signed, _ := op.Conversion()
	return L.IntRange(bits, signed), true
}

// wrapTo makes the arithmetic in e wrap around like values of type t.
func wrapTo(t types.Type, e E) E {
	if op, ok := conversion(t); ok {
		return expr.Apply(op, e)
	}
	return e
}

// tracked values are the registers with integer or boolean type.
func tracked(v ssa.Value) bool {
	return isInteger(v.Type()) || isBool(v.Type())
}

var binaryOps = map[token.Token]expr.Operator{
	token.ADD: expr.Addition,
	token.SUB: expr.Subtraction,
	token.MUL: expr.Multiplication,
	token.QUO: expr.Division,
	token.REM: expr.Modulus,
	token.EQL: expr.Equal,
	token.NEQ: expr.NotEqual,
	token.LSS: expr.LessThan,
	token.LEQ: expr.LessEqual,
	token.GTR: expr.GreaterThan,
	token.GEQ: expr.GreaterEqual,
}

// operand refers to v as a variable, inlining constants.
func operand(v ssa.Value) E {
	if c, ok := v.(*ssa.Const); ok && c.Value != nil {
		return expr.Const[string](c.Value)
	}
	return expr.Var(v.Name())
}

// guard rebuilds the condition a boolean register was computed from, so
// that branches refine the compared operands rather than the register.
func guard(v ssa.Value) E {
	switch v := v.(type) {
	case *ssa.BinOp:
		if op, ok := binaryOps[v.Op]; ok && op.IsComparison() && isInteger(v.X.Type()) {
			return expr.Apply(op, operand(v.X), operand(v.Y))
		}
	case *ssa.UnOp:
		if v.Op == token.NOT {
			return expr.Apply(expr.Not, guard(v.X))
		}
	}
	return operand(v)
}

// translate expresses the value computed by v over its operands. Integer
// arithmetic is computed exactly and then wrapped to the type of v.
func translate(v ssa.Value) (E, bool) {
	switch v := v.(type) {
	case *ssa.BinOp:
		op, ok := binaryOps[v.Op]
		if !ok || !isInteger(v.X.Type()) {
			return nil, false
		}
		e := expr.Apply(op, operand(v.X), operand(v.Y))
		if op.IsComparison() {
			return e, true
		}
		return wrapTo(v.Type(), e), true

	case *ssa.UnOp:
		switch v.Op {
		case token.SUB:
			return wrapTo(v.Type(), expr.Apply(expr.UnaryMinus, operand(v.X))), true
		case token.NOT:
			return expr.Apply(expr.Not, operand(v.X)), true
		}

	case *ssa.Convert:
		from, fok := basic(v.X.Type())
		to, tok := basic(v.Type())
		if !fok || !tok || !isInteger(from) || !isInteger(to) {
			return nil, false
		}
		if widens(from, to) {
			return operand(v.X), true
		}
		return wrapTo(to, operand(v.X)), true

	case *ssa.ChangeType:
		if tracked(v.X) {
			return operand(v.X), true
		}
	}
	return nil, false
}

var sizes = types.SizesFor("gc", "amd64")

// widens holds when every value of from is a value of to.
func widens(from, to *types.Basic) bool {
	fu := from.Info()&types.IsUnsigned != 0
	tu := to.Info()&types.IsUnsigned != 0
	fs, ts := sizes.Sizeof(from), sizes.Sizeof(to)
	switch {
	case fu == tu:
		return fs <= ts
	case fu:
		return fs < ts
	}
	return false
}
