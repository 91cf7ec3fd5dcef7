package expr

import (
	"fmt"
	"go/constant"
	"go/token"
	"strings"
)

// Expr is a plain expression tree over variables of type V. It is the
// representation used by the while-language and Go front ends, and is
// handled through the Tree codec.
type Expr[V comparable] struct {
	op   Operator
	v    V
	val  constant.Value
	args []*Expr[V]
}

// Var creates a variable expression.
func Var[V comparable](v V) *Expr[V] {
	return &Expr[V]{op: Variable, v: v}
}

// Const creates a constant expression.
func Const[V comparable](c constant.Value) *Expr[V] {
	return &Expr[V]{op: Constant, val: c}
}

// Int creates an integer constant expression.
func Int[V comparable](k int64) *Expr[V] {
	return Const[V](constant.MakeInt64(k))
}

// Bool creates a boolean constant expression.
func Bool[V comparable](b bool) *Expr[V] {
	return Const[V](constant.MakeBool(b))
}

// Apply builds a compound expression. Panics if the number of operands does
// not match the arity of op.
func Apply[V comparable](op Operator, operands ...*Expr[V]) *Expr[V] {
	switch {
	case op.IsUnary() && len(operands) == 1,
		op.IsBinary() && len(operands) == 2:
		return &Expr[V]{op: op, args: operands}
	}
	panic(fmt.Sprintf("operator %s applied to %d operands", op, len(operands)))
}

// Op returns the root operator.
func (e *Expr[V]) Op() Operator {
	return e.op
}

// Equal checks structural equality.
func (e *Expr[V]) Equal(o *Expr[V]) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || e.op != o.op || len(e.args) != len(o.args) {
		return false
	}

	switch e.op {
	case Variable:
		return e.v == o.v
	case Constant:
		return e.val.Kind() == o.val.Kind() && constant.Compare(e.val, token.EQL, o.val)
	}

	for i := range e.args {
		if !e.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Variables lists the distinct variables occurring in e in left-to-right order.
func (e *Expr[V]) Variables() []V {
	var res []V
	seen := map[V]bool{}
	var visit func(*Expr[V])
	visit = func(e *Expr[V]) {
		if e.op == Variable {
			if !seen[e.v] {
				seen[e.v] = true
				res = append(res, e.v)
			}
			return
		}
		for _, a := range e.args {
			visit(a)
		}
	}
	visit(e)
	return res
}

// Map replaces every variable by the expression f returns for it.
func (e *Expr[V]) Map(f func(V) *Expr[V]) *Expr[V] {
	switch e.op {
	case Variable:
		return f(e.v)
	case Constant:
		return e
	}

	args := make([]*Expr[V], len(e.args))
	for i, a := range e.args {
		args[i] = a.Map(f)
	}
	return &Expr[V]{op: e.op, args: args}
}

func (e *Expr[V]) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr[V]) write(sb *strings.Builder) {
	switch {
	case e.op == Variable:
		fmt.Fprint(sb, e.v)
	case e.op == Constant:
		sb.WriteString(e.val.ExactString())
	case e.op.IsConversion():
		sb.WriteString(e.op.String() + "(")
		e.args[0].write(sb)
		sb.WriteString(")")
	case e.op.IsUnary():
		sb.WriteString(e.op.String())
		e.args[0].writeOperand(sb)
	default:
		e.args[0].writeOperand(sb)
		sb.WriteString(" " + e.op.String() + " ")
		e.args[1].writeOperand(sb)
	}
}

func (e *Expr[V]) writeOperand(sb *strings.Builder) {
	if e.op.IsBinary() {
		sb.WriteString("(")
		e.write(sb)
		sb.WriteString(")")
		return
	}
	e.write(sb)
}

// Tree is the Decoder and Encoder of *Expr[V].
type Tree[V comparable] struct{}

var (
	_ Decoder[string, *Expr[string]] = Tree[string]{}
	_ Encoder[string, *Expr[string]] = Tree[string]{}
)

func (Tree[V]) OperatorFor(e *Expr[V]) Operator { return e.op }

func (Tree[V]) IsVariable(e *Expr[V]) (V, bool) {
	if e.op == Variable {
		return e.v, true
	}
	var zero V
	return zero, false
}

func (Tree[V]) IsConstant(e *Expr[V]) bool { return e.op == Constant }
func (Tree[V]) IsUnary(e *Expr[V]) bool    { return e.op.IsUnary() }
func (Tree[V]) IsBinary(e *Expr[V]) bool   { return e.op.IsBinary() }

func (Tree[V]) Left(e *Expr[V]) *Expr[V] {
	if len(e.args) > 0 {
		return e.args[0]
	}
	return nil
}

func (Tree[V]) Right(e *Expr[V]) *Expr[V] {
	if len(e.args) > 1 {
		return e.args[1]
	}
	return nil
}

func (Tree[V]) TryValueOf(e *Expr[V]) (constant.Value, bool) {
	if e.op == Constant {
		return e.val, true
	}
	return nil, false
}

func (Tree[V]) Variable(v V) *Expr[V]              { return Var(v) }
func (Tree[V]) Constant(c constant.Value) *Expr[V] { return Const[V](c) }
func (Tree[V]) Compound(op Operator, operands ...*Expr[V]) *Expr[V] {
	return Apply(op, operands...)
}
