package numeric

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/guard"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils"
)

// Intervals is the non-relational environment mapping each variable to an
// interval. Untracked variables are unconstrained.
type Intervals[V comparable, E any] struct {
	ctx  *Context[V, E]
	bot  bool
	vars *immutable.Map[V, L.Interval]
}

var _ L.Environment[string, *expr.Expr[string], *Intervals[string, *expr.Expr[string]]] = (*Intervals[string, *expr.Expr[string]])(nil)

// NewIntervals creates the ⊤ environment of a session.
func NewIntervals[V comparable, E any](ctx *Context[V, E]) *Intervals[V, E] {
	if ctx == nil {
		panic("numeric: missing context")
	}
	return &Intervals[V, E]{ctx: ctx, vars: utils.NewImmMap[V, L.Interval]()}
}

func (d *Intervals[V, E]) Context() *Context[V, E] { return d.ctx }

func (d *Intervals[V, E]) IsBottom() bool { return d.bot }

func (d *Intervals[V, E]) IsTop() bool {
	if d.bot {
		return false
	}
	itr := d.vars.Iterator()
	for !itr.Done() {
		if _, i, _ := itr.Next(); !i.IsTop() {
			return false
		}
	}
	return true
}

func (d *Intervals[V, E]) Bottom() *Intervals[V, E] {
	return &Intervals[V, E]{ctx: d.ctx, bot: true, vars: utils.NewImmMap[V, L.Interval]()}
}

func (d *Intervals[V, E]) Top() *Intervals[V, E] {
	return NewIntervals(d.ctx)
}

// BoundsOf returns the interval of x.
func (d *Intervals[V, E]) BoundsOf(x V) L.Interval {
	if d.bot {
		return L.BotInterval()
	}
	if i, ok := d.vars.Get(x); ok {
		return i
	}
	return L.TopInterval()
}

func (d *Intervals[V, E]) with(x V, i L.Interval) *Intervals[V, E] {
	if d.bot {
		return d
	}
	if i.IsBot() {
		return d.Bottom()
	}
	return &Intervals[V, E]{ctx: d.ctx, vars: d.vars.Set(x, i)}
}

func (d *Intervals[V, E]) Variables() []V {
	return sortedKeys(d.vars)
}

func (d *Intervals[V, E]) AddVariable(x V) *Intervals[V, E] {
	if _, ok := d.vars.Get(x); ok || d.bot {
		return d
	}
	return d.with(x, L.TopInterval())
}

func (d *Intervals[V, E]) RemoveVariable(x V) *Intervals[V, E] {
	if _, ok := d.vars.Get(x); !ok {
		return d
	}
	return &Intervals[V, E]{ctx: d.ctx, bot: d.bot, vars: d.vars.Delete(x)}
}

// ProjectVariable is RemoveVariable, as intervals induce no relations.
func (d *Intervals[V, E]) ProjectVariable(x V) *Intervals[V, E] {
	return d.RemoveVariable(x)
}

func (d *Intervals[V, E]) RenameVariable(from, to V) *Intervals[V, E] {
	if d.bot || from == to {
		return d
	}
	i, ok := d.vars.Get(from)
	res := d.RemoveVariable(from).RemoveVariable(to)
	if ok {
		res = res.with(to, i)
	}
	return res
}

// AssignInterval restricts x to i.
func (d *Intervals[V, E]) AssignInterval(x V, i L.Interval) *Intervals[V, E] {
	return d.with(x, d.BoundsOf(x).Meet(i))
}

// BoundsFor evaluates e over intervals. Expressions other than arithmetic
// over constants and variables evaluate to ⊤, or to [0, 1] when boolean.
func (d *Intervals[V, E]) BoundsFor(e E) L.Interval {
	if d.bot {
		return L.BotInterval()
	}

	dec := d.ctx.Decoder
	switch op := dec.OperatorFor(e); op {
	case expr.Constant:
		if k, ok := expr.TryInt64(dec, e); ok {
			return L.Singleton(k)
		}
		if b, ok := expr.TryBool(dec, e); ok {
			return truthInterval(L.OutcomeOf(b))
		}
	case expr.Variable:
		if x, ok := dec.IsVariable(e); ok {
			return d.BoundsOf(x)
		}
	case expr.UnaryMinus:
		return d.ctx.wrap(d.BoundsFor(dec.Left(e)).Neg())
	case expr.Addition, expr.Subtraction, expr.Multiplication, expr.Division, expr.Modulus:
		l, r := d.BoundsFor(dec.Left(e)), d.BoundsFor(dec.Right(e))
		var res L.Interval
		switch op {
		case expr.Addition:
			res = l.Add(r)
		case expr.Subtraction:
			res = l.Sub(r)
		case expr.Multiplication:
			res = l.Mul(r)
		case expr.Division:
			res = l.Div(r)
		default:
			res = l.Rem(r)
		}
		return d.ctx.wrap(res)
	default:
		if bits, signed, ok := op.Conversion(); ok {
			return d.BoundsFor(dec.Left(e)).Wrap(bits, signed)
		}
		if op.IsBoolean() {
			return truthInterval(d.CheckIfHolds(e))
		}
	}
	return L.TopInterval()
}

func (d *Intervals[V, E]) Assign(x V, e E) *Intervals[V, E] {
	if d.bot {
		return d
	}
	return d.with(x, d.BoundsFor(e))
}

func (d *Intervals[V, E]) AssignInParallel(assignments map[V]E) *Intervals[V, E] {
	if d.bot {
		return d
	}
	values := make(map[V]L.Interval, len(assignments))
	for x, e := range assignments {
		values[x] = d.BoundsFor(e)
	}
	res := d
	for x, i := range values {
		res = res.with(x, i)
	}
	return res
}

func (d *Intervals[V, E]) TestTrue(g E) *Intervals[V, E] {
	return guard.Test(d.ctx.Decoder, d, g, true)
}

func (d *Intervals[V, E]) TestFalse(g E) *Intervals[V, E] {
	return guard.Test(d.ctx.Decoder, d, g, false)
}

// refine restricts the value of e to i. Only expressions normalizing to
// x + k refine a variable.
func (d *Intervals[V, E]) refine(e E, i L.Interval) *Intervals[V, E] {
	if d.bot || i.IsBot() {
		return d.Bottom()
	}
	n, ok := d.ctx.normalize(e, d.BoundsFor)
	if !ok {
		return d
	}
	x, k, ok := n.Base()
	if !ok || !d.ctx.safeOffset(d.BoundsOf(x), int64(k)) {
		return d
	}
	return d.AssignInterval(x, i.Sub(L.Singleton(int64(k))))
}

func (d *Intervals[V, E]) AssumeLessThan(l, r E) *Intervals[V, E] {
	li, ri := d.BoundsFor(l), d.BoundsFor(r)
	nl := li.Meet(L.NewInterval(L.MinusInfinity{}, ri.High().Minus(L.FiniteBound(1))))
	nr := ri.Meet(L.NewInterval(li.Low().Plus(L.FiniteBound(1)), L.PlusInfinity{}))
	return d.refine(l, nl).refine(r, nr)
}

func (d *Intervals[V, E]) AssumeLessEqual(l, r E) *Intervals[V, E] {
	li, ri := d.BoundsFor(l), d.BoundsFor(r)
	nl := li.Meet(L.NewInterval(L.MinusInfinity{}, ri.High()))
	nr := ri.Meet(L.NewInterval(li.Low(), L.PlusInfinity{}))
	return d.refine(l, nl).refine(r, nr)
}

func (d *Intervals[V, E]) AssumeEqual(l, r E) *Intervals[V, E] {
	m := d.BoundsFor(l).Meet(d.BoundsFor(r))
	return d.refine(l, m).refine(r, m)
}

func (d *Intervals[V, E]) AssumeNotEqual(l, r E) *Intervals[V, E] {
	li, ri := d.BoundsFor(l), d.BoundsFor(r)
	nl, nr := li, ri
	if k, ok := ri.IsSingleton(); ok {
		nl = excludeEdge(li, k)
	}
	if k, ok := li.IsSingleton(); ok {
		nr = excludeEdge(ri, k)
	}
	return d.refine(l, nl).refine(r, nr)
}

func (d *Intervals[V, E]) AssumeVariable(x V, truth bool) *Intervals[V, E] {
	if truth {
		return d.with(x, excludeEdge(d.BoundsOf(x), 0))
	}
	return d.AssignInterval(x, L.Singleton(0))
}

func (d *Intervals[V, E]) AssumeFact(f L.Fact) *Intervals[V, E] {
	if f, ok := f.(L.BoundFact[V]); ok {
		return d.AssignInterval(f.Var, f.Bounds)
	}
	return d
}

func (d *Intervals[V, E]) CheckIfHolds(e E) L.Outcome {
	if d.bot {
		return L.OutcomeBottom
	}
	return checkIfHolds(d.ctx.Decoder, comparer[E](d), e)
}

func (d *Intervals[V, E]) CheckIfLessThan(l, r E) L.Outcome {
	return d.BoundsFor(l).CheckLessThan(d.BoundsFor(r))
}

func (d *Intervals[V, E]) CheckIfLessEqualThan(l, r E) L.Outcome {
	return d.BoundsFor(l).CheckLessEqual(d.BoundsFor(r))
}

func (d *Intervals[V, E]) CheckIfEqual(l, r E) L.Outcome {
	return d.BoundsFor(l).CheckEqual(d.BoundsFor(r))
}

func (d *Intervals[V, E]) CheckIfNonZero(e E) L.Outcome {
	return d.BoundsFor(e).CheckEqual(L.Singleton(0)).Negate()
}

func (d *Intervals[V, E]) CheckIfGreaterEqualThanZero(e E) L.Outcome {
	return L.Singleton(0).CheckLessEqual(d.BoundsFor(e))
}

func (d *Intervals[V, E]) LessEqual(o *Intervals[V, E]) bool {
	if leq, ok := L.TrivialLessEqual(d, o); ok {
		return leq
	}
	itr := o.vars.Iterator()
	for !itr.Done() {
		x, i, _ := itr.Next()
		if !d.BoundsOf(x).Leq(i) {
			return false
		}
	}
	return true
}

// pointwise combines the intervals of the variables in keys.
func (d *Intervals[V, E]) pointwise(o *Intervals[V, E], keys *immutable.Map[V, L.Interval], f func(a, b L.Interval) L.Interval) *Intervals[V, E] {
	res := &Intervals[V, E]{ctx: d.ctx, vars: utils.NewImmMap[V, L.Interval]()}
	itr := keys.Iterator()
	for !itr.Done() {
		x, _, _ := itr.Next()
		i := f(d.BoundsOf(x), o.BoundsOf(x))
		if i.IsBot() {
			return d.Bottom()
		}
		res.vars = res.vars.Set(x, i)
	}
	return res
}

// union is the map of the variables tracked by either side.
func union[V comparable](a, b *immutable.Map[V, L.Interval]) *immutable.Map[V, L.Interval] {
	itr := b.Iterator()
	for !itr.Done() {
		x, i, _ := itr.Next()
		if _, ok := a.Get(x); !ok {
			a = a.Set(x, i)
		}
	}
	return a
}

// Join keeps the variables tracked on both sides.
func (d *Intervals[V, E]) Join(o *Intervals[V, E]) *Intervals[V, E] {
	if j, ok := L.TrivialJoin(d, o); ok {
		return j
	}
	res := d.pointwise(o, d.vars, L.Interval.Join)
	itr := d.vars.Iterator()
	for !itr.Done() {
		if x, _, _ := itr.Next(); !o.tracks(x) {
			res.vars = res.vars.Delete(x)
		}
	}
	return res
}

func (d *Intervals[V, E]) tracks(x V) bool {
	_, ok := d.vars.Get(x)
	return ok
}

func (d *Intervals[V, E]) Meet(o *Intervals[V, E]) *Intervals[V, E] {
	if m, ok := L.TrivialMeet(d, o); ok {
		return m
	}
	return d.pointwise(o, union(d.vars, o.vars), L.Interval.Meet)
}

func (d *Intervals[V, E]) Widening(prev *Intervals[V, E]) *Intervals[V, E] {
	switch {
	case prev.bot:
		return d
	case d.bot:
		return prev
	}
	ts := d.ctx.Thresholds
	return d.pointwise(prev, d.vars, func(cur, prev L.Interval) L.Interval {
		return cur.Widening(prev, ts)
	})
}

func (d *Intervals[V, E]) Narrowing(prev *Intervals[V, E]) *Intervals[V, E] {
	switch {
	case prev.bot || d.bot:
		return d.Bottom()
	}
	return d.pointwise(prev, union(d.vars, prev.vars), func(cur, prev L.Interval) L.Interval {
		return cur.Narrowing(d.ctx.opened(prev))
	})
}

func (d *Intervals[V, E]) String() string {
	switch {
	case d.bot:
		return L.Colorize.Element("⊥")
	case d.IsTop():
		return L.Colorize.Element("⊤")
	}

	var parts []string
	for _, x := range d.Variables() {
		if i := d.BoundsOf(x); !i.IsTop() {
			parts = append(parts, L.Colorize.Key(fmt.Sprint(x))+" ∈ "+i.String())
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// sortedKeys lists the keys of m ordered by their printed form.
func sortedKeys[V comparable, T any](m *immutable.Map[V, T]) []V {
	res := make([]V, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		x, _, _ := itr.Next()
		res = append(res, x)
	}
	sort.Slice(res, func(i, j int) bool {
		return fmt.Sprint(res[i]) < fmt.Sprint(res[j])
	})
	return res
}
