package numeric

import (
	"fmt"
	"slices"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/guard"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/analysis/normal"
	"github.com/cs-au-dk/absnum/utils"
)

// Zones is the relational environment of difference constraints x - y ≤ c,
// reduced with an interval environment. After every guard and assignment
// the matrix is closed, the intervals are pushed into the matrix and the
// matrix bounds are read back into the intervals.
type Zones[V comparable, E any] struct {
	ctx *Context[V, E]
	bot bool
	// Dimension i of the matrix holds vars[i-1].
	vars  []V
	index *immutable.Map[V, int]
	m     dbm
	// Only the result of a widening is left unclosed.
	closed bool
	itv    *Intervals[V, E]
}

var _ L.Environment[string, *expr.Expr[string], *Zones[string, *expr.Expr[string]]] = (*Zones[string, *expr.Expr[string]])(nil)

// NewZones creates the ⊤ environment of a session.
func NewZones[V comparable, E any](ctx *Context[V, E]) *Zones[V, E] {
	return &Zones[V, E]{
		ctx:    ctx,
		index:  utils.NewImmMap[V, int](),
		m:      newDBM(1),
		closed: true,
		itv:    NewIntervals(ctx),
	}
}

func indexOf[V comparable](vars []V) *immutable.Map[V, int] {
	index := utils.NewImmMap[V, int]()
	for i, x := range vars {
		index = index.Set(x, i+1)
	}
	return index
}

// build reduces a matrix over vars with an interval environment into a
// closed Zones value.
func (z *Zones[V, E]) build(vars []V, m dbm, itv *Intervals[V, E]) *Zones[V, E] {
	if itv.IsBottom() {
		return z.Bottom()
	}

	vars = slices.Clone(vars)
	for _, x := range itv.Variables() {
		if !slices.Contains(vars, x) {
			vars = append(vars, x)
		}
	}
	m = m.extend(len(vars) + 1 - m.n)

	for i, x := range vars {
		m.constrain(i+1, itv.BoundsOf(x))
	}
	m, ok := m.close()
	if !ok {
		return z.Bottom()
	}
	for i, x := range vars {
		if itv = itv.AssignInterval(x, m.interval(i+1)); itv.IsBottom() {
			return z.Bottom()
		}
	}

	return &Zones[V, E]{
		ctx:    z.ctx,
		vars:   vars,
		index:  indexOf(vars),
		m:      m,
		closed: true,
		itv:    itv,
	}
}

func (z *Zones[V, E]) closedMatrix() (dbm, bool) {
	if z.closed {
		return z.m, true
	}
	return z.m.close()
}

func (z *Zones[V, E]) dim(x V) (int, bool) {
	return z.index.Get(x)
}

// aligned renumbers the matrix to the given variable order. Variables z
// does not track are unconstrained.
func (z *Zones[V, E]) aligned(vars []V, m dbm) dbm {
	return m.permute(len(vars)+1, func(k int) int {
		if k == 0 {
			return 0
		}
		if i, ok := z.dim(vars[k-1]); ok {
			return i
		}
		return -1
	})
}

func unionVars[V comparable](a, b []V) []V {
	res := slices.Clone(a)
	for _, x := range b {
		if !slices.Contains(res, x) {
			res = append(res, x)
		}
	}
	return res
}

func (z *Zones[V, E]) IsBottom() bool { return z.bot }

func (z *Zones[V, E]) IsTop() bool {
	return !z.bot && z.m.isTop() && z.itv.IsTop()
}

func (z *Zones[V, E]) Bottom() *Zones[V, E] {
	return &Zones[V, E]{
		ctx:    z.ctx,
		bot:    true,
		index:  utils.NewImmMap[V, int](),
		m:      newDBM(1),
		closed: true,
		itv:    z.itv.Bottom(),
	}
}

func (z *Zones[V, E]) Top() *Zones[V, E] {
	return NewZones(z.ctx)
}

// Intervals returns the interval component.
func (z *Zones[V, E]) Intervals() *Intervals[V, E] { return z.itv }

// BoundsOf returns the interval of x.
func (z *Zones[V, E]) BoundsOf(x V) L.Interval { return z.itv.BoundsOf(x) }

// BoundsFor evaluates e over the interval component.
func (z *Zones[V, E]) BoundsFor(e E) L.Interval { return z.itv.BoundsFor(e) }

func (z *Zones[V, E]) Variables() []V { return slices.Clone(z.vars) }

func (z *Zones[V, E]) AddVariable(x V) *Zones[V, E] {
	if _, ok := z.dim(x); ok || z.bot {
		return z
	}
	vars := append(slices.Clone(z.vars), x)
	return &Zones[V, E]{
		ctx:    z.ctx,
		vars:   vars,
		index:  z.index.Set(x, len(vars)),
		m:      z.m.extend(1),
		closed: z.closed,
		itv:    z.itv.AddVariable(x),
	}
}

func (z *Zones[V, E]) without(i int, m dbm) *Zones[V, E] {
	x := z.vars[i-1]
	vars := slices.Delete(slices.Clone(z.vars), i-1, i)
	return &Zones[V, E]{
		ctx:    z.ctx,
		vars:   vars,
		index:  indexOf(vars),
		m:      m.drop(i),
		closed: z.closed,
		itv:    z.itv.RemoveVariable(x),
	}
}

// RemoveVariable drops x without deriving the constraints it induces.
func (z *Zones[V, E]) RemoveVariable(x V) *Zones[V, E] {
	i, ok := z.dim(x)
	if !ok || z.bot {
		return z
	}
	return z.without(i, z.m)
}

// ProjectVariable closes the matrix before dropping x, so constraints
// through x are kept.
func (z *Zones[V, E]) ProjectVariable(x V) *Zones[V, E] {
	i, ok := z.dim(x)
	if !ok || z.bot {
		return z
	}
	m, ok := z.closedMatrix()
	if !ok {
		return z.Bottom()
	}
	res := z.without(i, m)
	res.closed = true
	return res
}

func (z *Zones[V, E]) RenameVariable(from, to V) *Zones[V, E] {
	if from == to || z.bot {
		return z
	}
	res := z.ProjectVariable(to)
	i, ok := res.dim(from)
	if !ok {
		return res
	}
	vars := slices.Clone(res.vars)
	vars[i-1] = to
	return &Zones[V, E]{
		ctx:    z.ctx,
		bot:    res.bot,
		vars:   vars,
		index:  indexOf(vars),
		m:      res.m,
		closed: res.closed,
		itv:    res.itv.RenameVariable(from, to),
	}
}

// linear decomposes e into the dimension of a tracked variable plus an
// offset. Constants use dimension 0.
func (z *Zones[V, E]) linear(e E) (int, int64, bool) {
	n, ok := z.ctx.normalize(e, z.itv.BoundsFor)
	if !ok {
		return 0, 0, false
	}
	if k, ok := n.IsConstant(); ok {
		return 0, int64(k), true
	}
	x, k, _ := n.Base()
	i, ok := z.dim(x)
	if !ok || !z.ctx.safeOffset(z.itv.BoundsOf(x), int64(k)) {
		return 0, 0, false
	}
	return i, int64(k), true
}

// track adds the variables underlying the linear expressions among es.
func (z *Zones[V, E]) track(es ...E) *Zones[V, E] {
	for _, e := range es {
		if n, ok := normal.TryConvertFromLinear(e, z.ctx.Decoder, z.ctx.Encoder); ok {
			if x, _, ok := n.Base(); ok {
				z = z.AddVariable(x)
			}
		}
	}
	return z
}

func (z *Zones[V, E]) Assign(x V, e E) *Zones[V, E] {
	return z.AssignInParallel(map[V]E{x: e})
}

// AssignInParallel adds a fresh dimension per target, constrains it from
// the pre-state, projects the old targets out and moves the fresh
// dimensions in their place.
func (z *Zones[V, E]) AssignInParallel(assignments map[V]E) *Zones[V, E] {
	if z.bot {
		return z
	}

	pre := z
	targets := make([]V, 0, len(assignments))
	for x, e := range assignments {
		targets = append(targets, x)
		pre = pre.AddVariable(x).track(e)
	}

	m, ok := pre.closedMatrix()
	if !ok {
		return z.Bottom()
	}
	n := m.n
	w := m.extend(len(targets))
	temp := make(map[int]int, len(targets))
	for k, x := range targets {
		t := n + k
		e := assignments[x]
		if i, off, ok := pre.linear(e); ok {
			w.tighten(t, i, L.FiniteBound(off))
			w.tighten(i, t, L.FiniteBound(-off))
		}
		w.constrain(t, pre.itv.BoundsFor(e))

		i, _ := pre.dim(x)
		temp[i] = t
	}

	w, ok = w.close()
	if !ok {
		return z.Bottom()
	}
	w = w.permute(n, func(k int) int {
		if t, ok := temp[k]; ok {
			return t
		}
		return k
	})

	return z.build(pre.vars, w, pre.itv.AssignInParallel(assignments))
}

func (z *Zones[V, E]) TestTrue(g E) *Zones[V, E] {
	return guard.Test(z.ctx.Decoder, z, g, true)
}

func (z *Zones[V, E]) TestFalse(g E) *Zones[V, E] {
	return guard.Test(z.ctx.Decoder, z, g, false)
}

// assumeDiff adds l - r ≤ c to the matrix when both sides are linear.
func (z *Zones[V, E]) assumeDiff(m dbm, l, r E, c int64) {
	li, lk, lok := z.linear(l)
	ri, rk, rok := z.linear(r)
	if lok && rok {
		m.tighten(li, ri, L.FiniteBound(c-lk+rk))
	}
}

func (z *Zones[V, E]) refined(itv *Intervals[V, E], diffs ...func(dbm)) *Zones[V, E] {
	if z.bot {
		return z
	}
	m, ok := z.closedMatrix()
	if !ok {
		return z.Bottom()
	}
	m = m.clone()
	for _, diff := range diffs {
		diff(m)
	}
	return z.build(z.vars, m, itv)
}

func (z *Zones[V, E]) AssumeLessThan(l, r E) *Zones[V, E] {
	z = z.track(l, r)
	return z.refined(z.itv.AssumeLessThan(l, r), func(m dbm) { z.assumeDiff(m, l, r, -1) })
}

func (z *Zones[V, E]) AssumeLessEqual(l, r E) *Zones[V, E] {
	z = z.track(l, r)
	return z.refined(z.itv.AssumeLessEqual(l, r), func(m dbm) { z.assumeDiff(m, l, r, 0) })
}

func (z *Zones[V, E]) AssumeEqual(l, r E) *Zones[V, E] {
	z = z.track(l, r)
	return z.refined(z.itv.AssumeEqual(l, r),
		func(m dbm) { z.assumeDiff(m, l, r, 0) },
		func(m dbm) { z.assumeDiff(m, r, l, 0) })
}

func (z *Zones[V, E]) AssumeNotEqual(l, r E) *Zones[V, E] {
	if z.CheckIfEqual(l, r) == L.OutcomeTrue {
		return z.Bottom()
	}
	return z.refined(z.itv.AssumeNotEqual(l, r))
}

func (z *Zones[V, E]) AssumeVariable(x V, truth bool) *Zones[V, E] {
	return z.refined(z.itv.AssumeVariable(x, truth))
}

func (z *Zones[V, E]) AssumeFact(f L.Fact) *Zones[V, E] {
	if _, ok := f.(L.BoundFact[V]); !ok {
		return z
	}
	return z.refined(z.itv.AssumeFact(f))
}

// checkDiff decides l - r ≤ c on the matrix.
func (z *Zones[V, E]) checkDiff(l, r E, c int64) L.Outcome {
	li, lk, lok := z.linear(l)
	ri, rk, rok := z.linear(r)
	if !(lok && rok) {
		return L.OutcomeTop
	}
	m, ok := z.closedMatrix()
	if !ok {
		return L.OutcomeBottom
	}

	// (x_li + lk) - (x_ri + rk) ≤ c  iff  x_li - x_ri ≤ c - lk + rk
	bound := L.FiniteBound(c - lk + rk)
	switch {
	case m.at(li, ri).Leq(bound):
		return L.OutcomeTrue
	// x_ri - x_li ≤ -(bound + 1) means x_li - x_ri > bound
	case m.at(ri, li).Leq(bound.Plus(L.FiniteBound(1)).Neg()):
		return L.OutcomeFalse
	}
	return L.OutcomeTop
}

func (z *Zones[V, E]) CheckIfHolds(e E) L.Outcome {
	if z.bot {
		return L.OutcomeBottom
	}
	return checkIfHolds(z.ctx.Decoder, comparer[E](z), e)
}

func (z *Zones[V, E]) CheckIfLessThan(l, r E) L.Outcome {
	return z.checkDiff(l, r, -1).Meet(z.itv.CheckIfLessThan(l, r))
}

func (z *Zones[V, E]) CheckIfLessEqualThan(l, r E) L.Outcome {
	return z.checkDiff(l, r, 0).Meet(z.itv.CheckIfLessEqualThan(l, r))
}

func (z *Zones[V, E]) CheckIfEqual(l, r E) L.Outcome {
	rel := z.checkDiff(l, r, 0).And(z.checkDiff(r, l, 0))
	return rel.Meet(z.itv.CheckIfEqual(l, r))
}

func (z *Zones[V, E]) CheckIfNonZero(e E) L.Outcome {
	return z.itv.CheckIfNonZero(e)
}

func (z *Zones[V, E]) CheckIfGreaterEqualThanZero(e E) L.Outcome {
	return z.itv.CheckIfGreaterEqualThanZero(e)
}

// boundedBy lists the variables y with m(i, y) ≤ 0 when from is true, and
// m(y, i) ≤ 0 otherwise.
func (z *Zones[V, E]) boundedBy(x V, from bool) []V {
	i, ok := z.dim(x)
	if !ok || z.bot {
		return nil
	}
	m, ok := z.closedMatrix()
	if !ok {
		return nil
	}

	var res []V
	for j, y := range z.vars {
		b := m.at(j+1, i)
		if from {
			b = m.at(i, j+1)
		}
		if j+1 != i && b.Leq(L.FiniteBound(0)) {
			res = append(res, y)
		}
	}
	return res
}

// LowerBoundsFor lists the variables y known to satisfy y ≤ x.
func (z *Zones[V, E]) LowerBoundsFor(x V) []V {
	return z.boundedBy(x, false)
}

// UpperBoundsFor lists the variables y known to satisfy x ≤ y.
func (z *Zones[V, E]) UpperBoundsFor(x V) []V {
	return z.boundedBy(x, true)
}

func (z *Zones[V, E]) LessEqual(o *Zones[V, E]) bool {
	if leq, ok := L.TrivialLessEqual(z, o); ok {
		return leq
	}
	zm, zok := z.closedMatrix()
	om, ook := o.closedMatrix()
	switch {
	case !zok:
		return true
	case !ook:
		return false
	}
	vars := unionVars(z.vars, o.vars)
	return z.aligned(vars, zm).leq(o.aligned(vars, om)) && z.itv.LessEqual(o.itv)
}

func (z *Zones[V, E]) Join(o *Zones[V, E]) *Zones[V, E] {
	if j, ok := L.TrivialJoin(z, o); ok {
		return j
	}
	zm, zok := z.closedMatrix()
	om, ook := o.closedMatrix()
	switch {
	case !zok:
		return o
	case !ook:
		return z
	}
	vars := unionVars(z.vars, o.vars)
	return &Zones[V, E]{
		ctx:    z.ctx,
		vars:   vars,
		index:  indexOf(vars),
		m:      z.aligned(vars, zm).join(o.aligned(vars, om)),
		closed: true,
		itv:    z.itv.Join(o.itv),
	}
}

func (z *Zones[V, E]) Meet(o *Zones[V, E]) *Zones[V, E] {
	if m, ok := L.TrivialMeet(z, o); ok {
		return m
	}
	vars := unionVars(z.vars, o.vars)
	m := z.aligned(vars, z.m).meet(o.aligned(vars, o.m))
	return z.build(vars, m, z.itv.Meet(o.itv))
}

// Widening is the standard widening on the unclosed matrix of prev. The
// result is left unclosed and unreduced.
func (z *Zones[V, E]) Widening(prev *Zones[V, E]) *Zones[V, E] {
	switch {
	case prev.bot:
		return z
	case z.bot:
		return prev
	}
	zm, ok := z.closedMatrix()
	if !ok {
		return prev
	}
	vars := unionVars(prev.vars, z.vars)
	return &Zones[V, E]{
		ctx:   z.ctx,
		vars:  vars,
		index: indexOf(vars),
		m:     z.aligned(vars, zm).widen(prev.aligned(vars, prev.m), z.ctx.Thresholds),
		itv:   z.itv.Widening(prev.itv),
	}
}

func (z *Zones[V, E]) Narrowing(prev *Zones[V, E]) *Zones[V, E] {
	if prev.bot || z.bot {
		return z.Bottom()
	}
	vars := unionVars(prev.vars, z.vars)
	m := z.aligned(vars, z.m).narrow(prev.aligned(vars, prev.m), z.ctx.open)
	return z.build(vars, m, z.itv.Narrowing(prev.itv))
}

func (z *Zones[V, E]) String() string {
	switch {
	case z.bot:
		return L.Colorize.Element("⊥")
	case z.IsTop():
		return L.Colorize.Element("⊤")
	}

	parts := []string{strings.Trim(z.itv.String(), "{ }")}
	if parts[0] == L.Colorize.Element("⊤") {
		parts = nil
	}
	if m, ok := z.closedMatrix(); ok {
		for i, x := range z.vars {
			for j, y := range z.vars {
				if b := m.at(i+1, j+1); i != j && !b.IsInfinite() {
					parts = append(parts, fmt.Sprintf("%s - %s ≤ %s",
						L.Colorize.Key(fmt.Sprint(x)), L.Colorize.Key(fmt.Sprint(y)), b))
				}
			}
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
