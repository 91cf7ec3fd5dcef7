// Package enumdef tracks which variables are known to hold a defined member
// of an enum type, and which boolean variables are equivalent to such
// facts.
package enumdef

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/cs-au-dk/absnum/analysis/expr"
	L "github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils"
)

// Pair states that Var holds a defined value of the enum type Type.
type Pair[T, V comparable] struct {
	Type T
	Var  V
}

func (p Pair[T, V]) String() string {
	return fmt.Sprintf("%v(%v)", L.Colorize.Const(fmt.Sprint(p.Type)), L.Colorize.Key(fmt.Sprint(p.Var)))
}

type pairs[T, V comparable] = *immutable.Map[Pair[T, V], struct{}]

type state uint8

const (
	normal state = iota
	bottom
)

// EnumDefined is a value of the enum-definedness domain.
//
// The defined set is ordered by reverse inclusion: more pairs is more
// precise, so join intersects and meet unions. Conditions map a boolean
// variable c to the pairs that hold whenever c is true, ordered pointwise
// the same way. A value without any pairs is ⊤.
type EnumDefined[T, V comparable, E any] struct {
	dec        expr.Decoder[V, E]
	state      state
	conditions *immutable.Map[V, pairs[T, V]]
	defined    pairs[T, V]
}

var _ L.Environment[string, *expr.Expr[string], *EnumDefined[string, string, *expr.Expr[string]]] = (*EnumDefined[string, string, *expr.Expr[string]])(nil)

// New creates the ⊤ value. Panics without a decoder.
func New[T, V comparable, E any](dec expr.Decoder[V, E]) *EnumDefined[T, V, E] {
	if dec == nil {
		panic("enumdef: missing expression decoder")
	}
	return &EnumDefined[T, V, E]{
		dec:        dec,
		conditions: utils.NewImmMap[V, pairs[T, V]](),
		defined:    utils.NewImmMap[Pair[T, V], struct{}](),
	}
}

func (d *EnumDefined[T, V, E]) with(conditions *immutable.Map[V, pairs[T, V]], defined pairs[T, V]) *EnumDefined[T, V, E] {
	return &EnumDefined[T, V, E]{dec: d.dec, conditions: conditions, defined: defined}
}

func emptyPairs[T, V comparable]() pairs[T, V] {
	return utils.NewImmMap[Pair[T, V], struct{}]()
}

func union[T, V comparable](a, b pairs[T, V]) pairs[T, V] {
	itr := b.Iterator()
	for !itr.Done() {
		p, _, _ := itr.Next()
		a = a.Set(p, struct{}{})
	}
	return a
}

func intersection[T, V comparable](a, b pairs[T, V]) pairs[T, V] {
	res := emptyPairs[T, V]()
	itr := a.Iterator()
	for !itr.Done() {
		if p, _, _ := itr.Next(); contains(b, p) {
			res = res.Set(p, struct{}{})
		}
	}
	return res
}

func contains[T, V comparable](s pairs[T, V], p Pair[T, V]) bool {
	_, ok := s.Get(p)
	return ok
}

// superset checks that a holds every pair of b.
func superset[T, V comparable](a, b pairs[T, V]) bool {
	itr := b.Iterator()
	for !itr.Done() {
		if p, _, _ := itr.Next(); !contains(a, p) {
			return false
		}
	}
	return true
}

func sorted[T, V comparable](s pairs[T, V]) []Pair[T, V] {
	res := make([]Pair[T, V], 0, s.Len())
	itr := s.Iterator()
	for !itr.Done() {
		p, _, _ := itr.Next()
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}

func (d *EnumDefined[T, V, E]) IsBottom() bool { return d.state == bottom }

func (d *EnumDefined[T, V, E]) IsTop() bool {
	return d.state == normal && d.conditions.Len() == 0 && d.defined.Len() == 0
}

func (d *EnumDefined[T, V, E]) Bottom() *EnumDefined[T, V, E] {
	res := New[T, V, E](d.dec)
	res.state = bottom
	return res
}

func (d *EnumDefined[T, V, E]) Top() *EnumDefined[T, V, E] {
	return New[T, V, E](d.dec)
}

// AssumeTypeIff records that condition is true iff variable holds a defined
// value of typ.
func (d *EnumDefined[T, V, E]) AssumeTypeIff(condition V, typ T, variable V) *EnumDefined[T, V, E] {
	if d.IsBottom() {
		return d
	}
	ps, ok := d.conditions.Get(condition)
	if !ok {
		ps = emptyPairs[T, V]()
	}
	ps = ps.Set(Pair[T, V]{typ, variable}, struct{}{})
	return d.with(d.conditions.Set(condition, ps), d.defined)
}

// AssumeCondition assumes that condition holds, making the pairs it is
// equivalent to defined.
func (d *EnumDefined[T, V, E]) AssumeCondition(condition V) *EnumDefined[T, V, E] {
	ps, ok := d.conditions.Get(condition)
	if !ok || d.IsBottom() {
		return d
	}
	return d.with(d.conditions, union(d.defined, ps))
}

// AssumeDefined records that variable holds a defined value of typ.
func (d *EnumDefined[T, V, E]) AssumeDefined(typ T, variable V) *EnumDefined[T, V, E] {
	if d.IsBottom() {
		return d
	}
	return d.with(d.conditions, d.defined.Set(Pair[T, V]{typ, variable}, struct{}{}))
}

// Rename maps every variable to its new names. Conditions and pairs over
// variables without new names are dropped.
func (d *EnumDefined[T, V, E]) Rename(renaming map[V][]V) *EnumDefined[T, V, E] {
	if d.IsBottom() || d.IsTop() {
		return d
	}

	rename := func(s pairs[T, V]) pairs[T, V] {
		res := emptyPairs[T, V]()
		itr := s.Iterator()
		for !itr.Done() {
			p, _, _ := itr.Next()
			for _, y := range renaming[p.Var] {
				res = res.Set(Pair[T, V]{p.Type, y}, struct{}{})
			}
		}
		return res
	}

	conditions := utils.NewImmMap[V, pairs[T, V]]()
	itr := d.conditions.Iterator()
	for !itr.Done() {
		c, ps, _ := itr.Next()
		names, ok := renaming[c]
		if !ok {
			continue
		}
		renamed := rename(ps)
		if renamed.Len() == 0 {
			continue
		}
		for _, name := range names {
			conditions = conditions.Set(name, renamed)
		}
	}

	return d.with(conditions, rename(d.defined))
}

// CheckIfVariableIsDefined is True when the pair is known to hold, and ⊤
// otherwise.
func (d *EnumDefined[T, V, E]) CheckIfVariableIsDefined(variable V, typ T) L.Outcome {
	switch {
	case d.IsBottom():
		return L.OutcomeBottom
	case contains(d.defined, Pair[T, V]{typ, variable}):
		return L.OutcomeTrue
	}
	return L.OutcomeTop
}

// DefinedVariables lists the pairs known to hold.
func (d *EnumDefined[T, V, E]) DefinedVariables() []Pair[T, V] {
	return sorted(d.defined)
}

func (d *EnumDefined[T, V, E]) LessEqual(o *EnumDefined[T, V, E]) bool {
	if leq, ok := L.TrivialLessEqual(d, o); ok {
		return leq
	}
	if !superset(d.defined, o.defined) {
		return false
	}
	itr := o.conditions.Iterator()
	for !itr.Done() {
		c, ops, _ := itr.Next()
		dps, ok := d.conditions.Get(c)
		if !ok || !superset(dps, ops) {
			return false
		}
	}
	return true
}

func (d *EnumDefined[T, V, E]) Join(o *EnumDefined[T, V, E]) *EnumDefined[T, V, E] {
	if j, ok := L.TrivialJoin(d, o); ok {
		return j
	}
	conditions := utils.NewImmMap[V, pairs[T, V]]()
	itr := d.conditions.Iterator()
	for !itr.Done() {
		c, dps, _ := itr.Next()
		if ops, ok := o.conditions.Get(c); ok {
			if ps := intersection(dps, ops); ps.Len() > 0 {
				conditions = conditions.Set(c, ps)
			}
		}
	}
	return d.with(conditions, intersection(d.defined, o.defined))
}

func (d *EnumDefined[T, V, E]) Meet(o *EnumDefined[T, V, E]) *EnumDefined[T, V, E] {
	if m, ok := L.TrivialMeet(d, o); ok {
		return m
	}
	conditions := d.conditions
	itr := o.conditions.Iterator()
	for !itr.Done() {
		c, ops, _ := itr.Next()
		if dps, ok := conditions.Get(c); ok {
			ops = union(dps, ops)
		}
		conditions = conditions.Set(c, ops)
	}
	return d.with(conditions, union(d.defined, o.defined))
}

// Widening is the join. Chains are finite as long as the program mentions
// finitely many pairs.
func (d *EnumDefined[T, V, E]) Widening(prev *EnumDefined[T, V, E]) *EnumDefined[T, V, E] {
	return d.Join(prev)
}

func (d *EnumDefined[T, V, E]) Narrowing(prev *EnumDefined[T, V, E]) *EnumDefined[T, V, E] {
	return d.Meet(prev)
}

// Variables lists the variables mentioned by a condition or a pair.
func (d *EnumDefined[T, V, E]) Variables() []V {
	seen := map[V]bool{}
	var res []V
	add := func(x V) {
		if !seen[x] {
			seen[x] = true
			res = append(res, x)
		}
	}
	itr := d.conditions.Iterator()
	for !itr.Done() {
		c, ps, _ := itr.Next()
		add(c)
		for _, p := range sorted(ps) {
			add(p.Var)
		}
	}
	for _, p := range sorted(d.defined) {
		add(p.Var)
	}
	sort.Slice(res, func(i, j int) bool {
		return fmt.Sprint(res[i]) < fmt.Sprint(res[j])
	})
	return res
}

func (d *EnumDefined[T, V, E]) AddVariable(V) *EnumDefined[T, V, E] { return d }

// keepAllBut renames every variable to itself, except the given ones which
// get no name.
func (d *EnumDefined[T, V, E]) keepAllBut(xs ...V) map[V][]V {
	renaming := map[V][]V{}
	for _, x := range d.Variables() {
		renaming[x] = []V{x}
	}
	for _, x := range xs {
		delete(renaming, x)
	}
	return renaming
}

func (d *EnumDefined[T, V, E]) RemoveVariable(x V) *EnumDefined[T, V, E] {
	return d.Rename(d.keepAllBut(x))
}

func (d *EnumDefined[T, V, E]) ProjectVariable(x V) *EnumDefined[T, V, E] {
	return d.RemoveVariable(x)
}

func (d *EnumDefined[T, V, E]) RenameVariable(from, to V) *EnumDefined[T, V, E] {
	if from == to {
		return d
	}
	renaming := d.keepAllBut(from, to)
	renaming[from] = []V{to}
	return d.Rename(renaming)
}

func (d *EnumDefined[T, V, E]) Assign(x V, e E) *EnumDefined[T, V, E] {
	return d.AssignInParallel(map[V]E{x: e})
}

// AssignInParallel moves the facts of variables copied into the targets.
// Facts about targets assigned anything else are forgotten.
func (d *EnumDefined[T, V, E]) AssignInParallel(assignments map[V]E) *EnumDefined[T, V, E] {
	targets := make([]V, 0, len(assignments))
	for x := range assignments {
		targets = append(targets, x)
	}
	renaming := d.keepAllBut(targets...)
	for x, e := range assignments {
		if y, ok := d.dec.IsVariable(e); ok {
			renaming[y] = append(renaming[y], x)
		}
	}
	return d.Rename(renaming)
}

// TestTrue assumes a condition variable. Other guards carry no information
// on definedness.
func (d *EnumDefined[T, V, E]) TestTrue(g E) *EnumDefined[T, V, E] {
	if c, ok := d.dec.IsVariable(g); ok {
		return d.AssumeCondition(c)
	}
	return d
}

func (d *EnumDefined[T, V, E]) TestFalse(E) *EnumDefined[T, V, E] { return d }

func (d *EnumDefined[T, V, E]) CheckIfHolds(E) L.Outcome {
	if d.IsBottom() {
		return L.OutcomeBottom
	}
	return L.OutcomeTop
}

// EnumFact states that Var holds a defined value of Type.
type EnumFact[T, V comparable] Pair[T, V]

func (f EnumFact[T, V]) String() string { return Pair[T, V](f).String() }

// EnumIffFact states that Cond is true iff Var holds a defined value of
// Type.
type EnumIffFact[T, V comparable] struct {
	Cond V
	Pair[T, V]
}

func (f EnumIffFact[T, V]) String() string {
	return fmt.Sprintf("%v ⇔ %s", L.Colorize.Key(fmt.Sprint(f.Cond)), f.Pair)
}

func (d *EnumDefined[T, V, E]) AssumeFact(f L.Fact) *EnumDefined[T, V, E] {
	switch f := f.(type) {
	case EnumFact[T, V]:
		return d.AssumeDefined(f.Type, f.Var)
	case EnumIffFact[T, V]:
		return d.AssumeTypeIff(f.Cond, f.Type, f.Var)
	}
	return d
}

func (d *EnumDefined[T, V, E]) String() string {
	switch {
	case d.IsBottom():
		return L.Colorize.Element("⊥")
	case d.IsTop():
		return L.Colorize.Element("⊤")
	}

	show := func(s pairs[T, V]) string {
		var strs []string
		for _, p := range sorted(s) {
			strs = append(strs, p.String())
		}
		return "{" + strings.Join(strs, ", ") + "}"
	}

	var parts []string
	for _, c := range sortedConditions(d.conditions) {
		ps, _ := d.conditions.Get(c)
		parts = append(parts, L.Colorize.Key(fmt.Sprint(c))+" ⇔ "+show(ps))
	}
	parts = append(parts, "defined "+show(d.defined))
	return "(" + strings.Join(parts, "; ") + ")"
}

func sortedConditions[T, V comparable](m *immutable.Map[V, pairs[T, V]]) []V {
	res := make([]V, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		c, _, _ := itr.Next()
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool {
		return fmt.Sprint(res[i]) < fmt.Sprint(res[j])
	})
	return res
}
