package fixpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils/graph"
	"github.com/cs-au-dk/absnum/utils/hmap"
	"github.com/cs-au-dk/absnum/utils/pq"
)

var log = commonlog.GetLogger("absnum.fixpoint")

// ErrIterationLimit is reported when the ascending phase exceeds the
// configured number of work-list pops.
var ErrIterationLimit = errors.New("iteration limit reached")

const (
	DefaultMaxIterations   = 100000
	DefaultNarrowingPasses = 2
)

// Options configures a single analysis. The zero value uses the defaults.
type Options[E any] struct {
	// MaxIterations caps the number of work-list pops.
	MaxIterations int
	// NarrowingPasses bounds the descending phase. Negative values disable
	// narrowing.
	NarrowingPasses int
	// Preconditions are assumed at the entry.
	Preconditions []E
}

func (o Options[E]) withDefaults() Options[E] {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	switch {
	case o.NarrowingPasses == 0:
		o.NarrowingPasses = DefaultNarrowingPasses
	case o.NarrowingPasses < 0:
		o.NarrowingPasses = 0
	}
	return o
}

type analysis[L comparable, V comparable, E any, D lattice.Environment[V, E, D]] struct {
	ctx  context.Context
	prog Program[L, V, E]
	G    graph.Graph[L]
	wto  graph.WTO[L]
	opts Options[E]

	init   D
	bottom D
	states map[L]D
	// Abstract state flowing along every control-flow edge.
	edges *hmap.MultiKey[L, L, D]

	iterations int
}

// Analyze computes the abstract states of prog, starting from init at the
// entry. Labels are visited in weak topological order. States at component
// heads are widened until stable, after which up to
// Options.NarrowingPasses descending passes recover precision.
//
// When the analysis is cancelled or exceeds the iteration cap, the result
// is marked incomplete and every obligation reports ⊤.
func Analyze[L comparable, V comparable, E any, D lattice.Environment[V, E, D]](
	ctx context.Context,
	prog Program[L, V, E],
	init D,
	opts Options[E],
) *Result[L, V, E, D] {
	opts = opts.withDefaults()
	for _, pre := range opts.Preconditions {
		init = init.TestTrue(pre)
	}

	G := graph.Of(prog.Successors)
	entry := prog.Entry()
	a := &analysis[L, V, E, D]{
		ctx:    ctx,
		prog:   prog,
		G:      G,
		wto:    G.WTO(entry),
		opts:   opts,
		init:   init,
		bottom: init.Bottom(),
		states: map[L]D{entry: init},
		edges:  hmap.NewMultiKey[L, L, D](),
	}

	log.Debugf("analyzing %d labels, %d widening points", len(a.wto.Order), len(a.wto.Heads()))

	err := a.ascend()
	if err == nil {
		err = a.descend()
	}
	if err != nil {
		log.Infof("analysis incomplete after %d iterations: %s", a.iterations, err)
	}

	return a.result(err)
}

func (a *analysis[L, V, E, D]) stateAt(l L) D {
	if s, found := a.states[l]; found {
		return s
	}
	return a.bottom
}

// step runs the statements at l over its current state, and records the
// outgoing state of every successor edge.
func (a *analysis[L, V, E, D]) step(l L) []L {
	t := &transfer[L, V, E, D]{label: l, state: a.stateAt(l)}
	if !t.state.IsBottom() {
		a.prog.Decode(l, t)
	}

	succs := a.G.Edges(l)
	for _, succ := range succs {
		a.edges.Set(l, succ, t.out(succ))
	}
	return succs
}

// ascend runs the chaotic iteration with widening until the work-list is
// exhausted.
func (a *analysis[L, V, E, D]) ascend() error {
	worklist := pq.Empty(a.wto.Less)
	worklist.Add(a.prog.Entry())

	for !worklist.IsEmpty() {
		if err := a.ctx.Err(); err != nil {
			return err
		}
		if a.iterations >= a.opts.MaxIterations {
			return fmt.Errorf("%w: %d pops", ErrIterationLimit, a.iterations)
		}
		a.iterations++

		l := worklist.GetNext()
		for _, succ := range a.step(l) {
			out, _ := a.edges.GetOk(l, succ)
			old, found := a.states[succ]
			if !found {
				old = a.bottom
			}

			next := old.Join(out)
			if a.wto.IsHead(succ) {
				next = next.Widening(old)
			}

			if !next.LessEqual(old) {
				a.states[succ] = next
				worklist.Add(succ)
				log.Debugf("%v: %s (%d queued)", succ, next, worklist.Len())
			}
		}
	}

	return nil
}

// descend recomputes every label from its incoming edges in WTO order.
// Heads narrow their previous state, other labels meet with it.
func (a *analysis[L, V, E, D]) descend() error {
	entry := a.prog.Entry()

	for pass := 0; pass < a.opts.NarrowingPasses; pass++ {
		changed := false

		for _, l := range a.wto.Order {
			if err := a.ctx.Err(); err != nil {
				return err
			}

			in := a.bottom
			if l == entry {
				in = a.init
			}
			for _, e := range a.edges.LookupSecond(l) {
				in = in.Join(e.Value)
			}

			old := a.stateAt(l)
			var next D
			if a.wto.IsHead(l) {
				next = in.Narrowing(old)
			} else {
				next = in.Meet(old)
			}

			if next.LessEqual(old) && old.LessEqual(next) {
				continue
			}

			changed = true
			a.states[l] = next
			a.step(l)
		}

		log.Debugf("narrowing pass %d changed: %v", pass, changed)
		if !changed {
			break
		}
	}

	return nil
}
