package fixpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/utils/graph"
	"github.com/cs-au-dk/absnum/utils/hmap"
)

// ErrPanic wraps a panic raised while analyzing a task.
var ErrPanic = errors.New("analysis panicked")

// Task is an independent analysis job.
type Task[L comparable, V comparable, E any, D lattice.Environment[V, E, D]] struct {
	Name    string
	Program Program[L, V, E]
	Init    D
	Options Options[E]
}

// AnalyzeAll runs every task on a pool of workers and returns the results
// in task order. Each task gets its own deadline when timeout is positive.
// Tasks share no state, and a task that panics produces an incomplete
// result wrapping ErrPanic, reporting every assertion it can still decode
// as ⊤.
func AnalyzeAll[L comparable, V comparable, E any, D lattice.Environment[V, E, D]](
	ctx context.Context,
	tasks []Task[L, V, E, D],
	workers int,
	timeout time.Duration,
) []*Result[L, V, E, D] {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result[L, V, E, D], len(tasks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runTask(ctx, tasks[i], timeout)
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func runTask[L comparable, V comparable, E any, D lattice.Environment[V, E, D]](
	ctx context.Context,
	task Task[L, V, E, D],
	timeout time.Duration,
) (res *Result[L, V, E, D]) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if err := recover(); err != nil {
			log.Errorf("task %s: %v", task.Name, err)
			res = &Result[L, V, E, D]{
				Err:    fmt.Errorf("%s: %w: %v", task.Name, ErrPanic, err),
				bottom: task.Init.Bottom(),
				states: map[L]D{},
				edges:  hmap.NewMultiKey[L, L, D](),

				obligations: pending(task.Program, task.Init),
			}
		}
	}()

	start := time.Now()
	res = Analyze(ctx, task.Program, task.Init, task.Options)
	log.Infof("task %s: %d iterations in %s", task.Name, res.Iterations, time.Since(start))
	return res
}

// pending lists the assertions of prog with a ⊤ verdict. Labels that fail
// to decode are skipped.
func pending[L comparable, V comparable, E any, D lattice.Environment[V, E, D]](
	prog Program[L, V, E],
	init D,
) (obligations []Obligation[L, E]) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("listing assertions: %v", err)
		}
	}()

	for _, l := range graph.Of(prog.Successors).WTO(prog.Entry()).Order {
		func() {
			defer func() {
				if err := recover(); err != nil {
					log.Debugf("%v: %v", l, err)
				}
			}()
			prog.Decode(l, &transfer[L, V, E, D]{
				label: l,
				state: init,
				onAssert: func(o Obligation[L, E], _ D) {
					o.Outcome = lattice.OutcomeTop
					obligations = append(obligations, o)
				},
			})
		}()
	}
	return
}
