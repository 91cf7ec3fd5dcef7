package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/cs-au-dk/absnum/analysis/enumdef"
	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/fixpoint"
	"github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/analysis/numeric"
	"github.com/cs-au-dk/absnum/config"
	"github.com/cs-au-dk/absnum/utils"
)

type E = *expr.Expr[string]

var codec = expr.Tree[string]{}

// unit is one procedure handed to the fixpoint engine.
type unit[L comparable] struct {
	name     string
	program  fixpoint.Program[L, string, E]
	requires []E
	// locate describes where the index-th assertion of a label is in the
	// source.
	locate func(l L, index int) string
	// describe prints a guard in terms of source-level names. Optional.
	describe func(E) string
}

// pipeline is a wrapper around a batch of analyses sharing the same
// settings.
type pipeline[L comparable] struct {
	settings config.Settings
	units    []unit[L]
}

// run selects the abstract domain and analyzes every unit with it.
func (p pipeline[L]) run(ctx context.Context) (*summary, error) {
	overflow, err := numeric.ParseOverflow(p.settings.Overflow)
	if err != nil {
		return nil, err
	}

	nctx := numeric.NewContext[string, E](codec, codec, overflow, p.settings.Thresholds...)
	enums := enumdef.New[string, string, E](codec)

	log.Printf("Analyzing %d function(s) with %s (overflow: %s, enums: %t)",
		len(p.units), p.settings.Domain, overflow, p.settings.Enums)

	switch {
	case p.settings.Domain == "zones" && p.settings.Enums:
		return analyze(ctx, p, fixpoint.NewProduct[string, E](numeric.NewZones(nctx), enums)), nil
	case p.settings.Domain == "zones":
		return analyze(ctx, p, numeric.NewZones(nctx)), nil
	case p.settings.Enums:
		return analyze(ctx, p, fixpoint.NewProduct[string, E](numeric.NewIntervals(nctx), enums)), nil
	default:
		return analyze(ctx, p, numeric.NewIntervals(nctx)), nil
	}
}

// narrowing maps the configured number of passes to the driver's options.
// Zero passes disables the descending phase.
func narrowing(passes int) int {
	if passes == 0 {
		return -1
	}
	return passes
}

func analyze[L comparable, D lattice.Environment[string, E, D]](
	ctx context.Context,
	p pipeline[L],
	init D,
) *summary {
	tasks := make([]fixpoint.Task[L, string, E, D], len(p.units))
	for i, u := range p.units {
		tasks[i] = fixpoint.Task[L, string, E, D]{
			Name:    u.name,
			Program: u.program,
			Init:    init,
			Options: fixpoint.Options[E]{
				MaxIterations:   p.settings.MaxIterations,
				NarrowingPasses: narrowing(p.settings.NarrowingPasses),
				Preconditions:   u.requires,
			},
		}
	}

	start := time.Now()
	results := fixpoint.AnalyzeAll(ctx, tasks, p.settings.Workers, p.settings.Timeout.Duration)
	utils.TimeTrack(start, "Analysis")

	sum := &summary{}
	for i, res := range results {
		report(p.units[i], res)

		outcomes := make([]lattice.Outcome, 0, len(res.Obligations()))
		for _, o := range res.Obligations() {
			outcomes = append(outcomes, o.Outcome)
		}
		sum.add(res.Complete, res.Iterations, len(res.DeadEdges()), outcomes...)
		render(p.units[i].name, res)
	}
	return sum
}

// Colorization is decided when printing, after the flags are parsed.
func holds(is ...interface{}) string {
	return utils.CanColorize(color.New(color.FgGreen).SprintFunc())(is...)
}

func fails(is ...interface{}) string {
	return utils.CanColorize(color.New(color.FgRed, color.Bold).SprintFunc())(is...)
}

func unknown(is ...interface{}) string {
	return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
}

func unreachable(is ...interface{}) string {
	return utils.CanColorize(color.New(color.Faint).SprintFunc())(is...)
}

func verdict(o lattice.Outcome) string {
	switch o {
	case lattice.OutcomeTrue:
		return holds("holds")
	case lattice.OutcomeFalse:
		return fails("fails")
	case lattice.OutcomeBottom:
		return unreachable("unreachable")
	}
	return unknown("may fail")
}

// report prints the verdict of every assertion of a unit, followed by the
// edges the analysis proved dead.
func report[L comparable, D lattice.Environment[string, E, D]](u unit[L], res *fixpoint.Result[L, string, E, D]) {
	fmt.Println(utils.CanColorize(color.New(color.Bold).SprintFunc())("== ", u.name))

	if !res.Complete {
		fmt.Println("  ", unknown("incomplete:"), res.Err)
	}

	for _, o := range res.Obligations() {
		guard := o.Guard.String()
		if u.describe != nil {
			guard = u.describe(o.Guard)
		}
		fmt.Printf("  %s\tassert %s\t%s\n", u.locate(o.Label, o.Index), guard, verdict(o.Outcome))
	}

	if dead := res.DeadEdges(); len(dead) > 0 {
		edges := make([]string, len(dead))
		for i, e := range dead {
			edges[i] = fmt.Sprintf("%v → %v", e.From, e.To)
		}
		fmt.Println("  dead edges:", strings.Join(edges, ", "))
	}

	if labels := res.Unreachable(); len(labels) > 0 {
		fmt.Println("  unreachable:", unreachable(fmt.Sprint(labels)))
	}

	opts.OnVerbose(func() {
		for _, l := range res.Labels() {
			fmt.Printf("  %v: %s\n", l, res.StateAt(l))
		}
	})

	fmt.Printf("  %d iterations\n\n", res.Iterations)
}

// render draws the annotated control-flow graph when -dot or -visualize
// is given.
func render[L comparable, D lattice.Environment[string, E, D]](name string, res *fixpoint.Result[L, string, E, D]) {
	if opts.DotOut() == "" && !opts.Visualize() {
		return
	}

	dg := res.ToDotGraph(name)

	if opts.Visualize() {
		dg.Show()
	}

	if prefix := opts.DotOut(); prefix != "" {
		img, err := dg.Render(prefix+"-"+sanitize(name), opts.OutputFormat())
		if err != nil {
			log.Println("Failed to render dot graph for", name, err)
			return
		}
		log.Println("Rendered", img)
	}
}

// sanitize turns a function name into a file name component.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '(', ')', '*', ' ', ':':
			return '_'
		}
		return r
	}, name)
}
