package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/cs-au-dk/absnum/analysis/expr"
	"github.com/cs-au-dk/absnum/analysis/lang"
	"github.com/cs-au-dk/absnum/analysis/ssafront"
	"github.com/cs-au-dk/absnum/config"
	"github.com/cs-au-dk/absnum/pkgutil"
	"github.com/cs-au-dk/absnum/utils"
)

var opts = utils.Opts()

func main() {
	utils.ParseArgs()

	verbosity := 1
	if opts.Verbose() {
		verbosity = 4
	}
	commonlog.Configure(verbosity, nil)

	settings, err := loadSettings()
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path := utils.MakePath()

	var sum *summary
	if utils.IsWhileFile(path) {
		var p pipeline[int]
		if p, err = whileProgram(path, settings); err == nil {
			sum, err = p.run(ctx)
		}
	} else {
		var p pipeline[ssafront.Label]
		if p, err = goFunctions(path, settings); err == nil {
			sum, err = p.run(ctx)
		}
	}
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Print(sum)
	if sum.violated() {
		os.Exit(1)
	}
}

// loadSettings combines the command-line flags with the configuration
// file, if one is given. Flags set explicitly win.
func loadSettings() (config.Settings, error) {
	settings := config.Settings{
		Domain:          opts.Domain().String(),
		Overflow:        opts.Overflow(),
		MaxIterations:   opts.MaxIterations(),
		NarrowingPasses: opts.NarrowingPasses(),
		Workers:         opts.Workers(),
		Timeout:         config.Duration{Duration: opts.Timeout()},
		Enums:           opts.Enums(),
	}

	var cfg *config.Config
	if path := opts.ConfigPath(); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return settings, err
		}
	}
	return cfg.Merge(settings, opts.IsSet)
}

func preconditions(srcs []string) ([]E, error) {
	res := make([]E, 0, len(srcs))
	for _, src := range srcs {
		e, err := expr.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("precondition %q: %w", src, err)
		}
		res = append(res, e)
	}
	return res, nil
}

// whileProgram compiles a while-language file into a single unit. Its
// preconditions are the requires clauses of the file followed by those
// configured for its base name.
func whileProgram(path string, s config.Settings) (pipeline[int], error) {
	s = whileSettings(s)
	prog, err := lang.ParseFile(path)
	if err != nil {
		return pipeline[int]{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	reqs, err := preconditions(s.Requires[name])
	if err != nil {
		return pipeline[int]{}, err
	}

	opts.OnVerbose(func() {
		fmt.Print(prog)
	})

	return pipeline[int]{
		settings: s,
		units: []unit[int]{{
			name:     name,
			program:  prog,
			requires: slices.Concat(prog.Requires, reqs),
			locate: func(l, index int) string {
				if instr, ok := prog.Assertion(l, index); ok {
					return instr.Pos.String()
				}
				return fmt.Sprint(l)
			},
		}},
	}, nil
}

// whileSettings defaults while programs to 32-bit wrapping arithmetic.
func whileSettings(s config.Settings) config.Settings {
	if s.Overflow == "" {
		s.Overflow = "wrap"
	}
	return s
}

// goSettings selects ideal arithmetic for Go functions. The front end
// wraps every integer result to its type explicitly.
func goSettings(s config.Settings) config.Settings {
	if s.Overflow == "wrap" {
		log.Println("Ignoring overflow model wrap: Go arithmetic wraps to the type of each value")
	}
	s.Overflow = "ideal"
	return s
}

// goFunctions loads the Go packages matching path and turns every function
// selected with -fun into a unit.
func goFunctions(path string, s config.Settings) (pipeline[ssafront.Label], error) {
	p := pipeline[ssafront.Label]{settings: goSettings(s)}

	log.Println("Loading packages...")
	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{
		GoPath:     opts.GoPath(),
		ModulePath: opts.ModulePath(),
	}, path)
	if err != nil {
		return p, err
	}
	_, ssaPkgs := pkgutil.Build(pkgs)

	for _, f := range ssafront.Functions(ssaPkgs) {
		if !opts.AnalyzeAllFuncs() && f.Fn.Name() != opts.Function() {
			continue
		}

		reqs, err := preconditions(s.Requires[f.Fn.Name()])
		if err != nil {
			return p, err
		}

		names := f.Names()
		p.units = append(p.units, unit[ssafront.Label]{
			name:     f.String(),
			program:  f,
			requires: reqs,
			locate: func(l ssafront.Label, index int) string {
				if pos, ok := f.Assertion(l, index); ok {
					return f.Position(pos).String()
				}
				return l.String()
			},
			describe: func(g E) string {
				return g.Map(func(v string) E {
					if n, ok := names[v]; ok && n != v {
						return expr.Var(n + ":" + v)
					}
					return expr.Var(v)
				}).String()
			},
		})
	}

	if len(p.units) == 0 {
		return p, fmt.Errorf("no function matching %q in %s", opts.Function(), path)
	}
	return p, nil
}
