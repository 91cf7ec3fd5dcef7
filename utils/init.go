package utils

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"
)

type options struct {
	minlen          uint
	nodesep         float64
	maxIterations   uint
	narrowingPasses uint
	workers         uint
	timeout         time.Duration
	function        string
	domain          string
	outputFormat    string
	dotOut          string
	configPath      string
	overflow        string
	gopath          string
	modulepath      string
	enums           bool
	noColorize      bool
	verbose         bool
	visualize       bool
}

const (
	_INTERVALS = iota
	_ZONES
)

var domains = []struct{ flag, explanation string }{{
	"intervals",
	"Non-relational interval environment",
}, {
	"zones",
	"Difference-bound matrices (x - y <= c) paired with intervals",
}}

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

var opts = &options{}

type optInterface struct{}

type domainInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

// SetNoColorize toggles colorization. Used by tests that compare printed output.
func (optInterface) SetNoColorize(b bool) {
	opts.noColorize = b
}

func (optInterface) Minlen() uint {
	return opts.minlen
}
func (optInterface) Nodesep() float64 {
	return opts.nodesep
}
func (optInterface) Function() string {
	return opts.function
}
func (optInterface) OutputFormat() string {
	return opts.outputFormat
}
func (optInterface) DotOut() string {
	return opts.dotOut
}
func (optInterface) ConfigPath() string {
	return opts.configPath
}
func (optInterface) Overflow() string {
	return opts.overflow
}
func (optInterface) GoPath() string {
	return opts.gopath
}
func (optInterface) ModulePath() string {
	return opts.modulepath
}
func (optInterface) Enums() bool {
	return opts.enums
}
func (optInterface) MaxIterations() int {
	return int(opts.maxIterations)
}
func (optInterface) NarrowingPasses() int {
	return int(opts.narrowingPasses)
}
func (optInterface) Workers() int {
	return int(opts.workers)
}
func (optInterface) Timeout() time.Duration {
	return opts.timeout
}
func (optInterface) Verbose() bool {
	return opts.verbose
}
func (optInterface) Visualize() bool {
	return opts.visualize
}
func (optInterface) Domain() domainInterface {
	return domainInterface{}
}
func (domainInterface) String() string {
	return opts.domain
}

// IsSet reports whether the named flag was given explicitly on the command line.
func (optInterface) IsSet(name string) (set bool) {
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return
}

func init() {
	domainFlag := "\n"
	for _, d := range domains {
		domainFlag += d.flag + " -- " + d.explanation + "\n"
	}
	domainFlag += "\n"

	flag.UintVar(&(opts.minlen), "minlen", 2, "Minimum edge length (for wider output).")
	flag.Float64Var(&(opts.nodesep), "nodesep", 0.35, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	flag.UintVar(&(opts.maxIterations), "max-iterations", 100000, "Upper bound on work-list pops per function before the analysis is reported incomplete.")
	flag.UintVar(&(opts.narrowingPasses), "narrowing", 2, "Number of descending passes run after the widening phase stabilizes.")
	flag.UintVar(&(opts.workers), "workers", 4, "Number of functions analyzed in parallel.")
	flag.DurationVar(&(opts.timeout), "timeout", 10*time.Second, "Per-function analysis timeout.")
	flag.StringVar(&(opts.function), "fun", ".", "target a specific function. Use '.' to analyze every function in the file.")
	flag.StringVar(&(opts.domain), "domain", domains[_INTERVALS].flag, "Abstract domain. Options:"+domainFlag)
	flag.StringVar(&(opts.outputFormat), "format", "svg", "output file format [svg | png | jpg | ...]")
	flag.StringVar(&(opts.dotOut), "dot", "", "If set, render the annotated control-flow graph of each function to files with this prefix.")
	flag.StringVar(&(opts.configPath), "config", "", "Path to a TOML analysis configuration.")
	flag.StringVar(&(opts.overflow), "overflow", "", "Integer overflow model of while programs [wrap | ideal]. Defaults to wrap. Go functions always wrap to the type of each value.")
	flag.StringVar(&(opts.gopath), "gopath", "", "GOPATH used when loading Go packages.")
	flag.StringVar(&(opts.modulepath), "modulepath", "", "Root of the Go module to load packages from. Enables module-aware loading.")
	flag.BoolVar(&(opts.enums), "enums", false, "Pair the numeric domain with enum-definedness tracking.")
	flag.BoolVar(&(opts.noColorize), "no-colorize", false, "Disable pretty printer colorization")
	flag.BoolVar(&(opts.verbose), "verbose", false, "enable verbose output")
	flag.BoolVar(&(opts.visualize), "visualize", false, "enable visualization via XDot")

	// Set up logging
	log.SetFlags(log.Ltime | log.Lshortfile)
}

func ParseArgs() {
	// Calling flag.Parse in init messes up unit tests.
	// See https://stackoverflow.com/questions/60235896/flag-provided-but-not-defined-test-v
	flag.Parse()

	validDomain := false
	for _, d := range domains {
		if d.flag == opts.domain {
			validDomain = true
			break
		}
	}

	if !validDomain {
		log.Fatalf("Value \"%s\" is not valid for -domain", opts.domain)
	}

	if opts.overflow != "" && opts.overflow != "wrap" && opts.overflow != "ideal" {
		log.Fatalf("Value \"%s\" is not valid for -overflow", opts.overflow)
	}

	if opts.dotOut != "" {
		opts.noColorize = true
	}
}

func (optInterface) AnalyzeAllFuncs() bool {
	return opts.function == "."
}

func (optInterface) OnVerbose(do func()) {
	if Opts().Verbose() {
		do()
	}
}
