// Package pkgutil loads Go packages and builds their SSA form.
package pkgutil

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadConfig selects how packages are found. Packages are loaded in
// module-aware mode from ModulePath when it is set, and from GoPath in
// GOPATH mode otherwise.
type LoadConfig struct {
	GoPath, ModulePath string
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedTypes | packages.NeedTypesSizes | packages.NeedSyntax |
	packages.NeedTypesInfo | packages.NeedDeps

var (
	ErrLoad     = errors.New("errors encountered while loading packages")
	ErrNoModule = errors.New("no module declaration")
)

// relativeParseFile parses files under names relative to the working
// directory, so that reported positions do not depend on where the
// analyzed code lives.
func relativeParseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, filename); err == nil {
			filename = rel
		}
	}
	return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments)
}

// ModuleName reads the module path declared in the go.mod file of dir.
func ModuleName(dir string) (string, error) {
	contents, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod of %s: %w", dir, err)
	}
	name := modfile.ModulePath(contents)
	if name == "" {
		return "", fmt.Errorf("%s: %w", dir, ErrNoModule)
	}
	return name, nil
}

func (cfg LoadConfig) packagesConfig() (*packages.Config, error) {
	gopath, err := filepath.Abs(cfg.GoPath)
	if err != nil {
		return nil, err
	}

	pc := &packages.Config{
		Mode:      loadMode,
		ParseFile: relativeParseFile,
		Env:       append(os.Environ(), "GOPATH="+gopath, "GO111MODULE=off"),
	}
	if cfg.ModulePath == "" {
		return pc, nil
	}

	dir, err := filepath.Abs(cfg.ModulePath)
	if err != nil {
		return nil, err
	}
	if _, err := ModuleName(dir); err != nil {
		return nil, err
	}
	pc.Dir = dir
	pc.Env = append(os.Environ(), "GOPATH="+gopath, "GO111MODULE=on")
	return pc, nil
}

// LoadPackages loads the packages matching pattern, with their syntax and
// type information.
func LoadPackages(cfg LoadConfig, pattern string) ([]*packages.Package, error) {
	pc, err := cfg.packagesConfig()
	if err != nil {
		return nil, err
	}
	return load(pc, pattern)
}

// LoadPackagesFromSource loads a single main package from its source.
func LoadPackagesFromSource(source string) ([]*packages.Package, error) {
	const file = "/fake/testpackage/main.go"
	return load(&packages.Config{
		Mode:    loadMode,
		Env:     append(os.Environ(), "GO111MODULE=off", "GOPATH=/fake"),
		Overlay: map[string][]byte{file: []byte(source)},
	}, file)
}

func load(pc *packages.Config, pattern string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(pc, pattern)
	if err != nil {
		return nil, err
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrLoad, n)
	}
	return pkgs, nil
}

// Build constructs SSA code for the loaded packages and their dependencies.
// The returned packages correspond to the loaded ones.
func Build(pkgs []*packages.Package) (*ssa.Program, []*ssa.Package) {
	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()
	return prog, ssaPkgs
}
