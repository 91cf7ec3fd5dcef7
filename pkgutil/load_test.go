package pkgutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithModule(t *testing.T) {
	pkgs, err := LoadPackages(LoadConfig{
		GoPath:     "testdata",
		ModulePath: "testdata/mod",
	}, "./...")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "example.com/counters", pkgs[0].PkgPath)

	_, ssaPkgs := Build(pkgs)
	require.Len(t, ssaPkgs, 1)
	assert.NotNil(t, ssaPkgs[0].Func("Count"))
}

func TestLoadMissingModule(t *testing.T) {
	_, err := LoadPackages(LoadConfig{ModulePath: "testdata/missing"}, "./...")
	assert.Error(t, err)
}

func TestModuleName(t *testing.T) {
	name, err := ModuleName("testdata/mod")
	require.NoError(t, err)
	assert.Equal(t, "example.com/counters", name)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24\n"), 0644))
	_, err = ModuleName(dir)
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadPackagesFromSource("package main\n\nfunc main() { undefined() }\n")
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadFromSource(t *testing.T) {
	pkgs, err := LoadPackagesFromSource(`package main

func main() {
	x := 1
	_ = x
}
`)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	_, ssaPkgs := Build(pkgs)
	assert.NotNil(t, ssaPkgs[0].Func("main"))
}
