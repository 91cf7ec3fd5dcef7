package utils

import (
	"flag"
	"path/filepath"
)

// MakePath returns the analysis target: the first non-flag argument, or
// the current directory when none is given.
func MakePath() string {
	if args := flag.Args(); len(args) >= 1 {
		return args[0]
	}
	return "."
}

// IsWhileFile reports whether path names a program in the while language
// rather than a Go package.
func IsWhileFile(path string) bool {
	return filepath.Ext(path) == ".while"
}
