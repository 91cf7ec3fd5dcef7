package lattice

import (
	"fmt"

	"github.com/cs-au-dk/absnum/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	// Element prints the extremal elements ⊥ and ⊤.
	Element func(...interface{}) string
	Const   func(...interface{}) string
	// Key prints variables.
	Key func(...interface{}) string
}{
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
}

// Colorize exposes the pretty printer palette to the domain packages.
var Colorize = colorize

func errPatternMatch(v interface{}) error {
	return fmt.Errorf("invalid pattern match: %v %T", v, v)
}
