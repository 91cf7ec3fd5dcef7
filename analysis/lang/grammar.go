// Package lang is a front end for a small while language over integer
// variables. Programs are compiled to control-flow graphs that the
// fixpoint engine can analyze directly.
//
//	requires n >= 0;
//	i = 0;
//	while i < n {
//		i = i + 1;
//	}
//	assert i == n;
package lang

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cs-au-dk/absnum/analysis/expr"
)

type (
	File struct {
		Requires []*expr.Disjunction `( "requires" @@ ";" )*`
		Stmts    []*Stmt             `@@*`
	}

	Stmt struct {
		Pos lexer.Position

		If     *If               `  @@`
		While  *While            `| @@`
		Assume *expr.Disjunction `| "assume" @@ ";"`
		Assert *expr.Disjunction `| "assert" @@ ";"`
		Havoc  *string           `| "havoc" @Ident ";"`
		Fact   *Fact             `| "fact" @@ ";"`
		Decl   *Decl             `| "var" @@ ";"`
		Block  *Block            `| @@`
		Assign *Assign           `| @@ ";"`
	}

	If struct {
		Cond *expr.Disjunction `"if" @@`
		Then *Block            `@@`
		Else *Else             `( "else" @@ )?`
	}

	Else struct {
		If    *If    `  @@`
		Block *Block `| @@`
	}

	While struct {
		Cond *expr.Disjunction `"while" @@`
		Body *Block            `@@`
	}

	Block struct {
		Stmts []*Stmt `"{" @@* "}"`
	}

	// Decl introduces a variable scoped to the enclosing block.
	Decl struct {
		Name string            `@Ident`
		Init *expr.Disjunction `( "=" @@ )?`
	}

	// Assign is a simultaneous assignment, e.g. "x, y = y, x".
	Assign struct {
		Targets []string            `@Ident ( "," @Ident )*`
		Values  []*expr.Disjunction `"=" @@ ( "," @@ )*`
	}

	Fact struct {
		Range *RangeFact `  @@`
		Iff   *IffFact   `| @@`
		Enum  *EnumFact  `| @@`
	}

	RangeFact struct {
		Var  string    `@Ident "in"`
		Low  *expr.Sum `"[" @@`
		High *expr.Sum `"," @@ "]"`
	}

	IffFact struct {
		Cond string `@Ident "iff"`
		Var  string `@Ident "is"`
		Type string `@Ident`
	}

	EnumFact struct {
		Var  string `@Ident "is"`
		Type string `@Ident`
	}
)

var parser = participle.MustBuild[File](
	participle.Lexer(expr.Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)
