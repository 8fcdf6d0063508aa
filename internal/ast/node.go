// Package ast defines the abstract syntax tree produced by the parser: a
// tree of algebraic variants each sharing a BaseNode (location, comments,
// errors, attributes). The tree is total — a syntactically invalid
// construct is represented as a Bad* variant carrying a diagnostic string,
// never by an absent node. See internal/parser for the construction side
// and internal/astcheck for the structural-diagnostics pass.
package ast

import "github.com/fluxlang/fluxc/internal/scanner"

// Position is a 1-indexed line/column pair, as produced by
// scanner.Scanner.Position.
type Position struct {
	Line   int
	Column int
}

// Location is the source span of a node.
type Location struct {
	File   string
	Start  Position
	End    Position
	Source string // the exact source text the node spans, when available
}

// Attribute is an `@name(args)` annotation attached to a package clause,
// import, or statement.
type Attribute struct {
	Name string
	Args []Expression
	Loc  Location
}

// Comment is a `//` line comment routed to the semantically nearest node.
type Comment struct {
	Text string
	Loc  Location
}

// BaseNode is embedded in every AST node.
type BaseNode struct {
	Loc        Location
	Comments   []Comment
	Errors     []string
	Attributes []*Attribute
}

func (b *BaseNode) Base() *BaseNode { return b }

// AddError appends a diagnostic to this node. A Bad* variant with a
// diagnostic is not a bug — it's how the parser represents syntactically
// invalid input without aborting (see invariant in package docs).
func (b *BaseNode) AddError(msg string) { b.Errors = append(b.Errors, msg) }

// Node is the root interface implemented by every AST variant. Traversal is
// a free function (Walk) over a Visitor capability, not a per-node Accept
// method — see visitor.go.
type Node interface {
	Base() *BaseNode
}

// Statement is a Node that may appear in a Block's body.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a Node that yields a value.
type Expression interface {
	Node
	exprNode()
}

// PropertyKey is either an Identifier or a StringLit.
type PropertyKey interface {
	Node
	propertyKeyNode()
}

func posFromScanner(p scanner.Position) Position { return Position{Line: p.Line, Column: p.Column} }
