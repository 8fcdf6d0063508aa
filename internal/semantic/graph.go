// Package semantic implements AST-to-semantic-graph lowering: identifier
// resolution to Symbols, Pipe-into-Call merging, Block linearization,
// duration folding, and fresh type-variable attachment. Conversion walks
// the parsed tree once, building a parallel, resolved structure rather
// than mutating the AST in place.
package semantic

import "github.com/fluxlang/fluxc/internal/ast"
import "github.com/fluxlang/fluxc/internal/types"

// Symbol is a resolved binding: a package-qualified name plus a unique id
// that distinguishes shadowed bindings sharing the same local name.
type Symbol struct {
	Package string
	Name    string
	ID      string
}

func (s Symbol) String() string {
	if s.Package == "" {
		return s.Name + "#" + s.ID
	}
	return s.Package + "." + s.Name + "#" + s.ID
}

// TypeSlot is the mutable cell every node's Type field points to. Inference
// resolves a node's type by overwriting T through this shared pointer:
// every reference to the slot observes the solved type without a second
// tree pass rebuilding nodes.
type TypeSlot struct{ T types.MonoType }

// Base is embedded in every semantic-graph node.
type Base struct {
	Loc  ast.Location
	Type *TypeSlot
}

func newBase(loc ast.Location) Base {
	return Base{Loc: loc, Type: &TypeSlot{}}
}

// Node is the root interface for every semantic-graph variant.
type Node interface {
	base() *Base
}

func (b *Base) base() *Base { return b }

// Statement is one link in a Block's Variable|Expr|Return chain.
type Statement interface {
	Node
	Next() Statement
	setNext(Statement)
}

// Expression is a Node that carries a MonoType.
type Expression interface {
	Node
	exprNode()
}

// File is one converted source file.
type File struct {
	Base
	Package string
	Body    []Statement
	// Builtins maps each `builtin id : type-expression` declaration's
	// Symbol ID to its unconverted ast.TypeExpr. Builtins have no value to
	// infer a type from, so inference reads their declared signature
	// straight out of this table rather than from a Variable.Init.
	Builtins map[string]ast.TypeExpr
}

// Package is the full set of files making up one Flux package, the
// semantic-graph counterpart of ast.Package.
type Package struct {
	Base
	Path  string
	Files []*File
}

// Block is a function body: a linked list that conversion checks ends in
// exactly one Return. A block that does not is reported as MalformedBlock
// and kept as written.
type Block struct {
	Base
	Head Statement
}

type linkable struct {
	Base
	next Statement
}

func (l *linkable) Next() Statement      { return l.next }
func (l *linkable) setNext(s Statement)  { l.next = s }

// Variable is `id = expr` as a link in a Block.
type Variable struct {
	linkable
	Symbol Symbol
	Init   Expression
}

// ExprStatement is a bare expression used as a statement link.
type ExprStatement struct {
	linkable
	Expr Expression
}

// Return terminates a well-formed Block, where it has no Next.
type Return struct {
	linkable
	Argument Expression
}

// IdentifierExpr replaces every identifier use site.
type IdentifierExpr struct {
	Base
	Symbol Symbol
}

func (*IdentifierExpr) exprNode() {}

type ArrayExpr struct {
	Base
	Elements []Expression
}

func (*ArrayExpr) exprNode() {}

type DictItem struct{ Key, Val Expression }

type DictExpr struct {
	Base
	Elements []DictItem
}

func (*DictExpr) exprNode() {}

// Param is one resolved function parameter.
type Param struct {
	Symbol  Symbol
	Default Expression
	Pipe    bool
}

type FunctionExpr struct {
	Base
	Params []Param
	Body   *Block
}

func (*FunctionExpr) exprNode() {}

type LogicalExpr struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

func (*LogicalExpr) exprNode() {}

type PropertyItem struct {
	Key   string
	Value Expression
}

type ObjectExpr struct {
	Base
	With       Expression
	Properties []PropertyItem
}

func (*ObjectExpr) exprNode() {}

type MemberExpr struct {
	Base
	Object   Expression
	Property string
}

func (*MemberExpr) exprNode() {}

type IndexExpr struct {
	Base
	Array Expression
	Index Expression
}

func (*IndexExpr) exprNode() {}

type BinaryExpr struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

func (*BinaryExpr) exprNode() {}

type UnaryExpr struct {
	Base
	Operator string
	Argument Expression
}

func (*UnaryExpr) exprNode() {}

// CallExpr absorbs PipeExpr at conversion time: Pipe is the argument a
// PipeExpr supplied, or nil for an ordinary call.
type CallExpr struct {
	Base
	Callee    Expression
	Arguments []PropertyItem
	Pipe      Expression
}

func (*CallExpr) exprNode() {}

type ConditionalExpr struct {
	Base
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (*ConditionalExpr) exprNode() {}

type StringExpr struct {
	Base
	Parts []Expression
}

func (*StringExpr) exprNode() {}

type TextPart struct {
	Base
	Value string
}

func (*TextPart) exprNode() {}

type IntegerLit struct {
	Base
	Value int64
}

func (*IntegerLit) exprNode() {}

type UintLit struct {
	Base
	Value uint64
}

func (*UintLit) exprNode() {}

type FloatLit struct {
	Base
	Value float64
}

func (*FloatLit) exprNode() {}

type StringLit struct {
	Base
	Value string
}

func (*StringLit) exprNode() {}

type BooleanLit struct {
	Base
	Value bool
}

func (*BooleanLit) exprNode() {}

// DurationLit stores the folded {months, nanoseconds, negative} triple;
// it is never collapsed into a single nanosecond count because month
// length is instant-dependent.
type DurationLit struct {
	Base
	Months      int64
	Nanoseconds int64
	Negative    bool
}

func (*DurationLit) exprNode() {}

type DateTimeLit struct {
	Base
	Raw string
}

func (*DateTimeLit) exprNode() {}

type RegexpLit struct {
	Base
	Value string
}

func (*RegexpLit) exprNode() {}

// TestCase is `testcase id { block }`, lowered with its own child scope.
type TestCase struct {
	linkable
	Symbol Symbol
	Block  *Block
}
