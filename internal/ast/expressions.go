package ast

// Identifier is a name occurrence, either a binding site or a use site.
// Symbol resolution (which of those it is, and which Symbol it denotes) is
// a semantic-graph concern — see internal/semantic.
type Identifier struct {
	BaseNode
	Name string
}

func (i *Identifier) exprNode()        {}
func (i *Identifier) propertyKeyNode() {}

// ArrayExpr is `[e1, e2, ...]`.
type ArrayExpr struct {
	BaseNode
	Elements []Expression
}

func (a *ArrayExpr) exprNode() {}

// DictExpr is `[k1: v1, k2: v2]`.
type DictExpr struct {
	BaseNode
	Elements []DictItem
}

type DictItem struct {
	Key Expression
	Val Expression
}

func (d *DictExpr) exprNode() {}

// Property is one `key: value` pair of an ObjectExpr, or a parameter of a
// FunctionExpr (where Value is the default, possibly nil, and Pipe marks
// the pipe-receive parameter `<-x`).
type Property struct {
	BaseNode
	Key   PropertyKey
	Value Expression // nil for shorthand {x} or a required parameter
	Pipe  bool
}

// FunctionExpr is `(params) => body` or `(params) => { block }`. Body is
// either a *Block or a bare Expression; the converter normalizes both to a
// Block-shaped linked list terminating in Return.
type FunctionExpr struct {
	BaseNode
	Params []*Property
	Body   Node
}

func (f *FunctionExpr) exprNode() {}

// LogicalExpr is `a and b` / `a or b`.
type LogicalExpr struct {
	BaseNode
	Operator string
	Left     Expression
	Right    Expression
}

func (l *LogicalExpr) exprNode() {}

// ObjectExpr is `{with? properties}`, e.g. `{r with x: 1}`.
type ObjectExpr struct {
	BaseNode
	With       *Identifier
	Properties []*Property
}

func (o *ObjectExpr) exprNode() {}

// MemberExpr is `object.property`.
type MemberExpr struct {
	BaseNode
	Object   Expression
	Property *Identifier
}

func (m *MemberExpr) exprNode() {}

// IndexExpr is `array[index]`.
type IndexExpr struct {
	BaseNode
	Array Expression
	Index Expression
}

func (ix *IndexExpr) exprNode() {}

// BinaryExpr covers arithmetic, comparison, and regex-match operators.
// Operator is the operator's source lexeme. The parser does not synthesize
// placeholder BinaryExprs during error recovery: two adjacent expressions
// in a property list are recorded as a missing-token error on the
// enclosing ObjectExpr instead.
type BinaryExpr struct {
	BaseNode
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpr) exprNode() {}

// UnaryExpr covers `-x`, `+x`, `not x`, `exists x`.
type UnaryExpr struct {
	BaseNode
	Operator string
	Argument Expression
}

func (u *UnaryExpr) exprNode() {}

// CallExpr is `callee(args)`, with an optional Pipe carrying the
// left-hand side of a `|>` chain. The parser produces PipeExpr as a
// distinct node (see PipeExpr below) and never sets this Pipe field; the
// converter lowers a PipeExpr into semantic.CallExpr's Pipe slot instead.
type CallExpr struct {
	BaseNode
	Callee    Expression
	Arguments []*Property
	Pipe      Expression
}

func (c *CallExpr) exprNode() {}

// PipeExpr is `argument |> call`, as produced directly by the parser.
// internal/semantic merges this into CallExpr{Pipe: argument}.
type PipeExpr struct {
	BaseNode
	Argument Expression
	Call     *CallExpr
}

func (p *PipeExpr) exprNode() {}

// ConditionalExpr is `if test then consequent else alternate`.
type ConditionalExpr struct {
	BaseNode
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (c *ConditionalExpr) exprNode() {}

// StringExpr is an interpolated string: a sequence of TextPart and
// InterpolatedPart expressions.
type StringExpr struct {
	BaseNode
	Parts []Expression
}

func (s *StringExpr) exprNode() {}

// TextPart is a literal run of text inside an interpolated string.
type TextPart struct {
	BaseNode
	Value string
}

func (t *TextPart) exprNode() {}

// InterpolatedPart is one `${expr}` hole inside an interpolated string.
type InterpolatedPart struct {
	BaseNode
	Expr Expression
}

func (i *InterpolatedPart) exprNode() {}

// ParenExpr is `(expr)`. The converter strips these; they carry no
// semantic weight but are kept in the AST to preserve
// source spans for the formatter (out of scope here) and for diagnostics.
type ParenExpr struct {
	BaseNode
	Expr Expression
}

func (p *ParenExpr) exprNode() {}

// BadExpr preserves the source span of an expression the parser could not
// parse, e.g. an empty regex `//` or a malformed property value.
type BadExpr struct {
	BaseNode
	Text string
}

func (b *BadExpr) exprNode()        {}
func (b *BadExpr) propertyKeyNode() {}
