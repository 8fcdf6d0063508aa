package semantic

// Visitor is the semantic-graph counterpart of ast.Visitor: Visit on the
// way down, Done on the way back up, no shared mutable state
// beyond whatever the implementor holds.
type Visitor interface {
	Visit(node Node) bool
	Done(node Node)
}

// TypeOf exposes a node's mutable type cell to callers outside this
// package — inference writes through it, and inference and FindVarType
// read through it.
func TypeOf(n Node) *TypeSlot { return n.base().Type }

// LocOf exposes a node's source span to callers outside this package.
func LocOf(n Node) Base { return *n.base() }

// Walk performs a depth-first traversal of n. There are no cycles to guard
// against: Symbol references form a DAG (each use points to a unique
// binder), never a back edge into the structure Walk descends.
func Walk(v Visitor, n Node) {
	if n == nil || isNil(n) {
		return
	}
	if !v.Visit(n) {
		return
	}
	switch node := n.(type) {
	case *Package:
		for _, f := range node.Files {
			Walk(v, f)
		}
	case *File:
		for _, s := range node.Body {
			Walk(v, s)
		}
	case *Block:
		for s := node.Head; s != nil; s = s.Next() {
			Walk(v, s)
		}
	case *Variable:
		if node.Init != nil {
			Walk(v, node.Init)
		}
	case *ExprStatement:
		Walk(v, node.Expr)
	case *Return:
		if node.Argument != nil {
			Walk(v, node.Argument)
		}
	case *TestCase:
		Walk(v, node.Block)
	case *IdentifierExpr:
		// leaf
	case *ArrayExpr:
		for _, e := range node.Elements {
			Walk(v, e)
		}
	case *DictExpr:
		for _, item := range node.Elements {
			Walk(v, item.Key)
			Walk(v, item.Val)
		}
	case *FunctionExpr:
		for _, p := range node.Params {
			if p.Default != nil {
				Walk(v, p.Default)
			}
		}
		Walk(v, node.Body)
	case *LogicalExpr:
		Walk(v, node.Left)
		Walk(v, node.Right)
	case *ObjectExpr:
		if node.With != nil {
			Walk(v, node.With)
		}
		for _, p := range node.Properties {
			if p.Value != nil {
				Walk(v, p.Value)
			}
		}
	case *MemberExpr:
		Walk(v, node.Object)
	case *IndexExpr:
		Walk(v, node.Array)
		Walk(v, node.Index)
	case *BinaryExpr:
		Walk(v, node.Left)
		Walk(v, node.Right)
	case *UnaryExpr:
		Walk(v, node.Argument)
	case *CallExpr:
		Walk(v, node.Callee)
		for _, a := range node.Arguments {
			if a.Value != nil {
				Walk(v, a.Value)
			}
		}
		if node.Pipe != nil {
			Walk(v, node.Pipe)
		}
	case *ConditionalExpr:
		Walk(v, node.Test)
		Walk(v, node.Consequent)
		Walk(v, node.Alternate)
	case *StringExpr:
		for _, p := range node.Parts {
			Walk(v, p)
		}
	case *TextPart, *IntegerLit, *UintLit, *FloatLit, *StringLit, *BooleanLit,
		*DurationLit, *DateTimeLit, *RegexpLit:
		// leaves
	}
	v.Done(n)
}

func isNil(n Node) bool {
	switch v := n.(type) {
	case *File:
		return v == nil
	case *Block:
		return v == nil
	case *IdentifierExpr:
		return v == nil
	}
	return false
}
