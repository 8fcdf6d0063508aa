package semantic

import (
	"strings"

	"github.com/google/uuid"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/diag"
)

// Converter lowers a parsed ast.File into a semantic File, resolving every
// identifier to a Symbol in one of three scopes (locals > imports >
// prelude) and attaching a fresh type variable to every
// expression via newBase. One Converter is scoped to one file; imports
// accumulate per-Convert call.
type Converter struct {
	pkgName string
	prelude map[string]Symbol
	imports  map[string]string // alias -> import path
	scopes   []map[string]Symbol
	errs     diag.Errors
	builtins map[string]ast.TypeExpr
}

// NewConverter creates a converter for a package named pkgName, seeded with
// prelude as the outermost (lowest-precedence) scope.
func NewConverter(pkgName string, prelude map[string]Symbol) *Converter {
	return &Converter{
		pkgName: pkgName,
		prelude: prelude,
		imports: map[string]string{},
		scopes:  []map[string]Symbol{{}},
	}
}

func (c *Converter) pushScope() { c.scopes = append(c.scopes, map[string]Symbol{}) }
func (c *Converter) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Converter) bind(name string) Symbol {
	sym := Symbol{Package: c.pkgName, Name: name, ID: uuid.NewString()}
	c.scopes[len(c.scopes)-1][name] = sym
	return sym
}

// lookup resolves a name against locals (innermost first), then imports,
// then the prelude. An unresolved name becomes a fresh placeholder Symbol
// plus an UnresolvedSymbol diagnostic; conversion continues regardless.
func (c *Converter) lookup(name string, loc ast.Location) Symbol {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			return sym
		}
	}
	if path, ok := c.imports[name]; ok {
		return Symbol{Package: path, Name: "", ID: path}
	}
	if sym, ok := c.prelude[name]; ok {
		return sym
	}
	c.errs.Add(diag.New(diag.UnresolvedSymbol, loc, "unresolved symbol %q", name))
	return Symbol{Package: "", Name: name, ID: uuid.NewString()}
}

// Convert lowers file to a semantic File and returns every diagnostic
// raised along the way.
func (c *Converter) Convert(file *ast.File) (*File, diag.Errors) {
	c.errs = nil
	for _, imp := range file.Imports {
		c.imports[importAlias(imp)] = imp.Path.Value
	}

	sf := &File{Base: newBase(file.Loc), Package: c.pkgName, Builtins: map[string]ast.TypeExpr{}}
	c.builtins = sf.Builtins
	sf.Body = c.convertStatements(file.Body)
	return sf, c.errs
}

func importAlias(imp *ast.ImportDeclaration) string {
	if imp.Alias != nil {
		return imp.Alias.Name
	}
	parts := strings.Split(imp.Path.Value, "/")
	return parts[len(parts)-1]
}

func (c *Converter) convertStatements(stmts []ast.Statement) []Statement {
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.convertStmt(s))
	}
	return out
}

func (c *Converter) convertStmt(s ast.Statement) Statement {
	switch st := s.(type) {
	case *ast.VariableAssgn:
		return c.convertVariable(st)
	case *ast.ExprStmt:
		return &ExprStatement{linkable: linkable{Base: newBase(st.Loc)}, Expr: c.convertExpr(st.Expr)}
	case *ast.ReturnStmt:
		return &Return{linkable: linkable{Base: newBase(st.Loc)}, Argument: c.convertExpr(st.Argument)}
	case *ast.OptionStmt:
		return c.convertVariable(st.Assignment)
	case *ast.TestStmt:
		return c.convertVariable(st.Assignment)
	case *ast.TestCaseStmt:
		return c.convertTestCase(st)
	case *ast.BuiltinStmt:
		sym := c.bind(st.ID.Name)
		if c.builtins != nil {
			c.builtins[sym.ID] = st.TypeExpr
		}
		return &Variable{linkable: linkable{Base: newBase(st.Loc)}, Symbol: sym}
	default:
		loc := s.Base().Loc
		return &ExprStatement{linkable: linkable{Base: newBase(loc)}, Expr: &StringLit{Base: newBase(loc), Value: "<invalid>"}}
	}
}

func (c *Converter) convertVariable(v *ast.VariableAssgn) Statement {
	init := c.convertExpr(v.Init)
	if isMalformedInit(v.Init) {
		// The right-hand side never produced a real value, so binding
		// v.ID here would let later statements observe a name the source
		// never actually assigned anything to.
		for _, msg := range v.Init.Base().Errors {
			c.errs.Add(diag.New(diag.InvalidExpression, v.Init.Base().Loc, "%s", msg))
		}
		return &ExprStatement{linkable: linkable{Base: newBase(v.Loc)}, Expr: init}
	}
	sym := c.bind(v.ID.Name)
	return &Variable{linkable: linkable{Base: newBase(v.Loc)}, Symbol: sym, Init: init}
}

// isMalformedInit reports whether e recovered from a syntax error rather
// than parsing cleanly, by checking e's own recorded errors and, for a
// parenthesized expression, the wrapped expression's.
func isMalformedInit(e ast.Expression) bool {
	if e == nil {
		return false
	}
	if len(e.Base().Errors) > 0 {
		return true
	}
	if pe, ok := e.(*ast.ParenExpr); ok {
		return isMalformedInit(pe.Expr)
	}
	return false
}

func (c *Converter) convertTestCase(t *ast.TestCaseStmt) Statement {
	sym := c.bind(t.ID.Name)
	c.pushScope()
	block := c.convertBlock(t.Block)
	c.popScope()
	return &TestCase{linkable: linkable{Base: newBase(t.Loc)}, Symbol: sym, Block: block}
}

// convertBlock lowers an ast.Block into the linked-list form, checking that
// it terminates in exactly one Return; a violation is reported as
// MalformedBlock but does not stop conversion.
func (c *Converter) convertBlock(blk *ast.Block) *Block {
	sb := &Block{Base: newBase(blk.Loc)}
	var head, tail Statement

	for i, s := range blk.Body {
		stmt := c.convertStmt(s)
		if _, ok := stmt.(*Return); ok && i < len(blk.Body)-1 {
			c.errs.Add(diag.New(diag.MalformedBlock, s.Base().Loc, "return statement before the end of the block"))
		}
		if head == nil {
			head = stmt
		} else {
			tail.setNext(stmt)
		}
		tail = stmt
	}

	if tail == nil {
		c.errs.Add(diag.New(diag.MalformedBlock, blk.Loc, "empty block"))
	} else if _, ok := tail.(*Return); !ok {
		c.errs.Add(diag.New(diag.MalformedBlock, blk.Loc, "block does not terminate in a return statement"))
	}

	sb.Head = head
	return sb
}

func (c *Converter) convertExpr(e ast.Expression) Expression {
	switch ex := e.(type) {
	case *ast.ParenExpr:
		return c.convertExpr(ex.Expr)
	case *ast.Identifier:
		return &IdentifierExpr{Base: newBase(ex.Loc), Symbol: c.lookup(ex.Name, ex.Loc)}
	case *ast.IntegerLit:
		return &IntegerLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.UintLit:
		return &UintLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.FloatLit:
		return &FloatLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.StringLit:
		return &StringLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.BooleanLit:
		return &BooleanLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.RegexpLit:
		return &RegexpLit{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.DateTimeLit:
		return &DateTimeLit{Base: newBase(ex.Loc), Raw: ex.Raw}
	case *ast.DurationLit:
		return c.convertDuration(ex)
	case *ast.StringExpr:
		parts := make([]Expression, len(ex.Parts))
		for i, p := range ex.Parts {
			parts[i] = c.convertExpr(p)
		}
		return &StringExpr{Base: newBase(ex.Loc), Parts: parts}
	case *ast.TextPart:
		return &TextPart{Base: newBase(ex.Loc), Value: ex.Value}
	case *ast.InterpolatedPart:
		return c.convertExpr(ex.Expr)
	case *ast.ArrayExpr:
		els := make([]Expression, len(ex.Elements))
		for i, el := range ex.Elements {
			els[i] = c.convertExpr(el)
		}
		return &ArrayExpr{Base: newBase(ex.Loc), Elements: els}
	case *ast.DictExpr:
		items := make([]DictItem, len(ex.Elements))
		for i, it := range ex.Elements {
			items[i] = DictItem{Key: c.convertExpr(it.Key), Val: c.convertExpr(it.Val)}
		}
		return &DictExpr{Base: newBase(ex.Loc), Elements: items}
	case *ast.ObjectExpr:
		return c.convertObject(ex)
	case *ast.FunctionExpr:
		return c.convertFunction(ex)
	case *ast.LogicalExpr:
		return &LogicalExpr{Base: newBase(ex.Loc), Operator: ex.Operator, Left: c.convertExpr(ex.Left), Right: c.convertExpr(ex.Right)}
	case *ast.MemberExpr:
		return &MemberExpr{Base: newBase(ex.Loc), Object: c.convertExpr(ex.Object), Property: ex.Property.Name}
	case *ast.IndexExpr:
		return &IndexExpr{Base: newBase(ex.Loc), Array: c.convertExpr(ex.Array), Index: c.convertExpr(ex.Index)}
	case *ast.BinaryExpr:
		return &BinaryExpr{Base: newBase(ex.Loc), Operator: ex.Operator, Left: c.convertExpr(ex.Left), Right: c.convertExpr(ex.Right)}
	case *ast.UnaryExpr:
		return &UnaryExpr{Base: newBase(ex.Loc), Operator: ex.Operator, Argument: c.convertExpr(ex.Argument)}
	case *ast.CallExpr:
		return c.convertCall(ex, nil)
	case *ast.PipeExpr:
		pipeArg := c.convertExpr(ex.Argument)
		return c.convertCall(ex.Call, pipeArg)
	case *ast.ConditionalExpr:
		return &ConditionalExpr{Base: newBase(ex.Loc), Test: c.convertExpr(ex.Test), Consequent: c.convertExpr(ex.Consequent), Alternate: c.convertExpr(ex.Alternate)}
	default:
		loc := e.Base().Loc
		return &StringLit{Base: newBase(loc), Value: "<invalid>"}
	}
}

func (c *Converter) convertDuration(ex *ast.DurationLit) Expression {
	months, nanos, neg, ok := foldDuration(ex.Raw)
	if !ok {
		c.errs.Add(diag.New(diag.InvalidDuration, ex.Loc, "invalid duration literal %q", ex.Raw))
	}
	return &DurationLit{Base: newBase(ex.Loc), Months: months, Nanoseconds: nanos, Negative: neg || ex.Negative}
}

func (c *Converter) convertObject(ex *ast.ObjectExpr) Expression {
	var with Expression
	if ex.With != nil {
		with = &IdentifierExpr{Base: newBase(ex.With.Loc), Symbol: c.lookup(ex.With.Name, ex.With.Loc)}
	}
	props := make([]PropertyItem, 0, len(ex.Properties))
	for _, p := range ex.Properties {
		name := propKeyName(p.Key)
		var val Expression
		switch {
		case p.Value != nil:
			val = c.convertExpr(p.Value)
		default:
			if id, ok := p.Key.(*ast.Identifier); ok {
				val = &IdentifierExpr{Base: newBase(p.Loc), Symbol: c.lookup(id.Name, p.Loc)}
			}
		}
		props = append(props, PropertyItem{Key: name, Value: val})
	}
	return &ObjectExpr{Base: newBase(ex.Loc), With: with, Properties: props}
}

func (c *Converter) convertCall(call *ast.CallExpr, pipe Expression) Expression {
	args := make([]PropertyItem, len(call.Arguments))
	for i, a := range call.Arguments {
		var val Expression
		if a.Value != nil {
			val = c.convertExpr(a.Value)
		}
		args[i] = PropertyItem{Key: propKeyName(a.Key), Value: val}
	}
	return &CallExpr{Base: newBase(call.Loc), Callee: c.convertExpr(call.Callee), Arguments: args, Pipe: pipe}
}

func propKeyName(k ast.PropertyKey) string {
	switch key := k.(type) {
	case *ast.Identifier:
		return key.Name
	case *ast.StringLit:
		return key.Value
	default:
		return ""
	}
}

// convertFunction lowers a function literal, binding a fresh Symbol per
// parameter in a child scope and normalizing a bare-expression body into a
// one-statement Block.
func (c *Converter) convertFunction(fn *ast.FunctionExpr) Expression {
	c.pushScope()
	defer c.popScope()

	params := make([]Param, len(fn.Params))
	for i, p := range fn.Params {
		name := "_"
		if id, ok := p.Key.(*ast.Identifier); ok {
			name = id.Name
		}
		var def Expression
		if p.Value != nil {
			def = c.convertExpr(p.Value)
		}
		params[i] = Param{Symbol: c.bind(name), Default: def, Pipe: p.Pipe}
	}

	var body *Block
	switch b := fn.Body.(type) {
	case *ast.Block:
		body = c.convertBlock(b)
	case ast.Expression:
		loc := b.Base().Loc
		ret := &Return{linkable: linkable{Base: newBase(loc)}, Argument: c.convertExpr(b)}
		body = &Block{Base: newBase(loc), Head: ret}
	default:
		body = &Block{Base: newBase(fn.Loc)}
		c.errs.Add(diag.New(diag.MalformedBlock, fn.Loc, "missing function body"))
	}

	return &FunctionExpr{Base: newBase(fn.Loc), Params: params, Body: body}
}
