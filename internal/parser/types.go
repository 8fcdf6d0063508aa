package parser

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/token"
)

// parseTypeExpr parses the surface syntax of a builtin type annotation,
// including polymorphic function signatures, e.g.
// `(<-x: [A], fn: (x: A) => B) => [B]`.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	start := p.cur
	switch {
	case p.curIs(token.LBRACK):
		return p.parseArrayOrDictType(start)
	case p.curIs(token.LBRACE):
		return p.parseRecordType(start)
	case p.curIs(token.LPAREN):
		return p.parseFunctionType(start)
	case p.curIs(token.IDENT):
		return p.parseNamedOrVarType(start)
	default:
		bad := &ast.NamedType{Name: "<invalid>"}
		bad.AddError("expected type expression, got " + p.cur.Kind.String())
		bad.Loc = p.loc(start, p.cur)
		p.next()
		return bad
	}
}

func (p *Parser) parseArrayOrDictType(start token.Token) ast.TypeExpr {
	p.next() // consume '['
	elem := p.parseTypeExpr()
	if p.curIs(token.COLON) {
		p.next()
		val := p.parseTypeExpr()
		d := &ast.DictType{Key: elem, Val: val}
		p.expect(&d.BaseNode, token.RBRACK, "dict type")
		d.Loc = p.loc(start, p.cur)
		return d
	}
	a := &ast.ArrayType{Element: elem}
	p.expect(&a.BaseNode, token.RBRACK, "array type")
	a.Loc = p.loc(start, p.cur)
	return a
}

// parseNamedOrVarType distinguishes a bare type-variable name (a single
// uppercase letter, per the builtin signature convention) from a concrete
// named type, and parses any trailing `: Kind + Kind` constraint list.
func (p *Parser) parseNamedOrVarType(start token.Token) ast.TypeExpr {
	name := p.cur.Lexeme
	p.next()

	if isTypeVarName(name) {
		t := &ast.TVarType{Name: name}
		if p.curIs(token.COLON) {
			p.next()
			t.Constraints = p.parseKindConstraints()
		}
		t.Loc = p.loc(start, p.cur)
		return t
	}
	t := &ast.NamedType{Name: name}
	t.Loc = p.loc(start, p.cur)
	return t
}

func isTypeVarName(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseKindConstraints() []string {
	var names []string
	if p.curIs(token.IDENT) {
		names = append(names, p.cur.Lexeme)
		p.next()
	}
	for p.curIs(token.ADD) {
		p.next()
		if p.curIs(token.IDENT) {
			names = append(names, p.cur.Lexeme)
			p.next()
		}
	}
	return names
}

func (p *Parser) parseRecordType(start token.Token) ast.TypeExpr {
	p.next() // consume '{'
	rt := &ast.RecordType{}
	if p.curIs(token.IDENT) && p.peek.Kind == token.IDENT && p.peek.Lexeme == "with" {
		rt.Tail = p.cur.Lexeme
		p.next()
		p.next() // consume 'with'
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		name := p.cur.Lexeme
		p.next()
		p.expect(&rt.BaseNode, token.COLON, "record type field")
		typ := p.parseTypeExpr()
		rt.Properties = append(rt.Properties, ast.RecordProperty{Name: name, Type: typ})
		if p.curIs(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(&rt.BaseNode, token.RBRACE, "record type")
	rt.Loc = p.loc(start, p.cur)
	return rt
}

func (p *Parser) parseFunctionType(start token.Token) ast.TypeExpr {
	p.next() // consume '('
	ft := &ast.FunctionType{}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		param := ast.FunctionParamType{}
		if p.curIs(token.PIPE_RECEIVE) {
			param.Pipe = true
			p.next()
		}
		param.Name = p.cur.Lexeme
		p.next()
		if p.curIs(token.QUESTION) {
			param.Optional = true
			p.next()
		}
		p.expect(&ft.BaseNode, token.COLON, "function type parameter")
		param.Type = p.parseTypeExpr()
		ft.Params = append(ft.Params, param)
		if p.curIs(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(&ft.BaseNode, token.RPAREN, "function type parameters")
	if p.expect(&ft.BaseNode, token.ARROW, "function type") {
		ft.Return = p.parseTypeExpr()
	} else {
		ft.Return = &ast.NamedType{Name: "<invalid>"}
	}
	ft.Loc = p.loc(start, p.cur)
	return ft
}
