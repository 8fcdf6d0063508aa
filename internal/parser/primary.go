package parser

import (
	"strings"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/scanner"
	"github.com/fluxlang/fluxc/internal/token"
)

// parsePrimary parses the atoms of the grammar: identifiers, literals,
// array/dict/object/function literals, and parenthesized expressions. Every
// branch consumes at least one token, so an unrecognized token still leaves
// the caller's loop making progress.
func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur
	switch {
	case p.curIs(token.IDENT):
		if p.cur.Lexeme == "true" || p.cur.Lexeme == "false" {
			b := &ast.BooleanLit{Value: p.cur.Lexeme == "true"}
			b.Loc = p.loc(start, p.cur)
			p.next()
			return b
		}
		return p.parseIdentifier()
	case p.curIs(token.INT):
		v, _ := p.cur.Literal.(int64)
		lit := &ast.IntegerLit{Value: v}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.UINT):
		v, _ := p.cur.Literal.(uint64)
		lit := &ast.UintLit{Value: v}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.FLOAT):
		v, _ := p.cur.Literal.(float64)
		lit := &ast.FloatLit{Value: v}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.STRING):
		return p.parseStringExpr(start)
	case p.curIs(token.REGEX):
		v, _ := p.cur.Literal.(string)
		lit := &ast.RegexpLit{Value: v}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.DURATION):
		lit := &ast.DurationLit{Raw: p.cur.Lexeme}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.TIME):
		lit := &ast.DateTimeLit{Raw: p.cur.Lexeme}
		lit.Loc = p.loc(start, p.cur)
		p.next()
		return lit
	case p.curIs(token.LBRACK):
		return p.parseArrayOrDictExpr(start)
	case p.curIs(token.LBRACE):
		return p.parseObjectExpr(start)
	case p.curIs(token.LPAREN):
		if p.isFunctionLiteralAhead() {
			return p.parseFunctionExpr(start)
		}
		return p.parseParenExpr(start)
	default:
		b := p.badExpr("unexpected token " + p.cur.Kind.String())
		p.next()
		return b
	}
}

// isFunctionLiteralAhead decides whether the parenthesized group starting at
// cur is a function literal's parameter list, by scanning ahead with an
// independent scanner over the remaining source and checking whether the
// matching ')' is followed by '=>'. This avoids needing arbitrary token
// backtracking in the main scanner.
func (p *Parser) isFunctionLiteralAhead() bool {
	if p.cur.ByteOffset >= len(p.src) {
		return false
	}
	look := scanner.New(p.src[p.cur.ByteOffset:])
	depth := 0
	tokenCount := 0
	for {
		tok := look.ScanWithRegex()
		tokenCount++
		switch tok.Kind {
		case token.EOF:
			return false
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				if tokenCount == 2 {
					// `()` with nothing between the parens: the grammar has
					// no empty parenthesized value expression, so this can
					// only be an (incomplete) function literal's parameter
					// list, arrow or not.
					return true
				}
				return look.ScanWithRegex().Kind == token.ARROW
			}
		}
	}
}

// parseStringExpr turns a scanned STRING token into either a plain StringLit
// or, when it contains `${...}` holes, a StringExpr whose interpolated parts
// are re-parsed as independent expressions via ParseFile.
func (p *Parser) parseStringExpr(start token.Token) ast.Expression {
	raw, _ := p.cur.Literal.(string)
	p.next()

	if !strings.Contains(raw, "${") {
		lit := &ast.StringLit{Value: raw}
		lit.Loc = p.loc(start, start)
		return lit
	}

	se := &ast.StringExpr{}
	i := 0
	for i < len(raw) {
		idx := strings.Index(raw[i:], "${")
		if idx < 0 {
			se.Parts = append(se.Parts, &ast.TextPart{Value: raw[i:]})
			break
		}
		if idx > 0 {
			se.Parts = append(se.Parts, &ast.TextPart{Value: raw[i : i+idx]})
		}
		holeStart := i + idx + 2
		depth := 1
		j := holeStart
		for j < len(raw) && depth > 0 {
			switch raw[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		inner := raw[holeStart:j]
		se.Parts = append(se.Parts, &ast.InterpolatedPart{Expr: parseInterpolationHole(p.fname, inner)})
		if j >= len(raw) {
			i = j
			break
		}
		i = j + 1
	}
	se.Loc = p.loc(start, start)
	return se
}

// parseInterpolationHole parses the text between `${` and `}` as a single
// expression. A hole that is not exactly one expression statement becomes a
// BadExpr rather than failing the whole string.
func parseInterpolationHole(fname, src string) ast.Expression {
	file := ParseFile(fname, src)
	if len(file.Body) == 1 {
		if es, ok := file.Body[0].(*ast.ExprStmt); ok {
			return es.Expr
		}
	}
	bad := &ast.BadExpr{Text: src}
	bad.AddError("interpolation hole is not a single expression")
	return bad
}

func (p *Parser) parseArrayOrDictExpr(start token.Token) ast.Expression {
	p.next() // consume '['
	if p.curIs(token.COLON) {
		p.next()
		d := &ast.DictExpr{}
		p.expect(&d.BaseNode, token.RBRACK, "dict literal")
		d.Loc = p.loc(start, p.cur)
		return d
	}
	if p.curIs(token.RBRACK) {
		a := &ast.ArrayExpr{}
		p.next()
		a.Loc = p.loc(start, p.cur)
		return a
	}

	first := p.parseExpression(lowest)
	if p.curIs(token.COLON) {
		p.next()
		val := p.parseExpression(lowest)
		d := &ast.DictExpr{Elements: []ast.DictItem{{Key: first, Val: val}}}
		for p.curIs(token.COMMA) {
			p.next()
			if p.curIs(token.RBRACK) {
				break
			}
			k := p.parseExpression(lowest)
			p.expect(&d.BaseNode, token.COLON, "dict literal")
			v := p.parseExpression(lowest)
			d.Elements = append(d.Elements, ast.DictItem{Key: k, Val: v})
		}
		p.expect(&d.BaseNode, token.RBRACK, "dict literal")
		d.Loc = p.loc(start, p.cur)
		return d
	}

	a := &ast.ArrayExpr{Elements: []ast.Expression{first}}
	for p.curIs(token.COMMA) {
		p.next()
		if p.curIs(token.RBRACK) {
			break
		}
		a.Elements = append(a.Elements, p.parseExpression(lowest))
	}
	p.expect(&a.BaseNode, token.RBRACK, "array literal")
	a.Loc = p.loc(start, p.cur)
	return a
}

func (p *Parser) parseObjectExpr(start token.Token) ast.Expression {
	p.next() // consume '{'
	o := &ast.ObjectExpr{}
	if p.curIs(token.IDENT) && p.peek.Kind == token.IDENT && p.peek.Lexeme == "with" {
		o.With = p.parseIdentifier()
		p.next() // consume 'with'
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		o.Properties = append(o.Properties, p.parseObjectProperty())
		if p.curIs(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(&o.BaseNode, token.RBRACE, "object literal")
	o.Loc = p.loc(start, p.cur)
	return o
}

func (p *Parser) parseObjectProperty() *ast.Property {
	start := p.cur
	var key ast.PropertyKey
	if p.curIs(token.STRING) {
		v, _ := p.cur.Literal.(string)
		s := &ast.StringLit{Value: v}
		s.Loc = p.loc(p.cur, p.cur)
		p.next()
		key = s
	} else {
		key = p.parseIdentifier()
	}
	prop := &ast.Property{Key: key}
	if p.curIs(token.COLON) {
		p.next()
		prop.Value = p.parseExpression(lowest)
	}
	prop.Loc = p.loc(start, p.cur)
	return prop
}

func (p *Parser) parseParenExpr(start token.Token) ast.Expression {
	p.next() // consume '('
	inner := p.parseExpression(lowest)
	pe := &ast.ParenExpr{Expr: inner}
	p.expect(&pe.BaseNode, token.RPAREN, "parenthesized expression")
	pe.Loc = p.loc(start, p.cur)
	return pe
}

func (p *Parser) parseFunctionExpr(start token.Token) ast.Expression {
	p.next() // consume '('
	fn := &ast.FunctionExpr{}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		fn.Params = append(fn.Params, p.parseFunctionParam())
		if p.curIs(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(&fn.BaseNode, token.RPAREN, "function parameters")
	if p.expect(&fn.BaseNode, token.ARROW, "function literal") {
		if p.curIs(token.LBRACE) {
			fn.Body = p.parseBlock()
		} else {
			fn.Body = p.parseExpression(lowest)
		}
	} else {
		fn.Body = p.badExpr("missing function body")
	}
	fn.Loc = p.loc(start, p.cur)
	return fn
}

// parseFunctionParam parses `<-name`, `name`, or `name = default`. Explicit
// inline type annotations are not part of function-literal syntax (only
// builtin declarations carry a TypeExpr); the type comes from inference.
func (p *Parser) parseFunctionParam() *ast.Property {
	start := p.cur
	prop := &ast.Property{}
	if p.curIs(token.PIPE_RECEIVE) {
		prop.Pipe = true
		p.next()
	}
	prop.Key = p.parseIdentifier()
	if p.curIs(token.ASSIGN) {
		p.next()
		prop.Value = p.parseExpression(lowest)
	}
	prop.Loc = p.loc(start, p.cur)
	return prop
}
