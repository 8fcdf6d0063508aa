package parser

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/token"
)

// parseExpression implements precedence-climbing: conditional binds
// loosest, then |>, or, and, comparisons, + -, * / %, ^, unary, then
// call/member/index tightest.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	if !p.enter() {
		defer p.leave()
		return p.badExpr("expression too deeply nested")
	}
	defer p.leave()

	start := p.cur
	left := p.parseUnary(start)

	for {
		if p.curIs(token.IF) && minPrec < precConditional {
			left = p.parseConditional(start)
			continue
		}
		prec, ok := binaryPrecedence[p.cur.Kind]
		if !ok || prec <= minPrec {
			break
		}
		left = p.parseInfix(start, left, prec)
	}
	return left
}

func (p *Parser) parseInfix(start token.Token, left ast.Expression, prec int) ast.Expression {
	op := p.cur
	p.next()
	right := p.parseExpression(prec)

	switch op.Kind {
	case token.AND:
		e := &ast.LogicalExpr{Operator: "and", Left: left, Right: right}
		e.Loc = p.loc(start, p.cur)
		return e
	case token.OR:
		e := &ast.LogicalExpr{Operator: "or", Left: left, Right: right}
		e.Loc = p.loc(start, p.cur)
		return e
	case token.PIPE_FORWARD:
		call, ok := right.(*ast.CallExpr)
		if !ok {
			b := p.badExpr("pipe target must be a call expression")
			b.Loc = p.loc(start, p.cur)
			return b
		}
		e := &ast.PipeExpr{Argument: left, Call: call}
		e.Loc = p.loc(start, p.cur)
		return e
	default:
		e := &ast.BinaryExpr{Operator: op.Lexeme, Left: left, Right: right}
		e.Loc = p.loc(start, p.cur)
		return e
	}
}

func (p *Parser) parseConditional(start token.Token) ast.Expression {
	p.next() // consume 'if'
	test := p.parseExpression(lowest)
	c := &ast.ConditionalExpr{Test: test}
	if p.expect(&c.BaseNode, token.THEN, "conditional") {
		c.Consequent = p.parseExpression(lowest)
	} else {
		c.Consequent = p.badExpr("missing then-branch")
	}
	if p.expect(&c.BaseNode, token.ELSE, "conditional") {
		c.Alternate = p.parseExpression(lowest)
	} else {
		c.Alternate = p.badExpr("missing else-branch")
	}
	c.Loc = p.loc(start, p.cur)
	return c
}

// parseUnary handles the prefix operators (- + not exists) before falling
// through to postfix (call/member/index), per precedence levels 1-2.
func (p *Parser) parseUnary(start token.Token) ast.Expression {
	switch p.cur.Kind {
	case token.SUB, token.ADD:
		op := p.cur.Lexeme
		p.next()
		arg := p.parseUnary(p.cur)
		u := &ast.UnaryExpr{Operator: op, Argument: arg}
		u.Loc = p.loc(start, p.cur)
		return u
	case token.NOT:
		p.next()
		arg := p.parseUnary(p.cur)
		u := &ast.UnaryExpr{Operator: "not", Argument: arg}
		u.Loc = p.loc(start, p.cur)
		return u
	case token.EXISTS:
		p.next()
		arg := p.parseUnary(p.cur)
		u := &ast.UnaryExpr{Operator: "exists", Argument: arg}
		u.Loc = p.loc(start, p.cur)
		return u
	default:
		return p.parsePostfix(start, p.parsePrimary())
	}
}

// parsePostfix handles call/member/index chains, the tightest-binding
// level.
func (p *Parser) parsePostfix(start token.Token, expr ast.Expression) ast.Expression {
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.next()
			prop := p.parseIdentifier()
			m := &ast.MemberExpr{Object: expr, Property: prop}
			m.Loc = p.loc(start, p.cur)
			expr = m
		case token.LBRACK:
			p.next()
			idx := p.parseExpression(lowest)
			ix := &ast.IndexExpr{Array: expr, Index: idx}
			p.expect(&ix.BaseNode, token.RBRACK, "index expression")
			ix.Loc = p.loc(start, p.cur)
			expr = ix
		case token.LPAREN:
			expr = p.parseCall(start, expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(start token.Token, callee ast.Expression) ast.Expression {
	p.next() // consume '('
	call := &ast.CallExpr{Callee: callee}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		arg := p.parseArgument()
		call.Arguments = append(call.Arguments, arg)
		if p.curIs(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(&call.BaseNode, token.RPAREN, "call arguments")
	call.Loc = p.loc(start, p.cur)
	return call
}

// parseArgument parses one `name: value` call argument.
func (p *Parser) parseArgument() *ast.Property {
	start := p.cur
	key := p.parseIdentifier()
	prop := &ast.Property{Key: key}
	if p.expect(&prop.BaseNode, token.COLON, "call argument") {
		prop.Value = p.parseExpression(lowest)
	} else {
		prop.AddError("missing argument value")
	}
	prop.Loc = p.loc(start, p.cur)
	return prop
}
