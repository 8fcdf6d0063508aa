package parser

import (
	"fmt"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/token"
)

func (p *Parser) parseFile() *ast.File {
	file := &ast.File{Name: p.fname}
	startTok := p.cur

	attrs := p.parseAttributes()
	if p.curIs(token.PACKAGE) {
		file.Package = p.parsePackageClause()
		file.Package.Attributes = attrs
		attrs = p.parseAttributes()
	}

	for p.curIs(token.IMPORT) {
		imp := p.parseImportDeclaration()
		imp.Attributes = attrs
		attrs = p.parseAttributes()
		file.Imports = append(file.Imports, imp)
	}

	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			if len(attrs) > 0 {
				stmt.Base().Attributes = append(attrs, stmt.Base().Attributes...)
				attrs = nil
			}
			file.Body = append(file.Body, stmt)
		}
	}

	file.Loc = p.loc(startTok, p.cur)
	collectFileErrors(file)
	return file
}

// collectFileErrors walks the parsed tree and gathers every node's
// recovery diagnostics onto the file itself, so a caller can observe
// "this file had syntax errors" without walking the tree a second time.
// Node-level Errors (Bad* nodes, missing-token recoveries) stay where the
// parser put them; this only mirrors them up to file.Errors. ast.Walk does
// not descend into a builtin statement's type expression or into attribute
// arguments, so errors recorded there are not mirrored.
func collectFileErrors(file *ast.File) {
	ast.Walk(ast.VisitorFunc(func(n ast.Node) bool {
		base := n.Base()
		if base == file.Base() {
			return true
		}
		for _, msg := range base.Errors {
			loc := base.Loc
			file.Errors = append(file.Errors, fmt.Sprintf("%d:%d: %s", loc.Start.Line, loc.Start.Column, msg))
		}
		return true
	}), file)
}

func (p *Parser) parseAttributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.curIs(token.AT) {
		start := p.cur
		p.next()
		name := p.cur.Lexeme
		p.next()
		var args []ast.Expression
		if p.curIs(token.LPAREN) {
			p.next()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				args = append(args, p.parseExpression(lowest))
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			if p.curIs(token.RPAREN) {
				p.next()
			}
		}
		attrs = append(attrs, &ast.Attribute{Name: name, Args: args, Loc: p.loc(start, p.cur)})
	}
	return attrs
}

func (p *Parser) parsePackageClause() *ast.PackageClause {
	start := p.cur
	p.next() // consume 'package'
	name := p.parseIdentifier()
	pc := &ast.PackageClause{Name: name}
	pc.Loc = p.loc(start, p.cur)
	p.attachComments(&pc.BaseNode, p.curComments)
	return pc
}

func (p *Parser) parseImportDeclaration() *ast.ImportDeclaration {
	start := p.cur
	p.next() // consume 'import'
	decl := &ast.ImportDeclaration{}
	if p.curIs(token.IDENT) {
		decl.Alias = p.parseIdentifier()
	}
	if p.curIs(token.STRING) {
		decl.Path = &ast.StringLit{Value: p.cur.Literal.(string)}
		decl.Path.Loc = p.loc(p.cur, p.cur)
		p.next()
	} else {
		decl.Path = &ast.StringLit{Value: ""}
		decl.AddError("expected import path string")
	}
	decl.Loc = p.loc(start, p.cur)
	return decl
}

// parseStatement dispatches on the current token. It always consumes at
// least one token, guaranteeing the caller's loop over statements
// terminates.
func (p *Parser) parseStatement() ast.Statement {
	attrs := p.parseAttributes()
	start := p.cur

	var stmt ast.Statement
	switch {
	case p.curIs(token.OPTION):
		stmt = p.parseOptionStatement()
	case p.curIs(token.BUILTIN):
		stmt = p.parseBuiltinStatement()
	case p.curIs(token.TEST) && p.isTestAssignmentAhead():
		stmt = p.parseTestStatement()
	case p.curIs(token.TESTCASE):
		stmt = p.parseTestCaseStatement()
	case p.curIs(token.RETURN):
		stmt = p.parseReturnStatement()
	case p.curIs(token.IDENT) && p.peekIs(token.ASSIGN):
		stmt = p.parseVariableAssignment()
	default:
		stmt = p.parseExprStatement()
	}

	base := stmt.Base()
	base.Attributes = attrs
	if base.Loc.Start == (ast.Position{}) {
		base.Loc = p.loc(start, p.prevEndToken())
	}
	p.attachComments(base, p.curComments)
	return stmt
}

// prevEndToken is a best-effort "last consumed token" stand-in used only
// for location spans; cur is always the lookahead token that follows the
// statement just parsed.
func (p *Parser) prevEndToken() token.Token { return p.cur }

func (p *Parser) isTestAssignmentAhead() bool {
	// `test` can start either a TestStmt (`test x = ...`) or simply be used
	// as an identifier bound elsewhere; in this grammar it is reserved, so
	// TEST always introduces a TestStmt.
	return true
}

func (p *Parser) parseOptionStatement() *ast.OptionStmt {
	start := p.cur
	p.next() // consume 'option'
	assign := p.parseAssignmentTail()
	opt := &ast.OptionStmt{Assignment: assign}
	opt.Loc = p.loc(start, p.cur)
	return opt
}

func (p *Parser) parseTestStatement() *ast.TestStmt {
	start := p.cur
	p.next() // consume 'test'
	assign := p.parseAssignmentTail()
	t := &ast.TestStmt{Assignment: assign}
	t.Loc = p.loc(start, p.cur)
	return t
}

func (p *Parser) parseTestCaseStatement() *ast.TestCaseStmt {
	start := p.cur
	p.next() // consume 'testcase'
	id := p.parseIdentifier()
	tc := &ast.TestCaseStmt{ID: id}
	if p.curIs(token.EXTENDS) {
		p.next()
		if p.curIs(token.STRING) {
			tc.Extends = &ast.StringLit{Value: p.cur.Literal.(string)}
			tc.Extends.Loc = p.loc(p.cur, p.cur)
			p.next()
		}
	}
	tc.Block = p.parseBlock()
	tc.Loc = p.loc(start, p.cur)
	return tc
}

func (p *Parser) parseBuiltinStatement() *ast.BuiltinStmt {
	start := p.cur
	p.next() // consume 'builtin'
	id := p.parseIdentifier()
	b := &ast.BuiltinStmt{ID: id}
	if p.expect(&b.BaseNode, token.COLON, "builtin type annotation") {
		b.TypeExpr = p.parseTypeExpr()
	}
	b.Loc = p.loc(start, p.cur)
	return b
}

func (p *Parser) parseVariableAssignment() *ast.VariableAssgn {
	start := p.cur
	v := p.parseAssignmentTail()
	v.Loc = p.loc(start, p.cur)
	return v
}

// parseAssignmentTail parses `id = expr` starting at the identifier.
func (p *Parser) parseAssignmentTail() *ast.VariableAssgn {
	id := p.parseIdentifier()
	v := &ast.VariableAssgn{ID: id}
	if p.expect(&v.BaseNode, token.ASSIGN, "variable assignment") {
		v.Init = p.parseExpression(lowest)
	} else {
		v.Init = p.badExpr("missing initializer")
	}
	return v
}

func (p *Parser) parseReturnStatement() *ast.ReturnStmt {
	start := p.cur
	p.next() // consume 'return'
	r := &ast.ReturnStmt{Argument: p.parseExpression(lowest)}
	r.Loc = p.loc(start, p.cur)
	return r
}

func (p *Parser) parseExprStatement() ast.Statement {
	start := p.cur
	expr := p.parseExpression(lowest)
	s := &ast.ExprStmt{Expr: expr}
	s.Loc = p.loc(start, p.cur)
	return s
}

// parseBlock parses `{ stmt* }`. The converter later requires that every
// block terminate in exactly one Return; the parser itself
// only checks for balanced braces, recording a MalformedBlock-flavored
// error on the Block otherwise.
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur
	blk := &ast.Block{}
	if !p.expect(&blk.BaseNode, token.LBRACE, "block") {
		blk.Loc = p.loc(start, p.cur)
		return blk
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			blk.Body = append(blk.Body, stmt)
		}
	}
	p.expect(&blk.BaseNode, token.RBRACE, "block")
	blk.Loc = p.loc(start, p.cur)
	return blk
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	start := p.cur
	if !p.curIs(token.IDENT) {
		id := &ast.Identifier{Name: "<invalid>"}
		id.AddError("expected identifier, got " + p.cur.Kind.String())
		id.Loc = p.loc(start, p.cur)
		return id
	}
	id := &ast.Identifier{Name: p.cur.Lexeme}
	id.Loc = p.loc(start, p.cur)
	p.next()
	return id
}

func (p *Parser) badExpr(msg string) *ast.BadExpr {
	b := &ast.BadExpr{Text: msg}
	b.AddError(msg)
	b.Loc = p.loc(p.cur, p.cur)
	return b
}
