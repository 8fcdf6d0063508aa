// Package parser implements a recursive-descent, infallible parser for
// Flux source text. Every grammatical error becomes either an entry in
// the nearest node's Errors or a Bad* AST variant; the parser never
// rejects input outright.
package parser

import (
	"fmt"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/scanner"
	"github.com/fluxlang/fluxc/internal/token"
)

// precedence levels, loosest-binding first (a higher value binds tighter).
const (
	_ int = iota
	lowest
	precConditional // if/then/else
	precPipe        // |>
	precOr          // or
	precAnd         // and
	precCompare     // == != < <= > >= =~ !~ in startswith
	precAdd         // + -
	precMul         // * / %
	precPow         // ^
	precUnary       // - + not exists
	precCall        // call, member, index
)

var binaryPrecedence = map[token.Type]int{
	token.OR:           precOr,
	token.AND:          precAnd,
	token.EQ:           precCompare,
	token.NEQ:          precCompare,
	token.LT:           precCompare,
	token.LTE:          precCompare,
	token.GT:           precCompare,
	token.GTE:          precCompare,
	token.REGEXEQ:      precCompare,
	token.REGEXNEQ:     precCompare,
	token.IN:           precCompare,
	token.STARTSWITH:   precCompare,
	token.ADD:          precAdd,
	token.SUB:          precAdd,
	token.MUL:          precMul,
	token.DIV:          precMul,
	token.MOD:          precMul,
	token.POW:          precPow,
	token.PIPE_FORWARD: precPipe,
}

// regexContext reports whether, immediately after producing prev, a `/`
// can only begin a regex literal (never division).
func regexContext(prev token.Type) bool {
	switch prev {
	case token.ADD, token.SUB, token.MUL, token.DIV, token.MOD, token.POW,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.REGEXEQ, token.REGEXNEQ, token.ASSIGN,
		token.LPAREN, token.LBRACK, token.LBRACE, token.COMMA, token.COLON,
		token.ARROW, token.PIPE_FORWARD, token.PIPE_RECEIVE,
		token.AND, token.OR, token.NOT, token.RETURN,
		token.IF, token.THEN, token.ELSE:
		return true
	default:
		return false
	}
}

// Parser consumes a token stream and builds a File. It never panics and
// never returns an error from its public entry point; diagnostics are
// embedded in the tree.
type Parser struct {
	sc    *scanner.Scanner
	fname string
	src   string

	cur, peek           token.Token
	curComments         []ast.Comment
	depth               int
}

const maxRecursionDepth = 250

// ParseFile parses source into a File. It always returns a non-nil File,
// possibly containing Bad* nodes and node-level diagnostics.
func ParseFile(name, source string) *ast.File {
	p := &Parser{sc: scanner.New(source), fname: name, src: source}
	p.peek = p.sc.ScanWithRegex() // the very first token: regex is always possible at start of input
	p.next()                      // prime cur with that token and fetch the real second token
	return p.parseFile()
}

func (p *Parser) scanTok(allowRegex bool) token.Token {
	if allowRegex {
		return p.sc.ScanWithRegex()
	}
	return p.sc.Scan()
}

// next shifts the lookahead window forward by one token, choosing division
// or regex disambiguation for the new peek based on the token now in cur.
func (p *Parser) next() {
	p.cur = p.peek
	p.curComments = nil
	for _, c := range p.sc.TakeComments() {
		p.curComments = append(p.curComments, ast.Comment{Text: c.Text, Loc: ast.Location{
			File:  p.fname,
			Start: toPos(p.sc.Position(c.ByteOffset)),
			End:   toPos(p.sc.Position(c.ByteOffset + len(c.Text))),
		}})
	}
	allow := regexContext(p.cur.Kind)
	p.peek = p.scanTok(allow)
}

func (p *Parser) curIs(k token.Type) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Type) bool { return p.peek.Kind == k }

func (p *Parser) loc(start, end token.Token) ast.Location {
	return ast.Location{
		File:  p.fname,
		Start: toPos(p.sc.Position(start.ByteOffset)),
		End:   toPos(p.sc.Position(end.ByteOffset + len(end.Lexeme))),
	}
}

func toPos(pos scanner.Position) ast.Position {
	return ast.Position{Line: pos.Line, Column: pos.Column}
}

// attachComments moves any comments collected while scanning up to (but
// not including) the current token onto base, the semantically nearest
// node.
func (p *Parser) attachComments(base *ast.BaseNode, comments []ast.Comment) {
	base.Comments = append(base.Comments, comments...)
}

// expect consumes cur if it matches k, recording a diagnostic on base and
// returning false otherwise. The caller decides how to recover.
func (p *Parser) expect(base *ast.BaseNode, k token.Type, context string) bool {
	if p.curIs(k) {
		p.next()
		return true
	}
	base.AddError(fmt.Sprintf("expected %s, got %s (%s)", k, p.cur.Kind, context))
	return false
}

// skipToSync advances past tokens until a synchronization point: a
// statement terminator is implicit in this grammar (no semicolons), so we
// synchronize on the next identifier-at-start-of-line heuristic by instead
// skipping to one of the bracket closers or EOF.
func (p *Parser) skipToSync() {
	for !p.curIs(token.EOF) && !p.curIs(token.RBRACE) && !p.curIs(token.RBRACK) && !p.curIs(token.RPAREN) {
		p.next()
	}
}

func (p *Parser) enter() bool {
	p.depth++
	return p.depth <= maxRecursionDepth
}

func (p *Parser) leave() { p.depth-- }
