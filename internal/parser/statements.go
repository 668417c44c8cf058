package parser

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
)

// Statement conventions: every parseXxxStmt is entered with curTok at the
// statement's first token and leaves curTok at the next statement's first
// token (trailing ';' and block-closing '}' consumed).

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parseBlock parses a braced statement list. On entry curTok is '{'; the
// closing '}' is consumed. Statement-level errors recover inside the block
// so one pass reports every independent syntax error.
func (p *Parser) parseBlock() *ast.Block {
	start := p.curTok.Span
	p.nextToken() // move past '{'

	var stmts []ast.Stmt
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
			continue
		}
		p.recoverStmt()
	}

	if p.curTok.Type != lexer.RBRACE {
		p.reportExpected("'}'", p.curTok)
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	p.nextToken() // consume '}'

	return ast.NewBlock(p.arena, stmts, p.spanWithFilename(span))
}

// parseLetStmt parses: let mut? name (: type)? (= expr)? ;
// Annotation and initializer are both optional syntactically; the checker
// rejects a let that has neither.
func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.curTok.Span

	mutable := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		mutable = true
	}

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))

	var typ *ast.TypeRef
	if p.peekTok.Type == lexer.COLON {
		p.nextToken() // move to ':'
		if !p.expect(lexer.IDENT) {
			return nil
		}
		typ = ast.NewTypeRef(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
	}

	var value ast.Expr
	if p.peekTok.Type == lexer.ASSIGN {
		p.nextToken() // move to '='
		p.nextToken() // move to expression start
		value = p.parseExpr()
		if value == nil {
			return nil
		}
	}

	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	p.nextToken()

	return ast.NewLetStmt(p.arena, mutable, name, typ, value, p.spanWithFilename(span))
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.curTok.Span

	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken() // move to ';'
		span := mergeSpan(start, p.curTok.Span)
		p.nextToken()
		return ast.NewReturnStmt(p.arena, nil, p.spanWithFilename(span))
	}

	p.nextToken()

	value := p.parseExpr()
	if value == nil {
		return nil
	}

	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	p.nextToken()

	return ast.NewReturnStmt(p.arena, value, p.spanWithFilename(span))
}

// parseIfStmt parses an if statement. The else branch is either a block or
// a nested if, which yields else-if chaining.
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.curTok.Span

	p.nextToken() // move to condition start

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	then := p.parseBlock()
	if then == nil {
		return nil
	}

	span := mergeSpan(start, then.Span())

	var elseStmt ast.Stmt
	if p.curTok.Type == lexer.ELSE {
		switch p.peekTok.Type {
		case lexer.IF:
			p.nextToken() // move to 'if'
			elseStmt = p.parseIfStmt()
		case lexer.LBRACE:
			p.nextToken() // move to '{'
			elseStmt = p.parseBlock()
		default:
			p.reportExpected("'if' or '{' after 'else'", p.peekTok)
			return nil
		}
		if elseStmt == nil {
			return nil
		}
		span = mergeSpan(span, elseStmt.Span())
	}

	return ast.NewIfStmt(p.arena, cond, then, elseStmt, p.spanWithFilename(span))
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.curTok.Span

	p.nextToken() // move to condition start

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body.Span())
	return ast.NewWhileStmt(p.arena, cond, body, p.spanWithFilename(span))
}

// parseForStmt parses: for (name in lo..hi) block
// The range is an explicit grammar rule of the for header, not a general
// infix operator; '..' is rejected anywhere else.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.curTok.Span

	if !p.expect(lexer.LPAREN) {
		return nil
	}
	if !p.expect(lexer.IDENT) {
		return nil
	}
	loopVar := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))

	if !p.expect(lexer.IN) {
		return nil
	}

	p.nextToken() // move to low bound

	low := p.parseExpr()
	if low == nil {
		return nil
	}

	if !p.expect(lexer.RANGE) {
		return nil
	}

	p.nextToken() // move to high bound

	high := p.parseExpr()
	if high == nil {
		return nil
	}

	rngSpan := mergeSpan(low.Span(), high.Span())
	rng := ast.NewRangeExpr(p.arena, low, high, p.spanWithFilename(rngSpan))

	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body.Span())
	return ast.NewForStmt(p.arena, loopVar, rng, body, p.spanWithFilename(span))
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	span := mergeSpan(expr.Span(), p.curTok.Span)
	p.nextToken()

	return ast.NewExprStmt(p.arena, expr, p.spanWithFilename(span))
}
