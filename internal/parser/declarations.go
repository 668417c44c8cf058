package parser

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
)

// parseFnDecl parses: fn name(params?) (-> type)? block
func (p *Parser) parseFnDecl() ast.Item {
	start := p.curTok.Span

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))

	if !p.expect(lexer.LPAREN) {
		return nil
	}

	params := p.parseParams()
	if params == nil && p.curTok.Type != lexer.RPAREN {
		return nil
	}

	var returnType *ast.TypeRef
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken() // move to '->'
		if !p.expect(lexer.IDENT) {
			return nil
		}
		returnType = ast.NewTypeRef(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	span := mergeSpan(start, body.Span())
	return ast.NewFnDecl(p.arena, name, params, returnType, body, span)
}

// parseParams parses a parameter list. On entry curTok is '('; on exit
// curTok is ')'. Returns an empty (non-nil) slice for an empty list.
func (p *Parser) parseParams() []*ast.Param {
	params := make([]*ast.Param, 0)

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return params
	}

	for {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		nameTok := p.curTok
		name := ast.NewIdent(p.arena, nameTok.Literal, p.spanWithFilename(nameTok.Span))

		if !p.expect(lexer.COLON) {
			return nil
		}
		if !p.expect(lexer.IDENT) {
			return nil
		}
		typ := ast.NewTypeRef(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))

		span := mergeSpan(nameTok.Span, p.curTok.Span)
		params = append(params, ast.NewParam(p.arena, name, typ, p.spanWithFilename(span)))

		switch p.peekTok.Type {
		case lexer.COMMA:
			p.nextToken()
		case lexer.RPAREN:
			p.nextToken()
			return params
		default:
			p.reportExpected("',' or ')'", p.peekTok)
			return nil
		}
	}
}

// parseModDecl parses: mod name { items }
func (p *Parser) parseModDecl() ast.Item {
	start := p.curTok.Span

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	p.nextToken() // move past '{'

	var items []ast.Item
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
			continue
		}
		p.recoverItem()
	}

	if p.curTok.Type != lexer.RBRACE {
		p.reportExpected("'}'", p.curTok)
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	p.nextToken() // consume '}'

	return ast.NewModDecl(p.arena, name, items, p.spanWithFilename(span))
}
