package parser

import (
	"fmt"
	"strconv"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
)

// Expression conventions: every parse function is entered with curTok at
// the expression's first token (infix functions at the operator) and leaves
// curTok at the expression's last token. The Pratt loop peeks ahead to
// decide whether to keep extending the expression.

func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrecedence(precedenceLowest)
}

func (p *Parser) parseExprPrecedence(precedence int) ast.Expr {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.reportExpected("an expression", p.curTok)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekTok.Type != lexer.SEMICOLON && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Type]
		if !ok {
			return left
		}

		p.nextToken()

		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// parseIdentifier parses a plain identifier or, when followed by '::', a
// qualified module path such as math::abs.
func (p *Parser) parseIdentifier() ast.Expr {
	first := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
	if p.peekTok.Type != lexer.DOUBLE_COLON {
		return first
	}

	segments := []*ast.Ident{first}
	span := first.Span()

	for p.peekTok.Type == lexer.DOUBLE_COLON {
		p.nextToken() // move to '::'
		if !p.expect(lexer.IDENT) {
			return nil
		}
		seg := ast.NewIdent(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
		segments = append(segments, seg)
		span = mergeSpan(span, seg.Span())
	}

	return ast.NewPathExpr(p.arena, segments, span)
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	value, err := strconv.ParseUint(p.curTok.Literal, 10, 64)
	if err != nil {
		p.reportError(fmt.Sprintf("integer literal `%s` out of range", p.curTok.Literal), p.curTok.Span)
		return nil
	}

	return ast.NewIntLit(p.arena, value, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	value, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.reportError(fmt.Sprintf("float literal `%s` out of range", p.curTok.Literal), p.curTok.Span)
		return nil
	}

	return ast.NewFloatLit(p.arena, value, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseCharLiteral() ast.Expr {
	runes := []rune(p.curTok.Literal)
	if len(runes) != 1 {
		p.reportError("character literal must contain exactly one character", p.curTok.Span)
		return nil
	}

	return ast.NewCharLit(p.arena, runes[0], p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return ast.NewStringLit(p.arena, p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return ast.NewBoolLit(p.arena, p.curTok.Type == lexer.TRUE, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	op := p.curTok.Type
	start := p.curTok.Span

	p.nextToken()

	right := p.parseExprPrecedence(precedencePrefix)
	if right == nil {
		return nil
	}

	span := mergeSpan(start, right.Span())
	return ast.NewPrefixExpr(p.arena, op, right, p.spanWithFilename(span))
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if !p.expect(lexer.RPAREN) {
		return nil
	}

	// Widen the inner node's span to include the parentheses so caret
	// rendering points at the whole group.
	if s, ok := expr.(interface{ SetSpan(lexer.Span) }); ok {
		s.SetSpan(p.spanWithFilename(mergeSpan(start, p.curTok.Span)))
	}

	return expr
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Type
	precedence := precedences[op]

	p.nextToken()

	right := p.parseExprPrecedence(precedence)
	if right == nil {
		return nil
	}

	span := mergeSpan(left.Span(), right.Span())
	return ast.NewInfixExpr(p.arena, left, op, right, p.spanWithFilename(span))
}

// parseAssignExpr parses assignment right-associatively: a = b = c groups
// as a = (b = c). Target validity is a resolver concern.
func (p *Parser) parseAssignExpr(left ast.Expr) ast.Expr {
	p.nextToken()

	value := p.parseExprPrecedence(precedenceAssign - 1)
	if value == nil {
		return nil
	}

	span := mergeSpan(left.Span(), value.Span())
	return ast.NewAssignExpr(p.arena, left, value, p.spanWithFilename(span))
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	args := []ast.Expr{}

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
	} else {
		for {
			p.nextToken()

			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)

			if p.peekTok.Type != lexer.COMMA {
				break
			}
			p.nextToken() // move to ','
		}

		if !p.expect(lexer.RPAREN) {
			return nil
		}
	}

	span := mergeSpan(callee.Span(), p.curTok.Span)
	return ast.NewCallExpr(p.arena, callee, args, p.spanWithFilename(span))
}
