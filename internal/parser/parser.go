package parser

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Option func(*options)

type options struct {
	filename string
}

// WithFilename configures the parser to attribute all emitted spans to the
// provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// Operator precedence tiers, lowest binding first. These mirror the grammar:
// assignment < || < && < equality < comparison < addition < multiplication
// < unary < call.
const (
	precedenceLowest = iota
	precedenceAssign
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceComparison
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedenceCall
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   precedenceAssign,
	lexer.OR:       precedenceOr,
	lexer.AND:      precedenceAnd,
	lexer.EQ:       precedenceEquality,
	lexer.NOT_EQ:   precedenceEquality,
	lexer.LT:       precedenceComparison,
	lexer.LE:       precedenceComparison,
	lexer.GT:       precedenceComparison,
	lexer.GE:       precedenceComparison,
	lexer.PLUS:     precedenceSum,
	lexer.MINUS:    precedenceSum,
	lexer.ASTERISK: precedenceProduct,
	lexer.SLASH:    precedenceProduct,
	lexer.LPAREN:   precedenceCall,
}

// Parser implements a Pratt-style recursive descent parser.
//
// Invariants:
//   - curTok always reflects the token currently under examination; peekTok
//     mirrors the next token pulled from the lexer. The pair forms the
//     parser's sole lookahead window and is only mutated via nextToken.
//   - errors is an append-only accumulator of recoverable diagnostics.
//     Callers consult Errors() after ParseFile.
//   - Node spans are composed via mergeSpan so that a parent span always
//     covers its children.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	arena  *ast.Arena
	errors []ParseError

	filename string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:        lexer.New(input),
		arena:     ast.NewArena(),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		filename:  cfg.filename,
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)

	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	p.registerInfix(lexer.PLUS, p.parseInfixExpr)
	p.registerInfix(lexer.MINUS, p.parseInfixExpr)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpr)
	p.registerInfix(lexer.SLASH, p.parseInfixExpr)
	p.registerInfix(lexer.AND, p.parseInfixExpr)
	p.registerInfix(lexer.OR, p.parseInfixExpr)
	p.registerInfix(lexer.EQ, p.parseInfixExpr)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(lexer.LT, p.parseInfixExpr)
	p.registerInfix(lexer.LE, p.parseInfixExpr)
	p.registerInfix(lexer.GT, p.parseInfixExpr)
	p.registerInfix(lexer.GE, p.parseInfixExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns all recoverable parse errors that were encountered.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// Arena returns the node arena populated during parsing. Side tables in
// later passes are sized from it.
func (p *Parser) Arena() *ast.Arena {
	return p.arena
}

// ParseFile parses a full compilation unit and returns its AST. The file is
// a sequence of function and module declarations.
func (p *Parser) ParseFile() *ast.File {
	file := ast.NewFile(p.arena, p.curTok.Span)

	for p.curTok.Type != lexer.EOF {
		item := p.parseItem()
		if item != nil {
			file.Items = append(file.Items, item)
			file.SetSpan(mergeSpan(file.Span(), item.Span()))
			continue
		}
		p.recoverItem()
	}

	file.SetSpan(mergeSpan(file.Span(), p.curTok.Span))
	return file
}

func (p *Parser) parseItem() ast.Item {
	switch p.curTok.Type {
	case lexer.FN:
		return p.parseFnDecl()
	case lexer.MOD:
		return p.parseModDecl()
	default:
		p.reportExpected("'fn' or 'mod'", p.curTok)
		return nil
	}
}

// recoverItem performs panic-mode recovery at declaration level: tokens are
// discarded until the next plausible item start.
func (p *Parser) recoverItem() {
	for p.curTok.Type != lexer.EOF {
		p.nextToken()
		if p.curTok.Type == lexer.FN || p.curTok.Type == lexer.MOD {
			return
		}
	}
}

// recoverStmt performs panic-mode recovery at statement level: tokens are
// discarded until the next statement boundary, which is either a ';'
// (consumed) or a block-closing '}' (left for the caller).
func (p *Parser) recoverStmt() {
	for {
		switch p.curTok.Type {
		case lexer.SEMICOLON:
			p.nextToken()
			return
		case lexer.RBRACE, lexer.EOF:
			return
		}
		p.nextToken()
	}
}

// nextToken advances the parser's token window. After calling nextToken,
// curTok == old(peekTok); the lexer is only queried from this hop to keep
// lookahead bookkeeping centralized.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

// expect asserts that the peek token matches the provided type. On success
// it promotes peekTok into curTok; expect never rewinds.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}

	p.reportExpected("'"+string(tt)+"'", p.peekTok)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixFns[tokenType] = fn
}

// mergeSpan widens a to cover b.
func mergeSpan(a, b lexer.Span) lexer.Span {
	out := a
	if b.Start < out.Start {
		out.Line = b.Line
		out.Column = b.Column
		out.Start = b.Start
	}
	if b.End > out.End {
		out.End = b.End
	}
	if out.Filename == "" {
		out.Filename = b.Filename
	}
	return out
}
