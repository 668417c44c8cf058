package parser

import (
	"fmt"

	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/lexer"
)

// ParseError captures a recoverable parsing error with location context. The
// Expected/Found pair is kept structured so tests and tooling can assert on
// it without scraping the message.
type ParseError struct {
	Expected string
	Found    lexer.Token
	Message  string
	Span     lexer.Span
}

// ToDiagnostic converts a parse error into a shared diagnostic structure.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseExpected,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// reportExpected records an expected/found error at the offending token.
func (p *Parser) reportExpected(expected string, found lexer.Token) {
	foundStr := found.Literal
	if foundStr == "" {
		foundStr = string(found.Type)
	}

	p.errors = append(p.errors, ParseError{
		Expected: expected,
		Found:    found,
		Message:  fmt.Sprintf("expected %s, found `%s`", expected, foundStr),
		Span:     p.spanWithFilename(found.Span),
	})
}

// reportError records a free-form parse error.
func (p *Parser) reportError(msg string, span lexer.Span) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Span:    p.spanWithFilename(span),
	})
}

func (p *Parser) spanWithFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}
	return span
}
