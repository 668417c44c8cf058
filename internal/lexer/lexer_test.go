package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken_Basic(t *testing.T) {
	input := `let mut x = 10;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{MUT, "mut"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		assert.Equal(t, tt.expectedType, tok.Type, "tests[%d] token type", i)
		assert.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] literal", i)
	}
	assert.Empty(t, l.Errors)
}

func TestNextToken_Operators(t *testing.T) {
	input := `= + - * / == != < > <= >= && || ! :: : .. . -> ,`

	expected := []TokenType{
		ASSIGN, PLUS, MINUS, ASTERISK, SLASH,
		EQ, NOT_EQ, LT, GT, LE, GE,
		AND, OR, BANG,
		DOUBLE_COLON, COLON, RANGE, DOT, ARROW, COMMA,
		EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		assert.Equal(t, typ, tok.Type, "step %d", i)
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := `fn let mut mod if else while for in return true false notakeyword`

	expected := []TokenType{
		FN, LET, MUT, MOD, IF, ELSE, WHILE, FOR, IN, RETURN, TRUE, FALSE, IDENT, EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		assert.Equal(t, typ, tok.Type, "step %d", i)
	}
}

func TestNumbers_IntFloatAndRange(t *testing.T) {
	// A digit run followed by `..` must stay an integer: 0..5 is a range,
	// not a float.
	input := `42 3.14 0..5`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{INT, "42"},
		{FLOAT, "3.14"},
		{INT, "0"},
		{RANGE, ".."},
		{INT, "5"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		assert.Equal(t, tt.expectedType, tok.Type, "tests[%d] token type", i)
		assert.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] literal", i)
	}
	assert.Empty(t, l.Errors)
}

func TestStringAndCharLiterals(t *testing.T) {
	input := `"hello" "a\nb" 'x' '\t'`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{STRING, "hello"},
		{STRING, "a\nb"},
		{CHAR, "x"},
		{CHAR, "\t"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		assert.Equal(t, tt.expectedType, tok.Type, "tests[%d] token type", i)
		assert.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] literal", i)
	}
	assert.Empty(t, l.Errors)
}

func TestComments_Discarded(t *testing.T) {
	input := `1 // line comment
/* block
comment */ 2`

	l := New(input)
	first := l.NextToken()
	second := l.NextToken()

	assert.Equal(t, INT, first.Type)
	assert.Equal(t, "1", first.Literal)
	assert.Equal(t, INT, second.Type)
	assert.Equal(t, "2", second.Literal)
	assert.Equal(t, EOF, l.NextToken().Type)
	assert.Empty(t, l.Errors)
}

func TestSpans_LineAndColumn(t *testing.T) {
	input := "let x = 1;\nlet y = 2;"

	l := New(input)
	toks := l.Tokenize()
	require.GreaterOrEqual(t, len(toks), 10)

	// `y` sits on line 2, column 5.
	var yTok Token
	for _, tok := range toks {
		if tok.Type == IDENT && tok.Literal == "y" {
			yTok = tok
		}
	}
	assert.Equal(t, 2, yTok.Span.Line)
	assert.Equal(t, 5, yTok.Span.Column)
	assert.Equal(t, "y", string([]rune(input)[yTok.Span.Start:yTok.Span.End]))
}

func TestUnterminatedString_SpanAtOpeningQuote(t *testing.T) {
	input := "let s = \"oops;\nlet t = 1;"

	l := New(input)
	l.Tokenize()

	require.Len(t, l.Errors, 1)
	err := l.Errors[0]
	assert.Equal(t, ErrUnterminatedString, err.Kind)
	assert.Equal(t, 1, err.Span.Line)
	assert.Equal(t, 9, err.Span.Column)
}

func TestInvalidCharacter_SkipAndContinue(t *testing.T) {
	// The lexer must report every bad character and keep producing the
	// surrounding tokens in one pass.
	input := `let a # = $ 1;`

	l := New(input)
	toks := l.Tokenize()

	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		if tok.Type != ILLEGAL {
			types = append(types, tok.Type)
		}
	}
	assert.Equal(t, []TokenType{LET, IDENT, ASSIGN, INT, SEMICOLON, EOF}, types)

	require.Len(t, l.Errors, 2)
	for _, err := range l.Errors {
		assert.Equal(t, ErrInvalidCharacter, err.Kind)
	}
}

func TestLexerError_ToDiagnostic(t *testing.T) {
	l := New(`@`)
	l.SetFilename("bad.rl")
	l.Tokenize()

	require.Len(t, l.Errors, 1)
	d := l.Errors[0].ToDiagnostic()
	assert.Equal(t, "bad.rl", d.Span.Filename)
	assert.Equal(t, 1, d.Span.Line)
	assert.NotEmpty(t, d.Message)
}
