package lexer

import (
	"strconv"
	"unicode"

	"github.com/rill-lang/rill/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrInvalidCharacter
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexUnterminatedString
	default:
		return diag.CodeLexInvalidCharacter
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
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

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	Errors []LexerError
}

// New creates a new lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
	}
	l.read()
	return l
}

// SetFilename attributes all subsequently produced spans to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// read advances the lexer to the next character. Line/column always reflect
// the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.ch = 0 // EOF
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) spanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos, endPos int, raw, literal string) Token {
	return Token{
		Type:    tokType,
		Literal: literal,
		Raw:     raw,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      endPos,
		},
	}
}

// single emits a one-rune token for the current character.
func (l *Lexer) single(tokType TokenType) Token {
	startLine, startColumn, startPos := l.spanStart()
	raw := string(l.ch)
	l.read()
	return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, raw, raw)
}

// pair emits a two-rune token, consuming both characters.
func (l *Lexer) pair(tokType TokenType) Token {
	startLine, startColumn, startPos := l.spanStart()
	raw := string(l.ch)
	l.read()
	raw += string(l.ch)
	l.read()
	return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, raw, raw)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.read()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.read()
	}
}

func (l *Lexer) skipBlockComment(startLine, startColumn, startPos int) {
	for {
		if l.ch == 0 {
			l.addError(
				ErrInvalidCharacter,
				"unterminated block comment",
				Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			return
		}
		if l.ch == '*' && l.peek() == '/' {
			l.read() // consume '*'
			l.read() // consume '/'
			return
		}
		l.read()
	}
}

// readIdentifier reads an identifier or keyword by maximal munch.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads an integer or float literal. A run of digits is an
// integer unless immediately followed by '.' and further digits, which makes
// it a float. '..' after digits stays a range operator.
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	for isDigit(l.ch) {
		l.read()
	}

	if l.ch == '.' && isDigit(l.peek()) {
		l.read() // consume '.'
		for isDigit(l.ch) {
			l.read()
		}
		return string(l.input[start:l.pos]), FLOAT
	}

	return string(l.input[start:l.pos]), INT
}

// Tokenize consumes the entire input and returns the token stream including
// the trailing EOF token. Lexical errors do not stop the scan; they are
// accumulated in Errors while the offending input is skipped.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		switch l.ch {
		case 0:
			startLine, startColumn, startPos := l.spanStart()
			if startColumn == 0 {
				startColumn = 1
			}
			return l.makeToken(EOF, startLine, startColumn, startPos, startPos, "", "")

		case '=':
			if l.peek() == '=' {
				return l.pair(EQ)
			}
			return l.single(ASSIGN)

		case '!':
			if l.peek() == '=' {
				return l.pair(NOT_EQ)
			}
			return l.single(BANG)

		case '<':
			if l.peek() == '=' {
				return l.pair(LE)
			}
			return l.single(LT)

		case '>':
			if l.peek() == '=' {
				return l.pair(GE)
			}
			return l.single(GT)

		case '+':
			return l.single(PLUS)

		case '-':
			if l.peek() == '>' {
				return l.pair(ARROW)
			}
			return l.single(MINUS)

		case '*':
			return l.single(ASTERISK)

		case '/':
			switch l.peek() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				startLine, startColumn, startPos := l.spanStart()
				l.read() // consume '/'
				l.read() // consume '*'
				l.skipBlockComment(startLine, startColumn, startPos)
				continue
			default:
				return l.single(SLASH)
			}

		case '&':
			if l.peek() == '&' {
				return l.pair(AND)
			}
			return l.illegalCurrent()

		case '|':
			if l.peek() == '|' {
				return l.pair(OR)
			}
			return l.illegalCurrent()

		case ':':
			if l.peek() == ':' {
				return l.pair(DOUBLE_COLON)
			}
			return l.single(COLON)

		case '.':
			if l.peek() == '.' {
				return l.pair(RANGE)
			}
			return l.single(DOT)

		case ';':
			return l.single(SEMICOLON)
		case ',':
			return l.single(COMMA)
		case '(':
			return l.single(LPAREN)
		case ')':
			return l.single(RPAREN)
		case '{':
			return l.single(LBRACE)
		case '}':
			return l.single(RBRACE)

		case '"':
			startLine, startColumn, startPos := l.spanStart()
			raw, value, terminated := l.readString()
			if !terminated {
				l.addError(
					ErrUnterminatedString,
					"unterminated string literal",
					Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: startPos + 1},
				)
				return l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, value)
			}
			return l.makeToken(STRING, startLine, startColumn, startPos, l.pos, raw, value)

		case '\'':
			startLine, startColumn, startPos := l.spanStart()
			raw, value, ok := l.readChar()
			if !ok {
				l.addError(
					ErrInvalidCharacter,
					"malformed character literal",
					Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
				)
				return l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, value)
			}
			return l.makeToken(CHAR, startLine, startColumn, startPos, l.pos, raw, value)

		default:
			if isLetter(l.ch) {
				startLine, startColumn, startPos := l.spanStart()
				literal := l.readIdentifier()
				tokType := LookupIdent(literal)
				return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, literal, literal)
			}
			if isDigit(l.ch) {
				startLine, startColumn, startPos := l.spanStart()
				literal, tokType := l.readNumber()
				return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, literal, literal)
			}
			// Unrecognized character: record the error, skip it, and keep
			// scanning so one pass surfaces every lexical problem.
			l.illegalCurrent()
			continue
		}
	}
}

func (l *Lexer) illegalCurrent() Token {
	startLine, startColumn, startPos := l.spanStart()
	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, raw)
	l.addError(
		ErrInvalidCharacter,
		"invalid character "+strconv.Quote(raw),
		tok.Span,
	)
	return tok
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}

func decodeEscape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		// \<char> escapes any character to itself: \\, \", \'.
		return ch
	}
}

// readString reads a string literal, handling \<char> escape sequences.
// Returns the raw text, the decoded value, and whether the closing quote was
// found before end of line or input.
func (l *Lexer) readString() (raw string, value string, terminated bool) {
	var rawRunes []rune
	var decoded []rune

	rawRunes = append(rawRunes, '"')
	l.read() // skip opening quote

	for {
		switch {
		case l.ch == 0 || l.ch == '\n':
			return string(rawRunes), string(decoded), false
		case l.ch == '"':
			rawRunes = append(rawRunes, '"')
			l.read()
			return string(rawRunes), string(decoded), true
		case l.ch == '\\':
			rawRunes = append(rawRunes, '\\')
			l.read()
			if l.ch == 0 || l.ch == '\n' {
				return string(rawRunes), string(decoded), false
			}
			rawRunes = append(rawRunes, l.ch)
			decoded = append(decoded, decodeEscape(l.ch))
			l.read()
		default:
			rawRunes = append(rawRunes, l.ch)
			decoded = append(decoded, l.ch)
			l.read()
		}
	}
}

// readChar reads a character literal 'x' or '\n'.
func (l *Lexer) readChar() (raw string, value string, ok bool) {
	var rawRunes []rune
	rawRunes = append(rawRunes, '\'')
	l.read() // skip opening quote

	if l.ch == 0 || l.ch == '\n' || l.ch == '\'' {
		return string(rawRunes), "", false
	}

	var decoded rune
	if l.ch == '\\' {
		rawRunes = append(rawRunes, l.ch)
		l.read()
		if l.ch == 0 || l.ch == '\n' {
			return string(rawRunes), "", false
		}
		decoded = decodeEscape(l.ch)
	} else {
		decoded = l.ch
	}
	rawRunes = append(rawRunes, l.ch)
	l.read()

	if l.ch != '\'' {
		return string(rawRunes), string(decoded), false
	}
	rawRunes = append(rawRunes, '\'')
	l.read()
	return string(rawRunes), string(decoded), true
}
