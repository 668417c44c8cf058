package ast

import "github.com/rill-lang/rill/internal/lexer"

// Ident represents an identifier reference.
type Ident struct {
	node
	Name string
}

func (*Ident) exprNode() {}

// NewIdent constructs an identifier node.
func NewIdent(a *Arena, name string, span lexer.Span) *Ident {
	return &Ident{node: a.newNode(span), Name: name}
}

// PathExpr represents a qualified module path such as math::abs. Segments
// always has at least two entries; a single segment parses as an Ident.
type PathExpr struct {
	node
	Segments []*Ident
}

func (*PathExpr) exprNode() {}

// NewPathExpr constructs a module path node.
func NewPathExpr(a *Arena, segments []*Ident, span lexer.Span) *PathExpr {
	return &PathExpr{node: a.newNode(span), Segments: segments}
}

// IntLit represents an integer literal. The value is stored unsigned; a
// leading minus parses as a PrefixExpr.
type IntLit struct {
	node
	Value uint64
	Raw   string
}

func (*IntLit) exprNode() {}

// NewIntLit constructs an integer literal node.
func NewIntLit(a *Arena, value uint64, raw string, span lexer.Span) *IntLit {
	return &IntLit{node: a.newNode(span), Value: value, Raw: raw}
}

// FloatLit represents a float literal.
type FloatLit struct {
	node
	Value float64
	Raw   string
}

func (*FloatLit) exprNode() {}

// NewFloatLit constructs a float literal node.
func NewFloatLit(a *Arena, value float64, raw string, span lexer.Span) *FloatLit {
	return &FloatLit{node: a.newNode(span), Value: value, Raw: raw}
}

// BoolLit represents true or false.
type BoolLit struct {
	node
	Value bool
}

func (*BoolLit) exprNode() {}

// NewBoolLit constructs a boolean literal node.
func NewBoolLit(a *Arena, value bool, span lexer.Span) *BoolLit {
	return &BoolLit{node: a.newNode(span), Value: value}
}

// CharLit represents a character literal.
type CharLit struct {
	node
	Value rune
}

func (*CharLit) exprNode() {}

// NewCharLit constructs a character literal node.
func NewCharLit(a *Arena, value rune, span lexer.Span) *CharLit {
	return &CharLit{node: a.newNode(span), Value: value}
}

// StringLit represents a string literal with escapes already decoded.
type StringLit struct {
	node
	Value string
}

func (*StringLit) exprNode() {}

// NewStringLit constructs a string literal node.
func NewStringLit(a *Arena, value string, span lexer.Span) *StringLit {
	return &StringLit{node: a.newNode(span), Value: value}
}

// PrefixExpr represents a unary operation: !x or -x.
type PrefixExpr struct {
	node
	Op    lexer.TokenType
	Right Expr
}

func (*PrefixExpr) exprNode() {}

// NewPrefixExpr constructs a prefix expression node.
func NewPrefixExpr(a *Arena, op lexer.TokenType, right Expr, span lexer.Span) *PrefixExpr {
	return &PrefixExpr{node: a.newNode(span), Op: op, Right: right}
}

// InfixExpr represents a binary operation.
type InfixExpr struct {
	node
	Left  Expr
	Op    lexer.TokenType
	Right Expr
}

func (*InfixExpr) exprNode() {}

// NewInfixExpr constructs an infix expression node.
func NewInfixExpr(a *Arena, left Expr, op lexer.TokenType, right Expr, span lexer.Span) *InfixExpr {
	return &InfixExpr{node: a.newNode(span), Left: left, Op: op, Right: right}
}

// AssignExpr represents an assignment. The parser accepts any expression as
// the target; the resolver rejects anything that is not a plain identifier.
type AssignExpr struct {
	node
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

// NewAssignExpr constructs an assignment expression node.
func NewAssignExpr(a *Arena, target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{node: a.newNode(span), Target: target, Value: value}
}

// CallExpr represents a function call.
type CallExpr struct {
	node
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// NewCallExpr constructs a call expression node.
func NewCallExpr(a *Arena, callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{node: a.newNode(span), Callee: callee, Args: args}
}

// RangeExpr represents a half-open interval lo..hi with implicit step one.
// It is only produced by the for-loop header rule.
type RangeExpr struct {
	node
	Low  Expr
	High Expr
}

func (*RangeExpr) exprNode() {}

// NewRangeExpr constructs a range expression node.
func NewRangeExpr(a *Arena, low, high Expr, span lexer.Span) *RangeExpr {
	return &RangeExpr{node: a.newNode(span), Low: low, High: high}
}
