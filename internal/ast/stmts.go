package ast

import "github.com/rill-lang/rill/internal/lexer"

// Block represents a braced statement list. A block is itself a statement,
// introducing a nested scope.
type Block struct {
	node
	Stmts []Stmt
}

func (*Block) stmtNode() {}

// NewBlock constructs a block node.
func NewBlock(a *Arena, stmts []Stmt, span lexer.Span) *Block {
	return &Block{node: a.newNode(span), Stmts: stmts}
}

// LetStmt represents a variable declaration. Either Type or Value may be
// nil, but not both.
type LetStmt struct {
	node
	Mutable bool
	Name    *Ident
	Type    *TypeRef // optional annotation
	Value   Expr     // optional initializer
}

func (*LetStmt) stmtNode() {}

// NewLetStmt constructs a let statement node.
func NewLetStmt(a *Arena, mutable bool, name *Ident, typ *TypeRef, value Expr, span lexer.Span) *LetStmt {
	return &LetStmt{node: a.newNode(span), Mutable: mutable, Name: name, Type: typ, Value: value}
}

// IfStmt represents an if statement with an optional else branch. Else is
// either a *Block or a nested *IfStmt (else-if chaining).
type IfStmt struct {
	node
	Cond Expr
	Then *Block
	Else Stmt
}

func (*IfStmt) stmtNode() {}

// NewIfStmt constructs an if statement node.
func NewIfStmt(a *Arena, cond Expr, then *Block, elseStmt Stmt, span lexer.Span) *IfStmt {
	return &IfStmt{node: a.newNode(span), Cond: cond, Then: then, Else: elseStmt}
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	node
	Cond Expr
	Body *Block
}

func (*WhileStmt) stmtNode() {}

// NewWhileStmt constructs a while statement node.
func NewWhileStmt(a *Arena, cond Expr, body *Block, span lexer.Span) *WhileStmt {
	return &WhileStmt{node: a.newNode(span), Cond: cond, Body: body}
}

// ForStmt represents a range loop: for (v in lo..hi) { body }.
type ForStmt struct {
	node
	Var   *Ident
	Range *RangeExpr
	Body  *Block
}

func (*ForStmt) stmtNode() {}

// NewForStmt constructs a for statement node.
func NewForStmt(a *Arena, v *Ident, rng *RangeExpr, body *Block, span lexer.Span) *ForStmt {
	return &ForStmt{node: a.newNode(span), Var: v, Range: rng, Body: body}
}

// ReturnStmt represents a return with an optional value.
type ReturnStmt struct {
	node
	Value Expr // nil for unit return
}

func (*ReturnStmt) stmtNode() {}

// NewReturnStmt constructs a return statement node.
func NewReturnStmt(a *Arena, value Expr, span lexer.Span) *ReturnStmt {
	return &ReturnStmt{node: a.newNode(span), Value: value}
}

// ExprStmt represents an expression evaluated for its effect.
type ExprStmt struct {
	node
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// NewExprStmt constructs an expression statement node.
func NewExprStmt(a *Arena, expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{node: a.newNode(span), Expr: expr}
}
