package ast

import "github.com/rill-lang/rill/internal/lexer"

// NodeID is a stable identifier assigned to every node at construction time.
// Semantic passes attach their results (resolved symbols, inferred types) to
// side tables keyed by NodeID, so the AST itself stays immutable once built.
type NodeID int

// Node represents any AST node with a stable identity and a source span.
type Node interface {
	ID() NodeID
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Item represents a module-level declaration (function or nested module).
type Item interface {
	Node
	itemNode()
}

// Arena hands out NodeIDs. One arena is shared by all nodes of a single
// compilation unit; IDs are dense and start at zero, so side tables may use
// either maps or slices.
type Arena struct {
	next NodeID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Count returns the number of IDs handed out so far.
func (a *Arena) Count() int { return int(a.next) }

func (a *Arena) newNode(span lexer.Span) node {
	id := a.next
	a.next++
	return node{id: id, span: span}
}

// node carries the identity and span shared by every AST variant.
type node struct {
	id   NodeID
	span lexer.Span
}

func (n *node) ID() NodeID        { return n.id }
func (n *node) Span() lexer.Span  { return n.span }
func (n *node) SetSpan(s lexer.Span) { n.span = s }

// File represents a parsed compilation unit.
type File struct {
	node
	Items []Item
}

// NewFile constructs a file node with the provided span.
func NewFile(a *Arena, span lexer.Span) *File {
	return &File{node: a.newNode(span)}
}

// ModDecl represents a named module containing further items.
type ModDecl struct {
	node
	Name  *Ident
	Items []Item
}

func (*ModDecl) itemNode() {}

// NewModDecl constructs a module declaration node.
func NewModDecl(a *Arena, name *Ident, items []Item, span lexer.Span) *ModDecl {
	return &ModDecl{node: a.newNode(span), Name: name, Items: items}
}

// FnDecl represents a function declaration.
type FnDecl struct {
	node
	Name       *Ident
	Params     []*Param
	ReturnType *TypeRef // nil means the function returns unit
	Body       *Block
}

func (*FnDecl) itemNode() {}

// NewFnDecl constructs a function declaration node.
func NewFnDecl(a *Arena, name *Ident, params []*Param, returnType *TypeRef, body *Block, span lexer.Span) *FnDecl {
	return &FnDecl{
		node:       a.newNode(span),
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}
}

// Param represents a function parameter.
type Param struct {
	node
	Name *Ident
	Type *TypeRef
}

// NewParam constructs a parameter node.
func NewParam(a *Arena, name *Ident, typ *TypeRef, span lexer.Span) *Param {
	return &Param{node: a.newNode(span), Name: name, Type: typ}
}

// TypeRef is a reference to a type by name. Types are resolved structurally
// by the checker; the AST records only the spelled name.
type TypeRef struct {
	node
	Name string
}

// NewTypeRef constructs a type reference node.
func NewTypeRef(a *Arena, name string, span lexer.Span) *TypeRef {
	return &TypeRef{node: a.newNode(span), Name: name}
}
