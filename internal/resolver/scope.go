package resolver

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
)

// SymbolKind discriminates the entities a name can bind to.
type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolFunc
	SymbolModule
	SymbolBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "variable"
	case SymbolFunc:
		return "function"
	case SymbolModule:
		return "module"
	case SymbolBuiltin:
		return "builtin"
	default:
		return "symbol"
	}
}

// Symbol represents a named entity in the source code. QualifiedName is the
// module-path mangled name (outer::inner::f) used by later stages to address
// functions; for variables it equals Name.
type Symbol struct {
	Name          string
	QualifiedName string
	Kind          SymbolKind
	Mutable       bool
	Span          lexer.Span

	// Fn is set for function symbols and points at the declaration the
	// checker reads signatures from.
	Fn *ast.FnDecl
}

// Scope represents a lexical scope containing symbols. Module scopes are
// additionally registered as named children of their parent so qualified
// paths can be walked without consulting the symbol table twice.
type Scope struct {
	Parent   *Scope
	Symbols  map[string]*Symbol
	Children map[string]*Scope
}

// NewScope creates a new scope with an optional parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:   parent,
		Symbols:  make(map[string]*Symbol),
		Children: make(map[string]*Scope),
	}
}

// Insert adds a symbol to the current scope, replacing any previous binding.
func (s *Scope) Insert(name string, sym *Symbol) {
	s.Symbols[name] = sym
}

// LookupLocal finds a symbol in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}

// Lookup finds a symbol in the current scope or any parent scope.
func (s *Scope) Lookup(name string) *Symbol {
	if sym, ok := s.Symbols[name]; ok {
		return sym
	}
	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}
	return nil
}

// Child returns the named module scope declared directly in this scope.
func (s *Scope) Child(name string) *Scope {
	return s.Children[name]
}

// LookupChild finds a named module scope in this scope or any parent scope.
func (s *Scope) LookupChild(name string) *Scope {
	if child, ok := s.Children[name]; ok {
		return child
	}
	if s.Parent != nil {
		return s.Parent.LookupChild(name)
	}
	return nil
}
