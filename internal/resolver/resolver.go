package resolver

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/lexer"
)

// Resolver binds every identifier reference in a file to a symbol. The AST
// is never mutated: bindings live in the Uses/Decls side tables keyed by
// node ID.
//
// Resolution is two-pass per container. Pass one registers every function
// and module name of a module body before any function body is entered, so
// declaration order between functions never matters. Pass two walks
// function bodies with strictly sequential local visibility: a let binding
// is only inserted into its scope after its initializer has been resolved.
type Resolver struct {
	// Uses maps reference nodes (Ident, PathExpr) to the symbol they bind.
	Uses map[ast.NodeID]*Symbol
	// Decls maps declaration nodes (FnDecl, Param, LetStmt, ForStmt) to
	// the symbol they introduce.
	Decls map[ast.NodeID]*Symbol

	// Global is the file scope; universe (builtins) sits above it.
	Global *Scope

	Errors []diag.Diagnostic
}

// New returns a resolver with the universe scope pre-populated. The only
// builtin is the external I/O primitive print; its signature lives in the
// type checker.
func New() *Resolver {
	universe := NewScope(nil)
	universe.Insert("print", &Symbol{
		Name:          "print",
		QualifiedName: "print",
		Kind:          SymbolBuiltin,
	})

	return &Resolver{
		Uses:   make(map[ast.NodeID]*Symbol),
		Decls:  make(map[ast.NodeID]*Symbol),
		Global: NewScope(universe),
	}
}

// Resolve processes a whole file. Errors accumulate; the walk never stops
// at the first failure.
func (r *Resolver) Resolve(file *ast.File) {
	r.declareItems(r.Global, file.Items, "")
	r.resolveItems(r.Global, file.Items)
}

// declareItems is pass one: register function and module names into the
// container scope. Module bodies are declared recursively so qualified
// paths can resolve before any body is visited.
func (r *Resolver) declareItems(scope *Scope, items []ast.Item, prefix string) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			name := it.Name.Name
			if prev := scope.LookupLocal(name); prev != nil {
				r.reportDuplicate(name, it.Name.Span(), prev)
				continue
			}
			sym := &Symbol{
				Name:          name,
				QualifiedName: qualify(prefix, name),
				Kind:          SymbolFunc,
				Span:          it.Name.Span(),
				Fn:            it,
			}
			scope.Insert(name, sym)
			r.Decls[it.ID()] = sym

		case *ast.ModDecl:
			name := it.Name.Name
			if prev := scope.LookupLocal(name); prev != nil {
				r.reportDuplicate(name, it.Name.Span(), prev)
				continue
			}
			sym := &Symbol{
				Name:          name,
				QualifiedName: qualify(prefix, name),
				Kind:          SymbolModule,
				Span:          it.Name.Span(),
			}
			scope.Insert(name, sym)
			r.Decls[it.ID()] = sym

			child := NewScope(scope)
			scope.Children[name] = child
			r.declareItems(child, it.Items, sym.QualifiedName)
		}
	}
}

// resolveItems is pass two: walk function bodies against the declared
// scope tree.
func (r *Resolver) resolveItems(scope *Scope, items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			r.resolveFn(scope, it)
		case *ast.ModDecl:
			if child := scope.Child(it.Name.Name); child != nil {
				r.resolveItems(child, it.Items)
			}
		}
	}
}

func (r *Resolver) resolveFn(scope *Scope, fn *ast.FnDecl) {
	fnScope := NewScope(scope)

	for _, param := range fn.Params {
		name := param.Name.Name
		if prev := fnScope.LookupLocal(name); prev != nil {
			r.reportDuplicate(name, param.Name.Span(), prev)
			continue
		}
		sym := &Symbol{
			Name:          name,
			QualifiedName: name,
			Kind:          SymbolVar,
			Mutable:       true,
			Span:          param.Name.Span(),
		}
		fnScope.Insert(name, sym)
		r.Decls[param.ID()] = sym
	}

	r.resolveBlock(fnScope, fn.Body)
}

// resolveBlock resolves a block in a fresh child scope.
func (r *Resolver) resolveBlock(parent *Scope, block *ast.Block) {
	scope := NewScope(parent)
	for _, stmt := range block.Stmts {
		r.resolveStmt(scope, stmt)
	}
}

func (r *Resolver) resolveStmt(scope *Scope, stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.LetStmt:
		// Initializer first: `let x = x;` must not see the new binding.
		if st.Value != nil {
			r.resolveExpr(scope, st.Value)
		}
		name := st.Name.Name
		if prev := scope.LookupLocal(name); prev != nil {
			r.reportDuplicate(name, st.Name.Span(), prev)
			return
		}
		sym := &Symbol{
			Name:          name,
			QualifiedName: name,
			Kind:          SymbolVar,
			Mutable:       st.Mutable,
			Span:          st.Name.Span(),
		}
		scope.Insert(name, sym)
		r.Decls[st.ID()] = sym

	case *ast.IfStmt:
		r.resolveExpr(scope, st.Cond)
		r.resolveBlock(scope, st.Then)
		if st.Else != nil {
			r.resolveStmt(scope, st.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(scope, st.Cond)
		r.resolveBlock(scope, st.Body)

	case *ast.ForStmt:
		r.resolveExpr(scope, st.Range.Low)
		r.resolveExpr(scope, st.Range.High)

		// The loop variable lives in a scope wrapping the body, so the
		// body may shadow it but the bounds cannot see it.
		loopScope := NewScope(scope)
		sym := &Symbol{
			Name:          st.Var.Name,
			QualifiedName: st.Var.Name,
			Kind:          SymbolVar,
			Mutable:       true,
			Span:          st.Var.Span(),
		}
		loopScope.Insert(st.Var.Name, sym)
		r.Decls[st.ID()] = sym
		r.resolveBlock(loopScope, st.Body)

	case *ast.ReturnStmt:
		if st.Value != nil {
			r.resolveExpr(scope, st.Value)
		}

	case *ast.ExprStmt:
		r.resolveExpr(scope, st.Expr)

	case *ast.Block:
		r.resolveBlock(scope, st)
	}
}

func (r *Resolver) resolveExpr(scope *Scope, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		sym := scope.Lookup(e.Name)
		if sym == nil {
			r.reportError(diag.CodeNameUndefinedSymbol,
				fmt.Sprintf("undefined symbol `%s`", e.Name), e.Span())
			return
		}
		r.Uses[e.ID()] = sym

	case *ast.PathExpr:
		r.resolvePath(scope, e)

	case *ast.PrefixExpr:
		r.resolveExpr(scope, e.Right)

	case *ast.InfixExpr:
		r.resolveExpr(scope, e.Left)
		r.resolveExpr(scope, e.Right)

	case *ast.AssignExpr:
		r.resolveAssign(scope, e)

	case *ast.CallExpr:
		r.resolveExpr(scope, e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(scope, arg)
		}

	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.CharLit, *ast.StringLit:
		// Literals bind nothing.
	}
}

// resolvePath walks a qualified path (outer::inner::f) over the named
// module scopes. The first segment resolves through the lexical chain; each
// further segment must name a member of the previous module.
func (r *Resolver) resolvePath(scope *Scope, path *ast.PathExpr) {
	head := path.Segments[0]

	current := scope.LookupChild(head.Name)
	if current == nil {
		r.reportError(diag.CodeNameUnresolvedModPath,
			fmt.Sprintf("unresolved module path: `%s` is not a module", head.Name),
			head.Span())
		return
	}

	for _, seg := range path.Segments[1 : len(path.Segments)-1] {
		next := current.Child(seg.Name)
		if next == nil {
			r.reportError(diag.CodeNameUnresolvedModPath,
				fmt.Sprintf("unresolved module path: no module `%s` in `%s`",
					seg.Name, pathPrefix(path, seg)),
				seg.Span())
			return
		}
		current = next
	}

	last := path.Segments[len(path.Segments)-1]
	sym := current.LookupLocal(last.Name)
	if sym == nil {
		r.reportError(diag.CodeNameUnresolvedModPath,
			fmt.Sprintf("unresolved module path: no item `%s` in `%s`",
				last.Name, pathPrefix(path, last)),
			last.Span())
		return
	}

	r.Uses[path.ID()] = sym
}

// resolveAssign checks assignment targets. Only a plain identifier bound to
// a mutable variable is a valid lvalue; everything else is rejected here so
// the checker can assume targets are variables.
func (r *Resolver) resolveAssign(scope *Scope, assign *ast.AssignExpr) {
	r.resolveExpr(scope, assign.Value)

	target, ok := assign.Target.(*ast.Ident)
	if !ok {
		r.reportError(diag.CodeTypeAssignToNonLvalue,
			"cannot assign: target is not a variable", assign.Target.Span())
		return
	}

	sym := scope.Lookup(target.Name)
	if sym == nil {
		r.reportError(diag.CodeNameUndefinedSymbol,
			fmt.Sprintf("undefined symbol `%s`", target.Name), target.Span())
		return
	}
	r.Uses[target.ID()] = sym

	if sym.Kind != SymbolVar {
		r.reportError(diag.CodeTypeAssignToNonLvalue,
			fmt.Sprintf("cannot assign to %s `%s`", sym.Kind, sym.Name),
			target.Span())
		return
	}
	if !sym.Mutable {
		r.reportError(diag.CodeTypeAssignToNonLvalue,
			fmt.Sprintf("cannot assign to immutable variable `%s`", sym.Name),
			target.Span())
	}
}

func (r *Resolver) reportDuplicate(name string, span lexer.Span, prev *Symbol) {
	d := diag.Diagnostic{
		Stage:    diag.StageResolver,
		Severity: diag.SeverityError,
		Code:     diag.CodeNameDuplicateSymbol,
		Message:  fmt.Sprintf("duplicate symbol `%s` in this scope", name),
		Span:     toDiagSpan(span),
	}
	if prev.Span.Line > 0 {
		d = d.WithHelp(fmt.Sprintf("`%s` was first declared at %s", name, toDiagSpan(prev.Span)))
	}
	r.Errors = append(r.Errors, d)
}

func (r *Resolver) reportError(code diag.Code, msg string, span lexer.Span) {
	r.Errors = append(r.Errors, diag.Diagnostic{
		Stage:    diag.StageResolver,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
		Span:     toDiagSpan(span),
	})
}

func toDiagSpan(span lexer.Span) diag.Span {
	return diag.Span{
		Filename: span.Filename,
		Line:     span.Line,
		Column:   span.Column,
		Start:    span.Start,
		End:      span.End,
	}
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}

// pathPrefix renders the path segments strictly before stop.
func pathPrefix(path *ast.PathExpr, stop *ast.Ident) string {
	out := ""
	for _, seg := range path.Segments {
		if seg == stop {
			break
		}
		if out != "" {
			out += "::"
		}
		out += seg.Name
	}
	return out
}
