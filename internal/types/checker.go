package types

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/resolver"
)

// Checker assigns a type to every expression node and validates
// declarations against the resolved symbol information. Like the resolver
// it never mutates the AST: results live in the Types side table and the
// per-symbol VarTypes map.
type Checker struct {
	res *resolver.Resolver

	// Types records the type of every checked expression node.
	Types map[ast.NodeID]Type
	// VarTypes records the declared or inferred type of every variable
	// symbol.
	VarTypes map[*resolver.Symbol]Type

	sigs map[*ast.FnDecl]*Function

	Errors []diag.Diagnostic

	// curRet is the return type of the function body being checked.
	curRet Type
}

// builtinSigs holds signatures for universe-scope symbols.
var builtinSigs = map[string]*Function{
	"print": {Params: []Type{TypeS32}, Return: TypeUnit},
}

// NewChecker returns a checker reading bindings from a completed resolution.
func NewChecker(res *resolver.Resolver) *Checker {
	return &Checker{
		res:      res,
		Types:    make(map[ast.NodeID]Type),
		VarTypes: make(map[*resolver.Symbol]Type),
		sigs:     make(map[*ast.FnDecl]*Function),
	}
}

// Signature returns the checked signature of a declared function.
func (c *Checker) Signature(fn *ast.FnDecl) *Function {
	return c.sigs[fn]
}

// BuiltinSignature returns the signature of a universe-scope builtin.
func BuiltinSignature(name string) *Function {
	return builtinSigs[name]
}

// Check processes a whole file: signatures first so calls can be checked
// against functions declared later, then every body.
func (c *Checker) Check(file *ast.File) {
	c.collectSignatures(file.Items)
	c.checkBodies(file.Items)
}

func (c *Checker) collectSignatures(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			c.sigs[it] = c.fnSignature(it)
		case *ast.ModDecl:
			c.collectSignatures(it.Items)
		}
	}
}

func (c *Checker) fnSignature(fn *ast.FnDecl) *Function {
	sig := &Function{Return: TypeUnit}

	for _, param := range fn.Params {
		typ := c.resolveTypeRef(param.Type)
		sig.Params = append(sig.Params, typ)
		if sym := c.res.Decls[param.ID()]; sym != nil {
			c.VarTypes[sym] = typ
		}
	}

	if fn.ReturnType != nil {
		sig.Return = c.resolveTypeRef(fn.ReturnType)
	}

	return sig
}

// resolveTypeRef maps a source type annotation to a type. Unknown names
// degrade to s32 after reporting so checking can continue.
func (c *Checker) resolveTypeRef(ref *ast.TypeRef) Type {
	if typ, ok := Lookup(ref.Name); ok {
		return typ
	}
	c.reportError(diag.CodeTypeMismatch,
		fmt.Sprintf("unknown type `%s`", ref.Name), ref.Span())
	return TypeS32
}

func (c *Checker) checkBodies(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			c.checkFn(it)
		case *ast.ModDecl:
			c.checkBodies(it.Items)
		}
	}
}

func (c *Checker) checkFn(fn *ast.FnDecl) {
	sig := c.sigs[fn]
	c.curRet = sig.Return

	c.checkBlock(fn.Body)

	if !Equal(sig.Return, TypeUnit) && !terminates(fn.Body) {
		c.reportError(diag.CodeTypeMissingReturn,
			fmt.Sprintf("missing return: not all paths of `%s` return a value of type %s",
				fn.Name.Name, sig.Return),
			fallthroughSpan(fn.Body))
	}
}

func (c *Checker) checkBlock(block *ast.Block) {
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.LetStmt:
		c.checkLet(st)

	case *ast.IfStmt:
		c.checkCondition(st.Cond)
		c.checkBlock(st.Then)
		if st.Else != nil {
			c.checkStmt(st.Else)
		}

	case *ast.WhileStmt:
		c.checkCondition(st.Cond)
		c.checkBlock(st.Body)

	case *ast.ForStmt:
		c.checkFor(st)

	case *ast.ReturnStmt:
		c.checkReturn(st)

	case *ast.ExprStmt:
		c.checkExpr(st.Expr, nil)

	case *ast.Block:
		c.checkBlock(st)
	}
}

func (c *Checker) checkLet(let *ast.LetStmt) {
	var declared Type
	if let.Type != nil {
		declared = c.resolveTypeRef(let.Type)
	}

	var inferred Type
	if let.Value != nil {
		inferred = c.checkExpr(let.Value, declared)
	}

	sym := c.res.Decls[let.ID()]

	switch {
	case declared != nil && inferred != nil:
		if !Equal(declared, inferred) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: `%s` is declared %s but initialized with %s",
					let.Name.Name, declared, inferred),
				let.Value.Span())
		}
		c.bindVar(sym, declared)
	case declared != nil:
		// Annotated with no initializer: the variable starts zero-valued.
		c.bindVar(sym, declared)
	case inferred != nil:
		c.bindVar(sym, inferred)
	default:
		c.reportError(diag.CodeTypeUninferable,
			fmt.Sprintf("cannot infer a type for `%s`: it has neither an annotation nor an initializer",
				let.Name.Name),
			let.Name.Span())
		c.bindVar(sym, TypeS32)
	}
}

func (c *Checker) bindVar(sym *resolver.Symbol, typ Type) {
	if sym != nil {
		c.VarTypes[sym] = typ
	}
}

func (c *Checker) checkFor(st *ast.ForStmt) {
	low, high := st.Range.Low, st.Range.High

	// Type the non-literal bound first so a literal partner coerces to it.
	var lowT, highT Type
	if isIntLiteral(low) && !isIntLiteral(high) {
		highT = c.checkExpr(high, nil)
		lowT = c.checkExpr(low, highT)
	} else {
		lowT = c.checkExpr(low, nil)
		highT = c.checkExpr(high, lowT)
	}

	if !IsInteger(lowT) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: range bounds must be integers, found %s", lowT),
			low.Span())
	} else if !Equal(lowT, highT) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: range bounds have different types %s and %s", lowT, highT),
			st.Range.Span())
	}

	c.Types[st.Range.ID()] = lowT
	c.bindVar(c.res.Decls[st.ID()], lowT)

	c.checkBlock(st.Body)
}

func (c *Checker) checkReturn(st *ast.ReturnStmt) {
	if st.Value == nil {
		if !Equal(c.curRet, TypeUnit) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: this function returns %s but the return has no value", c.curRet),
				st.Span())
		}
		return
	}

	if Equal(c.curRet, TypeUnit) {
		c.reportError(diag.CodeTypeMismatch,
			"type mismatch: this function does not return a value",
			st.Value.Span())
		c.checkExpr(st.Value, nil)
		return
	}

	got := c.checkExpr(st.Value, c.curRet)
	if got != nil && !Equal(got, c.curRet) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: expected return type %s, found %s", c.curRet, got),
			st.Value.Span())
	}
}

func (c *Checker) checkCondition(cond ast.Expr) {
	got := c.checkExpr(cond, TypeBool)
	if got != nil && !Equal(got, TypeBool) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: condition must be bool, found %s", got),
			cond.Span())
	}
}

// terminates reports whether every control path through stmt ends in a
// return. Loops never guarantee termination of their body path.
func terminates(stmt ast.Stmt) bool {
	switch st := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		for _, s := range st.Stmts {
			if terminates(s) {
				return true
			}
		}
		return false
	case *ast.IfStmt:
		return st.Else != nil && terminates(st.Then) && terminates(st.Else)
	default:
		return false
	}
}

// fallthroughSpan locates the branch that falls through without returning,
// descending into a trailing if/else chain when one side is the culprit.
func fallthroughSpan(block *ast.Block) lexer.Span {
	if len(block.Stmts) == 0 {
		return block.Span()
	}

	last := block.Stmts[len(block.Stmts)-1]
	if ifStmt, ok := last.(*ast.IfStmt); ok {
		if !terminates(ifStmt.Then) {
			return fallthroughSpan(ifStmt.Then)
		}
		if ifStmt.Else != nil && !terminates(ifStmt.Else) {
			if elseBlock, ok := ifStmt.Else.(*ast.Block); ok {
				return fallthroughSpan(elseBlock)
			}
			if elseIf, ok := ifStmt.Else.(*ast.IfStmt); ok {
				return fallthroughSpan(&ast.Block{Stmts: []ast.Stmt{elseIf}})
			}
		}
		if ifStmt.Else == nil {
			return ifStmt.Span()
		}
	}

	return block.Span()
}

func (c *Checker) reportError(code diag.Code, msg string, span lexer.Span) {
	c.Errors = append(c.Errors, diag.Diagnostic{
		Stage:    diag.StageTypes,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
		Span: diag.Span{
			Filename: span.Filename,
			Line:     span.Line,
			Column:   span.Column,
			Start:    span.Start,
			End:      span.End,
		},
	})
}
