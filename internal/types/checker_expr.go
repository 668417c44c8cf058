package types

import (
	"fmt"
	"math"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/resolver"
)

// checkExpr types an expression and records the result in the side table.
// want is the surrounding context's type and is only consulted to coerce
// numeric literals; it never influences non-literal expressions. A nil
// result means the expression was too broken to type.
func (c *Checker) checkExpr(expr ast.Expr, want Type) Type {
	var typ Type

	switch e := expr.(type) {
	case *ast.IntLit:
		typ = c.intLiteralType(e, want, false)
	case *ast.FloatLit:
		typ = c.floatLiteralType(want)
	case *ast.BoolLit:
		typ = TypeBool
	case *ast.CharLit:
		typ = TypeChar
	case *ast.StringLit:
		typ = TypeString
	case *ast.Ident:
		typ = c.symbolType(c.res.Uses[e.ID()], e.Name, e.Span())
	case *ast.PathExpr:
		last := e.Segments[len(e.Segments)-1]
		typ = c.symbolType(c.res.Uses[e.ID()], last.Name, e.Span())
	case *ast.PrefixExpr:
		typ = c.checkPrefix(e, want)
	case *ast.InfixExpr:
		typ = c.checkInfix(e)
	case *ast.AssignExpr:
		typ = c.checkAssign(e)
	case *ast.CallExpr:
		typ = c.checkCall(e)
	}

	if typ != nil {
		c.Types[expr.ID()] = typ
	}
	return typ
}

// intLiteralType applies literal defaulting and target-typed coercion: the
// literal takes the context's numeric type when its value is representable
// there, and defaults to s32 otherwise. neg marks a literal under unary
// minus, which changes the representable range.
func (c *Checker) intLiteralType(lit *ast.IntLit, want Type, neg bool) Type {
	if want != nil && IsNumeric(want) {
		if IsFloat(want) {
			return want
		}
		if literalFits(lit.Value, neg, want.(*Primitive).Kind) {
			return want
		}
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: literal `%s%s` is out of range for %s",
				negPrefix(neg), lit.Raw, want),
			lit.Span())
		return want
	}

	if !literalFits(lit.Value, neg, S32) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: literal `%s%s` is out of range for s32; annotate a wider type",
				negPrefix(neg), lit.Raw),
			lit.Span())
	}
	return TypeS32
}

func (c *Checker) floatLiteralType(want Type) Type {
	if want != nil && IsFloat(want) {
		return want
	}
	return TypeF64
}

func negPrefix(neg bool) string {
	if neg {
		return "-"
	}
	return ""
}

// literalFits reports whether a decimal literal (negated when neg) is
// representable in the integer kind.
func literalFits(value uint64, neg bool, kind PrimitiveKind) bool {
	if neg {
		switch kind {
		case S32:
			return value <= uint64(math.MaxInt32)+1
		case S64:
			return value <= uint64(math.MaxInt64)+1
		case U32, U64:
			return value == 0
		}
		return false
	}

	switch kind {
	case S32:
		return value <= math.MaxInt32
	case S64:
		return value <= math.MaxInt64
	case U32:
		return value <= math.MaxUint32
	case U64:
		return true
	}
	return false
}

func (c *Checker) symbolType(sym *resolver.Symbol, name string, span lexer.Span) Type {
	if sym == nil {
		// The resolver already reported this reference.
		return nil
	}

	switch sym.Kind {
	case resolver.SymbolVar:
		return c.VarTypes[sym]
	case resolver.SymbolFunc, resolver.SymbolBuiltin:
		// Functions are not first-class values.
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: `%s` is a function and can only be called", name), span)
		return nil
	default:
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: `%s` is a module, not a value", name), span)
		return nil
	}
}

func (c *Checker) checkPrefix(e *ast.PrefixExpr, want Type) Type {
	switch e.Op {
	case lexer.BANG:
		got := c.checkExpr(e.Right, TypeBool)
		if got != nil && !Equal(got, TypeBool) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: `!` requires bool, found %s", got),
				e.Right.Span())
			return TypeBool
		}
		return TypeBool

	case lexer.MINUS:
		// A negated integer literal is typed as one unit so -2147483648
		// fits in s32.
		if lit, ok := e.Right.(*ast.IntLit); ok {
			typ := c.intLiteralType(lit, want, true)
			c.Types[lit.ID()] = typ
			return typ
		}

		inner := want
		if inner != nil && !IsNumeric(inner) {
			inner = nil
		}
		got := c.checkExpr(e.Right, inner)
		if got == nil {
			return nil
		}
		if !IsNumeric(got) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: unary `-` requires a numeric operand, found %s", got),
				e.Right.Span())
			return nil
		}
		return got
	}
	return nil
}

func (c *Checker) checkInfix(e *ast.InfixExpr) Type {
	switch e.Op {
	case lexer.AND, lexer.OR:
		c.requireBool(e.Left)
		c.requireBool(e.Right)
		return TypeBool

	case lexer.EQ, lexer.NOT_EQ:
		lt, rt := c.checkOperands(e.Left, e.Right)
		if lt != nil && rt != nil && !Equal(lt, rt) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: cannot compare %s with %s", lt, rt),
				e.Span())
		}
		return TypeBool

	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		lt, rt := c.checkOperands(e.Left, e.Right)
		if lt != nil && rt != nil {
			if !IsNumeric(lt) || !IsNumeric(rt) {
				c.reportError(diag.CodeTypeMismatch,
					fmt.Sprintf("type mismatch: ordering requires numeric operands, found %s and %s", lt, rt),
					e.Span())
			} else if !Equal(lt, rt) {
				c.reportError(diag.CodeTypeMismatch,
					fmt.Sprintf("type mismatch: cannot compare %s with %s", lt, rt),
					e.Span())
			}
		}
		return TypeBool

	case lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH:
		lt, rt := c.checkOperands(e.Left, e.Right)
		if lt == nil || rt == nil {
			return nil
		}
		if !IsNumeric(lt) || !IsNumeric(rt) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: `%s` requires numeric operands, found %s and %s",
					e.Op, lt, rt),
				e.Span())
			return nil
		}
		if !Equal(lt, rt) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: operands of `%s` have different types %s and %s",
					e.Op, lt, rt),
				e.Span())
		}
		return lt
	}
	return nil
}

// checkOperands types an operand pair with cross-literal coercion: when
// exactly one side is a numeric literal, the other side is typed first and
// becomes the literal's target. Two literals (or two non-literals) type
// independently left to right.
func (c *Checker) checkOperands(left, right ast.Expr) (Type, Type) {
	if isNumLiteral(left) && !isNumLiteral(right) {
		rt := c.checkExpr(right, nil)
		lt := c.checkExpr(left, rt)
		return lt, rt
	}

	lt := c.checkExpr(left, nil)
	var rt Type
	if isNumLiteral(right) {
		rt = c.checkExpr(right, lt)
	} else {
		rt = c.checkExpr(right, nil)
	}
	return lt, rt
}

func (c *Checker) requireBool(expr ast.Expr) {
	got := c.checkExpr(expr, TypeBool)
	if got != nil && !Equal(got, TypeBool) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: logical operators require bool, found %s", got),
			expr.Span())
	}
}

func (c *Checker) checkAssign(e *ast.AssignExpr) Type {
	target, ok := e.Target.(*ast.Ident)
	if !ok {
		// The resolver rejected the target already.
		c.checkExpr(e.Value, nil)
		return TypeUnit
	}

	sym := c.res.Uses[target.ID()]
	varType := c.VarTypes[sym]
	if varType != nil {
		c.Types[target.ID()] = varType
	}

	got := c.checkExpr(e.Value, varType)
	if got != nil && varType != nil && !Equal(got, varType) {
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: `%s` has type %s but is assigned %s",
				target.Name, varType, got),
			e.Value.Span())
	}

	return TypeUnit
}

func (c *Checker) checkCall(e *ast.CallExpr) Type {
	sig := c.calleeSignature(e.Callee)
	if sig == nil {
		for _, arg := range e.Args {
			c.checkExpr(arg, nil)
		}
		return nil
	}
	c.Types[e.Callee.ID()] = sig

	if len(e.Args) != len(sig.Params) {
		c.reportError(diag.CodeTypeArityMismatch,
			fmt.Sprintf("arity mismatch: expected %d argument(s), found %d",
				len(sig.Params), len(e.Args)),
			e.Span())
		for _, arg := range e.Args {
			c.checkExpr(arg, nil)
		}
		return sig.Return
	}

	for i, arg := range e.Args {
		got := c.checkExpr(arg, sig.Params[i])
		if got != nil && !Equal(got, sig.Params[i]) {
			c.reportError(diag.CodeTypeMismatch,
				fmt.Sprintf("type mismatch: argument %d expects %s, found %s",
					i+1, sig.Params[i], got),
				arg.Span())
		}
	}

	return sig.Return
}

// calleeSignature resolves the callee expression to a function signature,
// reporting when the expression does not name a callable symbol.
func (c *Checker) calleeSignature(callee ast.Expr) *Function {
	var sym *resolver.Symbol
	switch e := callee.(type) {
	case *ast.Ident:
		sym = c.res.Uses[e.ID()]
	case *ast.PathExpr:
		sym = c.res.Uses[e.ID()]
	default:
		c.reportError(diag.CodeTypeMismatch,
			"type mismatch: expression is not callable", callee.Span())
		return nil
	}

	if sym == nil {
		// Unresolved callee was already reported.
		return nil
	}

	switch sym.Kind {
	case resolver.SymbolFunc:
		return c.sigs[sym.Fn]
	case resolver.SymbolBuiltin:
		return builtinSigs[sym.Name]
	default:
		c.reportError(diag.CodeTypeMismatch,
			fmt.Sprintf("type mismatch: `%s` is a %s, not a function", sym.Name, sym.Kind),
			callee.Span())
		return nil
	}
}

// isNumLiteral reports whether expr is a numeric literal, possibly under a
// unary minus, and therefore subject to target-typed coercion.
func isNumLiteral(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntLit, *ast.FloatLit:
		return true
	case *ast.PrefixExpr:
		if e.Op != lexer.MINUS {
			return false
		}
		return isNumLiteral(e.Right)
	}
	return false
}

// isIntLiteral reports whether expr is an integer literal, possibly
// negated. Used to pick the typing order of range bounds.
func isIntLiteral(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntLit:
		return true
	case *ast.PrefixExpr:
		if e.Op != lexer.MINUS {
			return false
		}
		return isIntLiteral(e.Right)
	}
	return false
}
