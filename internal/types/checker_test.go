package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/resolver"
)

func checkSource(t *testing.T, input string) (*Checker, *ast.File) {
	t.Helper()
	p := parser.New(input)
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "test source must parse cleanly")

	r := resolver.New()
	r.Resolve(file)
	require.Empty(t, r.Errors, "test source must resolve cleanly")

	c := NewChecker(r)
	c.Check(file)
	return c, file
}

func requireErrorCode(t *testing.T, c *Checker, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range c.Errors {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected a %s error, got %v", code, c.Errors)
	return diag.Diagnostic{}
}

// letType returns the bound type of the n-th let statement of the first
// function.
func letType(t *testing.T, c *Checker, file *ast.File, n int) Type {
	t.Helper()
	fn := file.Items[0].(*ast.FnDecl)
	let := fn.Body.Stmts[n].(*ast.LetStmt)
	sym := c.res.Decls[let.ID()]
	require.NotNil(t, sym)
	return c.VarTypes[sym]
}

func TestLiteralDefaults(t *testing.T) {
	c, file := checkSource(t, `fn test() {
		let a = 5;
		let b = 2.5;
		let c = true;
		let d = 'x';
		let e = "hi";
	}`)
	require.Empty(t, c.Errors)

	assert.True(t, Equal(TypeS32, letType(t, c, file, 0)))
	assert.True(t, Equal(TypeF64, letType(t, c, file, 1)))
	assert.True(t, Equal(TypeBool, letType(t, c, file, 2)))
	assert.True(t, Equal(TypeChar, letType(t, c, file, 3)))
	assert.True(t, Equal(TypeString, letType(t, c, file, 4)))
}

func TestIntegerLiteralCoercion_ToAnnotatedTarget(t *testing.T) {
	c, file := checkSource(t, `fn test() {
		let a: u64 = 5;
		let b: s64 = 5;
		let c: f64 = 5;
	}`)
	require.Empty(t, c.Errors)

	assert.True(t, Equal(TypeU64, letType(t, c, file, 0)))
	assert.True(t, Equal(TypeS64, letType(t, c, file, 1)))
	assert.True(t, Equal(TypeF64, letType(t, c, file, 2)))
}

func TestNonLiteralNeverCoerces(t *testing.T) {
	c, _ := checkSource(t, `fn test() {
		let a = 5;
		let b: u64 = a;
	}`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestLiteralOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"u32 overflow", `fn test() { let a: u32 = 4294967296; }`},
		{"s32 overflow", `fn test() { let a: s32 = 2147483648; }`},
		{"default s32 overflow", `fn test() { let a = 2147483648; }`},
		{"negative into unsigned", `fn test() { let a: u64 = -1; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := checkSource(t, tt.input)
			requireErrorCode(t, c, diag.CodeTypeMismatch)
		})
	}
}

func TestNegativeLiteral_FitsSignedEdge(t *testing.T) {
	c, _ := checkSource(t, `fn test() { let a: s32 = -2147483648; }`)
	assert.Empty(t, c.Errors)
}

func TestLiteralCoercion_InArgumentAndReturn(t *testing.T) {
	c, _ := checkSource(t, `
		fn take(x: u64) -> u64 { return 7; }
		fn test() { take(5); }
	`)
	assert.Empty(t, c.Errors)
}

func TestLiteralCoercion_InBinaryOperand(t *testing.T) {
	c, _ := checkSource(t, `fn test(n: u64) -> bool { return n < 10; }`)
	assert.Empty(t, c.Errors)
}

func TestUninferableType(t *testing.T) {
	c, _ := checkSource(t, `fn test() { let a; }`)
	d := requireErrorCode(t, c, diag.CodeTypeUninferable)
	assert.Greater(t, d.Span.Line, 0)
}

func TestAnnotatedLetWithoutInitializer_Ok(t *testing.T) {
	c, _ := checkSource(t, `fn test() { let mut a: s32; a = 1; }`)
	assert.Empty(t, c.Errors)
}

func TestArithmetic_RequiresSameNumericType(t *testing.T) {
	c, _ := checkSource(t, `fn test(a: s32, b: s64) { let x = a + b; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestComparisonYieldsBool(t *testing.T) {
	c, file := checkSource(t, `fn test(a: s32) {
		let x = a < 3;
	}`)
	require.Empty(t, c.Errors)
	assert.True(t, Equal(TypeBool, letType(t, c, file, 0)))
}

func TestEquality_RequiresIdenticalTypes(t *testing.T) {
	c, _ := checkSource(t, `fn test(a: s32, b: bool) { let x = a == b; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestEquality_OnCharAndString(t *testing.T) {
	c, _ := checkSource(t, `fn test(a: char, b: string) {
		let x = a == 'y';
		let y = b == "z";
	}`)
	assert.Empty(t, c.Errors)
}

func TestLogicalOperators_RequireBool(t *testing.T) {
	c, _ := checkSource(t, `fn test(a: s32) { let x = a && true; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestUnaryOperators(t *testing.T) {
	c, _ := checkSource(t, `fn test(b: bool) { let x = !5; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)

	c2, _ := checkSource(t, `fn test(b: bool) { let x = -b; }`)
	requireErrorCode(t, c2, diag.CodeTypeMismatch)
}

func TestCondition_MustBeBool(t *testing.T) {
	c, _ := checkSource(t, `fn test(n: s32) { if n { } }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestCall_ArityMismatch(t *testing.T) {
	c, _ := checkSource(t, `
		fn add(a: s32, b: s32) -> s32 { return a + b; }
		fn test() { add(1); }
	`)
	requireErrorCode(t, c, diag.CodeTypeArityMismatch)
}

func TestCall_ArgumentTypeMismatch(t *testing.T) {
	c, _ := checkSource(t, `
		fn add(a: s32, b: s32) -> s32 { return a + b; }
		fn test(f: f64) { add(1, f); }
	`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestAssignment_TypeMismatch(t *testing.T) {
	c, _ := checkSource(t, `fn test(b: bool) {
		let mut x = 1;
		x = b;
	}`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestMissingReturn_AtFallthroughBranch(t *testing.T) {
	input := `fn sign(n: s32) -> s32 {
		if n < 0 {
			return -1;
		} else {
			let x = 1;
		}
	}`

	c, file := checkSource(t, input)
	d := requireErrorCode(t, c, diag.CodeTypeMissingReturn)

	// The diagnostic points into the else branch, not at the whole body.
	fn := file.Items[0].(*ast.FnDecl)
	ifStmt := fn.Body.Stmts[0].(*ast.IfStmt)
	elseBlock := ifStmt.Else.(*ast.Block)
	assert.GreaterOrEqual(t, d.Span.Start, elseBlock.Span().Start)
	assert.LessOrEqual(t, d.Span.End, elseBlock.Span().End)
}

func TestMissingReturn_LoopDoesNotGuarantee(t *testing.T) {
	c, _ := checkSource(t, `fn test(n: s32) -> s32 {
		while n < 10 {
			return n;
		}
	}`)
	requireErrorCode(t, c, diag.CodeTypeMissingReturn)
}

func TestReturnPath_IfElseBothReturn(t *testing.T) {
	c, _ := checkSource(t, `fn test(n: s32) -> s32 {
		if n < 0 { return 0; } else { return n; }
	}`)
	assert.Empty(t, c.Errors)
}

func TestUnitFunction_NeedsNoReturn(t *testing.T) {
	c, _ := checkSource(t, `fn test() { let a = 1; }`)
	assert.Empty(t, c.Errors)
}

func TestReturnValue_InUnitFunction(t *testing.T) {
	c, _ := checkSource(t, `fn test() { return 1; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestBareReturn_InValueFunction(t *testing.T) {
	c, _ := checkSource(t, `fn test() -> s32 { return; }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestForRange_BoundTypesAgree(t *testing.T) {
	c, _ := checkSource(t, `fn test(n: u64) { for (i in 0..n) { let x = i; } }`)
	assert.Empty(t, c.Errors)
}

func TestForRange_FloatBoundsRejected(t *testing.T) {
	c, _ := checkSource(t, `fn test() { for (i in 0.5..2.5) { } }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestFunctionIsNotAValue(t *testing.T) {
	c, _ := checkSource(t, `
		fn f() { }
		fn test() { let g = f; }
	`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestUnknownTypeName(t *testing.T) {
	c, _ := checkSource(t, `fn test(x: widget) { }`)
	requireErrorCode(t, c, diag.CodeTypeMismatch)
}

func TestBuiltinPrint_Signature(t *testing.T) {
	c, _ := checkSource(t, `fn test() { print(1); }`)
	assert.Empty(t, c.Errors)

	c2, _ := checkSource(t, `fn test(s: string) { print(s); }`)
	requireErrorCode(t, c2, diag.CodeTypeMismatch)
}

func TestExpressionTypes_Recorded(t *testing.T) {
	c, file := checkSource(t, `fn test(a: s32) -> s32 { return a + 1; }`)
	require.Empty(t, c.Errors)

	fn := file.Items[0].(*ast.FnDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	sum := ret.Value.(*ast.InfixExpr)

	assert.True(t, Equal(TypeS32, c.Types[sum.ID()]))
	assert.True(t, Equal(TypeS32, c.Types[sum.Left.ID()]))
	assert.True(t, Equal(TypeS32, c.Types[sum.Right.ID()]))
}

func TestDiagnostics_TaggedAsTypecheckStage(t *testing.T) {
	c, _ := checkSource(t, `fn test() -> s32 { return true; }`)
	require.NotEmpty(t, c.Errors)
	for _, d := range c.Errors {
		assert.Equal(t, diag.StageTypes, d.Stage)
	}
}

func TestChainedAssignment_Rejected(t *testing.T) {
	// An assignment types as unit, so a parse-legal chain like `a = b = 1`
	// fails when the inner result reaches the outer target.
	c, _ := checkSource(t, `fn test() {
		let mut a = 0;
		let mut b = 0;
		a = b = 1;
	}`)
	d := requireErrorCode(t, c, diag.CodeTypeMismatch)
	assert.Contains(t, d.Message, "unit")
}
