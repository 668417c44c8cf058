package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/parser"
)

func resolveSource(t *testing.T, input string) (*Resolver, *ast.File) {
	t.Helper()
	p := parser.New(input)
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "test source must parse cleanly")

	r := New()
	r.Resolve(file)
	return r, file
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestResolve_SimpleFunction(t *testing.T) {
	r, _ := resolveSource(t, `fn add(a: s32, b: s32) -> s32 { return a + b; }`)
	assert.Empty(t, r.Errors)
}

func TestForwardReference_MutualRecursion(t *testing.T) {
	// is_odd calls is_even before is_even is declared; declaration order
	// between functions must not matter.
	r, _ := resolveSource(t, `
		fn is_odd(n: s32) -> bool {
			if n == 0 { return false; }
			return is_even(n - 1);
		}
		fn is_even(n: s32) -> bool {
			if n == 0 { return true; }
			return is_odd(n - 1);
		}
	`)
	assert.Empty(t, r.Errors)
}

func TestShadowing_InnerBlockRebinds(t *testing.T) {
	r, file := resolveSource(t, `
		fn test() {
			let x = 1;
			{
				let x = 2;
				let a = x;
			}
			let b = x;
		}
	`)
	require.Empty(t, r.Errors)

	// Collect the two declaration symbols for x and the two reads.
	var declared []*Symbol
	var read []*Symbol
	for _, sym := range r.Decls {
		if sym.Name == "x" {
			declared = append(declared, sym)
		}
	}
	require.Len(t, declared, 2)

	fn := file.Items[0].(*ast.FnDecl)
	inner := fn.Body.Stmts[1].(*ast.Block)
	aInit := inner.Stmts[1].(*ast.LetStmt).Value.(*ast.Ident)
	bInit := fn.Body.Stmts[2].(*ast.LetStmt).Value.(*ast.Ident)
	read = append(read, r.Uses[aInit.ID()], r.Uses[bInit.ID()])

	require.NotNil(t, read[0])
	require.NotNil(t, read[1])
	assert.NotSame(t, read[0], read[1], "inner and outer reads must bind different symbols")

	innerDecl := fn.Body.Stmts[1].(*ast.Block).Stmts[0].(*ast.LetStmt)
	assert.Same(t, r.Decls[innerDecl.ID()], read[0], "inner read binds the inner declaration")
}

func TestSequentialVisibility_ReadBeforeLet(t *testing.T) {
	r, _ := resolveSource(t, `
		fn test() {
			let a = x;
			let x = 1;
		}
	`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameUndefinedSymbol, r.Errors[0].Code)
}

func TestLetInitializer_DoesNotSeeItsOwnBinding(t *testing.T) {
	r, _ := resolveSource(t, `fn test() { let x = x; }`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameUndefinedSymbol, r.Errors[0].Code)
}

func TestDuplicateSymbol_SameScope(t *testing.T) {
	r, _ := resolveSource(t, `
		fn test() {
			let x = 1;
			let x = 2;
		}
	`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameDuplicateSymbol, r.Errors[0].Code)
}

func TestDuplicateSymbol_Functions(t *testing.T) {
	r, _ := resolveSource(t, `fn f() { } fn f() { }`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameDuplicateSymbol, r.Errors[0].Code)
}

func TestModulePath_Resolves(t *testing.T) {
	r, file := resolveSource(t, `
		mod math {
			fn abs(x: s32) -> s32 {
				if x < 0 { return 0 - x; }
				return x;
			}
		}
		fn run() -> s32 { return math::abs(0 - 5); }
	`)
	require.Empty(t, r.Errors)

	run := file.Items[1].(*ast.FnDecl)
	ret := run.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.CallExpr)
	path := call.Callee.(*ast.PathExpr)

	sym := r.Uses[path.ID()]
	require.NotNil(t, sym)
	assert.Equal(t, SymbolFunc, sym.Kind)
	assert.Equal(t, "math::abs", sym.QualifiedName)
}

func TestModulePath_NestedQualifiedName(t *testing.T) {
	r, _ := resolveSource(t, `
		mod outer {
			mod inner {
				fn f() { }
			}
		}
		fn run() { outer::inner::f(); }
	`)
	require.Empty(t, r.Errors)

	var found *Symbol
	for _, sym := range r.Uses {
		if sym.Name == "f" {
			found = sym
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "outer::inner::f", found.QualifiedName)
}

func TestUnresolvedModulePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing module", `fn run() { nosuch::f(); }`},
		{"missing item", `mod m { fn f() { } } fn run() { m::g(); }`},
		{"missing nested module", `mod m { fn f() { } } fn run() { m::sub::f(); }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := resolveSource(t, tt.input)
			require.Len(t, r.Errors, 1)
			assert.Equal(t, diag.CodeNameUnresolvedModPath, r.Errors[0].Code)
		})
	}
}

func TestUndefinedSymbol(t *testing.T) {
	r, _ := resolveSource(t, `fn test() { let a = nothere; }`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameUndefinedSymbol, r.Errors[0].Code)
}

func TestAssignToImmutable(t *testing.T) {
	r, _ := resolveSource(t, `
		fn test() {
			let x = 1;
			x = 2;
		}
	`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeTypeAssignToNonLvalue, r.Errors[0].Code)
}

func TestAssignToMutable_Ok(t *testing.T) {
	r, _ := resolveSource(t, `
		fn test() {
			let mut x = 1;
			x = 2;
		}
	`)
	assert.Empty(t, r.Errors)
}

func TestAssignToFunction(t *testing.T) {
	r, _ := resolveSource(t, `
		fn f() { }
		fn test() { f = 1; }
	`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeTypeAssignToNonLvalue, r.Errors[0].Code)
}

func TestAssignToNonIdentTarget(t *testing.T) {
	r, _ := resolveSource(t, `fn test() { 1 + 2 = 3; }`)
	require.Contains(t, codes(r.Errors), diag.CodeTypeAssignToNonLvalue)
}

func TestParametersAreMutable(t *testing.T) {
	r, _ := resolveSource(t, `fn test(n: s32) { n = n + 1; }`)
	assert.Empty(t, r.Errors)
}

func TestBuiltinPrint_InUniverseScope(t *testing.T) {
	r, _ := resolveSource(t, `fn test() { print(1); }`)
	assert.Empty(t, r.Errors)
}

func TestForLoop_VariableScoping(t *testing.T) {
	r, _ := resolveSource(t, `
		fn test(n: s32) {
			for (i in 0..n) {
				let a = i;
			}
		}
	`)
	assert.Empty(t, r.Errors)
}

func TestForLoop_BoundsCannotSeeLoopVariable(t *testing.T) {
	r, _ := resolveSource(t, `fn test() { for (i in 0..i) { } }`)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNameUndefinedSymbol, r.Errors[0].Code)
}
