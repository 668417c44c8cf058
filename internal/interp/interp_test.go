package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/internal/mir"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/resolver"
	"github.com/rill-lang/rill/internal/types"
)

func compile(t *testing.T, input string) *mir.Module {
	t.Helper()
	p := parser.New(input)
	file := p.ParseFile()
	require.Empty(t, p.Errors())

	r := resolver.New()
	r.Resolve(file)
	require.Empty(t, r.Errors)

	c := types.NewChecker(r)
	c.Check(file)
	require.Empty(t, c.Errors)

	module, err := mir.NewLowerer(r, c).LowerFile(file)
	require.NoError(t, err)
	require.NoError(t, mir.VerifyModule(module))
	return module
}

func run(t *testing.T, input string) (interface{}, string, error) {
	t.Helper()
	var out bytes.Buffer
	result, err := New(compile(t, input), &out).Run("run")
	return result, out.String(), err
}

func runExit(t *testing.T, input string) int {
	t.Helper()
	result, _, err := run(t, input)
	require.NoError(t, err)
	return ExitCode(result)
}

func TestRun_Arithmetic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"constant", `fn run() -> s32 { return 42; }`, 42},
		{"precedence", `fn run() -> s32 { return 2 + 3 * 4; }`, 14},
		{"negation", `fn run() -> s32 { return -7 + 10; }`, 3},
		{"signed division", `fn run() -> s32 { return -7 / 2; }`, -3},
		{"locals", `fn run() -> s32 {
			let a = 6;
			let b = 7;
			return a * b;
		}`, 42},
		{"mutation", `fn run() -> s32 {
			let mut x = 1;
			x = x + 1;
			x = x * 10;
			return x;
		}`, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runExit(t, tt.input))
		})
	}
}

func TestRun_ControlFlow(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"if taken", `fn run() -> s32 { if 1 < 2 { return 1; } return 0; }`, 1},
		{"if not taken", `fn run() -> s32 { if 2 < 1 { return 1; } return 0; }`, 0},
		{"else", `fn run() -> s32 { if false { return 1; } else { return 2; } }`, 2},
		{"while sum", `fn run() -> s32 {
			let mut i = 0;
			let mut total = 0;
			while i < 5 { total = total + i; i = i + 1; }
			return total;
		}`, 10},
		{"for sum", `fn run() -> s32 {
			let mut total = 0;
			for (i in 0..5) { total = total + i; }
			return total;
		}`, 10},
		{"empty range", `fn run() -> s32 {
			let mut total = 0;
			for (i in 5..5) { total = total + 1; }
			return total;
		}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runExit(t, tt.input))
		})
	}
}

func TestRun_Recursion(t *testing.T) {
	assert.Equal(t, 120, runExit(t, `
		fn fact(n: s32) -> s32 {
			if n <= 1 { return 1; }
			return n * fact(n - 1);
		}
		fn run() -> s32 { return fact(5); }
	`))

	assert.Equal(t, 55, runExit(t, `
		fn fib(n: s32) -> s32 {
			if n < 2 { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		fn run() -> s32 { return fib(10); }
	`))
}

func TestRun_ModuleCalls(t *testing.T) {
	assert.Equal(t, 7, runExit(t, `
		mod math {
			fn abs(x: s32) -> s32 {
				if x < 0 { return 0 - x; }
				return x;
			}
		}
		fn run() -> s32 { return math::abs(-7); }
	`))
}

func TestRun_ShortCircuitSkipsSideEffects(t *testing.T) {
	// The right operand must not execute when the left decides the result.
	_, out, err := run(t, `
		fn noisy() -> bool { print(99); return true; }
		fn run() -> s32 {
			if false && noisy() { return 1; }
			if true || noisy() { return 2; }
			return 0;
		}
	`)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_ShortCircuitEvaluatesWhenNeeded(t *testing.T) {
	_, out, err := run(t, `
		fn noisy() -> bool { print(7); return true; }
		fn run() -> s32 {
			if true && noisy() { return 1; }
			return 0;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRun_PrintFormat(t *testing.T) {
	_, out, err := run(t, `fn run() {
		print(1);
		print(-5);
		print(0);
	}`)
	require.NoError(t, err)
	assert.Equal(t, "1\n-5\n0\n", out)
}

func TestRun_DivisionByZeroFaults(t *testing.T) {
	_, _, err := run(t, `fn run() -> s32 {
		let zero = 0;
		return 1 / zero;
	}`)
	require.Error(t, err)

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "run", fault.Fn)
	assert.Contains(t, fault.Msg, "division by zero")
}

func TestRun_IntegerWrapping(t *testing.T) {
	// s32 arithmetic wraps at 32 bits.
	assert.Equal(t, -2147483648, runExit(t, `fn run() -> s32 {
		let max = 2147483647;
		return max + 1;
	}`))

	// Subtraction below zero wraps too; the raw bits come back out through
	// the exit code's int32 reinterpretation.
	assert.Equal(t, -1, runExit(t, `fn run() -> s32 {
		let mut x = 0;
		x = x - 1;
		return x;
	}`))
}

func TestRun_UnsignedComparison(t *testing.T) {
	// 0 - 1 as u32 is a huge unsigned number, so the unsigned comparison
	// sees it as greater than one.
	assert.Equal(t, 1, runExit(t, `
		fn wrapped() -> u32 {
			let mut x: u32 = 0;
			x = x - 1;
			return x;
		}
		fn run() -> s32 {
			let big = wrapped();
			let one: u32 = 1;
			if big > one { return 1; }
			return 0;
		}
	`))
}

func TestRun_WiderIntegers(t *testing.T) {
	// s64 keeps values past the 32-bit boundary: 2^32 truncated to 32 bits
	// would be zero and fail the comparison.
	assert.Equal(t, 1, runExit(t, `fn run() -> s32 {
		let big: s64 = 4294967296;
		if big > 0 { return 1; }
		return 0;
	}`))
}

func TestRun_FloatArithmetic(t *testing.T) {
	assert.Equal(t, 1, runExit(t, `fn run() -> s32 {
		let half: f64 = 1.0 / 2.0;
		if half < 1.0 { return 1; }
		return 0;
	}`))

	assert.Equal(t, 1, runExit(t, `fn run() -> s32 {
		let a: f32 = 0.5;
		let b: f32 = 0.25;
		if a + b < 1.0 { return 1; }
		return 0;
	}`))
}

func TestRun_BooleansAndUnary(t *testing.T) {
	assert.Equal(t, 1, runExit(t, `fn run() -> s32 {
		let flag = !false;
		if flag { return 1; }
		return 0;
	}`))
}

func TestRun_UnitEntryExitsZero(t *testing.T) {
	result, _, err := run(t, `fn run() { print(3); }`)
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(result))
}

func TestRun_MissingEntry(t *testing.T) {
	module := compile(t, `fn main() -> s32 { return 0; }`)
	var out bytes.Buffer
	_, err := New(module, &out).Run("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no function `run`")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 42, ExitCode(uint64(42)))
	assert.Equal(t, -1, ExitCode(uint64(0xFFFFFFFF)))
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(true))
}
