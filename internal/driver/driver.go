// Package driver runs the staged compilation pipeline: lex, parse,
// resolve, type-check, lower. Each stage batches its diagnostics; a stage
// that records any error halts the pipeline, so later stages only ever see
// clean input.
package driver

import (
	"fmt"
	"io"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/interp"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/mir"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/resolver"
	"github.com/rill-lang/rill/internal/types"
)

// Result holds the artifacts of one compilation. Module is nil whenever
// Diagnostics contains errors; Diagnostics is always sorted by source
// position.
type Result struct {
	File        *ast.File
	Module      *mir.Module
	Diagnostics []diag.Diagnostic
}

// Failed reports whether the compilation recorded any error diagnostics.
func (r *Result) Failed() bool {
	return diag.CountErrors(r.Diagnostics) > 0
}

// Compile runs the full pipeline over one compilation unit. The returned
// error is non-nil only for compiler-internal invariant violations
// (mir.InternalError); every user-facing problem is a diagnostic in the
// Result.
func Compile(source, filename string) (*Result, error) {
	res := &Result{}

	// The parser owns its lexer, so lexical errors are gathered by a
	// dedicated scan first: parsing only proceeds on a lexically clean
	// input.
	lx := lexer.New(source)
	lx.SetFilename(filename)
	lx.Tokenize()
	for _, lexErr := range lx.Errors {
		res.Diagnostics = append(res.Diagnostics, lexErr.ToDiagnostic())
	}
	if res.Failed() {
		return finish(res), nil
	}

	p := parser.New(source, parser.WithFilename(filename))
	res.File = p.ParseFile()
	for _, parseErr := range p.Errors() {
		res.Diagnostics = append(res.Diagnostics, parseErr.ToDiagnostic())
	}
	if res.Failed() {
		return finish(res), nil
	}

	rs := resolver.New()
	rs.Resolve(res.File)
	res.Diagnostics = append(res.Diagnostics, rs.Errors...)
	if res.Failed() {
		return finish(res), nil
	}

	chk := types.NewChecker(rs)
	chk.Check(res.File)
	res.Diagnostics = append(res.Diagnostics, chk.Errors...)
	if res.Failed() {
		return finish(res), nil
	}

	module, err := mir.NewLowerer(rs, chk).LowerFile(res.File)
	if err != nil {
		return finish(res), fmt.Errorf("code generation failed: %w", err)
	}
	if err := mir.VerifyModule(module); err != nil {
		return finish(res), fmt.Errorf("code generation produced an invalid module: %w", err)
	}

	res.Module = module
	return finish(res), nil
}

func finish(res *Result) *Result {
	diag.SortBySource(res.Diagnostics)
	return res
}

// Run compiles source and executes its `run` function on the reference
// evaluator, writing print output to out. The int is the process exit code
// derived from run's result. Runtime faults come back as an
// *interp.Fault, never as a diagnostic.
func Run(source, filename string, out io.Writer) (int, *Result, error) {
	res, err := Compile(source, filename)
	if err != nil || res.Failed() {
		return 0, res, err
	}

	machine := interp.New(res.Module, out)
	result, err := machine.Run("run")
	if err != nil {
		return 0, res, err
	}
	return interp.ExitCode(result), res, nil
}
