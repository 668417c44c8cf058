package diag

import (
	"fmt"
	"sort"
)

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageResolver Stage = "resolver"
	StageTypes    Stage = "typecheck"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexUnterminatedString Code = "LEX_UNTERMINATED_STRING"
	CodeLexInvalidCharacter   Code = "LEX_INVALID_CHARACTER"

	// Parser errors
	CodeParseExpected Code = "PARSE_EXPECTED"

	// Name resolution errors
	CodeNameUndefinedSymbol     Code = "NAME_UNDEFINED_SYMBOL"
	CodeNameDuplicateSymbol     Code = "NAME_DUPLICATE_SYMBOL"
	CodeNameUnresolvedModPath   Code = "NAME_UNRESOLVED_MODULE_PATH"
	CodeTypeAssignToNonLvalue   Code = "TYPE_ASSIGN_TO_NON_LVALUE"

	// Type checker errors
	CodeTypeMismatch       Code = "TYPE_MISMATCH"
	CodeTypeArityMismatch  Code = "TYPE_ARITY_MISMATCH"
	CodeTypeMissingReturn  Code = "TYPE_MISSING_RETURN"
	CodeTypeUninferable    Code = "TYPE_UNINFERABLE"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Help     string
}

// WithHelp returns a copy of the diagnostic with help text attached.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// SortBySource orders diagnostics by source position, regardless of the
// stage that produced them. The sort is stable so diagnostics at the same
// position keep their emission order.
func SortBySource(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Span, diags[j].Span
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Start < b.Start
	})
}

// CountErrors returns the number of error-severity diagnostics.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}
