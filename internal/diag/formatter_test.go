package diag

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatPlain(t *testing.T, source string, diags ...Diagnostic) string {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out bytes.Buffer
	NewFormatter(&out, source).FormatAll(diags)
	return out.String()
}

func TestFormat_HeaderAndSpan(t *testing.T) {
	out := formatPlain(t, "let x: s32 = true;", Diagnostic{
		Stage:    StageTypes,
		Severity: SeverityError,
		Code:     CodeTypeMismatch,
		Message:  "type mismatch: `x` is declared s32 but initialized with bool",
		Span:     Span{Filename: "main.rl", Line: 1, Column: 14, Start: 13, End: 17},
	})

	assert.Contains(t, out, "error[TYPE_MISMATCH]: type mismatch")
	assert.Contains(t, out, " --> main.rl:1:14\n")
	assert.Contains(t, out, "1 | let x: s32 = true;\n")
	assert.Contains(t, out, "error: 1 error(s) emitted\n")
}

func TestFormat_CaretUnderOffendingToken(t *testing.T) {
	out := formatPlain(t, "let x: s32 = true;", Diagnostic{
		Severity: SeverityError,
		Code:     CodeTypeMismatch,
		Message:  "type mismatch",
		Span:     Span{Filename: "main.rl", Line: 1, Column: 14, Start: 13, End: 17},
	})

	// Four carets under `true`, aligned past the gutter.
	assert.Contains(t, out, " |              ^^^^\n")
}

func TestFormat_HelpLine(t *testing.T) {
	out := formatPlain(t, "", Diagnostic{
		Severity: SeverityError,
		Code:     CodeNameDuplicateSymbol,
		Message:  "duplicate definition of `x`",
		Span:     Span{Filename: "main.rl", Line: 2, Column: 5},
		Help:     "previous definition at main.rl:1:5",
	})

	assert.Contains(t, out, "help: previous definition at main.rl:1:5\n")
}

func TestFormatAll_SourceOrderAcrossStages(t *testing.T) {
	out := formatPlain(t, "",
		Diagnostic{Severity: SeverityError, Code: CodeTypeMismatch, Message: "second", Span: Span{Line: 3, Column: 1}},
		Diagnostic{Severity: SeverityError, Code: CodeNameUndefinedSymbol, Message: "first", Span: Span{Line: 1, Column: 1}},
	)

	first := bytes.Index([]byte(out), []byte("first"))
	second := bytes.Index([]byte(out), []byte("second"))
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestFormat_NoSnippetWithoutSource(t *testing.T) {
	out := formatPlain(t, "", Diagnostic{
		Severity: SeverityError,
		Code:     CodeParseExpected,
		Message:  "expected `;`",
		Span:     Span{Filename: "main.rl", Line: 1, Column: 1},
	})

	assert.NotContains(t, out, "|")
}

func TestSortBySource_Stable(t *testing.T) {
	diags := []Diagnostic{
		{Message: "a", Span: Span{Line: 1, Column: 1, Start: 0}},
		{Message: "b", Span: Span{Line: 1, Column: 1, Start: 0}},
		{Message: "c", Span: Span{Line: 1, Column: 1, Start: 0}},
	}
	SortBySource(diags)
	assert.Equal(t, "a", diags[0].Message)
	assert.Equal(t, "b", diags[1].Message)
	assert.Equal(t, "c", diags[2].Message)
}

func TestCountErrors(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityError},
	}
	assert.Equal(t, 2, CountErrors(diags))
}
