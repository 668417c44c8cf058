package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders diagnostics with source snippets and severity coloring.
type Formatter struct {
	out    io.Writer
	source string // source text for snippet rendering; may be empty
}

// NewFormatter creates a formatter writing to out. The source text is used
// to render the offending line under each diagnostic; pass "" to skip
// snippets.
func NewFormatter(out io.Writer, source string) *Formatter {
	return &Formatter{out: out, source: source}
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	noteColor  = color.New(color.FgCyan, color.Bold)
	spanColor  = color.New(color.FgBlue, color.Bold)
)

func severityColor(s Severity) *color.Color {
	switch s {
	case SeverityError:
		return errorColor
	case SeverityWarning:
		return warnColor
	default:
		return noteColor
	}
}

// Format writes one diagnostic in a rustc-style layout:
//
//	error[TYPE_MISMATCH]: expected `s32`, found `bool`
//	 --> main.rl:3:9
//	  |
//	3 |     let x: s32 = true;
//	  |         ^
func (f *Formatter) Format(d Diagnostic) {
	header := string(d.Severity)
	if d.Code != "" {
		header = fmt.Sprintf("%s[%s]", d.Severity, d.Code)
	}
	severityColor(d.Severity).Fprint(f.out, header)
	fmt.Fprintf(f.out, ": %s\n", d.Message)

	if d.Span.IsValid() {
		spanColor.Fprint(f.out, " --> ")
		fmt.Fprintf(f.out, "%s\n", d.Span)
		f.printSnippet(d.Span)
	}

	if d.Help != "" {
		noteColor.Fprint(f.out, "help")
		fmt.Fprintf(f.out, ": %s\n", d.Help)
	}
}

// FormatAll writes all diagnostics in source order followed by a summary line.
func (f *Formatter) FormatAll(diags []Diagnostic) {
	SortBySource(diags)
	for _, d := range diags {
		f.Format(d)
	}
	if n := CountErrors(diags); n > 0 {
		errorColor.Fprint(f.out, "error")
		fmt.Fprintf(f.out, ": %d error(s) emitted\n", n)
	}
}

func (f *Formatter) printSnippet(span Span) {
	if f.source == "" {
		return
	}
	lines := strings.Split(f.source, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		return
	}
	line := lines[span.Line-1]
	gutter := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(gutter))

	spanColor.Fprintf(f.out, "%s |\n", pad)
	spanColor.Fprintf(f.out, "%s |", gutter)
	fmt.Fprintf(f.out, " %s\n", line)
	spanColor.Fprintf(f.out, "%s |", pad)

	caretCol := span.Column
	if caretCol < 1 {
		caretCol = 1
	}
	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	if width > len(line)-caretCol+1 {
		width = len(line) - caretCol + 1
		if width < 1 {
			width = 1
		}
	}
	fmt.Fprint(f.out, " "+strings.Repeat(" ", caretCol-1))
	severityColor(SeverityError).Fprint(f.out, strings.Repeat("^", width))
	fmt.Fprintln(f.out)
}
