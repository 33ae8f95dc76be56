package tagxgen

import (
	"fmt"
	"strings"
)

// DiagnosticKind classifies where a diagnostic originated.
type DiagnosticKind int

const (
	LexError DiagnosticKind = iota
	ParseError
	ResolutionError
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexError:
		return "lex"
	case ParseError:
		return "parse"
	case ResolutionError:
		return "resolution"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a recoverable problem found while compiling a template.
type Diagnostic struct {
	Kind     DiagnosticKind
	Severity Severity
	File     string
	Span     Span
	Message  string
	Hint     string // optional suggestion for fixing the problem
}

// Pos returns the position of the first character the diagnostic refers to.
func (d *Diagnostic) Pos() Position {
	return Position{File: d.File, Line: d.Span.Line, Column: d.Span.Column}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Pos().String())
	sb.WriteString(": ")
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(d.Hint)
		sb.WriteString(")")
	}
	return sb.String()
}

// DiagnosticList collects diagnostics in the order they were found.
type DiagnosticList struct {
	file  string
	items []*Diagnostic
}

// NewDiagnosticList creates an empty list whose entries default to file.
func NewDiagnosticList(file string) *DiagnosticList {
	return &DiagnosticList{file: file}
}

// Add appends a diagnostic, filling in the file name when missing.
func (dl *DiagnosticList) Add(d *Diagnostic) {
	if d.File == "" {
		d.File = dl.file
	}
	dl.items = append(dl.items, d)
}

// AddError records an error of the given kind.
func (dl *DiagnosticList) AddError(kind DiagnosticKind, span Span, message string) {
	dl.Add(&Diagnostic{Kind: kind, Severity: SeverityError, Span: span, Message: message})
}

// AddErrorf records an error with a formatted message.
func (dl *DiagnosticList) AddErrorf(kind DiagnosticKind, span Span, format string, args ...any) {
	dl.AddError(kind, span, fmt.Sprintf(format, args...))
}

// AddErrorWithHint records an error with a hint for fixing it.
func (dl *DiagnosticList) AddErrorWithHint(kind DiagnosticKind, span Span, message, hint string) {
	dl.Add(&Diagnostic{Kind: kind, Severity: SeverityError, Span: span, Message: message, Hint: hint})
}

// AddWarningf records a warning with a formatted message.
func (dl *DiagnosticList) AddWarningf(kind DiagnosticKind, span Span, format string, args ...any) {
	dl.Add(&Diagnostic{Kind: kind, Severity: SeverityWarning, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Append adds all diagnostics from other.
func (dl *DiagnosticList) Append(other []*Diagnostic) {
	for _, d := range other {
		dl.Add(d)
	}
}

// Len returns the number of diagnostics.
func (dl *DiagnosticList) Len() int {
	return len(dl.items)
}

// HasErrors reports whether any diagnostic has error severity.
func (dl *DiagnosticList) HasErrors() bool {
	for _, d := range dl.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns a copy of the diagnostics.
func (dl *DiagnosticList) Diagnostics() []*Diagnostic {
	result := make([]*Diagnostic, len(dl.items))
	copy(result, dl.items)
	return result
}

// Error implements the error interface, returning all diagnostics joined by newlines.
func (dl *DiagnosticList) Error() string {
	var sb strings.Builder
	for i, d := range dl.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}

// Err returns nil unless an error-severity diagnostic was recorded.
func (dl *DiagnosticList) Err() error {
	if !dl.HasErrors() {
		return nil
	}
	return dl
}

// RenderError is a broken internal invariant found while rendering.
// It aborts the pass; no partial output is returned alongside it.
type RenderError struct {
	File    string
	Span    Span
	Message string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	pos := Position{File: e.File, Line: e.Span.Line, Column: e.Span.Column}
	return fmt.Sprintf("%s: render error: %s", pos, e.Message)
}

func renderErrorf(file string, span Span, format string, args ...any) *RenderError {
	return &RenderError{File: file, Span: span, Message: fmt.Sprintf(format, args...)}
}
