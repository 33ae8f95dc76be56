package tagxgen

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// LineMapping records that the generated text at Generated was copied from
// the template text at Document. Both spans have the same length and cover
// identical bytes.
type LineMapping struct {
	Document  Span `json:"document"`
	Generated Span `json:"generated"`
}

// CodeWriter accumulates generated code while tracking the output position
// and the line mappings of code copied from the template.
//
// In design-time mode mapped code is surrounded by line directives pointing
// at the template and back at the generated file, and statements are padded
// so they start at their template column. The directives are comments and
// the padding is whitespace, so the token stream is the same in both modes.
type CodeWriter struct {
	buf         bytes.Buffer
	indent      int
	line        int // current line (1-based)
	column      int // column of the next character (1-based, runes)
	atLineStart bool

	designTime    bool
	sourceFile    string
	generatedFile string
	mappings      []LineMapping
}

// NewCodeWriter creates a writer for one generated file.
func NewCodeWriter(designTime bool, sourceFile, generatedFile string) *CodeWriter {
	return &CodeWriter{
		line:          1,
		column:        1,
		atLineStart:   true,
		designTime:    designTime,
		sourceFile:    sourceFile,
		generatedFile: generatedFile,
	}
}

// DesignTime reports whether the writer emits design-time output.
func (w *CodeWriter) DesignTime() bool {
	return w.designTime
}

// raw appends s without indentation, advancing the position.
func (w *CodeWriter) raw(s string) {
	w.buf.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			w.line++
			w.column = 1
		} else {
			w.column++
		}
	}
	if s != "" {
		w.atLineStart = s[len(s)-1] == '\n'
	}
}

func (w *CodeWriter) writeIndent() {
	if w.atLineStart && w.indent > 0 {
		w.raw(strings.Repeat("\t", w.indent))
	}
	w.atLineStart = false
}

// Write appends s, indenting it when it starts a line.
func (w *CodeWriter) Write(s string) {
	if s == "" {
		return
	}
	if s[0] != '\n' {
		w.writeIndent()
	}
	w.raw(s)
}

// Writef appends formatted text.
func (w *CodeWriter) Writef(format string, args ...any) {
	w.Write(fmt.Sprintf(format, args...))
}

// Line appends s followed by a newline.
func (w *CodeWriter) Line(s string) {
	w.Write(s)
	w.Newline()
}

// Linef appends formatted text followed by a newline.
func (w *CodeWriter) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Newline ends the current line.
func (w *CodeWriter) Newline() {
	w.raw("\n")
}

// Indent increases the indentation of following lines.
func (w *CodeWriter) Indent() {
	w.indent++
}

// Dedent decreases the indentation of following lines.
func (w *CodeWriter) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Pos returns a zero-length span at the current output position.
func (w *CodeWriter) Pos() Span {
	return Span{Offset: w.buf.Len(), Line: w.line, Column: w.column}
}

// WriteMapped appends code copied from the template at doc and records a
// line mapping for it. A zero doc writes the code unmapped.
func (w *CodeWriter) WriteMapped(code string, doc Span) {
	if doc.IsZero() || code == "" {
		w.Write(code)
		return
	}
	w.writeIndent()
	if w.designTime {
		w.raw(fmt.Sprintf("/*line %s:%d:%d*/", w.sourceFile, doc.Line, doc.Column))
	}
	w.record(code, doc)
	if w.designTime {
		w.raw(w.restoreDirective())
	}
}

// WriteMappedLine writes code on a line of its own and records its mapping.
// In design-time mode the line is preceded by a line directive and padded
// so the code starts at its template column.
func (w *CodeWriter) WriteMappedLine(code string, doc Span) {
	if doc.IsZero() || !w.designTime {
		w.WriteMapped(code, doc)
		w.Newline()
		return
	}
	if !w.atLineStart {
		w.Newline()
	}
	w.raw(fmt.Sprintf("//line %s:%d:%d\n", w.sourceFile, doc.Line, doc.Column))
	w.raw(strings.Repeat(" ", max(doc.Column-1, 0)))
	w.atLineStart = false
	w.record(code, doc)
	w.Newline()
	w.raw(fmt.Sprintf("//line %s:%d:1\n", w.generatedFile, w.line+1))
}

func (w *CodeWriter) record(code string, doc Span) {
	start := w.Pos()
	w.raw(code)
	doc.Length = len(code)
	w.mappings = append(w.mappings, LineMapping{Document: doc, Generated: spanBetween(start, w.buf.Len())})
}

// restoreDirective returns an inline line directive placing the character
// after it at its true position in the generated file.
func (w *CodeWriter) restoreDirective() string {
	col := w.column
	var text string
	for range 4 {
		text = fmt.Sprintf("/*line %s:%d:%d*/", w.generatedFile, w.line, col)
		next := w.column + utf8.RuneCountInString(text)
		if next == col {
			break
		}
		col = next
	}
	return text
}

// String returns the code written so far.
func (w *CodeWriter) String() string {
	return w.buf.String()
}

// Mappings returns the line mappings recorded so far, in output order.
func (w *CodeWriter) Mappings() []LineMapping {
	out := make([]LineMapping, len(w.mappings))
	copy(out, w.mappings)
	return out
}
