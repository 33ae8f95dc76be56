package tagxgen

import (
	"fmt"
	"unicode/utf8"
)

// Span is a half-open range [Offset, Offset+Length) into a source text.
// Line and Column are 1-based and describe the first character; Column counts runes.
type Span struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
	Length int `json:"length"`
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// IsZero reports whether the span is uninitialized.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return o.Offset >= s.Offset && o.End() <= s.End()
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Offset < o.End() && o.Offset < s.End()
}

// Text returns the slice of source covered by the span.
func (s Span) Text(source string) string {
	start, end := s.Offset, s.End()
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	if start >= end {
		return ""
	}
	return source[start:end]
}

// String returns "line:col+len".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d+%d", s.Line, s.Column, s.Length)
}

// Position is a file-qualified location used for reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted position string.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// spanBetween builds a span for source[from:to] where start is the span
// describing from (its Offset must equal from).
func spanBetween(start Span, to int) Span {
	start.Length = to - start.Offset
	if start.Length < 0 {
		start.Length = 0
	}
	return start
}

// subSpan returns the span of source[base.Offset+from : base.Offset+to],
// recomputing line and column by walking the skipped prefix.
func subSpan(source string, base Span, from, to int) Span {
	line, col := base.Line, base.Column
	i := base.Offset
	stop := base.Offset + from
	for i < stop && i < len(source) {
		r, size := utf8.DecodeRuneInString(source[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return Span{Offset: base.Offset + from, Line: line, Column: col, Length: to - from}
}

// trimSpan trims leading and trailing whitespace from the text covered by
// span and returns the trimmed text with its span.
func trimSpan(source string, span Span) (string, Span) {
	text := span.Text(source)
	from := 0
	for from < len(text) && isSpace(text[from]) {
		from++
	}
	to := len(text)
	for to > from && isSpace(text[to-1]) {
		to--
	}
	return text[from:to], subSpan(source, span, from, to)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
