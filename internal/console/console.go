// Package console renders diagnostics and status lines for the tagx CLI.
// Styling is applied only when stdout is a terminal.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// Styled reports whether output is styled. It defaults to whether stdout
// is a terminal and may be replaced, e.g. by tests or a --no-color flag.
var Styled = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func applyStyle(style lipgloss.Style, text string) string {
	if Styled() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to one relative to the working
// directory when possible.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// FormatDiagnostic renders a diagnostic in file:line:col form followed by
// the surrounding template lines with the span underlined.
func FormatDiagnostic(d *tagxgen.Diagnostic, source string) string {
	var out strings.Builder

	style, label := errorStyle, "error"
	if d.Severity == tagxgen.SeverityWarning {
		style, label = warningStyle, "warning"
	}

	if d.File != "" {
		loc := fmt.Sprintf("%s:%d:%d:", ToRelativePath(d.File), d.Span.Line, d.Span.Column)
		out.WriteString(applyStyle(filePathStyle, loc))
		out.WriteString(" ")
	}
	out.WriteString(applyStyle(style, label+":"))
	out.WriteString(" ")
	out.WriteString(d.Message)
	out.WriteString("\n")

	if d.Span.Line > 0 && source != "" {
		out.WriteString(renderContext(source, d.Span, style))
	}

	if d.Hint != "" {
		out.WriteString(applyStyle(hintStyle, "hint: "))
		out.WriteString(d.Hint)
		out.WriteString("\n")
	}
	return out.String()
}

// renderContext writes the line before, the line of and the line after the
// span, with carets under the span on its first line.
func renderContext(source string, span tagxgen.Span, style lipgloss.Style) string {
	lines := strings.Split(source, "\n")
	if span.Line > len(lines) {
		return ""
	}

	first := max(span.Line-1, 1)
	last := min(span.Line+1, len(lines))
	width := len(fmt.Sprint(last))

	var out strings.Builder
	for n := first; n <= last; n++ {
		line := strings.TrimRight(lines[n-1], "\r")
		out.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d |", width, n)))
		if line != "" {
			out.WriteString(" ")
			out.WriteString(line)
		}
		out.WriteString("\n")

		if n != span.Line {
			continue
		}
		// carets cover the span up to the end of its first line
		lineLen := utf8.RuneCountInString(line)
		col := min(max(span.Column, 1), lineLen+1)
		length := 1
		if span.Length > 0 && span.Offset+span.Length <= len(source) {
			text, _, _ := strings.Cut(source[span.Offset:span.Offset+span.Length], "\n")
			length = max(utf8.RuneCountInString(text), 1)
		}
		padding := strings.Repeat(" ", width+3+col-1)
		out.WriteString(padding)
		out.WriteString(applyStyle(style, strings.Repeat("^", length)))
		out.WriteString("\n")
	}
	return out.String()
}

// FormatDiagnostics renders every diagnostic of one template.
func FormatDiagnostics(diags []*tagxgen.Diagnostic, source string) string {
	var out strings.Builder
	for _, d := range diags {
		out.WriteString(FormatDiagnostic(d, source))
	}
	return out.String()
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats an error that has no template position.
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}
