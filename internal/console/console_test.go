package console

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

func plain(t *testing.T) {
	t.Helper()
	prev := Styled
	Styled = func() bool { return false }
	t.Cleanup(func() { Styled = prev })
}

func TestFormatDiagnostic(t *testing.T) {
	plain(t)

	src := "<ul>\n  @for x {\n</ul>"
	type tc struct {
		diag     *tagxgen.Diagnostic
		expected string
	}

	tests := map[string]tc{
		"error with hint": {
			diag: &tagxgen.Diagnostic{
				File:     "page.tgx",
				Span:     tagxgen.Span{Offset: 8, Line: 2, Column: 4, Length: 3},
				Message:  "expected '{' after @for clause",
				Hint:     "the clause and the opening { must be on the same line",
				Severity: tagxgen.SeverityError,
			},
			expected: "page.tgx:2:4: error: expected '{' after @for clause\n" +
				"1 | <ul>\n" +
				"2 |   @for x {\n" +
				"       ^^^\n" +
				"3 | </ul>\n" +
				"hint: the clause and the opening { must be on the same line\n",
		},
		"warning on first line": {
			diag: &tagxgen.Diagnostic{
				File:     "page.tgx",
				Span:     tagxgen.Span{Offset: 0, Line: 1, Column: 1},
				Message:  "no extensions matched",
				Severity: tagxgen.SeverityWarning,
			},
			expected: "page.tgx:1:1: warning: no extensions matched\n" +
				"1 | <ul>\n" +
				"    ^\n" +
				"2 |   @for x {\n",
		},
		"no position": {
			diag:     &tagxgen.Diagnostic{Message: "ambient directive", Severity: tagxgen.SeverityWarning},
			expected: "warning: ambient directive\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDiagnostic(tt.diag, src))
		})
	}
}

func TestFormatDiagnostic_MultiLineSpan(t *testing.T) {
	plain(t)
	src := "a @(x +\ny)"
	d := &tagxgen.Diagnostic{File: "p.tgx", Span: tagxgen.Span{Offset: 2, Line: 1, Column: 3, Length: 8}, Message: "m"}
	assert.Equal(t, "p.tgx:1:3: error: m\n1 | a @(x +\n      ^^^^^\n2 | y)\n", FormatDiagnostic(d, src))
}

func TestMessages(t *testing.T) {
	plain(t)
	assert.Equal(t, "✓ done", FormatSuccessMessage("done"))
	assert.Equal(t, "ℹ note", FormatInfoMessage("note"))
	assert.Equal(t, "⚠ careful", FormatWarningMessage("careful"))
	assert.Equal(t, "✗ failed", FormatErrorMessage("failed"))
}

func TestSpinnerDisabledWithoutStyle(t *testing.T) {
	plain(t)
	s := NewSpinner("building")
	assert.False(t, s.IsEnabled())
	s.Start()
	s.UpdateMessage("still building")
	s.Stop()
}

func TestToRelativePath(t *testing.T) {
	assert.Equal(t, "rel/path.tgx", ToRelativePath("rel/path.tgx"))
}
