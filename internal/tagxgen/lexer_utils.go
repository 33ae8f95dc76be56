package tagxgen

import (
	"unicode"
)

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIIAlnum(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || isDigit(ch)
}

// isNameChar reports whether ch may appear in a tag or attribute name.
func isNameChar(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-' || ch == ':' || ch == '.'
}

// SkipSpaces skips spaces and tabs.
func (l *Lexer) SkipSpaces() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

// SkipWhitespace skips spaces, tabs and line breaks.
func (l *Lexer) SkipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// ConsumeLineEnd consumes a single line break if one is next.
func (l *Lexer) ConsumeLineEnd() {
	if l.ch == '\r' && l.peekChar() == '\n' {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
	}
}

// CurrentChar returns the current character (0 at EOF).
func (l *Lexer) CurrentChar() rune {
	return l.ch
}

// SourcePos returns the current byte offset in the source.
func (l *Lexer) SourcePos() int {
	return l.pos
}
