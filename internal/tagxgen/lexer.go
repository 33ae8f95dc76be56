package tagxgen

import (
	"unicode/utf8"
)

// Lexer tokenizes .tgx templates. It has no mode of its own: the parser picks
// the scanning function matching its state (markup, tag, attribute value, code).
type Lexer struct {
	filename string
	source   string
	pos      int  // current position in source
	readPos  int  // next position to read
	ch       rune // current character
	line     int  // current line (1-based)
	column   int  // current column (1-based)
	atEOF    bool

	tokenStart Span // position where the current token starts

	diags *DiagnosticList
}

// NewLexer creates a new Lexer for the given source.
func NewLexer(filename, source string) *Lexer {
	l := &Lexer{
		filename: filename,
		source:   source,
		line:     1,
		column:   0,
		diags:    NewDiagnosticList(filename),
	}
	l.readChar()
	return l
}

// Errors returns the lex errors encountered so far.
func (l *Lexer) Errors() *DiagnosticList {
	return l.diags
}

// Filename returns the name of the file being lexed.
func (l *Lexer) Filename() string {
	return l.filename
}

// Source returns the full template text.
func (l *Lexer) Source() string {
	return l.source
}

// readChar advances to the next character in the source.
// Once EOF is reached further calls are no-ops.
func (l *Lexer) readChar() {
	if l.atEOF {
		return
	}
	prevWasNewline := l.ch == '\n'

	if l.readPos >= len(l.source) {
		l.ch = 0 // EOF
		l.pos = len(l.source)
		l.atEOF = true
	} else {
		r, size := utf8.DecodeRuneInString(l.source[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}

	if prevWasNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() rune {
	return l.peekN(0)
}

// peekN returns the character n runes after the next one.
func (l *Lexer) peekN(n int) rune {
	i := l.readPos
	for {
		if i >= len(l.source) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(l.source[i:])
		if n == 0 {
			return r
		}
		i += size
		n--
	}
}

// prevByte returns the byte before the current character, or 0 at the start.
func (l *Lexer) prevByte() byte {
	if l.pos == 0 || l.pos > len(l.source) {
		return 0
	}
	return l.source[l.pos-1]
}

func (l *Lexer) eof() bool {
	return l.atEOF
}

// here returns a zero-length span at the current character.
func (l *Lexer) here() Span {
	return Span{Offset: l.pos, Line: l.line, Column: l.column}
}

// startToken marks the beginning of a new token.
func (l *Lexer) startToken() {
	l.tokenStart = l.here()
}

// makeToken creates a token spanning from the token start to the current position.
func (l *Lexer) makeToken(typ TokenType, literal string) Token {
	return Token{Type: typ, Literal: literal, Span: spanBetween(l.tokenStart, l.pos)}
}

// lexState is a snapshot of the reading position, used for lookahead and
// for backing out of a construct that turned out to be malformed.
type lexState struct {
	pos     int
	readPos int
	ch      rune
	line    int
	column  int
	atEOF   bool
}

func (l *Lexer) mark() lexState {
	return lexState{pos: l.pos, readPos: l.readPos, ch: l.ch, line: l.line, column: l.column, atEOF: l.atEOF}
}

func (l *Lexer) reset(s lexState) {
	l.pos = s.pos
	l.readPos = s.readPos
	l.ch = s.ch
	l.line = s.line
	l.column = s.column
	l.atEOF = s.atEOF
}

// SpanFrom returns the span from start to the current position.
func (l *Lexer) SpanFrom(start Span) Span {
	return spanBetween(start, l.pos)
}

// SourceRange returns the source text between two byte offsets.
func (l *Lexer) SourceRange(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(l.source) {
		end = len(l.source)
	}
	if start >= end {
		return ""
	}
	return l.source[start:end]
}
