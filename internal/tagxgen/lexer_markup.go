package tagxgen

// NextMarkup returns the next token in markup mode.
func (l *Lexer) NextMarkup() Token {
	l.startToken()

	if l.eof() {
		return l.makeToken(TokenEOF, "")
	}

	switch l.ch {
	case '@':
		next := l.peekChar()
		switch {
		case next == '@':
			l.readChar()
			l.readChar()
			return l.makeToken(TokenText, "@")
		case next == '*':
			return l.readTemplateComment()
		case isASCIIAlnum(rune(l.prevByte())) && isASCIIAlnum(next):
			// e-mail style: user@example.com
			l.readChar()
			return l.makeToken(TokenText, "@")
		}
		l.readChar()
		return l.makeToken(TokenTransition, "@")

	case '<':
		next := l.peekChar()
		if isLetter(next) {
			l.readChar()
			return l.makeToken(TokenTagOpen, "<")
		}
		if next == '/' && isLetter(l.peekN(1)) {
			l.readChar()
			l.readChar()
			return l.makeToken(TokenTagEndOpen, "</")
		}

	case '{':
		l.readChar()
		return l.makeToken(TokenLBrace, "{")

	case '}':
		l.readChar()
		return l.makeToken(TokenRBrace, "}")
	}

	return l.readText()
}

// readText reads markup text up to the next character that may start a token.
func (l *Lexer) readText() Token {
	start := l.pos
	l.readChar()
	for !l.eof() && !l.atMarkupBoundary() {
		l.readChar()
	}
	return l.makeToken(TokenText, l.source[start:l.pos])
}

func (l *Lexer) atMarkupBoundary() bool {
	switch l.ch {
	case '@', '{', '}':
		return true
	case '<':
		next := l.peekChar()
		return isLetter(next) || (next == '/' && isLetter(l.peekN(1)))
	}
	return false
}

// readTemplateComment reads a @* ... *@ comment. The literal is the comment body.
func (l *Lexer) readTemplateComment() Token {
	l.readChar() // @
	l.readChar() // *
	start := l.pos
	for !l.eof() {
		if l.ch == '*' && l.peekChar() == '@' {
			body := l.source[start:l.pos]
			l.readChar()
			l.readChar()
			return l.makeToken(TokenComment, body)
		}
		l.readChar()
	}
	open := l.tokenStart
	open.Length = 2
	l.diags.AddErrorWithHint(LexError, open, "unterminated template comment", "close the comment with *@")
	return l.makeToken(TokenComment, l.source[start:l.pos])
}

// NextInTag returns the next token inside a start or end tag, skipping whitespace.
func (l *Lexer) NextInTag() Token {
	l.SkipWhitespace()
	l.startToken()

	if l.eof() {
		return l.makeToken(TokenEOF, "")
	}

	switch l.ch {
	case '>':
		l.readChar()
		return l.makeToken(TokenTagClose, ">")
	case '/':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return l.makeToken(TokenTagSelfClose, "/>")
		}
	case '=':
		l.readChar()
		return l.makeToken(TokenEquals, "=")
	case '"', '\'':
		q := l.ch
		l.readChar()
		return l.makeToken(TokenQuote, string(q))
	}

	if isNameChar(l.ch) {
		start := l.pos
		for !l.eof() && isNameChar(l.ch) {
			l.readChar()
		}
		return l.makeToken(TokenIdent, l.source[start:l.pos])
	}

	ch := l.ch
	l.readChar()
	return l.makeToken(TokenIllegal, string(ch))
}

// NextAttrValue returns the next token inside an attribute value delimited by quote.
// Quoted values may not span lines.
func (l *Lexer) NextAttrValue(quote rune) Token {
	l.startToken()

	if l.eof() || l.ch == '\n' {
		l.diags.AddErrorWithHint(LexError, l.here(), "unterminated quoted attribute value",
			"close the value with "+string(quote))
		return l.makeToken(TokenIllegal, "")
	}

	switch l.ch {
	case quote:
		l.readChar()
		return l.makeToken(TokenQuote, string(quote))
	case '@':
		next := l.peekChar()
		if next == '@' {
			l.readChar()
			l.readChar()
			return l.makeToken(TokenText, "@")
		}
		if !isASCIIAlnum(rune(l.prevByte())) || !isASCIIAlnum(next) {
			l.readChar()
			return l.makeToken(TokenTransition, "@")
		}
	}

	start := l.pos
	l.readChar()
	for !l.eof() && l.ch != quote && l.ch != '@' && l.ch != '\n' {
		l.readChar()
	}
	return l.makeToken(TokenText, l.source[start:l.pos])
}

// ReadUnquotedValue reads an unquoted attribute value.
func (l *Lexer) ReadUnquotedValue() Token {
	l.startToken()
	start := l.pos
	for !l.eof() && !isUnquotedTerminator(l.ch) {
		l.readChar()
	}
	return l.makeToken(TokenText, l.source[start:l.pos])
}

func isUnquotedTerminator(ch rune) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '>', '"', '\'', '=', '<', '`':
		return true
	}
	return false
}
