package tagxgen

// ReadIdentifier reads a Go identifier at the current position.
// The token type is TokenKeyword or TokenDirective for reserved words.
func (l *Lexer) ReadIdentifier() Token {
	l.startToken()
	start := l.pos
	for !l.eof() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	ident := l.source[start:l.pos]
	return l.makeToken(LookupIdent(ident), ident)
}

// ReadBalanced reads Go code enclosed by open and close, starting at open.
// The returned token holds the code between the delimiters and its span.
// Strings, runes and comments are skipped so delimiters inside them do not count.
// On EOF the lexer is left unchanged and ok is false.
func (l *Lexer) ReadBalanced(open, close rune) (tok Token, ok bool) {
	if l.ch != open {
		return Token{}, false
	}
	saved := l.mark()
	l.readChar()
	l.startToken()
	start := l.pos
	depth := 1

	for !l.eof() {
		switch l.ch {
		case open:
			depth++
			l.readChar()
		case close:
			depth--
			if depth == 0 {
				tok = l.makeToken(TokenCode, l.source[start:l.pos])
				l.readChar()
				return tok, true
			}
			l.readChar()
		default:
			l.skipCodeChar()
		}
	}

	l.reset(saved)
	return Token{}, false
}

// ReadUntilBrace reads the clause of an if or for statement up to the '{'
// that opens its body. The '{' is not consumed. A '{' directly after an
// identifier or ']' opens a composite literal and does not end the clause.
// The clause must end on the current line; otherwise the lexer is left
// unchanged and ok is false.
func (l *Lexer) ReadUntilBrace() (tok Token, ok bool) {
	saved := l.mark()
	l.startToken()
	start := l.pos
	parens, braces := 0, 0

	for !l.eof() && l.ch != '\n' {
		switch l.ch {
		case '(', '[':
			parens++
			l.readChar()
		case ')', ']':
			parens--
			l.readChar()
		case '{':
			prev := rune(l.prevByte())
			if parens == 0 && braces == 0 && !isLetter(prev) && !isDigit(prev) && prev != ']' {
				return l.makeToken(TokenCode, l.source[start:l.pos]), true
			}
			braces++
			l.readChar()
		case '}':
			braces--
			l.readChar()
		default:
			l.skipCodeChar()
		}
	}

	l.reset(saved)
	return Token{}, false
}

// ReadString reads a Go interpreted or raw string literal, quotes included.
func (l *Lexer) ReadString() (tok Token, ok bool) {
	if l.ch != '"' && l.ch != '`' {
		return Token{}, false
	}
	saved := l.mark()
	l.startToken()
	start := l.pos
	quote := l.ch
	l.readChar()
	for !l.eof() && l.ch != quote {
		if quote == '"' && l.ch == '\n' {
			break
		}
		if quote == '"' && l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch != quote || l.eof() {
		l.reset(saved)
		return Token{}, false
	}
	l.readChar()
	return l.makeToken(TokenString, l.source[start:l.pos]), true
}

// ReadRestOfLine reads up to, but not including, the next line break.
func (l *Lexer) ReadRestOfLine() Token {
	l.startToken()
	start := l.pos
	for !l.eof() && l.ch != '\n' {
		l.readChar()
	}
	return l.makeToken(TokenCode, l.source[start:l.pos])
}

// skipCodeChar advances past one character of Go code, or past a whole
// string, rune or comment when one starts here.
func (l *Lexer) skipCodeChar() {
	switch l.ch {
	case '"':
		l.readChar()
		for !l.eof() && l.ch != '"' && l.ch != '\n' {
			if l.ch == '\\' {
				l.readChar()
			}
			l.readChar()
		}
		if l.ch == '"' {
			l.readChar()
		}
	case '`':
		l.readChar()
		for !l.eof() && l.ch != '`' {
			l.readChar()
		}
		l.readChar()
	case '\'':
		l.readChar()
		for !l.eof() && l.ch != '\'' && l.ch != '\n' {
			if l.ch == '\\' {
				l.readChar()
			}
			l.readChar()
		}
		if l.ch == '\'' {
			l.readChar()
		}
	case '/':
		switch l.peekChar() {
		case '/':
			for !l.eof() && l.ch != '\n' {
				l.readChar()
			}
		case '*':
			l.readChar()
			l.readChar()
			for !l.eof() && (l.ch != '*' || l.peekChar() != '/') {
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			l.readChar()
		}
	default:
		l.readChar()
	}
}
