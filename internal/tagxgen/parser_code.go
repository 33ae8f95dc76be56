package tagxgen

import (
	"strconv"
	"strings"
)

// parseTransition parses the construct following an '@' in markup mode.
func (p *Parser) parseTransition(at Token, depth int) {
	l := p.lexer

	switch {
	case l.ch == '(':
		if expr, ok := p.parseExplicitExpression(at); ok {
			p.emit(expr, depth)
		} else {
			p.emitMarkup("@", at.Span, depth)
		}

	case l.ch == '{':
		p.parseCodeBlock(at, depth)

	case isLetter(l.ch):
		saved := l.mark()
		ident := l.ReadIdentifier()
		switch {
		case ident.Type == TokenKeyword && ident.Literal == "else":
			p.diags.AddErrorWithHint(ParseError, ident.Span, "unexpected else",
				"else must follow the closing } of an @if block")
			l.reset(saved)
			p.emitMarkup("@", at.Span, depth)
		case ident.Type == TokenKeyword:
			p.parseControl(at, ident, saved, depth)
		case ident.Type == TokenDirective:
			p.parseDirective(at, ident, depth)
		default:
			l.reset(saved)
			p.emit(p.parseImplicitExpression(at), depth)
		}

	default:
		p.diags.AddErrorWithHint(ParseError, at.Span, "unexpected '@'", "use @@ to write a literal @")
		p.emitMarkup("@", at.Span, depth)
	}
}

// parseImplicitExpression parses an identifier followed by any number of
// .field selectors, (call) arguments and [index] expressions.
func (p *Parser) parseImplicitExpression(at Token) *Expression {
	l := p.lexer
	start := l.here()
	l.ReadIdentifier()

loop:
	for {
		switch {
		case l.ch == '.' && isLetter(l.peekChar()):
			l.readChar()
			l.ReadIdentifier()
		case l.ch == '(' || l.ch == '[':
			open := l.ch
			closing := ')'
			if open == '[' {
				closing = ']'
			}
			if _, ok := l.ReadBalanced(open, closing); !ok {
				p.diags.AddErrorWithHint(ParseError, l.here(), "unterminated expression",
					"close it with "+string(closing))
				break loop
			}
		default:
			break loop
		}
	}

	codeSpan := l.SpanFrom(start)
	return &Expression{
		Code:     codeSpan.Text(l.source),
		CodeSpan: codeSpan,
		Source:   l.SpanFrom(at.Span),
	}
}

// parseExplicitExpression parses @( ... ).
func (p *Parser) parseExplicitExpression(at Token) (*Expression, bool) {
	l := p.lexer
	tok, ok := l.ReadBalanced('(', ')')
	if !ok {
		p.diags.AddErrorWithHint(ParseError, at.Span, "unterminated expression", "close it with )")
		return nil, false
	}
	code, codeSpan := trimSpan(l.source, tok.Span)
	if code == "" {
		p.diags.AddError(ParseError, l.SpanFrom(at.Span), "empty expression")
		return nil, false
	}
	return &Expression{Code: code, CodeSpan: codeSpan, Source: l.SpanFrom(at.Span)}, true
}

// parseInlineExpression parses an expression inside an attribute value.
func (p *Parser) parseInlineExpression(at Token) (*Expression, bool) {
	l := p.lexer
	switch {
	case l.ch == '(':
		return p.parseExplicitExpression(at)
	case isLetter(l.ch):
		return p.parseImplicitExpression(at), true
	}
	p.diags.AddErrorWithHint(ParseError, at.Span, "unexpected '@'", "use @@ to write a literal @")
	return nil, false
}

// parseCodeBlock parses @{ ... }.
func (p *Parser) parseCodeBlock(at Token, depth int) {
	l := p.lexer
	tok, ok := l.ReadBalanced('{', '}')
	if !ok {
		p.diags.AddErrorWithHint(ParseError, at.Span, "unterminated code block", "close it with }")
		p.emitMarkup("@", at.Span, depth)
		return
	}
	code, codeSpan := trimSpan(l.source, tok.Span)
	if code == "" {
		codeSpan = Span{}
	}
	p.emit(&Statement{Code: code, CodeSpan: codeSpan, Source: l.SpanFrom(at.Span)}, depth)
}

// parseControl parses @if and @for together with their markup bodies.
// saved is the lexer state just after the '@'.
func (p *Parser) parseControl(at, kw Token, saved lexState, depth int) {
	l := p.lexer

	l.SkipSpaces()
	clause, ok := l.ReadUntilBrace()
	if !ok || (kw.Literal == "if" && strings.TrimSpace(clause.Literal) == "") {
		p.diags.AddErrorWithHint(ParseError, kw.Span, "expected '{' after @"+kw.Literal+" clause",
			"the clause and the opening { must be on the same line")
		l.reset(saved)
		p.emitMarkup("@", at.Span, depth)
		return
	}
	l.readChar() // {

	head := l.SpanFrom(kw.Span)
	p.emit(&Statement{Code: head.Text(l.source), CodeSpan: head, Source: l.SpanFrom(at.Span)}, depth)

	allowElse := kw.Literal == "if"
	for {
		closer, closed := p.parseMarkup(depth+1, true)
		if !closed {
			p.diags.AddErrorWithHint(ParseError, head, "missing closing '}' for @"+kw.Literal,
				"close the body with }")
			p.emit(&Statement{Code: "}", Source: l.here()}, depth)
			return
		}

		if allowElse {
			if stmt, plain, ok := p.parseElse(closer); ok {
				p.emit(stmt, depth)
				allowElse = !plain
				continue
			}
		}

		p.emit(&Statement{Code: "}", CodeSpan: closer.Span, Source: closer.Span}, depth)
		return
	}
}

// parseElse parses an else or else-if clause following closer. When none
// follows, the lexer is left just after closer. plain is true for a final
// else without a condition.
func (p *Parser) parseElse(closer Token) (stmt *Statement, plain bool, ok bool) {
	l := p.lexer
	afterClose := l.mark()

	l.SkipWhitespace()
	if !strings.HasPrefix(l.source[l.pos:], "else") || isLetter(l.peekN(3)) || isDigit(l.peekN(3)) {
		l.reset(afterClose)
		return nil, false, false
	}
	elseTok := l.ReadIdentifier()
	l.SkipSpaces()

	plain = true
	if l.ch != '{' {
		ifTok := l.ReadIdentifier()
		l.SkipSpaces()
		clause, found := l.ReadUntilBrace()
		if ifTok.Literal != "if" || !found || strings.TrimSpace(clause.Literal) == "" {
			p.diags.AddErrorWithHint(ParseError, elseTok.Span, "expected '{' or 'if' after else",
				"write else { ... } or else if cond { ... }")
			l.reset(afterClose)
			return nil, false, false
		}
		plain = false
	}
	l.readChar() // {

	source := l.SpanFrom(closer.Span)
	gap := l.source[closer.Span.End():elseTok.Span.Offset]
	if !strings.Contains(gap, "\n") {
		return &Statement{Code: source.Text(l.source), CodeSpan: source, Source: source}, plain, true
	}
	// A line break between } and else would end the Go statement; join the
	// two and give up the mapping since the text is no longer verbatim.
	code := "} " + l.SourceRange(elseTok.Span.Offset, l.pos)
	return &Statement{Code: code, Source: source}, plain, true
}

// parseDirective parses a directive; its value runs to the end of the line.
func (p *Parser) parseDirective(at, kw Token, depth int) {
	l := p.lexer

	l.SkipSpaces()
	rest := l.ReadRestOfLine()
	text, valueSpan := trimSpan(l.source, rest.Span)
	l.ConsumeLineEnd()

	dir := &Directive{Kind: DirectiveType(kw.Literal), Source: l.SpanFrom(at.Span)}
	defer p.emit(dir, depth)

	if text == "" {
		p.diags.AddErrorWithHint(ParseError, kw.Span, "missing value for @"+kw.Literal, directiveUsage[dir.Kind])
		return
	}

	switch dir.Kind {
	case DirectivePackage:
		if !isGoIdentifier(text) {
			p.diags.AddErrorf(ParseError, valueSpan, "invalid package name %q", text)
			return
		}
		dir.Value, dir.ValueSpan = text, valueSpan

	case DirectiveInherits, DirectiveModel:
		dir.Value, dir.ValueSpan = text, valueSpan

	case DirectiveImport:
		pathText, pathSpan := text, valueSpan
		if text[0] != '"' && text[0] != '`' {
			i := strings.IndexAny(text, " \t")
			if i < 0 {
				p.diags.AddErrorWithHint(ParseError, valueSpan, "@import path must be a quoted string",
					directiveUsage[dir.Kind])
				return
			}
			alias := text[:i]
			from := len(text) - len(strings.TrimLeft(text[i:], " \t"))
			pathText = text[from:]
			pathSpan = subSpan(l.source, valueSpan, from, len(text))
			if alias != "_" && alias != "." && !isGoIdentifier(alias) {
				p.diags.AddErrorf(ParseError, valueSpan, "invalid import alias %q", alias)
				return
			}
			dir.Alias = alias
		}
		value, ok := p.unquoteDirective(dir.Kind, pathText, pathSpan)
		if !ok {
			return
		}
		dir.Value, dir.ValueSpan = value, pathSpan

	case DirectiveAddExt, DirectiveRemoveExt:
		value, ok := p.unquoteDirective(dir.Kind, text, valueSpan)
		if !ok {
			return
		}
		if strings.TrimSpace(value) == "" {
			p.diags.AddErrorWithHint(ParseError, valueSpan, "empty lookup text", directiveUsage[dir.Kind])
			return
		}
		dir.Value, dir.ValueSpan = value, valueSpan
		kind := AddExtension
		if dir.Kind == DirectiveRemoveExt {
			kind = RemoveExtension
		}
		p.directives = append(p.directives, DirectiveDescriptor{Kind: kind, LookupText: value, Span: dir.Source})
	}
}

func (p *Parser) unquoteDirective(kind DirectiveType, text string, span Span) (string, bool) {
	if text[0] != '"' && text[0] != '`' {
		p.diags.AddErrorWithHint(ParseError, span, "@"+string(kind)+" value must be a quoted string",
			directiveUsage[kind])
		return "", false
	}
	value, err := strconv.Unquote(text)
	if err != nil {
		p.diags.AddErrorWithHint(ParseError, span, "unterminated directive", directiveUsage[kind])
		return "", false
	}
	return value, true
}

var directiveUsage = map[DirectiveType]string{
	DirectivePackage:   "@package name",
	DirectiveImport:    `@import "path" or @import alias "path"`,
	DirectiveInherits:  "@inherits Type",
	DirectiveModel:     "@model Type",
	DirectiveAddExt:    `@addext "Pattern[, origin]"`,
	DirectiveRemoveExt: `@removeext "Pattern"`,
}

func isGoIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isLetter(r) && (i == 0 || !isDigit(r)) {
			return false
		}
	}
	return true
}
