package tagxgen

// tagSyntax is a start or end tag as written. Whether it becomes an
// extension invocation is only known once directives are resolved, so the
// tag keeps both its attributes and a markup rendition of itself.
type tagSyntax struct {
	Name       string
	NameSpan   Span
	End        bool
	SelfClose  bool
	Broken     bool // unterminated; always rendered as markup
	Attributes []*ExtensionAttribute
	Segments   []Chunk // the tag as Markup and Expression chunks
	Source     Span
}

// tagScanner accumulates the markup rendition of a tag between expressions.
type tagScanner struct {
	p        *Parser
	rawStart Span
	segments []Chunk
}

// flush emits the raw text from the last cut point up to offset to.
func (s *tagScanner) flush(to int) {
	if to > s.rawStart.Offset {
		span := spanBetween(s.rawStart, to)
		s.segments = append(s.segments, &Markup{Text: span.Text(s.p.lexer.source), Source: span})
	}
}

// cut replaces the source range of c with c in the rendition.
func (s *tagScanner) cut(c Chunk) {
	s.flush(c.Pos().Offset)
	s.segments = append(s.segments, c)
	s.rawStart = s.p.lexer.here()
}

// parseTag parses a start or end tag beginning at open ("<" or "</").
func (p *Parser) parseTag(open Token, depth int) {
	l := p.lexer
	t := &tagSyntax{End: open.Type == TokenTagEndOpen}
	s := &tagScanner{p: p, rawStart: open.Span}
	s.rawStart.Length = 0

	name := l.NextInTag()
	t.Name, t.NameSpan = name.Literal, name.Span

scan:
	for {
		tok := l.NextInTag()
		switch tok.Type {
		case TokenTagClose:
			break scan
		case TokenTagSelfClose:
			t.SelfClose = true
			break scan
		case TokenEOF:
			p.diags.AddErrorWithHint(ParseError, t.NameSpan, "unterminated tag <"+t.Name+">", "close the tag with >")
			t.Broken = true
			break scan
		case TokenIdent:
			if t.End {
				continue
			}
			t.Attributes = append(t.Attributes, p.parseAttribute(tok, s))
		default:
			// stray characters stay in the markup rendition
		}
	}

	s.flush(l.pos)
	t.Segments = s.segments
	t.Source = l.SpanFrom(open.Span)
	p.items = append(p.items, item{tag: t, depth: depth})
}

// parseAttribute parses one attribute whose name is name.
func (p *Parser) parseAttribute(name Token, s *tagScanner) *ExtensionAttribute {
	l := p.lexer
	attr := &ExtensionAttribute{Name: name.Literal, NameSpan: name.Span}

	saved := l.mark()
	if eq := l.NextInTag(); eq.Type != TokenEquals {
		l.reset(saved)
		attr.Minimized = true
		attr.Source = name.Span
		return attr
	}

	l.SkipWhitespace()
	switch {
	case l.ch == '"' || l.ch == '\'':
		q := l.ch
		l.readChar()
		p.parseQuotedValue(attr, q, s)

	case l.ch == '@' && l.peekChar() != '@':
		l.startToken()
		l.readChar()
		at := l.makeToken(TokenTransition, "@")
		start := at.Span
		if expr, ok := p.parseInlineExpression(at); ok {
			s.cut(expr)
			attr.Parts = append(attr.Parts, AttributePart{Expr: expr, Source: expr.Source})
		}
		attr.ValueSpan = l.SpanFrom(start)

	default:
		v := l.ReadUnquotedValue()
		attr.Parts = append(attr.Parts, AttributePart{Literal: v.Literal, Source: v.Span})
		attr.ValueSpan = v.Span
	}

	attr.Source = l.SpanFrom(name.Span)
	return attr
}

// parseQuotedValue parses an attribute value after its opening quote.
func (p *Parser) parseQuotedValue(attr *ExtensionAttribute, quote rune, s *tagScanner) {
	l := p.lexer
	attr.Quote = quote
	start := l.here()

	for {
		tok := l.NextAttrValue(quote)
		switch tok.Type {
		case TokenQuote:
			attr.ValueSpan = spanBetween(start, tok.Span.Offset)
			return
		case TokenIllegal:
			attr.ValueSpan = l.SpanFrom(start)
			return
		case TokenText:
			if tok.Literal == "@" && tok.Span.Length == 2 {
				// @@ renders as a single @
				s.cut(&Markup{Text: "@", Source: tok.Span})
			}
			attr.Parts = append(attr.Parts, AttributePart{Literal: tok.Literal, Source: tok.Span})
		case TokenTransition:
			expr, ok := p.parseInlineExpression(tok)
			if !ok {
				attr.Parts = append(attr.Parts, AttributePart{Literal: "@", Source: tok.Span})
				continue
			}
			s.cut(expr)
			attr.Parts = append(attr.Parts, AttributePart{Expr: expr, Source: expr.Source})
		}
	}
}
