package tagxgen

// ValidateSpans checks the span invariants of a chunk tree: every chunk lies
// within its parent, siblings are ordered and do not overlap, and every
// mapped code span holds exactly the code it claims to.
func ValidateSpans(tree *ChunkTree) error {
	v := &spanValidator{tree: tree}
	return v.chunks(tree.Root, tree.Chunks)
}

type spanValidator struct {
	tree *ChunkTree
}

func (v *spanValidator) fail(span Span, format string, args ...any) error {
	return renderErrorf(v.tree.File, span, format, args...)
}

func (v *spanValidator) chunks(parent Span, chunks []Chunk) error {
	prevEnd := parent.Offset
	for _, c := range chunks {
		span := c.Pos()
		if !parent.Contains(span) {
			return v.fail(span, "%T span %s escapes its parent %s", c, span, parent)
		}
		if span.Offset < prevEnd {
			return v.fail(span, "%T span %s overlaps the previous sibling", c, span)
		}
		prevEnd = span.End()

		if err := v.chunk(c); err != nil {
			return err
		}
	}
	return nil
}

func (v *spanValidator) chunk(c Chunk) error {
	switch c := c.(type) {
	case *Expression:
		return v.code(c.Source, c.CodeSpan, c.Code)
	case *Statement:
		return v.code(c.Source, c.CodeSpan, c.Code)
	case *Directive:
		if !c.ValueSpan.IsZero() && !c.Source.Contains(c.ValueSpan) {
			return v.fail(c.ValueSpan, "directive value escapes the directive")
		}
	case *ExtensionInvocation:
		for _, a := range c.Attributes {
			if !c.Source.Contains(a.Source) {
				return v.fail(a.Source, "attribute %s escapes <%s>", a.Name, c.TagName)
			}
			for _, part := range a.Parts {
				if part.Expr == nil {
					continue
				}
				if !a.Source.Contains(part.Expr.Source) {
					return v.fail(part.Expr.Source, "expression escapes attribute %s", a.Name)
				}
				if err := v.code(part.Expr.Source, part.Expr.CodeSpan, part.Expr.Code); err != nil {
					return err
				}
			}
		}
		return v.chunks(c.Source, c.Children)
	}
	return nil
}

// code checks a mapped code span. A zero span means the code is not mapped.
func (v *spanValidator) code(outer, span Span, code string) error {
	if span.IsZero() {
		return nil
	}
	if !outer.Contains(span) {
		return v.fail(span, "code span %s escapes its chunk %s", span, outer)
	}
	if span.Text(v.tree.Source) != code {
		return v.fail(span, "code %q does not match the template text at %s", code, span)
	}
	return nil
}
