package tagxgen

import "strings"

// treeBuilder assembles scanned items into the chunk tree. Extension start
// and end tags pair up only at the same brace depth, so an extension opened
// inside an @if body is closed when the body ends.
type treeBuilder struct {
	diags      *DiagnosticList
	extensions []*ExtensionDescriptor

	root  []Chunk
	stack []openExtension
}

type openExtension struct {
	inv   *ExtensionInvocation
	depth int
}

func (b *treeBuilder) build(items []item) []Chunk {
	for _, it := range items {
		for len(b.stack) > 0 && it.depth < b.stack[len(b.stack)-1].depth {
			b.autoClose()
		}
		if it.tag != nil {
			b.addTag(it.tag, it.depth)
			continue
		}
		b.add(it.chunk)
	}
	for len(b.stack) > 0 {
		b.autoClose()
	}
	return mergeMarkup(b.root)
}

// add appends c to the innermost open extension or to the root.
func (b *treeBuilder) add(c Chunk) {
	if n := len(b.stack); n > 0 {
		inv := b.stack[n-1].inv
		inv.Children = append(inv.Children, c)
		return
	}
	b.root = append(b.root, c)
}

func (b *treeBuilder) addTag(t *tagSyntax, depth int) {
	var descs []*ExtensionDescriptor
	if !t.Broken {
		descs = matchingDescriptors(b.extensions, t.Name)
	}
	if len(descs) == 0 {
		for _, seg := range t.Segments {
			b.add(seg)
		}
		return
	}

	if t.End {
		for i := len(b.stack) - 1; i >= 0 && b.stack[i].depth == depth; i-- {
			if strings.EqualFold(b.stack[i].inv.TagName, t.Name) {
				for len(b.stack)-1 > i {
					b.autoClose()
				}
				b.close(t.Source.End())
				return
			}
		}
		b.diags.AddErrorWithHint(ParseError, t.Source, "unexpected end tag </"+t.Name+">",
			"no <"+t.Name+"> is open at this level")
		for _, seg := range t.Segments {
			b.add(seg)
		}
		return
	}

	inv := &ExtensionInvocation{
		TagName:     t.Name,
		Descriptors: descs,
		Attributes:  t.Attributes,
		SelfClosing: t.SelfClose || selfClosingHint(descs),
		Source:      t.Source,
	}
	b.add(inv)
	if !inv.SelfClosing {
		b.stack = append(b.stack, openExtension{inv: inv, depth: depth})
	}
}

// close pops the innermost extension, extending its span to end.
func (b *treeBuilder) close(end int) {
	top := b.stack[len(b.stack)-1].inv
	b.stack = b.stack[:len(b.stack)-1]
	top.Children = mergeMarkup(top.Children)
	if end > top.Source.End() {
		top.Source = spanBetween(top.Source, end)
	}
}

// autoClose closes the innermost extension whose end tag is missing.
func (b *treeBuilder) autoClose() {
	top := b.stack[len(b.stack)-1].inv
	b.diags.AddErrorWithHint(ParseError, top.Source, "missing end tag for <"+top.TagName+">",
		"add </"+top.TagName+"> or write <"+top.TagName+" />")
	end := top.Source.End()
	if n := len(top.Children); n > 0 {
		end = top.Children[n-1].Pos().End()
	}
	b.close(end)
}

func selfClosingHint(descs []*ExtensionDescriptor) bool {
	for _, d := range descs {
		if d.SelfClosing {
			return true
		}
	}
	return false
}

// mergeMarkup joins adjacent markup chunks.
func mergeMarkup(chunks []Chunk) []Chunk {
	var out []Chunk
	for _, c := range chunks {
		m, ok := c.(*Markup)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Markup); ok && prev.Source.End() == m.Source.Offset {
				out[len(out)-1] = &Markup{
					Text:   prev.Text + m.Text,
					Source: spanBetween(prev.Source, m.Source.End()),
				}
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
