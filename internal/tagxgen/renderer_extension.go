package tagxgen

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtensionRenderer emits the code for one extension invocation. body renders
// the invocation's children.
type ExtensionRenderer interface {
	RenderExtension(inv *ExtensionInvocation, w *CodeWriter, body ChunkVisitor) error
}

// GoExtensionRenderer is the default ExtensionRenderer. Each invocation
// becomes a block declaring one instance per matched descriptor, assigning
// the bound attributes, and handing everything to Page.RunExtension:
//
//	{
//		__ui_Card := &ui.Card{}
//		__ui_Card.Title = "Hello"
//		if err := p.RunExtension(ctx, "<id>", "card", nil, func(ctx context.Context) error {
//			...
//			return nil
//		}, __ui_Card); err != nil {
//			return err
//		}
//	}
type GoExtensionRenderer struct {
	ctx  *CodeBuilderContext
	ids  IDAllocator
	seen map[string]bool
}

// NewGoExtensionRenderer creates the default renderer drawing ids from ids.
func NewGoExtensionRenderer(ctx *CodeBuilderContext, ids IDAllocator) *GoExtensionRenderer {
	return &GoExtensionRenderer{ctx: ctx, ids: ids, seen: map[string]bool{}}
}

// RenderExtension implements ExtensionRenderer.
func (r *GoExtensionRenderer) RenderExtension(inv *ExtensionInvocation, w *CodeWriter, body ChunkVisitor) error {
	id := r.ids.NextID()
	if r.seen[id] {
		return renderErrorf(r.ctx.SourceFile, inv.Source, "extension id %q allocated twice in one pass", id)
	}
	r.seen[id] = true

	w.Line("{")
	w.Indent()

	vars := make([]string, len(inv.Descriptors))
	used := map[string]bool{}
	for i, d := range inv.Descriptors {
		base := "__" + d.Alias() + "_" + d.TypeName
		if d.Origin == "" {
			base = "__" + d.TypeName
		}
		v := base
		for n := 2; used[v]; n++ {
			v = fmt.Sprintf("%s%d", base, n)
		}
		used[v] = true
		vars[i] = v
		w.Linef("%s := &%s{}", v, d.QualifiedType())
	}

	var unbound []*ExtensionAttribute
	for _, a := range inv.Attributes {
		bound := false
		for i, d := range inv.Descriptors {
			ad := d.Attribute(a.Name)
			if ad == nil {
				continue
			}
			bound = true
			w.Writef("%s.%s = ", vars[i], ad.FieldName())
			r.writeBoundValue(w, a, ad)
			w.Newline()
		}
		if !bound {
			unbound = append(unbound, a)
		}
	}

	w.Writef("if err := p.RunExtension(ctx, %s, %s, ", strconv.Quote(id), strconv.Quote(inv.TagName))
	r.writeAttributes(w, unbound)
	w.Write(", ")
	if len(inv.Children) > 0 && !inv.SelfClosing {
		w.Line("func(ctx context.Context) error {")
		w.Indent()
		for _, c := range inv.Children {
			if err := c.Accept(body); err != nil {
				return err
			}
		}
		w.Line("return nil")
		w.Dedent()
		w.Write("}")
	} else {
		w.Write("nil")
	}
	w.Linef(", %s); err != nil {", strings.Join(vars, ", "))
	w.Indent()
	w.Line("return err")
	w.Dedent()
	w.Line("}")

	w.Dedent()
	w.Line("}")
	return nil
}

// writeBoundValue writes the Go value assigned to a bound attribute's field.
// String fields take literals as quoted strings; other fields take the
// literal text as Go code.
func (r *GoExtensionRenderer) writeBoundValue(w *CodeWriter, a *ExtensionAttribute, ad *AttributeDescriptor) {
	switch {
	case a.Minimized:
		if ad.Type == "bool" {
			w.Write("true")
		} else {
			w.Write(`""`)
		}

	case a.IsLiteral() && ad.IsString():
		w.Write(strconv.Quote(a.LiteralValue()))

	case a.IsLiteral():
		value := a.LiteralValue()
		switch {
		case strings.TrimSpace(value) == "":
			w.Writef("*new(%s)", ad.Type)
		case len(a.Parts) == 1 && a.Parts[0].Source.Length == len(value):
			w.WriteMapped(value, a.Parts[0].Source)
		default:
			w.Write(value)
		}

	default:
		r.writeValue(w, a)
	}
}

// writeValue writes a value containing code: a single expression is written
// as is, anything else is joined with tagx.Concat.
func (r *GoExtensionRenderer) writeValue(w *CodeWriter, a *ExtensionAttribute) {
	if len(a.Parts) == 1 && a.Parts[0].Expr != nil {
		e := a.Parts[0].Expr
		w.WriteMapped(e.Code, e.CodeSpan)
		return
	}
	w.Write("tagx.Concat(")
	for i, part := range a.Parts {
		if i > 0 {
			w.Write(", ")
		}
		if part.Expr != nil {
			w.WriteMapped(part.Expr.Code, part.Expr.CodeSpan)
		} else {
			w.Write(strconv.Quote(part.Literal))
		}
	}
	w.Write(")")
}

// writeAttributes writes the attributes no descriptor binds; they are passed
// through to the runtime as written.
func (r *GoExtensionRenderer) writeAttributes(w *CodeWriter, attrs []*ExtensionAttribute) {
	if len(attrs) == 0 {
		w.Write("nil")
		return
	}
	w.Write("tagx.Attributes{")
	for i, a := range attrs {
		if i > 0 {
			w.Write(", ")
		}
		w.Writef("{Name: %s, ", strconv.Quote(a.Name))
		switch {
		case a.Minimized:
			w.Write("Minimized: true")
		case a.IsLiteral():
			w.Writef("Value: %s", strconv.Quote(a.LiteralValue()))
		default:
			w.Write("Value: ")
			r.writeValue(w, a)
		}
		w.Write("}")
	}
	w.Write("}")
}
