package tagxgen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grindlemire/go-tagx/internal/debug"
)

// RuntimeImport is the import path of the runtime package used by generated code.
const RuntimeImport = "github.com/grindlemire/go-tagx"

// DesignTimeMarker is written below the header of design-time output.
const DesignTimeMarker = "// tagx:design-time"

// CodeBuilder renders a chunk tree into Go source.
type CodeBuilder interface {
	Build(tree *ChunkTree) (*CodeBuilderResult, error)
}

// CodeBuilderResult is the output of a CodeBuilder.
type CodeBuilderResult struct {
	Code     string
	Mappings []LineMapping
}

// GoCodeBuilder is the default CodeBuilder. It writes one struct type per
// template with an Execute method that replays the chunks in order.
type GoCodeBuilder struct {
	ctx        *CodeBuilderContext
	extensions ExtensionRenderer

	tree *ChunkTree
	w    *CodeWriter
}

var _ ChunkVisitor = (*GoCodeBuilder)(nil)

// NewGoCodeBuilder creates the default builder. Extension tags are rendered by ext.
func NewGoCodeBuilder(ctx *CodeBuilderContext, ext ExtensionRenderer) *GoCodeBuilder {
	return &GoCodeBuilder{ctx: ctx, extensions: ext}
}

// Build implements CodeBuilder.
func (b *GoCodeBuilder) Build(tree *ChunkTree) (*CodeBuilderResult, error) {
	if err := ValidateSpans(tree); err != nil {
		return nil, err
	}

	b.tree = tree
	b.w = NewCodeWriter(b.ctx.DesignTime, b.ctx.SourceFile, b.ctx.GeneratedFileName)

	b.writeHeader()
	if err := b.writeImports(); err != nil {
		return nil, err
	}
	b.writeType()

	b.w.Linef("func (p *%s) Execute(ctx context.Context) error {", b.ctx.ClassName)
	b.w.Indent()
	if tree.Directive(DirectiveModel) != nil {
		b.w.Line("Model := p.Model")
		b.w.Line("_ = Model")
	}
	for _, c := range tree.Chunks {
		if err := c.Accept(b); err != nil {
			return nil, err
		}
	}
	b.w.Line("return nil")
	b.w.Dedent()
	b.w.Line("}")

	mappings := b.w.Mappings()
	debug.Render("%s: %d bytes, %d mappings, design-time=%v",
		b.ctx.SourceFile, len(b.w.String()), len(mappings), b.ctx.DesignTime)

	return &CodeBuilderResult{Code: b.w.String(), Mappings: mappings}, nil
}

func (b *GoCodeBuilder) writeHeader() {
	b.w.Line("// Code generated by tagx. DO NOT EDIT.")
	b.w.Linef("// Source: %s", filepath.Base(b.ctx.SourceFile))
	if b.ctx.DesignTime {
		b.w.Line(DesignTimeMarker)
	}
	b.w.Newline()
	b.w.Linef("package %s", b.ctx.Namespace)
	b.w.Newline()
}

// writeImports writes the import block. Directive imports are mapped to the
// path as written in the template.
func (b *GoCodeBuilder) writeImports() error {
	b.w.Line("import (")
	b.w.Indent()
	b.w.Line(`"context"`)
	b.w.Newline()
	b.w.Linef("tagx %s", strconv.Quote(RuntimeImport))

	if imp := b.ctx.BaseTypeImport; imp != "" && imp != RuntimeImport {
		b.w.Line(strconv.Quote(imp))
	}

	for _, d := range b.tree.Directives() {
		if d.Kind != DirectiveImport || d.Value == "" {
			continue
		}
		if d.Alias != "" {
			b.w.Write(d.Alias + " ")
		}
		b.w.WriteMapped(d.ValueSpan.Text(b.tree.Source), d.ValueSpan)
		b.w.Newline()
	}

	aliases := map[string]string{}
	for _, d := range usedExtensions(b.tree) {
		if d.Origin == "" {
			continue
		}
		alias := d.Alias()
		if origin, ok := aliases[alias]; ok {
			if origin != d.Origin {
				return renderErrorf(b.ctx.SourceFile, Span{}, "import alias %q used for both %q and %q",
					alias, origin, d.Origin)
			}
			continue
		}
		aliases[alias] = d.Origin
		b.w.Linef("%s %s", alias, strconv.Quote(d.Origin))
	}

	b.w.Dedent()
	b.w.Line(")")
	b.w.Newline()
	return nil
}

// usedExtensions returns the descriptors referenced by invocations in the
// tree, in order of first use.
func usedExtensions(tree *ChunkTree) []*ExtensionDescriptor {
	var out []*ExtensionDescriptor
	Walk(tree.Chunks, func(c Chunk) bool {
		if inv, ok := c.(*ExtensionInvocation); ok {
			for _, d := range inv.Descriptors {
				if !containsDescriptor(out, d) {
					out = append(out, d)
				}
			}
		}
		return true
	})
	return out
}

func (b *GoCodeBuilder) writeType() {
	class := b.ctx.ClassName
	b.w.Linef("var _ tagx.Template = (*%s)(nil)", class)
	b.w.Newline()
	b.w.Linef("// %s renders %s.", class, filepath.Base(b.ctx.SourceFile))
	b.w.Linef("type %s struct {", class)
	b.w.Indent()
	if d := b.tree.Directive(DirectiveInherits); d != nil && d.Value != "" {
		b.w.WriteMapped(d.Value, d.ValueSpan)
		b.w.Newline()
	} else {
		b.w.Line(b.ctx.BaseType)
	}
	if d := b.tree.Directive(DirectiveModel); d != nil && d.Value != "" {
		b.w.Write("Model ")
		b.w.WriteMapped(d.Value, d.ValueSpan)
		b.w.Newline()
	}
	b.w.Dedent()
	b.w.Line("}")
	b.w.Newline()
}

// VisitMarkup writes literal output. Markup is not mapped.
func (b *GoCodeBuilder) VisitMarkup(c *Markup) error {
	if c.Text == "" {
		return nil
	}
	b.w.Linef("p.WriteLiteral(%s)", strconv.Quote(c.Text))
	return nil
}

// VisitExpression writes the value of the expression.
func (b *GoCodeBuilder) VisitExpression(c *Expression) error {
	b.w.Write("p.Write(")
	b.w.WriteMapped(c.Code, c.CodeSpan)
	b.w.Line(")")
	return nil
}

// VisitStatement writes the statement on its own line.
func (b *GoCodeBuilder) VisitStatement(c *Statement) error {
	if c.Code == "" {
		return nil
	}
	single := !strings.Contains(c.Code, "\n")
	if single && strings.HasPrefix(c.Code, "}") {
		b.w.Dedent()
	}
	b.w.WriteMappedLine(c.Code, c.CodeSpan)
	if single && strings.HasSuffix(strings.TrimSpace(c.Code), "{") {
		b.w.Indent()
	}
	return nil
}

// VisitExtension delegates to the extension renderer.
func (b *GoCodeBuilder) VisitExtension(c *ExtensionInvocation) error {
	if b.extensions == nil {
		return renderErrorf(b.ctx.SourceFile, c.Source, "no extension renderer for <%s>", c.TagName)
	}
	return b.extensions.RenderExtension(c, b.w, b)
}

// VisitDirective writes nothing; directives only shape the header.
func (b *GoCodeBuilder) VisitDirective(*Directive) error {
	return nil
}

// ClassName derives the generated type name from a template file name:
// "views/my-page.tgx" -> "MyPage".
func ClassName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "Template"
	}
	return GoName(base)
}

// OutputFileName returns the generated file name for a template:
// "page.tgx" -> "page_tgx.go".
func OutputFileName(file string) string {
	ext := filepath.Ext(file)
	if ext == "" {
		return file + "_tgx.go"
	}
	return fmt.Sprintf("%s_%s.go", strings.TrimSuffix(file, ext), strings.TrimPrefix(ext, "."))
}
