package tagxgen

// Chunk is a node of the chunk tree. The set of chunk types is closed:
// every type has a method on ChunkVisitor, so adding a chunk type without
// teaching the renderers about it does not compile.
type Chunk interface {
	chunk()                      // marker method to ensure type safety
	Pos() Span                   // exact source range consumed by the chunk
	Accept(v ChunkVisitor) error // dispatches to the matching Visit method
}

// ChunkVisitor has one method per chunk type.
type ChunkVisitor interface {
	VisitMarkup(c *Markup) error
	VisitExpression(c *Expression) error
	VisitStatement(c *Statement) error
	VisitExtension(c *ExtensionInvocation) error
	VisitDirective(c *Directive) error
}

// ChunkTree is the parsed form of one template.
type ChunkTree struct {
	File   string
	Source string
	Root   Span // spans the whole template
	Chunks []Chunk

	// Extensions is the resolved extension set the tree was built against.
	Extensions []*ExtensionDescriptor
}

// Markup is literal output text. Text differs from the source only for
// escapes (@@ becomes @).
type Markup struct {
	Text   string
	Source Span
}

func (c *Markup) chunk()                      {}
func (c *Markup) Pos() Span                   { return c.Source }
func (c *Markup) Accept(v ChunkVisitor) error { return v.VisitMarkup(c) }

// Expression is Go code whose value is written to the output.
type Expression struct {
	Code     string
	CodeSpan Span // location of Code in the template
	Source   Span // includes the transition and any delimiters
}

func (c *Expression) chunk()                      {}
func (c *Expression) Pos() Span                   { return c.Source }
func (c *Expression) Accept(v ChunkVisitor) error { return v.VisitExpression(c) }

// Statement is Go code emitted verbatim. Control flow is split into several
// statements ("if x {", "} else {", "}") around the markup chunks of its bodies.
// CodeSpan is zero when Code is not a verbatim copy of the template text.
type Statement struct {
	Code     string
	CodeSpan Span
	Source   Span
}

func (c *Statement) chunk()                      {}
func (c *Statement) Pos() Span                   { return c.Source }
func (c *Statement) Accept(v ChunkVisitor) error { return v.VisitStatement(c) }

// ExtensionInvocation is a tag matched by one or more resolved descriptors.
type ExtensionInvocation struct {
	TagName     string
	Descriptors []*ExtensionDescriptor
	Attributes  []*ExtensionAttribute
	Children    []Chunk
	SelfClosing bool
	Source      Span // from the start tag through the end tag
}

func (c *ExtensionInvocation) chunk()                      {}
func (c *ExtensionInvocation) Pos() Span                   { return c.Source }
func (c *ExtensionInvocation) Accept(v ChunkVisitor) error { return v.VisitExtension(c) }

// ExtensionAttribute is one attribute written on an extension tag.
type ExtensionAttribute struct {
	Name      string
	NameSpan  Span
	Quote     rune // 0 when unquoted or minimized
	Parts     []AttributePart
	ValueSpan Span // inside the quotes
	Minimized bool // written without a value
	Source    Span
}

// IsLiteral reports whether the value has no code parts.
func (a *ExtensionAttribute) IsLiteral() bool {
	for _, p := range a.Parts {
		if p.Expr != nil {
			return false
		}
	}
	return true
}

// LiteralValue joins the literal parts of the value.
func (a *ExtensionAttribute) LiteralValue() string {
	var s string
	for _, p := range a.Parts {
		if p.Expr == nil {
			s += p.Literal
		}
	}
	return s
}

// AttributePart is either literal text or an embedded expression.
type AttributePart struct {
	Literal string
	Expr    *Expression
	Source  Span
}

// DirectiveType identifies a directive chunk.
type DirectiveType string

const (
	DirectivePackage   DirectiveType = "package"
	DirectiveImport    DirectiveType = "import"
	DirectiveInherits  DirectiveType = "inherits"
	DirectiveModel     DirectiveType = "model"
	DirectiveAddExt    DirectiveType = "addext"
	DirectiveRemoveExt DirectiveType = "removeext"
)

// Directive is a document-level instruction. It produces no body output.
type Directive struct {
	Kind      DirectiveType
	Value     string // unquoted value
	Alias     string // import alias, only for import
	ValueSpan Span   // location of the value as written (quotes included)
	Source    Span
}

func (c *Directive) chunk()                      {}
func (c *Directive) Pos() Span                   { return c.Source }
func (c *Directive) Accept(v ChunkVisitor) error { return v.VisitDirective(c) }

// Walk calls fn for every chunk in depth-first document order.
// Returning false from fn skips the chunk's children.
func Walk(chunks []Chunk, fn func(Chunk) bool) {
	for _, c := range chunks {
		if !fn(c) {
			continue
		}
		if inv, ok := c.(*ExtensionInvocation); ok {
			Walk(inv.Children, fn)
		}
	}
}

// Directives returns every directive chunk in the tree in document order.
func (t *ChunkTree) Directives() []*Directive {
	var out []*Directive
	Walk(t.Chunks, func(c Chunk) bool {
		if d, ok := c.(*Directive); ok {
			out = append(out, d)
		}
		return true
	})
	return out
}

// Directive returns the last directive of the given type, or nil.
func (t *ChunkTree) Directive(kind DirectiveType) *Directive {
	var found *Directive
	for _, d := range t.Directives() {
		if d.Kind == kind {
			found = d
		}
	}
	return found
}
