package tagxgen

import (
	"sort"

	"github.com/grindlemire/go-tagx/internal/debug"
)

// Parser builds a ChunkTree from a template.
//
// Parsing runs in three steps: the template is scanned into a flat list of
// items (chunks and tags) tagged with their brace depth, the collected
// directives are resolved, and the items are assembled into a tree in which
// tags matching a resolved descriptor become extension invocations.
type Parser struct {
	lexer    *Lexer
	resolver Resolver
	diags    *DiagnosticList

	items      []item
	directives []DirectiveDescriptor
}

// item is a chunk or a tag found while scanning, with the number of
// enclosing control-flow bodies.
type item struct {
	chunk Chunk
	tag   *tagSyntax
	depth int
}

// NewParser creates a parser over lexer. A nil resolver resolves no extensions.
func NewParser(lexer *Lexer, resolver Resolver) *Parser {
	return &Parser{
		lexer:    lexer,
		resolver: resolver,
		diags:    NewDiagnosticList(lexer.Filename()),
	}
}

// Parse scans the template and returns its chunk tree, the directive
// descriptors written in the template, and the diagnostics of the pass.
// The ambient directives are resolved ahead of the template's own.
// Parse never fails; malformed input is reported and parsed best-effort.
func (p *Parser) Parse(ambient []DirectiveDescriptor) (*ChunkTree, []DirectiveDescriptor, *DiagnosticList) {
	file := p.lexer.Filename()
	source := p.lexer.Source()

	p.parseMarkup(0, false)

	all := make([]DirectiveDescriptor, 0, len(ambient)+len(p.directives))
	all = append(all, ambient...)
	all = append(all, p.directives...)
	extensions := p.resolve(NewResolutionContext(file, all))

	b := &treeBuilder{diags: p.diags, extensions: extensions}
	tree := &ChunkTree{
		File:       file,
		Source:     source,
		Root:       Span{Offset: 0, Line: 1, Column: 1, Length: len(source)},
		Chunks:     b.build(p.items),
		Extensions: extensions,
	}

	diags := mergeDiagnostics(file, p.lexer.Errors(), p.diags)
	debug.Parse("%s: %d chunks, %d directives, %d extensions, %d diagnostics",
		file, len(tree.Chunks), len(all), len(extensions), diags.Len())

	return tree, p.directives, diags
}

func (p *Parser) resolve(ctx ResolutionContext) []*ExtensionDescriptor {
	if p.resolver == nil {
		return nil
	}
	if dr, ok := p.resolver.(DiagnosticResolver); ok {
		set, diags := dr.ResolveWithDiagnostics(ctx)
		p.diags.Append(diags)
		debug.Resolve("%s: %d directives -> %d extensions", ctx.File(), len(ctx.directives), len(set))
		return set
	}
	set := p.resolver.Resolve(ctx)
	debug.Resolve("%s: %d directives -> %d extensions", ctx.File(), len(ctx.directives), len(set))
	return set
}

// mergeDiagnostics combines lists into one ordered by source offset.
func mergeDiagnostics(file string, lists ...*DiagnosticList) *DiagnosticList {
	var all []*Diagnostic
	for _, l := range lists {
		all = append(all, l.Diagnostics()...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Span.Offset < all[j].Span.Offset
	})
	out := NewDiagnosticList(file)
	out.Append(all)
	return out
}

func (p *Parser) emit(c Chunk, depth int) {
	p.items = append(p.items, item{chunk: c, depth: depth})
}

func (p *Parser) emitMarkup(text string, span Span, depth int) {
	p.emit(&Markup{Text: text, Source: span}, depth)
}

// parseMarkup scans markup until EOF or, inside a control-flow body, until
// the '}' closing the body. It returns that '}' token and whether it was found.
func (p *Parser) parseMarkup(depth int, inBlock bool) (Token, bool) {
	nest := 0
	for {
		tok := p.lexer.NextMarkup()
		switch tok.Type {
		case TokenEOF:
			return tok, false
		case TokenText:
			p.emitMarkup(tok.Literal, tok.Span, depth)
		case TokenComment:
			// produces nothing
		case TokenLBrace:
			if inBlock {
				nest++
			}
			p.emitMarkup(tok.Literal, tok.Span, depth)
		case TokenRBrace:
			if inBlock {
				if nest == 0 {
					return tok, true
				}
				nest--
			}
			p.emitMarkup(tok.Literal, tok.Span, depth)
		case TokenTransition:
			p.parseTransition(tok, depth)
		case TokenTagOpen, TokenTagEndOpen:
			p.parseTag(tok, depth)
		}
	}
}
