package tagxgen

import (
	"github.com/grindlemire/go-tagx/internal/debug"
)

// GeneratorResults is the outcome of one compilation pass.
type GeneratorResults struct {
	Code          string
	Mappings      []LineMapping
	Diagnostics   []*Diagnostic
	GeneratedFile string

	// Tree, Directives and Extensions are exposed for tooling.
	Tree       *ChunkTree
	Directives []DirectiveDescriptor
	Extensions []*ExtensionDescriptor
}

// HasErrors reports whether any diagnostic has error severity.
func (r *GeneratorResults) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SourceMap returns the mappings in their serializable form.
func (r *GeneratorResults) SourceMap() *SourceMap {
	return NewSourceMap(r.Tree.File, r.GeneratedFile, r.Mappings)
}

// Engine runs compilation passes configured by a host.
type Engine struct {
	host *Host
}

// NewEngine creates an engine. A nil host means NewHost().
func NewEngine(host *Host) *Engine {
	if host == nil {
		host = NewHost()
	}
	return &Engine{host: host}
}

// Host returns the engine's host.
func (e *Engine) Host() *Host {
	return e.host
}

// Generate compiles one template. Problems in the template are reported as
// diagnostics next to best-effort code; the error is non-nil only when
// rendering hits a broken invariant, in which case no results are returned.
func (e *Engine) Generate(file, source string, ambient []DirectiveDescriptor) (*GeneratorResults, error) {
	parser := NewParser(NewLexer(file, source), e.host.Resolver)
	tree, directives, diags := parser.Parse(ambient)

	ctx := NewCodeBuilderContext(e.host, file, tree)
	out, err := e.host.CreateCodeBuilder(ctx).Build(tree)
	if err != nil {
		debug.Render("%s: %v", file, err)
		return nil, err
	}

	return &GeneratorResults{
		Code:          out.Code,
		Mappings:      out.Mappings,
		Diagnostics:   diags.Diagnostics(),
		GeneratedFile: ctx.GeneratedFileName,
		Tree:          tree,
		Directives:    directives,
		Extensions:    tree.Extensions,
	}, nil
}
