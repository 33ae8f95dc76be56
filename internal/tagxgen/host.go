package tagxgen

// Defaults used when a Host leaves a field empty.
const (
	DefaultNamespace = "views"
	DefaultBaseType  = "tagx.Page"
)

// Host configures compilation passes. A Host may be shared by concurrent
// passes; it is only read, and every pass builds its own renderers through
// the factory functions.
type Host struct {
	Namespace         string // Go package of generated files; @package overrides it
	ClassName         string // generated type name; derived from the file name when empty
	BaseType          string // embedded base type; @inherits overrides it
	BaseTypeImport    string // import path needed by BaseType, if any
	DesignTime        bool
	GeneratedFileName string // derived from the file name when empty

	Resolver Resolver

	NewIDAllocator       func() IDAllocator
	NewExtensionRenderer func(ctx *CodeBuilderContext, ids IDAllocator) ExtensionRenderer
	NewCodeBuilder       func(ctx *CodeBuilderContext, ext ExtensionRenderer) CodeBuilder

	// DecorateCodeBuilder, when set, receives the builder created by
	// NewCodeBuilder and returns the one actually used. It may wrap the
	// builder or replace it entirely.
	DecorateCodeBuilder func(ctx *CodeBuilderContext, builder CodeBuilder) CodeBuilder
}

// NewHost returns a host with the default namespace, base type and factories.
func NewHost() *Host {
	return &Host{
		Namespace:      DefaultNamespace,
		BaseType:       DefaultBaseType,
		NewIDAllocator: NewPassIDs,
		NewExtensionRenderer: func(ctx *CodeBuilderContext, ids IDAllocator) ExtensionRenderer {
			return NewGoExtensionRenderer(ctx, ids)
		},
		NewCodeBuilder: func(ctx *CodeBuilderContext, ext ExtensionRenderer) CodeBuilder {
			return NewGoCodeBuilder(ctx, ext)
		},
	}
}

// CreateCodeBuilder builds the code builder for one pass, applying
// DecorateCodeBuilder last.
func (h *Host) CreateCodeBuilder(ctx *CodeBuilderContext) CodeBuilder {
	newIDs := h.NewIDAllocator
	if newIDs == nil {
		newIDs = NewPassIDs
	}
	ids := newIDs()

	var ext ExtensionRenderer
	if h.NewExtensionRenderer != nil {
		ext = h.NewExtensionRenderer(ctx, ids)
	} else {
		ext = NewGoExtensionRenderer(ctx, ids)
	}

	var builder CodeBuilder
	if h.NewCodeBuilder != nil {
		builder = h.NewCodeBuilder(ctx, ext)
	} else {
		builder = NewGoCodeBuilder(ctx, ext)
	}

	if h.DecorateCodeBuilder != nil {
		builder = h.DecorateCodeBuilder(ctx, builder)
	}
	return builder
}

// CodeBuilderContext is the configuration of one pass. It is built once by
// NewCodeBuilderContext and must not be modified afterwards.
type CodeBuilderContext struct {
	Namespace         string
	ClassName         string
	BaseType          string
	BaseTypeImport    string
	DesignTime        bool
	SourceFile        string
	GeneratedFileName string
	Host              *Host
}

// NewCodeBuilderContext resolves the pass configuration for file from the
// host settings and the template's @package and @inherits directives.
func NewCodeBuilderContext(host *Host, file string, tree *ChunkTree) *CodeBuilderContext {
	ctx := &CodeBuilderContext{
		Namespace:         host.Namespace,
		ClassName:         host.ClassName,
		BaseType:          host.BaseType,
		BaseTypeImport:    host.BaseTypeImport,
		DesignTime:        host.DesignTime,
		SourceFile:        file,
		GeneratedFileName: host.GeneratedFileName,
		Host:              host,
	}
	if ctx.Namespace == "" {
		ctx.Namespace = DefaultNamespace
	}
	if ctx.ClassName == "" {
		ctx.ClassName = ClassName(file)
	}
	if ctx.BaseType == "" {
		ctx.BaseType = DefaultBaseType
	}
	if ctx.GeneratedFileName == "" {
		ctx.GeneratedFileName = OutputFileName(file)
	}
	if tree != nil {
		if d := tree.Directive(DirectivePackage); d != nil && d.Value != "" {
			ctx.Namespace = d.Value
		}
		if d := tree.Directive(DirectiveInherits); d != nil && d.Value != "" {
			ctx.BaseType = d.Value
		}
	}
	return ctx
}
