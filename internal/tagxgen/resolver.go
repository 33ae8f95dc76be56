package tagxgen

import (
	"fmt"
	"strings"
)

// ResolutionContext carries the ordered directives of one compilation unit:
// ambient directives first, then in-document directives in document order.
type ResolutionContext struct {
	file       string
	directives []DirectiveDescriptor
}

// NewResolutionContext creates a context over a copy of directives.
func NewResolutionContext(file string, directives []DirectiveDescriptor) ResolutionContext {
	ds := make([]DirectiveDescriptor, len(directives))
	copy(ds, directives)
	return ResolutionContext{file: file, directives: ds}
}

// File returns the template file name.
func (c ResolutionContext) File() string {
	return c.file
}

// Directives returns a copy of the ordered directives.
func (c ResolutionContext) Directives() []DirectiveDescriptor {
	ds := make([]DirectiveDescriptor, len(c.directives))
	copy(ds, c.directives)
	return ds
}

// Resolver turns directives into the set of extensions available to a template.
// Implementations are called from concurrent passes and must not keep state
// derived from the context.
type Resolver interface {
	Resolve(ctx ResolutionContext) []*ExtensionDescriptor
}

// DiagnosticResolver is implemented by resolvers that can explain why a
// directive contributed nothing. Resolution still completes either way.
type DiagnosticResolver interface {
	Resolver
	ResolveWithDiagnostics(ctx ResolutionContext) ([]*ExtensionDescriptor, []*Diagnostic)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx ResolutionContext) []*ExtensionDescriptor

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx ResolutionContext) []*ExtensionDescriptor {
	return f(ctx)
}

// CatalogResolver resolves directives against a fixed list of descriptors.
//
// Directives are applied in order. An add directive unions every catalog
// entry whose type name matches the pattern (and whose origin matches, when
// one is given); a remove directive drops entries whose simple type name
// matches. The last directive touching a name therefore wins.
//
// Patterns are a type name, "*", or a prefix followed by "*".
// Removal qualified with an origin is not supported and removes nothing.
type CatalogResolver struct {
	catalog []*ExtensionDescriptor
}

// NewCatalogResolver creates a resolver over catalog.
func NewCatalogResolver(catalog []*ExtensionDescriptor) *CatalogResolver {
	return &CatalogResolver{catalog: catalog}
}

// Resolve implements Resolver.
func (r *CatalogResolver) Resolve(ctx ResolutionContext) []*ExtensionDescriptor {
	set, _ := r.ResolveWithDiagnostics(ctx)
	return set
}

// ResolveWithDiagnostics implements DiagnosticResolver.
func (r *CatalogResolver) ResolveWithDiagnostics(ctx ResolutionContext) ([]*ExtensionDescriptor, []*Diagnostic) {
	var set []*ExtensionDescriptor
	var diags []*Diagnostic

	warn := func(span Span, format string, args ...any) {
		diags = append(diags, &Diagnostic{
			Kind:     ResolutionError,
			Severity: SeverityWarning,
			File:     ctx.File(),
			Span:     span,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, dir := range ctx.directives {
		pattern, origin := splitLookupText(dir.LookupText)
		switch dir.Kind {
		case AddExtension:
			matched := 0
			for _, d := range r.catalog {
				if !matchPattern(pattern, d.TypeName) || (origin != "" && origin != d.Origin) {
					continue
				}
				matched++
				if !containsDescriptor(set, d) {
					set = append(set, d)
				}
			}
			if matched == 0 {
				warn(dir.Span, "no extension matches %q", dir.LookupText)
			}

		case RemoveExtension:
			if origin != "" {
				warn(dir.Span, "qualified removal %q is not supported; nothing removed", dir.LookupText)
				continue
			}
			var kept []*ExtensionDescriptor
			for _, d := range set {
				if !matchPattern(pattern, d.TypeName) {
					kept = append(kept, d)
				}
			}
			set = kept
		}
	}
	return set, diags
}

// splitLookupText splits "Pattern, origin" into its parts.
func splitLookupText(text string) (pattern, origin string) {
	pattern, origin, _ = strings.Cut(text, ",")
	return strings.TrimSpace(pattern), strings.TrimSpace(origin)
}

func matchPattern(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return pattern == name
}

func containsDescriptor(set []*ExtensionDescriptor, d *ExtensionDescriptor) bool {
	for _, s := range set {
		if s == d {
			return true
		}
	}
	return false
}
