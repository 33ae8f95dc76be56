// Package tagx is the runtime used by code generated from .tgx templates.
//
// A compiled template is a struct embedding [Page] and implementing
// [Template]. Its Execute method writes literal markup with
// [Page.WriteLiteral], escapes expression values with [Page.Write] and runs
// custom tags through [Page.RunExtension]:
//
//	var buf strings.Builder
//	if err := tagx.Render(ctx, &buf, &views.Home{Model: m}); err != nil {
//		return err
//	}
//
// Extensions implement [Extension]. They receive the tag's unbound attributes
// in an [ExtensionContext] and shape the element through [Output]: changing
// the tag name, replacing content, adding markup before or after, or
// suppressing the element entirely.
package tagx
