package tagxgen

import (
	"path"
	"strings"
	"unicode"
)

// DirectiveKind is the kind of an extension directive.
type DirectiveKind int

const (
	AddExtension DirectiveKind = iota
	RemoveExtension
)

func (k DirectiveKind) String() string {
	if k == RemoveExtension {
		return "removeext"
	}
	return "addext"
}

// DirectiveDescriptor is an add or remove request for extensions, gathered
// from the template or supplied by the host as an ambient directive.
type DirectiveDescriptor struct {
	Kind       DirectiveKind
	LookupText string // "Pattern" or "Pattern, origin"
	Span       Span   // zero for ambient directives
}

// ExtensionDescriptor describes a tag that compiles to extension code.
// Descriptors belong to the catalog and must not be modified.
type ExtensionDescriptor struct {
	TagName     string // matched case-insensitively; "*" matches every tag
	TypeName    string // Go type implementing tagx.Extension
	Origin      string // import path of the package declaring TypeName
	Package     string // import alias, defaults to the last element of Origin
	Attributes  []AttributeDescriptor
	SelfClosing bool // the tag never has a body
}

// AttributeDescriptor binds a tag attribute to a field of the extension type.
type AttributeDescriptor struct {
	Name  string // attribute name, matched case-insensitively
	Field string // Go field name
	Type  string // Go type of the field; "string" when empty
}

// IsString reports whether attribute values are written as Go string literals.
func (a AttributeDescriptor) IsString() bool {
	return a.Type == "" || a.Type == "string"
}

// Alias returns the import alias used for the descriptor's package.
func (d *ExtensionDescriptor) Alias() string {
	if d.Package != "" {
		return d.Package
	}
	return path.Base(d.Origin)
}

// QualifiedType returns the type name as written in generated code.
func (d *ExtensionDescriptor) QualifiedType() string {
	if d.Origin == "" {
		return d.TypeName
	}
	return d.Alias() + "." + d.TypeName
}

// Attribute returns the descriptor bound to the named attribute, or nil.
func (d *ExtensionDescriptor) Attribute(name string) *AttributeDescriptor {
	for i := range d.Attributes {
		if strings.EqualFold(d.Attributes[i].Name, name) {
			return &d.Attributes[i]
		}
	}
	return nil
}

// MatchesTag reports whether the descriptor applies to a tag with the given name.
func (d *ExtensionDescriptor) MatchesTag(tag string) bool {
	return d.TagName == "*" || strings.EqualFold(d.TagName, tag)
}

// matchingDescriptors returns the descriptors in set that apply to tag, in set order.
func matchingDescriptors(set []*ExtensionDescriptor, tag string) []*ExtensionDescriptor {
	var out []*ExtensionDescriptor
	for _, d := range set {
		if d.MatchesTag(tag) {
			out = append(out, d)
		}
	}
	return out
}

// FieldName returns the Go field the attribute is assigned to.
func (a AttributeDescriptor) FieldName() string {
	if a.Field != "" {
		return a.Field
	}
	return GoName(a.Name)
}

// GoName converts a dashed or dotted name to an exported Go identifier:
// "data-id" -> "DataId", "my-page" -> "MyPage".
func GoName(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !isLetter(r) && !isDigit(r) || r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	s := sb.String()
	if s == "" || isDigit(rune(s[0])) {
		s = "T" + s
	}
	return s
}
