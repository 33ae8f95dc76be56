package tagx

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// Extension is implemented by the Go types that custom tags compile to.
// Generated code creates one value per invocation, assigns the bound
// attributes to its fields and calls Process.
type Extension interface {
	Process(ctx context.Context, ec *ExtensionContext, out *Output) error
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc func(ctx context.Context, ec *ExtensionContext, out *Output) error

// Process implements Extension.
func (f ExtensionFunc) Process(ctx context.Context, ec *ExtensionContext, out *Output) error {
	return f(ctx, ec, out)
}

// ExtensionContext describes the tag invocation being processed.
type ExtensionContext struct {
	ID         string     // unique per invocation site in a template
	TagName    string     // tag name as written
	Attributes Attributes // all attributes not bound to a field

	children     func(context.Context) (string, error)
	rendered     bool
	childContent string
}

// ChildContent renders the tag body once and returns it. Later calls return
// the same content. Tags without a body return "".
func (ec *ExtensionContext) ChildContent(ctx context.Context) (string, error) {
	if ec.rendered || ec.children == nil {
		return ec.childContent, nil
	}
	s, err := ec.children(ctx)
	if err != nil {
		return "", err
	}
	ec.childContent, ec.rendered = s, true
	return s, nil
}

// Output is the element an invocation writes. Extensions change it in place.
type Output struct {
	TagName     string // element name; empty writes only the content
	Attributes  Attributes
	SelfClosing bool

	pre, post  string
	content    string
	hasContent bool
	suppressed bool
}

// SetContent replaces the element content with escaped text.
func (o *Output) SetContent(s string) {
	o.SetHTMLContent(html.EscapeString(s))
}

// SetHTMLContent replaces the element content with markup.
func (o *Output) SetHTMLContent(s string) {
	o.content, o.hasContent = s, true
}

// Content returns the content set by an extension and whether one was set.
func (o *Output) Content() (string, bool) {
	return o.content, o.hasContent
}

// PreElement appends markup written before the element.
func (o *Output) PreElement(s string) {
	o.pre += s
}

// PostElement appends markup written after the element.
func (o *Output) PostElement(s string) {
	o.post += s
}

// SuppressOutput drops the element entirely, body included.
func (o *Output) SuppressOutput() {
	o.suppressed = true
}

// Attribute is a tag attribute passed through to the runtime. Minimized
// attributes (written without a value) have a nil Value.
type Attribute struct {
	Name      string
	Value     any
	Minimized bool
}

// Attributes is an ordered attribute list.
type Attributes []Attribute

// Get returns the first attribute named name, compared case-insensitively.
func (a Attributes) Get(name string) (Attribute, bool) {
	for _, attr := range a {
		if strings.EqualFold(attr.Name, name) {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Set replaces the value of the named attribute or appends it.
func (a *Attributes) Set(name string, value any) {
	for i := range *a {
		if strings.EqualFold((*a)[i].Name, name) {
			(*a)[i].Value, (*a)[i].Minimized = value, false
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: value})
}

// Remove deletes every attribute named name.
func (a *Attributes) Remove(name string) {
	kept := (*a)[:0]
	for _, attr := range *a {
		if !strings.EqualFold(attr.Name, name) {
			kept = append(kept, attr)
		}
	}
	*a = kept
}

// Clone returns a copy that can be changed independently.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// String renders the attributes as they appear inside a start tag, each
// preceded by a space.
func (a Attributes) String() string {
	var sb strings.Builder
	for _, attr := range a {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		if attr.Minimized {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(Concat(attr.Value)))
		sb.WriteByte('"')
	}
	return sb.String()
}

// Concat joins attribute value parts written as a mix of text and
// expressions. Parts are formatted with fmt.Sprint; nil parts are skipped.
func Concat(parts ...any) string {
	var sb strings.Builder
	for _, part := range parts {
		switch v := part.(type) {
		case nil:
		case string:
			sb.WriteString(v)
		case HTML:
			sb.WriteString(string(v))
		default:
			sb.WriteString(fmt.Sprint(v))
		}
	}
	return sb.String()
}
