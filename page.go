package tagx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/grindlemire/go-tagx/internal/debug"
)

// HTML is markup that Write emits without escaping.
type HTML string

// Page is the base type embedded by generated templates. It owns the output
// writer and implements the calls generated code makes.
//
// A Page is not safe for concurrent use; each render needs its own value.
type Page struct {
	out io.Writer
	err error
}

// SetOutput sets the writer receiving the rendered output.
func (p *Page) SetOutput(w io.Writer) {
	p.out = w
	p.err = nil
}

// Err returns the first write error, if any.
func (p *Page) Err() error {
	return p.err
}

func (p *Page) writeString(s string) {
	if p.err != nil || s == "" {
		return
	}
	if p.out == nil {
		p.err = errors.New("tagx: no output set")
		return
	}
	_, p.err = io.WriteString(p.out, s)
}

// WriteLiteral writes template markup as is.
func (p *Page) WriteLiteral(s string) {
	p.writeString(s)
}

// Write writes the value of a template expression, HTML escaped unless it
// is of type HTML. A nil value writes nothing.
func (p *Page) Write(v any) {
	switch v := v.(type) {
	case nil:
	case HTML:
		p.writeString(string(v))
	case string:
		p.writeString(html.EscapeString(v))
	default:
		p.writeString(html.EscapeString(fmt.Sprint(v)))
	}
}

// capture runs fn with the output redirected to a buffer.
func (p *Page) capture(ctx context.Context, fn func(context.Context) error) (string, error) {
	var buf bytes.Buffer
	out, prevErr := p.out, p.err
	p.out, p.err = &buf, nil
	err := fn(ctx)
	if err == nil {
		err = p.err
	}
	p.out, p.err = out, prevErr
	return buf.String(), err
}

// RunExtension runs the extensions matched for one tag invocation and writes
// the resulting element. id is unique within the generated file, attrs are
// the attributes no extension binds, and body renders the tag's children
// (nil for tags without a body).
//
// The extensions see the same Output in order; the last one wins where they
// disagree. When none of them supplied content, the body is rendered in place.
func (p *Page) RunExtension(ctx context.Context, id, tag string, attrs Attributes, body func(context.Context) error, exts ...Extension) error {
	ec := &ExtensionContext{ID: id, TagName: tag, Attributes: attrs.Clone()}
	if body != nil {
		ec.children = func(ctx context.Context) (string, error) {
			return p.capture(ctx, body)
		}
	}
	out := &Output{TagName: tag, Attributes: attrs.Clone(), SelfClosing: body == nil}

	for _, ext := range exts {
		if err := ext.Process(ctx, ec, out); err != nil {
			return fmt.Errorf("<%s> %T: %w", tag, ext, err)
		}
	}
	debug.Log("extension %s <%s>: %d extensions, suppressed=%v", id, tag, len(exts), out.suppressed)

	if out.suppressed {
		return p.err
	}
	p.writeString(out.pre)
	if out.TagName != "" {
		p.writeString("<" + out.TagName)
		p.writeString(out.Attributes.String())
		if out.SelfClosing && !out.hasContent {
			p.writeString(" />")
			p.writeString(out.post)
			return p.err
		}
		p.writeString(">")
	}

	switch {
	case out.hasContent:
		p.writeString(out.content)
	case ec.rendered:
		p.writeString(ec.childContent)
	case body != nil:
		if err := body(ctx); err != nil {
			return err
		}
	}

	if out.TagName != "" {
		p.writeString("</" + out.TagName + ">")
	}
	p.writeString(out.post)
	return p.err
}
