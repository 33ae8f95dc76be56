package tagx

import (
	"bytes"
	"context"
	"io"
)

// Template is implemented by every type generated from a .tgx file.
// Generated types embed Page (or a type embedding it) and add Execute.
type Template interface {
	Execute(ctx context.Context) error
	SetOutput(w io.Writer)
}

// Render executes t, writing its output to w.
func Render(ctx context.Context, w io.Writer, t Template) error {
	t.SetOutput(w)
	return t.Execute(ctx)
}

// RenderString executes t and returns its output.
func RenderString(ctx context.Context, t Template) (string, error) {
	var buf bytes.Buffer
	if err := Render(ctx, &buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}
