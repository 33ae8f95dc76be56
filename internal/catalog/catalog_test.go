package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

const uiCatalog = `extensions:
  - tag: card
    type: Card
    origin: example.com/ui
    attributes:
      - name: title
      - name: item-count
        type: int
  - tag: icon
    type: Icon
    origin: example.com/ui
    self_closing: true
`

func TestParse(t *testing.T) {
	descs, err := Parse("ui.yaml", []byte(uiCatalog))
	require.NoError(t, err)

	assert.Equal(t, []*tagxgen.ExtensionDescriptor{
		{
			TagName:  "card",
			TypeName: "Card",
			Origin:   "example.com/ui",
			Attributes: []tagxgen.AttributeDescriptor{
				{Name: "title", Field: "Title", Type: "string"},
				{Name: "item-count", Field: "ItemCount", Type: "int"},
			},
		},
		{TagName: "icon", TypeName: "Icon", Origin: "example.com/ui", SelfClosing: true},
	}, descs)
}

func TestParse_SchemaErrors(t *testing.T) {
	type tc struct {
		input string
		line  int
		path  string
	}

	tests := map[string]tc{
		"missing type": {
			input: "extensions:\n  - tag: card\n",
			line:  2,
			path:  "/extensions/0",
		},
		"unknown key": {
			input: "extensions:\n  - tag: card\n    type: Card\n    colour: red\n",
			line:  2,
			path:  "/extensions/0",
		},
		"bad type name": {
			input: "extensions:\n  - tag: card\n    type: 9Card\n",
			line:  3,
			path:  "/extensions/0/type",
		},
		"bad attribute": {
			input: "extensions:\n  - tag: card\n    type: Card\n    attributes:\n      - name: ok\n      - field: X\n",
			line:  6,
			path:  "/extensions/0/attributes/1",
		},
		"wrong root": {
			input: "- tag: card\n",
			line:  1,
			path:  "/",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("ui.yaml", []byte(tt.input))
			require.Error(t, err)

			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "got %v", err)
			assert.Equal(t, "ui.yaml", serr.File)
			assert.Equal(t, tt.line, serr.Line)
			assert.Equal(t, tt.path, serr.Path)
			assert.NotEmpty(t, serr.Message)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("ui.yaml", []byte("extensions: [\n"))
	assert.ErrorContains(t, err, "ui.yaml")

	_, err = Parse("empty.yaml", nil)
	assert.ErrorContains(t, err, "empty catalog")
}

func TestLoad_MergesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(first, []byte(uiCatalog), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("extensions:\n  - tag: \"*\"\n    type: Tracker\n    origin: example.com/track\n"), 0o644))

	c, err := Load(first, second)
	require.NoError(t, err)
	require.Len(t, c.Descriptors, 3)
	assert.Equal(t, "Card", c.Descriptors[0].TypeName)
	assert.Equal(t, "Tracker", c.Descriptors[2].TypeName)
	assert.Equal(t, []string{first, second}, c.Files)

	res, err := tagxgen.NewEngine(&tagxgen.Host{Resolver: c.Resolver()}).Generate("page.tgx", "<icon/>",
		[]tagxgen.DirectiveDescriptor{{Kind: tagxgen.AddExtension, LookupText: "*"}})
	require.NoError(t, err)
	assert.Len(t, res.Tree.Extensions, 3)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog")
}

func TestValidate(t *testing.T) {
	type tc struct {
		descs   []*tagxgen.ExtensionDescriptor
		wantErr string
	}

	tests := map[string]tc{
		"ok": {
			descs: []*tagxgen.ExtensionDescriptor{
				{TagName: "a", TypeName: "A", Origin: "example.com/ui"},
				{TagName: "b", TypeName: "B", Origin: "example.com/ui"},
				{TagName: "c", TypeName: "C", Origin: "example.org/ui", Package: "orgui"},
			},
		},
		"alias conflict": {
			descs: []*tagxgen.ExtensionDescriptor{
				{TagName: "a", TypeName: "A", Origin: "example.com/ui"},
				{TagName: "c", TypeName: "C", Origin: "example.org/ui"},
			},
			wantErr: `package alias "ui" already used for "example.com/ui"`,
		},
		"duplicate attribute": {
			descs: []*tagxgen.ExtensionDescriptor{
				{TagName: "a", TypeName: "A", Attributes: []tagxgen.AttributeDescriptor{{Name: "x"}, {Name: "X"}}},
			},
			wantErr: `attribute "X" declared twice`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate(tt.descs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
