package tagxgen

import (
	"errors"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, host *Host, file, src string, ambient ...DirectiveDescriptor) *GeneratorResults {
	t.Helper()
	res, err := NewEngine(host).Generate(file, src, ambient)
	require.NoError(t, err)
	return res
}

func TestGoCodeBuilder_Output(t *testing.T) {
	type tc struct {
		input    string
		contains []string
	}

	tests := map[string]tc{
		"markup": {
			input:    "<p>hi</p>\n",
			contains: []string{"\tp.WriteLiteral(\"<p>hi</p>\\n\")\n"},
		},
		"expression": {
			input:    "Hi @user.Name",
			contains: []string{"\tp.WriteLiteral(\"Hi \")\n", "\tp.Write(user.Name)\n"},
		},
		"statements indent their bodies": {
			input: "@if ok {\n<b>x</b>\n} else {\ny\n}",
			contains: []string{
				"\tif ok {\n\t\tp.WriteLiteral(\"\\n<b>x</b>\\n\")\n\t} else {\n\t\tp.WriteLiteral(\"\\ny\\n\")\n\t}\n",
			},
		},
		"code block": {
			input:    "@{ n := len(items) }@n",
			contains: []string{"\tn := len(items)\n\tp.Write(n)\n"},
		},
		"header directives": {
			input: "@package pages\n@import \"strings\"\n@import h \"html\"\n@inherits layouts.Base\n@model *Data\n@strings.ToUpper(Model.Name)",
			contains: []string{
				"package pages\n",
				"\t\"strings\"\n",
				"\th \"html\"\n",
				"type Page struct {\n\tlayouts.Base\n\tModel *Data\n}\n",
				"\tModel := p.Model\n\t_ = Model\n",
				"\tp.Write(strings.ToUpper(Model.Name))\n",
			},
		},
		"default header": {
			input: "x",
			contains: []string{
				"// Code generated by tagx. DO NOT EDIT.\n// Source: page.tgx\n\npackage views\n",
				"\ttagx \"github.com/grindlemire/go-tagx\"\n",
				"var _ tagx.Template = (*Page)(nil)\n",
				"type Page struct {\n\ttagx.Page\n}\n",
				"func (p *Page) Execute(ctx context.Context) error {\n",
				"\treturn nil\n}\n",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res := generate(t, NewHost(), "page.tgx", tt.input)
			assert.Empty(t, res.Diagnostics)
			for _, want := range tt.contains {
				assert.Contains(t, res.Code, want)
			}
			assert.NotContains(t, res.Code, DesignTimeMarker)
		})
	}
}

func TestGoCodeBuilder_MappingsRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"expressions": "Hi @user.Name, you have @(len(items)) items",
		"statements":  "@for _, it := range items {\n  <li>@it.Title</li>\n}\n",
		"else chain":  "@if a {x} else if b {y} else {z}",
		"directives":  "@import f \"fmt\"\n@model Data\n@inherits Base\n@f.Sprint(Model)",
		"multi-line":  "@{\n\tx := 1\n\ty := x + 1\n}\n@y",
	}

	for name, src := range inputs {
		for _, designTime := range []bool{false, true} {
			host := NewHost()
			host.DesignTime = designTime
			res := generate(t, host, "page.tgx", src)

			require.NotEmpty(t, res.Mappings, name)
			for _, m := range res.Mappings {
				assert.Equal(t, m.Document.Length, m.Generated.Length, name)
				assert.Equal(t, m.Document.Text(src), m.Generated.Text(res.Code), "%s: %s", name, m.Document)
				assert.Equal(t, lineCol(res.Code, m.Generated.Offset), [2]int{m.Generated.Line, m.Generated.Column}, name)
				assert.Equal(t, lineCol(src, m.Document.Offset), [2]int{m.Document.Line, m.Document.Column}, name)
			}
		}
	}
}

// lineCol computes the 1-based line and rune column of offset in s.
func lineCol(s string, offset int) [2]int {
	line, col := 1, 1
	for _, r := range s[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return [2]int{line, col}
}

// goTokens scans Go source and returns its tokens, ignoring comments and
// whitespace.
func goTokens(t *testing.T, src string) []string {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile("gen.go", -1, len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		t.Errorf("scan error at %s: %s", pos, msg)
	}, 0)

	var out []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			return out
		}
		if tok == token.SEMICOLON {
			out = append(out, ";")
			continue
		}
		out = append(out, tok.String()+" "+lit)
	}
}

func TestGoCodeBuilder_DesignTimeEquivalence(t *testing.T) {
	inputs := []string{
		"plain <b>markup</b>",
		"Hi @user.Name!",
		"@if ok {\n  @(a + b)\n} else {\n  none\n}\n",
		"@for i := range 3 {<card count=@i title=\"n@(i)\">@i</card>}",
		"@{\n  total := 0\n  for _, x := range xs {\n    total += x\n  }\n}\n@total",
		"@import \"fmt\"\n@model Data\n@fmt.Sprint(Model)",
	}

	for _, src := range inputs {
		run := NewHost()
		run.Resolver = NewCatalogResolver([]*ExtensionDescriptor{cardDescriptor})
		run.NewIDAllocator = func() IDAllocator { return &passIDs{salt: "id"} }
		design := *run
		design.DesignTime = true

		ambient := DirectiveDescriptor{Kind: AddExtension, LookupText: "*"}
		runRes := generate(t, run, "page.tgx", src, ambient)
		designRes := generate(t, &design, "page.tgx", src, ambient)

		assert.Contains(t, designRes.Code, DesignTimeMarker)
		assert.NotEqual(t, runRes.Code, designRes.Code, src)
		assert.Equal(t, goTokens(t, runRes.Code), goTokens(t, designRes.Code), src)
		assert.Equal(t, len(runRes.Mappings), len(designRes.Mappings), src)
	}
}

func TestGoCodeBuilder_DesignTimePragmas(t *testing.T) {
	host := NewHost()
	host.DesignTime = true
	src := "<p>\n  @if ok {\n    @name\n  }\n</p>"
	res := generate(t, host, "views/page.tgx", src)

	assert.Contains(t, res.Code, "//line views/page.tgx:2:4\n   if ok {\n")
	assert.Contains(t, res.Code, "p.Write(/*line views/page.tgx:3:6*/name/*line views/page_tgx.go:")

	// statements start at their template column
	for _, m := range res.Mappings {
		if m.Generated.Text(res.Code) == "if ok {" {
			assert.Equal(t, m.Document.Column, m.Generated.Column)
		}
	}

	// every restore directive names the line it sits on
	for i, line := range strings.Split(res.Code, "\n") {
		idx := strings.Index(line, "/*line views/page_tgx.go:")
		if idx < 0 {
			continue
		}
		rest := strings.TrimPrefix(line[idx:], "/*line views/page_tgx.go:")
		assert.True(t, strings.HasPrefix(rest, strconv.Itoa(i+1)+":"), line)
	}
}

func TestGoCodeBuilder_InvalidSpans(t *testing.T) {
	type tc struct {
		tree *ChunkTree
	}

	src := "abcdef"
	root := Span{0, 1, 1, 6}
	tests := map[string]tc{
		"overlapping siblings": {
			tree: &ChunkTree{File: "page.tgx", Source: src, Root: root, Chunks: []Chunk{
				&Markup{Text: "abc", Source: Span{0, 1, 1, 3}},
				&Markup{Text: "cd", Source: Span{2, 1, 3, 2}},
			}},
		},
		"child escapes parent": {
			tree: &ChunkTree{File: "page.tgx", Source: src, Root: root, Chunks: []Chunk{
				&ExtensionInvocation{TagName: "x", Source: Span{0, 1, 1, 2}, Children: []Chunk{
					&Markup{Text: "cd", Source: Span{2, 1, 3, 2}},
				}},
			}},
		},
		"code does not match source": {
			tree: &ChunkTree{File: "page.tgx", Source: src, Root: root, Chunks: []Chunk{
				&Expression{Code: "zz", CodeSpan: Span{1, 1, 2, 2}, Source: Span{0, 1, 1, 3}},
			}},
		},
		"outside the template": {
			tree: &ChunkTree{File: "page.tgx", Source: src, Root: root, Chunks: []Chunk{
				&Markup{Text: "x", Source: Span{6, 1, 7, 1}},
			}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			host := NewHost()
			ctx := NewCodeBuilderContext(host, "page.tgx", tt.tree)
			res, err := host.CreateCodeBuilder(ctx).Build(tt.tree)
			assert.Nil(t, res)
			var rerr *RenderError
			require.True(t, errors.As(err, &rerr), "got %v", err)
			assert.Equal(t, "page.tgx", rerr.File)
		})
	}
}

func TestClassName(t *testing.T) {
	type tc struct {
		file     string
		expected string
	}

	tests := map[string]tc{
		"simple":    {file: "page.tgx", expected: "Page"},
		"dashed":    {file: "views/my-page.tgx", expected: "MyPage"},
		"snake":     {file: "user_list.tgx", expected: "UserList"},
		"digit":     {file: "404.tgx", expected: "T404"},
		"no ext":    {file: "index", expected: "Index"},
		"unicode":   {file: "überblick.tgx", expected: "Überblick"},
		"separator": {file: "a.b.tgx", expected: "AB"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassName(tt.file))
		})
	}
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "views/page_tgx.go", OutputFileName("views/page.tgx"))
	assert.Equal(t, "page_tgx.go", OutputFileName("page"))
	assert.Equal(t, "page_tgx.go.map", SourceMapFileName("page_tgx.go"))
}
