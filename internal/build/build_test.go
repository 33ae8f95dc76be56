package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/go-tagx/internal/config"
	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectTemplates(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"a.tgx",
		"b.tgx",
		"notes.txt",
		"sub/c.tgx",
		"sub/deeper/d.tgx",
		".hidden/e.tgx",
		"vendor/f.tgx",
	} {
		writeFile(t, filepath.Join(dir, f), "x")
	}
	j := func(parts ...string) string { return filepath.Join(append([]string{dir}, parts...)...) }

	type tc struct {
		paths    []string
		expected []string
	}

	tests := map[string]tc{
		"file": {
			paths:    []string{j("a.tgx")},
			expected: []string{j("a.tgx")},
		},
		"directory is not recursive": {
			paths:    []string{dir},
			expected: []string{j("a.tgx"), j("b.tgx")},
		},
		"recursive skips hidden and vendor": {
			paths:    []string{dir + "/..."},
			expected: []string{j("a.tgx"), j("b.tgx"), j("sub", "c.tgx"), j("sub", "deeper", "d.tgx")},
		},
		"duplicates removed": {
			paths:    []string{j("a.tgx"), dir, j("a.tgx")},
			expected: []string{j("a.tgx"), j("b.tgx")},
		},
		"other extensions ignored": {
			paths: []string{j("notes.txt")},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			files, err := CollectTemplates(tt.paths)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, files)
		})
	}

	_, err := CollectTemplates([]string{j("missing.tgx")})
	assert.Error(t, err)
}

func newConfig(dir string) *config.Config {
	return config.Default(dir)
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	views := filepath.Join(dir, "views")
	writeFile(t, filepath.Join(views, "home.tgx"), "<h1>Hi @name</h1>\n")
	writeFile(t, filepath.Join(views, "about.tgx"), "@for _, x := range xs {<p>@x</p>}\n")

	files, err := CollectTemplates([]string{views})
	require.NoError(t, err)

	var progressed []string
	b := New(newConfig(dir), nil)
	b.Progress = func(r *Result) { progressed = append(progressed, r.Template) }
	results, err := b.Run(context.Background(), files, true)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ElementsMatch(t, files, progressed)

	home := results[1]
	assert.Equal(t, filepath.Join(views, "home.tgx"), home.Template)
	assert.True(t, home.Written)

	code, err := os.ReadFile(filepath.Join(views, "home_tgx.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "package views\n")
	assert.Contains(t, string(code), "type Home struct {")
	assert.Contains(t, string(code), "p.Write(name)")

	sm, err := LoadSourceMap(home.Template)
	require.NoError(t, err)
	assert.Equal(t, "home.tgx", sm.SourceFile)
	assert.Equal(t, "home_tgx.go", sm.GeneratedFile)
	require.Len(t, sm.Mappings, 1)
	assert.Equal(t, "name", sm.Mappings[0].Generated.Text(string(code)))

	// a second run leaves unchanged files alone
	results, err = b.Run(context.Background(), files, true)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Written, r.Template)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tgx")
	bad := filepath.Join(dir, "bad.tgx")
	writeFile(t, good, "ok")
	writeFile(t, bad, "@(broken")

	results, err := New(newConfig(dir), nil).Run(context.Background(), []string{good, bad}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHasErrors))
	require.Len(t, results, 2)

	assert.True(t, results[0].HasErrors())
	assert.NotEmpty(t, results[0].Diagnostics)
	assert.NoFileExists(t, filepath.Join(dir, "bad_tgx.go"))
	assert.FileExists(t, filepath.Join(dir, "good_tgx.go"))

	_, err = New(newConfig(dir), nil).Run(context.Background(), nil, true)
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestRun_CheckDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.tgx")
	writeFile(t, file, "x")

	results, err := New(newConfig(dir), nil).Run(context.Background(), []string{file}, false)
	require.NoError(t, err)
	assert.NotEmpty(t, results[0].Code)
	assert.NoFileExists(t, filepath.Join(dir, "page_tgx.go"))
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.tgx")
	writeFile(t, file, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := New(newConfig(dir), nil).Run(ctx, []string{file}, true)
	assert.ErrorIs(t, err, ErrHasErrors)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestCompile_ConfigAndCatalog(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.tgx")
	writeFile(t, file, `<card title="x"></card>`)

	cfg := newConfig(dir)
	cfg.Package = "pages"
	cfg.BaseType = "layout.Base"
	cfg.BaseTypeImport = "./layout"
	cfg.ModulePath = "example.com/site"
	cfg.DesignTime = true
	cfg.Directives = []config.Directive{{Add: "Card"}}

	resolver := tagxgen.NewCatalogResolver([]*tagxgen.ExtensionDescriptor{
		{TagName: "card", TypeName: "Card", Origin: "example.com/ui",
			Attributes: []tagxgen.AttributeDescriptor{{Name: "title", Field: "Title", Type: "string"}}},
	})
	r := New(cfg, resolver).Compile(context.Background(), file, false)
	require.False(t, r.HasErrors(), "%v %v", r.Err, r.Diagnostics)

	assert.Contains(t, r.Code, tagxgen.DesignTimeMarker)
	assert.Contains(t, r.Code, "package pages\n")
	assert.Contains(t, r.Code, "\t\"example.com/site/layout\"\n")
	assert.Contains(t, r.Code, "\tlayout.Base\n")
	assert.Contains(t, r.Code, `__ui_Card.Title = "x"`)
}

func TestCompile_GoImports(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.tgx")
	src := "@import \"fmt\"\n<p>@strings.ToUpper(name)</p>\n"
	writeFile(t, file, src)

	cfg := newConfig(dir)
	cfg.GoImports = true
	r := New(cfg, nil).Compile(context.Background(), file, false)
	require.NoError(t, r.Err)

	assert.Contains(t, r.Code, "\"strings\"")
	assert.NotContains(t, r.Code, "\"fmt\"")

	var found bool
	for _, m := range r.Mappings {
		assert.Equal(t, m.Document.Text(src), m.Generated.Text(r.Code))
		if m.Generated.Text(r.Code) == "strings.ToUpper(name)" {
			found = true
			line := strings.Split(r.Code, "\n")[m.Generated.Line-1]
			assert.Contains(t, line, "p.Write(strings.ToUpper(name))")
		}
	}
	assert.True(t, found)
}

func TestFindFirstContentLineAfterImports(t *testing.T) {
	type tc struct {
		code     string
		expected int
	}

	tests := map[string]tc{
		"block": {
			code:     "package x\n\nimport (\n\t\"a\"\n)\n\nvar _ = 1\n",
			expected: 6,
		},
		"single": {
			code:     "package x\n\nimport \"a\"\n\nfunc f() {}\n",
			expected: 4,
		},
		"none": {
			code:     "package x\n",
			expected: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, findFirstContentLineAfterImports([]byte(tt.code)))
		})
	}
	assert.Equal(t, 11, lineOffset([]byte("package x\n\nimport"), 2))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "keep.txt"), "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir + "/..."}, 50*time.Millisecond, func(changed []string) {
			mu.Lock()
			got = append(got, changed...)
			mu.Unlock()
		})
	}()

	target := filepath.Join(dir, "sub", "page.tgx")
	require.Eventually(t, func() bool {
		// keep touching until the watcher is registered
		_ = os.WriteFile(target, []byte("x"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "sub", "ignored.txt"), []byte("x"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 100*time.Millisecond)

	mu.Lock()
	for _, f := range got {
		assert.True(t, strings.HasSuffix(f, ".tgx"), f)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
