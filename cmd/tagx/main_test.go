package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/go-tagx/internal/build"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/site\n\ngo 1.25\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestParsePosition(t *testing.T) {
	type tc struct {
		input   string
		line    int
		col     int
		wantErr bool
	}

	tests := map[string]tc{
		"line and column": {input: "3:7", line: 3, col: 7},
		"line only":       {input: "12", line: 12, col: 1},
		"zero line":       {input: "0:1", wantErr: true},
		"bad column":      {input: "2:x", wantErr: true},
		"zero column":     {input: "2:0", wantErr: true},
		"empty":           {input: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			line, col, err := parsePosition(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tagx version dev\n", out)
}

func TestGenerateAndMap(t *testing.T) {
	dir := project(t, map[string]string{
		"views/home.tgx": "<h1>Hi @name</h1>\n",
	})
	cfg := filepath.Join(dir, "tagx.yaml")
	template := filepath.Join(dir, "views", "home.tgx")

	out, err := runCmd(t, "--config", cfg, "generate", filepath.Join(dir, "views"))
	require.NoError(t, err)
	assert.Contains(t, out, "generated 1 file(s)")
	assert.FileExists(t, filepath.Join(dir, "views", "home_tgx.go"))

	sm, err := build.LoadSourceMap(template)
	require.NoError(t, err)
	require.Len(t, sm.Mappings, 1)
	m := sm.Mappings[0]

	out, err = runCmd(t, "map", template)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("home.tgx:1:9 -> home_tgx.go:%d:%d (4 bytes)\n", m.Generated.Line, m.Generated.Column), out)

	out, err = runCmd(t, "map", template, "--at", "1:10")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("home_tgx.go:%d:%d\n", m.Generated.Line, m.Generated.Column+1), out)

	out, err = runCmd(t, "map", template, "--generated", fmt.Sprintf("%d:%d", m.Generated.Line, m.Generated.Column))
	require.NoError(t, err)
	assert.Equal(t, "home.tgx:1:9\n", out)

	_, err = runCmd(t, "map", template, "--at", "1:1")
	assert.ErrorContains(t, err, "is not mapped")

	_, err = runCmd(t, "map", template, "--at", "1:1", "--generated", "1:1")
	assert.Error(t, err)
}

func TestGenerate_Verbose(t *testing.T) {
	dir := project(t, map[string]string{
		"a.tgx": "<p>a</p>\n",
	})
	cfg := filepath.Join(dir, "tagx.yaml")

	out, err := runCmd(t, "--config", cfg, "-v", "generate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "found 1 template(s)")
	assert.Contains(t, out, filepath.Join(dir, "a_tgx.go"))

	out, err = runCmd(t, "--config", cfg, "-v", "generate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
	assert.Contains(t, out, "generated 0 file(s)")
}

func TestCheck(t *testing.T) {
	dir := project(t, map[string]string{
		"good.tgx": "<p>ok</p>\n",
		"bad.tgx":  "@(broken\n",
	})
	cfg := filepath.Join(dir, "tagx.yaml")

	out, err := runCmd(t, "--config", cfg, "check", filepath.Join(dir, "good.tgx"))
	require.NoError(t, err)
	assert.Contains(t, out, "all 1 template(s) passed checks")
	assert.NoFileExists(t, filepath.Join(dir, "good_tgx.go"))

	out, err = runCmd(t, "--config", cfg, "check", dir)
	require.ErrorIs(t, err, build.ErrHasErrors)
	assert.Contains(t, out, "bad.tgx:1:")
	assert.True(t, strings.Contains(out, "error"), out)
}

func TestLoadProject_Catalog(t *testing.T) {
	dir := project(t, map[string]string{
		"tagx.yaml": "catalogs:\n  - widgets.yaml\n",
		"widgets.yaml": `extensions:
  - tag: my-tag
    type: MyTag
    origin: example.com/widgets
`,
	})

	cfg, resolver, err := loadProject(&globals{configPath: filepath.Join(dir, "tagx.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "example.com/site", cfg.ModulePath)
	require.NotNil(t, resolver)

	_, _, err = loadProject(&globals{configPath: filepath.Join(dir, "missing", "tagx.yaml")})
	require.NoError(t, err)
}
