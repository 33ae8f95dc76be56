package tagxgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceMap_Translate(t *testing.T) {
	sm := NewSourceMap("page.tgx", "page_tgx.go", []LineMapping{
		{Document: Span{4, 1, 5, 9}, Generated: Span{300, 20, 10, 9}},
		{Document: Span{30, 3, 3, 7}, Generated: Span{350, 22, 2, 7}},
	})

	type tc struct {
		line, col         int
		wantLine, wantCol int
		ok                bool
	}

	toDoc := map[string]tc{
		"start of mapping": {line: 20, col: 10, wantLine: 1, wantCol: 5, ok: true},
		"inside mapping":   {line: 20, col: 14, wantLine: 1, wantCol: 9, ok: true},
		"second mapping":   {line: 22, col: 5, wantLine: 3, wantCol: 6, ok: true},
		"before mapping":   {line: 20, col: 2, wantLine: 20, wantCol: 2},
		"unmapped line":    {line: 21, col: 10, wantLine: 21, wantCol: 10},
	}
	for name, tt := range toDoc {
		t.Run("ToDocument "+name, func(t *testing.T) {
			line, col, ok := sm.ToDocument(tt.line, tt.col)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}

	line, col, ok := sm.ToGenerated(3, 4)
	assert.True(t, ok)
	assert.Equal(t, 22, line)
	assert.Equal(t, 3, col)

	_, _, ok = sm.ToGenerated(2, 1)
	assert.False(t, ok)
}

func TestSourceMap_ShiftAndVerify(t *testing.T) {
	src := "Hi @name"
	res := generate(t, NewHost(), "page.tgx", src)
	sm := res.SourceMap()
	require.Len(t, sm.Mappings, 1)

	// insert a line before the body, the way import fixing does
	at := strings.Index(res.Code, "\tp.Write(name)")
	require.Positive(t, at)
	shifted := res.Code[:at] + "// extra\n" + res.Code[at:]
	sm.Shift(at, 1, len("// extra\n"))
	assert.Equal(t, sm.Mappings, sm.Verified(src, shifted))
	assert.Equal(t, "name", sm.Mappings[0].Generated.Text(shifted))

	// a rewritten expression no longer verifies
	broken := shifted[:sm.Mappings[0].Generated.Offset] + "nope" + shifted[sm.Mappings[0].Generated.End():]
	assert.Empty(t, sm.Verified(src, broken))
}

func TestSourceMap_JSON(t *testing.T) {
	sm := NewSourceMap("page.tgx", "page_tgx.go", nil)
	data, err := sm.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mappings": []`)

	sm.Mappings = append(sm.Mappings, LineMapping{Document: Span{1, 1, 2, 3}, Generated: Span{40, 5, 9, 3}})
	data, err = sm.ToJSON()
	require.NoError(t, err)

	parsed, err := ParseSourceMap(data)
	require.NoError(t, err)
	assert.Equal(t, sm, parsed)

	_, err = ParseSourceMap([]byte("{"))
	assert.Error(t, err)
}
