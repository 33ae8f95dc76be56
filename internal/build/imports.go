package build

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/imports"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

// fixImports runs goimports over generated code and moves the line mappings
// after the import block by the number of lines goimports added or removed.
// Mappings whose text no longer matches the template are dropped.
func fixImports(filename, source, code string, mappings []tagxgen.LineMapping) (string, []tagxgen.LineMapping, error) {
	pre := []byte(code)
	post, err := imports.Process(filename, pre, nil)
	if err != nil {
		return "", nil, fmt.Errorf("goimports: %w", err)
	}

	preLine := findFirstContentLineAfterImports(pre)
	postLine := findFirstContentLineAfterImports(post)

	sm := tagxgen.NewSourceMap("", "", append([]tagxgen.LineMapping(nil), mappings...))
	sm.Shift(lineOffset(pre, preLine), postLine-preLine, lineOffset(post, postLine)-lineOffset(pre, preLine))
	return string(post), sm.Verified(source, string(post)), nil
}

// findFirstContentLineAfterImports finds the first non-blank line after the
// import block. Lines are 0-based.
func findFirstContentLineAfterImports(code []byte) int {
	lines := bytes.Split(code, []byte("\n"))
	inImportBlock := false
	importBlockEnded := false

	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)

		if bytes.HasPrefix(trimmed, []byte("import (")) {
			inImportBlock = true
			continue
		}
		if inImportBlock && len(trimmed) == 1 && trimmed[0] == ')' {
			inImportBlock = false
			importBlockEnded = true
			continue
		}
		// single-line imports: import "path"
		if bytes.HasPrefix(trimmed, []byte("import ")) && !inImportBlock {
			importBlockEnded = true
			continue
		}

		if importBlockEnded && !inImportBlock && len(trimmed) > 0 {
			return i
		}
	}

	return len(lines)
}

// lineOffset returns the byte offset of the start of 0-based line n.
func lineOffset(code []byte, n int) int {
	off := 0
	for range n {
		i := bytes.IndexByte(code[off:], '\n')
		if i < 0 {
			return len(code)
		}
		off += i + 1
	}
	return off
}
