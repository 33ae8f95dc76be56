package tagxgen

import (
	"encoding/json"
)

// SourceMap is the serialized form of a pass's line mappings, written next to
// the generated file so editors can translate positions.
// Lines and columns are 1-based.
type SourceMap struct {
	SourceFile    string        `json:"sourceFile"`
	GeneratedFile string        `json:"generatedFile"`
	Mappings      []LineMapping `json:"mappings"`
}

// NewSourceMap creates a source map from a pass's mappings.
func NewSourceMap(sourceFile, generatedFile string, mappings []LineMapping) *SourceMap {
	if mappings == nil {
		mappings = []LineMapping{}
	}
	return &SourceMap{SourceFile: sourceFile, GeneratedFile: generatedFile, Mappings: mappings}
}

// ToDocument converts a generated position to a template position.
// Returns the input position and false when no mapping covers it.
func (sm *SourceMap) ToDocument(line, col int) (int, int, bool) {
	for _, m := range sm.Mappings {
		if covers(m.Generated, line, col) {
			return m.Document.Line, m.Document.Column + (col - m.Generated.Column), true
		}
	}
	return line, col, false
}

// ToGenerated converts a template position to a generated position.
// Returns the input position and false when no mapping covers it.
func (sm *SourceMap) ToGenerated(line, col int) (int, int, bool) {
	for _, m := range sm.Mappings {
		if covers(m.Document, line, col) {
			return m.Generated.Line, m.Generated.Column + (col - m.Document.Column), true
		}
	}
	return line, col, false
}

// covers reports whether line:col falls on the first line of span.
// Mapped code spanning several lines is only translated on its first line.
func covers(span Span, line, col int) bool {
	return span.Line == line && col >= span.Column && col <= span.Column+span.Length
}

// Shift moves every generated span starting at or after fromOffset by the
// given line and byte deltas.
func (sm *SourceMap) Shift(fromOffset, lineDelta, offsetDelta int) {
	for i := range sm.Mappings {
		g := &sm.Mappings[i].Generated
		if g.Offset >= fromOffset {
			g.Line += lineDelta
			g.Offset += offsetDelta
		}
	}
}

// Verified returns the mappings whose generated text still equals the
// template text, dropping those invalidated by post-processing.
func (sm *SourceMap) Verified(source, generated string) []LineMapping {
	var out []LineMapping
	for _, m := range sm.Mappings {
		if m.Document.Length == m.Generated.Length && m.Document.Text(source) == m.Generated.Text(generated) {
			out = append(out, m)
		}
	}
	return out
}

// ToJSON serializes the source map to JSON.
func (sm *SourceMap) ToJSON() ([]byte, error) {
	return json.MarshalIndent(sm, "", "  ")
}

// ParseSourceMap parses a source map from JSON.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, err
	}
	return &sm, nil
}

// SourceMapFileName returns the source map filename for a given generated file.
// e.g., "page_tgx.go" -> "page_tgx.go.map"
func SourceMapFileName(goFile string) string {
	return goFile + ".map"
}
