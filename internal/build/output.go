package build

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

// writeOutputs writes the generated file and its source map. Files whose
// content is unchanged are left alone so watchers are not retriggered.
func writeOutputs(r *Result) (bool, error) {
	written, err := writeIfChanged(r.Output, []byte(r.Code))
	if err != nil {
		return false, err
	}
	if r.MapFile == "" {
		return written, nil
	}

	sm := tagxgen.NewSourceMap(filepath.Base(r.Template), filepath.Base(r.Output), r.Mappings)
	data, err := sm.ToJSON()
	if err != nil {
		return written, fmt.Errorf("encoding source map: %w", err)
	}
	mapWritten, err := writeIfChanged(r.MapFile, data)
	return written || mapWritten, err
}

func writeIfChanged(path string, data []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing file: %w", err)
	}
	return true, nil
}

// LoadSourceMap reads the source map written for a template.
func LoadSourceMap(template string) (*tagxgen.SourceMap, error) {
	path := tagxgen.SourceMapFileName(tagxgen.OutputFileName(template))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source map: %w", err)
	}
	sm, err := tagxgen.ParseSourceMap(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sm, nil
}
