// Package build compiles many templates at once, writing the generated Go
// files and their source maps.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/grindlemire/go-tagx/internal/config"
	"github.com/grindlemire/go-tagx/internal/debug"
	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

var (
	// ErrNoTemplates is returned when no template matches the given paths.
	ErrNoTemplates = errors.New("no .tgx templates found")
	// ErrHasErrors is returned when at least one template failed to compile.
	ErrHasErrors = errors.New("templates have errors")
)

// Result is the outcome of compiling one template.
type Result struct {
	Template    string
	Output      string // generated Go file
	MapFile     string // source map file, empty when disabled
	Source      string
	Code        string
	Mappings    []tagxgen.LineMapping
	Diagnostics []*tagxgen.Diagnostic
	Written     bool  // false when the file was up to date or not written
	Err         error // I/O, render or goimports failure
}

// HasErrors reports whether the template failed to compile.
func (r *Result) HasErrors() bool {
	if r.Err != nil {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity == tagxgen.SeverityError {
			return true
		}
	}
	return false
}

// Builder compiles templates with one project configuration.
type Builder struct {
	cfg      *config.Config
	resolver tagxgen.Resolver

	// DesignTime forces design-time output regardless of the configuration.
	DesignTime bool
	// Progress, when set, is called after each template finishes. Calls are
	// serialized.
	Progress func(*Result)

	mu sync.Mutex
}

// New creates a builder. resolver may be nil when no catalog is loaded.
func New(cfg *config.Config, resolver tagxgen.Resolver) *Builder {
	return &Builder{cfg: cfg, resolver: resolver}
}

// Run compiles files in parallel. With write set, the generated code and
// source maps of templates without errors are written next to them.
// Results are sorted by template path. The error wraps ErrHasErrors when
// any template failed.
func (b *Builder) Run(ctx context.Context, files []string, write bool) ([]*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoTemplates
	}

	p := pool.NewWithResults[*Result]().WithMaxGoroutines(max(b.cfg.Parallel, 1))
	for _, file := range files {
		p.Go(func() *Result {
			r := b.Compile(ctx, file, write)
			if b.Progress != nil {
				b.mu.Lock()
				b.Progress(r)
				b.mu.Unlock()
			}
			return r
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Template < results[j].Template })

	failed := 0
	for _, r := range results {
		if r.HasErrors() {
			failed++
		}
	}
	debug.Build("run: %d templates, %d failed", len(results), failed)
	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d", ErrHasErrors, failed, len(results))
	}
	return results, nil
}

// host returns the host configured for file.
func (b *Builder) host(file string) *tagxgen.Host {
	host := tagxgen.NewHost()
	host.Namespace = b.cfg.PackageFor(filepath.Dir(file))
	if b.cfg.BaseType != "" {
		host.BaseType = b.cfg.BaseType
		host.BaseTypeImport = b.cfg.ResolvedBaseTypeImport()
	}
	host.DesignTime = b.DesignTime || b.cfg.DesignTime
	host.GeneratedFileName = filepath.Base(tagxgen.OutputFileName(file))
	host.Resolver = b.resolver
	return host
}

// Compile compiles one template.
func (b *Builder) Compile(ctx context.Context, file string, write bool) *Result {
	r := &Result{Template: file, Output: tagxgen.OutputFileName(file)}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	data, err := os.ReadFile(file)
	if err != nil {
		r.Err = fmt.Errorf("reading template: %w", err)
		return r
	}
	r.Source = string(data)

	host := b.host(file)
	res, err := tagxgen.NewEngine(host).Generate(file, r.Source, b.cfg.AmbientDirectives())
	if err != nil {
		r.Err = err
		return r
	}
	r.Diagnostics = res.Diagnostics
	r.Code, r.Mappings = res.Code, res.Mappings

	if b.cfg.GoImports && !host.DesignTime && !res.HasErrors() {
		r.Code, r.Mappings, err = fixImports(r.Output, r.Source, r.Code, r.Mappings)
		if err != nil {
			r.Err = fmt.Errorf("%s: %w", file, err)
			return r
		}
	}
	debug.Build("%s: %d diagnostics, %d mappings", file, len(r.Diagnostics), len(r.Mappings))

	if b.cfg.SourceMapsEnabled() {
		r.MapFile = tagxgen.SourceMapFileName(r.Output)
	}
	if write && !r.HasErrors() {
		r.Written, r.Err = writeOutputs(r)
	}
	return r
}
