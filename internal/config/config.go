// Package config loads the tagx project configuration from tagx.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"golang.org/x/mod/modfile"

	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

// FileName is the configuration file looked up in the project root.
const FileName = "tagx.yaml"

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config is the project configuration.
type Config struct {
	Package        string      `yaml:"package"`          // package of generated files; the directory name when empty
	BaseType       string      `yaml:"base_type"`        // type embedded by generated templates
	BaseTypeImport string      `yaml:"base_type_import"` // import path of BaseType; "./x" is relative to the module root
	DesignTime     bool        `yaml:"design_time"`
	Catalogs       []string    `yaml:"catalogs"`
	Directives     []Directive `yaml:"directives"` // ambient extension directives, applied in order
	GoImports      bool        `yaml:"goimports"`
	SourceMaps     *bool       `yaml:"source_maps"` // nil means enabled
	Parallel       int         `yaml:"parallel"`

	// Dir is the directory holding the configuration file.
	Dir string `yaml:"-"`
	// ModulePath and ModuleDir describe the enclosing Go module, if any.
	ModulePath string `yaml:"-"`
	ModuleDir  string `yaml:"-"`
}

// Directive is an ambient add or remove request. Exactly one field is set.
type Directive struct {
	Add    string `yaml:"add"`
	Remove string `yaml:"remove"`
}

// Default returns the configuration used when no file exists.
func Default(dir string) *Config {
	c := &Config{Dir: dir}
	applyDefaults(c)
	return c
}

// Load reads the configuration at path. A missing file yields the defaults
// for the file's directory. A .env file next to the configuration is loaded
// first so ${VAR} references can use it.
func Load(path string) (*Config, error) {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	if err := loadEnvFile(filepath.Join(dir, ".env")); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		c := Default(dir)
		if err := discoverModule(c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.Dir = dir
	expandConfigEnvVars(c)
	applyDefaults(c)
	if err := discoverModule(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes and validates configuration data. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := validateConfig(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateConfig(c *Config) error {
	if c.Package != "" && !isIdentifier(c.Package) {
		return fmt.Errorf("%w: package %q is not a valid Go package name", ErrConfigValidation, c.Package)
	}
	if c.BaseTypeImport != "" && c.BaseType == "" {
		return fmt.Errorf("%w: base_type_import requires base_type", ErrConfigValidation)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel must be non-negative, got %d", ErrConfigValidation, c.Parallel)
	}
	for i, d := range c.Directives {
		add, remove := strings.TrimSpace(d.Add), strings.TrimSpace(d.Remove)
		if (add == "") == (remove == "") {
			return fmt.Errorf("%w: directives[%d]: exactly one of add or remove is required", ErrConfigValidation, i)
		}
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Parallel == 0 {
		c.Parallel = runtime.GOMAXPROCS(0)
	}
	if c.SourceMaps == nil {
		enabled := true
		c.SourceMaps = &enabled
	}
	for i, p := range c.Catalogs {
		if !filepath.IsAbs(p) && c.Dir != "" {
			c.Catalogs[i] = filepath.Join(c.Dir, p)
		}
	}
}

// SourceMapsEnabled reports whether .map files are written.
func (c *Config) SourceMapsEnabled() bool {
	return c.SourceMaps == nil || *c.SourceMaps
}

// AmbientDirectives converts the configured directives for the resolver.
func (c *Config) AmbientDirectives() []tagxgen.DirectiveDescriptor {
	out := make([]tagxgen.DirectiveDescriptor, 0, len(c.Directives))
	for _, d := range c.Directives {
		if d.Add != "" {
			out = append(out, tagxgen.DirectiveDescriptor{Kind: tagxgen.AddExtension, LookupText: d.Add})
		} else {
			out = append(out, tagxgen.DirectiveDescriptor{Kind: tagxgen.RemoveExtension, LookupText: d.Remove})
		}
	}
	return out
}

// PackageFor returns the package name for templates in dir.
func (c *Config) PackageFor(dir string) string {
	if c.Package != "" {
		return c.Package
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	name := strings.ToLower(filepath.Base(abs))
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	if !isIdentifier(name) {
		return tagxgen.DefaultNamespace
	}
	return name
}

// ResolvedBaseTypeImport returns BaseTypeImport with a leading "./"
// resolved against the module path.
func (c *Config) ResolvedBaseTypeImport() string {
	imp := c.BaseTypeImport
	if !strings.HasPrefix(imp, "./") || c.ModulePath == "" {
		return imp
	}
	return c.ModulePath + "/" + strings.TrimPrefix(imp, "./")
}

// ImportPath returns the import path of the package in dir, or "" when dir
// is outside the module.
func (c *Config) ImportPath(dir string) string {
	if c.ModuleDir == "" {
		return ""
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(c.ModuleDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	if rel == "." {
		return c.ModulePath
	}
	return c.ModulePath + "/" + filepath.ToSlash(rel)
}

// discoverModule finds the go.mod enclosing c.Dir and records its module path.
func discoverModule(c *Config) error {
	path, dir, err := FindModule(c.Dir)
	if err != nil {
		return err
	}
	c.ModulePath, c.ModuleDir = path, dir
	return nil
}

// FindModule walks up from dir to the nearest go.mod and returns its module
// path and directory. Both are empty when there is none.
func FindModule(dir string) (string, string, error) {
	for {
		gomod := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(gomod)
		if err == nil {
			f, err := modfile.ParseLax(gomod, data, nil)
			if err != nil {
				return "", "", fmt.Errorf("failed to parse %s: %w", gomod, err)
			}
			if f.Module == nil {
				return "", "", fmt.Errorf("%s has no module directive", gomod)
			}
			return f.Module.Mod.Path, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", nil
		}
		dir = parent
	}
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} references. Unset variables expand to "".
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

func expandConfigEnvVars(c *Config) {
	c.Package = expandEnvVars(c.Package)
	c.BaseType = expandEnvVars(c.BaseType)
	c.BaseTypeImport = expandEnvVars(c.BaseTypeImport)
	for i := range c.Catalogs {
		c.Catalogs[i] = expandEnvVars(c.Catalogs[i])
	}
	for i := range c.Directives {
		c.Directives[i].Add = expandEnvVars(c.Directives[i].Add)
		c.Directives[i].Remove = expandEnvVars(c.Directives[i].Remove)
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !letter && (i == 0 || !digit) {
			return false
		}
	}
	return true
}
