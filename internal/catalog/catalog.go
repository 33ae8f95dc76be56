package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/grindlemire/go-tagx/internal/debug"
	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

type fileDoc struct {
	Extensions []extensionDoc `yaml:"extensions"`
}

type extensionDoc struct {
	Tag         string         `yaml:"tag"`
	Type        string         `yaml:"type"`
	Origin      string         `yaml:"origin"`
	Package     string         `yaml:"package"`
	SelfClosing bool           `yaml:"self_closing"`
	Attributes  []attributeDoc `yaml:"attributes"`
}

type attributeDoc struct {
	Name  string `yaml:"name"`
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// Catalog is the merged set of descriptors from one or more files.
type Catalog struct {
	Descriptors []*tagxgen.ExtensionDescriptor
	Files       []string
}

// Parse decodes and validates one catalog file. name is used in errors.
func Parse(name string, data []byte) ([]*tagxgen.ExtensionDescriptor, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if root.Kind == 0 {
		return nil, fmt.Errorf("%s: empty catalog", name)
	}
	if err := validate(name, &root); err != nil {
		return nil, err
	}

	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	descs := make([]*tagxgen.ExtensionDescriptor, 0, len(doc.Extensions))
	for _, e := range doc.Extensions {
		d := &tagxgen.ExtensionDescriptor{
			TagName:     e.Tag,
			TypeName:    e.Type,
			Origin:      e.Origin,
			Package:     e.Package,
			SelfClosing: e.SelfClosing,
		}
		for _, a := range e.Attributes {
			ad := tagxgen.AttributeDescriptor{Name: a.Name, Field: a.Field, Type: a.Type}
			if ad.Field == "" {
				ad.Field = tagxgen.GoName(a.Name)
			}
			if ad.Type == "" {
				ad.Type = "string"
			}
			d.Attributes = append(d.Attributes, ad)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// Load reads and merges catalog files in order. Files are parsed
// concurrently.
func Load(paths ...string) (*Catalog, error) {
	parsed := make([][]*tagxgen.ExtensionDescriptor, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read catalog: %w", err)
			}
			descs, err := Parse(path, data)
			if err != nil {
				return err
			}
			debug.Resolve("catalog %s: %d descriptors", path, len(descs))
			parsed[i] = descs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Catalog{Files: append([]string(nil), paths...)}
	for _, descs := range parsed {
		c.Descriptors = append(c.Descriptors, descs...)
	}
	if err := Validate(c.Descriptors); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolver returns a resolver over the catalog's descriptors.
func (c *Catalog) Resolver() tagxgen.Resolver {
	return tagxgen.NewCatalogResolver(c.Descriptors)
}

// Validate checks rules that span descriptors: an import alias must name a
// single origin, and an attribute may be declared once per descriptor.
func Validate(descs []*tagxgen.ExtensionDescriptor) error {
	var errs []error
	aliases := map[string]string{}
	for _, d := range descs {
		if d.Origin != "" {
			alias := d.Alias()
			if origin, ok := aliases[alias]; ok && origin != d.Origin {
				errs = append(errs, fmt.Errorf("%s: package alias %q already used for %q; set package to disambiguate",
					d.QualifiedType(), alias, origin))
			} else if !ok {
				aliases[alias] = d.Origin
			}
		}

		seen := map[string]bool{}
		for _, a := range d.Attributes {
			key := strings.ToLower(a.Name)
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s: attribute %q declared twice", d.QualifiedType(), a.Name))
			}
			seen[key] = true
		}
	}
	return errors.Join(errs...)
}
