package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/catalog.schema.json
var catalogSchema string

const schemaURL = "https://tagx.dev/schemas/catalog.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(catalogSchema), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add catalog schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// SchemaError is a schema violation located in the catalog file.
type SchemaError struct {
	File    string
	Line    int
	Column  int
	Path    string // JSON pointer of the offending value
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (at %s)", e.File, e.Line, e.Column, e.Message, e.Path)
}

// validate checks the decoded YAML document against the catalog schema.
// Violations come back as SchemaErrors joined with errors.Join.
func validate(file string, root *yaml.Node) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := root.Decode(&doc); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	// round trip through JSON so numbers and maps have the types the
	// validator expects
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	err = schema.Validate(normalized)
	if err == nil {
		return nil
	}
	var valErr *jsonschema.ValidationError
	if !errors.As(err, &valErr) {
		return fmt.Errorf("%s: %w", file, err)
	}

	var errs []error
	for _, leaf := range leaves(valErr) {
		line, col := locate(root, leaf.InstanceLocation)
		errs = append(errs, &SchemaError{
			File:    file,
			Line:    line,
			Column:  col,
			Path:    "/" + strings.Join(leaf.InstanceLocation, "/"),
			Message: cleanMessage(leaf.Error()),
		})
	}
	return errors.Join(errs...)
}

// leaves returns the most specific causes of a validation error.
func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, c := range err.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

var atPrefix = regexp.MustCompile(`^- at '[^']*': `)

// cleanMessage drops the validator's framing lines and location prefixes.
func cleanMessage(msg string) string {
	var kept []string
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		kept = append(kept, atPrefix.ReplaceAllString(line, ""))
	}
	if len(kept) == 0 {
		return "schema validation failed"
	}
	return strings.Join(kept, "; ")
}

// locate finds the position of the value at path in the YAML tree. It
// returns the position of the deepest node found along the path.
func locate(root *yaml.Node, path []string) (int, int) {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, seg := range path {
		next := child(node, seg)
		if next == nil {
			break
		}
		node = next
	}
	return node.Line, node.Column
}

func child(node *yaml.Node, seg string) *yaml.Node {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == seg {
				return node.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		i, err := strconv.Atoi(seg)
		if err == nil && i >= 0 && i < len(node.Content) {
			return node.Content[i]
		}
	}
	return nil
}
