// Package definition loads list definitions from YAML files.
//
// A definition is checked in three passes: the raw document against an
// embedded JSON schema, then the decoded struct, then the category tree.
// Every failure wraps domain.ErrInvalidDefinition.
package definition

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/curator/internal/core/domain"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "list-definition.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decode definition schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add definition schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Load reads and validates the definition at path.
func Load(path string) (*domain.ListDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// LoadAll loads several definitions, rejecting repeated list ids.
func LoadAll(paths []string) ([]domain.ListDefinition, error) {
	defs := make([]domain.ListDefinition, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		def, err := Load(path)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("%w: list id %q defined in both %s and %s",
				domain.ErrInvalidDefinition, def.ID, other, path)
		}
		seen[def.ID] = path
		defs = append(defs, *def)
	}
	return defs, nil
}

// Parse validates YAML data and decodes it into a definition.
func Parse(data []byte) (*domain.ListDefinition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", domain.ErrInvalidDefinition, err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var def domain.ListDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}

	if _, err := domain.NewCategoryTree(def.Options.CategoryTree); err != nil {
		if errors.Is(err, domain.ErrInvalidDefinition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}
	return &def, nil
}

// Validate checks a decoded YAML document against the definition schema.
func Validate(raw any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	// YAML and JSON disagree on number and map types; a JSON round trip
	// hands the validator the shapes it expects.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}
	return nil
}
