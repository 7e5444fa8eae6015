package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// ItemSchema validates create payloads.
	ItemSchema = "item.json"
	// ItemPatchSchema validates partial update payloads. Null leaves a field
	// unchanged.
	ItemPatchSchema = "item_patch.json"
	// ImportSchema validates import documents.
	ImportSchema = "import.json"
)

var builtinSchemas = map[string]string{
	ItemSchema: `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "url": {"type": "string"},
    "description": {"type": "string"},
    "icon": {"type": "string"},
    "category": {"type": "string"},
    "categoryIcon": {"type": "string"},
    "username": {"type": "string"},
    "secretKey": {"type": "string"},
    "orderIndex": {"type": "number"},
    "isAdminOnly": {"type": "boolean"},
    "size": {"enum": ["extra-small", "small", "medium", "large", "extra-large", ""]},
    "environment": {"enum": ["production", "staging", "qa", "development", "common", ""]}
  }
}`,
	ItemPatchSchema: `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": {"type": ["string", "null"]},
    "url": {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "icon": {"type": ["string", "null"]},
    "category": {"type": ["string", "null"]},
    "categoryIcon": {"type": ["string", "null"]},
    "username": {"type": ["string", "null"]},
    "secretKey": {"type": ["string", "null"]},
    "orderIndex": {"type": ["number", "null"]},
    "isAdminOnly": {"type": ["boolean", "null"]},
    "size": {"enum": ["extra-small", "small", "medium", "large", "extra-large", null]},
    "environment": {"enum": ["production", "staging", "qa", "development", "common", null]}
  }
}`,
	ImportSchema: `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "properties": {
    "replaceExisting": {"type": "boolean"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "url"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "url": {"type": "string", "minLength": 1},
          "order_index": {"type": ["number", "null"]},
          "orderIndex": {"type": ["number", "null"]},
          "is_admin_only": {"type": ["boolean", "integer", "null"]},
          "isAdminOnly": {"type": ["boolean", "integer", "null"]}
        }
      }
    }
  }
}`,
}

// PayloadValidator checks raw JSON payloads before they are decoded.
type PayloadValidator interface {
	Validate(schema string, payload []byte) error
}

// JSONSchemaValidator compiles the built-in schemas lazily and validates raw
// payloads against them.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	sources  map[string]string
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	sources := make(map[string]string, len(builtinSchemas))
	for name, src := range builtinSchemas {
		sources[name] = src
	}
	return &JSONSchemaValidator{
		sources:  sources,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate decodes payload and checks it against the named schema. Failures
// are returned as *ValidationError.
func (v *JSONSchemaValidator) Validate(name string, payload []byte) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return &ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Message: "payload failed validation", Fields: schemaFields(err)}
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	src, known := v.sources[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	if !known {
		return nil, fmt.Errorf("dashboard: unknown schema %s", name)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

func schemaFields(err error) map[string]string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return map[string]string{"$": err.Error()}
	}
	fields := make(map[string]string)
	for _, leaf := range leafErrors(verr) {
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		fields[loc] = leaf.Message
	}
	return fields
}

func leafErrors(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, leafErrors(cause)...)
	}
	return out
}

type noopValidator struct{}

func (noopValidator) Validate(string, []byte) error { return nil }
