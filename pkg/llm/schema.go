package llm

import (
	"encoding/json"
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// SchemaFromStruct generates a JSON Schema from a Go value using swaggest/jsonschema-go.
// Field descriptions are read from the `description` tag.
//
// Example:
//
//	type Character struct {
//	    Name     string `json:"name"`
//	    ClanName string `json:"clanName" description:"The name of the clan the character belongs to"`
//	}
//	schema, err := SchemaFromStruct([]Character{})
func SchemaFromStruct(v interface{}) (jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{}

	schema, err := reflector.Reflect(v, jsonschema.InlineRefs)
	if err != nil {
		return jsonschema.Schema{}, fmt.Errorf("failed to reflect struct to JSON schema: %w", err)
	}

	return schema, nil
}

// SchemaFromStructAsMap generates a JSON Schema as map[string]interface{} from a Go value.
// This is useful when the schema has to be embedded in provider-specific payloads.
func SchemaFromStructAsMap(v interface{}) (map[string]interface{}, error) {
	schema, err := SchemaFromStruct(v)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}

	var schemaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON to map: %w", err)
	}

	return schemaMap, nil
}

// NewJSONSchemaResponseFormat creates a ResponseFormat with JSON Schema
func NewJSONSchemaResponseFormat(name, description string, schema interface{}) *ResponseFormat {
	return &ResponseFormat{
		Type: ResponseFormatJSONSchema,
		JSONSchema: &JSONSchema{
			Name:        name,
			Description: description,
			Schema:      schema,
		},
	}
}

// NewJSONResponseFormat creates a ResponseFormat for basic JSON object output (no schema)
func NewJSONResponseFormat() *ResponseFormat {
	return &ResponseFormat{
		Type: ResponseFormatJSON,
	}
}

// SchemaJSON returns the raw JSON of the schema carried by a response format,
// or nil when there is none.
func (f *ResponseFormat) SchemaJSON() (json.RawMessage, error) {
	if f == nil || f.JSONSchema == nil || f.JSONSchema.Schema == nil {
		return nil, nil
	}
	if raw, ok := f.JSONSchema.Schema.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(f.JSONSchema.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}
	return b, nil
}
