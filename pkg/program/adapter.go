package program

import (
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

// Adapter turns a signature and its inputs into chat messages and parses the
// completion back into output values
type Adapter interface {
	Name() string
	Format(sig signature.Signature, inputs Inputs) ([]llm.Message, error)
	// ResponseFormat is the structured output mode to request, or nil.
	ResponseFormat(sig signature.Signature) *llm.ResponseFormat
	Parse(sig signature.Signature, completion string) (map[string]any, error)
}

type fieldView struct {
	Name string
	Type string
	Desc string
	Hint string
}

func viewFields(fields []signature.Field, withHints bool) []fieldView {
	views := make([]fieldView, len(fields))
	for i, f := range fields {
		views[i] = fieldView{Name: f.Name, Type: f.TypeName(), Desc: f.Desc()}
		if withHints {
			views[i].Hint = typeHint(f)
		}
	}
	return views
}

// typeHint describes the expected shape of a non-string output
func typeHint(f signature.Field) string {
	switch f.Type {
	case signature.TypeInt:
		return "must be a single int value"
	case signature.TypeFloat:
		return "must be a single float value"
	case signature.TypeBool:
		return "must be True or False"
	case signature.TypeList, signature.TypeDict:
		raw, err := jsonCompact(fieldSchema(f))
		if err != nil {
			return "must be valid JSON"
		}
		return "must adhere to the JSON schema: " + raw
	}
	return ""
}

// formatHint is the parenthesized reminder used in the closing instruction
func formatHint(f signature.Field) string {
	switch f.Type {
	case signature.TypeInt:
		return " (must be formatted as a valid integer)"
	case signature.TypeFloat:
		return " (must be formatted as a valid float)"
	case signature.TypeBool:
		return " (must be formatted as a valid boolean)"
	case signature.TypeList, signature.TypeDict:
		return " (must be formatted as valid JSON)"
	}
	return ""
}

// fieldSchema is the JSON schema of a single field value
func fieldSchema(f signature.Field) map[string]any {
	if f.Schema != nil {
		return f.Schema
	}
	var schema map[string]any
	switch f.Type {
	case signature.TypeInt:
		schema = map[string]any{"type": "integer"}
	case signature.TypeFloat:
		schema = map[string]any{"type": "number"}
	case signature.TypeBool:
		schema = map[string]any{"type": "boolean"}
	case signature.TypeList:
		schema = map[string]any{"type": "array"}
		if f.Annotation == "list[str]" {
			schema["items"] = map[string]any{"type": "string"}
		}
	case signature.TypeDict:
		schema = map[string]any{"type": "object"}
	default:
		schema = map[string]any{"type": "string"}
	}
	if d := f.Desc(); d != "" {
		schema["description"] = d
	}
	return schema
}

// outputSchema is the JSON schema of an object holding all output fields
func outputSchema(sig signature.Signature) map[string]any {
	props := make(map[string]any, len(sig.Outputs))
	required := make([]string, 0, len(sig.Outputs))
	for _, f := range sig.Outputs {
		props[f.Name] = fieldSchema(f)
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}
