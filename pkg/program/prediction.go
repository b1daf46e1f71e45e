package program

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

// Step is one iteration of a tool-using loop
type Step struct {
	Thought     string         `json:"thought"`
	ToolName    string         `json:"tool_name"`
	ToolArgs    map[string]any `json:"tool_args"`
	Observation string         `json:"observation"`
}

// Prediction holds the output fields produced by a module
type Prediction struct {
	ID     string
	Fields map[string]any
	// Keys lists the field names in signature order.
	Keys []string
	// Trajectory is set by tool-using modules.
	Trajectory []Step
	// Usage sums the tokens of every request made to produce the prediction.
	Usage llm.Usage
}

// NewPrediction creates a prediction with the given fields, ordered by keys
func NewPrediction(keys []string, fields map[string]any) *Prediction {
	if fields == nil {
		fields = map[string]any{}
	}
	ordered := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, k := range keys {
		if _, ok := fields[k]; ok && !seen[k] {
			ordered = append(ordered, k)
			seen[k] = true
		}
	}
	for k := range fields {
		if !seen[k] {
			ordered = append(ordered, k)
		}
	}
	return &Prediction{
		ID:     uuid.NewString(),
		Fields: fields,
		Keys:   ordered,
	}
}

// Get returns the raw value of a field
func (p *Prediction) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.Fields[name]
	return v, ok
}

// String returns a field rendered as text, or "" when absent
func (p *Prediction) String(name string) string {
	v, ok := p.Get(name)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Int returns a field as an integer
func (p *Prediction) Int(name string) (int, error) {
	v, ok := p.Get(name)
	if !ok {
		return 0, fmt.Errorf("prediction has no field %q", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
		return 0, fmt.Errorf("field %q: %v is not an integer", name, n)
	case string:
		c, err := coerce(signature.Field{Name: name, Type: signature.TypeInt}, n)
		if err != nil {
			return 0, err
		}
		return c.(int), nil
	}
	return 0, fmt.Errorf("field %q: %T is not an integer", name, v)
}

// Float returns a field as a float
func (p *Prediction) Float(name string) (float64, error) {
	v, ok := p.Get(name)
	if !ok {
		return 0, fmt.Errorf("prediction has no field %q", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		c, err := coerce(signature.Field{Name: name, Type: signature.TypeFloat}, n)
		if err != nil {
			return 0, err
		}
		return c.(float64), nil
	}
	return 0, fmt.Errorf("field %q: %T is not a number", name, v)
}

// Bool returns a field as a boolean
func (p *Prediction) Bool(name string) (bool, error) {
	v, ok := p.Get(name)
	if !ok {
		return false, fmt.Errorf("prediction has no field %q", name)
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		c, err := coerce(signature.Field{Name: name, Type: signature.TypeBool}, b)
		if err != nil {
			return false, err
		}
		return c.(bool), nil
	}
	return false, fmt.Errorf("field %q: %T is not a boolean", name, v)
}

// Decode stores a field into out, which must be a pointer, going through JSON
func (p *Prediction) Decode(name string, out any) error {
	v, ok := p.Get(name)
	if !ok {
		return fmt.Errorf("prediction has no field %q", name)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// DecodeAll stores all fields into the struct pointed to by out, matching
// fields by their json names
func (p *Prediction) DecodeAll(out any) error {
	if p == nil {
		return fmt.Errorf("nil prediction")
	}
	raw, err := json.Marshal(p.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Reasoning returns the reasoning produced by chain-of-thought modules, if any
func (p *Prediction) Reasoning() string {
	if s := p.String(ReasoningField); s != "" {
		return s
	}
	return p.String(RationaleField)
}

// Summary renders all fields as "name: value" lines, in signature order
func (p *Prediction) Summary() string {
	var sb strings.Builder
	for _, k := range p.Keys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(p.String(k))
		sb.WriteString("\n")
	}
	return sb.String()
}

// MarshalJSON encodes the fields of the prediction
func (p *Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields)
}

// FormatValue renders a field value for prompts and display: strings
// verbatim, string lists as numbered «…» entries and anything else as
// indented JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		var sb strings.Builder
		for i, s := range val {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("[" + strconv.Itoa(i+1) + "] «" + s + "»")
		}
		return sb.String()
	case fmt.Stringer:
		return val.String()
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
