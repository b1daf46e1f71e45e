package program

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

var jsonSystemTemplate = llm.MustPromptTemplate(`Your input fields are:
{{range $i, $f := .Inputs}}{{add $i 1}}. {{quote $f.Name}} ({{$f.Type}}){{if $f.Desc}}: {{$f.Desc}}{{end}}
{{end}}Your output fields are:
{{range $i, $f := .Outputs}}{{add $i 1}}. {{quote $f.Name}} ({{$f.Type}}){{if $f.Desc}}: {{$f.Desc}}{{end}}
{{end}}
Inputs will be given as [[ ## name ## ]] sections. Outputs will be a single JSON object with the keys {{join .Keys ", "}}.

In adhering to this structure, your objective is: 
        {{.Instructions}}`)

// JSONAdapter asks for the outputs as one JSON object, constrained by a
// json_schema response format where the provider supports it
type JSONAdapter struct{}

// Name implements Adapter
func (JSONAdapter) Name() string { return "json" }

// ResponseFormat implements Adapter
func (JSONAdapter) ResponseFormat(sig signature.Signature) *llm.ResponseFormat {
	return llm.NewJSONSchemaResponseFormat("outputs", "Output fields", outputSchema(sig))
}

// Format implements Adapter
func (JSONAdapter) Format(sig signature.Signature, inputs Inputs) ([]llm.Message, error) {
	keys := make([]string, len(sig.Outputs))
	for i, f := range sig.Outputs {
		keys[i] = "`" + f.Name + "`"
	}
	system, err := jsonSystemTemplate.Render(map[string]any{
		"Inputs":       viewFields(sig.Inputs, false),
		"Outputs":      viewFields(sig.Outputs, false),
		"Keys":         keys,
		"Instructions": sig.Instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering system prompt: %w", err)
	}

	var user strings.Builder
	writeInputSections(&user, sig, inputs)
	user.WriteString("Respond with a JSON object in the following order of fields: ")
	for i, f := range sig.Outputs {
		if i > 0 {
			user.WriteString(", then ")
		}
		user.WriteString("`" + f.Name + "`" + formatHint(f))
	}
	user.WriteString(".")

	return []llm.Message{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(user.String()),
	}, nil
}

// Parse implements Adapter
func (a JSONAdapter) Parse(sig signature.Signature, completion string) (map[string]any, error) {
	text := llm.ExtractJSONFromResponse(llm.RemoveBlocks(completion, "think"))

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		field := ""
		if len(sig.Outputs) > 0 {
			field = sig.Outputs[0].Name
		}
		return nil, &ParseError{Adapter: a.Name(), Field: field, Raw: completion, Err: err}
	}

	out := make(map[string]any, len(sig.Outputs))
	for _, f := range sig.Outputs {
		v, ok := obj[f.Name]
		if !ok {
			return nil, &ParseError{Adapter: a.Name(), Field: f.Name, Raw: completion, Err: ErrMissingField}
		}
		c, err := coerceValue(f, v)
		if err != nil {
			return nil, &ParseError{Adapter: a.Name(), Field: f.Name, Raw: completion, Err: err}
		}
		out[f.Name] = c
	}
	return out, nil
}
