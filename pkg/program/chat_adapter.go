package program

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

const completedMarker = "completed"

var (
	sectionHeader = regexp.MustCompile(`\[\[ ## (\w+) ## \]\]`)

	chatSystemTemplate = llm.MustPromptTemplate(`Your input fields are:
{{range $i, $f := .Inputs}}{{add $i 1}}. {{quote $f.Name}} ({{$f.Type}}){{if $f.Desc}}: {{$f.Desc}}{{end}}
{{end}}Your output fields are:
{{range $i, $f := .Outputs}}{{add $i 1}}. {{quote $f.Name}} ({{$f.Type}}){{if $f.Desc}}: {{$f.Desc}}{{end}}
{{end}}
All interactions will be structured in the following way, with the appropriate values filled in.

{{range .Inputs}}[[ ## {{.Name}} ## ]]
{{printf "{%s}" .Name}}

{{end}}{{range .Outputs}}[[ ## {{.Name}} ## ]]
{{printf "{%s}" .Name}}{{if .Hint}}        # note: the value you produce {{.Hint}}{{end}}

{{end}}[[ ## completed ## ]]

In adhering to this structure, your objective is: 
        {{.Instructions}}`)
)

// ChatAdapter lays out fields as [[ ## name ## ]] sections
type ChatAdapter struct{}

// Name implements Adapter
func (ChatAdapter) Name() string { return "chat" }

// ResponseFormat implements Adapter. Plain text is requested.
func (ChatAdapter) ResponseFormat(signature.Signature) *llm.ResponseFormat { return nil }

// Format implements Adapter
func (ChatAdapter) Format(sig signature.Signature, inputs Inputs) ([]llm.Message, error) {
	system, err := chatSystemTemplate.Render(map[string]any{
		"Inputs":       viewFields(sig.Inputs, false),
		"Outputs":      viewFields(sig.Outputs, true),
		"Instructions": sig.Instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering system prompt: %w", err)
	}

	var user strings.Builder
	writeInputSections(&user, sig, inputs)
	user.WriteString("Respond with the corresponding output fields, starting with the field ")
	for i, f := range sig.Outputs {
		if i > 0 {
			user.WriteString(", then ")
		}
		user.WriteString("`[[ ## " + f.Name + " ## ]]`" + formatHint(f))
	}
	user.WriteString(", and then ending with the marker for `[[ ## completed ## ]]`.")

	return []llm.Message{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(user.String()),
	}, nil
}

func writeInputSections(sb *strings.Builder, sig signature.Signature, inputs Inputs) {
	for _, f := range sig.Inputs {
		sb.WriteString("[[ ## " + f.Name + " ## ]]\n")
		sb.WriteString(FormatValue(inputs[f.Name]))
		sb.WriteString("\n\n")
	}
}

// Parse implements Adapter. The first section of each name wins and
// <think> blocks are ignored.
func (a ChatAdapter) Parse(sig signature.Signature, completion string) (map[string]any, error) {
	text := llm.RemoveBlocks(completion, "think")
	sections := splitSections(text)

	out := make(map[string]any, len(sig.Outputs))
	for _, f := range sig.Outputs {
		raw, ok := sections[f.Name]
		if !ok {
			return nil, &ParseError{Adapter: a.Name(), Field: f.Name, Raw: completion, Err: ErrMissingField}
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, &ParseError{Adapter: a.Name(), Field: f.Name, Raw: completion, Err: err}
		}
		out[f.Name] = v
	}
	return out, nil
}

func splitSections(text string) map[string]string {
	sections := map[string]string{}
	matches := sectionHeader.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		name := text[m[2]:m[3]]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if name == completedMarker {
			continue
		}
		if _, seen := sections[name]; seen {
			continue
		}
		sections[name] = strings.TrimSpace(text[m[1]:end])
	}
	return sections
}
