package mock

import (
	"regexp"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

var outputFieldRe = regexp.MustCompile("(?m)^\\d+\\. `(\\w+)` \\(([^)]+)\\)")

// FieldAnswer builds a well formed [[ ## field ## ]] completion for every
// output field listed in the system prompt of req. Fields in overrides get
// the given text, the rest a placeholder of their type.
func FieldAnswer(req llm.ChatRequest, overrides map[string]string) string {
	system, _ := llm.SplitSystem(req.Messages)
	_, outputs, _ := strings.Cut(system, "Your output fields are:")
	outputs, _, _ = strings.Cut(outputs, "\n\n")

	var sb strings.Builder
	for _, m := range outputFieldRe.FindAllStringSubmatch(outputs, -1) {
		name, typ := m[1], m[2]
		value, ok := overrides[name]
		if !ok {
			value = placeholder(name, typ)
		}
		sb.WriteString("[[ ## " + name + " ## ]]\n" + value + "\n\n")
	}
	sb.WriteString("[[ ## completed ## ]]")
	return sb.String()
}

func placeholder(name, typ string) string {
	switch {
	case typ == "int":
		return "5"
	case typ == "float":
		return "0.5"
	case typ == "bool":
		return "True"
	case strings.HasPrefix(typ, "list"):
		return "[]"
	case strings.HasPrefix(typ, "dict"):
		return "{}"
	default:
		return "text for " + name
	}
}

// WithFieldResponder answers every request with FieldAnswer
func (m *Client) WithFieldResponder(overrides map[string]string) *Client {
	return m.WithTextResponder(func(req llm.ChatRequest) string {
		return FieldAnswer(req, overrides)
	})
}
