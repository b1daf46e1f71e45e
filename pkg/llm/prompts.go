package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// promptFuncs are available to every prompt template
var promptFuncs = template.FuncMap{
	"join":  strings.Join,
	"add":   func(a, b int) int { return a + b },
	"quote": func(s string) string { return "`" + s + "`" },
}

// PromptTemplate represents a prompt template.
// It uses Go's text/template syntax for placeholders.
type PromptTemplate struct {
	tmpl *template.Template
}

// NewPromptTemplate parses a prompt template
func NewPromptTemplate(text string) (PromptTemplate, error) {
	tmpl, err := template.New("prompt").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("invalid prompt template: %w", err)
	}
	return PromptTemplate{tmpl: tmpl}, nil
}

// MustPromptTemplate is like NewPromptTemplate but panics on a malformed template.
// It is meant for templates defined at package level.
func MustPromptTemplate(text string) PromptTemplate {
	pt, err := NewPromptTemplate(text)
	if err != nil {
		panic(err)
	}
	return pt
}

// Render fills the template with the provided data
func (pt PromptTemplate) Render(data any) (string, error) {
	if pt.tmpl == nil {
		return "", fmt.Errorf("prompt template not initialized")
	}
	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
