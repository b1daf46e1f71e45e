// Package tools implements the callable capabilities offered to tool-using
// programs such as ReAct: a small Tool interface, a generic adapter turning
// typed Go functions into tools, and the built-in letter counting and
// arithmetic tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
)

// Error codes carried by ToolError
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// Tool is a named function a language model can ask to run
type Tool interface {
	// Name returns the identifier the model uses to select the tool.
	Name() string
	// Description tells the model what the tool does.
	Description() string
	// Schema returns the JSON schema of the tool arguments.
	Schema() map[string]any
	// Call runs the tool with arguments decoded from the model's JSON.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution
type ToolError struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

// Func adapts a typed function to the Tool interface. The argument schema
// is reflected from A, and the model's arguments are decoded into A through
// JSON.
type Func[A any, R any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args A) (R, error)
	logger      logging.Logger
}

// NewFunc creates a tool from fn. It panics if no schema can be reflected
// from A, which is a programming error.
func NewFunc[A any, R any](name, description string, fn func(ctx context.Context, args A) (R, error)) *Func[A, R] {
	var zero A
	schema, err := llm.SchemaFromStructAsMap(zero)
	if err != nil {
		panic(fmt.Sprintf("tool %s: cannot reflect argument schema: %v", name, err))
	}
	return &Func[A, R]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
		logger:      logging.NoOpLogger{},
	}
}

// WithLogger sets the logger used to report calls
func (t *Func[A, R]) WithLogger(logger logging.Logger) *Func[A, R] {
	t.logger = logging.OrNoOp(logger)
	return t
}

// Name implements Tool
func (t *Func[A, R]) Name() string { return t.name }

// Description implements Tool
func (t *Func[A, R]) Description() string { return t.description }

// Schema implements Tool
func (t *Func[A, R]) Schema() map[string]any { return t.schema }

// Call implements Tool. Arguments that do not decode into A, or that miss a
// required property, fail with a VALIDATION_ERROR; errors returned by the
// function are reported as EXECUTION_ERROR unless they already are a ToolError.
func (t *Func[A, R]) Call(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	if missing := missingRequired(t.schema, args); missing != "" {
		t.logger.Warn("tool call validation failed", "tool", t.name, "missing", missing)
		return nil, &ToolError{Tool: t.name, Code: CodeValidation, Message: fmt.Sprintf("missing required argument %q", missing)}
	}

	var typed A
	raw, err := json.Marshal(args)
	if err == nil {
		err = json.Unmarshal(raw, &typed)
	}
	if err != nil {
		t.logger.Warn("tool call validation failed", "tool", t.name, "error", err)
		return nil, &ToolError{Tool: t.name, Code: CodeValidation, Message: fmt.Sprintf("invalid arguments: %v", err)}
	}

	result, err := t.fn(ctx, typed)
	if err != nil {
		t.logger.Error("tool call failed", "tool", t.name, "error", err)
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Code: CodeExecution, Message: err.Error()}
	}

	t.logger.Info("tool call succeeded", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func missingRequired(schema map[string]any, args map[string]any) string {
	required, _ := schema["required"].([]any)
	for _, r := range required {
		name, ok := r.(string)
		if !ok {
			continue
		}
		if _, present := args[name]; !present {
			return name
		}
	}
	return ""
}
