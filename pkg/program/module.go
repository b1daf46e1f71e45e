package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

var (
	// ErrNoClient is returned when a module is run without a language model client.
	ErrNoClient = errors.New("program: no language model client configured")
	// ErrMissingInput is returned when an input field of the signature has no value.
	ErrMissingInput = errors.New("program: missing input field")
	// ErrMissingField is the cause of a ParseError when an output field is absent.
	ErrMissingField = errors.New("output field not found in completion")
	// ErrCandidateCount is returned when a comparison gets the wrong number of candidates.
	ErrCandidateCount = errors.New("program: wrong number of candidate completions")
)

// ParseError reports a completion whose output fields could not be extracted
type ParseError struct {
	Adapter string
	Field   string
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s adapter: cannot parse field %q: %v", e.Adapter, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Inputs are the values of a module's input fields, keyed by field name
type Inputs map[string]any

// Module is anything that maps inputs to a prediction
type Module interface {
	Forward(ctx context.Context, inputs Inputs) (*Prediction, error)
}

// ModuleFunc adapts a function to the Module interface
type ModuleFunc func(ctx context.Context, inputs Inputs) (*Prediction, error)

// Forward implements Module
func (f ModuleFunc) Forward(ctx context.Context, inputs Inputs) (*Prediction, error) {
	return f(ctx, inputs)
}

// Config is shared by all modules of a program
type Config struct {
	Client llm.Client
	Logger logging.Logger
	// Temperature and MaxTokens are sent with every request when set.
	Temperature *float32
	MaxTokens   *int
	// Adapter renders prompts and parses completions, ChatAdapter by default.
	Adapter Adapter
}

func (c Config) logger() logging.Logger {
	return logging.OrNoOp(c.Logger)
}

func (c Config) adapter() Adapter {
	if c.Adapter == nil {
		return ChatAdapter{}
	}
	return c.Adapter
}

func checkInputs(sig signature.Signature, inputs Inputs) error {
	for _, f := range sig.Inputs {
		if _, ok := inputs[f.Name]; !ok {
			return fmt.Errorf("%w %q", ErrMissingInput, f.Name)
		}
	}
	return nil
}
