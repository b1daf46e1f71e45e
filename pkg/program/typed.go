package program

import (
	"context"
	"fmt"
	"reflect"

	"github.com/inercia/go-llm-programs/pkg/signature"
)

// Typed runs a module whose signature is derived from the In and Out structs
// and converts values at the boundary
type Typed[In any, Out any] struct {
	module Module
	sig    signature.Signature
}

// NewTypedPredict creates a typed Predict
func NewTypedPredict[In any, Out any](cfg Config, instructions string) (*Typed[In, Out], error) {
	sig, err := typedSignature[In, Out](instructions)
	if err != nil {
		return nil, err
	}
	return &Typed[In, Out]{module: NewPredict(cfg, sig), sig: sig}, nil
}

// NewTypedChainOfThought creates a typed ChainOfThought. The reasoning is
// available from the returned prediction.
func NewTypedChainOfThought[In any, Out any](cfg Config, instructions string) (*Typed[In, Out], error) {
	sig, err := typedSignature[In, Out](instructions)
	if err != nil {
		return nil, err
	}
	return &Typed[In, Out]{module: NewChainOfThought(cfg, sig), sig: sig}, nil
}

func typedSignature[In any, Out any](instructions string) (signature.Signature, error) {
	var (
		in  In
		out Out
	)
	return signature.FromStructs(in, out, instructions)
}

// Signature returns the signature derived from In and Out
func (t *Typed[In, Out]) Signature() signature.Signature {
	return t.sig
}

// Call runs the module on in and decodes the outputs into Out
func (t *Typed[In, Out]) Call(ctx context.Context, in In) (Out, *Prediction, error) {
	var out Out

	inputs, err := structInputs(in)
	if err != nil {
		return out, nil, err
	}
	pred, err := t.module.Forward(ctx, inputs)
	if err != nil {
		return out, nil, err
	}
	if err := pred.DecodeAll(&out); err != nil {
		return out, pred, fmt.Errorf("decoding outputs: %w", err)
	}
	return out, pred, nil
}

func structInputs(v any) (Inputs, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil input")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct input, got %s", rv.Kind())
	}

	inputs := Inputs{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name, ok := signature.FieldName(rt.Field(i))
		if !ok {
			continue
		}
		inputs[name] = rv.Field(i).Interface()
	}
	return inputs, nil
}
