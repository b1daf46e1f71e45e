package program

import (
	"context"

	"github.com/inercia/go-llm-programs/pkg/signature"
)

const (
	// ReasoningField is the output prepended by ChainOfThought.
	ReasoningField = "reasoning"
	// RationaleField is the output prepended by MultiChainComparison.
	RationaleField = "rationale"
)

// ChainOfThought is a Predict whose signature first asks for step by step reasoning
type ChainOfThought struct {
	predict *Predict
}

// NewChainOfThought extends sig with a leading reasoning output
func NewChainOfThought(cfg Config, sig signature.Signature) *ChainOfThought {
	extended := sig.PrependOutput(signature.Field{
		Name:   ReasoningField,
		Type:   signature.TypeString,
		Prefix: "Let's think step by step in order to",
	})
	return &ChainOfThought{predict: NewPredict(cfg, extended)}
}

// Signature returns the extended signature, reasoning included
func (c *ChainOfThought) Signature() signature.Signature {
	return c.predict.Signature()
}

// Forward implements Module
func (c *ChainOfThought) Forward(ctx context.Context, inputs Inputs) (*Prediction, error) {
	return c.predict.Forward(ctx, inputs)
}
