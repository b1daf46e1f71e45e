package program

import (
	"context"
	"fmt"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/signature"
)

// MultiChainComparison reads several candidate completions of the same
// signature and produces a single corrected prediction
type MultiChainComparison struct {
	sig     signature.Signature
	m       int
	predict *Predict
}

// NewMultiChainComparison creates a comparator over exactly m candidates
func NewMultiChainComparison(cfg Config, sig signature.Signature, m int) *MultiChainComparison {
	extended := sig
	for i := 1; i <= m; i++ {
		extended = extended.AppendInput(signature.Field{
			Name:   fmt.Sprintf("reasoning_attempt_%d", i),
			Prefix: fmt.Sprintf("Student Attempt #%d:", i),
		})
	}
	extended = extended.PrependOutput(signature.Field{
		Name:   RationaleField,
		Prefix: "Accurate Reasoning: Thank you everyone. Let's think step by step in order to",
	})
	return &MultiChainComparison{sig: sig, m: m, predict: NewPredict(cfg, extended)}
}

// Signature returns the extended signature with attempts and rationale
func (c *MultiChainComparison) Signature() signature.Signature {
	return c.predict.Signature()
}

// Compare asks the model to reconcile the candidates into one answer
func (c *MultiChainComparison) Compare(ctx context.Context, completions []*Prediction, inputs Inputs) (*Prediction, error) {
	if len(completions) != c.m {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCandidateCount, len(completions), c.m)
	}

	outputs := c.sig.OutputNames()
	last := outputs[len(outputs)-1]

	extended := make(Inputs, len(inputs)+c.m)
	for k, v := range inputs {
		extended[k] = v
	}
	for i, comp := range completions {
		rationale := firstLine(comp.Reasoning())
		answer := firstLine(comp.String(last))
		extended[fmt.Sprintf("reasoning_attempt_%d", i+1)] = fmt.Sprintf(
			"«I'm trying to %s I'm not sure but my prediction is %s»", rationale, answer)
	}
	return c.predict.Forward(ctx, extended)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if line, _, ok := strings.Cut(s, "\n"); ok {
		return strings.TrimSpace(line)
	}
	return s
}

// Repeat runs module n times on the same inputs, one call after the other
func Repeat(ctx context.Context, module Module, inputs Inputs, n int) ([]*Prediction, error) {
	preds := make([]*Prediction, 0, n)
	for i := 0; i < n; i++ {
		pred, err := module.Forward(ctx, inputs)
		if err != nil {
			return preds, fmt.Errorf("candidate %d: %w", i+1, err)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}
