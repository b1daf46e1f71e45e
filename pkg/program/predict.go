package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

// Predict makes one model call per Forward and parses the outputs of its signature
type Predict struct {
	cfg Config
	sig signature.Signature
}

// NewPredict creates a predictor for the signature
func NewPredict(cfg Config, sig signature.Signature) *Predict {
	return &Predict{cfg: cfg, sig: sig}
}

// Signature returns the signature the predictor fills
func (p *Predict) Signature() signature.Signature {
	return p.sig
}

// Forward implements Module. When the default chat adapter cannot parse the
// completion the call is retried once with the JSON adapter.
func (p *Predict) Forward(ctx context.Context, inputs Inputs) (*Prediction, error) {
	if p.cfg.Client == nil {
		return nil, ErrNoClient
	}
	if err := checkInputs(p.sig, inputs); err != nil {
		return nil, err
	}

	adapter := p.cfg.adapter()
	fields, usage, err := p.call(ctx, adapter, inputs)

	var perr *ParseError
	if _, isChat := adapter.(ChatAdapter); isChat && errors.As(err, &perr) {
		p.cfg.logger().Warn("completion did not follow the field layout, retrying with json adapter",
			"signature", p.sig.String(), "field", perr.Field, "error", perr.Err)
		var retryUsage llm.Usage
		fields, retryUsage, err = p.call(ctx, JSONAdapter{}, inputs)
		usage = usage.Add(retryUsage)
	}
	if err != nil {
		return nil, err
	}

	pred := NewPrediction(p.sig.OutputNames(), fields)
	pred.Usage = usage
	return pred, nil
}

func (p *Predict) call(ctx context.Context, adapter Adapter, inputs Inputs) (map[string]any, llm.Usage, error) {
	logger := p.cfg.logger()

	msgs, err := adapter.Format(p.sig, inputs)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("%s adapter: %w", adapter.Name(), err)
	}

	req := llm.ChatRequest{
		Model:          p.cfg.Client.GetModelInfo().Name,
		Messages:       msgs,
		Temperature:    p.cfg.Temperature,
		MaxTokens:      p.cfg.MaxTokens,
		ResponseFormat: adapter.ResponseFormat(p.sig),
	}
	for _, m := range msgs {
		logger.Debug("prompt message", "adapter", adapter.Name(), "role", m.Role, "content", m.Content)
	}

	resp, err := p.cfg.Client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, llm.Usage{}, err
	}
	if resp.Truncated() {
		logger.Warn("completion truncated by the token limit", "signature", p.sig.String())
	}
	logger.Debug("completion", "adapter", adapter.Name(), "content", resp.Text())

	fields, err := adapter.Parse(p.sig, resp.Text())
	return fields, resp.Usage, err
}
