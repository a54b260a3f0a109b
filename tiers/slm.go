package tiers

import (
	"context"
	"log/slog"

	"github.com/quanterra/finassist/config"
)

// bfsiRedirect is returned whenever tier 2 cannot produce an answer. It
// never exposes the underlying failure to the customer.
const bfsiRedirect = "I cannot provide specific figures here. For your exact details, please log in to our mobile app or internet banking, or contact customer care."

const genericInstruction = "Answer the customer's banking question clearly and concisely without quoting specific account figures."

// SLMClient is the external fine-tuned model contract.
type SLMClient interface {
	Complete(ctx context.Context, instruction, query string) (string, error)
}

// SLM is the tier-2 generator backed by a fine-tuned model. Confidence is
// fixed: the model reports no usable score of its own.
type SLM struct {
	cfg    config.SLMConfig
	client SLMClient
	log    *slog.Logger
}

// NewSLM creates the tier-2 generator.
func NewSLM(cfg config.SLMConfig, client SLMClient, log *slog.Logger) *SLM {
	return &SLM{cfg: cfg, client: client, log: log}
}

// Generate prompts the model with the most specific instruction available:
// the top match's training instruction, else the per-intent table, else a
// generic one. Any model failure degrades to the standard redirect.
func (s *SLM) Generate(ctx context.Context, req Request) (Response, error) {
	instruction := ""
	if len(req.Matches) > 0 {
		instruction = req.Matches[0].Metadata["instruction"]
	}
	if instruction == "" {
		instruction = s.cfg.Instructions[req.Intent]
	}
	if instruction == "" {
		instruction = genericInstruction
	}

	text, err := s.client.Complete(ctx, instruction, req.Query)
	if err != nil {
		s.log.Warn("slm generation failed, using redirect", "intent", req.Intent, "error", err)
		text = bfsiRedirect
	}

	return Response{
		Text:       text,
		Confidence: s.cfg.Confidence,
		Tier:       2,
		Metadata:   map[string]string{"source": "fine_tuned_slm"},
	}, nil
}
