package tiers

import (
	"context"
	"log/slog"

	"github.com/quanterra/finassist/config"
)

// KB answers directly from the knowledge base. It never calls a model:
// the top match either clears the score bar or the tier declines.
type KB struct {
	cfg config.KBConfig
	log *slog.Logger
}

// NewKB creates the tier-1 generator.
func NewKB(cfg config.KBConfig, log *slog.Logger) *KB {
	return &KB{cfg: cfg, log: log}
}

// Generate returns the curated answer from the best match. Below the
// minimum score the response is empty so the router's fallback applies.
func (k *KB) Generate(_ context.Context, req Request) (Response, error) {
	if len(req.Matches) == 0 {
		return Response{Tier: 1}, nil
	}

	top := req.Matches[0]
	if top.Score < k.cfg.MinScore {
		k.log.Debug("kb match below minimum score", "score", top.Score, "min", k.cfg.MinScore)
		return Response{Tier: 1}, nil
	}

	text := top.Metadata["output"]
	if text == "" {
		text = top.Text
	}

	confidence := top.Score + k.cfg.ConfidenceBoost
	if confidence > 1.0 {
		confidence = 1.0
	}

	return Response{
		Text:       text,
		Confidence: confidence,
		Tier:       1,
		Metadata:   map[string]string{"match_id": top.ID, "source": "knowledge_base"},
	}, nil
}
