package tiers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
)

// RAG is the tier-3 generator: policy-document retrieval with human
// escalation when retrieval is weak or escalation was requested outright.
type RAG struct {
	cfg       config.RAGConfig
	retriever intent.Searcher
	log       *slog.Logger
}

// NewRAG creates the tier-3 generator. A nil retriever disables retrieval
// and every request escalates.
func NewRAG(cfg config.RAGConfig, retriever intent.Searcher, log *slog.Logger) *RAG {
	return &RAG{cfg: cfg, retriever: retriever, log: log}
}

// Generate escalates immediately when asked to, otherwise retrieves policy
// documents and answers from them when the retrieval is strong enough.
func (r *RAG) Generate(ctx context.Context, req Request) (Response, error) {
	if req.ForceEscalation {
		return r.escalate("escalation_requested"), nil
	}
	if !r.cfg.Enabled || r.retriever == nil {
		return r.escalate("rag_disabled"), nil
	}

	docs, err := r.retriever.Search(ctx, req.Query, r.cfg.TopK, r.cfg.ScoreThreshold)
	if err != nil {
		r.log.Warn("rag retrieval failed", "error", err)
		return r.escalate("retrieval_failed"), nil
	}
	if len(docs) == 0 {
		return r.escalate("no_documents"), nil
	}

	var total float64
	for _, d := range docs {
		total += d.Score
	}
	mean := total / float64(len(docs))
	if mean <= r.cfg.AcceptThreshold {
		r.log.Debug("rag mean score below accept threshold", "mean", mean)
		return r.escalate("low_retrieval_score"), nil
	}

	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Text
	}
	text := fmt.Sprintf("Based on our policy documents:\n\n%s\n\nFor more details, please visit our website or contact customer care.",
		strings.Join(parts, "\n\n"))

	return Response{
		Text:       text,
		Confidence: mean,
		Tier:       3,
		Metadata:   map[string]string{"source": "rag", "documents": fmt.Sprintf("%d", len(docs))},
	}, nil
}

func (r *RAG) escalate(reason string) Response {
	return Response{
		Text:       r.cfg.EscalationMessage,
		Confidence: 1.0,
		Tier:       3,
		Metadata:   map[string]string{"source": "human_escalation", "escalation_reason": reason},
	}
}
