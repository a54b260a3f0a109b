package intent

import (
	"context"
	"log/slog"

	"github.com/quanterra/finassist/config"
)

// Match is one similarity-search hit from the knowledge base. Metadata
// carries at least "instruction" and "output" when the hit comes from the
// KB dataset, and "intent" when available.
type Match struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]string
}

// Searcher is the external similarity-search contract. Implementations
// embed the query and search the vector backend.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, scoreThreshold float64) ([]Match, error)
}

// Result is the combined intent analysis for one query.
type Result struct {
	Intent     string
	Confidence float64
	Category   string
	Matches    []Match
}

// Engine combines keyword classification with vector similarity search.
type Engine struct {
	classifier *Classifier
	searcher   Searcher
	topK       int
	threshold  float64
}

// NewEngine creates an engine. searcher may be nil, in which case results
// carry no matches and routing falls through to the confidence rules.
func NewEngine(cfg *config.Config, searcher Searcher) *Engine {
	return &Engine{
		classifier: NewClassifier(cfg.Intent),
		searcher:   searcher,
		topK:       cfg.Search.TopK,
		threshold:  cfg.Search.ScoreThreshold,
	}
}

// Analyze classifies the query and fetches similar KB entries. A search
// failure degrades to an empty match list; it never fails the request.
func (e *Engine) Analyze(ctx context.Context, query string) Result {
	label, confidence := e.classifier.Classify(query)
	category := e.classifier.Category(label)

	var matches []Match
	if e.searcher != nil {
		var err error
		matches, err = e.searcher.Search(ctx, query, e.topK, e.threshold)
		if err != nil {
			slog.Warn("similarity search failed, continuing without matches",
				"error", err)
			matches = nil
		}
	}

	return Result{
		Intent:     label,
		Confidence: confidence,
		Category:   category,
		Matches:    matches,
	}
}
