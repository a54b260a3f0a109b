package backends

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// WeaviateSearcher runs near-vector search against the knowledge-base
// class. Certainty is used as the similarity score: unlike distance it is
// always in [0, 1] regardless of the configured metric.
type WeaviateSearcher struct {
	client    *weaviate.Client
	embedder  Embedder
	className string
	log       *slog.Logger
}

// NewWeaviateSearcher connects to the configured Weaviate instance.
func NewWeaviateSearcher(cfg config.WeaviateConfig, embedder Embedder, log *slog.Logger) (*WeaviateSearcher, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return &WeaviateSearcher{
		client:    client,
		embedder:  embedder,
		className: cfg.ClassName,
		log:       log,
	}, nil
}

// Search embeds the query and returns the topK nearest entries at or above
// scoreThreshold, ordered by descending score.
func (w *WeaviateSearcher) Search(ctx context.Context, query string, topK int, scoreThreshold float64) ([]intent.Match, error) {
	vector, err := w.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector).
		WithCertainty(float32(scoreThreshold))

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "instruction"},
		{Name: "output"},
		{Name: "intent"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", result.Errors[0].Message)
	}

	matches := parseMatches(result.Data, w.className)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	w.log.Debug("vector search complete", "query_len", len(query), "matches", len(matches))
	return matches, nil
}

func parseMatches(data map[string]models.JSONObject, className string) []intent.Match {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[className].([]interface{})
	if !ok {
		return nil
	}

	matches := make([]intent.Match, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		m := intent.Match{Metadata: map[string]string{}}
		if text, ok := obj["text"].(string); ok {
			m.Text = text
		}
		for _, key := range []string{"instruction", "output", "intent"} {
			if v, ok := obj[key].(string); ok && v != "" {
				m.Metadata[key] = v
			}
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if id, ok := additional["id"].(string); ok {
				m.ID = id
			}
			if certainty, ok := additional["certainty"].(float64); ok {
				m.Score = certainty
			}
		}
		matches = append(matches, m)
	}
	return matches
}
