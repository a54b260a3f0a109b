// Package vectorstore provides an in-memory cosine-similarity store used
// when Weaviate is unavailable, and a bounded embedding cache.
package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/quanterra/finassist/intent"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Entry is one stored knowledge-base item.
type Entry struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// Memory is a brute-force cosine-similarity store. It holds the whole
// knowledge base in memory, which is fine at the intended scale of a few
// thousand curated entries.
type Memory struct {
	mu       sync.RWMutex
	entries  []Entry
	embedder Embedder
}

// NewMemory creates an empty store backed by the given embedder.
func NewMemory(embedder Embedder) *Memory {
	return &Memory{embedder: embedder}
}

// Add stores entries. Vectors must all share one dimensionality.
func (m *Memory) Add(entries ...Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Search embeds the query and returns the topK entries with cosine
// similarity at or above scoreThreshold, ordered by descending score.
func (m *Memory) Search(ctx context.Context, query string, topK int, scoreThreshold float64) ([]intent.Match, error) {
	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]intent.Match, 0, len(m.entries))
	for _, e := range m.entries {
		score := cosine(vector, e.Vector)
		if score < scoreThreshold {
			continue
		}
		matches = append(matches, intent.Match{
			ID:       e.ID,
			Score:    score,
			Text:     e.Text,
			Metadata: e.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
