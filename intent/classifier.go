// Package intent assigns a best-effort intent label and confidence from
// lexical cues, and pairs it with similarity matches from the knowledge
// base.
package intent

import (
	"strings"

	"github.com/quanterra/finassist/config"
)

// Unknown is the intent returned when no keyword matches. It is a valid
// label, not an error.
const Unknown = "unknown"

type intentEntry struct {
	name     string
	keywords []string
}

// Classifier scores intents by keyword containment. Intents are evaluated
// in configuration order; ties break toward the earliest entry, which
// keeps classification deterministic.
type Classifier struct {
	intents    []intentEntry
	categories []config.IntentCategory
}

// NewClassifier builds a classifier from the configured keyword tables.
// Keywords are stored lowercased once so Classify only lowercases the
// query.
func NewClassifier(cfg config.IntentConfig) *Classifier {
	intents := make([]intentEntry, 0, len(cfg.Intents))
	for _, in := range cfg.Intents {
		keywords := make([]string, len(in.Keywords))
		for i, k := range in.Keywords {
			keywords[i] = strings.ToLower(k)
		}
		intents = append(intents, intentEntry{name: in.Name, keywords: keywords})
	}
	return &Classifier{intents: intents, categories: cfg.Categories}
}

// Classify returns the best-scoring intent and its confidence in [0,1].
// Keywords match by substring containment against the lowercased text, so
// multi-word keywords like "not satisfied" work. Score is the fraction of
// an intent's keywords present; ("unknown", 0) when nothing matches.
func (c *Classifier) Classify(text string) (string, float64) {
	lower := strings.ToLower(text)

	best := Unknown
	bestScore := 0.0

	for _, in := range c.intents {
		matches := 0
		for _, keyword := range in.keywords {
			if strings.Contains(lower, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(in.keywords))
		if score > bestScore {
			best = in.name
			bestScore = score
		}
	}

	return best, bestScore
}

// Category returns the category claiming the intent, or "unknown".
func (c *Classifier) Category(intent string) string {
	for _, cat := range c.categories {
		for _, name := range cat.Intents {
			if name == intent {
				return cat.Name
			}
		}
	}
	return Unknown
}
