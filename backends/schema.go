package backends

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// knowledgeBaseSchema describes the KB class. Vectors come from the
// embedder, never from a Weaviate vectorizer module.
func knowledgeBaseSchema(className string) *models.Class {
	return &models.Class{
		Class:       className,
		Description: "Curated banking knowledge-base entries with training metadata",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:        "text",
				DataType:    []string{"text"},
				Description: "Canonical customer question",
			},
			{
				Name:        "instruction",
				DataType:    []string{"text"},
				Description: "Training instruction for tier-2 generation",
			},
			{
				Name:        "output",
				DataType:    []string{"text"},
				Description: "Curated answer served by tier 1",
			},
			{
				Name:        "intent",
				DataType:    []string{"text"},
				Description: "Intent label assigned at curation time",
			},
		},
	}
}

// EnsureSchema creates the knowledge-base class when it does not exist
// yet. Existing classes are left untouched.
func (w *WeaviateSearcher) EnsureSchema(ctx context.Context) error {
	_, err := w.client.Schema().ClassGetter().WithClassName(w.className).Do(ctx)
	if err == nil {
		w.log.Debug("knowledge base class already exists", "class", w.className)
		return nil
	}

	w.log.Info("creating knowledge base class", "class", w.className)
	if err := w.client.Schema().ClassCreator().WithClass(knowledgeBaseSchema(w.className)).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", w.className, err)
	}
	return nil
}
