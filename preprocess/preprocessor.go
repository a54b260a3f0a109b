// Package preprocess turns raw user text into validated, PII-masked,
// normalized input with per-session conversational context.
package preprocess

import (
	"fmt"
	"log/slog"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/pii"
)

// PreprocessedInput is the immutable result of the preprocessing stage.
// It is created once per request and never mutated afterwards.
type PreprocessedInput struct {
	OriginalText   string
	SanitizedText  string
	NormalizedText string
	DetectedPII    []pii.Entity
	Context        ContextInfo
	IsValid        bool
	ErrorCodes     []string
	ErrorMessages  []string
}

// Preprocessor sequences validation, PII masking, normalization and
// context extraction.
type Preprocessor struct {
	validator  *InputValidator
	filter     *pii.Filter
	normalizer *TextNormalizer
	contexts   *ContextExtractor
}

// NewPreprocessor wires the preprocessing stages from one config.
func NewPreprocessor(cfg *config.Config) (*Preprocessor, error) {
	validator, err := NewInputValidator(cfg.Validation)
	if err != nil {
		return nil, fmt.Errorf("create input validator: %w", err)
	}
	filter, err := pii.NewFilter(cfg.PIIPatterns)
	if err != nil {
		return nil, fmt.Errorf("create pii filter: %w", err)
	}
	return &Preprocessor{
		validator:  validator,
		filter:     filter,
		normalizer: NewTextNormalizer(cfg.Normalization),
		contexts:   NewContextExtractor(cfg.Context),
	}, nil
}

// Process runs the full preprocessing pass. Validation failures do not
// short-circuit masking or normalization: even rejected text is sanitized
// so nothing downstream (logs included) ever sees raw PII.
func (p *Preprocessor) Process(text, sessionID string) PreprocessedInput {
	validation := p.validator.Validate(text)

	sanitized, entities := p.filter.Sanitize(text)
	if len(entities) > 0 {
		slog.Info("pii masked",
			"session_id", sessionID,
			"entities", len(entities))
	}

	normalized := p.normalizer.Normalize(sanitized)
	contextInfo := p.contexts.Extract(normalized, sessionID)

	result := PreprocessedInput{
		OriginalText:   text,
		SanitizedText:  sanitized,
		NormalizedText: normalized,
		DetectedPII:    entities,
		Context:        contextInfo,
		IsValid:        validation.IsValid,
	}
	if !validation.IsValid {
		result.ErrorCodes = []string{validation.ErrorCode}
		result.ErrorMessages = []string{validation.ErrorMessage}
	}
	return result
}

// Contexts exposes the session state owner so the orchestrator can record
// the classified intent after routing.
func (p *Preprocessor) Contexts() *ContextExtractor {
	return p.contexts
}
