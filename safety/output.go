package safety

import (
	"strings"

	"github.com/quanterra/finassist/config"
)

// ValidationResult is the verdict of the output validator. When the text
// fails, Response carries the configured fallback instead.
type ValidationResult struct {
	IsValid  bool
	Issues   []string
	Response string
}

// OutputValidator is the final gate on generated text: length bounds and
// generic-response rejection, then a re-run of safety and compliance.
type OutputValidator struct {
	cfg        config.OutputValidationConfig
	fallback   string
	safety     *RuleBasedSafety
	compliance *ComplianceChecker
}

// NewOutputValidator creates the validator. The safety and compliance
// checkers are shared with the layer so toggles apply uniformly.
func NewOutputValidator(cfg config.OutputValidationConfig, fallback string, s *RuleBasedSafety, c *ComplianceChecker) *OutputValidator {
	return &OutputValidator{cfg: cfg, fallback: fallback, safety: s, compliance: c}
}

// Validate checks the text. A failing result substitutes the fallback
// response, never a redacted variant of the original.
func (v *OutputValidator) Validate(text string) ValidationResult {
	var issues []string

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		issues = append(issues, "Empty response")
	} else {
		if len(text) < v.cfg.MinLength {
			issues = append(issues, "Response too short")
		}
		if len(text) > v.cfg.MaxLength {
			issues = append(issues, "Response too long")
		}
		lower := strings.ToLower(trimmed)
		for _, phrase := range v.cfg.BlockGeneric {
			if strings.Contains(lower, phrase) && len(trimmed) < 50 {
				issues = append(issues, "Generic unhelpful response")
				break
			}
		}
	}

	if sr := v.safety.Check(text); !sr.IsSafe {
		issues = append(issues, sr.Violations...)
	}
	if cr := v.compliance.Check(text); !cr.IsCompliant {
		issues = append(issues, cr.Violations...)
	}

	if len(issues) > 0 {
		return ValidationResult{Issues: issues, Response: v.fallback}
	}
	return ValidationResult{IsValid: true, Response: text}
}
