package safety

import (
	"log/slog"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/metrics"
)

// Verdict is the combined outcome of all three checkers over one response.
type Verdict struct {
	IsSafe        bool
	FinalResponse string
	Safety        SafetyResult
	Compliance    ComplianceResult
	Validation    ValidationResult
}

// Layer composes rule-based safety, compliance and output validation.
// A response passes only when all three agree.
type Layer struct {
	safety     *RuleBasedSafety
	compliance *ComplianceChecker
	validator  *OutputValidator
	fallback   string
	log        *slog.Logger
}

// NewLayer builds the full safety stack from config.
func NewLayer(cfg config.SafetyConfig, log *slog.Logger) (*Layer, error) {
	rules := NewRuleBasedSafety(cfg.SafetyEnabled)
	compliance, err := NewComplianceChecker(cfg)
	if err != nil {
		return nil, err
	}
	validator := NewOutputValidator(cfg.Output, cfg.FallbackMessage, rules, compliance)
	return &Layer{
		safety:     rules,
		compliance: compliance,
		validator:  validator,
		fallback:   cfg.FallbackMessage,
		log:        log,
	}, nil
}

// Check runs the text through safety, compliance and output validation.
// The final response is the original text only when every check passes;
// otherwise it is the fallback, whole.
func (l *Layer) Check(text string) Verdict {
	sr := l.safety.Check(text)
	cr := l.compliance.Check(text)
	vr := l.validator.Validate(text)

	safe := sr.IsSafe && cr.IsCompliant && vr.IsValid
	final := text
	if !safe {
		final = l.fallback
		l.log.Warn("response replaced by safety layer",
			"safety_violations", sr.Violations,
			"compliance_violations", cr.Violations,
			"validation_issues", vr.Issues)
		metrics.SafetyVerdicts.WithLabelValues("blocked").Inc()
	} else {
		metrics.SafetyVerdicts.WithLabelValues("safe").Inc()
	}

	return Verdict{
		IsSafe:        safe,
		FinalResponse: final,
		Safety:        sr,
		Compliance:    cr,
		Validation:    vr,
	}
}

// AddDisclaimers exposes the compliance disclaimer pass for callers that
// post-process safe responses.
func (l *Layer) AddDisclaimers(text string) string {
	return l.compliance.AddDisclaimers(text)
}
