// Package safety is the final defense before response delivery: rule-based
// safety checks, domain compliance checks and output validation, with a
// guaranteed-compliant fallback.
package safety

import (
	"regexp"
	"strings"
)

// SafetyResult is the verdict of the rule-based checker.
type SafetyResult struct {
	IsSafe     bool
	Violations []string
	Severity   string
	Category   string
}

// Phrase patterns the generated text must never contain. These are fixed
// policy, not configuration: relaxing them is a compliance decision, not
// a deployment one.
var (
	financialAdvicePatterns = compileAll([]string{
		`you should invest`,
		`i recommend (buying|investing)`,
		`guaranteed returns?`,
		`sure profit`,
		`best investment`,
		`you must buy`,
	})

	legalAdvicePatterns = compileAll([]string{
		`you should sue`,
		`file a (case|lawsuit)`,
		`legal action against`,
		`you have the right to`,
	})

	fraudPatterns = compileAll([]string{
		`send.*password`,
		`share.*pin`,
		`transfer.*money.*urgent`,
		`verify.*account.*details`,
		`winner.*lottery`,
	})

	outputPIIPatterns = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"Account number", regexp.MustCompile(`\b\d{9,18}\b`)},
		{"PAN card", regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)},
		{"Phone", regexp.MustCompile(`\b[6-9]\d{9}\b`)},
		{"Email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	}

	distressKeywords = []string{
		"suicide", "kill myself", "end my life",
		"no way out", "give up", "hopeless",
	}
)

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// RuleBasedSafety flags financial/legal advice phrasing, PII appearing in
// output, distress indicators and fraud phrasing.
type RuleBasedSafety struct {
	enabled bool
}

// NewRuleBasedSafety creates the checker.
func NewRuleBasedSafety(enabled bool) *RuleBasedSafety {
	return &RuleBasedSafety{enabled: enabled}
}

// Check inspects generated text. Financial/legal advice, PII leakage and
// fraud phrasing are critical; distress content is high.
func (r *RuleBasedSafety) Check(text string) SafetyResult {
	if !r.enabled {
		return SafetyResult{IsSafe: true, Severity: "none", Category: "none"}
	}

	lower := strings.ToLower(text)
	var violations []string
	maxSeverity := "low"

	if matchesAny(financialAdvicePatterns, lower) {
		violations = append(violations, "Provides financial advice")
		maxSeverity = "critical"
	}

	if matchesAny(legalAdvicePatterns, lower) {
		violations = append(violations, "Provides legal advice")
		maxSeverity = "critical"
	}

	for _, p := range outputPIIPatterns {
		if p.re.MatchString(text) {
			violations = append(violations, "Contains "+p.name)
			maxSeverity = "critical"
		}
	}

	for _, keyword := range distressKeywords {
		if strings.Contains(lower, keyword) {
			violations = append(violations, "Contains distress indicators")
			if maxSeverity != "critical" {
				maxSeverity = "high"
			}
			break
		}
	}

	if matchesAny(fraudPatterns, lower) {
		violations = append(violations, "Contains fraud indicators")
		maxSeverity = "critical"
	}

	if len(violations) == 0 {
		return SafetyResult{IsSafe: true, Severity: "none", Category: "none"}
	}
	return SafetyResult{
		Violations: violations,
		Severity:   maxSeverity,
		Category:   "S6",
	}
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
