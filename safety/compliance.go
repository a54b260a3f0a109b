package safety

import (
	"regexp"
	"sort"
	"strings"

	"github.com/quanterra/finassist/config"
)

// ComplianceResult is the verdict of the compliance checker. Severity is
// the highest configured severity among the violations, "none" when
// compliant.
type ComplianceResult struct {
	IsCompliant bool
	Violations  []string
	Severity    string
}

type prohibitedRule struct {
	re       *regexp.Regexp
	message  string
	severity string
}

var severityRank = map[string]int{"low": 1, "medium": 2, "high": 3, "critical": 4}

func higherSeverity(current, candidate string) string {
	if severityRank[candidate] > severityRank[current] {
		return candidate
	}
	return current
}

// ComplianceChecker enforces domain policy on generated text: no specific
// monetary amounts or rates, no digit runs resembling account numbers, no
// harmful keywords.
type ComplianceChecker struct {
	enabled     bool
	prohibited  []prohibitedRule
	keywords    []config.KeywordCategory
	disclaimers []disclaimer
}

type disclaimer struct {
	topic string
	text  string
}

// NewComplianceChecker compiles the configured prohibited patterns.
// An invalid pattern fails construction rather than being skipped.
func NewComplianceChecker(cfg config.SafetyConfig) (*ComplianceChecker, error) {
	rules := make([]prohibitedRule, 0, len(cfg.ProhibitedPatterns))
	for _, p := range cfg.ProhibitedPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, prohibitedRule{re: re, message: p.Message, severity: p.Severity})
	}

	disclaimers := make([]disclaimer, 0, len(cfg.Disclaimers))
	for topic, text := range cfg.Disclaimers {
		disclaimers = append(disclaimers, disclaimer{topic: topic, text: text})
	}
	sort.Slice(disclaimers, func(i, j int) bool { return disclaimers[i].topic < disclaimers[j].topic })

	return &ComplianceChecker{
		enabled:     cfg.ComplianceEnabled,
		prohibited:  rules,
		keywords:    cfg.HarmfulKeywords,
		disclaimers: disclaimers,
	}, nil
}

// Check reports every prohibited pattern and harmful keyword found.
func (c *ComplianceChecker) Check(text string) ComplianceResult {
	if !c.enabled {
		return ComplianceResult{IsCompliant: true, Severity: "none"}
	}

	var violations []string
	severity := "none"
	for _, rule := range c.prohibited {
		if rule.re.MatchString(text) {
			violations = append(violations, rule.message)
			severity = higherSeverity(severity, rule.severity)
		}
	}

	lower := strings.ToLower(text)
	for _, cat := range c.keywords {
		for _, keyword := range cat.Keywords {
			if strings.Contains(lower, keyword) {
				violations = append(violations, "Contains "+cat.Name+" content")
				severity = higherSeverity(severity, cat.Severity)
				break
			}
		}
	}

	return ComplianceResult{
		IsCompliant: len(violations) == 0,
		Violations:  violations,
		Severity:    severity,
	}
}

// AddDisclaimers appends the configured advisory notice for each topic the
// text mentions, unless the text already carries one.
func (c *ComplianceChecker) AddDisclaimers(text string) string {
	lower := strings.ToLower(text)
	for _, d := range c.disclaimers {
		if strings.Contains(lower, d.topic) && !strings.Contains(lower, strings.ToLower(d.text)) {
			text += "\n\n" + d.text
		}
	}
	return text
}
