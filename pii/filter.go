package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/metrics"
)

const maskChar = '*'

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
}

type detector struct {
	typ      Type
	re       *regexp.Regexp
	severity Severity
	strategy MaskStrategy
	priority int
}

// Filter detects and masks PII in raw text before anything downstream can
// see or store it.
type Filter struct {
	detectors []detector
}

// NewFilter compiles the configured pattern table. Detectors are ordered
// by priority, then by descending severity within a priority tier; that
// order is the match order, so specific identifier formats always claim
// their spans before generic numeric patterns.
func NewFilter(patterns map[string]config.PIIPattern) (*Filter, error) {
	detectors := make([]detector, 0, len(patterns))
	for name, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile pii pattern %q: %w", name, err)
		}
		detectors = append(detectors, detector{
			typ:      Type(name),
			re:       re,
			severity: Severity(p.Severity),
			strategy: MaskStrategy(p.MaskStrategy),
			priority: p.Priority,
		})
	}
	sort.Slice(detectors, func(i, j int) bool {
		if detectors[i].priority != detectors[j].priority {
			return detectors[i].priority < detectors[j].priority
		}
		if severityRank[detectors[i].severity] != severityRank[detectors[j].severity] {
			return severityRank[detectors[i].severity] < severityRank[detectors[j].severity]
		}
		return detectors[i].typ < detectors[j].typ
	})
	return &Filter{detectors: detectors}, nil
}

// Sanitize masks every detected PII span and returns the sanitized text
// with the ordered list of detections. A character position claimed by an
// earlier detector is never re-matched by a later one, so masked spans
// cannot overlap. All mask strategies preserve span length, which keeps
// original-text offsets valid for the final splice.
func (f *Filter) Sanitize(text string) (string, []Entity) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	claimed := make([]bool, len(text))
	out := []byte(text)
	var entities []Entity

	for _, d := range f.detectors {
		for _, span := range d.re.FindAllStringIndex(text, -1) {
			start, end := span[0], span[1]
			if anyClaimed(claimed, start, end) {
				continue
			}

			original := text[start:end]
			masked := applyMask(original, d.strategy)
			copy(out[start:end], masked)
			for i := start; i < end; i++ {
				claimed[i] = true
			}

			sum := sha256.Sum256([]byte(original))
			entities = append(entities, Entity{
				Type:     d.typ,
				Original: original,
				Masked:   masked,
				Start:    start,
				End:      end,
				Severity: d.severity,
				Hash:     hex.EncodeToString(sum[:]),
			})
			metrics.PIIDetections.WithLabelValues(string(d.typ), string(d.severity)).Inc()
		}
	}

	return string(out), entities
}

func anyClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// applyMask rewrites value according to strategy. The result always has
// the same length as the input.
func applyMask(value string, strategy MaskStrategy) string {
	if value == "" {
		return value
	}

	switch strategy {
	case MaskLast4:
		if len(value) <= 4 {
			return strings.Repeat(string(maskChar), len(value))
		}
		return strings.Repeat(string(maskChar), len(value)-4) + value[len(value)-4:]
	case MaskDomainOnly:
		if at := strings.Index(value, "@"); at > 0 {
			user, domain := value[:at], value[at+1:]
			return user[:1] + strings.Repeat(string(maskChar), len(user)-1) + "@" + domain
		}
		return strings.Repeat(string(maskChar), len(value))
	default:
		// full_mask and partial_mask both blank the whole span.
		return strings.Repeat(string(maskChar), len(value))
	}
}
