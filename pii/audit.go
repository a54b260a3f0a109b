package pii

// AuditSummary aggregates one sanitize call's detections for reporting.
// Summaries are per call: there is no cross-request PII accounting.
type AuditSummary struct {
	TotalEntities int            `json:"total_entities_detected"`
	ByType        map[Type]int   `json:"entities_by_type"`
	BySeverity    map[string]int `json:"severity_distribution"`
}

// Summarize groups detections by type and severity.
func Summarize(entities []Entity) AuditSummary {
	summary := AuditSummary{
		TotalEntities: len(entities),
		ByType:        make(map[Type]int),
		BySeverity:    make(map[string]int),
	}
	for _, e := range entities {
		summary.ByType[e.Type]++
		summary.BySeverity[string(e.Severity)]++
	}
	return summary
}
