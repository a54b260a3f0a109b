// Package metrics exposes the pipeline's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PIIDetections counts masked PII spans by type and severity.
	PIIDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finassist",
		Name:      "pii_detections_total",
		Help:      "PII entities detected and masked, by type and severity.",
	}, []string{"type", "severity"})

	// GuardrailBlocks counts requests stopped before routing.
	GuardrailBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finassist",
		Name:      "guardrail_blocks_total",
		Help:      "Requests blocked by guardrails, by violation type.",
	}, []string{"violation"})

	// RoutedRequests counts routing decisions by selected tier.
	RoutedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finassist",
		Name:      "routed_requests_total",
		Help:      "Routing decisions, by selected tier.",
	}, []string{"tier"})

	// SafetyVerdicts counts post-generation safety outcomes.
	SafetyVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finassist",
		Name:      "safety_verdicts_total",
		Help:      "Safety layer verdicts on generated responses.",
	}, []string{"verdict"})

	// ProcessingSeconds observes end-to-end request latency.
	ProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finassist",
		Name:      "processing_seconds",
		Help:      "End-to-end orchestrator processing time.",
		Buckets:   prometheus.DefBuckets,
	})
)
