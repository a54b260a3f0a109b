// Package orchestrator runs the full request pipeline: preprocessing,
// intent analysis, routing, tier generation and the safety layer.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/quanterra/finassist/intent"
	"github.com/quanterra/finassist/metrics"
	"github.com/quanterra/finassist/pii"
	"github.com/quanterra/finassist/preprocess"
	"github.com/quanterra/finassist/router"
	"github.com/quanterra/finassist/safety"
	"github.com/quanterra/finassist/tiers"
)

// Fixed customer-facing messages for requests that never reach a tier.
const (
	invalidInputMessage = "I couldn't process your request. Please rephrase your question."
	blockedMessage      = "I cannot process this request. Please contact customer care."
)

// Response is the complete pipeline result for one query.
type Response struct {
	ResponseID       string            `json:"response_id"`
	Query            string            `json:"query"`
	Response         string            `json:"response"`
	TierUsed         int               `json:"tier_used"`
	Intent           string            `json:"intent"`
	Confidence       float64           `json:"confidence"`
	Safe             bool              `json:"safe"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Orchestrator owns the pipeline stages and the per-tier generators.
type Orchestrator struct {
	preprocessor *preprocess.Preprocessor
	engine       *intent.Engine
	router       *router.DecisionRouter
	safetyLayer  *safety.Layer
	generators   map[int]tiers.Generator
	auditStore   pii.AuditStore
	log          *slog.Logger
}

// New wires the orchestrator from already-constructed stages. generators
// maps tier number to its Generator; auditStore may be nil to disable
// detection persistence.
func New(
	preprocessor *preprocess.Preprocessor,
	engine *intent.Engine,
	decisionRouter *router.DecisionRouter,
	safetyLayer *safety.Layer,
	generators map[int]tiers.Generator,
	auditStore pii.AuditStore,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		preprocessor: preprocessor,
		engine:       engine,
		router:       decisionRouter,
		safetyLayer:  safetyLayer,
		generators:   generators,
		auditStore:   auditStore,
		log:          log,
	}
}

// Process runs one query through the whole pipeline. It never panics and
// never returns an error to the caller: every failure mode maps to a
// customer-safe response.
func (o *Orchestrator) Process(ctx context.Context, query, sessionID string) (resp Response) {
	start := time.Now()
	responseID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			o.log.Error("pipeline panic recovered", "response_id", responseID, "panic", r)
			resp = Response{
				ResponseID:       responseID,
				Query:            query,
				Response:         blockedMessage,
				TierUsed:         0,
				Intent:           intent.Unknown,
				Safe:             false,
				ProcessingTimeMS: time.Since(start).Milliseconds(),
				Metadata:         map[string]string{"error": "internal"},
			}
		}
		metrics.ProcessingSeconds.Observe(time.Since(start).Seconds())
	}()

	pre := o.preprocessor.Process(query, sessionID)
	o.recordDetections(ctx, sessionID, pre.DetectedPII)

	if !pre.IsValid {
		o.log.Info("invalid input rejected",
			"response_id", responseID, "session_id", sessionID, "codes", pre.ErrorCodes)
		return Response{
			ResponseID:       responseID,
			Query:            query,
			Response:         invalidInputMessage,
			TierUsed:         0,
			Intent:           intent.Unknown,
			Safe:             true,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			Metadata: map[string]string{
				"error": strings.Join(pre.ErrorCodes, ","),
			},
		}
	}

	analysis := o.engine.Analyze(ctx, pre.NormalizedText)

	decision := o.router.Route(pre, analysis, sessionID)
	if decision.Blocked {
		o.log.Warn("request blocked by guardrails",
			"response_id", responseID, "session_id", sessionID,
			"violation", decision.Guardrail.ViolationType)
		return Response{
			ResponseID:       responseID,
			Query:            query,
			Response:         blockedMessage,
			TierUsed:         0,
			Intent:           analysis.Intent,
			Confidence:       analysis.Confidence,
			Safe:             false,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			Metadata: map[string]string{
				"block_reason": decision.BlockReason,
				"violation":    decision.Guardrail.ViolationType,
			},
		}
	}

	metrics.RoutedRequests.WithLabelValues(strconv.Itoa(decision.Decision.SelectedTier)).Inc()

	generated := o.generate(ctx, analysis, decision.Decision, pre)

	verdict := o.safetyLayer.Check(generated.Text)
	text := verdict.FinalResponse
	if verdict.IsSafe {
		text = o.safetyLayer.AddDisclaimers(text)
	}

	o.preprocessor.Contexts().SetPreviousIntent(sessionID, analysis.Intent)

	metadata := map[string]string{
		"category":       analysis.Category,
		"pii_detected":   strconv.FormatBool(len(pre.DetectedPII) > 0),
		"routing_reason": decision.Decision.Reason,
	}
	for k, v := range generated.Metadata {
		metadata[k] = v
	}
	if !verdict.IsSafe {
		metadata["safety_violations"] = strings.Join(allViolations(verdict), "; ")
	}

	o.log.Info("request processed",
		"response_id", responseID,
		"session_id", sessionID,
		"intent", analysis.Intent,
		"tier", generated.Tier,
		"safe", verdict.IsSafe,
		"duration_ms", time.Since(start).Milliseconds())

	return Response{
		ResponseID:       responseID,
		Query:            query,
		Response:         text,
		TierUsed:         generated.Tier,
		Intent:           analysis.Intent,
		Confidence:       generated.Confidence,
		Safe:             verdict.IsSafe,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Metadata:         metadata,
	}
}

// generate runs the selected tier and retries once on the fallback tier
// when the primary declines with an empty response.
func (o *Orchestrator) generate(ctx context.Context, analysis intent.Result, decision router.RoutingDecision, pre preprocess.PreprocessedInput) tiers.Response {
	req := tiers.Request{
		Query:           pre.NormalizedText,
		Intent:          analysis.Intent,
		Confidence:      analysis.Confidence,
		Matches:         analysis.Matches,
		ForceEscalation: decision.RequiresEscalation,
	}

	resp := o.runTier(ctx, decision.SelectedTier, req)
	if resp.Text == "" && decision.FallbackTier != 0 {
		o.log.Info("primary tier declined, using fallback",
			"primary", decision.SelectedTier, "fallback", decision.FallbackTier)
		resp = o.runTier(ctx, decision.FallbackTier, req)
	}
	if resp.Text == "" {
		// Out of tiers; the safety layer will substitute the fallback
		// message for the empty text.
		resp.Tier = decision.SelectedTier
	}
	return resp
}

func (o *Orchestrator) runTier(ctx context.Context, tier int, req tiers.Request) tiers.Response {
	gen, ok := o.generators[tier]
	if !ok {
		o.log.Error("no generator registered for tier", "tier", tier)
		return tiers.Response{Tier: tier}
	}
	resp, err := gen.Generate(ctx, req)
	if err != nil {
		o.log.Warn("tier generation failed", "tier", tier, "error", err)
		return tiers.Response{Tier: tier}
	}
	return resp
}

func (o *Orchestrator) recordDetections(ctx context.Context, sessionID string, entities []pii.Entity) {
	if o.auditStore == nil || len(entities) == 0 {
		return
	}
	for _, e := range entities {
		if err := o.auditStore.RecordDetection(ctx, sessionID, e); err != nil {
			o.log.Warn("pii audit record failed", "type", e.Type, "error", err)
			return
		}
	}
	summary := pii.Summarize(entities)
	o.log.Debug("pii detections recorded",
		"session_id", sessionID, "total", summary.TotalEntities)
}

func allViolations(v safety.Verdict) []string {
	var all []string
	all = append(all, v.Safety.Violations...)
	all = append(all, v.Compliance.Violations...)
	all = append(all, v.Validation.Issues...)
	return all
}

// Stats reports audit counters for operational endpoints.
func (o *Orchestrator) Stats(ctx context.Context) (map[string]int64, error) {
	if o.auditStore == nil {
		return map[string]int64{}, nil
	}
	counts, err := o.auditStore.CountsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit counts: %w", err)
	}
	return counts, nil
}
