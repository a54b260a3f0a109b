// Package router selects a response tier for each query and gates the
// decision behind the guardrails.
package router

import (
	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
)

// RoutingDecision selects one of the three response tiers. Tiers carry no
// behavior here; the orchestrator maps the integer to a generator.
type RoutingDecision struct {
	SelectedTier       int
	Confidence         float64
	Reason             string
	FallbackTier       int // 0 means no fallback
	RequiresEscalation bool
}

// TierRouter is a pure decision procedure over intent, confidence and
// similarity results. The rules form an ordered priority list and the
// order itself is the contract: each rule is reached only when every
// earlier rule failed its guard.
type TierRouter struct {
	cfg config.RoutingConfig

	tier1Intents map[string]bool
	tier3Intents map[string]bool
}

// NewTierRouter builds the router from the configured thresholds and
// per-tier intent sets.
func NewTierRouter(cfg config.RoutingConfig) *TierRouter {
	return &TierRouter{
		cfg:          cfg,
		tier1Intents: toSet(cfg.Tier1Intents),
		tier3Intents: toSet(cfg.Tier3Intents),
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Route evaluates the rules in order; the first match wins. Identical
// inputs always produce the identical decision.
func (r *TierRouter) Route(result intent.Result, matches []intent.Match) RoutingDecision {
	label := result.Intent
	confidence := result.Confidence

	// Rule 1: explicit escalation intents go straight to a human.
	if r.tier3Intents[label] {
		return RoutingDecision{
			SelectedTier:       3,
			Confidence:         1.0,
			Reason:             "Escalation intent detected",
			RequiresEscalation: true,
		}
	}

	// Rule 2: near-exact KB match with high confidence or a tier-1 intent.
	if r.hasExactMatch(matches) {
		if confidence >= r.cfg.Tier1MinConfidence || r.tier1Intents[label] {
			return RoutingDecision{
				SelectedTier: 1,
				Confidence:   confidence,
				Reason:       "High confidence KB match",
				FallbackTier: 2,
			}
		}
	}

	// Rule 3: medium confidence band goes to the fine-tuned model.
	if confidence >= r.cfg.Tier2MinConfidence && confidence < r.cfg.Tier2MaxConfidence {
		return RoutingDecision{
			SelectedTier: 2,
			Confidence:   confidence,
			Reason:       "Medium confidence, using fine-tuned SLM",
			FallbackTier: 3,
		}
	}

	// Rule 4: high confidence but rule 2's match condition failed.
	if confidence >= r.cfg.Tier1MinConfidence {
		return RoutingDecision{
			SelectedTier: 2,
			Confidence:   confidence,
			Reason:       "High confidence but no exact KB match",
			FallbackTier: 3,
		}
	}

	// Rule 5: low but usable confidence, try RAG without forcing a human.
	if confidence >= r.cfg.EscalationThreshold {
		return RoutingDecision{
			SelectedTier: 3,
			Confidence:   confidence,
			Reason:       "Low confidence, using RAG",
		}
	}

	// Rule 6: unknown intent, let the generative tier attempt an answer.
	if label == intent.Unknown {
		return RoutingDecision{
			SelectedTier: 2,
			Confidence:   confidence,
			Reason:       "Unknown intent, using fine-tuned SLM",
			FallbackTier: 3,
		}
	}

	// Rule 7: known intent with very low confidence, escalate.
	return RoutingDecision{
		SelectedTier:       3,
		Confidence:         confidence,
		Reason:             "Very low confidence, human escalation required",
		RequiresEscalation: true,
	}
}

// hasExactMatch reports whether the top similarity result clears the
// configured near-exact threshold.
func (r *TierRouter) hasExactMatch(matches []intent.Match) bool {
	if len(matches) == 0 {
		return false
	}
	return matches[0].Score >= r.cfg.Tier1MinSimilarity
}
