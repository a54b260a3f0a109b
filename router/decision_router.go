package router

import (
	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/guardrails"
	"github.com/quanterra/finassist/intent"
	"github.com/quanterra/finassist/preprocess"
)

// RouterResult is the complete pre-generation decision for one request.
type RouterResult struct {
	Decision    RoutingDecision
	Guardrail   guardrails.Result
	Blocked     bool
	BlockReason string
}

// DecisionRouter sequences the guardrail gate and the tier routing
// decision.
type DecisionRouter struct {
	guardrails *guardrails.Guardrails
	tiers      *TierRouter
}

// NewDecisionRouter builds the router pipeline from one config.
func NewDecisionRouter(cfg *config.Config) *DecisionRouter {
	return &DecisionRouter{
		guardrails: guardrails.New(cfg.Guardrails),
		tiers:      NewTierRouter(cfg.Routing),
	}
}

// Route checks guardrails and, when they pass, selects a tier. A blocked
// request carries an escalation decision so audit records still show a
// tier, but the orchestrator terminates before generation.
func (d *DecisionRouter) Route(pre preprocess.PreprocessedInput, result intent.Result, sessionID string) RouterResult {
	guardrail := d.guardrails.Check(pre, sessionID)
	if !guardrail.Passed {
		return RouterResult{
			Decision: RoutingDecision{
				SelectedTier:       3,
				Confidence:         0,
				Reason:             "Blocked: " + guardrail.BlockedReason,
				RequiresEscalation: true,
			},
			Guardrail:   guardrail,
			Blocked:     true,
			BlockReason: guardrail.BlockedReason,
		}
	}

	return RouterResult{
		Decision:  d.tiers.Route(result, result.Matches),
		Guardrail: guardrail,
	}
}
