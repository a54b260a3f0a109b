package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/guardrails"
	"github.com/quanterra/finassist/intent"
	"github.com/quanterra/finassist/pii"
	"github.com/quanterra/finassist/preprocess"
)

func TestDecisionRouterPassThrough(t *testing.T) {
	d := NewDecisionRouter(config.Default())

	pre := preprocess.PreprocessedInput{IsValid: true}
	result := d.Route(pre, intent.Result{Intent: "emi_details", Confidence: 0.70}, "s1")

	assert.False(t, result.Blocked)
	assert.Equal(t, 2, result.Decision.SelectedTier)
	assert.True(t, result.Guardrail.Passed)
}

func TestDecisionRouterBlocksBeforeRouting(t *testing.T) {
	d := NewDecisionRouter(config.Default())

	pre := preprocess.PreprocessedInput{
		IsValid:     true,
		DetectedPII: []pii.Entity{{Type: pii.TypePANCard, Severity: pii.SeverityCritical}},
	}
	result := d.Route(pre, intent.Result{Intent: "emi_details", Confidence: 0.95}, "s1")

	assert.True(t, result.Blocked)
	assert.Equal(t, guardrails.ViolationCriticalPII, result.Guardrail.ViolationType)
	assert.Equal(t, 3, result.Decision.SelectedTier)
	assert.True(t, result.Decision.RequiresEscalation)
	assert.Contains(t, result.Decision.Reason, "Blocked:")
}
