package safety

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/finassist/config"
)

func newTestLayer(t *testing.T) *Layer {
	t.Helper()
	l, err := NewLayer(config.Default().Safety, slog.Default())
	require.NoError(t, err)
	return l
}

func TestRulesFlagFinancialAdvice(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("You should invest in this fund for guaranteed returns")

	assert.False(t, result.IsSafe)
	assert.Equal(t, "critical", result.Severity)
	assert.Equal(t, "S6", result.Category)
	assert.Contains(t, result.Violations, "Provides financial advice")
}

func TestRulesFlagLegalAdvice(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("you should sue the bank over this")

	assert.False(t, result.IsSafe)
	assert.Contains(t, result.Violations, "Provides legal advice")
}

func TestRulesFlagPIIInOutput(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("Your account 123456789012 shows activity")

	assert.False(t, result.IsSafe)
	assert.Contains(t, result.Violations, "Contains Account number")
}

func TestRulesFlagDistress(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("this debt makes me feel there is no way out")

	assert.False(t, result.IsSafe)
	assert.Equal(t, "high", result.Severity)
	assert.Contains(t, result.Violations, "Contains distress indicators")
}

func TestRulesFlagFraudPhrasing(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("please share your PIN to verify your account details")

	assert.False(t, result.IsSafe)
	assert.Contains(t, result.Violations, "Contains fraud indicators")
}

func TestRulesPassCleanText(t *testing.T) {
	r := NewRuleBasedSafety(true)

	result := r.Check("Your EMI schedule is available in the mobile app under the loans section.")

	assert.True(t, result.IsSafe)
	assert.Equal(t, "none", result.Category)
}

func TestRulesDisabled(t *testing.T) {
	r := NewRuleBasedSafety(false)

	assert.True(t, r.Check("guaranteed returns for everyone").IsSafe)
}

func TestComplianceBlocksSpecificAmounts(t *testing.T) {
	c, err := NewComplianceChecker(config.Default().Safety)
	require.NoError(t, err)

	for _, text := range []string{
		"Your balance is INR 25000",
		"Pay Rs. 1,250.50 before Friday",
		"That costs ₹999",
	} {
		result := c.Check(text)
		assert.False(t, result.IsCompliant, "text %q", text)
		assert.Contains(t, result.Violations, "Contains a specific currency amount")
	}
}

func TestComplianceBlocksInterestRates(t *testing.T) {
	c, err := NewComplianceChecker(config.Default().Safety)
	require.NoError(t, err)

	result := c.Check("The loan carries 8.5% interest currently")

	assert.False(t, result.IsCompliant)
	assert.Contains(t, result.Violations, "Contains a specific interest rate")
}

func TestComplianceBlocksHarmfulKeywords(t *testing.T) {
	c, err := NewComplianceChecker(config.Default().Safety)
	require.NoError(t, err)

	result := c.Check("Get guaranteed approval on any loan today")

	assert.False(t, result.IsCompliant)
	assert.Contains(t, result.Violations, "Contains unauthorized_guarantee content")
}

func TestComplianceSeverityFollowsConfig(t *testing.T) {
	cfg := config.Default().Safety
	cfg.ProhibitedPatterns = []config.ProhibitedPattern{
		{Name: "tenure", Pattern: `\btenure of \d+ years\b`, Message: "Contains a loan tenure", Severity: "medium"},
	}
	cfg.HarmfulKeywords = []config.KeywordCategory{
		{Name: "unauthorized_guarantee", Keywords: []string{"guaranteed approval"}, Severity: "high"},
	}
	c, err := NewComplianceChecker(cfg)
	require.NoError(t, err)

	assert.Equal(t, "none", c.Check("Your statement is ready.").Severity)
	assert.Equal(t, "medium", c.Check("A tenure of 20 years applies.").Severity)

	// The highest configured severity wins across violations.
	both := c.Check("A tenure of 20 years with guaranteed approval.")
	assert.False(t, both.IsCompliant)
	assert.Len(t, both.Violations, 2)
	assert.Equal(t, "high", both.Severity)
}

func TestComplianceAddsDisclaimers(t *testing.T) {
	c, err := NewComplianceChecker(config.Default().Safety)
	require.NoError(t, err)

	out := c.AddDisclaimers("Our investment products suit long-term goals.")
	assert.Contains(t, out, "market risks")

	// Already-disclaimed text is left alone.
	again := c.AddDisclaimers(out)
	assert.Equal(t, out, again)

	plain := "Your statement is ready."
	assert.Equal(t, plain, c.AddDisclaimers(plain))
}

func TestOutputValidatorRejectsShortAndLong(t *testing.T) {
	l := newTestLayer(t)

	short := l.validator.Validate("ok")
	assert.False(t, short.IsValid)
	assert.Contains(t, short.Issues, "Response too short")

	long := l.validator.Validate(strings.Repeat("a", 501))
	assert.False(t, long.IsValid)
	assert.Contains(t, long.Issues, "Response too long")
}

func TestOutputValidatorRejectsGeneric(t *testing.T) {
	l := newTestLayer(t)

	result := l.validator.Validate("I don't know about that.")

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Issues, "Generic unhelpful response")
	assert.Equal(t, config.Default().Safety.FallbackMessage, result.Response)
}

func TestOutputValidatorAcceptsLongGenericMention(t *testing.T) {
	l := newTestLayer(t)

	// The generic phrase only disqualifies short replies.
	text := "I don't know your exact due date, but you can find the complete schedule in the mobile app under loans."
	result := l.validator.Validate(text)

	assert.True(t, result.IsValid)
	assert.Equal(t, text, result.Response)
}

func TestLayerReplacesUnsafeResponse(t *testing.T) {
	l := newTestLayer(t)

	verdict := l.Check("You should invest in this scheme for guaranteed returns")

	assert.False(t, verdict.IsSafe)
	assert.Equal(t, config.Default().Safety.FallbackMessage, verdict.FinalResponse)
	// Whole-message substitution, never a redacted variant.
	assert.NotContains(t, verdict.FinalResponse, "invest")
}

func TestLayerPassesSafeResponse(t *testing.T) {
	l := newTestLayer(t)

	text := "Your EMI schedule can be viewed in the mobile app under the loans section."
	verdict := l.Check(text)

	assert.True(t, verdict.IsSafe)
	assert.Equal(t, text, verdict.FinalResponse)
}
