package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quanterra/finassist/config"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.Default().Intent)
}

func TestClassifyEMIDetails(t *testing.T) {
	c := newTestClassifier()

	name, score := c.Classify("what is my emi amount")

	assert.Equal(t, "emi_details", name)
	assert.Greater(t, score, 0.0)
}

func TestClassifyKnownIntents(t *testing.T) {
	c := newTestClassifier()

	cases := map[string]string{
		"i want to speak to your manager":  "speak_to_manager",
		"my account is locked":             "account_locked",
		"when is my emi due":               "emi_schedule",
		"i want to file a complaint":       "complaint",
		"am i eligible for a home loan":    "loan_eligibility",
		"my emi payment bounced yesterday": "emi_bounced",
	}
	for query, want := range cases {
		name, _ := c.Classify(query)
		assert.Equal(t, want, name, "query %q", query)
	}
}

func TestClassifyUnknown(t *testing.T) {
	c := newTestClassifier()

	name, score := c.Classify("tell me about the weather in mumbai")

	assert.Equal(t, Unknown, name)
	assert.Zero(t, score)
}

func TestClassifyDeterministicTieBreak(t *testing.T) {
	c := newTestClassifier()

	// Repeated classification of the same text must always produce the
	// same label even when several intents share matching keywords.
	first, _ := c.Classify("emi payment")
	for i := 0; i < 20; i++ {
		name, _ := c.Classify("emi payment")
		assert.Equal(t, first, name)
	}
}

func TestCategoryLookup(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, "emi", c.Category("emi_details"))
	assert.Equal(t, "escalation", c.Category("speak_to_manager"))
	assert.Equal(t, "unknown", c.Category("no_such_intent"))
}
