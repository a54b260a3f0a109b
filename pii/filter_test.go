package pii

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/finassist/config"
)

func newTestFilter(t *testing.T) *Filter {
	t.Helper()
	f, err := NewFilter(config.Default().PIIPatterns)
	require.NoError(t, err)
	return f
}

func TestSanitizeMasksPAN(t *testing.T) {
	f := newTestFilter(t)

	sanitized, entities := f.Sanitize("my pan is ABCDE1234F")

	require.Len(t, entities, 1)
	assert.Equal(t, Type("pan_card"), entities[0].Type)
	assert.Equal(t, "ABCDE1234F", entities[0].Original)
	assert.Equal(t, "my pan is **********", sanitized)
	assert.NotEmpty(t, entities[0].Hash)
}

func TestSanitizeEmailKeepsDomain(t *testing.T) {
	f := newTestFilter(t)

	sanitized, entities := f.Sanitize("reach me at ramesh@example.com please")

	require.Len(t, entities, 1)
	assert.Equal(t, Type("email"), entities[0].Type)
	assert.Equal(t, "reach me at r*****@example.com please", sanitized)
}

func TestSanitizePhoneKeepsLastFour(t *testing.T) {
	f := newTestFilter(t)

	sanitized, entities := f.Sanitize("call 9876543210 now")

	require.Len(t, entities, 1)
	assert.Equal(t, Type("phone"), entities[0].Type)
	assert.Equal(t, "call ******3210 now", sanitized)
}

func TestSanitizePreservesLength(t *testing.T) {
	f := newTestFilter(t)

	inputs := []string{
		"ABCDE1234F",
		"my aadhaar 1234 5678 9012",
		"card 4111 1111 1111 1111 and phone 9876543210",
		"ramesh@example.com",
	}
	for _, in := range inputs {
		sanitized, _ := f.Sanitize(in)
		assert.Equal(t, len(in), len(sanitized), "input %q", in)
	}
}

func TestSanitizeNoOverlappingSpans(t *testing.T) {
	f := newTestFilter(t)

	// The aadhaar digits are also a candidate account number; only the
	// higher-priority detector may claim the span.
	_, entities := f.Sanitize("aadhaar 123456789012")

	require.Len(t, entities, 1)
	assert.Equal(t, Type("aadhaar"), entities[0].Type)

	claimed := make([]bool, 100)
	for _, e := range entities {
		for i := e.Start; i < e.End; i++ {
			require.False(t, claimed[i], "span overlap at %d", i)
			claimed[i] = true
		}
	}
}

func TestSanitizePIIFreeTextUnchanged(t *testing.T) {
	f := newTestFilter(t)

	in := "what documents do i need for a home loan"
	sanitized, entities := f.Sanitize(in)

	assert.Equal(t, in, sanitized)
	assert.Empty(t, entities)
}

func TestSanitizeMultipleEntities(t *testing.T) {
	f := newTestFilter(t)

	sanitized, entities := f.Sanitize("phone 9876543210 email a.b@bank.in")

	require.Len(t, entities, 2)
	assert.NotContains(t, sanitized, "9876543210")
	assert.NotContains(t, sanitized, "a.b@")
}

func TestSummarize(t *testing.T) {
	f := newTestFilter(t)

	_, entities := f.Sanitize("pan ABCDE1234F phone 9876543210")
	summary := Summarize(entities)

	assert.Equal(t, 2, summary.TotalEntities)
	assert.Equal(t, 1, summary.ByType[Type("pan_card")])
	assert.Equal(t, 1, summary.ByType[Type("phone")])
	assert.Equal(t, 1, summary.BySeverity["critical"])
	assert.Equal(t, 1, summary.BySeverity["high"])
}

func TestApplyMaskShortValueFullyMasked(t *testing.T) {
	assert.Equal(t, "****", applyMask("1234", MaskLast4))
	assert.Equal(t, strings.Repeat("*", 10), applyMask("9876543210", MaskFull))
}
