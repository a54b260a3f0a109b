package tiers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
)

func kbMatch(score float64, meta map[string]string) intent.Match {
	return intent.Match{ID: "kb-1", Score: score, Text: "match text", Metadata: meta}
}

func TestKBReturnsCuratedOutput(t *testing.T) {
	kb := NewKB(config.Default().Tiers.KB, slog.Default())

	resp, err := kb.Generate(context.Background(), Request{
		Matches: []intent.Match{kbMatch(0.92, map[string]string{"output": "curated answer"})},
	})

	require.NoError(t, err)
	assert.Equal(t, "curated answer", resp.Text)
	assert.Equal(t, 1, resp.Tier)
	assert.InDelta(t, 0.97, resp.Confidence, 1e-9)
}

func TestKBFallsBackToMatchText(t *testing.T) {
	kb := NewKB(config.Default().Tiers.KB, slog.Default())

	resp, err := kb.Generate(context.Background(), Request{
		Matches: []intent.Match{kbMatch(0.80, nil)},
	})

	require.NoError(t, err)
	assert.Equal(t, "match text", resp.Text)
}

func TestKBConfidenceCappedAtOne(t *testing.T) {
	kb := NewKB(config.Default().Tiers.KB, slog.Default())

	resp, err := kb.Generate(context.Background(), Request{
		Matches: []intent.Match{kbMatch(0.99, map[string]string{"output": "a"})},
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestKBDeclinesBelowMinScore(t *testing.T) {
	kb := NewKB(config.Default().Tiers.KB, slog.Default())

	resp, err := kb.Generate(context.Background(), Request{
		Matches: []intent.Match{kbMatch(0.50, map[string]string{"output": "weak"})},
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Text)
	assert.Equal(t, 1, resp.Tier)
}

func TestKBDeclinesWithoutMatches(t *testing.T) {
	kb := NewKB(config.Default().Tiers.KB, slog.Default())

	resp, err := kb.Generate(context.Background(), Request{})

	require.NoError(t, err)
	assert.Empty(t, resp.Text)
}

type stubSLMClient struct {
	reply           string
	err             error
	lastInstruction string
}

func (s *stubSLMClient) Complete(_ context.Context, instruction, _ string) (string, error) {
	s.lastInstruction = instruction
	return s.reply, s.err
}

func TestSLMUsesMatchInstruction(t *testing.T) {
	client := &stubSLMClient{reply: "model answer"}
	slm := NewSLM(config.Default().Tiers.SLM, client, slog.Default())

	resp, err := slm.Generate(context.Background(), Request{
		Intent:  "emi_details",
		Matches: []intent.Match{kbMatch(0.80, map[string]string{"instruction": "Answer from training data"})},
	})

	require.NoError(t, err)
	assert.Equal(t, "Answer from training data", client.lastInstruction)
	assert.Equal(t, "model answer", resp.Text)
	assert.Equal(t, 0.75, resp.Confidence)
	assert.Equal(t, 2, resp.Tier)
}

func TestSLMFallsBackToIntentInstruction(t *testing.T) {
	client := &stubSLMClient{reply: "ok response"}
	slm := NewSLM(config.Default().Tiers.SLM, client, slog.Default())

	_, err := slm.Generate(context.Background(), Request{Intent: "emi_details"})

	require.NoError(t, err)
	assert.Equal(t, "Provide EMI details", client.lastInstruction)
}

func TestSLMGenericInstructionForUnknownIntent(t *testing.T) {
	client := &stubSLMClient{reply: "ok response"}
	slm := NewSLM(config.Default().Tiers.SLM, client, slog.Default())

	_, err := slm.Generate(context.Background(), Request{Intent: "unknown"})

	require.NoError(t, err)
	assert.Equal(t, genericInstruction, client.lastInstruction)
}

func TestSLMErrorDegradesToRedirect(t *testing.T) {
	client := &stubSLMClient{err: errors.New("model unavailable")}
	slm := NewSLM(config.Default().Tiers.SLM, client, slog.Default())

	resp, err := slm.Generate(context.Background(), Request{Intent: "emi_details"})

	require.NoError(t, err)
	assert.Equal(t, bfsiRedirect, resp.Text)
	assert.Equal(t, 0.75, resp.Confidence)
}

type stubRetriever struct {
	matches []intent.Match
	err     error
}

func (s *stubRetriever) Search(_ context.Context, _ string, _ int, _ float64) ([]intent.Match, error) {
	return s.matches, s.err
}

func TestRAGForcedEscalation(t *testing.T) {
	rag := NewRAG(config.Default().Tiers.RAG, &stubRetriever{}, slog.Default())

	resp, err := rag.Generate(context.Background(), Request{ForceEscalation: true})

	require.NoError(t, err)
	assert.Equal(t, config.Default().Tiers.RAG.EscalationMessage, resp.Text)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, "escalation_requested", resp.Metadata["escalation_reason"])
}

func TestRAGAnswersFromDocuments(t *testing.T) {
	retriever := &stubRetriever{matches: []intent.Match{
		{ID: "d1", Score: 0.70, Text: "Loan prepayment is allowed after 12 months."},
		{ID: "d2", Score: 0.60, Text: "A processing fee applies to prepayment."},
	}}
	rag := NewRAG(config.Default().Tiers.RAG, retriever, slog.Default())

	resp, err := rag.Generate(context.Background(), Request{Query: "prepayment rules"})

	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Based on our policy documents:")
	assert.Contains(t, resp.Text, "prepayment is allowed")
	assert.InDelta(t, 0.65, resp.Confidence, 1e-9)
	assert.Equal(t, 3, resp.Tier)
}

func TestRAGEscalatesOnWeakRetrieval(t *testing.T) {
	retriever := &stubRetriever{matches: []intent.Match{
		{ID: "d1", Score: 0.40, Text: "barely related"},
	}}
	rag := NewRAG(config.Default().Tiers.RAG, retriever, slog.Default())

	resp, err := rag.Generate(context.Background(), Request{Query: "anything"})

	require.NoError(t, err)
	assert.Equal(t, config.Default().Tiers.RAG.EscalationMessage, resp.Text)
	assert.Equal(t, "low_retrieval_score", resp.Metadata["escalation_reason"])
}

func TestRAGEscalatesWhenRetrievalFails(t *testing.T) {
	rag := NewRAG(config.Default().Tiers.RAG, &stubRetriever{err: errors.New("down")}, slog.Default())

	resp, err := rag.Generate(context.Background(), Request{Query: "anything"})

	require.NoError(t, err)
	assert.Equal(t, "retrieval_failed", resp.Metadata["escalation_reason"])
}

func TestRAGEscalatesWithoutDocuments(t *testing.T) {
	rag := NewRAG(config.Default().Tiers.RAG, &stubRetriever{}, slog.Default())

	resp, err := rag.Generate(context.Background(), Request{Query: "anything"})

	require.NoError(t, err)
	assert.Equal(t, "no_documents", resp.Metadata["escalation_reason"])
}
