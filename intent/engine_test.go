package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quanterra/finassist/config"
)

type stubSearcher struct {
	matches []Match
	err     error
	lastK   int
}

func (s *stubSearcher) Search(_ context.Context, _ string, topK int, _ float64) ([]Match, error) {
	s.lastK = topK
	return s.matches, s.err
}

func TestAnalyzeCombinesClassifierAndSearch(t *testing.T) {
	searcher := &stubSearcher{matches: []Match{{ID: "kb-1", Score: 0.93, Text: "emi info"}}}
	e := NewEngine(config.Default(), searcher)

	result := e.Analyze(context.Background(), "what is my emi amount")

	assert.Equal(t, "emi_details", result.Intent)
	assert.Equal(t, "emi", result.Category)
	assert.Len(t, result.Matches, 1)
	assert.Equal(t, config.Default().Search.TopK, searcher.lastK)
}

func TestAnalyzeSearchFailureDegrades(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("backend down")}
	e := NewEngine(config.Default(), searcher)

	result := e.Analyze(context.Background(), "what is my emi amount")

	assert.Equal(t, "emi_details", result.Intent)
	assert.Empty(t, result.Matches)
}

func TestAnalyzeNilSearcher(t *testing.T) {
	e := NewEngine(config.Default(), nil)

	result := e.Analyze(context.Background(), "i want to file a complaint")

	assert.Equal(t, "complaint", result.Intent)
	assert.Empty(t, result.Matches)
}
