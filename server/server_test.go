package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
	"github.com/quanterra/finassist/orchestrator"
	"github.com/quanterra/finassist/pii"
	"github.com/quanterra/finassist/preprocess"
	"github.com/quanterra/finassist/router"
	"github.com/quanterra/finassist/safety"
	"github.com/quanterra/finassist/tiers"
)

type fixedGenerator struct {
	text string
}

func (g fixedGenerator) Generate(_ context.Context, _ tiers.Request) (tiers.Response, error) {
	return tiers.Response{Text: g.text, Confidence: 0.75, Tier: 2}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()

	preprocessor, err := preprocess.NewPreprocessor(cfg)
	require.NoError(t, err)
	safetyLayer, err := safety.NewLayer(cfg.Safety, slog.Default())
	require.NoError(t, err)

	answer := "Your EMI schedule can be viewed in the mobile app under the loans section."
	generators := map[int]tiers.Generator{
		1: fixedGenerator{text: answer},
		2: fixedGenerator{text: answer},
		3: fixedGenerator{text: answer},
	}

	orch := orchestrator.New(
		preprocessor,
		intent.NewEngine(cfg, nil),
		router.NewDecisionRouter(cfg),
		safetyLayer,
		generators,
		pii.NewInMemoryAuditStore(),
		slog.Default(),
	)
	return NewServer(cfg.Server, orch)
}

func TestHandleQuery(t *testing.T) {
	s := newTestServer(t)

	body := `{"query": "what is my emi amount", "session_id": "s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.http.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "emi_details", resp.Intent)
	assert.NotEmpty(t, resp.Response)
	assert.NotEmpty(t, resp.ResponseID)
}

func TestHandleQueryMissingFields(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.http.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.http.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestHandleMetrics(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	s.http.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()

	s.http.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pii_detections_by_type")
}
