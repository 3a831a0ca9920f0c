package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querypilot/querypilot/apimodels"
	"github.com/querypilot/querypilot/internal/config"
	"github.com/querypilot/querypilot/internal/llm"
	"github.com/querypilot/querypilot/internal/monitor"
	"github.com/querypilot/querypilot/internal/pipeline"
	"github.com/querypilot/querypilot/internal/query"
	"github.com/querypilot/querypilot/internal/router"
	"github.com/querypilot/querypilot/internal/tools/calculator"
	"github.com/querypilot/querypilot/internal/tools/websearch"
	"github.com/querypilot/querypilot/internal/vectorstore"
)

type stubRouter struct {
	decision router.Decision
}

func (s *stubRouter) Route(_ context.Context, _ string) router.Decision {
	return s.decision
}

type stubProvider struct{}

func (s *stubProvider) Invoke(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return "stub answer", nil
}

type stubWebSearcher struct{}

func (s *stubWebSearcher) Search(_ context.Context, _ string, _ int) []websearch.Result {
	return nil
}

type stubStore struct{}

func (s *stubStore) Search(_ context.Context, _ string, _ int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (s *stubStore) AddTexts(_ context.Context, texts []string, _ []map[string]any) ([]string, error) {
	ids := make([]string, len(texts))
	for i := range ids {
		ids[i] = "id"
	}
	return ids, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	stores := vectorstore.NewManager()
	stores.AddStore("kb", &stubStore{})

	mon := monitor.New()
	p := pipeline.New(
		query.NewProcessor(),
		&stubRouter{decision: router.Decision{QueryType: router.Direct, Confidence: 0.8}},
		&stubProvider{},
		stores,
		calculator.New(),
		&stubWebSearcher{},
		mon,
	)

	return New(config.Config{}, p, stores, mon)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []any{"kb"}, body["stores"])
}

func TestHandleQuery(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/query", `{"query": "what is polymorphism"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodels.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "stub answer", resp.Response)
	assert.Equal(t, "direct", resp.QueryType)
}

func TestHandleQueryEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/query", `{"query": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQueryMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/query", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngest(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/stores/kb/documents", `{"texts": ["doc one", "doc two"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodels.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.IDs, 2)
}

func TestHandleIngestUnknownStore(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/stores/nope/documents", `{"texts": ["doc"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleIngestEmptyTexts(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/stores/kb/documents", `{"texts": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	s := newTestServer(t)

	// Run one query so the counters move.
	doRequest(s, http.MethodPost, "/api/v1/query", `{"query": "what is polymorphism"}`)

	rec := doRequest(s, http.MethodGet, "/api/v1/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics monitor.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, int64(1), metrics.Total)
	assert.Equal(t, int64(1), metrics.Successful)
}
