package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querypilot/querypilot/apimodels"
	"github.com/querypilot/querypilot/internal/llm"
	"github.com/querypilot/querypilot/internal/monitor"
	"github.com/querypilot/querypilot/internal/query"
	"github.com/querypilot/querypilot/internal/router"
	"github.com/querypilot/querypilot/internal/tools/calculator"
	"github.com/querypilot/querypilot/internal/tools/websearch"
	"github.com/querypilot/querypilot/internal/vectorstore"
)

type fakeRouter struct {
	decision router.Decision
}

func (f *fakeRouter) Route(_ context.Context, _ string) router.Decision {
	return f.decision
}

type fakeProvider struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeProvider) Invoke(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

type fakeSearcher struct {
	hits []vectorstore.SearchResult
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]vectorstore.SearchResult, error) {
	return f.hits, f.err
}

func (f *fakeSearcher) AddTexts(_ context.Context, texts []string, _ []map[string]any) ([]string, error) {
	return make([]string, len(texts)), nil
}

type fakeWebSearcher struct {
	results []websearch.Result
}

func (f *fakeWebSearcher) Search(_ context.Context, _ string, _ int) []websearch.Result {
	return f.results
}

type fixture struct {
	pipeline *Pipeline
	provider *fakeProvider
	monitor  *monitor.Monitor
}

func newFixture(decision router.Decision, stores *vectorstore.Manager, web WebSearcher) *fixture {
	if stores == nil {
		stores = vectorstore.NewManager()
	}
	if web == nil {
		web = &fakeWebSearcher{}
	}
	provider := &fakeProvider{reply: "generated answer"}
	mon := monitor.New()
	p := New(
		query.NewProcessor(),
		&fakeRouter{decision: decision},
		provider,
		stores,
		calculator.New(),
		web,
		mon,
	)
	return &fixture{pipeline: p, provider: provider, monitor: mon}
}

func TestProcessQueryEmptyQueryPropagates(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Direct}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "   "})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, query.ErrEmptyQuery)

	metrics := f.monitor.Metrics()
	assert.Equal(t, int64(1), metrics.Total)
	assert.Equal(t, int64(1), metrics.Failed, "rejected input still resolves its span")
}

func TestProcessQueryDirect(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Direct, Confidence: 0.8}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "what is polymorphism"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "generated answer", resp.Response)
	assert.Equal(t, "direct", resp.QueryType)
	assert.InDelta(t, 0.8, resp.Confidence, 1e-9)
	assert.Empty(t, resp.Error)

	metrics := f.monitor.Metrics()
	assert.Equal(t, int64(1), metrics.Successful)
	assert.Equal(t, int64(0), metrics.Failed)
}

func TestProcessQueryDirectLLMError(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Direct}, nil, nil)
	f.provider.err = errors.New("upstream timeout")

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "what is polymorphism"})
	require.NoError(t, err, "runtime failures come back as a response, not an error")

	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to process query", resp.Response)
	assert.Contains(t, resp.Error, "upstream timeout")

	metrics := f.monitor.Metrics()
	assert.Equal(t, int64(1), metrics.Failed)
}

func TestProcessQueryRetrieval(t *testing.T) {
	stores := vectorstore.NewManager()
	stores.AddStore("kb", &fakeSearcher{hits: []vectorstore.SearchResult{
		{Score: 0.9, Text: "retrieval augments generation with stored context"},
		{Score: 0.7, Text: "vector stores index document embeddings"},
	}})
	f := newFixture(router.Decision{QueryType: router.Retrieval, ShouldRetrieve: true}, stores, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "How does RAG work?"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "generated answer", resp.Response)
	assert.Equal(t, "kb", resp.SelectedStore)
	assert.Equal(t, 2, resp.Metadata["sources"])
	assert.Contains(t, f.provider.lastPrompt, "retrieval augments generation", "retrieved context feeds the prompt")
	assert.Contains(t, f.provider.lastPrompt, "How does RAG work?")
}

func TestProcessQueryRetrievalUsesDecisionQuery(t *testing.T) {
	stores := vectorstore.NewManager()
	stores.AddStore("kb", &fakeSearcher{hits: []vectorstore.SearchResult{{Score: 0.9, Text: "ctx"}}})
	f := newFixture(router.Decision{
		QueryType:      router.Retrieval,
		ShouldRetrieve: true,
		RetrievalQuery: "rewritten search terms",
	}, stores, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "original phrasing"})
	require.NoError(t, err)
	assert.Equal(t, "rewritten search terms", resp.Metadata["query_used"])
}

func TestProcessQueryRetrievalNoStores(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Retrieval, ShouldRetrieve: true}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "How does RAG work?"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "No relevant information found", resp.Response)
	assert.Empty(t, resp.Error, "a missing store is a non-answer, not a fault")
}

func TestProcessQueryRetrievalEmptyHits(t *testing.T) {
	stores := vectorstore.NewManager()
	stores.AddStore("kb", &fakeSearcher{})
	f := newFixture(router.Decision{QueryType: router.Retrieval, ShouldRetrieve: true}, stores, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "How does RAG work?"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "No relevant information found", resp.Response)
	assert.Equal(t, "kb", resp.SelectedStore)
}

func TestProcessQueryCalculation(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Calculation, Confidence: 0.95}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "what is 15 * 23"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "15 * 23 = 345", resp.Response)
	assert.Equal(t, "15 * 23", resp.Metadata["expression"])
}

func TestProcessQueryCalculationNoExpression(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Calculation}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "calculate the meaning of life"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "No arithmetic expression found in the query", resp.Response)
}

func TestProcessQueryWebSearch(t *testing.T) {
	web := &fakeWebSearcher{results: []websearch.Result{
		{Title: "T", Link: "https://example.com/a", Snippet: "S", Source: "duckduckgo"},
	}}
	f := newFixture(router.Decision{QueryType: router.WebSearch}, nil, web)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "latest go news"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.FallbackUsed)
	assert.Equal(t, []string{"https://example.com/a"}, resp.Metadata["sources"])
	assert.Contains(t, f.provider.lastPrompt, "[Source 1]")
}

func TestProcessQueryWebSearchFallsBackToDirect(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.WebSearch}, nil, &fakeWebSearcher{})

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "latest go news"})
	require.NoError(t, err)

	assert.True(t, resp.Success, "fallback outcome decides success")
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, "generated answer", resp.Response)

	metrics := f.monitor.Metrics()
	assert.Equal(t, int64(1), metrics.Successful)
}

func TestProcessQueryWebSearchFallbackError(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.WebSearch}, nil, &fakeWebSearcher{})
	f.provider.err = errors.New("upstream timeout")

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "latest go news"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.True(t, resp.FallbackUsed, "fallback flag survives the failed direct attempt")
	assert.Contains(t, resp.Error, "upstream timeout")
}

func TestProcessQueryClarification(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Clarification}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "it does not work"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Response, "more information")
	assert.Equal(t, true, resp.Metadata["clarification_needed"])
}

func TestProcessQueryUnknownTypeFails(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.QueryType("summarization")}, nil, nil)

	resp, err := f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: "summarize everything"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown query type")
}

func TestProcessQueryResolvesEverySpan(t *testing.T) {
	f := newFixture(router.Decision{QueryType: router.Direct}, nil, nil)

	queries := []string{"what is go", "   ", "explain channels"}
	for _, q := range queries {
		_, _ = f.pipeline.ProcessQuery(context.Background(), apimodels.QueryRequest{Query: q})
	}

	metrics := f.monitor.Metrics()
	assert.Equal(t, int64(len(queries)), metrics.Total)
	assert.Equal(t, metrics.Total, metrics.Successful+metrics.Failed)
}
