package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/querypilot/querypilot/apimodels"
	"github.com/querypilot/querypilot/internal/llm"
	"github.com/querypilot/querypilot/internal/query"
	"github.com/querypilot/querypilot/internal/router"
	"github.com/querypilot/querypilot/internal/tools/websearch"
	"github.com/querypilot/querypilot/internal/vectorstore"
)

const (
	noInformationMessage = "No relevant information found"

	clarificationMessage = "I need more information. Could you please provide more context about what you're asking?"

	retrievalLimit = 3
	webSearchLimit = 3
)

// calcExprRe extracts the arithmetic expression embedded in a query.
var calcExprRe = regexp.MustCompile(`[0-9(][0-9+\-*/^. ()]*[0-9)]|[0-9]`)

// handleRetrieval selects the best store, searches it and generates a
// templated answer constrained to the retrieved context. Finding no store or
// no results is a graceful non-answer, not an error.
func (p *Pipeline) handleRetrieval(ctx context.Context, req apimodels.QueryRequest, processed *query.ProcessingResult, decision router.Decision) (toolResult, error) {
	storeName, err := p.stores.DetermineBestStore(ctx, processed.ProcessedQuery, req.Store)
	if err != nil {
		if errors.Is(err, vectorstore.ErrNoStores) {
			return toolResult{response: noInformationMessage, success: false}, nil
		}
		return toolResult{}, err
	}

	store, ok := p.stores.Get(storeName)
	if !ok {
		return toolResult{response: noInformationMessage, success: false}, nil
	}

	searchQuery := decision.RetrievalQuery
	if searchQuery == "" {
		searchQuery = processed.ProcessedQuery
	}

	hits, err := store.Search(ctx, searchQuery, retrievalLimit)
	if err != nil {
		return toolResult{store: storeName}, err
	}
	if len(hits) == 0 {
		return toolResult{
			response: noInformationMessage,
			success:  false,
			store:    storeName,
			metadata: map[string]any{"query_used": searchQuery},
		}, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}

	prompt := query.RenderTemplate(processed.SuggestedTemplate, map[string]string{
		"query":               processed.ProcessedQuery,
		"context":             strings.Join(texts, "\n"),
		"entities":            strings.Join(processed.Analysis.Entities, ", "),
		"complexity_analysis": fmt.Sprintf("complexity score %.2f", processed.Analysis.Complexity),
		"entity_details":      strings.Join(processed.Analysis.Entities, ", "),
	})

	answer, err := p.llm.Invoke(ctx, prompt, optsFrom(req.Options)...)
	if err != nil {
		return toolResult{store: storeName}, err
	}

	return toolResult{
		response: answer,
		success:  true,
		store:    storeName,
		metadata: map[string]any{
			"sources":    len(hits),
			"query_used": searchQuery,
		},
	}, nil
}

// handleDirect generates an answer without retrieved context.
func (p *Pipeline) handleDirect(ctx context.Context, q string, opts apimodels.QueryOptions) (toolResult, error) {
	answer, err := p.llm.Invoke(ctx, q, optsFrom(opts)...)
	if err != nil {
		return toolResult{}, err
	}
	return toolResult{response: answer, success: true}, nil
}

// handleCalculation extracts the numeric expression and evaluates it with
// the restricted calculator. Never calls an external service.
func (p *Pipeline) handleCalculation(q string) toolResult {
	expr := strings.TrimSpace(calcExprRe.FindString(q))
	if expr == "" {
		return toolResult{
			response: "No arithmetic expression found in the query",
			success:  false,
		}
	}

	value, err := p.calc.Evaluate(expr)
	if err != nil || value == nil {
		return toolResult{
			response: "Unable to evaluate the expression",
			success:  false,
			metadata: map[string]any{"expression": expr},
		}
	}

	return toolResult{
		response: fmt.Sprintf("%s = %s", expr, strconv.FormatFloat(*value, 'f', -1, 64)),
		success:  true,
		metadata: map[string]any{"expression": expr, "result": *value},
	}
}

// handleWebSearch searches the web and synthesizes an answer over the
// formatted results. An empty search falls back to the direct path; the
// fallback's own outcome decides success.
func (p *Pipeline) handleWebSearch(ctx context.Context, req apimodels.QueryRequest, processed *query.ProcessingResult) (toolResult, error) {
	results := p.search.Search(ctx, processed.ProcessedQuery, webSearchLimit)
	if len(results) == 0 {
		slog.Warn("web search returned nothing, falling back to direct answer", "query", req.Query)
		result, err := p.handleDirect(ctx, processed.ProcessedQuery, req.Options)
		if err != nil {
			return toolResult{fallback: true}, err
		}
		result.fallback = true
		return result, nil
	}

	prompt := fmt.Sprintf(`Use the following recent search results to answer the question.

%s
Question: %s

Answer concisely, citing the sources by number where relevant.`,
		websearch.FormatResults(results), processed.ProcessedQuery)

	answer, err := p.llm.Invoke(ctx, prompt, optsFrom(req.Options)...)
	if err != nil {
		return toolResult{}, err
	}

	sources := make([]string, len(results))
	for i, r := range results {
		sources[i] = r.Link
	}

	return toolResult{
		response: answer,
		success:  true,
		metadata: map[string]any{"sources": sources},
	}, nil
}

// handleClarification returns the fixed clarification message; no external
// call is made.
func (p *Pipeline) handleClarification() toolResult {
	return toolResult{
		response: clarificationMessage,
		success:  true,
		metadata: map[string]any{"clarification_needed": true},
	}
}

func optsFrom(opts apimodels.QueryOptions) []llm.Option {
	return []llm.Option{
		llm.WithModel(opts.Model),
		llm.WithMaxTokens(opts.MaxTokens),
		llm.WithTemperature(opts.Temperature),
	}
}
