// Package pipeline is the top-level orchestrator: it processes a query,
// routes it, dispatches to exactly one tool, applies the bounded fallback
// chains and reports exactly one outcome to the monitor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/querypilot/querypilot/apimodels"
	"github.com/querypilot/querypilot/internal/llm"
	"github.com/querypilot/querypilot/internal/monitor"
	"github.com/querypilot/querypilot/internal/query"
	"github.com/querypilot/querypilot/internal/router"
	"github.com/querypilot/querypilot/internal/tools/calculator"
	"github.com/querypilot/querypilot/internal/tools/websearch"
	"github.com/querypilot/querypilot/internal/vectorstore"
)

// Router produces a route decision for a query. Satisfied by *router.Chain.
type Router interface {
	Route(ctx context.Context, query string) router.Decision
}

// WebSearcher runs a web search. Satisfied by *websearch.Tool.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []websearch.Result
}

type Pipeline struct {
	processor *query.Processor
	router    Router
	llm       llm.Provider
	stores    *vectorstore.Manager
	calc      *calculator.Calculator
	search    WebSearcher
	monitor   *monitor.Monitor
}

func New(
	processor *query.Processor,
	rt Router,
	provider llm.Provider,
	stores *vectorstore.Manager,
	calc *calculator.Calculator,
	search WebSearcher,
	mon *monitor.Monitor,
) *Pipeline {
	return &Pipeline{
		processor: processor,
		router:    rt,
		llm:       provider,
		stores:    stores,
		calc:      calc,
		search:    search,
		monitor:   mon,
	}
}

// toolResult is what one dispatched tool produced. Even failures synthesize
// one; every query yields exactly one.
type toolResult struct {
	response string
	success  bool
	err      string
	metadata map[string]any
	fallback bool
	store    string
}

// ProcessQuery runs the full chain for one query. It holds no per-query
// state outside locals, so calls may run concurrently. The returned error is
// non-nil only for caller-input violations (empty query); every runtime
// failure comes back as a response with Success=false.
func (p *Pipeline) ProcessQuery(ctx context.Context, req apimodels.QueryRequest) (*apimodels.QueryResponse, error) {
	slog.Info("processing query", "query", req.Query)

	span := p.monitor.StartProcessing(req.Query)

	processed, err := p.processor.Process(req.Query)
	if err != nil {
		p.monitor.RecordFailure(span, err.Error())
		return nil, err
	}

	decision := p.router.Route(ctx, processed.ProcessedQuery)

	result := p.dispatch(ctx, req, processed, decision)

	if result.success {
		p.monitor.RecordSuccess(span, string(processed.Path))
	} else {
		msg := result.err
		if msg == "" {
			msg = result.response
		}
		p.monitor.RecordFailure(span, msg)
	}

	metadata := make(map[string]any, len(decision.Metadata)+len(result.metadata))
	for k, v := range decision.Metadata {
		metadata[k] = v
	}
	for k, v := range result.metadata {
		metadata[k] = v
	}

	return &apimodels.QueryResponse{
		Query:          req.Query,
		ProcessedQuery: processed.ProcessedQuery,
		QueryType:      decision.QueryType.String(),
		Confidence:     decision.Confidence,
		Response:       result.response,
		Success:        result.success,
		SelectedStore:  result.store,
		FallbackUsed:   result.fallback,
		Metadata:       metadata,
		Error:          result.err,
	}, nil
}

// dispatch selects exactly one handler by query type. Upstream service
// errors surface here and are converted into a terminal failure result; no
// handler error escapes further.
func (p *Pipeline) dispatch(ctx context.Context, req apimodels.QueryRequest, processed *query.ProcessingResult, decision router.Decision) toolResult {
	var (
		result toolResult
		err    error
	)

	switch decision.QueryType {
	case router.Retrieval:
		result, err = p.handleRetrieval(ctx, req, processed, decision)
	case router.Direct:
		result, err = p.handleDirect(ctx, processed.ProcessedQuery, req.Options)
	case router.Calculation:
		result = p.handleCalculation(processed.ProcessedQuery)
	case router.WebSearch:
		result, err = p.handleWebSearch(ctx, req, processed)
	case router.Clarification:
		result = p.handleClarification()
	default:
		err = fmt.Errorf("unknown query type %q", decision.QueryType)
	}

	if err != nil {
		slog.Error("dispatch failed", "type", decision.QueryType, "error", err)
		return toolResult{
			response: "Failed to process query",
			success:  false,
			err:      err.Error(),
			fallback: result.fallback,
			metadata: result.metadata,
		}
	}
	return result
}
