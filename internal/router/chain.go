package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/querypilot/querypilot/internal/llm"
)

// Chain routes queries: an LLM candidate classification first, then
// deterministic pattern overrides in fixed precedence. Route never returns
// an error; every failure mode degrades to a safe default decision.
type Chain struct {
	llm llm.Provider
}

func NewChain(provider llm.Provider) *Chain {
	return &Chain{llm: provider}
}

func (c *Chain) Route(ctx context.Context, query string) Decision {
	patterns := DetectPatterns(query)

	raw, err := c.llm.Invoke(ctx, fmt.Sprintf(routerPromptTemplate, query), llm.WithMaxTokens(500))
	if err != nil {
		slog.Error("routing llm call failed", "error", err)
		return Decision{
			QueryType:      Retrieval,
			Confidence:     0.5,
			ShouldRetrieve: true,
			Metadata: map[string]any{
				"reasoning":         fmt.Sprintf("Error in routing: %v", err),
				"patterns_detected": patterns.flags(),
			},
		}
	}

	cand := parseReply(raw)
	dec, reasoning := applyOverrides(cand, patterns)
	dec.Metadata = map[string]any{
		"reasoning":         reasoning,
		"patterns_detected": patterns.flags(),
	}

	slog.Info("query routed",
		"query", query,
		"type", dec.QueryType,
		"confidence", dec.Confidence,
	)

	return dec
}

// candidate is the parsed LLM classification before overrides.
type candidate struct {
	queryType      QueryType
	confidence     float64
	shouldRetrieve bool
	retrievalQuery string
	reasoning      string
}

// applyOverrides replaces the LLM candidate when an unambiguous lexical
// pattern matched. Precedence is fixed: web search beats calculation beats
// direct beats retrieval; the first match wins and no other tie-break
// applies. With no match the candidate stands unmodified.
func applyOverrides(cand candidate, patterns Patterns) (Decision, string) {
	switch {
	case patterns.WebSearch:
		return Decision{QueryType: WebSearch, Confidence: 0.9, ShouldRetrieve: false, RetrievalQuery: cand.retrievalQuery},
			"Query requires current information"
	case patterns.Calculation:
		return Decision{QueryType: Calculation, Confidence: 0.95, ShouldRetrieve: false, RetrievalQuery: cand.retrievalQuery},
			"Query requires mathematical computation"
	case patterns.Direct:
		return Decision{QueryType: Direct, Confidence: 0.8, ShouldRetrieve: false, RetrievalQuery: cand.retrievalQuery},
			"Simple direct question"
	case patterns.Retrieval:
		return Decision{QueryType: Retrieval, Confidence: 0.9, ShouldRetrieve: true, RetrievalQuery: cand.retrievalQuery},
			"Query requires document search"
	default:
		return Decision{
			QueryType:      cand.queryType,
			Confidence:     cand.confidence,
			ShouldRetrieve: cand.shouldRetrieve,
			RetrievalQuery: cand.retrievalQuery,
		}, cand.reasoning
	}
}
