// Package router classifies queries into one of five handling strategies by
// combining an LLM suggestion with deterministic lexical overrides.
package router

import (
	"fmt"
	"strings"
)

// QueryType is the closed set of handling strategies.
type QueryType string

const (
	Retrieval     QueryType = "retrieval"     // needs context from documents
	Direct        QueryType = "direct"        // can be answered directly
	Calculation   QueryType = "calculation"   // requires mathematical computation
	WebSearch     QueryType = "web_search"    // needs web search
	Clarification QueryType = "clarification" // needs more information
)

func (t QueryType) String() string { return string(t) }

// ParseQueryType maps a (case-insensitive) label to a QueryType.
func ParseQueryType(s string) (QueryType, error) {
	switch QueryType(strings.ToLower(strings.TrimSpace(s))) {
	case Retrieval:
		return Retrieval, nil
	case Direct:
		return Direct, nil
	case Calculation:
		return Calculation, nil
	case WebSearch:
		return WebSearch, nil
	case Clarification:
		return Clarification, nil
	default:
		return "", fmt.Errorf("unknown query type %q", s)
	}
}

// Decision is the routing outcome. QueryType is always one of the five
// enumerated values, even when classification failed.
type Decision struct {
	QueryType      QueryType
	Confidence     float64
	ShouldRetrieve bool
	RetrievalQuery string
	Metadata       map[string]any
}
