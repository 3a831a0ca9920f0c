package router

import "strings"

var webSearchCues = []string{
	"latest", "recent", "current", "now", "today", "news",
	"update", "this week", "this month",
}

var calculationCues = []string{"calculate", "compute", "sum"}

var directPrefixes = []string{"what is", "who is", "tell me", "explain"}

var retrievalCues = []string{"document", "docs", "content", "find in"}

// Patterns holds the deterministic lexical flags for one query.
type Patterns struct {
	WebSearch   bool
	Calculation bool
	Direct      bool
	Retrieval   bool
}

// DetectPatterns flags a query against the fixed rule set. All checks run;
// precedence between categories is applied later in applyOverrides.
func DetectPatterns(query string) Patterns {
	lower := strings.ToLower(query)

	return Patterns{
		WebSearch:   containsAny(lower, webSearchCues),
		Calculation: strings.ContainsAny(query, "+-*/%") || containsAny(lower, calculationCues),
		Direct:      hasDirectShape(lower),
		Retrieval:   containsAny(lower, retrievalCues),
	}
}

// flags returns the detection map recorded in Decision metadata.
func (p Patterns) flags() map[string]bool {
	return map[string]bool{
		"is_web_search":  p.WebSearch,
		"is_calculation": p.Calculation,
		"is_direct":      p.Direct,
		"is_retrieval":   p.Retrieval,
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasDirectShape matches short queries opening with a direct-question prefix.
func hasDirectShape(lower string) bool {
	if len(strings.Fields(lower)) >= 6 {
		return false
	}
	for _, prefix := range directPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
