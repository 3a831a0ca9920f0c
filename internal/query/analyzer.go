// Package query implements query analysis, processing-path selection and
// response template lookup.
package query

import (
	"regexp"
	"strings"
)

var (
	wordRe   = regexp.MustCompile(`\b\w+\b`)
	entityRe = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	andRe    = regexp.MustCompile(`\band\b`)
	orRe     = regexp.MustCompile(`\bor\b`)
	digitRe  = regexp.MustCompile(`\d`)
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "is": {},
}

var temporalIndicators = []string{"recent", "latest", "last", "current", "now", "today"}

var calculationVerbs = []string{"calculate", "compute", "sum"}

const arithmeticSymbols = "+-*/%"

// TemporalAspects flags whether a query asks about current information.
type TemporalAspects struct {
	RequiresCurrentInfo bool     `json:"requiresCurrentInfo"`
	Indicators          []string `json:"indicators,omitempty"`
}

// CalculationAspects flags whether a query looks arithmetic.
type CalculationAspects struct {
	RequiresCalculation bool `json:"requiresCalculation"`
	HasNumbers          bool `json:"hasNumbers"`
}

// Analysis is the immutable result of analyzing one query.
type Analysis struct {
	Complexity  float64            `json:"complexity"`
	Keywords    []string           `json:"keywords"`
	Entities    []string           `json:"entities"`
	Topic       string             `json:"topic,omitempty"`
	Temporal    TemporalAspects    `json:"temporal"`
	Calculation CalculationAspects `json:"calculation"`
	Metadata    map[string]any     `json:"metadata"`
}

// HasQuestionMark reports the metadata question-mark flag.
func (a Analysis) HasQuestionMark() bool {
	v, _ := a.Metadata["has_question_mark"].(bool)
	return v
}

// Analyzer extracts lightweight lexical features from raw query text.
// Analyze is a total function over strings and depends only on its input,
// so equal inputs always produce equal analyses.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(query string) Analysis {
	return Analysis{
		Complexity:  calculateComplexity(query),
		Keywords:    extractKeywords(query),
		Entities:    entityRe.FindAllString(query, -1),
		Temporal:    temporalAspects(query),
		Calculation: calculationAspects(query),
		Metadata: map[string]any{
			"length":            len(query),
			"word_count":        len(strings.Fields(query)),
			"has_question_mark": strings.Contains(query, "?"),
		},
	}
}

// extractKeywords lowercases, splits on non-word boundaries and drops
// stopwords. Order follows first occurrence; duplicates are kept.
func extractKeywords(query string) []string {
	words := wordRe.FindAllString(strings.ToLower(query), -1)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// calculateComplexity scores the fraction of four boolean signals satisfied.
func calculateComplexity(query string) float64 {
	factors := []bool{
		len(query) > 100,
		strings.Contains(query, "?"),
		andRe.MatchString(query),
		orRe.MatchString(query),
	}
	n := 0
	for _, f := range factors {
		if f {
			n++
		}
	}
	return float64(n) / float64(len(factors))
}

func temporalAspects(query string) TemporalAspects {
	lower := strings.ToLower(query)
	var matched []string
	for _, w := range temporalIndicators {
		if strings.Contains(lower, w) {
			matched = append(matched, w)
		}
	}
	return TemporalAspects{
		RequiresCurrentInfo: len(matched) > 0,
		Indicators:          matched,
	}
}

func calculationAspects(query string) CalculationAspects {
	lower := strings.ToLower(query)
	requires := strings.ContainsAny(query, arithmeticSymbols)
	if !requires {
		for _, v := range calculationVerbs {
			if strings.Contains(lower, v) {
				requires = true
				break
			}
		}
	}
	return CalculationAspects{
		RequiresCalculation: requires,
		HasNumbers:          digitRe.MatchString(query),
	}
}
