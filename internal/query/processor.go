package query

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrEmptyQuery is returned when a caller hands the processor a blank query.
// This is a contract violation by the caller, not a runtime condition, and
// is the one processor failure that propagates.
var ErrEmptyQuery = errors.New("query must not be empty")

// ProcessingResult wraps one query's analysis, chosen path and template.
type ProcessingResult struct {
	ProcessedQuery    string
	Analysis          Analysis
	SuggestedTemplate string
	Path              Path
	Metadata          map[string]any
}

// Processor runs the analyzer, selects a processing path and a template.
type Processor struct {
	analyzer *Analyzer
}

func NewProcessor() *Processor {
	return &Processor{analyzer: NewAnalyzer()}
}

func (p *Processor) Process(query string) (*ProcessingResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	analysis := p.analyzer.Analyze(query)
	path := determinePath(analysis)
	processed := processThroughPath(query, path)
	template := TemplateFor(path, analysis)

	slog.Debug("query processed",
		"path", path,
		"complexity", analysis.Complexity,
		"entities", len(analysis.Entities),
	)

	return &ProcessingResult{
		ProcessedQuery:    processed,
		Analysis:          analysis,
		SuggestedTemplate: template,
		Path:              path,
		Metadata: map[string]any{
			"original_query":   query,
			"processing_path":  string(path),
			"analysis_results": analysis.Metadata,
			"timestamp":        time.Now().Format(time.RFC3339),
		},
	}, nil
}

// determinePath is a fixed decision tree over the analysis, evaluated in
// this exact order.
func determinePath(analysis Analysis) Path {
	switch {
	case analysis.Complexity > 0.7:
		return PathAdvanced
	case analysis.HasQuestionMark():
		return PathQuestion
	case len(analysis.Entities) > 0:
		return PathEntityFocused
	default:
		return PathStandard
	}
}

// processThroughPath normalizes the query for the chosen path. All paths
// currently share whitespace-collapse cleaning.
func processThroughPath(query string, _ Path) string {
	return strings.Join(strings.Fields(query), " ")
}
