// Package monitor records per-query outcomes and exposes aggregate metrics.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "querypilot",
		Subsystem: "pipeline",
		Name:      "queries_total",
		Help:      "Query outcomes: success, failure",
	}, []string{"outcome"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "querypilot",
		Subsystem: "pipeline",
		Name:      "query_duration_seconds",
		Help:      "Latency of successfully processed queries",
		Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	pathUsageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "querypilot",
		Subsystem: "pipeline",
		Name:      "path_usage_total",
		Help:      "Processing path selected per query",
	}, []string{"path"})
)

// ErrorRecord is one failed-query entry in the error log.
type ErrorRecord struct {
	Query     string    `json:"query"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics is a point-in-time read-only view of the monitor's state.
type Metrics struct {
	Total                 int64            `json:"total"`
	Successful            int64            `json:"successful"`
	Failed                int64            `json:"failed"`
	SuccessRate           float64          `json:"successRate"`
	AverageProcessingTime float64          `json:"averageProcessingTimeSeconds"`
	PathUsage             map[string]int64 `json:"pathUsage"`
	Errors                []ErrorRecord    `json:"errors"`
}

// Span ties a query's start time to its eventual outcome so concurrent
// queries never share a timer.
type Span struct {
	query string
	start time.Time
}

// Monitor holds the process-wide query metrics. All mutation goes through
// its methods, which serialize access; callers only ever see copies.
type Monitor struct {
	mu              sync.Mutex
	total           int64
	successful      int64
	failed          int64
	processingTimes []time.Duration
	pathUsage       map[string]int64
	errors          []ErrorRecord
}

func New() *Monitor {
	return &Monitor{
		pathUsage: make(map[string]int64),
	}
}

// StartProcessing counts the query and returns its span. Exactly one of
// RecordSuccess/RecordFailure must follow per span.
func (m *Monitor) StartProcessing(query string) *Span {
	m.mu.Lock()
	m.total++
	m.mu.Unlock()

	return &Span{query: query, start: time.Now()}
}

func (m *Monitor) RecordSuccess(span *Span, path string) {
	elapsed := time.Since(span.start)

	m.mu.Lock()
	m.successful++
	m.processingTimes = append(m.processingTimes, elapsed)
	m.pathUsage[path]++
	m.mu.Unlock()

	queriesTotal.WithLabelValues("success").Inc()
	queryDuration.Observe(elapsed.Seconds())
	pathUsageTotal.WithLabelValues(path).Inc()

	slog.Info("query processed successfully",
		"query", truncate(span.query, 100),
		"path", path,
		"duration", elapsed,
	)
}

func (m *Monitor) RecordFailure(span *Span, errMsg string) {
	m.mu.Lock()
	m.failed++
	m.errors = append(m.errors, ErrorRecord{
		Query:     span.query,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
	m.mu.Unlock()

	queriesTotal.WithLabelValues("failure").Inc()

	slog.Error("query processing failed",
		"query", truncate(span.query, 100),
		"error", errMsg,
	)
}

// Metrics returns a snapshot; the returned maps and slices are copies.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make(map[string]int64, len(m.pathUsage))
	for k, v := range m.pathUsage {
		paths[k] = v
	}
	errs := make([]ErrorRecord, len(m.errors))
	copy(errs, m.errors)

	var rate float64
	if m.total > 0 {
		rate = float64(m.successful) / float64(m.total)
	}

	var avg float64
	if len(m.processingTimes) > 0 {
		var sum time.Duration
		for _, d := range m.processingTimes {
			sum += d
		}
		avg = sum.Seconds() / float64(len(m.processingTimes))
	}

	return Metrics{
		Total:                 m.total,
		Successful:            m.successful,
		Failed:                m.failed,
		SuccessRate:           rate,
		AverageProcessingTime: avg,
		PathUsage:             paths,
		Errors:                errs,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
