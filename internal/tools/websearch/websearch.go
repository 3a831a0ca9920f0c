// Package websearch implements web search with a primary DuckDuckGo HTML
// source, bounded retry, a Google News RSS fallback and result validation.
package websearch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/querypilot/querypilot/internal/retry"
)

const (
	defaultPrimaryURL = "https://html.duckduckgo.com/html/"
	defaultNewsURL    = "https://news.google.com/rss/search"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	minSnippetLength = 50
)

var errNoResults = errors.New("no results")

// Result is one validated search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	Date    string `json:"date,omitempty"`
}

type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration

	// PrimaryURL and NewsURL override the search endpoints (tests).
	PrimaryURL string
	NewsURL    string
}

type Tool struct {
	client     *http.Client
	policy     retry.Policy
	userAgent  string
	primaryURL string
	newsURL    string
}

func New(cfg Config) *Tool {
	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = uint64(cfg.MaxRetries)
	}
	if cfg.BaseDelay > 0 {
		policy.BaseDelay = cfg.BaseDelay
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	primary := cfg.PrimaryURL
	if primary == "" {
		primary = defaultPrimaryURL
	}
	news := cfg.NewsURL
	if news == "" {
		news = defaultNewsURL
	}
	return &Tool{
		client:     &http.Client{Timeout: timeout},
		policy:     policy,
		userAgent:  defaultUserAgent,
		primaryURL: primary,
		newsURL:    news,
	}
}

// Search tries the primary source under the retry policy, falls through to
// the news source, validates what came back and returns at most maxResults.
// Exhausting both sources yields an empty slice, never an error; the caller
// decides what an empty result means.
func (t *Tool) Search(ctx context.Context, query string, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = 3
	}

	var all []Result

	attempt := 0
	err := t.policy.Run(ctx, func() error {
		attempt++
		slog.Info("duckduckgo search attempt", "attempt", attempt, "query", query)
		results, err := t.duckduckgoSearch(ctx, query)
		if err != nil {
			slog.Warn("duckduckgo search failed", "attempt", attempt, "error", err)
			return err
		}
		if len(results) == 0 {
			return errNoResults
		}
		all = results
		return nil
	})
	if err != nil {
		slog.Info("trying google news fallback", "query", query)
		news, err := t.googleNewsSearch(ctx, query, maxResults)
		if err != nil {
			slog.Error("google news search failed", "error", err)
		}
		all = news
	}

	valid := validateResults(all)
	if len(valid) == 0 {
		slog.Warn("no valid search results", "query", query)
		return nil
	}
	if len(valid) > maxResults {
		valid = valid[:maxResults]
	}
	slog.Info("web search completed", "query", query, "results", len(valid))
	return valid
}

// validateResults drops results missing required fields, with short
// snippets, or with non-ASCII titles. Invalid entries are dropped silently,
// never substituted.
func validateResults(results []Result) []Result {
	valid := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Title == "" || r.Link == "" || r.Snippet == "" {
			continue
		}
		if len(r.Snippet) < minSnippetLength {
			continue
		}
		if !asciiPrintable(r.Title) {
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

func asciiPrintable(s string) bool {
	if len(s) > 100 {
		s = s[:100]
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return false
		}
	}
	return true
}
