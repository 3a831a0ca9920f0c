package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SearchResult is one scored hit from a store.
type SearchResult struct {
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Searcher is the store contract the pipeline consumes.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	AddTexts(ctx context.Context, texts []string, metadata []map[string]any) ([]string, error)
}

// Store is a minimal Qdrant REST client bound to one collection, with query
// embedding handled through the configured Embedder.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
	embedder   Embedder
	client     *http.Client
}

type StoreConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg StoreConfig, embedder Embedder) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// AddTexts embeds and upserts texts with one metadata payload each,
// returning the generated point IDs.
func (s *Store) AddTexts(ctx context.Context, texts []string, metadata []map[string]any) ([]string, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to add")
	}
	if metadata != nil && len(metadata) != len(texts) {
		return nil, errors.New("texts and metadata length mismatch")
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding texts: %w", err)
	}

	ids := make([]string, len(texts))
	points := make([]map[string]any, len(texts))
	for i, text := range texts {
		ids[i] = uuid.NewString()
		payload := map[string]any{"content": text}
		if metadata != nil {
			for k, v := range metadata[i] {
				payload[k] = v
			}
		}
		points[i] = map[string]any{
			"id":      ids[i],
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection)
	if err := s.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil); err != nil {
		return nil, err
	}

	slog.Info("texts added to store", "collection", s.collection, "count", len(texts))
	return ids, nil
}

// Search embeds the query and runs a similarity search against the
// collection, returning hits in score order.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 3
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	body := map[string]any{
		"vector":       vectors[0],
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	if err := s.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		text, _ := r.Payload["content"].(string)
		results = append(results, SearchResult{
			Score:    r.Score,
			Text:     text,
			Metadata: r.Payload,
		})
	}
	return results, nil
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
