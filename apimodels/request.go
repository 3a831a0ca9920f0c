package apimodels

type QueryRequest struct {
	// Query is the natural language query to route and answer
	Query string `json:"query"`

	// Store optionally pins retrieval to a named vector store
	Store string `json:"store,omitempty"`

	// Optional parameters to control generation behavior
	Options QueryOptions `json:"options,omitempty"`
}

type QueryOptions struct {
	// Model specifies which LLM model to use (e.g. "gpt-4o-mini")
	Model string `json:"model,omitempty"`

	// MaxTokens limits the LLM response length
	MaxTokens int64 `json:"maxTokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `json:"temperature,omitempty"`
}

type IngestRequest struct {
	// Texts are the pre-chunked document texts to index
	Texts []string `json:"texts"`

	// Metadata carries one payload map per text (optional)
	Metadata []map[string]any `json:"metadata,omitempty"`
}
