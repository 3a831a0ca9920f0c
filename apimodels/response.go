package apimodels

type QueryResponse struct {
	// Query is the raw query as received
	Query string `json:"query"`

	// ProcessedQuery is the query after the processing path ran
	ProcessedQuery string `json:"processedQuery"`

	// QueryType is the routed handling strategy
	QueryType string `json:"queryType"`

	// Confidence of the route decision (0-1)
	Confidence float64 `json:"confidence"`

	// Response is the best-effort human-readable answer, present even on failure
	Response string `json:"response"`

	Success bool `json:"success"`

	// SelectedStore names the vector store used for retrieval, if any
	SelectedStore string `json:"selectedStore,omitempty"`

	// FallbackUsed is set when the web-search path substituted a direct answer
	FallbackUsed bool `json:"fallbackUsed,omitempty"`

	// Metadata carries routing reasoning, detected patterns and tool extras
	Metadata map[string]any `json:"metadata,omitempty"`

	// Error holds the raw diagnostic message on failure
	Error string `json:"error,omitempty"`
}

type IngestResponse struct {
	// IDs of the points written to the store
	IDs []string `json:"ids"`

	Count int `json:"count"`
}
