package router

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// rawReply is the strict schema expected from the classification LLM call.
// Confidence and should_retrieve tolerate quoted scalars since models
// occasionally quote them despite instructions.
type rawReply struct {
	QueryType      string     `json:"query_type"`
	Confidence     *flexFloat `json:"confidence"`
	ShouldRetrieve *flexBool  `json:"should_retrieve"`
	RetrievalQuery string     `json:"retrieval_query"`
	Reasoning      string     `json:"reasoning"`
}

// parseReply is the single parser for classification replies. It has exactly
// one fallback path: any malformed payload yields the default candidate
// (retrieval, 0.5, should_retrieve, empty retrieval query).
func parseReply(raw string) candidate {
	var reply rawReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		slog.Error("failed to parse routing reply", "error", err, "reply", raw)
		return defaultCandidate()
	}

	queryType := reply.QueryType
	if queryType == "" {
		queryType = string(Retrieval)
	}
	parsed, err := ParseQueryType(queryType)
	if err != nil {
		slog.Error("routing reply carried unknown query type", "value", reply.QueryType)
		return defaultCandidate()
	}

	confidence := 0.5
	if reply.Confidence != nil {
		confidence = float64(*reply.Confidence)
	}

	shouldRetrieve := true
	if reply.ShouldRetrieve != nil {
		shouldRetrieve = bool(*reply.ShouldRetrieve)
	}

	reasoning := reply.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided."
	}

	return candidate{
		queryType:      parsed,
		confidence:     confidence,
		shouldRetrieve: shouldRetrieve,
		retrievalQuery: reply.RetrievalQuery,
		reasoning:      reasoning,
	}
}

func defaultCandidate() candidate {
	return candidate{
		queryType:      Retrieval,
		confidence:     0.5,
		shouldRetrieve: true,
		retrievalQuery: "",
		reasoning:      "Failed to parse response.",
	}
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}
