package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/querypilot/querypilot/apimodels"
	"github.com/querypilot/querypilot/internal/query"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req apimodels.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	slog.Debug("received query request", "request", req)

	result, err := s.pipeline.ProcessQuery(r.Context(), req)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("query request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	storeName := chi.URLParam(r, "store")

	store, ok := s.stores.Get(storeName)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown store %q", storeName), http.StatusNotFound)
		return
	}

	var req apimodels.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(req.Texts) == 0 {
		http.Error(w, "texts must not be empty", http.StatusBadRequest)
		return
	}

	ids, err := store.AddTexts(r.Context(), req.Texts, req.Metadata)
	if err != nil {
		slog.Error("ingest request failed", "store", storeName, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, apimodels.IngestResponse{IDs: ids, Count: len(ids)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"stores": s.stores.List(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.monitor.Metrics())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
