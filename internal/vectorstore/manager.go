package vectorstore

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrNoStores is returned when store selection runs with nothing registered.
var ErrNoStores = errors.New("no vector stores configured")

// Manager holds the named stores and coordinates between them.
type Manager struct {
	mu     sync.RWMutex
	stores map[string]Searcher
}

func NewManager() *Manager {
	return &Manager{stores: make(map[string]Searcher)}
}

func (m *Manager) AddStore(name string, store Searcher) {
	m.mu.Lock()
	m.stores[name] = store
	m.mu.Unlock()
	slog.Info("vector store registered", "name", name)
}

func (m *Manager) Get(name string) (Searcher, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stores[name]
	return s, ok
}

// List returns store names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchAll queries every store. A failing store contributes an empty result
// set rather than failing the whole sweep.
func (m *Manager) SearchAll(ctx context.Context, query string, limit int) map[string][]SearchResult {
	m.mu.RLock()
	snapshot := make(map[string]Searcher, len(m.stores))
	for name, s := range m.stores {
		snapshot[name] = s
	}
	m.mu.RUnlock()

	results := make(map[string][]SearchResult, len(snapshot))
	for name, store := range snapshot {
		hits, err := store.Search(ctx, query, limit)
		if err != nil {
			slog.Error("store search failed", "store", name, "error", err)
			results[name] = nil
			continue
		}
		results[name] = hits
	}
	return results
}

// DetermineBestStore picks the store for a query: an explicit valid
// preference wins; otherwise every store is probed with limit=1 and the
// highest-scoring store is chosen, falling back to the first store by name.
func (m *Manager) DetermineBestStore(ctx context.Context, query, preference string) (string, error) {
	if preference != "" {
		if _, ok := m.Get(preference); ok {
			return preference, nil
		}
		slog.Warn("store preference not found, selecting by score", "preference", preference)
	}

	names := m.List()
	if len(names) == 0 {
		return "", ErrNoStores
	}

	all := m.SearchAll(ctx, query, 1)

	best := ""
	bestScore := -1.0
	for _, name := range names {
		hits := all[name]
		if len(hits) > 0 && hits[0].Score > bestScore {
			bestScore = hits[0].Score
			best = name
		}
	}
	if best == "" {
		best = names[0]
	}
	return best, nil
}
