package repository

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// MemoryStore is a document-shaped store held in process memory. Candidate
// search matches documents whose raw text contains any query word,
// case-insensitively, like a text index would.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entity.CatalogueEntry
	logger  *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{entries: make(map[string]entity.CatalogueEntry), logger: logger}
}

func (s *MemoryStore) Shape() Shape { return ShapeDocument }

func (s *MemoryStore) Index(_ context.Context, entry entity.CatalogueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.FileName] = entry
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, entries []entity.CatalogueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.FileName] = e
	}
	s.logger.Debug("store.replace.ok", "entries", len(entries))
	return nil
}

func (s *MemoryStore) CandidateSearch(ctx context.Context, query string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(BackendMemory, "search", err)
	}
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Candidate
	for _, e := range s.entries {
		text := strings.ToLower(e.RawText)
		for _, t := range terms {
			if strings.Contains(text, t) {
				out = append(out, Candidate{FileName: e.FileName, Payload: e.Payload})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	if len(out) > CandidateLimit {
		out = out[:CandidateLimit]
	}
	return out, nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
