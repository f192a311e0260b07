package repository

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// Shape tells the search pipeline how to read candidates.
type Shape string

const (
	// ShapeDocument stores one entry per file with the undecoded payload.
	ShapeDocument Shape = "document"
	// ShapeRow stores one row per product record.
	ShapeRow Shape = "row"
)

// CandidateLimit caps the rows or documents returned by one candidate search.
const CandidateLimit = 200

// Candidate is one hit of the index-level search. Document-shaped stores fill
// Payload; row-shaped stores fill Records.
type Candidate struct {
	FileName string
	Payload  string
	Records  []entity.ProductRecord
}

// Store is the catalogue store contract shared by all backends.
type Store interface {
	Shape() Shape
	// Index inserts or replaces the entry for one file.
	Index(ctx context.Context, entry entity.CatalogueEntry) error
	// Replace swaps in a full batch. Row-shaped stores clear every row first;
	// concurrent searches see either the old or the new contents.
	Replace(ctx context.Context, entries []entity.CatalogueEntry) error
	// CandidateSearch runs the backend's native full-text operator.
	CandidateSearch(ctx context.Context, query string) ([]Candidate, error)
	Ping(ctx context.Context) error
	Close() error
}

// StoreError wraps a backend failure. It matches common.ErrStore.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == common.ErrStore }

func storeErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Backend: backend, Op: op, Err: err}
}
