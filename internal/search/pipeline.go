// Package search runs the two-stage catalogue search: an index-level
// candidate search in the store followed by an exact confirmation filter.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
	"github.com/joseph-ayodele/catalogue-search/internal/metrics"
	"github.com/joseph-ayodele/catalogue-search/internal/repository"
)

// Cache stores confirmed results per query. Get resolves the storage key
// once; Set must reuse it so results never outlive an invalidation that
// happened while they were computed.
type Cache interface {
	Get(ctx context.Context, query string) (key string, records []entity.ProductRecord, ok bool, err error)
	Set(ctx context.Context, key string, records []entity.ProductRecord) error
}

type Pipeline struct {
	store   repository.Store
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Pipeline)

func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func NewPipeline(store repository.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{store: store, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Search returns the records whose product name or description contains the
// query, case-insensitively. A blank query returns an empty slice without
// touching the store. The result is never nil on success.
func (p *Pipeline) Search(ctx context.Context, query string) ([]entity.ProductRecord, error) {
	start := time.Now()
	q := strings.TrimSpace(query)
	if q == "" {
		return []entity.ProductRecord{}, nil
	}

	var cacheKey string
	if p.cache != nil {
		key, cached, ok, err := p.cache.Get(ctx, q)
		switch {
		case err != nil:
			p.logger.Warn("search.cache.get_failed", "error", err)
		case ok:
			p.metrics.SearchObserved(metrics.OutcomeCache, 0, time.Since(start))
			return cached, nil
		default:
			cacheKey = key
		}
	}

	candidates, err := p.store.CandidateSearch(ctx, q)
	if err != nil {
		p.logger.Error("search.store.failed", "query", q, "error", err)
		p.metrics.SearchObserved(metrics.OutcomeError, 0, time.Since(start))
		return nil, err
	}

	needle := strings.ToLower(q)
	out := []entity.ProductRecord{}
	for _, c := range candidates {
		for _, r := range p.recordsOf(c) {
			if r.Confirms(needle) {
				out = append(out, r)
			}
		}
	}

	if cacheKey != "" {
		if err := p.cache.Set(ctx, cacheKey, out); err != nil {
			p.logger.Warn("search.cache.set_failed", "error", err)
		}
	}

	outcome := metrics.OutcomeOK
	if len(out) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	p.metrics.SearchObserved(outcome, len(candidates), time.Since(start))
	p.logger.Info("search.ok",
		"query", q,
		"candidates", len(candidates),
		"results", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// recordsOf turns one candidate into records. An undecodable payload yields
// no records and does not affect other candidates.
func (p *Pipeline) recordsOf(c repository.Candidate) []entity.ProductRecord {
	var records []entity.ProductRecord
	if p.store.Shape() == repository.ShapeDocument {
		decoded, err := llm.DecodeProducts(c.Payload)
		if err != nil {
			p.logger.Warn("search.decode_failed", "file", c.FileName, "error", llm.WithFile(err, c.FileName))
			return nil
		}
		records = decoded
	} else {
		records = append(records, c.Records...)
	}
	records = entity.DedupeRecords(records)
	entity.FillCatalogueLink(records, c.FileName)
	entity.PropagateCompanyFields(records)
	return records
}
