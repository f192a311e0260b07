package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/metrics"
	"github.com/joseph-ayodele/catalogue-search/internal/repository"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spyStore records candidate searches and returns canned candidates.
type spyStore struct {
	repository.Store
	shape      repository.Shape
	candidates []repository.Candidate
	err        error
	queries    []string
}

func (s *spyStore) Shape() repository.Shape { return s.shape }

func (s *spyStore) CandidateSearch(_ context.Context, q string) ([]repository.Candidate, error) {
	s.queries = append(s.queries, q)
	return s.candidates, s.err
}

// mapCache keys entries by generation like the Redis cache does.
type mapCache struct {
	data map[string][]entity.ProductRecord
	gen  int
	sets int
}

func (m *mapCache) Get(_ context.Context, q string) (string, []entity.ProductRecord, bool, error) {
	key := fmt.Sprintf("%d:%s", m.gen, q)
	r, ok := m.data[key]
	return key, r, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, r []entity.ProductRecord) error {
	m.sets++
	m.data[key] = r
	return nil
}

func (m *mapCache) Invalidate(context.Context) error {
	m.gen++
	return nil
}

// invalidatingStore bumps the cache generation while a search is in flight,
// standing in for an ingest that lands between lookup and store.
type invalidatingStore struct {
	spyStore
	cache *mapCache
}

func (s *invalidatingStore) CandidateSearch(ctx context.Context, q string) ([]repository.Candidate, error) {
	out, err := s.spyStore.CandidateSearch(ctx, q)
	_ = s.cache.Invalidate(ctx)
	return out, err
}

func indexed(t *testing.T, entries ...entity.CatalogueEntry) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore(quietLogger())
	require.NoError(t, s.Replace(context.Background(), entries))
	return s
}

func TestSearch_GheeScenario(t *testing.T) {
	store := indexed(t, entity.CatalogueEntry{
		FileName: "acme.pdf",
		RawText:  "ACME FOODS\nGhee 500ml\nMustard Oil 1L\nwww.acme.sg",
		Payload: "```json\n" + `[
  {"product_name":"Ghee","company_name":"Acme Foods","website":"www.acme.sg","description":"Ghee 500ml"},
  {"product_name":"Mustard Oil","description":"Mustard Oil 1L"}
]` + "\n```",
	})
	p := NewPipeline(store, quietLogger())

	got, err := p.Search(context.Background(), "ghee")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.ProductRecord{
		ProductName:   "Ghee",
		CompanyName:   "Acme Foods",
		Website:       "www.acme.sg",
		Description:   "Ghee 500ml",
		CatalogueLink: "acme.pdf",
	}, got[0])
}

func TestSearch_BlankQueryNeverReachesStore(t *testing.T) {
	store := &spyStore{shape: repository.ShapeDocument}
	p := NewPipeline(store, quietLogger())

	for _, q := range []string{"", "   ", "\t\n"} {
		got, err := p.Search(context.Background(), q)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Empty(t, store.queries)
}

func TestSearch_PassesTrimmedQueryToStore(t *testing.T) {
	store := &spyStore{shape: repository.ShapeRow}
	_, err := NewPipeline(store, quietLogger()).Search(context.Background(), "  Mustard Oil ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mustard Oil"}, store.queries)
}

func TestSearch_DecodeFailureIsIsolated(t *testing.T) {
	store := indexed(t,
		entity.CatalogueEntry{FileName: "a.pdf", RawText: "rice", Payload: `[{"product_name":"Basmati Rice","description":"5kg"}]`},
		entity.CatalogueEntry{FileName: "b.pdf", RawText: "rice", Payload: "Sorry, I could not parse this catalogue."},
		entity.CatalogueEntry{FileName: "c.pdf", RawText: "rice", Payload: `{"product_name":"Rice"}`},
		entity.CatalogueEntry{FileName: "d.pdf", RawText: "rice", Payload: "```json\n[{\"product_name\":\"Brown Rice\"}]\n```"},
	)
	got, err := NewPipeline(store, quietLogger()).Search(context.Background(), "rice")
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.ProductName)
	}
	assert.ElementsMatch(t, []string{"Basmati Rice", "Brown Rice"}, names)
}

func TestSearch_ConfirmationFilterOnRows(t *testing.T) {
	store := &spyStore{
		shape: repository.ShapeRow,
		candidates: []repository.Candidate{{
			FileName: "acme.pdf",
			Records: []entity.ProductRecord{
				{ProductName: "Ghee", Description: "500ml", CompanyName: "Acme"},
				{ProductName: "Ghee", Description: "1L"},
				{ProductName: "Mustard Oil", Description: "1L", CompanyName: "Acme"},
				{ProductName: "Butter", Description: "made from GHEE"},
			},
		}},
	}
	got, err := NewPipeline(store, quietLogger()).Search(context.Background(), "Ghee")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		hay := strings.ToLower(r.ProductName + " " + r.Description)
		assert.Contains(t, hay, "ghee")
		assert.Equal(t, "Acme", r.CompanyName)
		assert.Equal(t, "acme.pdf", r.CatalogueLink)
	}
	// pack-size variants are both kept
	assert.NotEqual(t, got[0].Key(), got[1].Key())
	// candidate records are not modified in place
	assert.Empty(t, store.candidates[0].Records[1].CompanyName)
}

func TestSearch_NoMatchIsEmptyNotError(t *testing.T) {
	store := indexed(t, entity.CatalogueEntry{FileName: "a.pdf", RawText: "ghee", Payload: `[{"product_name":"Butter","description":"ghee-free"}]`})
	got, err := NewPipeline(store, quietLogger()).Search(context.Background(), "durian")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_StoreError(t *testing.T) {
	store := &spyStore{shape: repository.ShapeDocument, err: &repository.StoreError{Backend: "mongo", Op: "search", Err: errors.New("connection refused")}}
	reg := prometheus.NewRegistry()
	_, err := NewPipeline(store, quietLogger(), WithMetrics(metrics.New(reg))).Search(context.Background(), "ghee")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStore))
}

func TestSearch_Cache(t *testing.T) {
	store := &spyStore{
		shape:      repository.ShapeRow,
		candidates: []repository.Candidate{{FileName: "a.pdf", Records: []entity.ProductRecord{{ProductName: "Ghee"}}}},
	}
	c := &mapCache{data: map[string][]entity.ProductRecord{}}
	p := NewPipeline(store, quietLogger(), WithCache(c))

	first, err := p.Search(context.Background(), "ghee")
	require.NoError(t, err)
	second, err := p.Search(context.Background(), "ghee")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.queries, 1)
	assert.Equal(t, 1, c.sets)
}

func TestSearch_CacheWriteDuringInvalidationIsNotServed(t *testing.T) {
	c := &mapCache{data: map[string][]entity.ProductRecord{}}
	store := &invalidatingStore{
		spyStore: spyStore{
			shape:      repository.ShapeRow,
			candidates: []repository.Candidate{{FileName: "a.pdf", Records: []entity.ProductRecord{{ProductName: "Ghee"}}}},
		},
		cache: c,
	}
	p := NewPipeline(store, quietLogger(), WithCache(c))

	_, err := p.Search(context.Background(), "ghee")
	require.NoError(t, err)
	assert.Equal(t, 1, c.gen)
	assert.Contains(t, c.data, "0:ghee")
	assert.NotContains(t, c.data, "1:ghee")

	_, err = p.Search(context.Background(), "ghee")
	require.NoError(t, err)
	assert.Len(t, store.queries, 2, "result stored before the invalidation must not be served after it")
}
