package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func acmeEntry() entity.CatalogueEntry {
	return entity.CatalogueEntry{
		FileName: "acme.pdf",
		Language: "en",
		Method:   entity.MethodNative,
		RawText:  "Acme Foods catalogue. Ghee 500ml, Ghee 1L, Mustard Oil 1L",
		Payload:  `[{"product_name":"Ghee","description":"500ml"},{"product_name":"Ghee","description":"1L"},{"product_name":"Mustard Oil","description":"1L"}]`,
		Records: []entity.ProductRecord{
			{ProductName: "Ghee", CompanyName: "Acme", Website: "www.acme.sg", Description: "500ml jar", CatalogueLink: "acme.pdf"},
			{ProductName: "Ghee", CompanyName: "Acme", Website: "www.acme.sg", Description: "1L jar", CatalogueLink: "acme.pdf"},
			{ProductName: "Mustard Oil", CompanyName: "Acme", Website: "www.acme.sg", Description: "1L bottle", CatalogueLink: "acme.pdf"},
		},
	}
}

func riceEntry() entity.CatalogueEntry {
	return entity.CatalogueEntry{
		FileName: "rice.pdf",
		RawText:  "Golden Rice Co. Basmati rice 5kg",
		Payload:  `[{"product_name":"Basmati Rice","description":"5kg"}]`,
		Records: []entity.ProductRecord{
			{ProductName: "Basmati Rice", CompanyName: "Golden Rice Co", Description: "5kg bag", CatalogueLink: "rice.pdf"},
		},
	}
}

func candidateFiles(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.FileName)
	}
	return out
}

func countRecords(cs []Candidate) int {
	n := 0
	for _, c := range cs {
		n += len(c.Records)
	}
	return n
}

// rowStoreContract exercises the behaviour every row-shaped store shares.
func rowStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	require.Equal(t, ShapeRow, s.Shape())
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Replace(ctx, []entity.CatalogueEntry{acmeEntry(), riceEntry()}))

	got, err := s.CandidateSearch(ctx, "ghee")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme.pdf"}, candidateFiles(got))
	require.Equal(t, 2, countRecords(got))
	for _, r := range got[0].Records {
		assert.Equal(t, "Ghee", r.ProductName)
		assert.Equal(t, "www.acme.sg", r.Website)
		assert.Equal(t, "acme.pdf", r.CatalogueLink)
	}

	got, err = s.CandidateSearch(ctx, "basmati")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice.pdf"}, candidateFiles(got))

	// Index replaces the rows of one file only.
	updated := acmeEntry()
	updated.Records = updated.Records[:1]
	require.NoError(t, s.Index(ctx, updated))
	got, err = s.CandidateSearch(ctx, "ghee")
	require.NoError(t, err)
	assert.Equal(t, 1, countRecords(got))
	got, err = s.CandidateSearch(ctx, "basmati")
	require.NoError(t, err)
	assert.Equal(t, 1, countRecords(got))

	// Replace clears everything that is not in the new batch.
	require.NoError(t, s.Replace(ctx, []entity.CatalogueEntry{riceEntry()}))
	got, err = s.CandidateSearch(ctx, "ghee")
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = s.CandidateSearch(ctx, "basmati")
	require.NoError(t, err)
	assert.Equal(t, 1, countRecords(got))
}

// documentStoreContract exercises the behaviour every document-shaped store shares.
func documentStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	require.Equal(t, ShapeDocument, s.Shape())
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Replace(ctx, []entity.CatalogueEntry{acmeEntry(), riceEntry()}))

	got, err := s.CandidateSearch(ctx, "ghee")
	require.NoError(t, err)
	require.Equal(t, []string{"acme.pdf"}, candidateFiles(got))
	assert.Equal(t, acmeEntry().Payload, got[0].Payload)
	assert.Empty(t, got[0].Records)

	// Re-indexing a file upserts instead of adding a second document.
	updated := acmeEntry()
	updated.Payload = `[{"product_name":"Ghee","description":"2L"}]`
	require.NoError(t, s.Index(ctx, updated))
	got, err = s.CandidateSearch(ctx, "ghee")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, updated.Payload, got[0].Payload)

	got, err = s.CandidateSearch(ctx, "basmati")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice.pdf"}, candidateFiles(got))

	got, err = s.CandidateSearch(ctx, "durian")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "data", "products.db"), quietLogger())
	require.NoError(t, err)
	defer s.Close()
	rowStoreContract(t, s)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), ":memory:", quietLogger())
	require.NoError(t, err)
	defer s.Close()
	rowStoreContract(t, s)
}

func TestSQLiteStore_QueryIsQuoted(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "products.db"), quietLogger())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Replace(ctx, []entity.CatalogueEntry{acmeEntry()}))

	for _, q := range []string{`ghee"`, "ghee AND", "NOT ghee", "ghee*", "(ghee"} {
		_, err := s.CandidateSearch(ctx, q)
		assert.NoError(t, err, q)
	}
	got, err := s.CandidateSearch(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"ghee"`, ftsQuery(" ghee "))
	assert.Equal(t, `"mustard" "oil"`, ftsQuery("mustard oil"))
	assert.Equal(t, `"say" """hi"""`, ftsQuery(`say "hi"`))
	assert.Equal(t, "", ftsQuery("  "))
}

func TestBleveStore(t *testing.T) {
	s, err := NewBleveStore("", quietLogger())
	require.NoError(t, err)
	defer s.Close()
	rowStoreContract(t, s)
}

func TestBleveStore_OnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalogue.bleve")

	s, err := NewBleveStore(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, []entity.CatalogueEntry{riceEntry()}))
	require.NoError(t, s.Close())

	s, err = NewBleveStore(path, quietLogger())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.CandidateSearch(ctx, "basmati")
	require.NoError(t, err)
	assert.Equal(t, 1, countRecords(got))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(quietLogger())
	documentStoreContract(t, s)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(quietLogger())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Index(ctx, acmeEntry())
		}()
		go func() {
			defer wg.Done()
			_, _ = s.CandidateSearch(ctx, "ghee")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}

func TestStoreError(t *testing.T) {
	err := storeErr(BackendSQLite, "search", errors.New("disk I/O error"))
	assert.True(t, errors.Is(err, common.ErrStore))
	assert.Contains(t, err.Error(), "sqlite store: search: disk I/O error")
	assert.NoError(t, storeErr(BackendSQLite, "search", nil))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, common.StoreConfig{Backend: BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, common.StoreConfig{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "p.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, common.StoreConfig{Backend: BackendBleve}, nil)
	require.NoError(t, err)
	assert.IsType(t, &BleveStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, common.StoreConfig{Backend: "cassandra"}, nil)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}
