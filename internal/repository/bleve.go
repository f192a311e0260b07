package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

var rowFields = []string{"product_name", "company_name", "contact_number", "website", "description", "catalogue_link", "file_name"}

// BleveStore is a row-shaped store on an embedded bleve index. An empty path
// keeps the index in memory.
type BleveStore struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

func NewBleveStore(path string, logger *slog.Logger) (*BleveStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		idx bleve.Index
		err error
	)
	switch {
	case path == "":
		idx, err = bleve.NewMemOnly(rowMapping())
	default:
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(path, rowMapping())
		}
	}
	if err != nil {
		return nil, storeErr(BackendBleve, "open", err)
	}
	return &BleveStore{index: idx, logger: logger}, nil
}

// rowMapping indexes the text columns into _all; file_name is kept verbatim
// so a file's rows can be found again for replacement.
func rowMapping() mapping.IndexMapping {
	file := bleve.NewTextFieldMapping()
	file.Analyzer = keyword.Name
	file.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("file_name", file)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

func (s *BleveStore) Shape() Shape { return ShapeRow }

// Index replaces the rows of entry.FileName with entry.Records.
func (s *BleveStore) Index(_ context.Context, entry entity.CatalogueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.fileRowIDs(entry.FileName)
	if err != nil {
		return storeErr(BackendBleve, "index", err)
	}
	b := s.index.NewBatch()
	for _, id := range ids {
		b.Delete(id)
	}
	if err := addRows(b, entry); err != nil {
		return storeErr(BackendBleve, "index", err)
	}
	if err := s.index.Batch(b); err != nil {
		s.logger.Error("store.index.failed", "file", entry.FileName, "error", err)
		return storeErr(BackendBleve, "index", err)
	}
	s.logger.Debug("store.index.ok", "file", entry.FileName, "rows", len(entry.Records))
	return nil
}

// Replace deletes every row and indexes entries in one batch. Searches wait
// for the batch to finish.
func (s *BleveStore) Replace(_ context.Context, entries []entity.CatalogueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.allRowIDs()
	if err != nil {
		return storeErr(BackendBleve, "replace", err)
	}
	b := s.index.NewBatch()
	for _, id := range ids {
		b.Delete(id)
	}
	for _, e := range entries {
		if err := addRows(b, e); err != nil {
			return storeErr(BackendBleve, "replace", err)
		}
	}
	if err := s.index.Batch(b); err != nil {
		s.logger.Error("store.replace.failed", "entries", len(entries), "error", err)
		return storeErr(BackendBleve, "replace", err)
	}
	s.logger.Info("store.replace.ok", "entries", len(entries), "deleted", len(ids))
	return nil
}

func (s *BleveStore) CandidateSearch(_ context.Context, q string) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(q), CandidateLimit, 0, false)
	req.Fields = rowFields
	res, err := s.index.Search(req)
	if err != nil {
		return nil, storeErr(BackendBleve, "search", err)
	}

	var out []Candidate
	byFile := map[string]int{}
	for _, hit := range res.Hits {
		file := fieldString(hit.Fields, "file_name")
		r := entity.ProductRecord{
			ProductName:   fieldString(hit.Fields, "product_name"),
			CompanyName:   fieldString(hit.Fields, "company_name"),
			ContactNumber: fieldString(hit.Fields, "contact_number"),
			Website:       fieldString(hit.Fields, "website"),
			Description:   fieldString(hit.Fields, "description"),
			CatalogueLink: fieldString(hit.Fields, "catalogue_link"),
		}
		i, ok := byFile[file]
		if !ok {
			i = len(out)
			byFile[file] = i
			out = append(out, Candidate{FileName: file})
		}
		out[i].Records = append(out[i].Records, r)
	}
	return out, nil
}

func (s *BleveStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.index.DocCount()
	return storeErr(BackendBleve, "ping", err)
}

func (s *BleveStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storeErr(BackendBleve, "close", s.index.Close())
}

func (s *BleveStore) fileRowIDs(fileName string) ([]string, error) {
	q := bleve.NewTermQuery(fileName)
	q.SetField("file_name")
	return s.collectIDs(q)
}

func (s *BleveStore) allRowIDs() ([]string, error) {
	return s.collectIDs(bleve.NewMatchAllQuery())
}

func (s *BleveStore) collectIDs(q query.Query) ([]string, error) {
	n, err := s.index.DocCount()
	if err != nil || n == 0 {
		return nil, err
	}
	res, err := s.index.Search(bleve.NewSearchRequestOptions(q, int(n), 0, false))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func addRows(b *bleve.Batch, e entity.CatalogueEntry) error {
	for i, r := range e.Records {
		id := fmt.Sprintf("%s#%d", e.FileName, i)
		row := map[string]interface{}{
			"product_name":   r.ProductName,
			"company_name":   r.CompanyName,
			"contact_number": r.ContactNumber,
			"website":        r.Website,
			"description":    r.Description,
			"catalogue_link": r.CatalogueLink,
			"file_name":      e.FileName,
		}
		if err := b.Index(id, row); err != nil {
			return err
		}
	}
	return nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}
