package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// seedColumns maps accepted CSV headers to record fields.
var seedColumns = map[string]func(*entity.ProductRecord, string){
	"product_name":   func(r *entity.ProductRecord, v string) { r.ProductName = v },
	"company_name":   func(r *entity.ProductRecord, v string) { r.CompanyName = v },
	"seller_contact": func(r *entity.ProductRecord, v string) { r.ContactNumber = v },
	"contact_number": func(r *entity.ProductRecord, v string) { r.ContactNumber = v },
	"website":        func(r *entity.ProductRecord, v string) { r.Website = v },
	"catalogue_link": func(r *entity.ProductRecord, v string) { r.CatalogueLink = v },
	"description":    func(r *entity.ProductRecord, v string) { r.Description = v },
}

// SeedCSV loads product rows from CSV with a header line and replaces the
// store contents with them. Rows are grouped into one entry per
// catalogue_link. It returns the number of records loaded.
func (s *Service) SeedCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: empty csv", common.ErrInvalidInput)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read header: %v", common.ErrInvalidInput, err)
	}
	setters := make([]func(*entity.ProductRecord, string), len(header))
	hasName := false
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		setters[i] = seedColumns[h]
		hasName = hasName || h == "product_name"
	}
	if !hasName {
		return 0, fmt.Errorf("%w: csv header must contain product_name", common.ErrInvalidInput)
	}

	grouped := map[string][]entity.ProductRecord{}
	total := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: %v", common.ErrInvalidInput, line, err)
		}
		var rec entity.ProductRecord
		for i, v := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, v)
			}
		}
		rec = rec.Normalize()
		if rec.ProductName == "" {
			s.logger.Debug("ingest.seed.skip", "line", line, "reason", "empty product_name")
			continue
		}
		grouped[rec.CatalogueLink] = append(grouped[rec.CatalogueLink], rec)
		total++
	}

	links := make([]string, 0, len(grouped))
	for link := range grouped {
		links = append(links, link)
	}
	sort.Strings(links)

	now := time.Now().UTC()
	entries := make([]entity.CatalogueEntry, 0, len(links))
	for _, link := range links {
		records := grouped[link]
		payload, err := json.Marshal(records)
		if err != nil {
			return 0, err
		}
		name := link
		if name == "" {
			name = "seed.csv"
		}
		entries = append(entries, entity.CatalogueEntry{
			FileName:  name,
			Language:  "en",
			Method:    entity.MethodNone,
			RawText:   seedText(records),
			Payload:   string(payload),
			Records:   records,
			IndexedAt: now,
		})
	}

	if err := s.store.Replace(ctx, entries); err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.logger.Info("ingest.seed.ok", "records", total, "entries", len(entries))
	return total, nil
}

func seedText(records []entity.ProductRecord) string {
	var b strings.Builder
	for _, r := range records {
		for _, f := range []string{r.ProductName, r.CompanyName, r.ContactNumber, r.Website, r.Description} {
			if f != "" {
				b.WriteString(f)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
