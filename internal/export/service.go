package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const sheet = "Products"

// Searcher is the part of the search pipeline the exporter needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]entity.ProductRecord, error)
}

// Service produces XLSX bytes for product listings.
type Service struct {
	searcher Searcher
	logger   *slog.Logger
}

func NewService(searcher Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{searcher: searcher, logger: logger}
}

// ExportSearchXLSX runs query and returns the confirmed records as a workbook.
func (s *Service) ExportSearchXLSX(ctx context.Context, query string) ([]byte, int, error) {
	records, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	b, err := s.ProductsXLSX(records)
	return b, len(records), err
}

// ProductsXLSX writes one row per record below a header row on the Products sheet.
func (s *Service) ProductsXLSX(records []entity.ProductRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Product Name",
		"Company Name",
		"Contact Number",
		"Website",
		"Description",
		"Catalogue Link",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		for col, v := range []string{r.ProductName, r.CompanyName, r.ContactNumber, r.Website, r.Description, r.CatalogueLink} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 32)
	_ = f.SetColWidth(sheet, "E", "E", 60)
	_ = f.SetColWidth(sheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
