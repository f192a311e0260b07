package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

type stubSearcher struct {
	records []entity.ProductRecord
	err     error
	query   string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]entity.ProductRecord, error) {
	s.query = query
	return s.records, s.err
}

func readRows(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestProductsXLSX(t *testing.T) {
	svc := NewService(nil, nil)
	b, err := svc.ProductsXLSX([]entity.ProductRecord{
		{ProductName: "Ghee 500ml", CompanyName: "Acme Foods", ContactNumber: "+65 61234567", Website: "https://acme.example", Description: "Pure", CatalogueLink: "acme.pdf"},
		{ProductName: "Ghee 1L", CatalogueLink: "acme.pdf"},
	})
	require.NoError(t, err)

	rows := readRows(t, b)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Product Name", "Company Name", "Contact Number", "Website", "Description", "Catalogue Link"}, rows[0])
	assert.Equal(t, []string{"Ghee 500ml", "Acme Foods", "+65 61234567", "https://acme.example", "Pure", "acme.pdf"}, rows[1])
	assert.Equal(t, "Ghee 1L", rows[2][0])
	assert.Equal(t, "acme.pdf", rows[2][5])
}

func TestProductsXLSX_Empty(t *testing.T) {
	b, err := NewService(nil, nil).ProductsXLSX(nil)
	require.NoError(t, err)
	rows := readRows(t, b)
	assert.Len(t, rows, 1)
}

func TestExportSearchXLSX(t *testing.T) {
	s := &stubSearcher{records: []entity.ProductRecord{{ProductName: "Ghee"}}}
	b, n, err := NewService(s, nil).ExportSearchXLSX(context.Background(), "ghee")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ghee", s.query)
	assert.Len(t, readRows(t, b), 2)

	_, _, err = NewService(&stubSearcher{err: errors.New("down")}, nil).ExportSearchXLSX(context.Background(), "ghee")
	assert.Error(t, err)
}
