package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const (
	DefaultDPI  = 300
	DefaultLang = "eng"
)

// Options tune text extraction for one ingestion request.
type Options struct {
	DPI  int
	Lang string
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if strings.TrimSpace(o.Lang) == "" {
		o.Lang = DefaultLang
	}
	return o
}

// DocumentResult reports what happened to one document.
type DocumentResult struct {
	FileName       string                   `json:"file_name"`
	Path           string                   `json:"path"`
	Status         constants.DocumentStatus `json:"status"`
	Method         entity.ExtractionMethod  `json:"method"`
	Language       string                   `json:"language"`
	Records        int                      `json:"records"`
	SchemaMismatch string                   `json:"schema_mismatch,omitempty"`
	Err            string                   `json:"error,omitempty"`
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Degraded  uint32
	Failed    uint32
	Records   uint32
}

func (s *DirStats) add(r DocumentResult) {
	switch {
	case r.Status == constants.DocumentStatusStoreFailed:
		s.Failed++
	case r.Status.Degraded():
		s.Degraded++
	default:
		s.Succeeded++
	}
	s.Records += uint32(r.Records)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
