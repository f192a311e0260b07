package extract

import (
	"context"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/ocr"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// RecordExtractor is Stage 2: text -> product records (LLM or rules).
type RecordExtractor interface {
	ExtractRecords(ctx context.Context, doc entity.RawDocument) (Structured, error)
}

// Structured is the Stage 2 output for one document. Payload is what a
// document-shaped store persists and decodes again at search time.
type Structured struct {
	Payload string
	Records []entity.ProductRecord
	Source  string // "heuristic" or the LLM provider name
	// SchemaMismatch describes how the payload deviates from the product
	// schema. The lenient decoder may still have recovered records.
	SchemaMismatch string
}

const SourceHeuristic = "heuristic"
