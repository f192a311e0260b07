package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
)

// StructuredExtractor runs a document through the structuring engine and the
// lenient decoder. Failures are scoped to the document: the result then holds
// zero records and the error matches common.ErrDecode.
type StructuredExtractor struct {
	structurer llm.Structurer
	logger     *slog.Logger
}

func NewStructuredExtractor(s llm.Structurer, logger *slog.Logger) *StructuredExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuredExtractor{structurer: s, logger: logger}
}

func (s *StructuredExtractor) ExtractRecords(ctx context.Context, doc entity.RawDocument) (Structured, error) {
	if strings.TrimSpace(doc.Text) == "" {
		s.logger.Info("extract.structure.skipped", "file", doc.FileName, "reason", "empty text")
		return Structured{Records: []entity.ProductRecord{}}, nil
	}

	start := time.Now()
	res, err := s.structurer.Structure(ctx, llm.StructureRequest{Text: doc.Text, FileName: doc.FileName})
	if err != nil {
		s.logger.Warn("llm.structure.failed", "file", doc.FileName, "error", err)
		return Structured{Records: []entity.ProductRecord{}},
			&llm.DecodeError{FileName: doc.FileName, Reason: "structuring engine failed", Cause: err}
	}

	var mismatch string
	if vErr := llm.CheckProductSchema(res.Content); vErr != nil {
		mismatch = vErr.Error()
		s.logger.Info("llm.schema.mismatch", "file", doc.FileName, "error", vErr)
	}

	records, err := llm.DecodeProducts(res.Content)
	if err != nil {
		err = llm.WithFile(err, doc.FileName)
		s.logger.Warn("llm.decode.failed", "file", doc.FileName, "error", err, "payload_len", len(res.Content))
		return Structured{Payload: res.Content, Records: []entity.ProductRecord{}, Source: res.Provider, SchemaMismatch: mismatch}, err
	}

	records = entity.DedupeRecords(records)
	entity.FillCatalogueLink(records, doc.FileName)
	entity.PropagateCompanyFields(records)

	s.logger.Info("extract.structure.ok",
		"file", doc.FileName,
		"provider", res.Provider,
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Structured{Payload: res.Content, Records: records, Source: res.Provider, SchemaMismatch: mismatch}, nil
}

// NewRecordExtractor picks the structuring engine when one is configured and
// the metadata heuristic otherwise.
func NewRecordExtractor(s llm.Structurer, logger *slog.Logger) RecordExtractor {
	if s == nil {
		return NewHeuristicExtractor(logger)
	}
	return NewStructuredExtractor(s, logger)
}
