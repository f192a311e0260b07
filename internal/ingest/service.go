package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/async"
	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/extract"
	"github.com/joseph-ayodele/catalogue-search/internal/metrics"
	"github.com/joseph-ayodele/catalogue-search/internal/ocr"
	"github.com/joseph-ayodele/catalogue-search/internal/repository"
)

// ExtractorFactory builds the text extractor for one set of options.
type ExtractorFactory func(Options) extract.TextExtractor

// OCRFactory adapts an ocr.Extractor so each request can override DPI and language.
func OCRFactory(e *ocr.Extractor) ExtractorFactory {
	return func(o Options) extract.TextExtractor {
		return e.WithOptions(o.DPI, o.Lang)
	}
}

// Invalidator drops cached search results after the store changed.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service runs documents through extraction and structuring and writes them
// to the catalogue store.
type Service struct {
	extractors ExtractorFactory
	records    extract.RecordExtractor
	store      repository.Store
	logger     *slog.Logger

	workers     int
	docTimeout  time.Duration
	invalidator Invalidator
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithDocumentTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.docTimeout = d
		}
	}
}

func WithInvalidator(i Invalidator) Option {
	return func(s *Service) { s.invalidator = i }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(extractors ExtractorFactory, records extract.RecordExtractor, store repository.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		extractors: extractors,
		records:    records,
		store:      store,
		logger:     logger,
		workers:    4,
		docTimeout: 5 * time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProcessFile extracts and structures one file without touching the store.
// Extraction and decode failures degrade the entry instead of failing it:
// the entry is still returned with empty text or zero records.
func (s *Service) ProcessFile(ctx context.Context, path, fileName string, opts Options) (entity.CatalogueEntry, DocumentResult) {
	opts = opts.withDefaults()
	reader := extract.NewDocumentReader(s.extractors(opts), s.logger)

	res := DocumentResult{Path: path, Status: constants.DocumentStatusOK}
	doc, err := reader.Read(ctx, path, fileName)
	res.FileName = doc.FileName
	res.Method = doc.Method
	res.Language = doc.Language
	if err != nil {
		res.Status = constants.DocumentStatusExtractionFailed
		res.Err = err.Error()
		s.metrics.ExtractionFailed()
		s.logger.Warn("ingest.document.failed", "file", doc.FileName, "stage", "extract", "error", err)
	}

	structured, err := s.records.ExtractRecords(ctx, doc)
	if err != nil {
		if res.Status == constants.DocumentStatusOK {
			res.Status = constants.DocumentStatusDecodeFailed
			res.Err = err.Error()
		}
		s.metrics.DecodeFailed()
		s.logger.Warn("ingest.document.failed", "file", doc.FileName, "stage", "structure", "error", err)
	}

	if structured.SchemaMismatch != "" {
		res.SchemaMismatch = structured.SchemaMismatch
		s.metrics.SchemaMismatched()
	}

	payload := structured.Payload
	if payload == "" {
		payload = "[]"
	}
	entry := entity.NewCatalogueEntry(doc, payload, structured.Records)
	res.Records = len(entry.Records)
	s.metrics.DocumentIngested(string(doc.Method))
	return entry, res
}

// IngestFile processes one file and indexes it. Only a store failure is
// returned as an error; degraded documents are stored and reported in the result.
func (s *Service) IngestFile(ctx context.Context, path, fileName string, opts Options) (DocumentResult, error) {
	entry, res := s.ProcessFile(ctx, path, fileName, opts)
	if err := s.store.Index(ctx, entry); err != nil {
		res.Status = constants.DocumentStatusStoreFailed
		res.Err = err.Error()
		s.logger.Error("ingest.document.failed", "file", res.FileName, "stage", "store", "error", err)
		return res, err
	}
	s.invalidate(ctx)
	s.logger.Info("ingest.document.ok",
		"file", res.FileName,
		"status", res.Status,
		"method", res.Method,
		"language", res.Language,
		"records", res.Records,
	)
	return res, nil
}

// IngestUpload spools r to a temporary file and ingests it under fileName.
// The temporary file is removed on every path.
func (s *Service) IngestUpload(ctx context.Context, fileName string, r io.Reader, opts Options) (DocumentResult, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DocumentResult{}, fmt.Errorf("%w: file name is required", common.ErrInvalidInput)
	}
	if !constants.IsAllowed(name) {
		return DocumentResult{FileName: name}, fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, filepath.Ext(name))
	}

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return DocumentResult{FileName: name}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove temp upload", "path", tmp.Name(), "error", rmErr)
		}
	}()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return DocumentResult{FileName: name}, fmt.Errorf("spool upload: %w", err)
	}
	s.logger.Debug("ingest.upload.spooled", "file", name, "bytes", n)

	return s.IngestFile(ctx, tmp.Name(), name, opts)
}

// ProcessJob lets the service back an async.ProcessorQueue.
func (s *Service) ProcessJob(ctx context.Context, job async.Job) error {
	_, err := s.IngestFile(ctx, job.Path, "", Options{})
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("search cache invalidation failed", "error", err)
	}
}
