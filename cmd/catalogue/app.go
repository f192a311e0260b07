package main

import (
	"context"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/catalogue-search/internal/cache"
	"github.com/joseph-ayodele/catalogue-search/internal/extract"
	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
	"github.com/joseph-ayodele/catalogue-search/internal/llm/provider"
	"github.com/joseph-ayodele/catalogue-search/internal/metrics"
	"github.com/joseph-ayodele/catalogue-search/internal/ocr"
	"github.com/joseph-ayodele/catalogue-search/internal/repository"
	"github.com/joseph-ayodele/catalogue-search/internal/search"
)

// app holds the handles shared by subcommands. Everything opened here is
// closed by Close in reverse order.
type app struct {
	store   repository.Store
	cache   *cache.RedisCache
	metrics *metrics.Metrics
	closers []io.Closer
}

var (
	metricsOnce sync.Once
	appMetrics  *metrics.Metrics
)

// processMetrics registers the collectors with the default registry once.
func processMetrics() *metrics.Metrics {
	metricsOnce.Do(func() { appMetrics = metrics.New(prometheus.DefaultRegisterer) })
	return appMetrics
}

func newApp(ctx context.Context, withStore bool) (*app, error) {
	a := &app{metrics: processMetrics()}
	if withStore {
		st, err := repository.Open(ctx, cfg.Store, logger)
		if err != nil {
			return nil, err
		}
		a.store = st
		a.closers = append(a.closers, st)
	}
	if cfg.Cache.RedisAddr != "" {
		a.cache = cache.NewRedisCache(cfg.Cache, logger)
		a.closers = append(a.closers, a.cache)
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func (a *app) ocrExtractor() (*ocr.Extractor, error) {
	return ocr.NewExtractor(ocr.Config{
		Pdftotext:   cfg.OCR.Pdftotext,
		Pdftoppm:    cfg.OCR.Pdftoppm,
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
		TessdataDir: cfg.OCR.TessdataDir,
		Engine:      cfg.OCR.Engine,
		Timeout:     cfg.OCR.Timeout,
	}, logger)
}

// structurer returns nil when no provider is configured.
func (a *app) structurer(ctx context.Context) (llm.Structurer, error) {
	s, closer, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closer)
	return s, nil
}

func (a *app) ingestService(ctx context.Context) (*ingest.Service, error) {
	ex, err := a.ocrExtractor()
	if err != nil {
		return nil, err
	}
	s, err := a.structurer(ctx)
	if err != nil {
		return nil, err
	}
	opts := []ingest.Option{
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithDocumentTimeout(cfg.Ingest.DocumentTimeout),
		ingest.WithMetrics(a.metrics),
	}
	if a.cache != nil {
		opts = append(opts, ingest.WithInvalidator(a.cache))
	}
	return ingest.NewService(ingest.OCRFactory(ex), extract.NewRecordExtractor(s, logger), a.store, logger, opts...), nil
}

func (a *app) searchPipeline() *search.Pipeline {
	opts := []search.Option{search.WithMetrics(a.metrics)}
	if a.cache != nil {
		opts = append(opts, search.WithCache(a.cache))
	}
	return search.NewPipeline(a.store, logger, opts...)
}
